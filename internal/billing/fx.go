package billing

import (
	"github.com/kvartplata/kvartplata/internal/billing/repository"
	"github.com/kvartplata/kvartplata/internal/billing/service"
	"go.uber.org/fx"
)

var Module = fx.Module("billing.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
