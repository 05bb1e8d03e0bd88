package tariff

import (
	"github.com/kvartplata/kvartplata/internal/tariff/repository"
	"github.com/kvartplata/kvartplata/internal/tariff/service"
	"go.uber.org/fx"
)

var Module = fx.Module("tariff.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
