package resident

import (
	"github.com/kvartplata/kvartplata/internal/resident/repository"
	"github.com/kvartplata/kvartplata/internal/resident/service"
	"go.uber.org/fx"
)

var Module = fx.Module("resident.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
