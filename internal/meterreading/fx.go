package meterreading

import (
	"github.com/kvartplata/kvartplata/internal/meterreading/repository"
	"github.com/kvartplata/kvartplata/internal/meterreading/service"
	"go.uber.org/fx"
)

var Module = fx.Module("meterreading.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
