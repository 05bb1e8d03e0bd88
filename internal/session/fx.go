package session

import (
	"github.com/kvartplata/kvartplata/internal/session/repository"
	"github.com/kvartplata/kvartplata/internal/session/service"
	"go.uber.org/fx"
)

var Module = fx.Module("session.service",
	repository.Module,
	fx.Provide(service.New),
)
