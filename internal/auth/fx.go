package auth

import (
	"github.com/smallbiznis/eventory/internal/auth/repository"
	"github.com/smallbiznis/eventory/internal/auth/service"
	"github.com/smallbiznis/eventory/internal/auth/token"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(repository.Provide),
	fx.Provide(token.NewIssuer),
	fx.Provide(service.New),
)
