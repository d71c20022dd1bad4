package notification

import (
	"github.com/smallbiznis/eventory/internal/notification/repository"
	"github.com/smallbiznis/eventory/internal/notification/service"
	"go.uber.org/fx"
)

var Module = fx.Module("notification.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
