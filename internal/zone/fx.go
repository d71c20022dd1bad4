package zone

import (
	"github.com/smallbiznis/eventory/internal/zone/repository"
	"github.com/smallbiznis/eventory/internal/zone/service"
	"go.uber.org/fx"
)

var Module = fx.Module("zone.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
