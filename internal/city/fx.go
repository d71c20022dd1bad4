package city

import (
	"github.com/smallbiznis/eventory/internal/city/repository"
	"github.com/smallbiznis/eventory/internal/city/service"
	"go.uber.org/fx"
)

var Module = fx.Module("city.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
