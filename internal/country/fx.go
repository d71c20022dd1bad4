package country

import (
	"github.com/smallbiznis/eventory/internal/country/repository"
	"github.com/smallbiznis/eventory/internal/country/service"
	"go.uber.org/fx"
)

var Module = fx.Module("country.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
