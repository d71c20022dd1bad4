package warehouse

import (
	"github.com/smallbiznis/eventory/internal/warehouse/repository"
	"github.com/smallbiznis/eventory/internal/warehouse/service"
	"go.uber.org/fx"
)

var Module = fx.Module("warehouse.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
