package pricingtier

import (
	"github.com/smallbiznis/eventory/internal/pricingtier/repository"
	"github.com/smallbiznis/eventory/internal/pricingtier/service"
	"go.uber.org/fx"
)

var Module = fx.Module("pricingtier.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
