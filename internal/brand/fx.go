package brand

import (
	"github.com/smallbiznis/eventory/internal/brand/repository"
	"github.com/smallbiznis/eventory/internal/brand/service"
	"go.uber.org/fx"
)

var Module = fx.Module("brand.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
