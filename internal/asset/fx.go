package asset

import (
	"github.com/smallbiznis/eventory/internal/asset/repository"
	"github.com/smallbiznis/eventory/internal/asset/service"
	"go.uber.org/fx"
)

var Module = fx.Module("asset.service",
	fx.Provide(repository.Provide),
	fx.Provide(repository.ProvideCollections),
	fx.Provide(service.New),
	fx.Provide(service.NewCollectionService),
)
