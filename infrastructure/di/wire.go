//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"

	"github.com/modryn-studio/ProjectLoom-sub000/infrastructure/config"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideDomainConfig,
	ProvideSnapshotStore,
	ProvideWorkspaceRepository,
	ProvideEventBus,
	ProvideAssistant,
	ProvideChatService,
	ProvideSummarizationService,
	ProvideJWTValidator,
	ProvideRateLimiter,
	ProvideHistory,
	ProvideContextResolver,
	ProvideLayoutEngine,
	ProvideActionExecutor,
	ProvideCommandDeps,
	ProvideQueryDeps,
	ProvideCommandBus,
	ProvideQueryBus,
	ProvideRouter,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil // Wire will replace this
}
