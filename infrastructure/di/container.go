package di

import (
	"go.uber.org/zap"

	cmdbus "github.com/modryn-studio/ProjectLoom-sub000/application/commands/bus"
	"github.com/modryn-studio/ProjectLoom-sub000/application/ports"
	querybus "github.com/modryn-studio/ProjectLoom-sub000/application/queries/bus"
	"github.com/modryn-studio/ProjectLoom-sub000/application/services"
	"github.com/modryn-studio/ProjectLoom-sub000/infrastructure/config"
	"github.com/modryn-studio/ProjectLoom-sub000/interfaces/http/rest"
)

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	Logger       *zap.Logger
	DomainConfig *config.DynamicConfig
	Store        ports.SnapshotStore
	Repo         ports.WorkspaceRepository
	EventBus     ports.EventBus
	History      *services.History
	Resolver     *services.ContextResolver
	Layout       *services.LayoutEngine
	Actions      *services.ActionExecutor
	CommandBus   *cmdbus.CommandBus
	QueryBus     *querybus.QueryBus
	Router       *rest.Router
}
