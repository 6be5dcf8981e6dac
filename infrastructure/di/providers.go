package di

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	cmdbus "github.com/modryn-studio/ProjectLoom-sub000/application/commands/bus"
	commandhandlers "github.com/modryn-studio/ProjectLoom-sub000/application/commands/handlers"
	"github.com/modryn-studio/ProjectLoom-sub000/application/ports"
	querybus "github.com/modryn-studio/ProjectLoom-sub000/application/queries/bus"
	queryhandlers "github.com/modryn-studio/ProjectLoom-sub000/application/queries/handlers"
	"github.com/modryn-studio/ProjectLoom-sub000/application/services"
	"github.com/modryn-studio/ProjectLoom-sub000/infrastructure/acl"
	"github.com/modryn-studio/ProjectLoom-sub000/infrastructure/config"
	"github.com/modryn-studio/ProjectLoom-sub000/infrastructure/messaging"
	"github.com/modryn-studio/ProjectLoom-sub000/infrastructure/persistence/dynamodb"
	"github.com/modryn-studio/ProjectLoom-sub000/infrastructure/persistence/memory"
	"github.com/modryn-studio/ProjectLoom-sub000/infrastructure/persistence/snapshot"
	"github.com/modryn-studio/ProjectLoom-sub000/interfaces/http/rest"
	"github.com/modryn-studio/ProjectLoom-sub000/pkg/auth"
	"github.com/modryn-studio/ProjectLoom-sub000/pkg/errors"
	"github.com/modryn-studio/ProjectLoom-sub000/pkg/observability"
)

// ProvideLogger creates the process logger from config
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zcfg zap.Config
	if cfg.Environment == "production" {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err == nil {
		zcfg.Level = zap.NewAtomicLevelAt(level)
	}

	return zcfg.Build()
}

// ProvideDomainConfig resolves the effective graph rules, mutable at
// runtime when a dynamic config file is configured
func ProvideDomainConfig(cfg *config.Config) *config.DynamicConfig {
	return config.NewDynamicConfig(cfg.DomainConfig())
}

// ProvideSnapshotStore selects the snapshot backend by storage driver.
// The memory driver returns nil: the repository then keeps workspaces
// purely in process.
func ProvideSnapshotStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (ports.SnapshotStore, error) {
	switch cfg.StorageDriver {
	case config.StorageMemory:
		return nil, nil
	case config.StorageFile:
		return snapshot.NewFileStore(cfg.SnapshotDir, logger)
	case config.StorageDynamoDB:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			return nil, fmt.Errorf("loading aws config: %w", err)
		}
		client := awsdynamodb.NewFromConfig(awsCfg)
		return dynamodb.NewSnapshotStore(client, cfg.DynamoDBTable, logger), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// ProvideWorkspaceRepository creates the workspace repository backed by
// the selected snapshot store
func ProvideWorkspaceRepository(store ports.SnapshotStore, dynamic *config.DynamicConfig, logger *zap.Logger) ports.WorkspaceRepository {
	return memory.NewWorkspaceRepository(store, dynamic, logger)
}

// ProvideEventBus creates the in-process domain event bus
func ProvideEventBus(logger *zap.Logger) ports.EventBus {
	return messaging.NewEventBus(logger)
}

// Assistant bundles the two language-model ports a single adapter
// implements
type Assistant interface {
	ports.ChatCompletionService
	ports.SummarizationService
}

// ProvideAssistant creates the chat and summarization adapter. Without
// a configured endpoint the local fallback assistant is used, so the
// engine works offline.
func ProvideAssistant(cfg *config.Config, logger *zap.Logger) Assistant {
	if cfg.LLMEndpoint == "" {
		return acl.NewLocalAssistant()
	}
	return acl.NewLLMAdapter(cfg.LLMEndpoint, cfg.LLMAPIKey, cfg.LLMModel, logger)
}

// ProvideChatService exposes the assistant through the chat port
func ProvideChatService(a Assistant) ports.ChatCompletionService {
	return a
}

// ProvideSummarizationService exposes the assistant through the
// summarization port
func ProvideSummarizationService(a Assistant) ports.SummarizationService {
	return a
}

// ProvideJWTValidator creates the token validator, or nil when the API
// runs unauthenticated in single-user mode
func ProvideJWTValidator(cfg *config.Config) (*auth.JWTValidator, error) {
	if !cfg.RequireAuth {
		return nil, nil
	}
	return auth.NewJWTValidator(auth.JWTConfig{
		SecretKey: cfg.JWTSecret,
		Issuer:    cfg.JWTIssuer,
	})
}

// ProvideRateLimiter creates the per-client API rate limiter
func ProvideRateLimiter(cfg *config.Config) auth.RateLimiter {
	return auth.NewTokenBucketLimiter(cfg.RateLimitPerMinute)
}

// ProvideCommandBus creates a command bus with every handler registered
func ProvideCommandBus(deps *commandhandlers.Deps, cfg *config.Config, logger *zap.Logger) (*cmdbus.CommandBus, error) {
	commandBus := cmdbus.NewCommandBus()
	commandBus.Use(commandhandlers.LoggingMiddleware(logger))
	if cfg.EnableMetrics {
		commandBus.Use(observability.CommandMetricsMiddleware())
	}
	if err := commandhandlers.RegisterAll(commandBus, deps); err != nil {
		return nil, err
	}
	return commandBus, nil
}

// ProvideQueryBus creates a query bus with every handler registered
func ProvideQueryBus(deps *queryhandlers.Deps) (*querybus.QueryBus, error) {
	queryBus := querybus.NewQueryBus()
	if err := queryhandlers.RegisterAll(queryBus, deps); err != nil {
		return nil, err
	}
	return queryBus, nil
}

// ProvideCommandDeps bundles the collaborators shared by command handlers
func ProvideCommandDeps(
	repo ports.WorkspaceRepository,
	history *services.History,
	resolver *services.ContextResolver,
	layout *services.LayoutEngine,
	events ports.EventBus,
	chat ports.ChatCompletionService,
	summarizer ports.SummarizationService,
	dynamic *config.DynamicConfig,
	logger *zap.Logger,
) *commandhandlers.Deps {
	return &commandhandlers.Deps{
		Repo:       repo,
		History:    history,
		Resolver:   resolver,
		Layout:     layout,
		Events:     events,
		Chat:       chat,
		Summarizer: summarizer,
		Config:     dynamic,
		Logger:     logger,
	}
}

// ProvideQueryDeps bundles the read-side collaborators
func ProvideQueryDeps(
	repo ports.WorkspaceRepository,
	resolver *services.ContextResolver,
	history *services.History,
	logger *zap.Logger,
) *queryhandlers.Deps {
	return &queryhandlers.Deps{
		Repo:     repo,
		Resolver: resolver,
		History:  history,
		Logger:   logger,
	}
}

// ProvideHistory creates the undo/redo service
func ProvideHistory(dynamic *config.DynamicConfig, logger *zap.Logger) *services.History {
	return services.NewHistory(dynamic, logger)
}

// ProvideContextResolver creates the context inheritance resolver
func ProvideContextResolver(logger *zap.Logger) *services.ContextResolver {
	return services.NewContextResolver(logger)
}

// ProvideLayoutEngine creates the auto-layout engine
func ProvideLayoutEngine(dynamic *config.DynamicConfig, logger *zap.Logger) *services.LayoutEngine {
	return services.NewLayoutEngine(dynamic, logger)
}

// ProvideActionExecutor creates the structured-action executor
func ProvideActionExecutor(commandBus *cmdbus.CommandBus, repo ports.WorkspaceRepository, logger *zap.Logger) *services.ActionExecutor {
	return services.NewActionExecutor(commandBus, repo, logger)
}

// ProvideRouter creates the HTTP router
func ProvideRouter(
	commandBus *cmdbus.CommandBus,
	queryBus *querybus.QueryBus,
	dynamic *config.DynamicConfig,
	executor *services.ActionExecutor,
	jwtValidator *auth.JWTValidator,
	rateLimiter auth.RateLimiter,
	cfg *config.Config,
	logger *zap.Logger,
) *rest.Router {
	router := rest.NewRouter(
		commandBus,
		queryBus,
		dynamic,
		executor,
		jwtValidator,
		rateLimiter,
		errors.NewErrorHandler(logger),
		logger,
	)
	router.EnableMetrics = cfg.EnableMetrics
	router.EnableCORS = cfg.EnableCORS
	return router
}
