//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"
	"go.uber.org/zap"

	"planner-backend/application/digest"
	"planner-backend/application/dispatch"
	"planner-backend/application/ports"
	"planner-backend/infrastructure/config"
	"planner-backend/interfaces/http/rest"
	"planner-backend/pkg/observability"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	EntryRepo   ports.EntryRepository
	UserRepo    ports.UserRepository
	Idempotency ports.IdempotencyStore
	DigestStore ports.DigestStore
	EventBus    ports.EventBus
	Dispatcher  *dispatch.Dispatcher
	Aggregator  *digest.Aggregator
	Router      *rest.Router
	Metrics     *observability.Metrics
}

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideEventBridgeClient,
	ProvideCloudWatchClient,
	ProvideSESClient,
	ProvideMetrics,
	ProvideTracer,
	ProvideEntryRepository,
	ProvideUserRepository,
	ProvideIdempotencyStore,
	ProvideDigestStore,
	ProvideEventBus,
	ProvideTranscriber,
	ProvideGenAIClassifier,
	ProvideIntentClassifier,
	ProvideSummarizer,
	ProvideTokenProvider,
	ProvideCalendarService,
	ProvideSMSSender,
	ProvideEmailSender,
	ProvideNormalizer,
	ProvideClassificationService,
	ProvideGenericHandler,
	ProvideCalendarHandler,
	ProvideRegistry,
	ProvideDispatcher,
	ProvideAggregator,
	ProvideRouter,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil // Wire will replace this
}
