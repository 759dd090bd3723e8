package di

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	awssesv2 "github.com/aws/aws-sdk-go-v2/service/sesv2"
	"go.uber.org/zap"

	"planner-backend/application/classification"
	"planner-backend/application/digest"
	"planner-backend/application/dispatch"
	"planner-backend/application/ingestion"
	"planner-backend/application/modules"
	"planner-backend/application/ports"
	genaiadapter "planner-backend/infrastructure/adapters/genai"
	"planner-backend/infrastructure/adapters/googlecalendar"
	openaiadapter "planner-backend/infrastructure/adapters/openai"
	"planner-backend/infrastructure/adapters/ses"
	twilioadapter "planner-backend/infrastructure/adapters/twilio"
	"planner-backend/infrastructure/config"
	"planner-backend/infrastructure/messaging/eventbridge"
	"planner-backend/infrastructure/persistence/dynamodb"
	"planner-backend/interfaces/http/rest"
	"planner-backend/pkg/observability"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideCloudWatchClient creates a CloudWatch client, or nil when
// metrics are disabled
func ProvideCloudWatchClient(awsCfg aws.Config, cfg *config.Config) *awscloudwatch.Client {
	if !cfg.EnableMetrics {
		return nil
	}
	return awscloudwatch.NewFromConfig(awsCfg)
}

// ProvideSESClient creates an SES client
func ProvideSESClient(awsCfg aws.Config) *awssesv2.Client {
	return awssesv2.NewFromConfig(awsCfg)
}

// ProvideMetrics creates the metrics emitter
func ProvideMetrics(client *awscloudwatch.Client) *observability.Metrics {
	return observability.NewMetrics("PlannerBackend", client)
}

// ProvideTracer creates the request tracer. The router only mounts it
// when tracing is enabled.
func ProvideTracer() *observability.Tracer {
	return observability.NewTracer("planner-backend")
}

// ProvideEntryRepository creates the entry repository
func ProvideEntryRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.EntryRepository {
	return dynamodb.NewEntryRepository(client, cfg.DynamoDBTable, logger)
}

// ProvideUserRepository creates the user repository
func ProvideUserRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.UserRepository {
	return dynamodb.NewUserRepository(client, cfg.DynamoDBTable, cfg.IndexName, logger)
}

// ProvideIdempotencyStore creates the idempotency store
func ProvideIdempotencyStore(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.IdempotencyStore {
	return dynamodb.NewIdempotencyStore(client, cfg.DynamoDBTable, logger)
}

// ProvideDigestStore creates the digest marker store
func ProvideDigestStore(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.DigestStore {
	return dynamodb.NewDigestStore(client, cfg.DynamoDBTable, logger)
}

// ProvideEventBus creates the event bus
func ProvideEventBus(client *awseventbridge.Client, cfg *config.Config, logger *zap.Logger) ports.EventBus {
	return eventbridge.NewEventBridgePublisher(client, cfg.EventBusName, logger)
}

// ProvideTranscriber creates the audio transcriber
func ProvideTranscriber(cfg *config.Config, logger *zap.Logger) (ports.Transcriber, error) {
	return openaiadapter.NewTranscriber(cfg.OpenAIAPIKey, cfg.TranscriptionModel, logger)
}

// ProvideGenAIClassifier creates the Gemini-backed classifier adapter
func ProvideGenAIClassifier(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*genaiadapter.Classifier, error) {
	return genaiadapter.NewClassifier(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, logger)
}

// ProvideIntentClassifier exposes the adapter through its port
func ProvideIntentClassifier(classifier *genaiadapter.Classifier) ports.IntentClassifier {
	return classifier
}

// ProvideSummarizer creates the digest summarizer, sharing the
// classifier's client
func ProvideSummarizer(classifier *genaiadapter.Classifier, logger *zap.Logger) ports.Summarizer {
	return genaiadapter.NewSummarizer(classifier, logger)
}

// ProvideTokenProvider creates the Google OAuth token provider
func ProvideTokenProvider(cfg *config.Config) (googlecalendar.TokenProvider, error) {
	return googlecalendar.NewStaticTokenProvider(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRefreshToken)
}

// ProvideCalendarService creates the external calendar service
func ProvideCalendarService(tokens googlecalendar.TokenProvider, logger *zap.Logger) ports.CalendarService {
	return googlecalendar.NewService(tokens, logger)
}

// ProvideSMSSender creates the SMS sender
func ProvideSMSSender(cfg *config.Config, logger *zap.Logger) (ports.SMSSender, error) {
	return twilioadapter.NewSMSSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber, logger)
}

// ProvideEmailSender creates the digest email sender
func ProvideEmailSender(client *awssesv2.Client, cfg *config.Config, logger *zap.Logger) ports.EmailSender {
	return ses.NewEmailSender(client, cfg.DigestFromAddress, logger)
}

// ProvideNormalizer creates the input normalizer
func ProvideNormalizer(transcriber ports.Transcriber, logger *zap.Logger) *ingestion.Normalizer {
	return ingestion.NewNormalizer(transcriber, logger)
}

// ProvideClassificationService creates the taxonomy-enforcing
// classification service
func ProvideClassificationService(adapter ports.IntentClassifier, cfg *config.Config, metrics *observability.Metrics, logger *zap.Logger) *classification.Service {
	return classification.NewService(adapter, cfg.ClassifierTimezone, cfg.MinConfidence, metrics, logger)
}

// ProvideGenericHandler creates the fallthrough module handler
func ProvideGenericHandler(entries ports.EntryRepository, eventBus ports.EventBus, logger *zap.Logger) *modules.GenericHandler {
	return modules.NewGenericHandler(entries, eventBus, logger)
}

// ProvideCalendarHandler creates the calendar module handler
func ProvideCalendarHandler(
	entries ports.EntryRepository,
	calendar ports.CalendarService,
	sms ports.SMSSender,
	eventBus ports.EventBus,
	logger *zap.Logger,
) *modules.CalendarHandler {
	return modules.NewCalendarHandler(entries, calendar, sms, eventBus, logger)
}

// ProvideRegistry builds the static kind-to-handler registry
func ProvideRegistry(calendarHandler *modules.CalendarHandler, genericHandler *modules.GenericHandler) (*dispatch.Registry, error) {
	return dispatch.NewRegistry(calendarHandler, genericHandler)
}

// ProvideDispatcher creates the input dispatcher
func ProvideDispatcher(
	normalizer *ingestion.Normalizer,
	classifier *classification.Service,
	registry *dispatch.Registry,
	idempotency ports.IdempotencyStore,
	logger *zap.Logger,
) *dispatch.Dispatcher {
	return dispatch.NewDispatcher(normalizer, classifier, registry, idempotency, logger)
}

// ProvideAggregator creates the daily digest aggregator
func ProvideAggregator(
	entries ports.EntryRepository,
	store ports.DigestStore,
	summarizer ports.Summarizer,
	email ports.EmailSender,
	eventBus ports.EventBus,
	logger *zap.Logger,
) *digest.Aggregator {
	return digest.NewAggregator(entries, store, summarizer, email, eventBus, logger)
}

// ProvideRouter creates the HTTP router
func ProvideRouter(
	cfg *config.Config,
	dispatcher *dispatch.Dispatcher,
	entries ports.EntryRepository,
	users ports.UserRepository,
	metrics *observability.Metrics,
	tracer *observability.Tracer,
	logger *zap.Logger,
) *rest.Router {
	return rest.NewRouter(cfg, dispatcher, entries, users, metrics, tracer, logger)
}
