package di

import (
	"context"
	"fmt"
	"time"

	"github.com/TomerAberbach/website/application/ports"
	"github.com/TomerAberbach/website/application/queries/bus"
	queryhandlers "github.com/TomerAberbach/website/application/queries/handlers"
	"github.com/TomerAberbach/website/application/services"
	siteconfig "github.com/TomerAberbach/website/domain/config"
	"github.com/TomerAberbach/website/domain/services/graphbuilder"
	"github.com/TomerAberbach/website/domain/services/layout"
	"github.com/TomerAberbach/website/domain/services/references"
	"github.com/TomerAberbach/website/infrastructure/config"
	"github.com/TomerAberbach/website/infrastructure/content"
	"github.com/TomerAberbach/website/infrastructure/persistence/badger"
	"github.com/TomerAberbach/website/infrastructure/publish"
	"github.com/TomerAberbach/website/interfaces/http/rest"
	"github.com/TomerAberbach/website/pkg/observability"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	serviceName = "website"

	// queryCacheTTL bounds how long a query result is served. Builds clear
	// the cache, so this only matters for a stalled reload.
	queryCacheTTL = 300
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	var zapCfg zap.Config
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.With(zap.String("environment", cfg.Environment)), nil
}

// ProvideSiteConfig derives the reference rules from the application config
func ProvideSiteConfig(cfg *config.Config) *siteconfig.SiteConfig {
	return siteconfig.LoadSiteConfig(cfg.SiteURL, cfg.IgnoredHrefs)
}

// ProvideParser creates the reference parser
func ProvideParser(site *siteconfig.SiteConfig) (*references.Parser, error) {
	return references.NewParser(site)
}

// ProvideBuilder creates the graph builder, resolving external vertex hrefs
// through the reference parser
func ProvideBuilder(parser *references.Parser) *graphbuilder.Builder {
	return graphbuilder.NewBuilder(parser)
}

// ProvideEngine creates the layout engine. LayoutSteps overrides the default
// step count when set.
func ProvideEngine(cfg *config.Config) (*layout.Engine, error) {
	params := layout.DefaultParams()
	if cfg.LayoutSteps > 0 {
		params.Steps = cfg.LayoutSteps
	}
	return layout.NewEngine(params)
}

// ProvideMetrics creates the Prometheus collector
func ProvideMetrics() *observability.Collector {
	return observability.NewCollector("website")
}

// ProvideMetricsRecorder exposes the collector as the build metrics port
func ProvideMetricsRecorder(collector *observability.Collector) ports.MetricsRecorder {
	return collector
}

// ProvideRenderCache creates a badger-backed render cache when a cache
// directory is configured and an in-memory one otherwise
func ProvideRenderCache(cfg *config.Config, logger *zap.Logger) (ports.RenderCache, func(), error) {
	if cfg.RenderCacheDir == "" {
		return NewMemoryRenderCache(), func() {}, nil
	}

	cache, err := badger.NewRenderCache(badger.Options{Dir: cfg.RenderCacheDir}, logger)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := cache.Close(); err != nil {
			logger.Warn("Failed to close render cache", zap.Error(err))
		}
	}
	return cache, cleanup, nil
}

// ProvideRepository creates the filesystem post repository
func ProvideRepository(
	cfg *config.Config,
	parser *references.Parser,
	cache ports.RenderCache,
	metrics ports.MetricsRecorder,
	logger *zap.Logger,
) (ports.PostRepository, error) {
	schema, err := content.NewSchema()
	if err != nil {
		return nil, err
	}
	return content.NewRepository(
		content.Options{
			Dir:           cfg.ContentDir,
			IncludeDrafts: cfg.IncludeDrafts,
			Concurrency:   cfg.BuildConcurrency,
		},
		parser,
		content.NewRenderer(),
		schema,
		cache,
		metrics,
		logger,
	), nil
}

// ProvideQueryCache creates the query result cache
func ProvideQueryCache() (*InMemoryCache, func()) {
	cache := NewInMemoryCache()
	return cache, cache.Close
}

// ProvideGraphService creates the graph service
func ProvideGraphService(
	repo ports.PostRepository,
	builder *graphbuilder.Builder,
	engine *layout.Engine,
	cache *InMemoryCache,
	metrics ports.MetricsRecorder,
	logger *zap.Logger,
) *services.GraphService {
	return services.NewGraphService(repo, builder, engine, cache, metrics, logger)
}

// ProvideQueryBus creates the query bus with logging, metrics, and caching
// middleware and registers every query handler
func ProvideQueryBus(
	service *services.GraphService,
	site *siteconfig.SiteConfig,
	cache *InMemoryCache,
	collector *observability.Collector,
	logger *zap.Logger,
) (*bus.QueryBus, error) {
	queryBus := bus.NewQueryBus(
		bus.NewLoggingMiddleware(logger),
		bus.NewMetricsMiddleware(collector),
		bus.NewCachingMiddleware(cache, queryCacheTTL).WithGeneration(service.CurrentBuildID),
	)
	if err := queryhandlers.Register(queryBus, service, site.CategoryOf, logger); err != nil {
		return nil, err
	}
	return queryBus, nil
}

// ProvideRouter creates the HTTP router
func ProvideRouter(
	cfg *config.Config,
	queryBus *bus.QueryBus,
	service *services.GraphService,
	collector *observability.Collector,
	logger *zap.Logger,
) *rest.Router {
	var metrics *observability.Collector
	if cfg.EnableMetrics {
		metrics = collector
	}
	return rest.NewRouter(queryBus, service, metrics, rest.Options{
		ServiceName:    serviceName,
		EnableCORS:     cfg.EnableCORS,
		AllowedOrigins: cfg.AllowedOrigins,
		EnableTracing:  cfg.EnableTracing,
		Debug:          cfg.IsDevelopment(),
	}, logger)
}

// ProvideTracing installs the OTLP tracer provider when tracing is enabled.
// The returned provider is nil otherwise.
func ProvideTracing(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*observability.Tracing, func(), error) {
	if !cfg.EnableTracing {
		return nil, func() {}, nil
	}

	tp, err := observability.InitTracing(ctx, observability.TracingConfig{
		ServiceName: serviceName,
		Environment: cfg.Environment,
		Endpoint:    cfg.TracingEndpoint,
	})
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Failed to flush traces", zap.Error(err))
		}
	}
	return tp, cleanup, nil
}

// ProvideContentWatcher creates a watcher that reloads the graph when posts
// change. It returns nil when content watching is off.
func ProvideContentWatcher(cfg *config.Config, service *services.GraphService, logger *zap.Logger) (*config.ContentWatcher, error) {
	if !cfg.ShouldWatchContent() {
		return nil, nil
	}
	return config.NewContentWatcher(cfg.ContentDir, config.DefaultDebounce, func(ctx context.Context) {
		snap, err := service.Reload(ctx)
		if err != nil {
			logger.Error("Content reload failed", zap.Error(err))
			return
		}
		logger.Info("Content reloaded", zap.String("buildID", snap.BuildID))
	}, logger)
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideS3Client creates an S3 client
func ProvideS3Client(awsCfg aws.Config) *awss3.Client {
	return awss3.NewFromConfig(awsCfg)
}

// ProvidePublisher creates the snapshot publisher
func ProvidePublisher(client *awss3.Client, cfg *config.Config, logger *zap.Logger) ports.SnapshotPublisher {
	return publish.NewPublisher(client, cfg.PublishBucket, "", logger)
}
