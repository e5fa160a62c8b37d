//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/TomerAberbach/website/application/ports"
	"github.com/TomerAberbach/website/infrastructure/config"

	"github.com/google/wire"
	"go.uber.org/zap"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideSiteConfig,
	ProvideParser,
	ProvideBuilder,
	ProvideEngine,
	ProvideMetrics,
	ProvideMetricsRecorder,
	ProvideRenderCache,
	ProvideRepository,
	ProvideQueryCache,
	ProvideGraphService,
	ProvideQueryBus,
	ProvideRouter,
	ProvideTracing,
	ProvideContentWatcher,
	wire.Struct(new(Container), "*"),
)

// PublishSet provides the S3 snapshot publisher
var PublishSet = wire.NewSet(
	ProvideAWSConfig,
	ProvideS3Client,
	ProvidePublisher,
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, func(), error) {
	wire.Build(SuperSet)
	return nil, nil, nil // Wire will replace this
}

// InitializePublisher creates the snapshot publisher
func InitializePublisher(ctx context.Context, cfg *config.Config, logger *zap.Logger) (ports.SnapshotPublisher, error) {
	wire.Build(PublishSet)
	return nil, nil // Wire will replace this
}
