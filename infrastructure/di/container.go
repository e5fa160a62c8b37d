package di

import (
	"github.com/TomerAberbach/website/application/queries/bus"
	"github.com/TomerAberbach/website/application/services"
	"github.com/TomerAberbach/website/infrastructure/config"
	"github.com/TomerAberbach/website/interfaces/http/rest"
	"github.com/TomerAberbach/website/pkg/observability"

	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	Logger       *zap.Logger
	GraphService *services.GraphService
	QueryBus     *bus.QueryBus
	Router       *rest.Router
	Metrics      *observability.Collector
	Tracing      *observability.Tracing
	Watcher      *config.ContentWatcher
}
