// Package rest wires the HTTP API onto a chi router.
package rest

import (
	"net/http"
	"time"

	"github.com/TomerAberbach/website/application/queries/bus"
	"github.com/TomerAberbach/website/interfaces/http/rest/handlers"
	"github.com/TomerAberbach/website/interfaces/http/rest/middleware"
	"github.com/TomerAberbach/website/pkg/common"
	pkgerrors "github.com/TomerAberbach/website/pkg/errors"
	"github.com/TomerAberbach/website/pkg/observability"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

const requestTimeout = 30 * time.Second

// GraphStatus reports whether a graph has been built
type GraphStatus interface {
	Ready() bool
}

// Options configures optional router behavior
type Options struct {
	ServiceName    string
	EnableCORS     bool
	AllowedOrigins []string
	EnableTracing  bool
	Debug          bool
}

// Router creates and configures the HTTP router
type Router struct {
	queryBus *bus.QueryBus
	status   GraphStatus
	metrics  *observability.Collector
	opts     Options
	logger   *zap.Logger
}

// NewRouter creates a new router instance. metrics may be nil.
func NewRouter(
	queryBus *bus.QueryBus,
	status GraphStatus,
	metrics *observability.Collector,
	opts Options,
	logger *zap.Logger,
) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.ServiceName == "" {
		opts.ServiceName = "website"
	}
	return &Router{
		queryBus: queryBus,
		status:   status,
		metrics:  metrics,
		opts:     opts,
		logger:   logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()
	errorHandler := pkgerrors.NewErrorHandler(rt.logger, rt.opts.Debug)

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(errorHandler.Middleware)
	router.Use(middleware.Logger(rt.logger, "/health", "/ready", "/metrics"))
	if rt.opts.EnableTracing {
		router.Use(observability.TracingMiddleware(rt.opts.ServiceName))
	}
	if rt.metrics != nil {
		router.Use(observability.MetricsMiddleware(rt.metrics))
	}
	router.Use(chimiddleware.Timeout(requestTimeout))

	if rt.opts.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins: rt.opts.AllowedOrigins,
			AllowedMethods: []string{"GET", "HEAD", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID"},
			MaxAge:         300,
		}))
	}

	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)
	if rt.metrics != nil {
		router.Method(http.MethodGet, "/metrics", rt.metrics.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(chimiddleware.SetHeader("X-API-Version", "v1"))

		graphHandler := handlers.NewGraphHandler(rt.queryBus, errorHandler, rt.logger)
		r.Get("/graph", graphHandler.GetGraph)

		r.Route("/posts", func(r chi.Router) {
			postHandler := handlers.NewPostHandler(rt.queryBus, errorHandler, rt.logger)
			r.Get("/", postHandler.ListPosts)
			r.Get("/{postID}", postHandler.GetPost)
		})

		r.Get("/tags", handlers.NewTagHandler(rt.queryBus, errorHandler, rt.logger).ListTags)
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		errorHandler.Handle(w, r, pkgerrors.NewNotFoundError("route").WithDetail("path", r.URL.Path))
	})

	return router
}

// healthCheck handles liveness probes
func (rt *Router) healthCheck(w http.ResponseWriter, _ *http.Request) {
	common.RespondStatus(w, http.StatusOK, "healthy")
}

// readinessCheck reports ready once the first graph has been built
func (rt *Router) readinessCheck(w http.ResponseWriter, _ *http.Request) {
	if rt.status == nil || !rt.status.Ready() {
		common.RespondStatus(w, http.StatusServiceUnavailable, "building")
		return
	}
	common.RespondStatus(w, http.StatusOK, "ready")
}
