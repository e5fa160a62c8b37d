package bus

import (
	"context"
	"encoding/json"
	"time"

	pkgerrors "github.com/TomerAberbach/website/pkg/errors"

	"go.uber.org/zap"
)

// Cache holds query results until the next graph build clears it
type Cache interface {
	Get(ctx context.Context, key string) (interface{}, bool)
	Set(ctx context.Context, key string, value interface{}, ttl int) error
}

// Built is implemented by results computed from one graph build
type Built interface {
	Build() string
}

// CachingMiddleware answers repeated queries from a cache
type CachingMiddleware struct {
	cache      Cache
	ttl        int
	generation func() string
}

// NewCachingMiddleware creates a caching middleware. ttl is in seconds.
func NewCachingMiddleware(cache Cache, ttl int) *CachingMiddleware {
	return &CachingMiddleware{cache: cache, ttl: ttl}
}

// WithGeneration scopes cache entries to the build ID generation returns.
// Results that implement Built are only stored while their build is still
// the current generation.
func (m *CachingMiddleware) WithGeneration(generation func() string) *CachingMiddleware {
	m.generation = generation
	return m
}

// Wrap implements Middleware
func (m *CachingMiddleware) Wrap(next QueryHandler) QueryHandler {
	return QueryHandlerFunc(func(ctx context.Context, query Query) (interface{}, error) {
		key, ok := cacheKey(query)
		if !ok {
			return next.Handle(ctx, query)
		}
		if m.generation != nil {
			key = m.generation() + "/" + key
		}
		if cached, found := m.cache.Get(ctx, key); found {
			return cached, nil
		}

		result, err := next.Handle(ctx, query)
		if err != nil {
			return nil, err
		}
		if m.stale(result) {
			return result, nil
		}
		// A lost write only costs a recomputation
		_ = m.cache.Set(ctx, key, result, m.ttl)
		return result, nil
	})
}

// stale reports whether result was computed from a build that has since
// been replaced. Storing it would outlive the cache clear of the newer build.
func (m *CachingMiddleware) stale(result interface{}) bool {
	if m.generation == nil {
		return false
	}
	built, ok := result.(Built)
	return ok && built.Build() != m.generation()
}

// cacheKey identifies a query by its type and JSON encoding
func cacheKey(query Query) (string, bool) {
	encoded, err := json.Marshal(query)
	if err != nil {
		return "", false
	}
	return queryName(query) + ":" + string(encoded), true
}

// Metrics receives query counters and timings
type Metrics interface {
	StartTimer(metric, label string) Timer
	Increment(metric, label string)
}

// Timer is a running timing
type Timer interface {
	Stop()
}

// MetricsMiddleware times every query and counts its outcome
type MetricsMiddleware struct {
	metrics Metrics
}

// NewMetricsMiddleware creates a metrics middleware
func NewMetricsMiddleware(metrics Metrics) *MetricsMiddleware {
	return &MetricsMiddleware{metrics: metrics}
}

// Wrap implements Middleware
func (m *MetricsMiddleware) Wrap(next QueryHandler) QueryHandler {
	return QueryHandlerFunc(func(ctx context.Context, query Query) (interface{}, error) {
		name := queryName(query)
		timer := m.metrics.StartTimer("query_duration", name)
		defer timer.Stop()

		result, err := next.Handle(ctx, query)
		if err != nil {
			m.metrics.Increment("query_errors", name)
			return nil, err
		}
		m.metrics.Increment("query_success", name)
		return result, nil
	})
}

// LoggingMiddleware logs every query at debug level. Failures other than
// validation and not found errors are logged as warnings.
type LoggingMiddleware struct {
	logger *zap.Logger
}

// NewLoggingMiddleware creates a logging middleware
func NewLoggingMiddleware(logger *zap.Logger) *LoggingMiddleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoggingMiddleware{logger: logger}
}

// Wrap implements Middleware
func (m *LoggingMiddleware) Wrap(next QueryHandler) QueryHandler {
	return QueryHandlerFunc(func(ctx context.Context, query Query) (interface{}, error) {
		start := time.Now()
		result, err := next.Handle(ctx, query)

		fields := []zap.Field{
			zap.String("query", queryName(query)),
			zap.Duration("duration", time.Since(start)),
		}
		switch {
		case err == nil:
			m.logger.Debug("Query handled", fields...)
		case pkgerrors.IsValidation(err) || pkgerrors.IsNotFound(err):
			m.logger.Debug("Query rejected", append(fields, zap.Error(err))...)
		default:
			m.logger.Warn("Query failed", append(fields, zap.Error(err))...)
		}
		return result, err
	})
}
