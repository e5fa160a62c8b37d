package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		status    int
		wantLevel zapcore.Level
	}{
		{name: "api request", path: "/api/v1/graph", status: http.StatusOK, wantLevel: zapcore.InfoLevel},
		{name: "health check", path: "/health", status: http.StatusOK, wantLevel: zapcore.DebugLevel},
		{name: "client error", path: "/api/v1/graph", status: http.StatusTeapot, wantLevel: zapcore.WarnLevel},
		{name: "failing readiness check", path: "/ready", status: http.StatusServiceUnavailable, wantLevel: zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			handler := Logger(zap.New(core), "/health", "/ready")(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte("short and stout"))
			}))

			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, tt.path, nil))

			entries := logs.AllUntimed()
			require.Len(t, entries, 1)
			assert.Equal(t, tt.wantLevel, entries[0].Level)

			fields := entries[0].ContextMap()
			assert.Equal(t, tt.path, fields["path"])
			assert.EqualValues(t, tt.status, fields["status"])
			assert.EqualValues(t, 15, fields["bytes"])
		})
	}
}

func TestLogger_RecordsRoutePattern(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	router := chi.NewRouter()
	router.Use(Logger(zap.New(core)))
	router.Get("/api/v1/posts/{postID}", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("X-API-Version", "v1")
		w.WriteHeader(http.StatusOK)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/posts/hello", nil))

	entries := logs.AllUntimed()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "/api/v1/posts/{postID}", fields["route"])
	assert.Equal(t, "/api/v1/posts/hello", fields["path"])
	assert.Equal(t, "v1", fields["apiVersion"])
}

func TestLogger_SkipsDisabledLevels(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	handler := Logger(zap.New(core), "/health")(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Zero(t, logs.Len())
}
