package ports

import (
	"context"
	"time"

	"github.com/TomerAberbach/website/domain/core/entities"
)

// PostRepository provides the site's posts.
// This is a port in hexagonal architecture - the domain doesn't know where posts are stored
type PostRepository interface {
	// List returns every published post, newest first
	List(ctx context.Context) ([]*entities.Post, error)
}

// Rendered is the output of rendering a post's markdown
type Rendered struct {
	HTML  string   `json:"html"`
	Hrefs []string `json:"hrefs"`
}

// RenderCache memoizes rendered post content by a digest of its source
type RenderCache interface {
	Get(ctx context.Context, digest string) (*Rendered, bool, error)
	Put(ctx context.Context, digest string, rendered *Rendered) error
}

// SnapshotPublisher uploads a built artifact and returns its location
type SnapshotPublisher interface {
	Publish(ctx context.Context, key string, body []byte, contentType string) (string, error)
}

// Cache stores query results between graph builds
type Cache interface {
	Get(ctx context.Context, key string) (interface{}, bool)
	Set(ctx context.Context, key string, value interface{}, ttl int) error
	Clear(ctx context.Context) error
}

// BuildStats describes a completed graph build
type BuildStats struct {
	Duration         time.Duration
	Posts            int
	Vertices         int
	Edges            int
	ExternalVertices int
}

// MetricsRecorder receives graph build and render cache measurements
type MetricsRecorder interface {
	RecordBuild(stats BuildStats, err error)
	RecordRenderCache(hit bool)
}

// NoopMetrics discards all measurements
type NoopMetrics struct{}

// RecordBuild implements MetricsRecorder
func (NoopMetrics) RecordBuild(BuildStats, error) {}

// RecordRenderCache implements MetricsRecorder
func (NoopMetrics) RecordRenderCache(bool) {}
