package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/TomerAberbach/website/application/ports"
	"github.com/TomerAberbach/website/domain/core/aggregates"
	"github.com/TomerAberbach/website/domain/core/entities"
	"github.com/TomerAberbach/website/domain/services/graphbuilder"
	"github.com/TomerAberbach/website/domain/services/layout"
	pkgerrors "github.com/TomerAberbach/website/pkg/errors"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const buildKey = "graph"

// Snapshot is the result of one graph build: the posts it was built from and
// the laid out graph. Snapshots are never modified after they are published.
type Snapshot struct {
	BuildID string
	BuiltAt time.Time
	Posts   []*entities.Post
	Graph   *aggregates.Graph

	byID map[string]*entities.Post
}

// NewSnapshot creates a snapshot over posts in their listing order
func NewSnapshot(buildID string, builtAt time.Time, posts []*entities.Post, graph *aggregates.Graph) *Snapshot {
	byID := make(map[string]*entities.Post, len(posts))
	for _, post := range posts {
		byID[post.ID().String()] = post
	}
	return &Snapshot{
		BuildID: buildID,
		BuiltAt: builtAt,
		Posts:   posts,
		Graph:   graph,
		byID:    byID,
	}
}

// Post returns the post with the given ID
func (s *Snapshot) Post(id string) (*entities.Post, bool) {
	post, ok := s.byID[id]
	return post, ok
}

// GraphService is the process-wide owner of the post graph.
// The first build starts eagerly from Start, at most one build runs at a
// time, and a failed rebuild leaves the previous snapshot in place.
type GraphService struct {
	posts   ports.PostRepository
	builder *graphbuilder.Builder
	engine  *layout.Engine
	cache   ports.Cache
	metrics ports.MetricsRecorder
	logger  *zap.Logger
	tracer  trace.Tracer

	group     singleflight.Group
	current   atomic.Pointer[Snapshot]
	dirty     atomic.Bool
	startOnce sync.Once
	now       func() time.Time
}

// NewGraphService creates a new graph service. cache may be nil.
func NewGraphService(
	posts ports.PostRepository,
	builder *graphbuilder.Builder,
	engine *layout.Engine,
	cache ports.Cache,
	metrics ports.MetricsRecorder,
	logger *zap.Logger,
) *GraphService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = ports.NoopMetrics{}
	}
	return &GraphService{
		posts:   posts,
		builder: builder,
		engine:  engine,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
		tracer:  otel.Tracer("github.com/TomerAberbach/website/application/services"),
		now:     time.Now,
	}
}

// Start kicks off the first build without waiting for it. Later calls do nothing.
func (s *GraphService) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		s.group.DoChan(buildKey, s.buildFunc(ctx))
	})
}

// Ready reports whether a snapshot is available
func (s *GraphService) Ready() bool {
	return s.current.Load() != nil
}

// Current returns the latest snapshot without waiting, or nil
func (s *GraphService) Current() *Snapshot {
	return s.current.Load()
}

// CurrentBuildID returns the ID of the latest snapshot, or "" before the
// first build
func (s *GraphService) CurrentBuildID() string {
	if snap := s.current.Load(); snap != nil {
		return snap.BuildID
	}
	return ""
}

// Snapshot returns the latest snapshot, waiting for the in-flight build when
// none has completed yet
func (s *GraphService) Snapshot(ctx context.Context) (*Snapshot, error) {
	if snap := s.current.Load(); snap != nil {
		return snap, nil
	}
	return s.wait(ctx)
}

// Reload rebuilds the graph from the repository. A change that arrives while
// a build is running causes one more build once it finishes.
func (s *GraphService) Reload(ctx context.Context) (*Snapshot, error) {
	s.dirty.Store(true)
	for {
		snap, err := s.wait(ctx)
		if err != nil {
			return nil, err
		}
		if !s.dirty.Load() {
			return snap, nil
		}
	}
}

func (s *GraphService) wait(ctx context.Context) (*Snapshot, error) {
	ch := s.group.DoChan(buildKey, s.buildFunc(ctx))
	select {
	case <-ctx.Done():
		return nil, pkgerrors.NewTimeoutError("graph build").WithCause(ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Snapshot), nil
	}
}

// buildFunc detaches the build from the caller's cancellation since other
// callers may be waiting on the same build
func (s *GraphService) buildFunc(ctx context.Context) func() (interface{}, error) {
	ctx = context.WithoutCancel(ctx)
	return func() (interface{}, error) {
		for {
			s.dirty.Store(false)
			snap, err := s.build(ctx)
			if err != nil {
				return nil, err
			}
			if !s.dirty.Load() {
				return snap, nil
			}
		}
	}
}

// build lists, builds, and lays out the graph, then publishes it. A panic in
// the builder or the layout fails this build only.
func (s *GraphService) build(ctx context.Context) (snap *Snapshot, err error) {
	buildID := uuid.New().String()
	start := s.now()
	logger := s.logger.With(zap.String("buildID", buildID))

	ctx, span := s.tracer.Start(ctx, "graph.build", trace.WithAttributes(
		attribute.String("build.id", buildID),
	))
	defer span.End()

	defer func() {
		if rec := recover(); rec != nil {
			snap = nil
			err = pkgerrors.NewInternalError(fmt.Sprintf("graph build panicked: %v", rec))
			logger.Error("Graph build panicked", zap.Any("panic", rec), zap.Stack("stack"))
			s.fail(span, logger, start, err)
		}
	}()

	logger.Info("Building post graph")

	posts, err := s.posts.List(ctx)
	if err != nil {
		s.fail(span, logger, start, err)
		return nil, pkgerrors.Wrap(err, "failed to list posts")
	}

	graph := s.builder.Build(posts)

	_, layoutSpan := s.tracer.Start(ctx, "graph.layout", trace.WithAttributes(
		attribute.Int("graph.vertices", graph.VertexCount()),
		attribute.Int("graph.edges", graph.EdgeCount()),
	))
	graph = s.engine.Apply(graph)
	layoutSpan.End()

	snap = NewSnapshot(buildID, s.now(), posts, graph)
	s.current.Store(snap)

	if s.cache != nil {
		if err := s.cache.Clear(ctx); err != nil {
			logger.Warn("Failed to clear query cache", zap.Error(err))
		}
	}

	stats := ports.BuildStats{
		Duration:         s.now().Sub(start),
		Posts:            len(posts),
		Vertices:         graph.VertexCount(),
		Edges:            graph.EdgeCount(),
		ExternalVertices: graph.ExternalVertexCount(),
	}
	s.metrics.RecordBuild(stats, nil)

	logger.Info("Built post graph",
		zap.Int("postCount", stats.Posts),
		zap.Int("vertexCount", stats.Vertices),
		zap.Int("edgeCount", stats.Edges),
		zap.Int("externalVertexCount", stats.ExternalVertices),
		zap.Duration("duration", stats.Duration),
	)

	return snap, nil
}

// fail records a build that left the previous snapshot in place
func (s *GraphService) fail(span trace.Span, logger *zap.Logger, start time.Time, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	s.metrics.RecordBuild(ports.BuildStats{Duration: s.now().Sub(start)}, err)
	logger.Error("Failed to build post graph",
		zap.Bool("keepingPrevious", s.current.Load() != nil),
		zap.Error(err),
	)
}
