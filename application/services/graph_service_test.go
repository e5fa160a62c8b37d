package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/TomerAberbach/website/application/ports"
	"github.com/TomerAberbach/website/domain/core/entities"
	"github.com/TomerAberbach/website/domain/core/valueobjects"
	"github.com/TomerAberbach/website/domain/services/graphbuilder"
	"github.com/TomerAberbach/website/domain/services/layout"
	pkgerrors "github.com/TomerAberbach/website/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRepository struct {
	mu    sync.Mutex
	posts []*entities.Post
	err   error
	calls atomic.Int32
	gate  chan struct{}
}

func (r *fakeRepository) List(ctx context.Context) ([]*entities.Post, error) {
	r.calls.Add(1)
	if r.gate != nil {
		<-r.gate
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.posts, r.err
}

func (r *fakeRepository) set(posts []*entities.Post, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.posts, r.err = posts, err
}

type fakeCache struct {
	cleared atomic.Int32
}

func (c *fakeCache) Get(context.Context, string) (interface{}, bool) { return nil, false }

func (c *fakeCache) Set(context.Context, string, interface{}, int) error { return nil }

func (c *fakeCache) Clear(context.Context) error {
	c.cleared.Add(1)
	return nil
}

type recordingMetrics struct {
	mu     sync.Mutex
	builds []error
}

func (m *recordingMetrics) RecordBuild(_ ports.BuildStats, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.builds = append(m.builds, err)
}

func (m *recordingMetrics) RecordRenderCache(bool) {}

type originFunc func(string) string

func (f originFunc) Origin(href string) string { return f(href) }

func testPost(t *testing.T, id string, refs map[string][]string) *entities.Post {
	t.Helper()
	postID, err := valueobjects.NewPostID(id)
	require.NoError(t, err)
	references := make(map[string]valueobjects.StringSet, len(refs))
	for key, hrefs := range refs {
		references[key] = valueobjects.NewStringSet(hrefs...)
	}
	post, err := entities.NewPost(postID, entities.PostContent{
		Title: id,
		Date:  time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC),
		Tags:  []string{"go"},
	}, references)
	require.NoError(t, err)
	return post
}

func newTestService(t *testing.T, repo *fakeRepository, cache ports.Cache, metrics ports.MetricsRecorder) *GraphService {
	t.Helper()
	params := layout.DefaultParams()
	params.Steps = 100
	engine, err := layout.NewEngine(params)
	require.NoError(t, err)
	builder := graphbuilder.NewBuilder(originFunc(func(string) string { return "https://example.com" }))
	return NewGraphService(repo, builder, engine, cache, metrics, zap.NewNop())
}

func TestGraphService_StartBuildsEagerly(t *testing.T) {
	repo := &fakeRepository{}
	repo.set([]*entities.Post{
		testPost(t, "a", map[string][]string{"b": {"/b"}}),
		testPost(t, "b", map[string][]string{"example.com": {"https://example.com/x"}}),
	}, nil)
	service := newTestService(t, repo, nil, nil)

	assert.False(t, service.Ready())
	service.Start(context.Background())

	require.Eventually(t, service.Ready, time.Second, time.Millisecond)
	assert.EqualValues(t, 1, repo.calls.Load())

	snap, err := service.Snapshot(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, snap.BuildID)
	assert.Equal(t, 3, snap.Graph.VertexCount())
	assert.Equal(t, 2, snap.Graph.EdgeCount())
	assert.Len(t, snap.Graph.Layout().Positions, 3)

	post, ok := snap.Post("b")
	require.True(t, ok)
	assert.Equal(t, "b", post.Title())
	assert.EqualValues(t, 1, repo.calls.Load())
}

func TestGraphService_ConcurrentCallersShareOneBuild(t *testing.T) {
	repo := &fakeRepository{gate: make(chan struct{})}
	repo.set([]*entities.Post{testPost(t, "a", nil)}, nil)
	service := newTestService(t, repo, nil, nil)

	service.Start(context.Background())

	var wg sync.WaitGroup
	snaps := make([]*Snapshot, 8)
	for i := range snaps {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			snap, err := service.Snapshot(context.Background())
			assert.NoError(t, err)
			snaps[i] = snap
		}(i)
	}

	require.Eventually(t, func() bool { return repo.calls.Load() == 1 }, time.Second, time.Millisecond)
	close(repo.gate)
	wg.Wait()

	assert.EqualValues(t, 1, repo.calls.Load())
	for _, snap := range snaps {
		assert.Same(t, snaps[0], snap)
	}
}

func TestGraphService_SnapshotHonorsContext(t *testing.T) {
	repo := &fakeRepository{gate: make(chan struct{})}
	defer close(repo.gate)
	service := newTestService(t, repo, nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := service.Snapshot(ctx)

	require.Error(t, err)
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeTimeout))
}

func TestGraphService_ReloadFailureKeepsPreviousSnapshot(t *testing.T) {
	repo := &fakeRepository{}
	repo.set([]*entities.Post{testPost(t, "a", nil)}, nil)
	metrics := &recordingMetrics{}
	service := newTestService(t, repo, nil, metrics)

	first, err := service.Snapshot(context.Background())
	require.NoError(t, err)

	repo.set(nil, pkgerrors.NewValidationError("bad front matter"))
	_, err = service.Reload(context.Background())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))

	current, err := service.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Same(t, first, current)

	metrics.mu.Lock()
	defer metrics.mu.Unlock()
	require.Len(t, metrics.builds, 2)
	assert.NoError(t, metrics.builds[0])
	assert.Error(t, metrics.builds[1])
}

func TestGraphService_ReloadPicksUpChanges(t *testing.T) {
	repo := &fakeRepository{}
	repo.set([]*entities.Post{testPost(t, "a", nil)}, nil)
	cache := &fakeCache{}
	service := newTestService(t, repo, cache, nil)

	first, err := service.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, first.Graph.VertexCount())

	repo.set([]*entities.Post{testPost(t, "a", nil), testPost(t, "b", nil)}, nil)
	second, err := service.Reload(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, second.Graph.VertexCount())
	assert.NotEqual(t, first.BuildID, second.BuildID)
	assert.Same(t, second, service.Current())
	assert.EqualValues(t, 2, cache.cleared.Load())
}

func TestGraphService_SnapshotWithoutBuildFails(t *testing.T) {
	repo := &fakeRepository{}
	repo.set(nil, errors.New("disk on fire"))
	service := newTestService(t, repo, nil, nil)

	_, err := service.Snapshot(context.Background())

	require.Error(t, err)
	assert.Nil(t, service.Current())
}

func TestGraphService_BuildPanicKeepsPreviousSnapshot(t *testing.T) {
	repo := &fakeRepository{}
	repo.set([]*entities.Post{testPost(t, "a", nil)}, nil)
	metrics := &recordingMetrics{}

	var broken atomic.Bool
	builder := graphbuilder.NewBuilder(originFunc(func(string) string {
		if broken.Load() {
			panic("origin lookup failed")
		}
		return "https://example.com"
	}))
	engine, err := layout.NewEngine(layout.DefaultParams())
	require.NoError(t, err)
	service := NewGraphService(repo, builder, engine, nil, metrics, zap.NewNop())

	first, err := service.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first.BuildID, service.CurrentBuildID())

	broken.Store(true)
	repo.set([]*entities.Post{
		testPost(t, "a", map[string][]string{"example.com": {"https://example.com/x"}}),
	}, nil)

	_, err = service.Reload(context.Background())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeInternal))
	assert.Contains(t, err.Error(), "origin lookup failed")

	assert.Same(t, first, service.Current())
	metrics.mu.Lock()
	defer metrics.mu.Unlock()
	require.Len(t, metrics.builds, 2)
	assert.Error(t, metrics.builds[1])
}
