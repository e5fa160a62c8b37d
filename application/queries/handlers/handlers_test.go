package handlers

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/TomerAberbach/website/application/queries"
	"github.com/TomerAberbach/website/application/queries/bus"
	"github.com/TomerAberbach/website/application/services"
	"github.com/TomerAberbach/website/domain/core/aggregates"
	"github.com/TomerAberbach/website/domain/core/entities"
	"github.com/TomerAberbach/website/domain/core/valueobjects"
	pkgerrors "github.com/TomerAberbach/website/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSource struct {
	snap *services.Snapshot
	err  error
}

func (s staticSource) Snapshot(context.Context) (*services.Snapshot, error) {
	return s.snap, s.err
}

func categoryOf(tag string) string {
	if tag == "go" || tag == "rust" {
		return "code"
	}
	return "other"
}

func post(t *testing.T, id string, day int, tags []string, refs ...string) *entities.Post {
	t.Helper()
	postID, err := valueobjects.NewPostID(id)
	require.NoError(t, err)
	references := map[string]valueobjects.StringSet{}
	for _, ref := range refs {
		references[ref] = valueobjects.NewStringSet("/" + ref)
	}
	p, err := entities.NewPost(postID, entities.PostContent{
		Title:       "Title " + id,
		Description: "About " + id,
		Date:        time.Date(2024, 3, day, 0, 0, 0, 0, time.UTC),
		Tags:        tags,
		HTML:        "<p>" + id + "</p>",
	}, references)
	require.NoError(t, err)
	return p
}

func testBus(t *testing.T) *bus.QueryBus {
	t.Helper()
	posts := []*entities.Post{
		post(t, "newest", 3, []string{"go", "web"}, "older"),
		post(t, "middle", 2, []string{"rust"}, "older", "newest"),
		post(t, "older", 1, []string{"go"}),
	}
	var vertices []aggregates.Vertex
	var edges []aggregates.Edge
	for _, p := range posts {
		vertices = append(vertices, aggregates.Vertex{ID: p.ID().String(), Label: p.Title(), Tags: p.Tags(), Href: p.Href()})
		for key, hrefs := range p.References() {
			edges = append(edges, aggregates.Edge{FromID: p.ID().String(), ToID: key, Tags: p.Tags(), Hrefs: hrefs})
		}
	}
	snap := services.NewSnapshot("build-1", time.Now(), posts, aggregates.MustNewGraph(vertices, edges))

	b := bus.NewQueryBus()
	require.NoError(t, Register(b, staticSource{snap: snap}, categoryOf, nil))
	return b
}

func TestGetGraphHandler(t *testing.T) {
	result, err := testBus(t).Ask(context.Background(), queries.GetGraphQuery{})
	require.NoError(t, err)

	g, ok := result.(*queries.GraphResult)
	require.True(t, ok)
	assert.Equal(t, "build-1", g.Build())
	assert.Equal(t, 3, g.Graph.VertexCount())
	assert.Equal(t, 3, g.Graph.EdgeCount())
}

func TestListPostsHandler(t *testing.T) {
	tests := []struct {
		name string
		tag  string
		want []string
	}{
		{name: "all posts newest first", want: []string{"newest", "middle", "older"}},
		{name: "filtered by tag", tag: "go", want: []string{"newest", "older"}},
		{name: "tag matching is case insensitive", tag: "Rust", want: []string{"middle"}},
		{name: "unknown tag", tag: "cobol", want: []string{}},
	}

	b := testBus(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := b.Ask(context.Background(), queries.ListPostsQuery{Tag: tt.tag})
			require.NoError(t, err)

			list := result.(*queries.ListPostsResult)
			assert.Equal(t, "build-1", list.Build())
			ids := []string{}
			for _, p := range list.Posts {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.want, ids)
			assert.Equal(t, len(tt.want), list.Total)
		})
	}
}

func TestGetPostHandler(t *testing.T) {
	b := testBus(t)

	result, err := b.Ask(context.Background(), queries.GetPostQuery{PostID: "older"})
	require.NoError(t, err)

	detail := result.(*queries.PostDetail)
	assert.Equal(t, "build-1", detail.Build())
	assert.Equal(t, "Title older", detail.Title)
	assert.Equal(t, "/older", detail.Href)
	assert.Equal(t, "<p>older</p>", detail.HTML)
	assert.Equal(t, []string{"middle", "newest"}, detail.Backlinks)
	assert.Equal(t, []valueobjects.TagGroup{{Category: "code", Tags: []string{"go"}}}, detail.Tags)

	_, err = b.Ask(context.Background(), queries.GetPostQuery{PostID: "missing"})
	assert.True(t, pkgerrors.IsNotFound(err))

	_, err = b.Ask(context.Background(), queries.GetPostQuery{PostID: "Not A Slug"})
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestListTagsHandler(t *testing.T) {
	result, err := testBus(t).Ask(context.Background(), queries.ListTagsQuery{})
	require.NoError(t, err)

	assert.Equal(t, []queries.TagCount{
		{Name: "go", Category: "code", Count: 2},
		{Name: "rust", Category: "code", Count: 1},
		{Name: "web", Category: "other", Count: 1},
	}, result.(*queries.ListTagsResult).Tags)
}

func TestHandlers_PropagateUnavailableSnapshot(t *testing.T) {
	b := bus.NewQueryBus()
	unavailable := pkgerrors.NewUnavailableError("graph")
	require.NoError(t, Register(b, staticSource{err: unavailable}, categoryOf, nil))

	for _, q := range []bus.Query{
		queries.GetGraphQuery{},
		queries.ListPostsQuery{},
		queries.GetPostQuery{PostID: "a"},
		queries.ListTagsQuery{},
	} {
		_, err := b.Ask(context.Background(), q)
		assert.True(t, pkgerrors.IsUnavailable(err), "%T", q)
	}
}

type clearableCache struct {
	mu    sync.Mutex
	items map[string]interface{}
}

func (c *clearableCache) Get(_ context.Context, key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.items[key]
	return v, ok
}

func (c *clearableCache) Set(_ context.Context, key string, value interface{}, _ int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = value
	return nil
}

func (c *clearableCache) Clear(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = map[string]interface{}{}
	return nil
}

// rebuildingSource hands out the old snapshot once, publishing the new one
// and clearing the cache before the caller gets it back, the same order a
// graph build uses
type rebuildingSource struct {
	mu      sync.Mutex
	current *services.Snapshot
	next    *services.Snapshot
	cache   *clearableCache
}

func (s *rebuildingSource) Snapshot(ctx context.Context) (*services.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.current
	if s.next != nil {
		s.current, s.next = s.next, nil
		_ = s.cache.Clear(ctx)
	}
	return snap, nil
}

func (s *rebuildingSource) buildID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.BuildID
}

func TestListPostsHandler_CacheFollowsRebuild(t *testing.T) {
	older := post(t, "older", 1, []string{"go"})
	newer := post(t, "newer", 2, []string{"go"})
	cache := &clearableCache{items: map[string]interface{}{}}
	source := &rebuildingSource{
		current: services.NewSnapshot("b1", time.Now(), []*entities.Post{older}, aggregates.MustNewGraph(nil, nil)),
		next:    services.NewSnapshot("b2", time.Now(), []*entities.Post{newer, older}, aggregates.MustNewGraph(nil, nil)),
		cache:   cache,
	}

	b := bus.NewQueryBus(bus.NewCachingMiddleware(cache, 300).WithGeneration(source.buildID))
	require.NoError(t, Register(b, source, categoryOf, nil))

	result, err := b.Ask(context.Background(), queries.ListPostsQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, result.(*queries.ListPostsResult).Total)
	assert.Equal(t, "b1", result.(*queries.ListPostsResult).Build())

	for range 2 {
		result, err = b.Ask(context.Background(), queries.ListPostsQuery{})
		require.NoError(t, err)
		list := result.(*queries.ListPostsResult)
		assert.Equal(t, 2, list.Total)
		assert.Equal(t, "b2", list.Build())
	}
}
