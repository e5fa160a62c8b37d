package handlers

import (
	"context"
	"sort"

	"github.com/TomerAberbach/website/application/queries"
	"github.com/TomerAberbach/website/application/queries/bus"
	"github.com/TomerAberbach/website/application/services"
	"github.com/TomerAberbach/website/domain/core/entities"
	pkgerrors "github.com/TomerAberbach/website/pkg/errors"

	"go.uber.org/zap"
)

// SnapshotSource provides the current graph snapshot
type SnapshotSource interface {
	Snapshot(ctx context.Context) (*services.Snapshot, error)
}

// CategoryFunc maps a tag to its display category
type CategoryFunc func(tag string) string

// GetGraphHandler handles graph queries
type GetGraphHandler struct {
	source SnapshotSource
	logger *zap.Logger
}

// NewGetGraphHandler creates a new graph handler
func NewGetGraphHandler(source SnapshotSource, logger *zap.Logger) *GetGraphHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GetGraphHandler{source: source, logger: logger}
}

// Handle executes the graph query
func (h *GetGraphHandler) Handle(ctx context.Context, query queries.GetGraphQuery) (*queries.GraphResult, error) {
	snap, err := h.source.Snapshot(ctx)
	if err != nil {
		h.logger.Warn("Graph unavailable", zap.Error(err))
		return nil, err
	}
	return &queries.GraphResult{Versioned: versionOf(snap), Graph: snap.Graph}, nil
}

// ListPostsHandler handles post listing queries
type ListPostsHandler struct {
	source     SnapshotSource
	categoryOf CategoryFunc
}

// NewListPostsHandler creates a new post listing handler
func NewListPostsHandler(source SnapshotSource, categoryOf CategoryFunc) *ListPostsHandler {
	return &ListPostsHandler{source: source, categoryOf: categoryOf}
}

// Handle executes the post listing query
func (h *ListPostsHandler) Handle(ctx context.Context, query queries.ListPostsQuery) (*queries.ListPostsResult, error) {
	snap, err := h.source.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	result := &queries.ListPostsResult{Versioned: versionOf(snap), Posts: []queries.PostSummary{}}
	for _, post := range snap.Posts {
		if query.Tag != "" && !post.HasTag(query.Tag) {
			continue
		}
		result.Posts = append(result.Posts, summarize(post, h.categoryOf))
	}
	result.Total = len(result.Posts)
	return result, nil
}

// GetPostHandler handles single post queries
type GetPostHandler struct {
	source     SnapshotSource
	categoryOf CategoryFunc
}

// NewGetPostHandler creates a new post handler
func NewGetPostHandler(source SnapshotSource, categoryOf CategoryFunc) *GetPostHandler {
	return &GetPostHandler{source: source, categoryOf: categoryOf}
}

// Handle executes the post query
func (h *GetPostHandler) Handle(ctx context.Context, query queries.GetPostQuery) (*queries.PostDetail, error) {
	snap, err := h.source.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	post, ok := snap.Post(query.PostID)
	if !ok {
		return nil, pkgerrors.NewNotFoundError("post").WithDetail("postID", query.PostID)
	}

	// Backlinks are the posts with an edge into this one
	backlinks := []string{}
	for _, e := range snap.Graph.Edges() {
		if e.ToID == query.PostID && e.FromID != query.PostID {
			backlinks = append(backlinks, e.FromID)
		}
	}
	sort.Strings(backlinks)

	return &queries.PostDetail{
		Versioned:   versionOf(snap),
		PostSummary: summarize(post, h.categoryOf),
		HTML:        post.HTML(),
		References:  post.References(),
		Backlinks:   backlinks,
	}, nil
}

// ListTagsHandler handles tag listing queries
type ListTagsHandler struct {
	source     SnapshotSource
	categoryOf CategoryFunc
}

// NewListTagsHandler creates a new tag listing handler
func NewListTagsHandler(source SnapshotSource, categoryOf CategoryFunc) *ListTagsHandler {
	return &ListTagsHandler{source: source, categoryOf: categoryOf}
}

// Handle executes the tag listing query
func (h *ListTagsHandler) Handle(ctx context.Context, query queries.ListTagsQuery) (*queries.ListTagsResult, error) {
	snap, err := h.source.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, post := range snap.Posts {
		for _, tag := range post.Tags().Values() {
			counts[tag]++
		}
	}

	tags := make([]queries.TagCount, 0, len(counts))
	for name, count := range counts {
		tags = append(tags, queries.TagCount{Name: name, Category: h.categoryOf(name), Count: count})
	}
	sort.Slice(tags, func(i, j int) bool {
		if tags[i].Count != tags[j].Count {
			return tags[i].Count > tags[j].Count
		}
		return tags[i].Name < tags[j].Name
	})

	return &queries.ListTagsResult{Versioned: versionOf(snap), Tags: tags}, nil
}

func versionOf(snap *services.Snapshot) queries.Versioned {
	return queries.Versioned{BuildID: snap.BuildID}
}

func summarize(post *entities.Post, categoryOf CategoryFunc) queries.PostSummary {
	return queries.PostSummary{
		ID:          post.ID().String(),
		Title:       post.Title(),
		Description: post.Description(),
		Date:        post.Date(),
		Href:        post.Href(),
		Tags:        post.CategorizedTags(categoryOf),
	}
}

// Register registers a handler for every query on the bus
func Register(b *bus.QueryBus, source SnapshotSource, categoryOf CategoryFunc, logger *zap.Logger) error {
	registrations := []struct {
		query   bus.Query
		handler bus.QueryHandler
	}{
		{queries.GetGraphQuery{}, bus.Typed(NewGetGraphHandler(source, logger).Handle)},
		{queries.ListPostsQuery{}, bus.Typed(NewListPostsHandler(source, categoryOf).Handle)},
		{queries.GetPostQuery{}, bus.Typed(NewGetPostHandler(source, categoryOf).Handle)},
		{queries.ListTagsQuery{}, bus.Typed(NewListTagsHandler(source, categoryOf).Handle)},
	}
	for _, r := range registrations {
		if err := b.Register(r.query, r.handler); err != nil {
			return err
		}
	}
	return nil
}
