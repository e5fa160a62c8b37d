// Package graphbuilder turns an ordered set of posts into the post graph.
//
// Vertices and edges are accumulated in an index-based arena and frozen into
// an immutable aggregates.Graph once every post has been visited, so nothing
// built here is shared with the caller afterwards.
package graphbuilder

import (
	"sort"

	"github.com/TomerAberbach/website/domain/core/aggregates"
	"github.com/TomerAberbach/website/domain/core/entities"
	"github.com/TomerAberbach/website/domain/core/valueobjects"
)

// OriginResolver derives the navigable origin (scheme and host) of an href
type OriginResolver interface {
	Origin(href string) string
}

// Builder constructs graphs from posts
type Builder struct {
	origins OriginResolver
}

// NewBuilder creates a builder. External vertex hrefs are resolved through origins.
func NewBuilder(origins OriginResolver) *Builder {
	return &Builder{origins: origins}
}

type arena struct {
	vertices []aggregates.Vertex
	index    map[string]int
	edges    []aggregates.Edge
}

func (a *arena) addVertex(v aggregates.Vertex) int {
	a.index[v.ID] = len(a.vertices)
	a.vertices = append(a.vertices, v)
	return len(a.vertices) - 1
}

// Build creates one internal vertex per post, one edge per (post, reference)
// pair, and an external vertex for every edge target that is not a post.
// Posts are visited in the given order, which becomes the vertex order.
func (b *Builder) Build(posts []*entities.Post) *aggregates.Graph {
	a := &arena{index: make(map[string]int, len(posts))}

	for _, post := range posts {
		a.addVertex(aggregates.Vertex{
			ID:    post.ID().String(),
			Label: post.Title(),
			Tags:  post.Tags(),
			Href:  post.Href(),
		})
	}

	for _, post := range posts {
		refs := post.References()
		keys := make([]string, 0, len(refs))
		for key := range refs {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		for _, key := range keys {
			a.edges = append(a.edges, aggregates.Edge{
				FromID: post.ID().String(),
				ToID:   key,
				Tags:   post.Tags(),
				Hrefs:  refs[key],
			})
		}
	}

	for _, e := range a.edges {
		i, ok := a.index[e.ToID]
		if !ok {
			href, _ := e.Hrefs.Min()
			i = a.addVertex(aggregates.Vertex{
				ID:       e.ToID,
				Label:    e.ToID,
				Tags:     valueobjects.NewStringSet(),
				Href:     b.origins.Origin(href),
				External: true,
			})
		}
		if a.vertices[i].External {
			a.vertices[i].Tags = a.vertices[i].Tags.Union(e.Tags)
		}
	}

	return a.freeze()
}

func (a *arena) freeze() *aggregates.Graph {
	return aggregates.MustNewGraph(a.vertices, a.edges)
}
