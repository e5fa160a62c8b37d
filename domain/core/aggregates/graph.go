package aggregates

import (
	"encoding/json"
	"fmt"

	"github.com/TomerAberbach/website/domain/core/valueobjects"
)

// Vertex is a node of the post graph: either a known post or a synthetic
// external vertex for a reference target that is not a post
type Vertex struct {
	ID       string                 `json:"id"`
	Label    string                 `json:"label"`
	Tags     valueobjects.StringSet `json:"tags"`
	Href     string                 `json:"href"`
	External bool                   `json:"external"`
}

// Edge is a directed "post links to target" relationship
type Edge struct {
	FromID string                 `json:"fromId"`
	ToID   string                 `json:"toId"`
	Tags   valueobjects.StringSet `json:"tags"`
	Hrefs  valueobjects.StringSet `json:"hrefs"`
}

// Key returns the edge's key in the graph
func (e Edge) Key() string {
	return EdgeKey(e.FromID, e.ToID)
}

// EdgeKey derives the unique key of the edge from one vertex to another
func EdgeKey(fromID, toID string) string {
	return fromID + "->" + toID
}

// GraphLayout is the rendering-space layout of a graph
type GraphLayout struct {
	BoundingBox valueobjects.BoundingBox         `json:"boundingBox"`
	Positions   map[string]valueobjects.Position `json:"positions"`
}

// Graph is the aggregate root for the post graph.
// It is immutable once constructed: accessors return copies and WithLayout
// returns a new graph.
type Graph struct {
	vertexOrder []string
	vertices    map[string]Vertex
	edgeOrder   []string
	edges       map[string]Edge
	layout      GraphLayout
}

// NewGraph creates a graph from vertices and edges, preserving their order.
// Vertex IDs and edge keys must be unique and every edge must connect two
// vertices of the graph.
func NewGraph(vertices []Vertex, edges []Edge) (*Graph, error) {
	g := &Graph{
		vertexOrder: make([]string, 0, len(vertices)),
		vertices:    make(map[string]Vertex, len(vertices)),
		edgeOrder:   make([]string, 0, len(edges)),
		edges:       make(map[string]Edge, len(edges)),
		layout:      GraphLayout{Positions: map[string]valueobjects.Position{}},
	}

	for _, v := range vertices {
		if _, exists := g.vertices[v.ID]; exists {
			return nil, fmt.Errorf("duplicate vertex %q", v.ID)
		}
		g.vertexOrder = append(g.vertexOrder, v.ID)
		g.vertices[v.ID] = v
	}

	for _, e := range edges {
		key := e.Key()
		if _, exists := g.edges[key]; exists {
			return nil, fmt.Errorf("duplicate edge %q", key)
		}
		if _, ok := g.vertices[e.FromID]; !ok {
			return nil, fmt.Errorf("edge %q starts at unknown vertex %q", key, e.FromID)
		}
		if _, ok := g.vertices[e.ToID]; !ok {
			return nil, fmt.Errorf("edge %q ends at unknown vertex %q", key, e.ToID)
		}
		g.edgeOrder = append(g.edgeOrder, key)
		g.edges[key] = e
	}

	return g, nil
}

// MustNewGraph is like NewGraph but panics if the vertices and edges do not form a graph
func MustNewGraph(vertices []Vertex, edges []Edge) *Graph {
	g, err := NewGraph(vertices, edges)
	if err != nil {
		panic("aggregates: " + err.Error())
	}
	return g
}

// WithLayout returns a copy of the graph carrying the given layout.
// Every vertex must have exactly one position.
func (g *Graph) WithLayout(layout GraphLayout) (*Graph, error) {
	if len(layout.Positions) != len(g.vertices) {
		return nil, fmt.Errorf("layout has %d positions for %d vertices", len(layout.Positions), len(g.vertices))
	}
	positions := make(map[string]valueobjects.Position, len(layout.Positions))
	for id, pos := range layout.Positions {
		if _, ok := g.vertices[id]; !ok {
			return nil, fmt.Errorf("layout positions unknown vertex %q", id)
		}
		positions[id] = pos
	}

	return &Graph{
		vertexOrder: g.vertexOrder,
		vertices:    g.vertices,
		edgeOrder:   g.edgeOrder,
		edges:       g.edges,
		layout: GraphLayout{
			BoundingBox: layout.BoundingBox,
			Positions:   positions,
		},
	}, nil
}

// Vertices returns all vertices in construction order
func (g *Graph) Vertices() []Vertex {
	vertices := make([]Vertex, 0, len(g.vertexOrder))
	for _, id := range g.vertexOrder {
		vertices = append(vertices, g.vertices[id])
	}
	return vertices
}

// Vertex returns the vertex with the given ID
func (g *Graph) Vertex(id string) (Vertex, bool) {
	v, ok := g.vertices[id]
	return v, ok
}

// Edges returns all edges in construction order
func (g *Graph) Edges() []Edge {
	edges := make([]Edge, 0, len(g.edgeOrder))
	for _, key := range g.edgeOrder {
		edges = append(edges, g.edges[key])
	}
	return edges
}

// Edge returns the edge between two vertices
func (g *Graph) Edge(fromID, toID string) (Edge, bool) {
	e, ok := g.edges[EdgeKey(fromID, toID)]
	return e, ok
}

// VertexCount returns the number of vertices in the graph
func (g *Graph) VertexCount() int {
	return len(g.vertexOrder)
}

// EdgeCount returns the number of edges in the graph
func (g *Graph) EdgeCount() int {
	return len(g.edgeOrder)
}

// ExternalVertexCount returns the number of synthetic external vertices
func (g *Graph) ExternalVertexCount() int {
	count := 0
	for _, v := range g.vertices {
		if v.External {
			count++
		}
	}
	return count
}

// Layout returns a copy of the graph's layout
func (g *Graph) Layout() GraphLayout {
	positions := make(map[string]valueobjects.Position, len(g.layout.Positions))
	for id, pos := range g.layout.Positions {
		positions[id] = pos
	}
	return GraphLayout{BoundingBox: g.layout.BoundingBox, Positions: positions}
}

// Position returns the rendering position of a vertex
func (g *Graph) Position(id string) (valueobjects.Position, bool) {
	pos, ok := g.layout.Positions[id]
	return pos, ok
}

// graphJSON is the wire shape consumed by the graph rendering component
type graphJSON struct {
	Vertices map[string]Vertex `json:"vertices"`
	Edges    map[string]Edge   `json:"edges"`
	Layout   GraphLayout       `json:"layout"`
}

// MarshalJSON implements json.Marshaler
func (g *Graph) MarshalJSON() ([]byte, error) {
	return json.Marshal(graphJSON{
		Vertices: g.vertices,
		Edges:    g.edges,
		Layout:   g.layout,
	})
}
