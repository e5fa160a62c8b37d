package aggregates

import (
	"encoding/json"
	"testing"

	"github.com/TomerAberbach/website/domain/core/valueobjects"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vertex(id string, external bool) Vertex {
	return Vertex{ID: id, Label: id, Tags: valueobjects.NewStringSet("go"), Href: "/" + id, External: external}
}

func edge(from, to string) Edge {
	return Edge{FromID: from, ToID: to, Tags: valueobjects.NewStringSet("go"), Hrefs: valueobjects.NewStringSet("/" + to)}
}

func position(t *testing.T, x, y float64) valueobjects.Position {
	t.Helper()
	pos, err := valueobjects.NewPosition(x, y)
	require.NoError(t, err)
	return pos
}

func TestNewGraph(t *testing.T) {
	tests := []struct {
		name     string
		vertices []Vertex
		edges    []Edge
		wantErr  string
	}{
		{
			name:     "valid graph",
			vertices: []Vertex{vertex("a", false), vertex("b", false), vertex("x.com", true)},
			edges:    []Edge{edge("a", "b"), edge("a", "x.com")},
		},
		{
			name:     "empty graph",
			vertices: nil,
			edges:    nil,
		},
		{
			name:     "duplicate vertex",
			vertices: []Vertex{vertex("a", false), vertex("a", false)},
			wantErr:  `duplicate vertex "a"`,
		},
		{
			name:     "duplicate edge",
			vertices: []Vertex{vertex("a", false), vertex("b", false)},
			edges:    []Edge{edge("a", "b"), edge("a", "b")},
			wantErr:  `duplicate edge "a->b"`,
		},
		{
			name:     "dangling target",
			vertices: []Vertex{vertex("a", false)},
			edges:    []Edge{edge("a", "missing")},
			wantErr:  `unknown vertex "missing"`,
		},
		{
			name:     "dangling source",
			vertices: []Vertex{vertex("b", false)},
			edges:    []Edge{edge("missing", "b")},
			wantErr:  `unknown vertex "missing"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewGraph(tt.vertices, tt.edges)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Nil(t, g)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, len(tt.vertices), g.VertexCount())
			assert.Equal(t, len(tt.edges), g.EdgeCount())
		})
	}
}

func TestGraph_PreservesOrder(t *testing.T) {
	g := MustNewGraph(
		[]Vertex{vertex("c", false), vertex("a", false), vertex("b.com", true)},
		[]Edge{edge("c", "b.com"), edge("a", "c")},
	)

	ids := []string{}
	for _, v := range g.Vertices() {
		ids = append(ids, v.ID)
	}
	assert.Equal(t, []string{"c", "a", "b.com"}, ids)

	keys := []string{}
	for _, e := range g.Edges() {
		keys = append(keys, e.Key())
	}
	assert.Equal(t, []string{"c->b.com", "a->c"}, keys)

	assert.Equal(t, 1, g.ExternalVertexCount())

	e, ok := g.Edge("a", "c")
	require.True(t, ok)
	assert.Equal(t, []string{"/c"}, e.Hrefs.Values())
	_, ok = g.Edge("c", "a")
	assert.False(t, ok)

	v, ok := g.Vertex("b.com")
	require.True(t, ok)
	assert.True(t, v.External)
}

func TestMustNewGraph_Panics(t *testing.T) {
	assert.Panics(t, func() {
		MustNewGraph([]Vertex{vertex("a", false)}, []Edge{edge("a", "b")})
	})
}

func TestGraph_WithLayout(t *testing.T) {
	g := MustNewGraph([]Vertex{vertex("a", false), vertex("b", false)}, []Edge{edge("a", "b")})
	box, err := valueobjects.NewBoundingBox(100, 50)
	require.NoError(t, err)

	laidOut, err := g.WithLayout(GraphLayout{
		BoundingBox: box,
		Positions: map[string]valueobjects.Position{
			"a": position(t, 10, 10),
			"b": position(t, 90, 40),
		},
	})
	require.NoError(t, err)

	pos, ok := laidOut.Position("b")
	require.True(t, ok)
	assert.Equal(t, 90.0, pos.X())
	assert.Equal(t, 100.0, laidOut.Layout().BoundingBox.Width())

	_, ok = g.Position("b")
	assert.False(t, ok, "original graph must not change")

	_, err = g.WithLayout(GraphLayout{Positions: map[string]valueobjects.Position{"a": position(t, 0, 0)}})
	assert.Error(t, err)

	_, err = g.WithLayout(GraphLayout{Positions: map[string]valueobjects.Position{
		"a":     position(t, 0, 0),
		"ghost": position(t, 0, 0),
	}})
	assert.Error(t, err)
}

func TestGraph_LayoutIsCopied(t *testing.T) {
	g := MustNewGraph([]Vertex{vertex("a", false)}, nil)
	laidOut, err := g.WithLayout(GraphLayout{Positions: map[string]valueobjects.Position{"a": position(t, 1, 2)}})
	require.NoError(t, err)

	layout := laidOut.Layout()
	layout.Positions["a"] = position(t, 9, 9)

	pos, _ := laidOut.Position("a")
	assert.Equal(t, 1.0, pos.X())
}

func TestGraph_MarshalJSON(t *testing.T) {
	g := MustNewGraph([]Vertex{vertex("a", false), vertex("x.com", true)}, []Edge{edge("a", "x.com")})
	box, err := valueobjects.NewBoundingBox(40, 20)
	require.NoError(t, err)
	g, err = g.WithLayout(GraphLayout{
		BoundingBox: box,
		Positions: map[string]valueobjects.Position{
			"a":     position(t, 16, 16),
			"x.com": position(t, 24, 4),
		},
	})
	require.NoError(t, err)

	data, err := json.Marshal(g)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"vertices": {
			"a": {"id": "a", "label": "a", "tags": ["go"], "href": "/a", "external": false},
			"x.com": {"id": "x.com", "label": "x.com", "tags": ["go"], "href": "/x.com", "external": true}
		},
		"edges": {
			"a->x.com": {"fromId": "a", "toId": "x.com", "tags": ["go"], "hrefs": ["/x.com"]}
		},
		"layout": {
			"boundingBox": {"width": 40, "height": 20},
			"positions": {"a": {"x": 16, "y": 16}, "x.com": {"x": 24, "y": 4}}
		}
	}`, string(data))
}
