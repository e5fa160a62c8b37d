package layout

import (
	"fmt"
	"math"

	"github.com/TomerAberbach/website/domain/core/aggregates"
	"github.com/TomerAberbach/website/domain/core/valueobjects"
)

// Engine lays out graphs. Post vertices are pinned to a vertical line in
// vertex order and external vertices settle around them.
type Engine struct {
	params Params
}

// NewEngine creates an engine with the given parameters
func NewEngine(params Params) (*Engine, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid layout params: %w", err)
	}
	return &Engine{params: params}, nil
}

// Params returns the engine's parameters
func (e *Engine) Params() Params {
	return e.params
}

// Apply returns a copy of g carrying its computed layout
func (e *Engine) Apply(g *aggregates.Graph) *aggregates.Graph {
	laidOut, err := g.WithLayout(e.Compute(g))
	if err != nil {
		panic("layout: " + err.Error())
	}
	return laidOut
}

// Compute simulates g and returns positions in rendering space. The same
// graph and parameters always produce the same layout.
func (e *Engine) Compute(g *aggregates.Graph) aggregates.GraphLayout {
	vertices := g.Vertices()
	edges := g.Edges()
	sim := newSimulator(e.params)

	neighbours := make(map[string][]string, len(vertices))
	for _, edge := range edges {
		neighbours[edge.FromID] = append(neighbours[edge.FromID], edge.ToID)
		neighbours[edge.ToID] = append(neighbours[edge.ToID], edge.FromID)
	}

	bodies := make(map[string]*body, len(vertices))
	pinned := 0
	for _, v := range vertices {
		if v.External {
			continue
		}
		bodies[v.ID] = sim.addBody(vec{x: 0, y: float64(pinned) * e.params.SpringLength}, true)
		pinned++
	}
	for _, v := range vertices {
		if !v.External {
			continue
		}
		bodies[v.ID] = sim.addBody(e.seedPosition(sim, neighbours[v.ID], bodies), false)
	}

	for _, edge := range edges {
		sim.addSpring(bodies[edge.FromID], bodies[edge.ToID])
	}

	sim.run()

	return e.rescale(vertices, bodies)
}

// seedPosition starts a free vertex near the centroid of its already placed
// neighbours
func (e *Engine) seedPosition(sim *simulator, neighbours []string, placed map[string]*body) vec {
	var sum vec
	count := 0
	for _, id := range neighbours {
		if b, ok := placed[id]; ok {
			sum.x += b.pos.x
			sum.y += b.pos.y
			count++
		}
	}
	if count > 0 {
		sum.x /= float64(count)
		sum.y /= float64(count)
	}
	return vec{x: sum.x + sim.offset(), y: sum.y + sim.offset()}
}

func (e *Engine) rescale(vertices []aggregates.Vertex, bodies map[string]*body) aggregates.GraphLayout {
	scale, padding := e.params.Scale, e.params.Padding

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, b := range bodies {
		minX = math.Min(minX, b.pos.x)
		minY = math.Min(minY, b.pos.y)
		maxX = math.Max(maxX, b.pos.x)
		maxY = math.Max(maxY, b.pos.y)
	}
	if len(bodies) == 0 {
		minX, minY, maxX, maxY = 0, 0, 0, 0
	}

	box, err := valueobjects.NewBoundingBox((maxX-minX)*scale+2*padding, (maxY-minY)*scale+2*padding)
	if err != nil {
		panic("layout: " + err.Error())
	}

	positions := make(map[string]valueobjects.Position, len(vertices))
	for _, v := range vertices {
		b := bodies[v.ID]
		pos, err := valueobjects.NewPosition((b.pos.x-minX)*scale+padding, (b.pos.y-minY)*scale+padding)
		if err != nil {
			panic(fmt.Sprintf("layout: vertex %q: %v", v.ID, err))
		}
		positions[v.ID] = pos
	}

	return aggregates.GraphLayout{BoundingBox: box, Positions: positions}
}
