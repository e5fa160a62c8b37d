package layout

import "math"

// maxDepth bounds subdivision for bodies that are extremely close but not
// coincident. Deeper bodies share a leaf.
const maxDepth = 48

type vec struct {
	x, y float64
}

type body struct {
	pos    vec
	vel    vec
	force  vec
	mass   float64
	pinned bool
}

// quad is a node of the Barnes-Hut tree. Leaves hold bodies directly;
// internal nodes hold four children indexed into the tree's arena.
type quad struct {
	left, top, size float64
	mass            float64
	massX, massY    float64
	bodies          []*body
	children        [4]int
	internal        bool
}

// quadTree approximates n-body forces. Nodes are allocated from an arena
// that is reused between steps.
type quadTree struct {
	nodes   []quad
	theta   float64
	gravity float64
	stack   []int
}

func newQuadTree(theta, gravity float64) *quadTree {
	return &quadTree{theta: theta, gravity: gravity}
}

func (t *quadTree) newNode(left, top, size float64) int {
	t.nodes = append(t.nodes, quad{left: left, top: top, size: size})
	return len(t.nodes) - 1
}

// build resets the tree and inserts every body
func (t *quadTree) build(bodies []*body) {
	t.nodes = t.nodes[:0]
	if len(bodies) == 0 {
		return
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, b := range bodies {
		minX = math.Min(minX, b.pos.x)
		minY = math.Min(minY, b.pos.y)
		maxX = math.Max(maxX, b.pos.x)
		maxY = math.Max(maxY, b.pos.y)
	}
	size := math.Max(maxX-minX, maxY-minY) + 1

	t.newNode(minX, minY, size)
	for _, b := range bodies {
		t.insert(b)
	}
}

func (t *quadTree) insert(b *body) {
	i, depth := 0, 0
	for {
		n := &t.nodes[i]
		n.mass += b.mass
		n.massX += b.pos.x * b.mass
		n.massY += b.pos.y * b.mass

		if n.internal {
			i = t.child(i, b.pos)
			depth++
			continue
		}

		if len(n.bodies) == 0 || depth >= maxDepth || n.bodies[0].pos == b.pos {
			n.bodies = append(n.bodies, b)
			return
		}

		// Split the leaf and push its bodies one level down. The loop then
		// continues inserting b into the new children.
		existing := n.bodies
		n.bodies = nil
		n.internal = true
		left, top, half := n.left, n.top, n.size/2
		for q := range 4 {
			x := left
			if q&1 == 1 {
				x += half
			}
			y := top
			if q&2 == 2 {
				y += half
			}
			child := t.newNode(x, y, half)
			t.nodes[i].children[q] = child
		}
		for _, e := range existing {
			c := &t.nodes[t.child(i, e.pos)]
			c.bodies = append(c.bodies, e)
			c.mass += e.mass
			c.massX += e.pos.x * e.mass
			c.massY += e.pos.y * e.mass
		}
		// b is already counted in node i
		i = t.child(i, b.pos)
		depth++
	}
}

func (t *quadTree) child(i int, p vec) int {
	n := &t.nodes[i]
	half := n.size / 2
	q := 0
	if p.x >= n.left+half {
		q |= 1
	}
	if p.y >= n.top+half {
		q |= 2
	}
	return n.children[q]
}

// applyForce accumulates the n-body force acting on b. jitter separates
// bodies that sit exactly on top of each other.
func (t *quadTree) applyForce(b *body, jitter func() float64) {
	if len(t.nodes) == 0 {
		return
	}

	t.stack = append(t.stack[:0], 0)
	for len(t.stack) > 0 {
		i := t.stack[len(t.stack)-1]
		t.stack = t.stack[:len(t.stack)-1]
		n := &t.nodes[i]

		if !n.internal {
			for _, other := range n.bodies {
				if other == b {
					continue
				}
				t.pull(b, other.pos.x-b.pos.x, other.pos.y-b.pos.y, other.mass, jitter)
			}
			continue
		}

		dx := n.massX/n.mass - b.pos.x
		dy := n.massY/n.mass - b.pos.y
		r := math.Sqrt(dx*dx + dy*dy)
		if r > 0 && n.size/r < t.theta {
			t.pull(b, dx, dy, n.mass, jitter)
			continue
		}
		for _, c := range n.children {
			if t.nodes[c].mass > 0 {
				t.stack = append(t.stack, c)
			}
		}
	}
}

func (t *quadTree) pull(b *body, dx, dy, mass float64, jitter func() float64) {
	r := math.Sqrt(dx*dx + dy*dy)
	for r == 0 {
		dx, dy = jitter(), jitter()
		r = math.Sqrt(dx*dx + dy*dy)
	}
	v := t.gravity * mass * b.mass / (r * r * r)
	b.force.x += v * dx
	b.force.y += v * dy
}
