package layout

import (
	"math"
	"math/rand/v2"
)

type spring struct {
	from, to *body
}

// simulator advances bodies connected by springs with explicit Euler steps
type simulator struct {
	params  Params
	bodies  []*body
	springs []spring
	tree    *quadTree
	rng     *rand.Rand
}

func newSimulator(params Params) *simulator {
	return &simulator{
		params: params,
		tree:   newQuadTree(params.Theta, params.Gravity),
		rng:    rand.New(rand.NewPCG(params.Seed, params.Seed)),
	}
}

func (s *simulator) addBody(pos vec, pinned bool) *body {
	b := &body{pos: pos, mass: 1, pinned: pinned}
	s.bodies = append(s.bodies, b)
	return b
}

// addSpring connects two bodies. Heavier bodies move less, so each end
// gains a third of a unit of mass per spring.
func (s *simulator) addSpring(from, to *body) {
	from.mass += 1.0 / 3
	to.mass += 1.0 / 3
	if from == to {
		return
	}
	s.springs = append(s.springs, spring{from: from, to: to})
}

// jitter returns a small random offset used to separate coincident bodies
func (s *simulator) jitter() float64 {
	return (s.rng.Float64() - 0.5) / 50
}

// offset returns a random offset within half a spring length
func (s *simulator) offset() float64 {
	return (s.rng.Float64() - 0.5) * s.params.SpringLength
}

func (s *simulator) movable() bool {
	for _, b := range s.bodies {
		if !b.pinned {
			return true
		}
	}
	return false
}

// run performs the configured number of steps. A simulation without any
// movable body has nothing to settle.
func (s *simulator) run() {
	if !s.movable() {
		return
	}
	for range s.params.Steps {
		s.step()
	}
}

func (s *simulator) step() {
	for _, b := range s.bodies {
		b.force = vec{}
	}

	s.tree.build(s.bodies)
	for _, b := range s.bodies {
		if !b.pinned {
			s.tree.applyForce(b, s.jitter)
		}
	}

	for _, sp := range s.springs {
		s.pullSpring(sp)
	}

	drag := s.params.DragCoefficient
	for _, b := range s.bodies {
		b.force.x -= drag * b.vel.x
		b.force.y -= drag * b.vel.y
	}

	s.integrate()
}

func (s *simulator) pullSpring(sp spring) {
	dx := sp.to.pos.x - sp.from.pos.x
	dy := sp.to.pos.y - sp.from.pos.y
	r := math.Sqrt(dx*dx + dy*dy)
	for r == 0 {
		dx, dy = s.jitter(), s.jitter()
		r = math.Sqrt(dx*dx + dy*dy)
	}

	coeff := s.params.SpringCoefficient * (r - s.params.SpringLength) / r
	sp.from.force.x += coeff * dx
	sp.from.force.y += coeff * dy
	sp.to.force.x -= coeff * dx
	sp.to.force.y -= coeff * dy
}

// integrate moves every unpinned body. Velocity is capped at one unit per
// time step.
func (s *simulator) integrate() {
	dt := s.params.TimeStep
	for _, b := range s.bodies {
		if b.pinned {
			continue
		}

		coeff := dt / b.mass
		b.vel.x += coeff * b.force.x
		b.vel.y += coeff * b.force.y

		if v := math.Sqrt(b.vel.x*b.vel.x + b.vel.y*b.vel.y); v > 1 {
			b.vel.x /= v
			b.vel.y /= v
		}

		b.pos.x += dt * b.vel.x
		b.pos.y += dt * b.vel.y
	}
}
