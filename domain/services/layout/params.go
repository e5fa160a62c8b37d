// Package layout computes rendering positions for the post graph with a
// force-directed simulation.
//
// Every constant below feeds the rendered layout directly: changing one
// changes where every vertex is drawn.
package layout

import "errors"

const (
	// DefaultSpringLength is the rest length of an edge spring and the
	// vertical gap between pinned post vertices
	DefaultSpringLength = 30.0
	// DefaultSpringCoefficient is the spring stiffness
	DefaultSpringCoefficient = 0.0008
	// DefaultGravity is the n-body coefficient. Negative values repel.
	DefaultGravity = -1.2
	// DefaultTheta is the Barnes-Hut accuracy. Lower is more exact.
	DefaultTheta = 0.8
	// DefaultDragCoefficient damps velocity every step
	DefaultDragCoefficient = 0.02
	// DefaultTimeStep is the integration step
	DefaultTimeStep = 20.0
	// DefaultSteps is the fixed number of simulation steps
	DefaultSteps = 1_000_000
	// DefaultScale converts simulation units into rendering units
	DefaultScale = 3.0
	// DefaultPadding surrounds the laid out vertices on every side
	DefaultPadding = 16.0
	// DefaultSeed seeds the placement of unpinned vertices and the nudge
	// applied to coincident bodies
	DefaultSeed = 42
)

// Params configures the simulation and the rescaling into rendering space
type Params struct {
	SpringLength      float64
	SpringCoefficient float64
	Gravity           float64
	Theta             float64
	DragCoefficient   float64
	TimeStep          float64
	Steps             int
	Scale             float64
	Padding           float64
	Seed              uint64
}

// DefaultParams returns the parameters the site is rendered with
func DefaultParams() Params {
	return Params{
		SpringLength:      DefaultSpringLength,
		SpringCoefficient: DefaultSpringCoefficient,
		Gravity:           DefaultGravity,
		Theta:             DefaultTheta,
		DragCoefficient:   DefaultDragCoefficient,
		TimeStep:          DefaultTimeStep,
		Steps:             DefaultSteps,
		Scale:             DefaultScale,
		Padding:           DefaultPadding,
		Seed:              DefaultSeed,
	}
}

// Validate checks that the parameters describe a usable simulation
func (p Params) Validate() error {
	if p.SpringLength <= 0 {
		return errors.New("spring length must be positive")
	}
	if p.Theta < 0 {
		return errors.New("theta cannot be negative")
	}
	if p.TimeStep <= 0 {
		return errors.New("time step must be positive")
	}
	if p.Steps < 0 {
		return errors.New("steps cannot be negative")
	}
	if p.Scale <= 0 {
		return errors.New("scale must be positive")
	}
	if p.Padding < 0 {
		return errors.New("padding cannot be negative")
	}
	return nil
}
