// Package statespace provides configuration space abstractions for sampling-based motion planning.
package statespace

import (
	"math/rand"
)

// State is a single configuration, expressed as a vector of real values.
type State []float64

// Clone returns a copy of the state with its own backing array.
func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

// Space is the capability contract a planner needs from a configuration space: sampling,
// distance, interpolation and motion validity. Implementations must be usable from a single
// goroutine; the RNG is always passed in by the caller so that planners can own their seeds.
type Space interface {
	// Dimension returns the number of degrees of freedom of the space.
	Dimension() int

	// Measure returns the measure (volume) of the space.
	Measure() float64

	// MaximumExtent returns the maximum distance between any two states in the space.
	MaximumExtent() float64

	// Sample returns a uniformly random state within bounds. The state is not guaranteed valid.
	Sample(rnd *rand.Rand) State

	// SampleNear returns a random state within the given distance of near.
	SampleNear(rnd *rand.Rand, near State, distance float64) State

	// Distance returns the distance between two states.
	Distance(a, b State) float64

	// Interpolate returns the state a fraction t of the way from one state to another.
	Interpolate(from, to State, t float64) State

	// CheckState reports whether a single state is valid.
	CheckState(s State) bool

	// CheckMotion reports whether the straight-line motion between two states is valid.
	CheckMotion(a, b State) bool
}

// Projection relates a space to a coarser base space that it refines. Project drops the
// refined degrees of freedom; Lift restores them by sampling the fiber uniformly.
type Projection interface {
	// Base returns the coarser space being projected onto.
	Base() Space

	// Project maps a state of the refined space to the base space.
	Project(fine State) State

	// Lift maps a base-space state to the refined space, filling the remaining
	// degrees of freedom with a uniform sample.
	Lift(base State, rnd *rand.Rand) State
}
