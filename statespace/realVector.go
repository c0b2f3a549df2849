package statespace

import (
	"math"
	"math/rand"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// defaultResolution is the step, in distance units, at which motions are checked for validity.
const defaultResolution = 0.1

// Limit describes the bounds of a single degree of freedom.
type Limit struct {
	Min float64
	Max float64
}

// RealVectorSpace is a bounded R^n configuration space with Euclidean distance,
// linear interpolation, and motion checking by fixed-resolution subdivision
// against a pluggable state-validity function.
type RealVectorSpace struct {
	limits     []Limit
	resolution float64
	valid      func(State) bool
}

// NewRealVectorSpace creates a bounded real-vector space. A nil validity function
// means every in-bounds state is valid.
func NewRealVectorSpace(limits []Limit, valid func(State) bool) (*RealVectorSpace, error) {
	if len(limits) == 0 {
		return nil, errors.New("real vector space needs at least one degree of freedom")
	}
	for _, l := range limits {
		if l.Max < l.Min {
			return nil, errors.Errorf("invalid limit [%f, %f]", l.Min, l.Max)
		}
	}
	return &RealVectorSpace{limits: limits, resolution: defaultResolution, valid: valid}, nil
}

// SetResolution overrides the motion-check step size.
func (rv *RealVectorSpace) SetResolution(resolution float64) {
	rv.resolution = resolution
}

// Limits returns the per-dimension bounds.
func (rv *RealVectorSpace) Limits() []Limit {
	return rv.limits
}

func (rv *RealVectorSpace) Dimension() int {
	return len(rv.limits)
}

func (rv *RealVectorSpace) Measure() float64 {
	m := 1.0
	for _, l := range rv.limits {
		m *= l.Max - l.Min
	}
	return m
}

func (rv *RealVectorSpace) MaximumExtent() float64 {
	diag := make([]float64, len(rv.limits))
	for i, l := range rv.limits {
		diag[i] = l.Max - l.Min
	}
	return floats.Norm(diag, 2)
}

func (rv *RealVectorSpace) Sample(rnd *rand.Rand) State {
	s := make(State, len(rv.limits))
	for i, l := range rv.limits {
		s[i] = l.Min + rnd.Float64()*(l.Max-l.Min)
	}
	return s
}

func (rv *RealVectorSpace) SampleNear(rnd *rand.Rand, near State, distance float64) State {
	s := make(State, len(near))
	for i, v := range near {
		low := math.Max(rv.limits[i].Min, v-distance)
		high := math.Min(rv.limits[i].Max, v+distance)
		s[i] = low + rnd.Float64()*(high-low)
	}
	return s
}

func (rv *RealVectorSpace) Distance(a, b State) float64 {
	diff := make([]float64, len(a))
	for i := range a {
		diff[i] = a[i] - b[i]
	}
	return floats.Norm(diff, 2)
}

func (rv *RealVectorSpace) Interpolate(from, to State, t float64) State {
	s := make(State, len(from))
	for i := range from {
		s[i] = from[i] + t*(to[i]-from[i])
	}
	return s
}

func (rv *RealVectorSpace) CheckState(s State) bool {
	for i, v := range s {
		if v < rv.limits[i].Min || v > rv.limits[i].Max {
			return false
		}
	}
	if rv.valid != nil {
		return rv.valid(s)
	}
	return true
}

// CheckMotion subdivides the straight-line motion at the space's resolution and
// checks every intermediate state, endpoints included.
func (rv *RealVectorSpace) CheckMotion(a, b State) bool {
	if !rv.CheckState(a) || !rv.CheckState(b) {
		return false
	}
	steps := int(math.Ceil(rv.Distance(a, b) / rv.resolution))
	for i := 1; i < steps; i++ {
		t := float64(i) / float64(steps)
		if !rv.CheckState(rv.Interpolate(a, b, t)) {
			return false
		}
	}
	return true
}
