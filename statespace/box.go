package statespace

import (
	"github.com/golang/geo/r3"
)

// Box is an axis-aligned box obstacle in the first three dimensions of a space.
// Dimensions the state does not have are treated as zero.
type Box struct {
	center   r3.Vector
	halfSize r3.Vector
}

// NewBox creates a box obstacle centered at center with the given total side lengths.
func NewBox(center, size r3.Vector) Box {
	return Box{center: center, halfSize: size.Mul(0.5)}
}

// Contains reports whether the state lies inside the box.
func (b Box) Contains(s State) bool {
	p := r3.Vector{}
	if len(s) > 0 {
		p.X = s[0]
	}
	if len(s) > 1 {
		p.Y = s[1]
	}
	if len(s) > 2 {
		p.Z = s[2]
	}
	d := p.Sub(b.center)
	return d.X >= -b.halfSize.X && d.X <= b.halfSize.X &&
		d.Y >= -b.halfSize.Y && d.Y <= b.halfSize.Y &&
		d.Z >= -b.halfSize.Z && d.Z <= b.halfSize.Z
}

// NewBoxWorld creates a bounded real-vector space whose invalid region is the union
// of the given box obstacles.
func NewBoxWorld(limits []Limit, obstacles []Box) (*RealVectorSpace, error) {
	return NewRealVectorSpace(limits, func(s State) bool {
		for _, box := range obstacles {
			if box.Contains(s) {
				return false
			}
		}
		return true
	})
}
