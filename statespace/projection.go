package statespace

import (
	"math/rand"

	"github.com/pkg/errors"
)

// dropProjection projects a real-vector space onto a coarser space spanning its
// leading dimensions. The fiber (the dropped dimensions) is sampled uniformly on Lift.
type dropProjection struct {
	base Space
	fine *RealVectorSpace
}

// NewDropProjection relates a fine real-vector space to a coarser base space made of
// its leading degrees of freedom.
func NewDropProjection(base Space, fine *RealVectorSpace) (Projection, error) {
	if base.Dimension() >= fine.Dimension() {
		return nil, errors.Errorf("base space dimension %d must be smaller than fine space dimension %d",
			base.Dimension(), fine.Dimension())
	}
	return &dropProjection{base: base, fine: fine}, nil
}

func (p *dropProjection) Base() Space {
	return p.base
}

func (p *dropProjection) Project(fine State) State {
	return fine[:p.base.Dimension()].Clone()
}

func (p *dropProjection) Lift(base State, rnd *rand.Rand) State {
	limits := p.fine.Limits()
	s := make(State, p.fine.Dimension())
	copy(s, base)
	for i := len(base); i < len(s); i++ {
		l := limits[i]
		s[i] = l.Min + rnd.Float64()*(l.Max-l.Min)
	}
	return s
}
