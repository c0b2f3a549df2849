package motionplan

import (
	"math"
	"math/rand"

	"github.com/sohaib-gujjar/ompl/statespace"
)

// unitNBallMeasure returns the Lebesgue measure of the unit ball in d dimensions.
func unitNBallMeasure(d int) float64 {
	return math.Pow(math.Pi, float64(d)/2.0) / math.Gamma(float64(d)/2.0+1.0)
}

// reduceVertices simplifies a path by repeatedly attempting to shortcut over
// intermediate states with a valid direct motion, up to maxSteps attempts. The
// endpoints are always preserved.
func reduceVertices(space statespace.Space, states []statespace.State, maxSteps int, rnd *rand.Rand) []statespace.State {
	if len(states) < 3 {
		return states
	}
	path := make([]statespace.State, len(states))
	copy(path, states)
	for step := 0; step < maxSteps && len(path) > 2; step++ {
		i := rnd.Intn(len(path) - 2)
		j := i + 2 + rnd.Intn(len(path)-i-2)
		if space.CheckMotion(path[i], path[j]) {
			path = append(path[:i+1], path[j:]...)
		}
	}
	return path
}

// interpolateAlongPath returns a state a random fraction along a random edge of
// the path, the edge-sampling scheme used for path-biased sampling.
func interpolateAlongPath(space statespace.Space, path []statespace.State, rnd *rand.Rand) statespace.State {
	if len(path) == 1 {
		return path[0].Clone()
	}
	k := rnd.Intn(len(path))
	if k == len(path)-1 {
		k--
	}
	return space.Interpolate(path[k], path[k+1], rnd.Float64())
}
