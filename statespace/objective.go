package statespace

import "math"

// Cost is the accumulated quality of a motion or path. Lower is better under the
// default objectives, but planners must only compare costs through an Objective.
type Cost float64

// Objective defines how motion costs are computed, combined and compared. It mirrors
// the optimization-objective contract of sampling-based planners: graph searches use
// CombineCosts and IsCostBetterThan as their accumulation and ordering functions, and
// MotionCostHeuristic as the admissible search heuristic.
type Objective interface {
	MotionCost(a, b State) Cost
	CombineCosts(c1, c2 Cost) Cost
	IsCostBetterThan(c1, c2 Cost) bool
	MotionCostHeuristic(a, b State) Cost
	IdentityCost() Cost
	InfiniteCost() Cost
}

type pathLengthObjective struct {
	space Space
}

// NewPathLengthObjective returns an objective that minimizes total path length
// under the space's distance metric.
func NewPathLengthObjective(space Space) Objective {
	return &pathLengthObjective{space: space}
}

func (o *pathLengthObjective) MotionCost(a, b State) Cost {
	return Cost(o.space.Distance(a, b))
}

func (o *pathLengthObjective) CombineCosts(c1, c2 Cost) Cost {
	return c1 + c2
}

func (o *pathLengthObjective) IsCostBetterThan(c1, c2 Cost) bool {
	return c1 < c2
}

func (o *pathLengthObjective) MotionCostHeuristic(a, b State) Cost {
	return o.MotionCost(a, b)
}

func (o *pathLengthObjective) IdentityCost() Cost {
	return 0
}

func (o *pathLengthObjective) InfiniteCost() Cost {
	return Cost(math.Inf(1))
}
