package motionplan

import (
	"math"
	"math/rand"

	"github.com/edaniels/golog"

	"github.com/sohaib-gujjar/ompl/statespace"
)

// rrtStarPlanner grows a single tree with asymptotically optimal rewiring: each
// new sample is connected to the neighbor minimizing total path cost, then
// nearby nodes are reconnected through the new node whenever that strictly
// improves their cost, propagating the change to their subtrees.
type rrtStarPlanner struct {
	*planner
	algOpts *rrtStarOptions

	// rewiring lower bounds, from the space dimension and free-space measure
	d    float64
	kRRT float64
	rRRT float64

	goalNodes []int
}

func newRRTStarPlanner(
	space statespace.Space,
	objective statespace.Objective,
	start, goal statespace.State,
	seed *rand.Rand,
	logger golog.Logger,
	extra map[string]interface{},
) (levelPlanner, error) {
	p, err := newPlanner(space, objective, start, goal, seed, logger)
	if err != nil {
		return nil, err
	}
	algOpts, err := newRRTStarOptions(space, extra)
	if err != nil {
		return nil, err
	}
	mp := &rrtStarPlanner{planner: p, algOpts: algOpts}
	mp.calculateRewiringLowerBounds()
	return mp, nil
}

// calculateRewiringLowerBounds derives the k-nearest and radius constants that
// guarantee asymptotic optimality:
// k > 2^(d+1) * e * (1 + 1/d), r > (2*(1 + 1/d) * mu(Xfree)/zeta_d)^(1/d).
func (mp *rrtStarPlanner) calculateRewiringLowerBounds() {
	mp.d = float64(mp.space.Dimension())
	mp.kRRT = math.Pow(2, mp.d+1) * math.E * (1.0 + 1.0/mp.d)
	mp.rRRT = math.Pow(2*(1.0+1.0/mp.d)*(mp.space.Measure()/unitNBallMeasure(mp.space.Dimension())), 1.0/mp.d)
}

func (mp *rrtStarPlanner) init() error {
	mp.vStart = mp.graph.addNode(mp.start)
	qStart := mp.graph.node(mp.vStart)
	qStart.isStart = true
	qStart.cost = mp.objective.IdentityCost()
	mp.phase = phaseInitialized
	return nil
}

// nearestNeighbors gathers the rewiring neighborhood of a state, by k-nearest
// or by radius depending on configuration.
func (mp *rrtStarPlanner) nearestNeighbors(state statespace.State) []int {
	card := float64(mp.graph.numNodes() + 1)
	if mp.algOpts.UseKNearest {
		k := int(math.Ceil(mp.kRRT * math.Log(card)))
		return mp.graph.kNearest(state, k)
	}
	r := math.Min(mp.algOpts.MaxDistance, mp.rRRT*math.Pow(math.Log(card)/card, 1/mp.d))
	return mp.graph.rangeNearest(state, r)
}

func (mp *rrtStarPlanner) growOnce() {
	if mp.phase == phaseUninitialized {
		panic("growth cycle on uninitialized planner")
	}
	if !mp.hasSol {
		mp.phase = phaseGrowing
	}

	// (1) sample, (2) find nearest tree node, (3) steer toward the sample
	target := mp.sampleGoalBiased(mp.algOpts.GoalBias)
	vNearest := mp.graph.nearest(target)
	qNearest := mp.graph.node(vNearest)
	newState := mp.steerTowardRange(qNearest.state, target, mp.algOpts.MaxDistance)
	if !mp.space.CheckMotion(qNearest.state, newState) {
		return
	}

	// (4) connect to the neighbor minimizing total path cost
	neighbors := mp.nearestNeighbors(newState)
	lineCost := mp.objective.MotionCost(qNearest.state, newState)
	cost := mp.objective.CombineCosts(qNearest.cost, lineCost)
	parent := vNearest

	// motion validity per neighbor: 1 valid, 0 unchecked, -1 invalid. The line
	// costs are cached for rewiring since the metric is symmetric.
	validNeighbor := make([]int, len(neighbors))
	lineCosts := make([]statespace.Cost, len(neighbors))
	for i, vNear := range neighbors {
		if vNear == vNearest {
			validNeighbor[i] = 1
			lineCosts[i] = lineCost
			continue
		}
		qNear := mp.graph.node(vNear)
		nearLineCost := mp.objective.MotionCost(qNear.state, newState)
		lineCosts[i] = nearLineCost
		nearCost := mp.objective.CombineCosts(qNear.cost, nearLineCost)
		if !mp.objective.IsCostBetterThan(nearCost, cost) {
			continue
		}
		if mp.withinRange(qNear.state, newState) && mp.space.CheckMotion(qNear.state, newState) {
			lineCost = nearLineCost
			cost = nearCost
			parent = vNear
			validNeighbor[i] = 1
		} else {
			validNeighbor[i] = -1
		}
	}

	vNew := mp.graph.addNode(newState)
	qNew := mp.graph.node(vNew)
	qNew.lineCost = lineCost
	qNew.cost = cost
	qNew.parent = parent
	mp.graph.node(parent).children = append(mp.graph.node(parent).children, vNew)

	// (5) rewire: reconnect neighbors through the new node when strictly better
	checkForSolution := false
	for i, vNear := range neighbors {
		if vNear == qNew.parent {
			continue
		}
		qNear := mp.graph.node(vNear)
		rewireCost := mp.objective.CombineCosts(qNew.cost, lineCosts[i])
		if !mp.objective.IsCostBetterThan(rewireCost, qNear.cost) {
			continue
		}
		valid := validNeighbor[i] == 1
		if validNeighbor[i] == 0 {
			valid = mp.withinRange(qNear.state, newState) && mp.space.CheckMotion(newState, qNear.state)
		}
		if !valid {
			continue
		}
		mp.graph.node(qNear.parent).removeChild(vNear)
		qNear.lineCost = lineCosts[i]
		qNear.cost = rewireCost
		qNear.parent = vNew
		qNew.children = append(qNew.children, vNear)
		mp.updateChildCosts(vNear)
		checkForSolution = true
	}

	// (6) goal satisfaction and best-goal tracking
	if mp.satisfiesGoal(newState, mp.algOpts.GoalThreshold) {
		qNew.isGoal = true
		mp.goalNodes = append(mp.goalNodes, vNew)
		checkForSolution = true
	}
	if checkForSolution {
		mp.checkGoalNodes()
	}
}

// withinRange enforces the steering range on k-nearest neighborhoods; radius
// neighborhoods are range-bounded by construction.
func (mp *rrtStarPlanner) withinRange(a, b statespace.State) bool {
	return !mp.algOpts.UseKNearest || mp.space.Distance(a, b) < mp.algOpts.MaxDistance
}

// updateChildCosts restores cost = combine(parent.cost, lineCost) for the whole
// subtree below the given node after a rewiring changed its cost.
func (mp *rrtStarPlanner) updateChildCosts(index int) {
	q := mp.graph.node(index)
	for _, child := range q.children {
		qChild := mp.graph.node(child)
		qChild.cost = mp.objective.CombineCosts(q.cost, qChild.lineCost)
		mp.updateChildCosts(child)
	}
}

// checkGoalNodes rescans every goal-satisfying node for the best known cost;
// rewiring may have improved any of them.
func (mp *rrtStarPlanner) checkGoalNodes() {
	updated := false
	for _, v := range mp.goalNodes {
		q := mp.graph.node(v)
		if mp.objective.IsCostBetterThan(q.cost, mp.bestCost) {
			mp.vGoal = v
			mp.bestCost = q.cost
			updated = true
		}
	}
	if updated {
		mp.logger.Debugf("found path with cost %f", mp.bestCost)
		mp.hasSol = true
		mp.phase = phaseSolved
	}
}

// extractSolution reconstructs the path by walking parent links from the best
// goal node backward to the root.
func (mp *rrtStarPlanner) extractSolution() (*Solution, bool) {
	if !mp.hasSol {
		return nil, false
	}
	states := []statespace.State{}
	for v := mp.vGoal; v != noParent; v = mp.graph.node(v).parent {
		states = append(states, mp.graph.node(v).state)
	}
	for i, j := 0, len(states)-1; i < j; i, j = i+1, j-1 {
		states[i], states[j] = states[j], states[i]
	}
	return &Solution{States: states, Cost: mp.bestCost}, true
}
