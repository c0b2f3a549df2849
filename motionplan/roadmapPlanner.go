package motionplan

import (
	"math/rand"

	"github.com/edaniels/golog"

	"github.com/sohaib-gujjar/ompl/statespace"
)

// roadmapPlanner is the multi-query k-nearest roadmap strategy: every valid
// sample is inserted unconditionally and connected to its nearest existing
// neighbors where the motion is valid. A solution exists once start and goal
// share a connected component, detected by union-find rather than by search.
type roadmapPlanner struct {
	*planner
	algOpts *roadmapOptions

	// inserted is called after every dense node insertion; the sparse variant
	// hooks it to offer the node to the spanner.
	inserted func(v int)
}

func newRoadmapPlanner(
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
	algOpts, err := newRoadmapOptions(space, extra)
	if err != nil {
		return nil, err
	}
	return &roadmapPlanner{planner: p, algOpts: algOpts}, nil
}

func (mp *roadmapPlanner) init() error {
	mp.vStart = mp.graph.addNode(mp.start)
	qStart := mp.graph.node(mp.vStart)
	qStart.isStart = true
	qStart.cost = mp.objective.IdentityCost()
	mp.vGoal = mp.graph.addNode(mp.goal)
	mp.graph.node(mp.vGoal).isGoal = true
	if mp.inserted != nil {
		mp.inserted(mp.vStart)
		mp.inserted(mp.vGoal)
	}
	mp.phase = phaseInitialized
	return nil
}

func (mp *roadmapPlanner) growOnce() {
	if mp.phase == phaseUninitialized {
		panic("growth cycle on uninitialized planner")
	}
	if !mp.hasSol {
		mp.phase = phaseGrowing
	}

	target := mp.sampleGoalBiased(mp.algOpts.GoalBias)
	neighbors := mp.graph.kNearest(target, mp.algOpts.ConnectionNeighbors)

	// The first neighbor with a valid connection fixes the new node, truncated
	// to the steering range; remaining neighbors only contribute extra edges.
	vNext := noParent
	for _, vNbr := range neighbors {
		qNbr := mp.graph.node(vNbr)
		qNbr.totalConnectionAttempts++
		if vNext == noParent {
			if !mp.space.CheckMotion(qNbr.state, target) {
				continue
			}
			state := mp.steerTowardRange(qNbr.state, target, mp.algOpts.MaxDistance)
			vNext = mp.graph.addNode(state)
			mp.graph.addEdge(vNbr, vNext)
			qNbr.successfulConnectionAttempts++
			if mp.inserted != nil {
				mp.inserted(vNext)
			}
		} else if mp.space.CheckMotion(qNbr.state, mp.graph.node(vNext).state) {
			mp.graph.addEdge(vNbr, vNext)
			qNbr.successfulConnectionAttempts++
		}
	}

	if !mp.hasSol && mp.graph.sameComponent(mp.vStart, mp.vGoal) {
		mp.logger.Debugf("start and goal connected after %d samples", mp.graph.numNodes())
		mp.hasSol = true
		mp.phase = phaseSolved
	}
}

// extractSolution reconstructs the current best path by shortest-path search
// over the roadmap edges.
func (mp *roadmapPlanner) extractSolution() (*Solution, bool) {
	if !mp.hasSol {
		return nil, false
	}
	states, _, ok := mp.graph.shortestPath(mp.vStart, mp.vGoal)
	if !ok {
		return nil, false
	}
	return &Solution{States: states, Cost: pathCost(mp.objective, states)}, true
}
