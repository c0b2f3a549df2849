// Package motionplan is a hierarchical sampling-based motion planning library.
//
// Planning problems are solved over an ordered sequence of levels, each a
// successively finer configuration space. Every level grows its own roadmap
// graph with a pluggable growth strategy; a controller schedules growth across
// levels by importance and composes the final solution path from the most
// concrete level.
package motionplan

import (
	"math/rand"

	"github.com/edaniels/golog"

	"github.com/sohaib-gujjar/ompl/statespace"
)

// Growth strategy names accepted by level configuration.
const (
	StrategyRRTStar       = "rrtstar"
	StrategyRoadmap       = "roadmap"
	StrategySparseRoadmap = "sparse_roadmap"
)

// plannerPhase tracks the lifecycle of a level's growth: seeded, growing,
// solved. Growing is re-entered after Solved when a strategy keeps optimizing.
type plannerPhase int

const (
	phaseUninitialized plannerPhase = iota
	phaseInitialized
	phaseGrowing
	phaseSolved
)

// Solution is an ordered sequence of states from start to goal. PathIndices
// records, per level from most abstract to most concrete, which stored
// alternative path the solution was projected from.
type Solution struct {
	States      []statespace.State
	Cost        statespace.Cost
	PathIndices []int
}

// levelPlanner is the closed strategy interface dispatched by name: seed the
// level, run one growth cycle, extract the current best solution.
type levelPlanner interface {
	init() error
	growOnce()
	solved() bool
	extractSolution() (*Solution, bool)

	denseGraph() *roadmap
	spanner() *sparseRoadmap
	numSamples() int

	// sampleFromGraph draws a state from the level's grown structure, used by
	// the next-finer level to bias its sampling.
	sampleFromGraph(rnd *rand.Rand) statespace.State

	// setSampleBias installs a sampler fed by the coarser level's roadmap.
	setSampleBias(bias func(rnd *rand.Rand) statespace.State)
}

// planner holds the state shared by all growth strategies at one level.
type planner struct {
	space      statespace.Space
	objective  statespace.Objective
	logger     golog.Logger
	rnd        *rand.Rand
	graph      *roadmap
	start      statespace.State
	goal       statespace.State
	vStart     int
	vGoal      int
	hasSol     bool
	bestCost   statespace.Cost
	phase      plannerPhase
	sampleBias func(rnd *rand.Rand) statespace.State
}

func newPlanner(
	space statespace.Space,
	objective statespace.Objective,
	start, goal statespace.State,
	seed *rand.Rand,
	logger golog.Logger,
) (*planner, error) {
	if start == nil || !space.CheckState(start) {
		return nil, errNoStart
	}
	if goal == nil || !space.CheckState(goal) {
		return nil, errNoGoal
	}
	return &planner{
		space:     space,
		objective: objective,
		logger:    logger,
		rnd:       seed,
		graph:     newRoadmap(space, objective),
		start:     start.Clone(),
		goal:      goal.Clone(),
		vStart:    noParent,
		vGoal:     noParent,
		bestCost:  objective.InfiniteCost(),
	}, nil
}

// sample draws a candidate state, deferring to the installed coarse-level bias
// when one is present.
func (p *planner) sample() statespace.State {
	if p.sampleBias != nil {
		return p.sampleBias(p.rnd)
	}
	return p.space.Sample(p.rnd)
}

// sampleGoalBiased returns the goal state with the given probability while the
// level is unsolved, otherwise a regular sample.
func (p *planner) sampleGoalBiased(goalBias float64) statespace.State {
	if !p.hasSol && p.rnd.Float64() < goalBias {
		return p.goal.Clone()
	}
	return p.sample()
}

// steerTowardRange moves from one state toward another, capped at maxDistance.
func (p *planner) steerTowardRange(from, to statespace.State, maxDistance float64) statespace.State {
	if d := p.space.Distance(from, to); d > maxDistance {
		return p.space.Interpolate(from, to, maxDistance/d)
	}
	return to.Clone()
}

func (p *planner) satisfiesGoal(state statespace.State, threshold float64) bool {
	return p.space.Distance(state, p.goal) <= threshold
}

func (p *planner) solved() bool {
	return p.hasSol
}

func (p *planner) denseGraph() *roadmap {
	return p.graph
}

func (p *planner) spanner() *sparseRoadmap {
	return nil
}

func (p *planner) numSamples() int {
	return p.graph.numNodes()
}

// sampleFromGraph draws the state of a uniformly random grown node. Used to
// bias sampling on the next-finer level; strategies override this to prefer
// solution paths once they hold any.
func (p *planner) sampleFromGraph(rnd *rand.Rand) statespace.State {
	if p.graph.numNodes() == 0 {
		return p.space.Sample(rnd)
	}
	q := p.graph.node(rnd.Intn(p.graph.numNodes()))
	return q.state.Clone()
}

func (p *planner) setSampleBias(bias func(rnd *rand.Rand) statespace.State) {
	p.sampleBias = bias
}

// newLevelPlanner dispatches a growth strategy by name. An unrecognized name is
// a configuration error, surfaced at setup.
func newLevelPlanner(
	strategy string,
	space statespace.Space,
	objective statespace.Objective,
	start, goal statespace.State,
	seed *rand.Rand,
	logger golog.Logger,
	extra map[string]interface{},
) (levelPlanner, error) {
	switch strategy {
	case StrategyRRTStar:
		return newRRTStarPlanner(space, objective, start, goal, seed, logger, extra)
	case StrategyRoadmap:
		return newRoadmapPlanner(space, objective, start, goal, seed, logger, extra)
	case StrategySparseRoadmap:
		return newSparseRoadmapPlanner(space, objective, start, goal, seed, logger, extra)
	default:
		return nil, newUnknownStrategyError(strategy)
	}
}
