package motionplan

import (
	"math/rand"

	"github.com/edaniels/golog"

	"github.com/sohaib-gujjar/ompl/statespace"
)

// sparseRoadmapPlanner layers a sparse spanner on top of the k-nearest roadmap
// strategy. Every dense insertion is offered to the spanner, solutions are
// enumerated on the sparse graph, and distinct solution paths are retained on a
// stack used for path-biased sampling by finer levels.
type sparseRoadmapPlanner struct {
	*roadmapPlanner
	sparseOpts *sparseOptions
	sparse     *sparseRoadmap

	pathStack [][]statespace.State
}

func newSparseRoadmapPlanner(
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
	sparseOpts, err := newSparseOptions(space, extra)
	if err != nil {
		return nil, err
	}
	mp := &sparseRoadmapPlanner{
		roadmapPlanner: &roadmapPlanner{planner: p, algOpts: sparseOpts.roadmapOptions},
		sparseOpts:     sparseOpts,
		sparse:         newSparseRoadmap(p.graph, sparseOpts, p.rnd, logger),
	}
	mp.roadmapPlanner.inserted = mp.offerToSpanner
	return mp, nil
}

func (mp *sparseRoadmapPlanner) init() error {
	if err := mp.roadmapPlanner.init(); err != nil {
		return err
	}
	// start and goal are seeded into the spanner directly rather than going
	// through the admission tests
	mp.sparse.seed(mp.graph.node(mp.vStart), mp.graph.node(mp.vGoal))
	return nil
}

// offerToSpanner runs a freshly inserted dense node through the spanner
// admission pipeline. Installed as the dense-insertion hook, except start and
// goal which seed() handles.
func (mp *sparseRoadmapPlanner) offerToSpanner(vDense int) {
	q := mp.graph.node(vDense)
	if q.isStart || q.isGoal {
		return
	}
	mp.sparse.offer(vDense)
}

func (mp *sparseRoadmapPlanner) growOnce() {
	mp.roadmapPlanner.growOnce()
	if mp.hasSol {
		mp.enumeratePath()
	}
}

// enumeratePath pushes the current best sparse solution onto the path stack.
// The sparse graph only shrinks relative distortion over time, so re-running
// the search after growth can discover new homotopy classes.
func (mp *sparseRoadmapPlanner) enumeratePath() {
	states, _, ok := mp.sparse.shortestPath()
	if !ok {
		return
	}
	mp.pushPathToStack(states)
}

// pushPathToStack retains a solution path unless it is deformable into one
// already held, keeping at most the configured number of alternatives.
func (mp *sparseRoadmapPlanner) pushPathToStack(path []statespace.State) {
	if len(mp.pathStack) >= mp.sparseOpts.PathStackSize {
		return
	}
	for _, held := range mp.pathStack {
		if mp.samePathClass(held, path) {
			return
		}
	}
	mp.logger.Debugf("retaining alternative path %d with %d states", len(mp.pathStack), len(path))
	mp.pathStack = append(mp.pathStack, path)
}

// samePathClass tests whether two paths are visibility-deformable into each
// other by checking motions between states matched at equal path fractions.
func (mp *sparseRoadmapPlanner) samePathClass(a, b []statespace.State) bool {
	const checks = 10
	for i := 0; i <= checks; i++ {
		t := float64(i) / checks
		sa := statePathInterpolate(mp.space, a, t)
		sb := statePathInterpolate(mp.space, b, t)
		if !mp.space.CheckMotion(sa, sb) {
			return false
		}
	}
	return true
}

// statePathInterpolate returns the state at fraction t of the path's total
// arc length.
func statePathInterpolate(space statespace.Space, path []statespace.State, t float64) statespace.State {
	if len(path) == 1 {
		return path[0]
	}
	total := 0.
	for i := 1; i < len(path); i++ {
		total += space.Distance(path[i-1], path[i])
	}
	target := t * total
	for i := 1; i < len(path); i++ {
		d := space.Distance(path[i-1], path[i])
		if target <= d || i == len(path)-1 {
			if d == 0 {
				return path[i]
			}
			return space.Interpolate(path[i-1], path[i], target/d)
		}
		target -= d
	}
	return path[len(path)-1]
}

func (mp *sparseRoadmapPlanner) spanner() *sparseRoadmap {
	return mp.sparse
}

// sampleFromGraph biases finer levels toward held solution paths: with the
// configured probability a state is drawn near a random point of a random
// retained path, otherwise from a random sparse vertex.
func (mp *sparseRoadmapPlanner) sampleFromGraph(rnd *rand.Rand) statespace.State {
	if len(mp.pathStack) > 0 && rnd.Float64() < mp.sparseOpts.PathSampleProbability {
		path := mp.pathStack[rnd.Intn(len(mp.pathStack))]
		on := interpolateAlongPath(mp.space, path, rnd)
		return mp.space.SampleNear(rnd, on, mp.sparseOpts.PathBiasFraction*mp.space.MaximumExtent())
	}
	if mp.sparse.graph.numNodes() == 0 {
		return mp.space.Sample(rnd)
	}
	q := mp.sparse.graph.node(rnd.Intn(mp.sparse.graph.numNodes()))
	return q.state.Clone()
}

// extractSolution prefers the sparse graph; the path index records which stack
// entry the returned path corresponds to.
func (mp *sparseRoadmapPlanner) extractSolution() (*Solution, bool) {
	if !mp.hasSol {
		return nil, false
	}
	states, _, ok := mp.sparse.shortestPath()
	if !ok {
		// fall back to the dense roadmap; spanner repair may lag behind
		sol, ok := mp.roadmapPlanner.extractSolution()
		if !ok {
			return nil, false
		}
		sol.PathIndices = []int{0}
		return sol, true
	}
	pathIndex := 0
	for i, held := range mp.pathStack {
		if mp.samePathClass(held, states) {
			pathIndex = i
			break
		}
	}
	return &Solution{
		States:      states,
		Cost:        pathCost(mp.objective, states),
		PathIndices: []int{pathIndex},
	}, true
}
