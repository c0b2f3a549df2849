package motionplan

import (
	"container/heap"
	"context"
	"math/rand"

	"github.com/edaniels/golog"
	"go.viam.com/utils"

	"github.com/sohaib-gujjar/ompl/statespace"
)

// defaultMaxCycles bounds the total growth cycles across all levels when the
// caller does not set one.
const defaultMaxCycles = 50000

// LevelConfig describes one level of the hierarchy, coarse to concrete.
type LevelConfig struct {
	// Space is the level's configuration space.
	Space statespace.Space

	// Projection relates this space to the previous, coarser level's space.
	// Nil on the coarsest level, required on every other.
	Projection statespace.Projection

	// Strategy selects the growth strategy by name. Empty selects sparse_roadmap.
	Strategy string

	// Extra overrides the strategy's option struct fields by JSON name.
	Extra map[string]interface{}
}

// Config describes a full hierarchical planning problem.
type Config struct {
	// Levels are ordered from most abstract to most concrete.
	Levels []LevelConfig

	// Start and Goal are stated in the most concrete space and projected down
	// the chain for the coarser levels.
	Start statespace.State
	Goal  statespace.State

	// Importance selects the level scheduling function by name. Empty selects
	// greedy.
	Importance string

	// StopLevel limits planning to the first n levels; zero plans all of them.
	StopLevel int

	// MaxCycles bounds the total growth cycles before giving up; zero selects
	// the default.
	MaxCycles int

	// Seed makes planning deterministic; each level derives its own generator
	// from it.
	Seed int64
}

// level binds a configured space to its growth strategy instance.
type level struct {
	index       int
	space       statespace.Space
	projection  statespace.Projection
	planner     levelPlanner
	initialized bool
}

// levelQueue is a max-heap of levels keyed by importance, recomputed on push.
type levelQueue struct {
	levels     []*level
	priorities []float64
	importance importanceFunc
}

func (q *levelQueue) Len() int           { return len(q.levels) }
func (q *levelQueue) Less(i, j int) bool { return q.priorities[i] > q.priorities[j] }
func (q *levelQueue) Push(x interface{}) { panic("push through pushLevel") }
func (q *levelQueue) Pop() interface{}   { panic("pop through popLevel") }
func (q *levelQueue) Swap(i, j int) {
	q.levels[i], q.levels[j] = q.levels[j], q.levels[i]
	q.priorities[i], q.priorities[j] = q.priorities[j], q.priorities[i]
}

func (q *levelQueue) pushLevel(lvl *level) {
	q.levels = append(q.levels, lvl)
	q.priorities = append(q.priorities, q.importance(lvl))
	heap.Fix(q, len(q.levels)-1)
}

func (q *levelQueue) popLevel() *level {
	n := len(q.levels) - 1
	q.Swap(0, n)
	lvl := q.levels[n]
	q.levels = q.levels[:n]
	q.priorities = q.priorities[:n]
	if n > 0 {
		heap.Fix(q, 0)
	}
	return lvl
}

// planManager owns the level hierarchy and schedules growth cycles across
// levels by importance until the stop level holds a solution.
type planManager struct {
	levels    []*level
	queue     *levelQueue
	logger    golog.Logger
	stopIndex int
	maxCycles int
}

type planReturn struct {
	solution *Solution
	err      error
}

func newPlanManager(cfg *Config, logger golog.Logger) (*planManager, error) {
	if len(cfg.Levels) == 0 {
		return nil, errNoLevels
	}
	stopIndex := len(cfg.Levels) - 1
	if cfg.StopLevel > 0 && cfg.StopLevel <= stopIndex {
		stopIndex = cfg.StopLevel - 1
	}
	importance, err := newImportanceFunc(cfg.Importance)
	if err != nil {
		return nil, err
	}
	maxCycles := cfg.MaxCycles
	if maxCycles <= 0 {
		maxCycles = defaultMaxCycles
	}

	// project the concrete start and goal down the projection chain
	starts := make([]statespace.State, len(cfg.Levels))
	goals := make([]statespace.State, len(cfg.Levels))
	starts[len(cfg.Levels)-1] = cfg.Start
	goals[len(cfg.Levels)-1] = cfg.Goal
	for i := len(cfg.Levels) - 2; i >= 0; i-- {
		proj := cfg.Levels[i+1].Projection
		if proj == nil {
			return nil, newMissingProjectionError(i + 1)
		}
		starts[i] = proj.Project(starts[i+1])
		goals[i] = proj.Project(goals[i+1])
	}

	pm := &planManager{
		levels:    make([]*level, 0, len(cfg.Levels)),
		queue:     &levelQueue{importance: importance},
		logger:    logger,
		stopIndex: stopIndex,
		maxCycles: maxCycles,
	}
	for i, lvlCfg := range cfg.Levels {
		strategy := lvlCfg.Strategy
		if strategy == "" {
			strategy = StrategySparseRoadmap
		}
		objective := statespace.NewPathLengthObjective(lvlCfg.Space)
		rnd := rand.New(rand.NewSource(cfg.Seed + int64(i)))
		lp, err := newLevelPlanner(strategy, lvlCfg.Space, objective, starts[i], goals[i], rnd, logger, lvlCfg.Extra)
		if err != nil {
			return nil, err
		}
		pm.levels = append(pm.levels, &level{
			index:      i,
			space:      lvlCfg.Space,
			projection: lvlCfg.Projection,
			planner:    lp,
		})
	}
	return pm, nil
}

// initLevel seeds a level and, for every level after the first, installs a
// sampler that lifts states drawn from the coarser level's grown graph.
func (pm *planManager) initLevel(lvl *level) error {
	if lvl.index > 0 {
		coarser := pm.levels[lvl.index-1].planner
		proj := lvl.projection
		lvl.planner.setSampleBias(func(rnd *rand.Rand) statespace.State {
			return proj.Lift(coarser.sampleFromGraph(rnd), rnd)
		})
	}
	if err := lvl.planner.init(); err != nil {
		return err
	}
	lvl.initialized = true
	pm.queue.pushLevel(lvl)
	return nil
}

// planRunner is the growth loop. Cancellation is only observed between cycles;
// a cycle always runs to completion.
func (pm *planManager) planRunner(ctx context.Context, solutionChan chan<- *planReturn) {
	if err := pm.initLevel(pm.levels[0]); err != nil {
		solutionChan <- &planReturn{err: err}
		return
	}
	for cycles := 0; cycles < pm.maxCycles; cycles++ {
		if err := ctx.Err(); err != nil {
			solutionChan <- &planReturn{err: err}
			return
		}
		lvl := pm.queue.popLevel()
		lvl.planner.growOnce()

		if lvl.planner.solved() {
			if lvl.index == pm.stopIndex {
				sol, ok := lvl.planner.extractSolution()
				if !ok {
					solutionChan <- &planReturn{err: errPlannerFailed}
					return
				}
				sol.PathIndices = pm.pathIndices()
				pm.logger.Debugf("solved on level %d after %d cycles, cost %f", lvl.index, cycles+1, sol.Cost)
				solutionChan <- &planReturn{solution: sol}
				return
			}
			if next := pm.levels[lvl.index+1]; !next.initialized {
				pm.logger.Debugf("level %d solved, initializing level %d", lvl.index, next.index)
				if err := pm.initLevel(next); err != nil {
					solutionChan <- &planReturn{err: err}
					return
				}
			}
		}
		pm.queue.pushLevel(lvl)
	}
	solutionChan <- &planReturn{err: errPlannerFailed}
}

// pathIndices records, per level coarse to concrete, which stored alternative
// path the level's current solution corresponds to.
func (pm *planManager) pathIndices() []int {
	indices := make([]int, 0, pm.stopIndex+1)
	for _, lvl := range pm.levels[:pm.stopIndex+1] {
		idx := 0
		if sol, ok := lvl.planner.extractSolution(); ok && len(sol.PathIndices) > 0 {
			idx = sol.PathIndices[0]
		}
		indices = append(indices, idx)
	}
	return indices
}

func (pm *planManager) run(ctx context.Context) *planReturn {
	solutionChan := make(chan *planReturn, 1)
	utils.PanicCapturingGo(func() {
		pm.planRunner(ctx, solutionChan)
	})
	select {
	case <-ctx.Done():
		return &planReturn{err: ctx.Err()}
	case ret := <-solutionChan:
		return ret
	}
}

// Plan solves a hierarchical planning problem, growing levels until the stop
// level holds a solution, the cycle budget runs out, or the context is done.
func Plan(ctx context.Context, cfg *Config, logger golog.Logger) (*Solution, error) {
	pm, err := newPlanManager(cfg, logger)
	if err != nil {
		return nil, err
	}
	ret := pm.run(ctx)
	return ret.solution, ret.err
}

// PlanWithSnapshot is Plan plus an export of the grown hierarchy, taken after
// the growth loop returns. The snapshot is available even when planning fails,
// except on context cancellation.
func PlanWithSnapshot(ctx context.Context, cfg *Config, logger golog.Logger) (*Solution, *GraphSnapshot, error) {
	pm, err := newPlanManager(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	ret := pm.run(ctx)
	if ret.err != nil && ctx.Err() != nil {
		return nil, nil, ret.err
	}
	return ret.solution, pm.Snapshot(), ret.err
}
