package motionplan

import (
	"context"
	"testing"
	"time"

	"github.com/edaniels/golog"
	"go.viam.com/test"

	"github.com/sohaib-gujjar/ompl/statespace"
)

func testTwoLevelConfig(t *testing.T, strategy string) *Config {
	t.Helper()
	plane := testGapWorld(t, 2.0)
	line, err := statespace.NewRealVectorSpace([]statespace.Limit{{Min: 0, Max: 10}}, nil)
	test.That(t, err, test.ShouldBeNil)
	proj, err := statespace.NewDropProjection(line, plane)
	test.That(t, err, test.ShouldBeNil)

	return &Config{
		Levels: []LevelConfig{
			{Space: line, Strategy: strategy},
			{Space: plane, Projection: proj, Strategy: strategy},
		},
		Start: statespace.State{1, 5},
		Goal:  statespace.State{9, 5},
		Seed:  17,
	}
}

func TestPlanTwoLevels(t *testing.T) {
	logger := golog.NewTestLogger(t)
	cfg := testTwoLevelConfig(t, StrategySparseRoadmap)

	sol, err := Plan(context.Background(), cfg, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, sol, test.ShouldNotBeNil)

	// the solution lives on the most concrete level
	test.That(t, len(sol.States[0]), test.ShouldEqual, 2)
	test.That(t, sol.States[0], test.ShouldResemble, statespace.State{1, 5})
	test.That(t, sol.States[len(sol.States)-1], test.ShouldResemble, statespace.State{9, 5})
	test.That(t, sol.PathIndices, test.ShouldHaveLength, 2)

	plane := cfg.Levels[1].Space
	for i := 1; i < len(sol.States); i++ {
		test.That(t, plane.CheckMotion(sol.States[i-1], sol.States[i]), test.ShouldBeTrue)
	}
}

func TestPlanStopLevel(t *testing.T) {
	logger := golog.NewTestLogger(t)
	cfg := testTwoLevelConfig(t, StrategyRoadmap)
	cfg.StopLevel = 1

	sol, err := Plan(context.Background(), cfg, logger)
	test.That(t, err, test.ShouldBeNil)

	// planning stopped on the coarse line level
	test.That(t, len(sol.States[0]), test.ShouldEqual, 1)
	test.That(t, sol.States[0], test.ShouldResemble, statespace.State{1})
	test.That(t, sol.States[len(sol.States)-1], test.ShouldResemble, statespace.State{9})
	test.That(t, sol.PathIndices, test.ShouldHaveLength, 1)
}

func TestPlanSingleLevelStrategies(t *testing.T) {
	logger := golog.NewTestLogger(t)
	plane := testGapWorld(t, 2.0)

	for _, strategy := range []string{StrategyRRTStar, StrategyRoadmap, StrategySparseRoadmap} {
		t.Run(strategy, func(t *testing.T) {
			cfg := &Config{
				Levels: []LevelConfig{{Space: plane, Strategy: strategy}},
				Start:  statespace.State{1, 5},
				Goal:   statespace.State{9, 5},
				Seed:   23,
			}
			sol, err := Plan(context.Background(), cfg, logger)
			test.That(t, err, test.ShouldBeNil)
			for i := 1; i < len(sol.States); i++ {
				test.That(t, plane.CheckMotion(sol.States[i-1], sol.States[i]), test.ShouldBeTrue)
			}
		})
	}
}

func TestPlanImportanceFunctions(t *testing.T) {
	logger := golog.NewTestLogger(t)
	for _, importance := range []string{ImportanceUniform, ImportanceGreedy, ImportanceExponential} {
		t.Run(importance, func(t *testing.T) {
			cfg := testTwoLevelConfig(t, StrategyRoadmap)
			cfg.Importance = importance
			sol, err := Plan(context.Background(), cfg, logger)
			test.That(t, err, test.ShouldBeNil)
			test.That(t, sol, test.ShouldNotBeNil)
		})
	}
}

func TestPlanConfigurationErrors(t *testing.T) {
	logger := golog.NewTestLogger(t)

	_, err := Plan(context.Background(), &Config{}, logger)
	test.That(t, err, test.ShouldEqual, errNoLevels)

	cfg := testTwoLevelConfig(t, "annealing")
	_, err = Plan(context.Background(), cfg, logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "unknown growth strategy")

	cfg = testTwoLevelConfig(t, StrategyRoadmap)
	cfg.Importance = "alphabetical"
	_, err = Plan(context.Background(), cfg, logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "unknown importance function")

	cfg = testTwoLevelConfig(t, StrategyRoadmap)
	cfg.Levels[1].Projection = nil
	_, err = Plan(context.Background(), cfg, logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "no projection")

	cfg = testTwoLevelConfig(t, StrategyRoadmap)
	cfg.Start = statespace.State{5, 2}
	_, err = Plan(context.Background(), cfg, logger)
	test.That(t, err, test.ShouldEqual, errNoStart)
}

func TestPlanCycleBudget(t *testing.T) {
	logger := golog.NewTestLogger(t)

	// a fully blocked goal exhausts the budget
	cfg := testTwoLevelConfig(t, StrategyRoadmap)
	cfg.Levels = cfg.Levels[1:]
	cfg.Levels[0].Projection = nil
	plane := testGapWorld(t, 0)
	cfg.Levels[0].Space = plane
	cfg.MaxCycles = 300
	_, err := Plan(context.Background(), cfg, logger)
	test.That(t, err, test.ShouldEqual, errPlannerFailed)
}

func TestPlanContextCancellation(t *testing.T) {
	logger := golog.NewTestLogger(t)
	cfg := testTwoLevelConfig(t, StrategyRoadmap)
	cfg.Levels[1].Space = testGapWorld(t, 0)
	cfg.MaxCycles = 2000

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := Plan(ctx, cfg, logger)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestPlanWithSnapshot(t *testing.T) {
	logger := golog.NewTestLogger(t)
	cfg := testTwoLevelConfig(t, StrategySparseRoadmap)

	sol, snapshot, err := PlanWithSnapshot(context.Background(), cfg, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, sol, test.ShouldNotBeNil)
	test.That(t, snapshot, test.ShouldNotBeNil)
	test.That(t, snapshot.ID, test.ShouldNotBeEmpty)
	test.That(t, len(snapshot.Levels), test.ShouldEqual, 2)

	for _, lvl := range snapshot.Levels {
		test.That(t, len(lvl.Nodes), test.ShouldBeGreaterThan, 0)
		test.That(t, len(lvl.Edges), test.ShouldBeGreaterThan, 0)
		hasSparse := false
		for _, n := range lvl.Nodes {
			if n.Sparse {
				hasSparse = true
			}
		}
		test.That(t, hasSparse, test.ShouldBeTrue)
	}
	test.That(t, snapshot.Levels[0].Solved, test.ShouldBeTrue)
	test.That(t, snapshot.Levels[1].Solved, test.ShouldBeTrue)
}
