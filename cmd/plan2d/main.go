// Command plan2d demonstrates hierarchical planning in a 2D box world: a
// square region with a wall and a narrow gap between start and goal. The
// coarse level plans along the x axis only; the full 2D level refines it.
// The grown graphs are written as a JSON snapshot for offline visualization.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/spf13/cobra"

	"github.com/sohaib-gujjar/ompl/motionplan"
	"github.com/sohaib-gujjar/ompl/statespace"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		strategy   string
		importance string
		cycles     int
		seed       int64
		gap        float64
		flat       bool
		out        string
		debug      bool
	)

	cmd := &cobra.Command{
		Use:          "plan2d",
		Short:        "Plan a path through a 2D box world and export the grown graphs",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := golog.NewLogger("plan2d")
			if debug {
				logger = golog.NewDebugLogger("plan2d")
			}
			return runPlan2D(cmd.Context(), logger, strategy, importance, cycles, seed, gap, flat, out)
		},
	}
	cmd.Flags().StringVar(&strategy, "strategy", motionplan.StrategySparseRoadmap, "growth strategy (rrtstar, roadmap, sparse_roadmap)")
	cmd.Flags().StringVar(&importance, "importance", motionplan.ImportanceGreedy, "level scheduling function (uniform, greedy, exponential)")
	cmd.Flags().IntVar(&cycles, "cycles", 20000, "maximum total growth cycles")
	cmd.Flags().Int64Var(&seed, "seed", 1, "random seed")
	cmd.Flags().Float64Var(&gap, "gap", 1.0, "width of the gap in the wall")
	cmd.Flags().BoolVar(&flat, "flat", false, "plan on the 2D level only, without the coarse level")
	cmd.Flags().StringVar(&out, "out", "", "write a JSON graph snapshot to this file")
	cmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging")
	return cmd
}

func runPlan2D(
	ctx context.Context,
	logger golog.Logger,
	strategy, importance string,
	cycles int,
	seed int64,
	gap float64,
	flat bool,
	out string,
) error {
	limits := []statespace.Limit{{Min: 0, Max: 10}, {Min: 0, Max: 10}}

	// a wall at x=5 spanning the full height except a gap around y=5
	halfGap := gap / 2
	plane, err := statespace.NewBoxWorld(limits, []statespace.Box{
		statespace.NewBox(r3.Vector{X: 5, Y: (5 - halfGap) / 2}, r3.Vector{X: 0.5, Y: 5 - halfGap}),
		statespace.NewBox(r3.Vector{X: 5, Y: (15 + halfGap) / 2}, r3.Vector{X: 0.5, Y: 5 - halfGap}),
	})
	if err != nil {
		return err
	}

	cfg := &motionplan.Config{
		Start:      statespace.State{1, 5},
		Goal:       statespace.State{9, 5},
		Importance: importance,
		MaxCycles:  cycles,
		Seed:       seed,
	}
	if flat {
		cfg.Levels = []motionplan.LevelConfig{{Space: plane, Strategy: strategy}}
	} else {
		line, err := statespace.NewRealVectorSpace(limits[:1], nil)
		if err != nil {
			return err
		}
		proj, err := statespace.NewDropProjection(line, plane)
		if err != nil {
			return err
		}
		cfg.Levels = []motionplan.LevelConfig{
			{Space: line, Strategy: strategy},
			{Space: plane, Projection: proj, Strategy: strategy},
		}
	}

	sol, snapshot, err := motionplan.PlanWithSnapshot(ctx, cfg, logger)
	if err != nil {
		return err
	}
	logger.Infof("solved with %d states, cost %.3f, path indices %v", len(sol.States), sol.Cost, sol.PathIndices)
	for _, s := range sol.States {
		logger.Debugf("  %v", s)
	}

	if out != "" {
		data, err := json.MarshalIndent(snapshot, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(out, data, 0o600); err != nil {
			return err
		}
		logger.Infof("snapshot %s written to %s", snapshot.ID, out)
	}
	return nil
}
