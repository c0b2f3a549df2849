package motionplan

import "github.com/pkg/errors"

var (
	errPlannerFailed = errors.New("motion planner failed to find path")
	errNoStart       = errors.New("there are no valid initial states")
	errNoGoal        = errors.New("there are no valid goal states")
	errNoLevels      = errors.New("no levels configured")
)

func newUnknownStrategyError(name string) error {
	return errors.Errorf("unknown growth strategy %q", name)
}

func newUnknownImportanceError(name string) error {
	return errors.Errorf("unknown importance function %q", name)
}

func newMissingProjectionError(index int) error {
	return errors.Errorf("level %d has no projection onto its coarser level", index)
}
