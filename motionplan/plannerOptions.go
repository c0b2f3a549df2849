package motionplan

import (
	"encoding/json"

	"github.com/sohaib-gujjar/ompl/statespace"
)

// default values for planning options.
const (
	// Probability of sampling the goal state instead of a uniform sample while unsolved.
	defaultGoalBias = 0.05

	// A state within this distance of the goal satisfies it.
	defaultGoalThreshold = 1e-6

	// Fraction of the space's maximum extent used as the steering range when none is set.
	defaultRangeFraction = 0.2

	// The number of nearest neighbors a roadmap sample attempts to connect to.
	defaultConnectionNeighbors = 7

	// Fractions of the maximum extent defining the sparse and dense neighborhood radii.
	defaultSparseDeltaFraction = 0.15
	defaultDenseDeltaFraction  = 0.05

	// Maximum allowed ratio between spanner path length and true shortest path length.
	defaultStretchFactor = 3.0

	// Fraction of the maximum extent used to perturb path-biased samples, and the
	// probability of drawing a path-biased sample instead of a uniform one.
	defaultPathBiasFraction      = 0.05
	defaultPathSampleProbability = 0.5

	// Number of alternative solution paths kept on the path stack.
	defaultPathStackSize = 7
)

// plannerOptions are the settings shared by all growth strategies. Values are
// pre-set to reasonable defaults and can be overridden via the extra map.
type plannerOptions struct {
	// Probability of sampling the goal state while no solution is known.
	GoalBias float64 `json:"goal_bias"`

	// Maximum step length when steering toward a sample. Zero selects a
	// fraction of the space's maximum extent.
	MaxDistance float64 `json:"max_distance"`

	// Distance under which a state satisfies the goal.
	GoalThreshold float64 `json:"goal_threshold"`
}

func newBasicPlannerOptions(space statespace.Space) *plannerOptions {
	return &plannerOptions{
		GoalBias:      defaultGoalBias,
		MaxDistance:   defaultRangeFraction * space.MaximumExtent(),
		GoalThreshold: defaultGoalThreshold,
	}
}

// loadExtra overrides option fields from a free-form map by round-tripping it
// through JSON into the given options struct.
func loadExtra(extra map[string]interface{}, opts interface{}) error {
	if len(extra) == 0 {
		return nil
	}
	jsonString, err := json.Marshal(extra)
	if err != nil {
		return err
	}
	return json.Unmarshal(jsonString, opts)
}

type rrtStarOptions struct {
	// Whether the rewiring neighborhood is gathered by k-nearest search rather
	// than by radius search.
	UseKNearest bool `json:"use_k_nearest"`

	*plannerOptions
}

func newRRTStarOptions(space statespace.Space, extra map[string]interface{}) (*rrtStarOptions, error) {
	algOpts := &rrtStarOptions{
		UseKNearest:    true,
		plannerOptions: newBasicPlannerOptions(space),
	}
	if err := loadExtra(extra, algOpts); err != nil {
		return nil, err
	}
	return algOpts, nil
}

type roadmapOptions struct {
	// The number of nearest neighbors to attempt connections to per new sample.
	ConnectionNeighbors int `json:"connection_neighbors"`

	*plannerOptions
}

func newRoadmapOptions(space statespace.Space, extra map[string]interface{}) (*roadmapOptions, error) {
	algOpts := &roadmapOptions{
		ConnectionNeighbors: defaultConnectionNeighbors,
		plannerOptions:      newBasicPlannerOptions(space),
	}
	if err := loadExtra(extra, algOpts); err != nil {
		return nil, err
	}
	return algOpts, nil
}

type sparseOptions struct {
	SparseDeltaFraction   float64 `json:"sparse_delta_fraction"`
	DenseDeltaFraction    float64 `json:"dense_delta_fraction"`
	StretchFactor         float64 `json:"stretch_factor"`
	PathBiasFraction      float64 `json:"path_bias_fraction"`
	PathSampleProbability float64 `json:"path_sample_probability"`

	// Number of alternative solution paths retained for path-biased sampling.
	PathStackSize int `json:"path_stack_size"`

	// When true, representative and interface bookkeeping is refreshed even when
	// an early admission test already inserted the candidate.
	RefineBookkeeping bool `json:"refine_bookkeeping"`

	*roadmapOptions
}

func newSparseOptions(space statespace.Space, extra map[string]interface{}) (*sparseOptions, error) {
	roadmapOpts, err := newRoadmapOptions(space, nil)
	if err != nil {
		return nil, err
	}
	algOpts := &sparseOptions{
		SparseDeltaFraction:   defaultSparseDeltaFraction,
		DenseDeltaFraction:    defaultDenseDeltaFraction,
		StretchFactor:         defaultStretchFactor,
		PathBiasFraction:      defaultPathBiasFraction,
		PathSampleProbability: defaultPathSampleProbability,
		PathStackSize:         defaultPathStackSize,
		roadmapOptions:        roadmapOpts,
	}
	if err := loadExtra(extra, algOpts); err != nil {
		return nil, err
	}
	return algOpts, nil
}
