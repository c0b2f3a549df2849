package motionplan

import "math"

// Importance function names accepted by plan configuration.
const (
	ImportanceUniform     = "uniform"
	ImportanceGreedy      = "greedy"
	ImportanceExponential = "exponential"
)

// exponential importance halves every this many samples.
const importanceHalfLife = 100.0

// importanceFunc scores a level for growth scheduling; the level with the
// highest score receives the next growth cycle.
type importanceFunc func(lvl *level) float64

// newImportanceFunc dispatches an importance function by name. The empty name
// selects greedy.
func newImportanceFunc(name string) (importanceFunc, error) {
	switch name {
	case "", ImportanceGreedy:
		return greedyImportance, nil
	case ImportanceUniform:
		return uniformImportance, nil
	case ImportanceExponential:
		return exponentialImportance, nil
	default:
		return nil, newUnknownImportanceError(name)
	}
}

// uniformImportance shrinks with the number of samples so every level receives
// cycles in proportion to how little it has grown.
func uniformImportance(lvl *level) float64 {
	return 1.0 / float64(lvl.planner.numSamples()+1)
}

// greedyImportance puts unsolved levels strictly ahead of solved ones and
// prefers less-grown levels within each group.
func greedyImportance(lvl *level) float64 {
	importance := 1.0 / float64(lvl.planner.numSamples()+1)
	if !lvl.planner.solved() {
		importance += 1.0
	}
	return importance
}

// exponentialImportance decays with sample count faster than uniform, shifting
// effort to fresh levels more aggressively.
func exponentialImportance(lvl *level) float64 {
	return math.Exp2(-float64(lvl.planner.numSamples()) / importanceHalfLife)
}
