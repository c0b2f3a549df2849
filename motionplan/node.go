package motionplan

import (
	"math"

	"github.com/sohaib-gujjar/ompl/statespace"
)

// noParent marks a node without a tree parent or without a sparse representative.
const noParent = -1

// configuration is a single graph node. Nodes live in the arena of their owning
// roadmap and refer to each other exclusively by index, so tree rewiring is index
// reassignment rather than pointer surgery.
type configuration struct {
	state statespace.State
	index int

	// cost bookkeeping for tree growth. cost == combine(parent.cost, lineCost)
	// for every node with a parent.
	cost     statespace.Cost
	lineCost statespace.Cost
	parent   int
	children []int

	isStart bool
	isGoal  bool

	totalConnectionAttempts      int
	successfulConnectionAttempts int

	// sparse-spanner bookkeeping. representativeIndex points into the sparse
	// graph for dense nodes; the interface lists live on sparse nodes and hold
	// dense-node indices keyed by the neighboring representative.
	representativeIndex   int
	interfaceIndexList    map[int]map[int]bool
	nonInterfaceIndexList map[int]bool
}

func newConfiguration(state statespace.State, index int) *configuration {
	return &configuration{
		state:               state.Clone(),
		index:               index,
		cost:                statespace.Cost(math.NaN()),
		parent:              noParent,
		representativeIndex: noParent,
	}
}

// removeChild drops the given index from the node's child set.
func (q *configuration) removeChild(index int) {
	for i, c := range q.children {
		if c == index {
			q.children = append(q.children[:i], q.children[i+1:]...)
			return
		}
	}
	panic("node is not a child of its recorded parent")
}

// interfaceList returns the dense-node set stored for the given neighboring
// representative, creating it when absent.
func (q *configuration) interfaceList(rep int) map[int]bool {
	if q.interfaceIndexList == nil {
		q.interfaceIndexList = map[int]map[int]bool{}
	}
	list, ok := q.interfaceIndexList[rep]
	if !ok {
		list = map[int]bool{}
		q.interfaceIndexList[rep] = list
	}
	return list
}
