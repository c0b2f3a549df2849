package motionplan

import (
	"math"

	"github.com/google/uuid"

	"github.com/sohaib-gujjar/ompl/statespace"
)

// NodeSnapshot is one roadmap vertex in an exported snapshot.
type NodeSnapshot struct {
	Index  int              `json:"index"`
	State  statespace.State `json:"state"`
	Cost   float64          `json:"cost,omitempty"`
	Start  bool             `json:"start,omitempty"`
	Goal   bool             `json:"goal,omitempty"`
	Sparse bool             `json:"sparse,omitempty"`
}

// EdgeSnapshot is one undirected roadmap edge in an exported snapshot.
type EdgeSnapshot struct {
	A      int     `json:"a"`
	B      int     `json:"b"`
	Cost   float64 `json:"cost"`
	Sparse bool    `json:"sparse,omitempty"`
}

// LevelSnapshot captures the grown structure of a single level. Sparse-roadmap
// levels carry both the dense graph and the spanner, with spanner nodes and
// edges flagged, plus the index of the retained path the level's solution
// corresponds to.
type LevelSnapshot struct {
	Level     int            `json:"level"`
	Dimension int            `json:"dimension"`
	Solved    bool           `json:"solved"`
	Nodes     []NodeSnapshot `json:"nodes"`
	Edges     []EdgeSnapshot `json:"edges"`
	PathIndex int            `json:"path_index,omitempty"`
}

// GraphSnapshot is a read-only export of the whole hierarchy, suitable for
// JSON serialization and offline visualization.
type GraphSnapshot struct {
	ID     string          `json:"id"`
	Levels []LevelSnapshot `json:"levels"`
}

// Snapshot exports all initialized levels of the hierarchy.
func (pm *planManager) Snapshot() *GraphSnapshot {
	snap := &GraphSnapshot{ID: uuid.NewString()}
	for _, lvl := range pm.levels {
		if !lvl.initialized {
			continue
		}
		snap.Levels = append(snap.Levels, snapshotLevel(lvl))
	}
	return snap
}

func snapshotLevel(lvl *level) LevelSnapshot {
	ls := LevelSnapshot{
		Level:     lvl.index,
		Dimension: lvl.space.Dimension(),
		Solved:    lvl.planner.solved(),
	}
	appendGraph(&ls, lvl.planner.denseGraph(), false)
	if sp := lvl.planner.spanner(); sp != nil {
		appendGraph(&ls, sp.graph, true)
	}
	if sol, ok := lvl.planner.extractSolution(); ok && len(sol.PathIndices) > 0 {
		ls.PathIndex = sol.PathIndices[0]
	}
	return ls
}

func appendGraph(ls *LevelSnapshot, g *roadmap, sparse bool) {
	for i := 0; i < g.numNodes(); i++ {
		q := g.node(i)
		cost := float64(q.cost)
		if math.IsNaN(cost) {
			cost = 0
		}
		ls.Nodes = append(ls.Nodes, NodeSnapshot{
			Index:  i,
			State:  q.state,
			Cost:   cost,
			Start:  q.isStart,
			Goal:   q.isGoal,
			Sparse: sparse,
		})
		for j, weight := range g.adjacency[i] {
			if j < i {
				continue
			}
			ls.Edges = append(ls.Edges, EdgeSnapshot{
				A:      i,
				B:      j,
				Cost:   float64(weight),
				Sparse: sparse,
			})
		}
	}
}
