package motionplan

import (
	"container/heap"
	"fmt"

	"github.com/sohaib-gujjar/ompl/statespace"
)

// roadmap is an incremental graph of sampled configurations: an arena of nodes, an
// adjacency list with per-edge costs, a nearest-neighbor index, and a union-find
// structure tracking connected components. It backs both the dense graph of a level
// and, through a second instance, its sparse spanner.
type roadmap struct {
	space      statespace.Space
	objective  statespace.Objective
	nodes      []*configuration
	adjacency  []map[int]statespace.Cost
	components disjointSet
	nn         *nearestIndex
	edgeCount  int
}

func newRoadmap(space statespace.Space, objective statespace.Objective) *roadmap {
	return &roadmap{
		space:     space,
		objective: objective,
		nn:        newNearestIndex(space),
	}
}

// addNode copies the state into the arena, registers it with the nearest-neighbor
// index and as a union-find singleton, and returns its index.
func (g *roadmap) addNode(state statespace.State) int {
	index := len(g.nodes)
	q := newConfiguration(state, index)
	g.nodes = append(g.nodes, q)
	g.adjacency = append(g.adjacency, map[int]statespace.Cost{})
	if v := g.components.makeSet(); v != index {
		panic(fmt.Sprintf("union-find index %d out of sync with arena index %d", v, index))
	}
	g.nn.insert(index, q.state)
	return index
}

func (g *roadmap) node(index int) *configuration {
	if index < 0 || index >= len(g.nodes) {
		panic(fmt.Sprintf("no node with index %d", index))
	}
	return g.nodes[index]
}

// addEdge computes the edge cost under the objective, inserts the undirected edge,
// and unites the endpoint components. Unknown indices are a programming error.
func (g *roadmap) addEdge(a, b int) {
	qa, qb := g.node(a), g.node(b)
	if _, ok := g.adjacency[a][b]; ok {
		return
	}
	weight := g.objective.MotionCost(qa.state, qb.state)
	g.adjacency[a][b] = weight
	g.adjacency[b][a] = weight
	g.edgeCount++
	g.components.union(a, b)
}

func (g *roadmap) hasEdge(a, b int) bool {
	_, ok := g.adjacency[a][b]
	return ok
}

func (g *roadmap) adjacentTo(index int) []int {
	adjacent := make([]int, 0, len(g.adjacency[index]))
	for n := range g.adjacency[index] {
		adjacent = append(adjacent, n)
	}
	return adjacent
}

// sameComponent is a union-find query, not a graph traversal.
func (g *roadmap) sameComponent(a, b int) bool {
	return g.components.sameSet(a, b)
}

func (g *roadmap) numNodes() int {
	return len(g.nodes)
}

func (g *roadmap) numEdges() int {
	return g.edgeCount
}

func (g *roadmap) nearest(state statespace.State) int {
	return g.nn.nearest(state)
}

func (g *roadmap) kNearest(state statespace.State, k int) []int {
	return g.nn.kNearest(state, k)
}

func (g *roadmap) rangeNearest(state statespace.State, r float64) []int {
	return g.nn.rangeNearest(state, r)
}

type aStarEntry struct {
	vertex int
	fScore statespace.Cost
}

// aStarQueue orders open vertices by estimated total cost under the objective's
// comparison function.
type aStarQueue struct {
	entries   []*aStarEntry
	objective statespace.Objective
}

func (pq *aStarQueue) Len() int { return len(pq.entries) }

func (pq *aStarQueue) Less(i, j int) bool {
	return pq.objective.IsCostBetterThan(pq.entries[i].fScore, pq.entries[j].fScore)
}

func (pq *aStarQueue) Swap(i, j int) {
	pq.entries[i], pq.entries[j] = pq.entries[j], pq.entries[i]
}

func (pq *aStarQueue) Push(x interface{}) {
	pq.entries = append(pq.entries, x.(*aStarEntry))
}

func (pq *aStarQueue) Pop() interface{} {
	old := pq.entries
	n := len(old)
	entry := old[n-1]
	pq.entries = old[:n-1]
	return entry
}

// shortestPath runs an A* search from start to goal using the objective's
// combine, compare and heuristic functions. It returns the states along the path
// together with the flat ordered vertex list, exiting early on reaching the goal.
// A missing path is a normal false result, not an error.
func (g *roadmap) shortestPath(start, goal int) ([]statespace.State, []int, bool) {
	goalState := g.node(goal).state
	gScore := make([]statespace.Cost, len(g.nodes))
	prev := make([]int, len(g.nodes))
	closed := make([]bool, len(g.nodes))
	for i := range gScore {
		gScore[i] = g.objective.InfiniteCost()
		prev[i] = noParent
	}
	gScore[start] = g.objective.IdentityCost()

	open := &aStarQueue{objective: g.objective}
	heap.Push(open, &aStarEntry{
		vertex: start,
		fScore: g.objective.MotionCostHeuristic(g.node(start).state, goalState),
	})

	found := false
	for open.Len() > 0 {
		current := heap.Pop(open).(*aStarEntry).vertex
		if closed[current] {
			continue
		}
		closed[current] = true
		if current == goal {
			found = true
			break
		}
		for nbr, weight := range g.adjacency[current] {
			if closed[nbr] {
				continue
			}
			tentative := g.objective.CombineCosts(gScore[current], weight)
			if !g.objective.IsCostBetterThan(tentative, gScore[nbr]) {
				continue
			}
			gScore[nbr] = tentative
			prev[nbr] = current
			heap.Push(open, &aStarEntry{
				vertex: nbr,
				fScore: g.objective.CombineCosts(tentative, g.objective.MotionCostHeuristic(g.node(nbr).state, goalState)),
			})
		}
	}
	if !found {
		return nil, nil, false
	}

	vertexPath := []int{}
	for pos := goal; pos != noParent; pos = prev[pos] {
		vertexPath = append(vertexPath, pos)
	}
	for i, j := 0, len(vertexPath)-1; i < j; i, j = i+1, j-1 {
		vertexPath[i], vertexPath[j] = vertexPath[j], vertexPath[i]
	}
	states := make([]statespace.State, 0, len(vertexPath))
	for _, v := range vertexPath {
		states = append(states, g.node(v).state)
	}
	return states, vertexPath, true
}

// pathCost sums motion costs along a sequence of states under the objective.
func pathCost(objective statespace.Objective, states []statespace.State) statespace.Cost {
	cost := objective.IdentityCost()
	for i := 1; i < len(states); i++ {
		cost = objective.CombineCosts(cost, objective.MotionCost(states[i-1], states[i]))
	}
	return cost
}
