package motionplan

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/edaniels/golog"

	"github.com/sohaib-gujjar/ompl/statespace"
)

// sparseRoadmap maintains a size-bounded spanner of a dense roadmap. Candidate
// dense nodes are admitted through four tests evaluated in order (coverage,
// connectivity, interface, path), and every dense node is assigned a
// representative sparse node for interface bookkeeping. The invariant preserved
// is the stretch-factor property: any two dense-connectible nodes have a sparse
// path no longer than stretchFactor times the shortest dense path.
type sparseRoadmap struct {
	dense     *roadmap
	graph     *roadmap
	space     statespace.Space
	objective statespace.Objective
	logger    golog.Logger
	rnd       *rand.Rand
	opts      *sparseOptions

	sparseDelta   float64
	denseDelta    float64
	stretchFactor float64

	vStartSparse int
	vGoalSparse  int

	// admission-test misses in a row, exposed for termination heuristics
	consecutiveFailures int
}

func newSparseRoadmap(
	dense *roadmap,
	opts *sparseOptions,
	rnd *rand.Rand,
	logger golog.Logger,
) *sparseRoadmap {
	maxExt := dense.space.MaximumExtent()
	return &sparseRoadmap{
		dense:         dense,
		graph:         newRoadmap(dense.space, dense.objective),
		space:         dense.space,
		objective:     dense.objective,
		logger:        logger,
		rnd:           rnd,
		opts:          opts,
		sparseDelta:   opts.SparseDeltaFraction * maxExt,
		denseDelta:    opts.DenseDeltaFraction * maxExt,
		stretchFactor: opts.StretchFactor,
		vStartSparse:  noParent,
		vGoalSparse:   noParent,
	}
}

// seed inserts sparse copies of the start and goal nodes and makes them the
// representatives of their dense counterparts.
func (s *sparseRoadmap) seed(qStart, qGoal *configuration) {
	s.vStartSparse = s.graph.addNode(qStart.state)
	s.graph.node(s.vStartSparse).isStart = true
	qStart.representativeIndex = s.vStartSparse

	s.vGoalSparse = s.graph.addNode(qGoal.state)
	s.graph.node(s.vGoalSparse).isGoal = true
	qGoal.representativeIndex = s.vGoalSparse
}

// findGraphNeighbors splits the sparse neighborhood of a state into the raw
// neighborhood (within sparseDelta) and the visible neighborhood (raw neighbors
// with a valid straight connection), both ordered by distance.
func (s *sparseRoadmap) findGraphNeighbors(state statespace.State) (graphNbh, visibleNbh []int) {
	graphNbh = s.graph.rangeNearest(state, s.sparseDelta)
	for _, v := range graphNbh {
		if s.space.CheckMotion(state, s.graph.node(v).state) {
			visibleNbh = append(visibleNbh, v)
		}
	}
	return graphNbh, visibleNbh
}

// offer runs the admission pipeline on a dense node that was just inserted.
// Reports whether the sparse graph was extended.
func (s *sparseRoadmap) offer(vDense int) bool {
	q := s.dense.node(vDense)
	graphNbh, visibleNbh := s.findGraphNeighbors(q.state)

	if s.checkAddCoverage(q, visibleNbh) ||
		s.checkAddConnectivity(q, visibleNbh) ||
		s.checkAddInterface(q, graphNbh, visibleNbh) {
		if s.opts.RefineBookkeeping {
			s.assignRepresentative(q)
			s.updatePairPoints(q)
		}
		return true
	}

	// The path test needs the candidate's representative and interface lists
	// to be current.
	s.assignRepresentative(q)
	s.updatePairPoints(q)
	if s.checkAddPath(q) {
		return true
	}
	s.consecutiveFailures++
	return false
}

// addSparseNode copies a state into the sparse graph (sparse nodes own their
// states; dense and sparse lifetimes are independent) and refreshes the
// representatives of all dense nodes near the change.
func (s *sparseRoadmap) addSparseNode(state statespace.State) int {
	v := s.graph.addNode(state)
	s.updateRepresentatives(s.graph.node(v))
	s.consecutiveFailures = 0
	return v
}

func (s *sparseRoadmap) addSparseEdge(a, b int) {
	s.graph.addEdge(a, b)
}

// checkAddCoverage inserts the candidate when no existing sparse node can see
// it: an empty visible neighborhood means uncovered space.
func (s *sparseRoadmap) checkAddCoverage(q *configuration, visibleNbh []int) bool {
	if len(visibleNbh) > 0 {
		return false
	}
	s.addSparseNode(q.state)
	return true
}

// checkAddConnectivity inserts the candidate when it can see two sparse nodes
// lying in different sparse components, linking and merging them.
func (s *sparseRoadmap) checkAddConnectivity(q *configuration, visibleNbh []int) bool {
	if len(visibleNbh) < 2 {
		return false
	}
	links := []int{}
	for i := 0; i < len(visibleNbh); i++ {
		for j := i + 1; j < len(visibleNbh); j++ {
			if !s.graph.sameComponent(visibleNbh[i], visibleNbh[j]) {
				links = append(links, visibleNbh[i], visibleNbh[j])
			}
		}
	}
	if len(links) == 0 {
		return false
	}
	v := s.addSparseNode(q.state)
	for _, link := range links {
		if !s.graph.hasEdge(v, link) && !s.graph.sameComponent(link, v) {
			s.addSparseEdge(v, link)
		}
	}
	return true
}

// checkAddInterface fires when the candidate's two nearest raw neighbors equal
// its two nearest visible neighbors and those two share no edge: the candidate
// reveals an interface. The neighbors are connected directly when the motion
// between them is valid, otherwise the candidate is inserted as a bridge.
func (s *sparseRoadmap) checkAddInterface(q *configuration, graphNbh, visibleNbh []int) bool {
	if len(visibleNbh) < 2 {
		return false
	}
	if graphNbh[0] != visibleNbh[0] || graphNbh[1] != visibleNbh[1] {
		return false
	}
	v0, v1 := visibleNbh[0], visibleNbh[1]
	if s.graph.hasEdge(v0, v1) {
		return false
	}
	if s.space.CheckMotion(s.graph.node(v0).state, s.graph.node(v1).state) {
		s.addSparseEdge(v0, v1)
		s.consecutiveFailures = 0
	} else {
		v := s.addSparseNode(q.state)
		s.addSparseEdge(v, v0)
		s.addSparseEdge(v, v1)
	}
	return true
}

// assignRepresentative points the dense node at its nearest valid sparse
// neighbor within sparseDelta, removing it from any stale interface lists first.
func (s *sparseRoadmap) assignRepresentative(q *configuration) {
	s.removeFromRepresentatives(q)
	q.representativeIndex = noParent
	for _, v := range s.graph.rangeNearest(q.state, s.sparseDelta) {
		if s.space.CheckMotion(q.state, s.graph.node(v).state) {
			q.representativeIndex = v
			break
		}
	}
}

// updateRepresentatives refreshes the representative assignment and interface
// bookkeeping of every dense node that the given sparse insertion may affect.
func (s *sparseRoadmap) updateRepresentatives(qSparse *configuration) {
	densePoints := s.dense.rangeNearest(qSparse.state, s.sparseDelta+s.denseDelta)
	for _, vd := range densePoints {
		s.assignRepresentative(s.dense.node(vd))
	}
	for _, vd := range densePoints {
		s.updatePairPoints(s.dense.node(vd))
	}
}

// updatePairPoints re-registers a dense node in its representative's interface
// or non-interface lists. Removal from the old lists happens before
// re-insertion so no stale membership survives.
func (s *sparseRoadmap) updatePairPoints(q *configuration) {
	if q.representativeIndex == noParent {
		return
	}
	interfaceReps := s.getInterfaceNeighborRepresentatives(q)
	s.removeFromRepresentatives(q)
	s.addToRepresentatives(q.index, q.representativeIndex, interfaceReps)
}

// getInterfaceNeighborRepresentatives collects the representatives of dense
// neighbors within denseDelta whose representative differs from the node's own.
func (s *sparseRoadmap) getInterfaceNeighborRepresentatives(q *configuration) map[int]bool {
	reps := map[int]bool{}
	for _, n := range s.dense.adjacentTo(q.index) {
		orep := s.dense.node(n).representativeIndex
		if orep == q.representativeIndex || orep == noParent {
			continue
		}
		if s.space.Distance(q.state, s.dense.node(n).state) < s.denseDelta {
			reps[orep] = true
		}
	}
	return reps
}

func (s *sparseRoadmap) addToRepresentatives(qIndex, rep int, interfaceReps map[int]bool) {
	qRep := s.graph.node(rep)
	if len(interfaceReps) == 0 {
		if qRep.nonInterfaceIndexList == nil {
			qRep.nonInterfaceIndexList = map[int]bool{}
		}
		qRep.nonInterfaceIndexList[qIndex] = true
		return
	}
	for v := range interfaceReps {
		qRep.interfaceList(v)[qIndex] = true
	}
}

func (s *sparseRoadmap) removeFromRepresentatives(q *configuration) {
	if q.representativeIndex == noParent {
		return
	}
	qRep := s.graph.node(q.representativeIndex)
	delete(qRep.nonInterfaceIndexList, q.index)
	for _, list := range qRep.interfaceIndexList {
		delete(list, q.index)
	}
}

// getInterfaceNeighborhood returns the dense neighbors within denseDelta whose
// representative differs from the node's own: the witnesses that the node sits
// on an interface between sparse regions.
func (s *sparseRoadmap) getInterfaceNeighborhood(q *configuration) []int {
	neighborhood := []int{}
	for _, n := range s.dense.adjacentTo(q.index) {
		if s.dense.node(n).representativeIndex == q.representativeIndex {
			continue
		}
		if s.space.Distance(q.state, s.dense.node(n).state) < s.denseDelta {
			neighborhood = append(neighborhood, n)
		}
	}
	return neighborhood
}

// computeVPP lists sparse neighbors of v that are not vp and share no edge with
// vp: the candidate far-side representatives of a potential long way around.
func (s *sparseRoadmap) computeVPP(v, vp int) []int {
	vpps := []int{}
	for _, cvpp := range s.graph.adjacentTo(v) {
		if cvpp != vp && !s.graph.hasEdge(cvpp, vp) {
			vpps = append(vpps, cvpp)
		}
	}
	sort.Ints(vpps)
	return vpps
}

// computeX lists nodes that share an interface and an edge with v and an edge
// with vpp but no edge with vp, plus vpp itself.
func (s *sparseRoadmap) computeX(v, vp, vpp int) []int {
	xs := []int{}
	for _, cx := range s.graph.adjacentTo(vpp) {
		if !s.graph.hasEdge(cx, v) || s.graph.hasEdge(cx, vp) {
			continue
		}
		if len(s.graph.node(vpp).interfaceIndexList[cx]) > 0 {
			xs = append(xs, cx)
		}
	}
	xs = append(xs, vpp)
	return xs
}

// getInterfaceNeighbor finds the dense neighbor of q represented by rep within
// denseDelta. The caller guarantees one exists.
func (s *sparseRoadmap) getInterfaceNeighbor(qIndex, rep int) int {
	for _, vp := range s.dense.adjacentTo(qIndex) {
		if s.dense.node(vp).representativeIndex != rep {
			continue
		}
		if s.space.Distance(s.dense.node(qIndex).state, s.dense.node(vp).state) <= s.denseDelta {
			return vp
		}
	}
	panic(fmt.Sprintf("dense node %d has no interface neighbor with representative %d", qIndex, rep))
}

// checkAddPath is the stretch-factor repair test: for representative pairs
// sharing an interface through q, if the midpoint distance through the sparse
// graph exceeds stretchFactor times the best dense path between the interface
// witnesses, a simplified dense sub-path is spliced into the sparse graph.
func (s *sparseRoadmap) checkAddPath(q *configuration) bool {
	neighborhood := s.getInterfaceNeighborhood(q)
	if len(neighborhood) == 0 {
		return false
	}
	v := q.representativeIndex
	if v == noParent {
		return false
	}

	nRep := map[int]bool{}
	for _, qp := range neighborhood {
		if rep := s.dense.node(qp).representativeIndex; rep != noParent {
			nRep[rep] = true
		}
	}
	reps := make([]int, 0, len(nRep))
	for rep := range nRep {
		reps = append(reps, rep)
	}
	sort.Ints(reps)

	for _, vp := range reps {
		for _, vpp := range s.computeVPP(v, vp) {
			sMax := 0.
			for _, x := range s.computeX(v, vp, vpp) {
				dist := (s.space.Distance(s.graph.node(x).state, s.graph.node(v).state) +
					s.space.Distance(s.graph.node(v).state, s.graph.node(vp).state)) / 2.0
				if dist > sMax {
					sMax = dist
				}
			}

			// best dense path between q and any stored interface witness
			var bestPath []statespace.State
			bestQpp := noParent
			dMin := math.Inf(1)
			for qpp := range s.graph.node(v).interfaceIndexList[vpp] {
				if q.index == qpp {
					bestPath = []statespace.State{q.state}
					bestQpp = qpp
					dMin = 0
					continue
				}
				states, _, ok := s.dense.shortestPath(q.index, qpp)
				if !ok {
					continue
				}
				length := 0.
				for i := 1; i < len(states); i++ {
					length += s.space.Distance(states[i-1], states[i])
				}
				if length < dMin {
					dMin = length
					bestPath = states
					bestQpp = qpp
				}
			}
			if bestQpp == noParent || sMax <= s.stretchFactor*dMin {
				continue
			}

			// augment with the interface neighbors on both sides and splice
			na := s.getInterfaceNeighbor(q.index, vp)
			nb := s.getInterfaceNeighbor(bestQpp, vpp)
			path := make([]statespace.State, 0, len(bestPath)+2)
			path = append(path, s.dense.node(na).state)
			path = append(path, bestPath...)
			path = append(path, s.dense.node(nb).state)
			s.addPathToSpanner(path, vp, vpp)
			return true
		}
	}
	return false
}

// addPathToSpanner splices a dense sub-path between two representatives into
// the sparse graph, simplifying it first. A degenerate path just links the
// representatives directly.
func (s *sparseRoadmap) addPathToSpanner(path []statespace.State, vp, vpp int) {
	if len(path) <= 1 {
		s.addSparseEdge(vp, vpp)
		s.consecutiveFailures = 0
		return
	}
	simplified := reduceVertices(s.space, path, len(path)*2, s.rnd)
	added := make([]int, 0, len(simplified))
	for _, state := range simplified {
		added = append(added, s.addSparseNode(state))
	}
	for i := 1; i < len(added); i++ {
		s.addSparseEdge(added[i-1], added[i])
	}
	s.addSparseEdge(added[0], vp)
	s.addSparseEdge(added[len(added)-1], vpp)
}

// shortestPath searches the sparse graph between its start and goal nodes.
func (s *sparseRoadmap) shortestPath() ([]statespace.State, []int, bool) {
	if s.vStartSparse == noParent || s.vGoalSparse == noParent {
		return nil, nil, false
	}
	return s.graph.shortestPath(s.vStartSparse, s.vGoalSparse)
}
