package motionplan

import (
	"math/rand"
	"testing"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"github.com/sohaib-gujjar/ompl/statespace"
)

func testSparseSetup(t *testing.T, space statespace.Space) *sparseRoadmap {
	t.Helper()
	opts, err := newSparseOptions(space, nil)
	test.That(t, err, test.ShouldBeNil)
	dense := newRoadmap(space, statespace.NewPathLengthObjective(space))
	return newSparseRoadmap(dense, opts, rand.New(rand.NewSource(1)), golog.NewTestLogger(t))
}

func TestSparseCoverage(t *testing.T) {
	space, err := statespace.NewRealVectorSpace(
		[]statespace.Limit{{Min: 0, Max: 100}}, nil)
	test.That(t, err, test.ShouldBeNil)
	s := testSparseSetup(t, space)
	// sparseDelta = 0.15 * 100
	test.That(t, s.sparseDelta, test.ShouldAlmostEqual, 15.)

	// an empty spanner covers nothing, so the first candidate is admitted
	v0 := s.dense.addNode(statespace.State{0})
	test.That(t, s.offer(v0), test.ShouldBeTrue)
	test.That(t, s.graph.numNodes(), test.ShouldEqual, 1)
	test.That(t, s.consecutiveFailures, test.ShouldEqual, 0)

	// a candidate inside the covered region is rejected
	v1 := s.dense.addNode(statespace.State{5})
	test.That(t, s.offer(v1), test.ShouldBeFalse)
	test.That(t, s.graph.numNodes(), test.ShouldEqual, 1)
	test.That(t, s.consecutiveFailures, test.ShouldEqual, 1)

	// the rejected candidate still got a representative
	test.That(t, s.dense.node(v1).representativeIndex, test.ShouldEqual, 0)

	// a candidate beyond sparseDelta is uncovered and admitted
	v2 := s.dense.addNode(statespace.State{40})
	test.That(t, s.offer(v2), test.ShouldBeTrue)
	test.That(t, s.graph.numNodes(), test.ShouldEqual, 2)
	test.That(t, s.consecutiveFailures, test.ShouldEqual, 0)
}

func TestSparseCoverageBlockedVisibility(t *testing.T) {
	// a slab separates the corridor from the sparse node above it: the
	// candidate below is within sparseDelta but not visible, so coverage
	// inserts it despite the non-empty raw neighborhood
	space, err := statespace.NewBoxWorld(
		[]statespace.Limit{{Min: 0, Max: 10}, {Min: 0, Max: 10}},
		[]statespace.Box{statespace.NewBox(r3.Vector{X: 5, Y: 5.8}, r3.Vector{X: 2, Y: 0.4})},
	)
	test.That(t, err, test.ShouldBeNil)
	s := testSparseSetup(t, space)

	s.graph.addNode(statespace.State{5, 7})
	vd := s.dense.addNode(statespace.State{5, 5})
	graphNbh, visibleNbh := s.findGraphNeighbors(statespace.State{5, 5})
	test.That(t, len(graphNbh), test.ShouldEqual, 1)
	test.That(t, len(visibleNbh), test.ShouldEqual, 0)

	test.That(t, s.offer(vd), test.ShouldBeTrue)
	test.That(t, s.graph.numNodes(), test.ShouldEqual, 2)
}

func TestSparseConnectivity(t *testing.T) {
	space, err := statespace.NewRealVectorSpace(
		[]statespace.Limit{{Min: 0, Max: 100}}, nil)
	test.That(t, err, test.ShouldBeNil)
	s := testSparseSetup(t, space)

	// two coverage nodes 20 apart live in separate components
	va := s.dense.addNode(statespace.State{0})
	vb := s.dense.addNode(statespace.State{20})
	test.That(t, s.offer(va), test.ShouldBeTrue)
	test.That(t, s.offer(vb), test.ShouldBeTrue)
	test.That(t, s.graph.sameComponent(0, 1), test.ShouldBeFalse)

	// a candidate seeing both merges them
	vm := s.dense.addNode(statespace.State{10})
	test.That(t, s.offer(vm), test.ShouldBeTrue)
	test.That(t, s.graph.numNodes(), test.ShouldEqual, 3)
	test.That(t, s.graph.sameComponent(0, 1), test.ShouldBeTrue)
	test.That(t, s.graph.hasEdge(2, 0), test.ShouldBeTrue)
	test.That(t, s.graph.hasEdge(2, 1), test.ShouldBeTrue)
}

func TestSparseInterface(t *testing.T) {
	// wall at x=5 with a gap around y=5; two sparse nodes face each other
	// across the wall at y=6 where the direct motion is blocked
	space, err := statespace.NewBoxWorld(
		[]statespace.Limit{{Min: 0, Max: 10}, {Min: 0, Max: 10}},
		[]statespace.Box{
			statespace.NewBox(r3.Vector{X: 5, Y: 2.25}, r3.Vector{X: 0.5, Y: 4.5}),
			statespace.NewBox(r3.Vector{X: 5, Y: 7.75}, r3.Vector{X: 0.5, Y: 4.5}),
		},
	)
	test.That(t, err, test.ShouldBeNil)
	s := testSparseSetup(t, space)

	va := s.graph.addNode(statespace.State{4, 6})
	vb := s.graph.addNode(statespace.State{6, 6})
	test.That(t, space.CheckMotion(s.graph.node(va).state, s.graph.node(vb).state), test.ShouldBeFalse)

	// the candidate in the gap sees both and is inserted as a bridge
	q := newConfiguration(statespace.State{5, 5}, 0)
	graphNbh, visibleNbh := s.findGraphNeighbors(q.state)
	test.That(t, len(visibleNbh), test.ShouldEqual, 2)
	test.That(t, s.checkAddInterface(q, graphNbh, visibleNbh), test.ShouldBeTrue)
	test.That(t, s.graph.numNodes(), test.ShouldEqual, 3)
	test.That(t, s.graph.hasEdge(2, va), test.ShouldBeTrue)
	test.That(t, s.graph.hasEdge(2, vb), test.ShouldBeTrue)
}

func TestSparseInterfaceDirectEdge(t *testing.T) {
	space, err := statespace.NewRealVectorSpace(
		[]statespace.Limit{{Min: 0, Max: 10}, {Min: 0, Max: 10}}, nil)
	test.That(t, err, test.ShouldBeNil)
	s := testSparseSetup(t, space)

	va := s.graph.addNode(statespace.State{4, 5})
	vb := s.graph.addNode(statespace.State{6, 5})

	// free space: the direct motion is valid, so no bridge node is inserted
	q := newConfiguration(statespace.State{5, 5.2}, 0)
	graphNbh, visibleNbh := s.findGraphNeighbors(q.state)
	test.That(t, s.checkAddInterface(q, graphNbh, visibleNbh), test.ShouldBeTrue)
	test.That(t, s.graph.numNodes(), test.ShouldEqual, 2)
	test.That(t, s.graph.hasEdge(va, vb), test.ShouldBeTrue)
}

func TestSparseRepresentatives(t *testing.T) {
	space, err := statespace.NewRealVectorSpace(
		[]statespace.Limit{{Min: 0, Max: 100}}, nil)
	test.That(t, err, test.ShouldBeNil)
	s := testSparseSetup(t, space)

	// dense chain around two future sparse nodes
	var denseNodes []int
	for _, x := range []float64{0, 2, 4, 16, 18, 20} {
		denseNodes = append(denseNodes, s.dense.addNode(statespace.State{x}))
	}
	v0 := s.addSparseNode(statespace.State{0})
	v1 := s.addSparseNode(statespace.State{20})

	// every dense node within sparseDelta of a sparse node got a representative
	for _, vd := range denseNodes {
		q := s.dense.node(vd)
		test.That(t, q.representativeIndex, test.ShouldNotEqual, noParent)
	}
	test.That(t, s.dense.node(denseNodes[0]).representativeIndex, test.ShouldEqual, v0)
	test.That(t, s.dense.node(denseNodes[5]).representativeIndex, test.ShouldEqual, v1)
}

func TestSparseInterfaceBookkeeping(t *testing.T) {
	space, err := statespace.NewRealVectorSpace(
		[]statespace.Limit{{Min: 0, Max: 100}}, nil)
	test.That(t, err, test.ShouldBeNil)
	s := testSparseSetup(t, space)
	// denseDelta = 0.05 * 100
	test.That(t, s.denseDelta, test.ShouldAlmostEqual, 5.)

	// two dense nodes adjacent across the midpoint between two sparse nodes
	qa := s.dense.addNode(statespace.State{8})
	qb := s.dense.addNode(statespace.State{12})
	s.dense.addEdge(qa, qb)
	v0 := s.addSparseNode(statespace.State{0})
	v1 := s.addSparseNode(statespace.State{20})

	test.That(t, s.dense.node(qa).representativeIndex, test.ShouldEqual, v0)
	test.That(t, s.dense.node(qb).representativeIndex, test.ShouldEqual, v1)

	// qa supports the interface between v0 and v1, so it lands in v0's
	// interface list keyed by v1
	test.That(t, s.graph.node(v0).interfaceIndexList[v1][qa], test.ShouldBeTrue)
	test.That(t, s.graph.node(v1).interfaceIndexList[v0][qb], test.ShouldBeTrue)
	test.That(t, s.getInterfaceNeighborhood(s.dense.node(qa)), test.ShouldResemble, []int{qb})
	test.That(t, s.getInterfaceNeighbor(qa, v1), test.ShouldEqual, qb)
}

func TestSparsePathRepair(t *testing.T) {
	// representatives v, vp, vpp with a sparse edge only between v and vpp; the
	// dense graph holds a short diagonal between the interface witnesses, so
	// the path test must splice it in and connect vp's side to vpp's
	space, err := statespace.NewRealVectorSpace(
		[]statespace.Limit{{Min: 0, Max: 100}, {Min: 0, Max: 100}}, nil)
	test.That(t, err, test.ShouldBeNil)
	opts, err := newSparseOptions(space, map[string]interface{}{"stretch_factor": 1.5})
	test.That(t, err, test.ShouldBeNil)
	dense := newRoadmap(space, statespace.NewPathLengthObjective(space))
	s := newSparseRoadmap(dense, opts, rand.New(rand.NewSource(1)), golog.NewTestLogger(t))

	q := dense.addNode(statespace.State{44, 50})
	qp := dense.addNode(statespace.State{42, 50})
	qpp := dense.addNode(statespace.State{50, 44})
	qdp := dense.addNode(statespace.State{50, 42})
	dense.addEdge(q, qp)
	dense.addEdge(qpp, qdp)
	dense.addEdge(q, qpp)

	v := s.addSparseNode(statespace.State{50, 50})
	vp := s.addSparseNode(statespace.State{35, 50})
	vpp := s.addSparseNode(statespace.State{50, 35})
	s.addSparseEdge(v, vpp)

	test.That(t, dense.node(q).representativeIndex, test.ShouldEqual, v)
	test.That(t, dense.node(qp).representativeIndex, test.ShouldEqual, vp)
	test.That(t, dense.node(qpp).representativeIndex, test.ShouldEqual, v)
	test.That(t, dense.node(qdp).representativeIndex, test.ShouldEqual, vpp)
	test.That(t, s.graph.node(v).interfaceIndexList[vpp][qpp], test.ShouldBeTrue)

	test.That(t, s.graph.sameComponent(vp, vpp), test.ShouldBeFalse)
	test.That(t, s.checkAddPath(dense.node(q)), test.ShouldBeTrue)
	test.That(t, s.graph.sameComponent(vp, vpp), test.ShouldBeTrue)
	test.That(t, s.graph.numNodes(), test.ShouldBeGreaterThan, 3)
	test.That(t, s.consecutiveFailures, test.ShouldEqual, 0)
}

func TestSparseAddPathToSpanner(t *testing.T) {
	space, err := statespace.NewRealVectorSpace(
		[]statespace.Limit{{Min: 0, Max: 100}}, nil)
	test.That(t, err, test.ShouldBeNil)
	s := testSparseSetup(t, space)

	vp := s.graph.addNode(statespace.State{0})
	vpp := s.graph.addNode(statespace.State{30})

	// a degenerate path links the representatives directly
	s.addPathToSpanner([]statespace.State{{10}}, vp, vpp)
	test.That(t, s.graph.hasEdge(vp, vpp), test.ShouldBeTrue)

	// a longer path is spliced in as a chain between them
	vq := s.graph.addNode(statespace.State{60})
	vr := s.graph.addNode(statespace.State{95})
	s.addPathToSpanner([]statespace.State{{70}, {75}, {80}, {85}}, vq, vr)
	test.That(t, s.graph.sameComponent(vq, vr), test.ShouldBeTrue)
	test.That(t, s.graph.numNodes(), test.ShouldBeGreaterThanOrEqualTo, 6)
	_, vertices, ok := s.graph.shortestPath(vq, vr)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, len(vertices), test.ShouldBeGreaterThanOrEqualTo, 3)
}
