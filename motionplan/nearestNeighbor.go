package motionplan

import (
	"sort"

	"github.com/sohaib-gujjar/ompl/statespace"
)

// nearestIndex is a linear nearest-neighbor index over node indices. Distances
// are computed with the owning space's metric on every query; insertion order is
// the node index order of the arena.
type nearestIndex struct {
	space   statespace.Space
	states  []statespace.State
	indices []int
}

type neighbor struct {
	dist  float64
	index int
}

func newNearestIndex(space statespace.Space) *nearestIndex {
	return &nearestIndex{space: space}
}

func (ni *nearestIndex) insert(index int, state statespace.State) {
	ni.indices = append(ni.indices, index)
	ni.states = append(ni.states, state)
}

func (ni *nearestIndex) size() int {
	return len(ni.indices)
}

// nearest returns the index of the closest stored node, or noParent when empty.
func (ni *nearestIndex) nearest(state statespace.State) int {
	best := noParent
	bestDist := 0.
	for i, s := range ni.states {
		dist := ni.space.Distance(state, s)
		if best == noParent || dist < bestDist {
			best = ni.indices[i]
			bestDist = dist
		}
	}
	return best
}

func (ni *nearestIndex) allNeighbors(state statespace.State) []*neighbor {
	all := make([]*neighbor, 0, len(ni.indices))
	for i, s := range ni.states {
		all = append(all, &neighbor{dist: ni.space.Distance(state, s), index: ni.indices[i]})
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].dist < all[j].dist
	})
	return all
}

// kNearest returns up to k node indices ordered by increasing distance.
func (ni *nearestIndex) kNearest(state statespace.State, k int) []int {
	if k > len(ni.indices) {
		k = len(ni.indices)
	}
	all := ni.allNeighbors(state)
	found := make([]int, 0, k)
	for _, nb := range all[:k] {
		found = append(found, nb.index)
	}
	return found
}

// rangeNearest returns all node indices within radius r, ordered by increasing distance.
func (ni *nearestIndex) rangeNearest(state statespace.State, r float64) []int {
	all := ni.allNeighbors(state)
	found := make([]int, 0)
	for _, nb := range all {
		if nb.dist > r {
			break
		}
		found = append(found, nb.index)
	}
	return found
}
