package resample

import (
	"sort"
)

// WeightElem is the contribution of one source vertex to one target vertex
type WeightElem struct {
	Node   int
	Weight float64
}

// weightTable stores the weights of target vertex i in
// elems[start[i]:start[i+1]], sorted by source node.
type weightTable struct {
	elems []WeightElem
	start []int
}

func compactWeights(weights []map[int]float64) (wt weightTable) {
	var (
		n    = len(weights)
		size int
	)
	for _, w := range weights {
		size += len(w)
	}
	wt.elems = make([]WeightElem, 0, size)
	wt.start = make([]int, n+1)
	for i, w := range weights {
		wt.start[i] = len(wt.elems)
		for _, node := range sortedNodes(w) {
			wt.elems = append(wt.elems, WeightElem{node, w[node]})
		}
	}
	wt.start[n] = len(wt.elems)
	return
}

func (wt weightTable) numRows() int { return len(wt.start) - 1 }

func (wt weightTable) row(i int) []WeightElem {
	return wt.elems[wt.start[i]:wt.start[i+1]]
}

func sortedNodes(w map[int]float64) (nodes []int) {
	nodes = make([]int, 0, len(w))
	for node := range w {
		nodes = append(nodes, node)
	}
	sort.Ints(nodes)
	return
}
