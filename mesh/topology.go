package mesh

import (
	"sort"

	"github.com/notargets/goresample/types"
)

// EdgeInfo counts the triangles sharing an edge, one for a boundary edge
type EdgeInfo struct {
	Key      types.EdgeKey
	NumTiles int
}

// Topology holds the vertex adjacency of a triangulated surface
type Topology struct {
	NodeNeighbors [][]int // sorted, unique
	NodeTiles     [][]int // triangles incident on each vertex
	Edges         []EdgeInfo
	EdgeIndex     map[types.EdgeKey]int
}

func NewTopology(s SurfaceProvider) (tp *Topology) {
	var (
		nv = s.NumberOfVertices()
		nt = s.NumberOfTriangles()
	)
	tp = &Topology{
		NodeNeighbors: make([][]int, nv),
		NodeTiles:     make([][]int, nv),
		EdgeIndex:     make(map[types.EdgeKey]int, 3*nt/2),
	}
	for k := 0; k < nt; k++ {
		tri := s.Triangle(k)
		for i := 0; i < 3; i++ {
			v0, v1 := tri[i], tri[(i+1)%3]
			tp.NodeTiles[v0] = append(tp.NodeTiles[v0], k)
			ek := types.NewEdgeKey([2]int{v0, v1})
			if ind, ok := tp.EdgeIndex[ek]; ok {
				tp.Edges[ind].NumTiles++
				continue
			}
			tp.EdgeIndex[ek] = len(tp.Edges)
			tp.Edges = append(tp.Edges, EdgeInfo{Key: ek, NumTiles: 1})
			tp.NodeNeighbors[v0] = append(tp.NodeNeighbors[v0], v1)
			tp.NodeNeighbors[v1] = append(tp.NodeNeighbors[v1], v0)
		}
	}
	for i := range tp.NodeNeighbors {
		sort.Ints(tp.NodeNeighbors[i])
	}
	return
}

// BoundaryEdges returns the edges used by exactly one triangle
func (tp *Topology) BoundaryEdges() (edges []types.EdgeKey) {
	for _, e := range tp.Edges {
		if e.NumTiles == 1 {
			edges = append(edges, e.Key)
		}
	}
	return
}

// IsClosed is true when every edge is shared by two triangles
func (tp *Topology) IsClosed() bool {
	for _, e := range tp.Edges {
		if e.NumTiles != 2 {
			return false
		}
	}
	return true
}
