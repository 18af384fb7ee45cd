package mesh

import (
	"math"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/spatial/r3"
)

// Geodesic measures shortest path lengths along the edges of a surface. It
// is read only after construction and safe for concurrent use.
type Geodesic struct {
	g      *simple.WeightedUndirectedGraph
	coords []r3.Vec
}

func NewGeodesic(s SurfaceProvider) (gd *Geodesic) {
	var (
		surf = asSurface(s)
		tp   = surf.Topology()
	)
	gd = &Geodesic{
		g:      simple.NewWeightedUndirectedGraph(0, math.Inf(1)),
		coords: surf.Coords,
	}
	for i := range surf.Coords {
		gd.g.AddNode(simple.Node(i))
	}
	for _, e := range tp.Edges {
		v := e.Key.GetVertices(false)
		length := r3.Norm(r3.Sub(surf.Coords[v[0]], surf.Coords[v[1]]))
		gd.g.SetWeightedEdge(gd.g.NewWeightedEdge(simple.Node(v[0]), simple.Node(v[1]), length))
	}
	return
}

// Distance is the shortest edge path length from a to b, +Inf when they are
// not connected. The straight line distance guides the search.
func (gd *Geodesic) Distance(a, b int) float64 {
	if a == b {
		return 0
	}
	chord := func(x, y graph.Node) float64 {
		return r3.Norm(r3.Sub(gd.coords[x.ID()], gd.coords[y.ID()]))
	}
	shortest, _ := path.AStar(simple.Node(a), simple.Node(b), gd.g, chord)
	return shortest.WeightTo(int64(b))
}
