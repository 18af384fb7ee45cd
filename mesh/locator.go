package mesh

import (
	"math"

	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/goresample/geometry"
)

// BarycentricInfo describes the closest point of a surface to a query
type BarycentricInfo struct {
	Triangle    int
	Nodes       [3]int
	Weights     [3]float64 // sum to 1, exact zeros for vertex and edge hits
	Type        geometry.BaryType
	Point       r3.Vec // closest point on the surface
	AbsDistance float64
}

// TriangleLocator finds the closest triangle of a surface to arbitrary query
// points. It is read only after construction and safe for concurrent use.
type TriangleLocator struct {
	surf      *Surface
	tree      *kdtree.Tree
	maxRadius float64 // largest centroid to vertex distance over all triangles
}

func NewTriangleLocator(s SurfaceProvider) (tl *TriangleLocator) {
	var (
		surf = asSurface(s)
		nt   = surf.NumberOfTriangles()
		pts  = make(centroids, nt)
	)
	tl = &TriangleLocator{surf: surf}
	for k := 0; k < nt; k++ {
		tc := surf.TriangleCoords(k)
		c := geometry.TriangleCentroid(tc[0], tc[1], tc[2])
		pts[k] = centroid{Vec: c, tri: k}
		for _, v := range tc {
			tl.maxRadius = math.Max(tl.maxRadius, r3.Norm(r3.Sub(v, c)))
		}
	}
	if nt > 0 {
		tl.tree = kdtree.New(pts, false)
	}
	return
}

// Locate returns the closest point on the surface to p. Ties between equally
// distant triangles go to the lowest triangle index.
func (tl *TriangleLocator) Locate(p r3.Vec) (info BarycentricInfo) {
	info.Triangle = -1
	if tl.tree == nil {
		return
	}
	var (
		query      = centroid{Vec: p, tri: -1}
		nearest, _ = tl.tree.Nearest(query)
		best       = tl.evaluate(nearest.(centroid).tri, p)
		radius     = best.AbsDistance + tl.maxRadius
		keeper     = kdtree.NewDistKeeper(radius * radius * (1 + 1e-9))
	)
	tl.tree.NearestSet(keeper, query)
	for _, cd := range keeper.Heap {
		if cd.Comparable == nil {
			continue
		}
		k := cd.Comparable.(centroid).tri
		if k == best.Triangle {
			continue
		}
		cand := tl.evaluate(k, p)
		if cand.AbsDistance < best.AbsDistance ||
			(cand.AbsDistance == best.AbsDistance && k < best.Triangle) {
			best = cand
		}
	}
	return best
}

func (tl *TriangleLocator) evaluate(k int, p r3.Vec) (info BarycentricInfo) {
	var (
		tri = tl.surf.Triangles[k]
		tc  = tl.surf.triCoords(tri)
	)
	info.Triangle = k
	info.Nodes = tri
	info.Point, info.Weights, info.Type = geometry.ClosestPointOnTriangle(p, tc[0], tc[1], tc[2])
	info.AbsDistance = r3.Norm(r3.Sub(p, info.Point))
	return
}

// centroid is a triangle centroid stored in the kd tree
type centroid struct {
	r3.Vec
	tri int
}

func (c centroid) Compare(cc kdtree.Comparable, d kdtree.Dim) float64 {
	q := cc.(centroid)
	switch d {
	case 0:
		return c.X - q.X
	case 1:
		return c.Y - q.Y
	case 2:
		return c.Z - q.Z
	default:
		panic("illegal dimension")
	}
}

func (c centroid) Dims() int { return 3 }

// Distance returns the squared distance
func (c centroid) Distance(cc kdtree.Comparable) float64 {
	return r3.Norm2(r3.Sub(c.Vec, cc.(centroid).Vec))
}

type centroids []centroid

func (p centroids) Index(i int) kdtree.Comparable         { return p[i] }
func (p centroids) Len() int                              { return len(p) }
func (p centroids) Slice(start, end int) kdtree.Interface { return p[start:end] }
func (p centroids) Pivot(d kdtree.Dim) int {
	return kdtree.Partition(centroidPlane{centroids: p, Dim: d}, kdtree.MedianOfRandoms(centroidPlane{centroids: p, Dim: d}, 100))
}

type centroidPlane struct {
	centroids
	kdtree.Dim
}

func (p centroidPlane) Less(i, j int) bool {
	switch p.Dim {
	case 0:
		return p.centroids[i].X < p.centroids[j].X
	case 1:
		return p.centroids[i].Y < p.centroids[j].Y
	case 2:
		return p.centroids[i].Z < p.centroids[j].Z
	default:
		panic("illegal dimension")
	}
}

func (p centroidPlane) Slice(start, end int) kdtree.SortSlicer {
	return centroidPlane{centroids: p.centroids[start:end], Dim: p.Dim}
}

func (p centroidPlane) Swap(i, j int) {
	p.centroids[i], p.centroids[j] = p.centroids[j], p.centroids[i]
}
