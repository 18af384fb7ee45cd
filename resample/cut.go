package resample

import (
	"fmt"
	"math"
	"sync/atomic"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/goresample/geometry"
	"github.com/notargets/goresample/mesh"
	"github.com/notargets/goresample/types"
	"github.com/notargets/goresample/utils"
)

// CutPathFactor is how many times longer than on the closed sphere the path
// between two vertices may be on the cut surface before the new edge joining
// them is taken to cross a cut.
const CutPathFactor = 2.0

// ResampleCutSurface moves cutSurf, which shares vertices with currentSphere
// but has triangles removed along cuts, onto the topology of newSphere. New
// triangles bridging a cut are dropped. A new vertex on the cut with no
// neighbor inside the cut surface loses all its triangles and is moved to
// the origin.
func ResampleCutSurface(cutSurf, currentSphere, newSphere mesh.SurfaceProvider) (R *mesh.Surface, err error) {
	if cutSurf.NumberOfVertices() != currentSphere.NumberOfVertices() {
		err = fmt.Errorf("%w: input surface has %d vertices, input sphere has %d",
			utils.ErrInvalidInput, cutSurf.NumberOfVertices(), currentSphere.NumberOfVertices())
		return
	}
	if cutSurf.NumberOfTriangles() == 0 {
		err = fmt.Errorf("%w: cut surface has no triangles", utils.ErrInvalidInput)
		return
	}
	for _, s := range []mesh.SurfaceProvider{currentSphere, newSphere} {
		var isSphere bool
		if isSphere, err = mesh.CheckSphere(s); err != nil {
			return
		}
		if !isSphere {
			err = fmt.Errorf("%w: input surfaces to the resampling helper must be spheres", utils.ErrInvalidInput)
			return
		}
	}
	var (
		useCur    = mesh.ChangeRadius(mesh.CanonicalRadius, currentSphere)
		useNew    = mesh.ChangeRadius(mesh.CanonicalRadius, newSphere)
		cut       = mesh.FromProvider(cutSurf)
		cutSphere *mesh.Surface
	)
	// cut topology, sphere coordinates
	if cutSphere, err = cut.WithCoordinates(useCur.Coords); err != nil {
		return
	}
	var (
		numNew     = useNew.NumberOfVertices()
		locator    = mesh.NewTriangleLocator(cutSphere)
		info       = make([]mesh.BarycentricInfo, numNew)
		largest    = make([]int, numNew)
		onCut      = make([]bool, numNew)
		cutTopo    = cutSphere.Topology()
		closedTopo = useCur.Topology()
		newTopo    = useNew.Topology()
	)
	if len(cutTopo.BoundaryEdges()) == 0 {
		utils.LogWarnf("cut surface has no boundary edges, no triangles will be removed\n")
	}
	utils.ParallelFor(numNew, func(kMin, kMax int) {
		for i := kMin; i < kMax; i++ {
			info[i] = locator.Locate(useNew.Coordinate(i))
			var second int
			largest[i], second = twoLargest(info[i])
			switch info[i].Type {
			case geometry.BARY_NODE:
				onCut[i] = len(cutTopo.NodeTiles[largest[i]]) != len(closedTopo.NodeTiles[largest[i]])
			case geometry.BARY_EDGE:
				if second < 0 {
					break
				}
				// a cut edge has a single tile
				ind, ok := cutTopo.EdgeIndex[types.NewEdgeKey([2]int{largest[i], second})]
				onCut[i] = ok && cutTopo.Edges[ind].NumTiles == 1
			}
		}
	})
	var (
		closedGeo  = mesh.NewGeodesic(useCur)
		cutGeo     = mesh.NewGeodesic(cutSphere)
		removeTri  = make([]atomic.Bool, useNew.NumberOfTriangles())
		disconnect = make([]bool, numNew)
	)
	crossesCut := func(i, nbr int) bool {
		a, b := largest[i], largest[nbr]
		cutDist := cutGeo.Distance(a, b)
		return math.IsInf(cutDist, 1) || cutDist > CutPathFactor*closedGeo.Distance(a, b)
	}
	utils.ParallelFor(numNew, func(kMin, kMax int) {
		for i := kMin; i < kMax; i++ {
			neighbors := newTopo.NodeNeighbors[i]
			if onCut[i] && !hasInteriorNeighbor(neighbors, onCut) {
				disconnect[i] = true
				for _, k := range newTopo.NodeTiles[i] {
					removeTri[k].Store(true)
				}
				continue
			}
			// interior vertices are checked too, a cut may hold no new vertex
			for _, nbr := range neighbors {
				if !crossesCut(i, nbr) {
					continue
				}
				for _, k := range newTopo.NodeTiles[i] {
					tri := useNew.Triangle(k)
					if tri[0] == nbr || tri[1] == nbr || tri[2] == nbr {
						removeTri[k].Store(true)
					}
				}
			}
		}
	})
	var tris [][3]int
	for k := range removeTri {
		if !removeTri[k].Load() {
			tris = append(tris, useNew.Triangle(k))
		}
	}
	coords := make([]r3.Vec, numNew)
	for i := range coords {
		if disconnect[i] {
			continue
		}
		for j := 0; j < 3; j++ {
			coords[i] = r3.Add(coords[i], r3.Scale(info[i].Weights[j], cut.Coordinate(info[i].Nodes[j])))
		}
	}
	return mesh.NewSurface(coords, tris, cut.Structure())
}

// twoLargest returns the vertices with the largest and second largest
// barycentric weights, -1 where no weight qualifies.
func twoLargest(info mesh.BarycentricInfo) (largest, second int) {
	var (
		largestWeight, secondWeight float64
	)
	largest, second = -1, -1
	for j := 0; j < 3; j++ {
		w := info.Weights[j]
		switch {
		case w > largestWeight:
			second, secondWeight = largest, largestWeight
			largest, largestWeight = info.Nodes[j], w
		case w > secondWeight:
			second, secondWeight = info.Nodes[j], w
		}
	}
	return
}

func hasInteriorNeighbor(neighbors []int, onCut []bool) bool {
	for _, nbr := range neighbors {
		if !onCut[nbr] {
			return true
		}
	}
	return false
}
