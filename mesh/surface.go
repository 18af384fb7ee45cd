package mesh

import (
	"fmt"
	"sync"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/goresample/types"
	"github.com/notargets/goresample/utils"
)

// SurfaceProvider is the read only view of a triangulated surface used by the
// resampling code.
type SurfaceProvider interface {
	NumberOfVertices() int
	Coordinate(i int) r3.Vec
	NumberOfTriangles() int
	Triangle(i int) [3]int
	Structure() types.StructureTag
}

// Surface is an in memory triangulated surface
type Surface struct {
	Coords       []r3.Vec
	Triangles    [][3]int
	StructureTag types.StructureTag

	topoOnce sync.Once
	topo     *Topology
}

// NewSurface validates the triangle indices against the coordinate count
func NewSurface(coords []r3.Vec, tris [][3]int, st types.StructureTag) (s *Surface, err error) {
	nv := len(coords)
	for k, tri := range tris {
		for _, v := range tri {
			if v < 0 || v >= nv {
				err = fmt.Errorf("%w: triangle %d references vertex %d, surface has %d vertices",
					utils.ErrInvalidInput, k, v, nv)
				return
			}
		}
		if tri[0] == tri[1] || tri[1] == tri[2] || tri[0] == tri[2] {
			err = fmt.Errorf("%w: triangle %d repeats a vertex: %v", utils.ErrInvalidInput, k, tri)
			return
		}
	}
	s = &Surface{
		Coords:       coords,
		Triangles:    tris,
		StructureTag: st,
	}
	return
}

// FromProvider copies any SurfaceProvider into a Surface
func FromProvider(p SurfaceProvider) (s *Surface) {
	var (
		nv = p.NumberOfVertices()
		nt = p.NumberOfTriangles()
	)
	s = &Surface{
		Coords:       make([]r3.Vec, nv),
		Triangles:    make([][3]int, nt),
		StructureTag: p.Structure(),
	}
	for i := 0; i < nv; i++ {
		s.Coords[i] = p.Coordinate(i)
	}
	for k := 0; k < nt; k++ {
		s.Triangles[k] = p.Triangle(k)
	}
	return
}

func (s *Surface) NumberOfVertices() int          { return len(s.Coords) }
func (s *Surface) Coordinate(i int) r3.Vec        { return s.Coords[i] }
func (s *Surface) NumberOfTriangles() int         { return len(s.Triangles) }
func (s *Surface) Triangle(i int) [3]int          { return s.Triangles[i] }
func (s *Surface) Structure() types.StructureTag  { return s.StructureTag }
func (s *Surface) TriangleCoords(k int) [3]r3.Vec { return s.triCoords(s.Triangles[k]) }

func (s *Surface) triCoords(tri [3]int) [3]r3.Vec {
	return [3]r3.Vec{s.Coords[tri[0]], s.Coords[tri[1]], s.Coords[tri[2]]}
}

// WithCoordinates returns a surface sharing topology but with new coordinates
func (s *Surface) WithCoordinates(coords []r3.Vec) (R *Surface, err error) {
	if len(coords) != len(s.Coords) {
		err = fmt.Errorf("%w: %d coordinates for a surface with %d vertices",
			utils.ErrInvalidInput, len(coords), len(s.Coords))
		return
	}
	R = &Surface{
		Coords:       coords,
		Triangles:    s.Triangles,
		StructureTag: s.StructureTag,
	}
	return
}

// CoordinateData flattens the coordinates into x,y,z triples
func (s *Surface) CoordinateData() (data []float64) {
	data = make([]float64, 3*len(s.Coords))
	for i, c := range s.Coords {
		data[3*i], data[3*i+1], data[3*i+2] = c.X, c.Y, c.Z
	}
	return
}

// Topology is built on first use and cached
func (s *Surface) Topology() *Topology {
	s.topoOnce.Do(func() {
		s.topo = NewTopology(s)
	})
	return s.topo
}
