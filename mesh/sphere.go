package mesh

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/goresample/utils"
)

const (
	SphereTolerance = 1.001
	CanonicalRadius = 100.0
)

// CheckSphere reports whether every vertex lies at nearly the same distance
// from the origin. NaN coordinates are an input error.
func CheckSphere(s SurfaceProvider) (isSphere bool, err error) {
	var (
		nv = s.NumberOfVertices()
	)
	if nv < 2 {
		err = fmt.Errorf("%w: sphere needs at least 2 vertices, has %d", utils.ErrInvalidInput, nv)
		return
	}
	minDist, maxDist := math.Inf(1), math.Inf(-1)
	for i := 0; i < nv; i++ {
		d := r3.Norm(s.Coordinate(i))
		if math.IsNaN(d) {
			err = fmt.Errorf("%w: found NaN coordinate in an input sphere at vertex %d", utils.ErrInvalidInput, i)
			return
		}
		minDist = math.Min(minDist, d)
		maxDist = math.Max(maxDist, d)
	}
	isSphere = minDist*SphereTolerance > maxDist
	return
}

// ChangeRadius projects every vertex onto the sphere of the given radius,
// the returned surface shares triangles with s.
func ChangeRadius(radius float64, s SurfaceProvider) (R *Surface) {
	var (
		src    = asSurface(s)
		coords = make([]r3.Vec, len(src.Coords))
	)
	utils.ParallelFor(len(coords), func(kMin, kMax int) {
		for i := kMin; i < kMax; i++ {
			c := src.Coords[i]
			coords[i] = r3.Scale(radius/r3.Norm(c), c)
		}
	})
	R = &Surface{
		Coords:       coords,
		Triangles:    src.Triangles,
		StructureTag: src.StructureTag,
	}
	return
}

// MeanRadius is the average vertex distance from the origin
func MeanRadius(s SurfaceProvider) (r float64) {
	nv := s.NumberOfVertices()
	if nv == 0 {
		return
	}
	for i := 0; i < nv; i++ {
		r += r3.Norm(s.Coordinate(i))
	}
	return r / float64(nv)
}

func asSurface(s SurfaceProvider) *Surface {
	if ss, ok := s.(*Surface); ok {
		return ss
	}
	return FromProvider(s)
}
