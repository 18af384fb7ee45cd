package mesh

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/goresample/types"
)

// NewCubeSurface returns a closed cube centered at the origin with each face
// split into an n x n grid. For n > 1 its vertices lie at varying radii.
func NewCubeSurface(halfWidth float64, n int) (s *Surface) {
	var (
		coords []r3.Vec
		tris   [][3]int
		index  = make(map[[3]int]int)
	)
	vert := func(i, j, k int) int {
		key := [3]int{i, j, k}
		if ind, ok := index[key]; ok {
			return ind
		}
		step := 2 * halfWidth / float64(n)
		coords = append(coords, r3.Vec{
			X: -halfWidth + float64(i)*step,
			Y: -halfWidth + float64(j)*step,
			Z: -halfWidth + float64(k)*step,
		})
		index[key] = len(coords) - 1
		return len(coords) - 1
	}
	// each face maps its (u,v) grid onto lattice coordinates
	faces := []func(u, v int) [3]int{
		func(u, v int) [3]int { return [3]int{v, u, 0} },
		func(u, v int) [3]int { return [3]int{u, v, n} },
		func(u, v int) [3]int { return [3]int{u, 0, v} },
		func(u, v int) [3]int { return [3]int{v, n, u} },
		func(u, v int) [3]int { return [3]int{0, v, u} },
		func(u, v int) [3]int { return [3]int{n, u, v} },
	}
	for _, f := range faces {
		for u := 0; u < n; u++ {
			for v := 0; v < n; v++ {
				p00, p10, p11, p01 := f(u, v), f(u+1, v), f(u+1, v+1), f(u, v+1)
				a, b := vert(p00[0], p00[1], p00[2]), vert(p10[0], p10[1], p10[2])
				c, d := vert(p11[0], p11[1], p11[2]), vert(p01[0], p01[1], p01[2])
				tris = append(tris, [3]int{a, b, c}, [3]int{a, c, d})
			}
		}
	}
	return &Surface{Coords: coords, Triangles: tris, StructureTag: types.STRUCTURE_OTHER}
}

// Distort returns a copy of s with every coordinate passed through f
func Distort(s *Surface, f func(r3.Vec) r3.Vec) (R *Surface) {
	coords := make([]r3.Vec, len(s.Coords))
	for i, c := range s.Coords {
		coords[i] = f(c)
	}
	R = &Surface{Coords: coords, Triangles: s.Triangles, StructureTag: s.StructureTag}
	return
}

// Ellipsoidal stretches a sphere along x, a smooth area distortion
func Ellipsoidal(sx float64) func(r3.Vec) r3.Vec {
	return func(p r3.Vec) r3.Vec {
		return r3.Vec{X: sx * p.X, Y: p.Y, Z: p.Z * (1 + 0.25*math.Sin(p.X/50))}
	}
}
