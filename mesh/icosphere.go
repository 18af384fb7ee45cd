package mesh

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/goresample/types"
	"github.com/notargets/goresample/utils"
)

var (
	icoPhi   = (1 + math.Sqrt(5)) / 2
	icoVerts = []r3.Vec{
		{X: -1, Y: icoPhi}, {X: 1, Y: icoPhi}, {X: -1, Y: -icoPhi}, {X: 1, Y: -icoPhi},
		{Y: -1, Z: icoPhi}, {Y: 1, Z: icoPhi}, {Y: -1, Z: -icoPhi}, {Y: 1, Z: -icoPhi},
		{X: icoPhi, Z: -1}, {X: icoPhi, Z: 1}, {X: -icoPhi, Z: -1}, {X: -icoPhi, Z: 1},
	}
	icoTris = [][3]int{
		{0, 11, 5}, {0, 5, 1}, {0, 1, 7}, {0, 7, 10}, {0, 10, 11},
		{1, 5, 9}, {5, 11, 4}, {11, 10, 2}, {10, 7, 6}, {7, 1, 8},
		{3, 9, 4}, {3, 4, 2}, {3, 2, 6}, {3, 6, 8}, {3, 8, 9},
		{4, 9, 5}, {2, 4, 11}, {6, 2, 10}, {8, 6, 7}, {9, 8, 1},
	}
)

// NewIcosphere builds a regular sphere by repeated 4:1 subdivision of an
// icosahedron. Level n has 10*4^n+2 vertices.
func NewIcosphere(level int, radius float64) (s *Surface, err error) {
	if level < 0 || level > 8 {
		err = fmt.Errorf("%w: icosphere level must be in [0,8], have %d", utils.ErrInvalidInput, level)
		return
	}
	if !(radius > 0) {
		err = fmt.Errorf("%w: icosphere radius must be positive, have %v", utils.ErrInvalidInput, radius)
		return
	}
	var (
		coords = make([]r3.Vec, len(icoVerts))
		tris   = make([][3]int, len(icoTris))
	)
	for i, v := range icoVerts {
		coords[i] = r3.Unit(v)
	}
	copy(tris, icoTris)
	for l := 0; l < level; l++ {
		var (
			midpoints = make(map[types.EdgeKey]int, 3*len(tris)/2)
			newTris   = make([][3]int, 0, 4*len(tris))
		)
		mid := func(v0, v1 int) int {
			ek := types.NewEdgeKey([2]int{v0, v1})
			if ind, ok := midpoints[ek]; ok {
				return ind
			}
			coords = append(coords, r3.Unit(r3.Add(coords[v0], coords[v1])))
			midpoints[ek] = len(coords) - 1
			return len(coords) - 1
		}
		for _, tri := range tris {
			a, b, c := tri[0], tri[1], tri[2]
			ab, bc, ca := mid(a, b), mid(b, c), mid(c, a)
			newTris = append(newTris,
				[3]int{a, ab, ca},
				[3]int{b, bc, ab},
				[3]int{c, ca, bc},
				[3]int{ab, bc, ca},
			)
		}
		tris = newTris
	}
	for i := range coords {
		coords[i] = r3.Scale(radius, coords[i])
	}
	return NewSurface(coords, tris, types.STRUCTURE_INVALID)
}
