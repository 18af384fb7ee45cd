package mesh

import (
	"gonum.org/v1/gonum/floats"

	"github.com/notargets/goresample/geometry"
)

// VertexAreas assigns a third of each triangle's area to each of its vertices
func VertexAreas(s SurfaceProvider) (areas []float64) {
	var (
		nt = s.NumberOfTriangles()
	)
	areas = make([]float64, s.NumberOfVertices())
	for k := 0; k < nt; k++ {
		tri := s.Triangle(k)
		area3 := geometry.TriangleArea(s.Coordinate(tri[0]), s.Coordinate(tri[1]), s.Coordinate(tri[2])) / 3
		areas[tri[0]] += area3
		areas[tri[1]] += area3
		areas[tri[2]] += area3
	}
	return
}

func TotalArea(s SurfaceProvider) float64 {
	return floats.Sum(VertexAreas(s))
}
