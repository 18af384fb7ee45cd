package algorithms

import (
	"bytes"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/goresample/mesh"
	"github.com/notargets/goresample/resample"
	"github.com/notargets/goresample/types"
	"github.com/notargets/goresample/utils"
)

// Level n icosphere vertices are the leading vertices of level n+1, so
// resampling from level 3 to level 2 lands every new vertex on an old one.
func spheres(t *testing.T) (cur, next *mesh.Surface) {
	var err error
	cur, err = mesh.NewIcosphere(3, 100)
	require.NoError(t, err)
	next, err = mesh.NewIcosphere(2, 100)
	require.NoError(t, err)
	return
}

func TestSurfaceResample(t *testing.T) {
	cur, next := spheres(t)
	coords := make([]r3.Vec, cur.NumberOfVertices())
	for i := range coords {
		coords[i] = r3.Scale(0.5, cur.Coordinate(i))
	}
	surf, err := cur.WithCoordinates(coords)
	require.NoError(t, err)
	surf.StructureTag = types.STRUCTURE_CORTEX_LEFT
	{ // Test coordinates follow the new topology
		R, err := SurfaceResample(surf, cur, next, SurfaceOptions{Method: resample.BARYCENTRIC})
		require.NoError(t, err)
		assert.Equal(t, next.NumberOfVertices(), R.NumberOfVertices())
		assert.Equal(t, next.Triangles, R.Triangles)
		assert.Equal(t, types.STRUCTURE_CORTEX_LEFT, R.Structure())
		for i := 0; i < R.NumberOfVertices(); i++ {
			assert.InDelta(t, 0, r3.Norm(r3.Sub(R.Coordinate(i), r3.Scale(0.5, next.Coordinate(i)))), 1e-6)
		}
	}
	{ // Test vertex count mismatch
		_, err := SurfaceResample(next, cur, next, SurfaceOptions{Method: resample.BARYCENTRIC})
		assert.True(t, errors.Is(err, utils.ErrInvalidInput))
	}
}

func TestCutSurfaceResample(t *testing.T) {
	var buf bytes.Buffer
	utils.SetLogOutput(&buf)
	defer utils.SetLogOutput(os.Stdout)
	cur, next := spheres(t)
	// cut away the southern cap
	var tris [][3]int
	for k, tri := range cur.Triangles {
		if tc := cur.TriangleCoords(k); tc[0].Z+tc[1].Z+tc[2].Z > -180 {
			tris = append(tris, tri)
		}
	}
	cut, err := mesh.NewSurface(cur.Coords, tris, types.STRUCTURE_CORTEX_RIGHT)
	require.NoError(t, err)
	R, err := CutSurfaceResample(cut, cur, next)
	require.NoError(t, err)
	assert.Equal(t, types.STRUCTURE_CORTEX_RIGHT, R.Structure())
	assert.Less(t, R.NumberOfTriangles(), next.NumberOfTriangles())
	assert.Less(t, mesh.TotalArea(R), mesh.TotalArea(next))
	assert.Contains(t, buf.String(), "vertices disconnected")
	_, err = CutSurfaceResample(next, cur, next)
	assert.True(t, errors.Is(err, utils.ErrInvalidInput))
}

func TestMetricResample(t *testing.T) {
	var buf bytes.Buffer
	utils.SetLogOutput(&buf)
	defer utils.SetLogOutput(os.Stdout)
	cur, next := spheres(t)
	m := types.NewMetric(cur.NumberOfVertices(), 2)
	m.ColumnNames = []string{"z", "constant"}
	for i := 0; i < cur.NumberOfVertices(); i++ {
		m.Columns[0][i] = cur.Coordinate(i).Z
		m.Columns[1][i] = 3
	}
	{ // Test barycentric and largest weight reproduce coincident vertices
		for _, largest := range []bool{false, true} {
			R, roi, err := MetricResample(m, cur, next, SurfaceOptions{Method: resample.BARYCENTRIC, Largest: largest})
			require.NoError(t, err)
			assert.Equal(t, m.ColumnNames, R.ColumnNames)
			for i := 0; i < next.NumberOfVertices(); i++ {
				assert.InDelta(t, next.Coordinate(i).Z, R.Columns[0][i], 1e-6)
				assert.InDelta(t, 3, R.Columns[1][i], 1e-9)
				assert.Equal(t, 1., roi[i])
			}
		}
	}
	{ // Test adaptive area falls back on the spheres for areas
		R, _, err := MetricResample(m, cur, next, SurfaceOptions{Method: resample.ADAP_BARY_AREA})
		require.NoError(t, err)
		assert.Contains(t, buf.String(), "using the spheres as area surfaces")
		for i := 0; i < next.NumberOfVertices(); i++ {
			assert.InDelta(t, 3, R.Columns[1][i], 1e-9)
		}
	}
	{ // Test explicit area values
		R, _, err := MetricResample(m, cur, next, SurfaceOptions{
			Method:       resample.ADAP_BARY_AREA,
			CurrentAreas: mesh.VertexAreas(cur),
			NewAreas:     mesh.VertexAreas(next),
		})
		require.NoError(t, err)
		assert.InDelta(t, 3, R.Columns[1][0], 1e-9)
	}
	{ // Test input validation
		_, _, err := MetricResample(m, next, cur, SurfaceOptions{Method: resample.BARYCENTRIC})
		assert.True(t, errors.Is(err, utils.ErrInvalidInput))
		_, _, err = MetricResample(m, cur, next, SurfaceOptions{Method: resample.BARYCENTRIC, CurrentROI: []float64{1}})
		assert.True(t, errors.Is(err, utils.ErrInvalidInput))
		ragged := &types.Metric{Columns: [][]float64{make([]float64, 642), make([]float64, 3)}}
		_, _, err = MetricResample(ragged, cur, next, SurfaceOptions{Method: resample.BARYCENTRIC})
		assert.True(t, errors.Is(err, utils.ErrDimension))
	}
}

func TestLabelResample(t *testing.T) {
	cur, next := spheres(t)
	table := types.NewLabelTable()
	table.Insert(1, "north")
	table.Insert(2, "south")
	l := types.NewLabelColumns(cur.NumberOfVertices(), 1, table)
	l.ColumnNames[0] = "hemispheres"
	for i := 0; i < cur.NumberOfVertices(); i++ {
		l.Columns[0][i] = 2
		if cur.Coordinate(i).Z > 0 {
			l.Columns[0][i] = 1
		}
	}
	for _, largest := range []bool{false, true} {
		R, roi, err := LabelResample(l, cur, next, SurfaceOptions{Method: resample.BARYCENTRIC, Largest: largest})
		require.NoError(t, err)
		assert.Equal(t, "hemispheres", R.ColumnNames[0])
		name, ok := R.Table.Name(1)
		assert.True(t, ok)
		assert.Equal(t, "north", name)
		for i := 0; i < next.NumberOfVertices(); i++ {
			want := int32(2)
			if next.Coordinate(i).Z > 0 {
				want = 1
			}
			assert.Equal(t, want, R.Columns[0][i])
			assert.Equal(t, 1., roi[i])
		}
	}
	{ // Test vertices without weights get the unassigned key
		roi := make([]float64, cur.NumberOfVertices())
		for i := range roi {
			if cur.Coordinate(i).Z > 0 {
				roi[i] = 1
			}
		}
		table.SetUnassigned(-1)
		R, valid, err := LabelResample(l, cur, next, SurfaceOptions{Method: resample.BARYCENTRIC, CurrentROI: roi})
		require.NoError(t, err)
		for i := 0; i < next.NumberOfVertices(); i++ {
			if next.Coordinate(i).Z < -20 {
				assert.Equal(t, int32(-1), R.Columns[0][i])
				assert.Equal(t, 0., valid[i])
			}
		}
	}
}
