package resample

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/goresample/mesh"
	"github.com/notargets/goresample/utils"
)

func icosphere(t *testing.T, level int, radius float64) *mesh.Surface {
	s, err := mesh.NewIcosphere(level, radius)
	require.NoError(t, err)
	return s
}

func rowSum(h *Helper, i int) (sum float64) {
	for _, we := range h.Weights(i) {
		sum += we.Weight
	}
	return
}

func TestMethod(t *testing.T) {
	m, err := NewMethod("ADAP_BARY_AREA")
	assert.NoError(t, err)
	assert.Equal(t, ADAP_BARY_AREA, m)
	assert.True(t, m.NeedsAreas())
	m, err = NewMethod(" barycentric")
	assert.NoError(t, err)
	assert.Equal(t, BARYCENTRIC, m)
	assert.False(t, m.NeedsAreas())
	assert.Equal(t, "BARYCENTRIC", m.String())
	_, err = NewMethod("CUBIC")
	assert.True(t, errors.Is(err, utils.ErrInvalidInput))
	assert.Equal(t, "Method(9)", Method(9).String())
}

func TestHelperConstruction(t *testing.T) {
	var (
		cur = icosphere(t, 3, 100)
		nw  = icosphere(t, 2, 55)
	)
	{ // Test non spherical input is rejected
		cube := mesh.NewCubeSurface(50, 3)
		_, err := NewHelper(BARYCENTRIC, cube, nw)
		assert.True(t, errors.Is(err, utils.ErrInvalidInput))
		_, err = NewHelper(BARYCENTRIC, cur, cube)
		assert.True(t, errors.Is(err, utils.ErrInvalidInput))
		// unless explicitly allowed
		h, err := NewHelper(BARYCENTRIC, cube, cube, WithNonSphere())
		require.NoError(t, err)
		assert.Equal(t, cube.NumberOfVertices(), h.NumTargetVertices())
	}
	{ // Test spheres of different resolutions and radii
		h, err := NewHelper(BARYCENTRIC, cur, nw)
		require.NoError(t, err)
		assert.Equal(t, BARYCENTRIC, h.Method())
		assert.Equal(t, 642, h.NumSourceVertices())
		assert.Equal(t, 162, h.NumTargetVertices())
	}
	{ // Test area requirements
		_, err := NewHelper(ADAP_BARY_AREA, cur, nw)
		assert.True(t, errors.Is(err, utils.ErrInvalidInput))
		_, err = NewHelper(ADAP_BARY_AREA, cur, nw, WithAreaSurfaces(nw, nw))
		assert.True(t, errors.Is(err, utils.ErrInvalidInput))
		_, err = NewHelper(ADAP_BARY_AREA, cur, nw, WithAreaSurfaces(cur, nil))
		assert.True(t, errors.Is(err, utils.ErrInvalidInput))
		_, err = NewHelper(ADAP_BARY_AREA, cur, nw, WithAreaValues(make([]float64, 642), make([]float64, 12)))
		assert.True(t, errors.Is(err, utils.ErrInvalidInput))
		_, err = NewHelper(BARYCENTRIC, cur, nw, WithCurrentROI(make([]float64, 10)))
		assert.True(t, errors.Is(err, utils.ErrInvalidInput))
		_, err = NewHelper(Method(7), cur, nw)
		assert.True(t, errors.Is(err, utils.ErrInvalidInput))
		h, err := NewHelper(ADAP_BARY_AREA, cur, nw, WithAreaValues(mesh.VertexAreas(cur), mesh.VertexAreas(nw)))
		require.NoError(t, err)
		assert.Equal(t, ADAP_BARY_AREA, h.Method())
	}
}

func TestWeightNormalization(t *testing.T) {
	var (
		cur     = icosphere(t, 4, 100)
		nw      = icosphere(t, 3, 100)
		distort = func(p r3.Vec) r3.Vec {
			return r3.Vec{X: p.X * (1 + 0.3*p.Z/100), Y: p.Y, Z: 0.8 * p.Z}
		}
		curArea = mesh.Distort(cur, distort)
		newArea = mesh.Distort(nw, distort)
	)
	for _, pair := range [][2]*mesh.Surface{{cur, nw}, {nw, cur}} {
		hb, err := NewHelper(BARYCENTRIC, pair[0], pair[1])
		require.NoError(t, err)
		for i := 0; i < hb.NumTargetVertices(); i++ {
			assert.True(t, len(hb.Weights(i)) >= 1 && len(hb.Weights(i)) <= 3)
			assert.InDelta(t, 1, rowSum(hb, i), 1e-5)
		}
	}
	{ // Test ADAP_BARY_AREA rows sum to one and integrals are conserved
		h, err := NewHelper(ADAP_BARY_AREA, cur, nw, WithAreaSurfaces(curArea, newArea))
		require.NoError(t, err)
		for i := 0; i < h.NumTargetVertices(); i++ {
			assert.InDelta(t, 1, rowSum(h, i), 1e-5)
			for _, we := range h.Weights(i) {
				assert.True(t, we.Weight > 0)
			}
		}
		var (
			ca    = mesh.VertexAreas(curArea)
			na    = mesh.VertexAreas(newArea)
			field = make([]float64, cur.NumberOfVertices())
			out   = make([]float64, nw.NumberOfVertices())
		)
		for j, p := range cur.Coords {
			field[j] = math.Sin(p.X/30) + p.Z/100 + 2
		}
		require.NoError(t, h.ResampleNormal(field, out, 0))
		var i0, i1 float64
		for j := range field {
			i0 += ca[j] * field[j]
		}
		for i := range out {
			i1 += na[i] * out[i]
		}
		assert.InEpsilon(t, 1, i1/i0, 0.01)
	}
}

func TestIdentityResampling(t *testing.T) {
	var (
		s    = icosphere(t, 3, 1)
		twin = mesh.Distort(s, func(p r3.Vec) r3.Vec { return p })
	)
	h, err := NewHelper(BARYCENTRIC, s, twin)
	require.NoError(t, err)
	for i := 0; i < h.NumTargetVertices(); i++ {
		assert.Equal(t, []WeightElem{{i, 1}}, h.Weights(i))
	}
	var (
		n      = s.NumberOfVertices()
		input  = make([]float64, n)
		output = make([]float64, n)
		coords = make([]r3.Vec, n)
	)
	for i := range input {
		input[i] = math.Cos(float64(i)) * 17
	}
	require.NoError(t, h.ResampleNormal(input, output, -1))
	assert.Equal(t, input, output)
	require.NoError(t, h.Resample3DCoord(s.Coords, coords))
	assert.Equal(t, s.Coords, coords)
}

func TestAreaConservation(t *testing.T) {
	var (
		cur = icosphere(t, 5, 100)
		nw  = icosphere(t, 3, 100)
		c   = 3.25
	)
	require.Equal(t, 10242, cur.NumberOfVertices())
	require.Equal(t, 642, nw.NumberOfVertices())
	h, err := NewHelper(ADAP_BARY_AREA, cur, nw, WithAreaSurfaces(cur, nw))
	require.NoError(t, err)
	var (
		input  = make([]float64, cur.NumberOfVertices())
		output = make([]float64, nw.NumberOfVertices())
		ca     = mesh.VertexAreas(cur)
		na     = mesh.VertexAreas(nw)
	)
	for i := range input {
		input[i] = c
	}
	require.NoError(t, h.ResampleNormal(input, output, 0))
	var before, after float64
	for j := range input {
		before += ca[j] * input[j]
	}
	for i := range output {
		after += na[i] * output[i]
		assert.InDelta(t, c, output[i], 1e-9)
	}
	assert.InEpsilon(t, before, after, 0.01)
}

func TestApplication(t *testing.T) {
	{ // Test largest weight selection
		h, err := FromWeightLists(2, [][]WeightElem{{{0, 0.7}, {1, 0.3}}, {}})
		require.NoError(t, err)
		var (
			out  = make([]float64, 2)
			iout = make([]int32, 2)
		)
		require.NoError(t, h.ResampleLargest([]float64{10, 20}, out, -1))
		assert.Equal(t, []float64{10, -1}, out)
		require.NoError(t, h.ResampleNormal([]float64{10, 20}, out, -1))
		assert.InDelta(t, 13, out[0], 1e-12)
		assert.Equal(t, -1., out[1])
		require.NoError(t, h.ResampleLargestInt([]int32{4, 5}, iout, -9))
		assert.Equal(t, []int32{4, -9}, iout)
		roi := make([]float64, 2)
		require.NoError(t, h.ValidROI(roi))
		assert.Equal(t, []float64{1, 0}, roi)
	}
	{ // Test popular label vote and its tie break
		h, err := FromWeightLists(4, [][]WeightElem{
			{{0, 0.4}, {1, 0.3}, {2, 0.3}},
			{{0, 0.5}, {3, 0.5}},
			{},
		})
		require.NoError(t, err)
		out := make([]int32, 3)
		require.NoError(t, h.ResamplePopular([]int32{1, 2, 2, 3}, out, 0))
		assert.Equal(t, int32(2), out[0])
		assert.Equal(t, int32(1), out[1])
		assert.Equal(t, int32(0), out[2])
		require.NoError(t, h.ResamplePopular([]int32{7, 2, 2, 3}, out, -1))
		assert.Equal(t, int32(3), out[1])
		assert.Equal(t, int32(-1), out[2])
	}
	{ // Test size checks
		h, err := FromWeightLists(2, [][]WeightElem{{{0, 1}}})
		require.NoError(t, err)
		err = h.ResampleNormal([]float64{1}, make([]float64, 1), 0)
		assert.True(t, errors.Is(err, utils.ErrDimension))
		err = h.ResamplePopular([]int32{1, 2}, make([]int32, 3), 0)
		assert.True(t, errors.Is(err, utils.ErrDimension))
		assert.True(t, errors.Is(h.ValidROI(nil), utils.ErrDimension))
		_, err = FromWeightLists(2, [][]WeightElem{{{2, 1}}})
		assert.True(t, errors.Is(err, utils.ErrInvalidInput))
	}
}

func TestCurrentROI(t *testing.T) {
	var (
		cur = icosphere(t, 4, 100)
		nw  = icosphere(t, 3, 100)
		roi = make([]float64, cur.NumberOfVertices())
	)
	for i, p := range cur.Coords {
		if p.Z > 0 {
			roi[i] = 1
		}
	}
	for _, method := range []Method{BARYCENTRIC, ADAP_BARY_AREA} {
		h, err := NewHelper(method, cur, nw, WithCurrentROI(roi), WithAreaSurfaces(cur, nw))
		require.NoError(t, err)
		valid := make([]float64, nw.NumberOfVertices())
		require.NoError(t, h.ValidROI(valid))
		for i, p := range nw.Coords {
			for _, we := range h.Weights(i) {
				assert.Equal(t, 1., roi[we.Node])
			}
			switch {
			case p.Z > 20:
				assert.Equal(t, 1., valid[i])
				assert.InDelta(t, 1, rowSum(h, i), 1e-5)
			case p.Z < -20:
				assert.Equal(t, 0., valid[i])
			}
		}
	}
}

func TestMatrixExport(t *testing.T) {
	var (
		cur = icosphere(t, 3, 100)
		nw  = icosphere(t, 2, 100)
	)
	h, err := NewHelper(BARYCENTRIC, cur, nw)
	require.NoError(t, err)
	M := h.Matrix()
	nr, nc := M.Dims()
	assert.Equal(t, nw.NumberOfVertices(), nr)
	assert.Equal(t, cur.NumberOfVertices(), nc)
	assert.Equal(t, h.NumWeights(), M.NNZ())
	var (
		input  = make([]float64, nc)
		output = make([]float64, nr)
	)
	for j, p := range cur.Coords {
		input[j] = p.X + 2*p.Y
	}
	require.NoError(t, h.ResampleNormal(input, output, 0))
	assert.InDeltaSlice(t, output, M.MulVec(input), 1e-9)
}

func TestFromMatrix(t *testing.T) {
	var (
		cur = icosphere(t, 2, 100)
		nw  = icosphere(t, 1, 100)
	)
	h, err := NewHelper(BARYCENTRIC, cur, nw)
	require.NoError(t, err)
	R, err := FromMatrix(h.Matrix())
	require.NoError(t, err)
	assert.Equal(t, h.NumSourceVertices(), R.NumSourceVertices())
	assert.Equal(t, h.NumTargetVertices(), R.NumTargetVertices())
	for i := 0; i < h.NumTargetVertices(); i++ {
		assert.Equal(t, h.Weights(i), R.Weights(i))
	}
}

// capCut removes the triangles of s whose centroid lies above height z.
func capCut(t *testing.T, s *mesh.Surface, z float64) *mesh.Surface {
	var tris [][3]int
	for k, tri := range s.Triangles {
		tc := s.TriangleCoords(k)
		if (tc[0].Z+tc[1].Z+tc[2].Z)/3 <= z {
			tris = append(tris, tri)
		}
	}
	cut, err := mesh.NewSurface(s.Coords, tris, s.StructureTag)
	require.NoError(t, err)
	return cut
}

func TestResampleCutSurface(t *testing.T) {
	var (
		cur = icosphere(t, 3, 100)
		nw  = icosphere(t, 2, 100)
		cut = capCut(t, cur, 60)
	)
	R, err := ResampleCutSurface(cut, cur, nw)
	require.NoError(t, err)
	require.Equal(t, nw.NumberOfVertices(), R.NumberOfVertices())
	assert.Less(t, R.NumberOfTriangles(), nw.NumberOfTriangles())
	{ // Test the vertex under the cap is disconnected
		top := 0
		for i, c := range nw.Coords {
			if c.Z > nw.Coords[top].Z {
				top = i
			}
		}
		assert.Equal(t, r3.Vec{}, R.Coordinate(top))
		for _, tri := range R.Triangles {
			assert.NotContains(t, tri, top)
		}
	}
	{ // Test the far hemisphere is untouched
		kept := make(map[[3]int]bool, R.NumberOfTriangles())
		for _, tri := range R.Triangles {
			kept[tri] = true
		}
		for k, tri := range nw.Triangles {
			tc := nw.TriangleCoords(k)
			if tc[0].Z < 0 && tc[1].Z < 0 && tc[2].Z < 0 {
				assert.True(t, kept[tri])
			}
		}
		for i, c := range nw.Coords {
			if c.Z < 0 {
				assert.InDelta(t, 0, r3.Norm(r3.Sub(c, R.Coordinate(i))), 1e-6)
			}
		}
	}
	{ // Test a closed surface loses nothing
		R, err := ResampleCutSurface(cur, cur, nw)
		require.NoError(t, err)
		assert.Equal(t, nw.NumberOfTriangles(), R.NumberOfTriangles())
	}
	{ // Test precondition errors
		_, err := ResampleCutSurface(nw, cur, nw)
		assert.True(t, errors.Is(err, utils.ErrInvalidInput))
		_, err = ResampleCutSurface(capCut(t, cur, -200), cur, nw)
		assert.True(t, errors.Is(err, utils.ErrInvalidInput))
	}
}
