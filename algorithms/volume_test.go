package algorithms

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/goresample/utils"
	"github.com/notargets/goresample/volume"
	"github.com/notargets/goresample/xfm"
)

func cubeSpace(t *testing.T, n int) volume.VolumeSpace {
	vs, err := volume.NewOrthogonalSpace([3]int{n, n, n}, r3.Vec{X: 1, Y: 1, Z: 1}, r3.Vec{})
	require.NoError(t, err)
	return vs
}

func newFilled(t *testing.T, vs volume.VolumeSpace, numMaps int, vt volume.VolumeType, f func(i, j, k, m int) float64) *volume.Volume {
	v, err := volume.NewVolume(vs, numMaps, 1, vt)
	require.NoError(t, err)
	for m := 0; m < numMaps; m++ {
		for k := 0; k < vs.Dims[2]; k++ {
			for j := 0; j < vs.Dims[1]; j++ {
				for i := 0; i < vs.Dims[0]; i++ {
					v.SetValue(f(i, j, k, m), i, j, k, m, 0)
				}
			}
		}
	}
	return v
}

func translation(t *testing.T, x, y, z float64) xfm.Xfm {
	xf, err := xfm.NewAffine(mat.NewDense(4, 4, []float64{
		1, 0, 0, x,
		0, 1, 0, y,
		0, 0, 1, z,
		0, 0, 0, 1,
	}))
	require.NoError(t, err)
	return xf
}

func TestVolumeResample(t *testing.T) {
	vs := cubeSpace(t, 10)
	in := newFilled(t, vs, 2, volume.ANATOMY, func(i, j, k, m int) float64 { return float64(i + 10*m) })
	{ // Test identity reproduces the input
		for _, method := range []volume.InterpType{volume.TRILINEAR, volume.CUBIC, volume.ENCLOSING_VOXEL} {
			R, err := VolumeResample(in, nil, vs, method, -1)
			require.NoError(t, err)
			for n := range in.Data {
				assert.InDelta(t, in.Data[n], R.Data[n], 1e-9)
			}
		}
	}
	{ // Test a translation moves the data and exposes background
		R, err := VolumeResample(in, xfm.NewStack(translation(t, 2, 0, 0)), vs, volume.TRILINEAR, -1)
		require.NoError(t, err)
		for i := 0; i < 10; i++ {
			want := float64(i - 2 + 10)
			if i < 2 {
				want = -1
			}
			assert.InDelta(t, want, R.Value(i, 3, 4, 1, 0), 1e-9)
		}
	}
	{ // Test resampling onto a coarser grid
		coarse, err := volume.NewOrthogonalSpace([3]int{5, 5, 5}, r3.Vec{X: 2, Y: 2, Z: 2}, r3.Vec{X: 0.5})
		require.NoError(t, err)
		R, err := VolumeResample(in, nil, coarse, volume.TRILINEAR, -1)
		require.NoError(t, err)
		assert.Equal(t, [5]int{5, 5, 5, 2, 1}, R.Dimensions())
		assert.InDelta(t, 4.5, R.Value(2, 0, 0, 0, 0), 1e-9)
	}
	{ // Test warpfield validity turns into background
		field := newFilled(t, cubeSpace(t, 3), 3, volume.ANATOMY, func(_, _, _, m int) float64 { return 0 })
		warp, err := xfm.NewWarpfield(field)
		require.NoError(t, err)
		R, err := VolumeResample(in, xfm.NewStack(warp), vs, volume.TRILINEAR, -1)
		require.NoError(t, err)
		assert.InDelta(t, 1., R.Value(1, 1, 1, 0, 0), 1e-9)
		assert.Equal(t, -1., R.Value(5, 5, 5, 0, 0))
	}
	{ // Test affine series needs a frame per map
		series, err := xfm.NewAffineSeries([]mat.Matrix{mat.NewDiagDense(4, []float64{1, 1, 1, 1})})
		require.NoError(t, err)
		_, err = VolumeResample(in, xfm.NewStack(series), vs, volume.TRILINEAR, -1)
		assert.True(t, errors.Is(err, utils.ErrInvalidInput))
	}
}

func TestVolumeLabelResample(t *testing.T) {
	vs := cubeSpace(t, 8)
	in := newFilled(t, vs, 1, volume.LABEL, func(i, _, _, _ int) float64 {
		if i < 4 {
			return 1
		}
		return 2
	})
	in.LabelTable(0).Insert(1, "left")
	in.LabelTable(0).Insert(2, "right")
	{ // Test identity keeps labels for every method
		for _, method := range []volume.InterpType{volume.TRILINEAR, volume.CUBIC, volume.ENCLOSING_VOXEL} {
			R, err := VolumeLabelResample(in, nil, vs, method, 0)
			require.NoError(t, err)
			assert.Equal(t, in.Data, R.Data)
			name, _ := R.LabelTable(0).Name(2)
			assert.Equal(t, "right", name)
		}
	}
	{ // Test a sub voxel shift picks the larger mask
		R, err := VolumeLabelResample(in, xfm.NewStack(translation(t, 0.4, 0, 0)), vs, volume.TRILINEAR, 0)
		require.NoError(t, err)
		assert.Equal(t, 0., R.Value(0, 2, 2, 0, 0))
		assert.Equal(t, 1., R.Value(3, 2, 2, 0, 0))
		// 3.6 is 0.4 of label 1 and 0.6 of label 2
		assert.Equal(t, 2., R.Value(4, 2, 2, 0, 0))
	}
	{ // Test smoothing keeps parcel interiors
		R, err := VolumeLabelResample(in, nil, vs, volume.TRILINEAR, 1)
		require.NoError(t, err)
		assert.Equal(t, 1., R.Value(1, 4, 4, 0, 0))
		assert.Equal(t, 2., R.Value(6, 4, 4, 0, 0))
	}
	{ // Test non label input
		anat := newFilled(t, vs, 1, volume.ANATOMY, func(_, _, _, _ int) float64 { return 1 })
		_, err := VolumeLabelResample(anat, nil, vs, volume.TRILINEAR, 0)
		assert.True(t, errors.Is(err, utils.ErrInvalidInput))
	}
}
