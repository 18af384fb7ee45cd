package xfm

import (
	"bytes"
	"errors"
	"math"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/goresample/utils"
	"github.com/notargets/goresample/volume"
)

func translate(x, y, z float64) *mat.Dense {
	return mat.NewDense(4, 4, []float64{
		1, 0, 0, x,
		0, 1, 0, y,
		0, 0, 1, z,
		0, 0, 0, 1,
	})
}

func scale(s float64) *mat.Dense {
	return mat.NewDense(4, 4, []float64{
		s, 0, 0, 0,
		0, s, 0, 0,
		0, 0, s, 0,
		0, 0, 0, 1,
	})
}

// shiftField is a 5x5x5 field centered on the origin displacing by d.
func shiftField(t *testing.T, d r3.Vec, numMaps, numComponents int) *volume.Volume {
	vs, err := volume.NewOrthogonalSpace([3]int{5, 5, 5}, r3.Vec{X: 1, Y: 1, Z: 1}, r3.Vec{X: -2, Y: -2, Z: -2})
	require.NoError(t, err)
	field, err := volume.NewVolume(vs, numMaps, numComponents, volume.ANATOMY)
	require.NoError(t, err)
	nv := vs.NumVoxels()
	for f, val := range []float64{d.X, d.Y, d.Z} {
		if f >= field.NumFrames() {
			break
		}
		for n := 0; n < nv; n++ {
			field.Data[f*nv+n] = val
		}
	}
	return field
}

func mustAffine(t *testing.T, M mat.Matrix) Xfm {
	x, err := NewAffine(M)
	require.NoError(t, err)
	return x
}

func TestAffine(t *testing.T) {
	{ // Test stack order, translate then scale
		s := NewStack(mustAffine(t, translate(1, 0, 0)))
		s.Push(mustAffine(t, scale(2)))
		q, valid := s.Apply(r3.Vec{}, 0)
		assert.True(t, valid)
		assert.Equal(t, r3.Vec{X: 2}, q)
	}
	{ // Test malformed affines
		bad := translate(1, 2, 3)
		bad.Set(3, 3, 2)
		_, err := NewAffine(bad)
		assert.True(t, errors.Is(err, utils.ErrDimension))
		_, err = NewAffine(mat.NewDense(3, 4, nil))
		assert.True(t, errors.Is(err, utils.ErrDimension))
		_, err = NewAffineSeries([]mat.Matrix{translate(1, 0, 0), bad})
		assert.True(t, errors.Is(err, utils.ErrDimension))
		_, err = NewAffineSeries(nil)
		assert.True(t, errors.Is(err, utils.ErrInvalidInput))
		_, err = NewAffine(translate(math.NaN(), 0, 0))
		assert.True(t, errors.Is(err, utils.ErrInvalidInput))
	}
	{ // Test affine series frames
		x, err := NewAffineSeries([]mat.Matrix{translate(1, 0, 0), translate(0, 1, 0)})
		require.NoError(t, err)
		assert.Equal(t, 2, x.Frames())
		q, valid := x.Apply(r3.Vec{}, 1)
		assert.True(t, valid)
		assert.Equal(t, r3.Vec{Y: 1}, q)
		assert.Panics(t, func() { x.Apply(r3.Vec{}, 2) })
		inv, err := x.Inverse()
		require.NoError(t, err)
		q, _ = inv.Apply(r3.Vec{X: 1}, 0)
		assert.InDelta(t, 0, r3.Norm(q), 1e-12)
	}
	{ // Test singular affines cannot be inverted
		_, err := mustAffine(t, scale(0)).Inverse()
		assert.True(t, errors.Is(err, utils.ErrInvalidInput))
	}
}

func TestWarpfield(t *testing.T) {
	{ // Test displacement and validity
		x, err := NewWarpfield(shiftField(t, r3.Vec{X: 1, Y: -0.5}, 3, 1))
		require.NoError(t, err)
		q, valid := x.Apply(r3.Vec{}, 0)
		assert.True(t, valid)
		assert.InDelta(t, 0, r3.Norm(r3.Sub(q, r3.Vec{X: 1, Y: -0.5})), 1e-12)
		_, valid = x.Apply(r3.Vec{X: 1000}, 0)
		assert.False(t, valid)
	}
	{ // Test components count as subvolumes
		x, err := NewWarpfield(shiftField(t, r3.Vec{Z: 2}, 1, 3))
		require.NoError(t, err)
		q, valid := x.Apply(r3.Vec{X: 0.5}, 0)
		assert.True(t, valid)
		assert.InDelta(t, 0, r3.Norm(r3.Sub(q, r3.Vec{X: 0.5, Z: 2})), 1e-12)
	}
	{ // Test subvolume count
		_, err := NewWarpfield(shiftField(t, r3.Vec{}, 2, 1))
		assert.True(t, errors.Is(err, utils.ErrDimension))
		_, err = NewWarpfield(nil)
		assert.True(t, errors.Is(err, utils.ErrDimension))
		x, err := NewWarpfield(shiftField(t, r3.Vec{}, 3, 1))
		require.NoError(t, err)
		_, err = x.Inverse()
		assert.True(t, errors.Is(err, utils.ErrInvalidInput))
	}
}

func TestStack(t *testing.T) {
	var buf bytes.Buffer
	utils.SetLogOutput(&buf)
	defer utils.SetLogOutput(os.Stdout)
	warp, err := NewWarpfield(shiftField(t, r3.Vec{X: 1}, 3, 1))
	require.NoError(t, err)
	{ // Test every stage runs and any invalid stage invalidates
		s := NewStack(mustAffine(t, translate(1000, 0, 0)), warp, mustAffine(t, translate(-1000, 0, 0)))
		q, valid := s.Apply(r3.Vec{}, 0)
		assert.False(t, valid)
		assert.Equal(t, r3.Vec{}, q)
		_, valid = s.Apply(r3.Vec{Y: 1}, 0)
		assert.False(t, valid)
		assert.Equal(t, 1, strings.Count(buf.String(), "WARNING"))
		// a separate stack warns on its own
		NewStack(warp).Apply(r3.Vec{Z: 500}, 0)
		assert.Equal(t, 2, strings.Count(buf.String(), "WARNING"))
	}
	{ // Test inversion for resampling reverses and keeps warpfields
		s := NewStack(mustAffine(t, translate(1, 0, 0)), mustAffine(t, scale(2)), warp)
		inv, err := s.InvertForResampling()
		require.NoError(t, err)
		require.Equal(t, 3, inv.Len())
		assert.Equal(t, WARPFIELD, inv.Stage(0).Type)
		// warp (+1,0,0) first, then undo the scale, then the translation
		q, valid := inv.Apply(r3.Vec{X: 1}, 0)
		assert.True(t, valid)
		assert.InDelta(t, 0, r3.Norm(q), 1e-12)
		_, err = s.Xfm().Inverse()
		assert.True(t, errors.Is(err, utils.ErrInvalidInput))
	}
	{ // Test nested stacks
		inner := NewStack(mustAffine(t, translate(1, 0, 0)), mustAffine(t, scale(2)))
		outer := NewStack(inner.Xfm(), mustAffine(t, translate(0, 3, 0)))
		q, valid := outer.Apply(r3.Vec{}, 0)
		assert.True(t, valid)
		assert.Equal(t, r3.Vec{X: 2, Y: 3}, q)
		inv, err := outer.Xfm().Inverse()
		require.NoError(t, err)
		q, _ = inv.Apply(r3.Vec{X: 2, Y: 3}, 0)
		assert.InDelta(t, 0, r3.Norm(q), 1e-12)
		series, err := NewAffineSeries([]mat.Matrix{scale(1), scale(1), scale(1)})
		require.NoError(t, err)
		assert.Equal(t, 3, NewStack(outer.Xfm(), series).Frames())
		assert.Equal(t, "STACK", outer.Xfm().Type.String())
	}
}
