package InputParameters

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/goresample/resample"
	"github.com/notargets/goresample/utils"
	"github.com/notargets/goresample/volume"
)

var metricJob = []byte(`
Title: "thickness to 32k"
Kind: Metric
Method: ADAP_BARY_AREA
Input: thickness.yaml
Output: ~/out/thickness.32k.yaml
CurrentSphere: sphere.164k.yaml
NewSphere: sphere.32k.yaml
CurrentAreaMetric: area.164k.yaml
NewAreaMetric: area.32k.yaml
Largest: true
`)

func TestResampleJob(t *testing.T) {
	{ // Test parsing a surface job
		var rj ResampleJob
		require.NoError(t, rj.Parse(metricJob))
		assert.Equal(t, MetricJob, rj.Kind)
		assert.True(t, rj.Kind.IsSurface())
		assert.True(t, rj.Largest)
		assert.Equal(t, "area.32k.yaml", rj.NewAreaMetric)
		assert.False(t, strings.HasPrefix(rj.Output, "~"))
		assert.True(t, strings.HasSuffix(rj.Output, "out/thickness.32k.yaml"))
		method, err := rj.SurfaceMethod()
		require.NoError(t, err)
		assert.Equal(t, resample.ADAP_BARY_AREA, method)
		assert.NoError(t, rj.Validate())
		rj.CurrentArea, rj.NewArea = "a", "b"
		assert.True(t, errors.Is(rj.Validate(), utils.ErrInvalidInput))
		rj.CurrentArea, rj.NewArea, rj.NewAreaMetric = "", "", ""
		assert.True(t, errors.Is(rj.Validate(), utils.ErrInvalidInput))
	}
	{ // Test volume job defaults and transforms
		var rj ResampleJob
		require.NoError(t, rj.Parse([]byte(`
Kind: volume-label
Input: aparc.yaml
Output: aparc.mni.yaml
Reference: mni.yaml
Transforms:
- Type: affine
  File: t1_to_mni.txt
- Type: warpfield
  File: warp.yaml
`)))
		assert.Len(t, rj.Transforms, 2)
		assert.Equal(t, "warpfield", rj.Transforms[1].Type)
		it, err := rj.InterpMethod()
		require.NoError(t, err)
		assert.Equal(t, volume.TRILINEAR, it)
		assert.NoError(t, rj.Validate())
		rj.Kind = VolumeJob
		it, _ = rj.InterpMethod()
		assert.Equal(t, volume.CUBIC, it)
		rj.Transforms[0].Type = "flirt"
		assert.True(t, errors.Is(rj.Validate(), utils.ErrInvalidInput))
	}
	{ // Test parcel jobs
		var rj ResampleJob
		require.NoError(t, rj.Parse([]byte("Kind: volume-parcel\nInput: a\nOutput: b\nCurrentParcels: c\nNewParcels: d\nKernel: 2\n")))
		assert.Equal(t, -1, rj.SubvolumeIndex())
		assert.NoError(t, rj.Validate())
		rj.Kernel = 0
		assert.True(t, errors.Is(rj.Validate(), utils.ErrInvalidInput))
		require.NoError(t, rj.Parse([]byte("Subvolume: 0\n")))
		assert.Equal(t, 0, rj.SubvolumeIndex())
	}
	{ // Test weight files and cut surface jobs
		var rj ResampleJob
		require.NoError(t, rj.Parse(metricJob))
		rj.WeightsIn, rj.WeightsOut = "in.yaml", "out.yaml"
		assert.True(t, errors.Is(rj.Validate(), utils.ErrInvalidInput))
		rj.WeightsIn = ""
		assert.NoError(t, rj.Validate())
		var cut ResampleJob
		require.NoError(t, cut.Parse([]byte("Kind: Cut-Surface\nInput: a\nOutput: b\nCurrentSphere: c\nNewSphere: d\n")))
		assert.Equal(t, CutSurfaceJob, cut.Kind)
		assert.True(t, cut.Kind.IsSurface())
		assert.NoError(t, cut.Validate())
		cut.NewSphere = ""
		assert.True(t, errors.Is(cut.Validate(), utils.ErrInvalidInput))
	}
	{ // Test unknown kinds and methods
		var rj ResampleJob
		require.NoError(t, rj.Parse([]byte("Kind: mesh\n")))
		assert.True(t, errors.Is(rj.Validate(), utils.ErrInvalidInput))
		require.NoError(t, rj.Parse(metricJob))
		rj.Method = "nearest"
		assert.True(t, errors.Is(rj.Validate(), utils.ErrInvalidInput))
	}
}
