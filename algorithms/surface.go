package algorithms

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/goresample/mesh"
	"github.com/notargets/goresample/resample"
	"github.com/notargets/goresample/types"
	"github.com/notargets/goresample/utils"
)

// SurfaceOptions configure the surface kind resamplers. Area surfaces take
// precedence over area values when both are set.
type SurfaceOptions struct {
	Method                       resample.Method
	CurrentAreaSurf, NewAreaSurf mesh.SurfaceProvider
	CurrentAreas, NewAreas       []float64
	CurrentROI                   []float64
	Largest                      bool             // take the largest weight instead of averaging
	Weights                      *resample.Helper // precomputed, replaces the spheres and areas
}

// Helper returns the precomputed weights when set, otherwise it builds them
// from the spheres. numData is the vertex count of the data to resample.
func (so SurfaceOptions) Helper(numData int, curSphere, newSphere mesh.SurfaceProvider) (h *resample.Helper, err error) {
	if n := curSphere.NumberOfVertices(); numData != n {
		err = fmt.Errorf("%w: input data has %d vertices, current sphere has %d", utils.ErrInvalidInput, numData, n)
		return
	}
	if so.Weights != nil {
		if so.Weights.NumSourceVertices() != numData || so.Weights.NumTargetVertices() != newSphere.NumberOfVertices() {
			err = fmt.Errorf("%w: weights map %d onto %d vertices, spheres have %d and %d",
				utils.ErrInvalidInput, so.Weights.NumSourceVertices(), so.Weights.NumTargetVertices(),
				numData, newSphere.NumberOfVertices())
			return
		}
		return so.Weights, nil
	}
	var opts []resample.Option
	if so.Method.NeedsAreas() {
		switch {
		case so.CurrentAreaSurf != nil || so.NewAreaSurf != nil:
			opts = append(opts, resample.WithAreaSurfaces(so.CurrentAreaSurf, so.NewAreaSurf))
		case so.CurrentAreas != nil || so.NewAreas != nil:
			opts = append(opts, resample.WithAreaValues(so.CurrentAreas, so.NewAreas))
		default:
			utils.LogPrintf("no area surfaces given for %v, using the spheres as area surfaces\n", so.Method)
			opts = append(opts, resample.WithAreaSurfaces(curSphere, newSphere))
		}
	}
	if so.CurrentROI != nil {
		opts = append(opts, resample.WithCurrentROI(so.CurrentROI))
	}
	return resample.NewHelper(so.Method, curSphere, newSphere, opts...)
}

// SurfaceResample moves the coordinates of surf, which shares topology with
// curSphere, onto the topology of newSphere.
func SurfaceResample(surf, curSphere, newSphere mesh.SurfaceProvider, so SurfaceOptions) (R *mesh.Surface, err error) {
	var h *resample.Helper
	if h, err = so.Helper(surf.NumberOfVertices(), curSphere, newSphere); err != nil {
		return
	}
	var (
		in  = make([]r3.Vec, surf.NumberOfVertices())
		out = make([]r3.Vec, newSphere.NumberOfVertices())
	)
	for i := range in {
		in[i] = surf.Coordinate(i)
	}
	if err = h.Resample3DCoord(in, out); err != nil {
		return
	}
	tris := make([][3]int, newSphere.NumberOfTriangles())
	for k := range tris {
		tris[k] = newSphere.Triangle(k)
	}
	return mesh.NewSurface(out, tris, surf.Structure())
}

// CutSurfaceResample moves a surface with cuts, sharing vertices with
// curSphere, onto newSphere without bridging the cuts.
func CutSurfaceResample(cutSurf, curSphere, newSphere mesh.SurfaceProvider) (R *mesh.Surface, err error) {
	if R, err = resample.ResampleCutSurface(cutSurf, curSphere, newSphere); err != nil {
		return
	}
	var disconnected int
	for _, tiles := range R.Topology().NodeTiles {
		if len(tiles) == 0 {
			disconnected++
		}
	}
	utils.LogPrintf("kept %d of %d triangles, %d vertices disconnected, area %.6g from %.6g\n",
		R.NumberOfTriangles(), newSphere.NumberOfTriangles(), disconnected, mesh.TotalArea(R), mesh.TotalArea(cutSurf))
	return
}

// MetricResample resamples every column of m. The returned roi is 1 on new
// vertices that received any weight.
func MetricResample(m *types.Metric, curSphere, newSphere mesh.SurfaceProvider, so SurfaceOptions) (R *types.Metric, validROI []float64, err error) {
	if err = m.Validate(); err != nil {
		return
	}
	var h *resample.Helper
	if h, err = so.Helper(m.NumVertices(), curSphere, newSphere); err != nil {
		return
	}
	R = types.NewMetric(newSphere.NumberOfVertices(), m.NumColumns())
	copy(R.ColumnNames, m.ColumnNames)
	for c, col := range m.Columns {
		if so.Largest {
			err = h.ResampleLargest(col, R.Columns[c], 0)
		} else {
			err = h.ResampleNormal(col, R.Columns[c], 0)
		}
		if err != nil {
			return
		}
	}
	validROI = make([]float64, newSphere.NumberOfVertices())
	err = h.ValidROI(validROI)
	return
}

// LabelResample resamples label columns by weighted popular vote, or by the
// largest weight. New vertices with no weights get the unassigned key.
func LabelResample(l *types.LabelColumns, curSphere, newSphere mesh.SurfaceProvider, so SurfaceOptions) (R *types.LabelColumns, validROI []float64, err error) {
	if err = l.Validate(); err != nil {
		return
	}
	var h *resample.Helper
	if h, err = so.Helper(l.NumVertices(), curSphere, newSphere); err != nil {
		return
	}
	R = types.NewLabelColumns(newSphere.NumberOfVertices(), l.NumColumns(), l.Table.Copy())
	copy(R.ColumnNames, l.ColumnNames)
	invalid := l.Table.UnassignedKey()
	for c, col := range l.Columns {
		if so.Largest {
			err = h.ResampleLargestInt(col, R.Columns[c], invalid)
		} else {
			err = h.ResamplePopular(col, R.Columns[c], invalid)
		}
		if err != nil {
			return
		}
	}
	validROI = make([]float64, newSphere.NumberOfVertices())
	err = h.ValidROI(validROI)
	return
}
