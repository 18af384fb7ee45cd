package volume

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/goresample/utils"
)

type InterpType uint8

const (
	CUBIC InterpType = iota
	TRILINEAR
	ENCLOSING_VOXEL
)

var InterpTypeNameMap = map[string]InterpType{
	"CUBIC":           CUBIC,
	"TRILINEAR":       TRILINEAR,
	"ENCLOSING_VOXEL": ENCLOSING_VOXEL,
}

func (it InterpType) String() string {
	for name, v := range InterpTypeNameMap {
		if v == it {
			return name
		}
	}
	return "UNKNOWN"
}

func NewInterpType(label string) (it InterpType, err error) {
	var ok bool
	if it, ok = InterpTypeNameMap[strings.ToUpper(strings.TrimSpace(label))]; !ok {
		err = fmt.Errorf("%w: unknown interpolation method %q", utils.ErrInvalidInput, label)
	}
	return
}

// Interpolate samples one frame at millimeter coordinate p. Points outside
// the grid return background, or the unassigned key of a LABEL map, with
// valid false. CUBIC and TRILINEAR accept points within 0.01 voxel of the
// outermost voxel centers.
func (v *Volume) Interpolate(p r3.Vec, method InterpType, mapIndex, component int, background float64) (val float64, valid bool) {
	var (
		f    = v.frameIndex(mapIndex, component)
		idx  = v.Space.SpaceToIndex(p)
		dims = v.Space.Dims
	)
	invalid := func() (float64, bool) {
		if v.Type == LABEL {
			return float64(v.LabelTable(mapIndex).UnassignedKey()), false
		}
		return background, false
	}
	if v.SingleSlice() {
		method = ENCLOSING_VOXEL
	}
	switch method {
	case CUBIC, TRILINEAR:
		lo := v.Space.IndexValid(int(math.Floor(idx.X+0.01)), int(math.Floor(idx.Y+0.01)), int(math.Floor(idx.Z+0.01)))
		hi := v.Space.IndexValid(int(math.Ceil(idx.X-0.01)), int(math.Ceil(idx.Y-0.01)), int(math.Ceil(idx.Z-0.01)))
		if !lo || !hi {
			return invalid()
		}
		if method == CUBIC {
			return sampleSpline(v.splineFor(f), dims, idx.X, idx.Y, idx.Z), true
		}
		return trilinear(v.Frame(mapIndex, component), dims, idx), true
	case ENCLOSING_VOXEL:
		i, j, k := int(math.Floor(idx.X+0.5)), int(math.Floor(idx.Y+0.5)), int(math.Floor(idx.Z+0.5))
		if !v.Space.IndexValid(i, j, k) {
			return invalid()
		}
		return v.Frame(mapIndex, component)[v.Space.Index(i, j, k)], true
	default:
		panic(fmt.Errorf("unknown interpolation method %d", method))
	}
}

func trilinear(frame []float64, dims [3]int, idx r3.Vec) float64 {
	var (
		x       = [3]float64{idx.X, idx.Y, idx.Z}
		lo      [3]int
		t       [3]float64
		ni, nij = dims[0], dims[0] * dims[1]
	)
	for n := 0; n < 3; n++ {
		lo[n] = int(math.Floor(x[n]))
		if lo[n] < 0 {
			lo[n] = 0
		}
		if lo[n] > dims[n]-2 {
			lo[n] = dims[n] - 2
		}
		t[n] = x[n] - float64(lo[n])
	}
	at := func(a, b, c int) float64 { return frame[lo[0]+a+ni*(lo[1]+b)+nij*(lo[2]+c)] }
	c00 := at(0, 0, 0)*(1-t[0]) + at(1, 0, 0)*t[0]
	c10 := at(0, 1, 0)*(1-t[0]) + at(1, 1, 0)*t[0]
	c01 := at(0, 0, 1)*(1-t[0]) + at(1, 0, 1)*t[0]
	c11 := at(0, 1, 1)*(1-t[0]) + at(1, 1, 1)*t[0]
	c0 := c00*(1-t[1]) + c10*t[1]
	c1 := c01*(1-t[1]) + c11*t[1]
	return c0*(1-t[2]) + c1*t[2]
}
