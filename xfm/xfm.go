package xfm

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/goresample/utils"
	"github.com/notargets/goresample/volume"
)

type XfmType uint8

const (
	AFFINE XfmType = iota
	AFFINE_SERIES
	WARPFIELD
	STACK
)

var XfmTypeNameMap = map[XfmType]string{
	AFFINE:        "AFFINE",
	AFFINE_SERIES: "AFFINE_SERIES",
	WARPFIELD:     "WARPFIELD",
	STACK:         "STACK",
}

func (xt XfmType) String() string { return XfmTypeNameMap[xt] }

type Affine [4][4]float64

func (A Affine) Apply(p r3.Vec) r3.Vec {
	return r3.Vec{
		X: A[0][0]*p.X + A[0][1]*p.Y + A[0][2]*p.Z + A[0][3],
		Y: A[1][0]*p.X + A[1][1]*p.Y + A[1][2]*p.Z + A[1][3],
		Z: A[2][0]*p.X + A[2][1]*p.Y + A[2][2]*p.Z + A[2][3],
	}
}

func (A Affine) Inverse() (R Affine, err error) {
	M := utils.NewMatrix(4, 4)
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			M.Set(i, j, A[i][j])
		}
	}
	M.SetReadOnly("affine")
	var Minv utils.Matrix
	if Minv, err = M.Inverse(); err != nil {
		err = fmt.Errorf("%w: affine is not invertible", utils.ErrInvalidInput)
		return
	}
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			R[i][j] = Minv.At(i, j)
		}
	}
	R[3] = [4]float64{0, 0, 0, 1}
	return
}

func (A Affine) Matrix() *mat.Dense {
	M := mat.NewDense(4, 4, nil)
	for i := range A {
		M.SetRow(i, A[i][:])
	}
	return M
}

// Xfm is one coordinate transform. Only the fields belonging to Type are set.
type Xfm struct {
	Type   XfmType
	affine Affine
	series []Affine
	field  *volume.Volume
	stack  *Stack
}

// AffineFrom copies a 4x4 world affine, rejecting NaN entries and a last
// row other than [0 0 0 1].
func AffineFrom(M mat.Matrix) (A Affine, err error) {
	if nr, nc := M.Dims(); nr != 4 || nc != 4 {
		err = fmt.Errorf("%w: affine must be 4x4, have %dx%d", utils.ErrDimension, nr, nc)
		return
	}
	D := utils.NewMatrixFrom(M)
	if utils.IsNan(D) {
		err = fmt.Errorf("%w: affine has NaN entries", utils.ErrInvalidInput)
		return
	}
	for i := 0; i < 4; i++ {
		copy(A[i][:], D.Row(i))
	}
	if A[3] != [4]float64{0, 0, 0, 1} {
		err = fmt.Errorf("%w: affine last row must be [0 0 0 1], have %v", utils.ErrDimension, A[3])
	}
	return
}

func NewAffine(M mat.Matrix) (x Xfm, err error) {
	var A Affine
	if A, err = AffineFrom(M); err != nil {
		return
	}
	x = Xfm{Type: AFFINE, affine: A}
	return
}

// NewAffineSeries holds one affine per frame.
func NewAffineSeries(Ms []mat.Matrix) (x Xfm, err error) {
	if len(Ms) == 0 {
		err = fmt.Errorf("%w: affine series is empty", utils.ErrInvalidInput)
		return
	}
	x = Xfm{Type: AFFINE_SERIES, series: make([]Affine, len(Ms))}
	for n, M := range Ms {
		if x.series[n], err = AffineFrom(M); err != nil {
			err = fmt.Errorf("frame %d: %w", n, err)
			return
		}
	}
	return
}

// NewWarpfield wraps a displacement field: three frames holding the x, y
// and z displacement in mm. The transformed point is p plus the trilinearly
// interpolated displacement at p.
func NewWarpfield(field *volume.Volume) (x Xfm, err error) {
	if field == nil || field.NumFrames() != 3 {
		n := 0
		if field != nil {
			n = field.NumFrames()
		}
		err = fmt.Errorf("%w: warpfield must have 3 subvolumes, have %d", utils.ErrDimension, n)
		return
	}
	x = Xfm{Type: WARPFIELD, field: field}
	return
}

func (x Xfm) Frames() int {
	if x.Type == AFFINE_SERIES {
		return len(x.series)
	}
	return 0
}

// Apply transforms p. Frame selects the affine of a series and is ignored
// by the other variants.
func (x Xfm) Apply(p r3.Vec, frame int) (q r3.Vec, valid bool) {
	switch x.Type {
	case AFFINE:
		return x.affine.Apply(p), true
	case AFFINE_SERIES:
		if frame < 0 || frame >= len(x.series) {
			panic(fmt.Errorf("frame %d out of range for affine series of %d", frame, len(x.series)))
		}
		return x.series[frame].Apply(p), true
	case WARPFIELD:
		var (
			d  [3]float64
			nm = x.field.NumMaps
		)
		valid = true
		for f := 0; f < 3; f++ {
			var ok bool
			d[f], ok = x.field.Interpolate(p, volume.TRILINEAR, f%nm, f/nm, 0)
			valid = valid && ok
		}
		return r3.Add(p, r3.Vec{X: d[0], Y: d[1], Z: d[2]}), valid
	case STACK:
		return x.stack.Apply(p, frame)
	default:
		panic(fmt.Errorf("unknown transform type %d", x.Type))
	}
}

// Inverse inverts affines, reverses and inverts stacks. Warpfields cannot be
// inverted and return ErrInvalidInput.
func (x Xfm) Inverse() (R Xfm, err error) {
	switch x.Type {
	case AFFINE:
		R = Xfm{Type: AFFINE}
		R.affine, err = x.affine.Inverse()
	case AFFINE_SERIES:
		R = Xfm{Type: AFFINE_SERIES, series: make([]Affine, len(x.series))}
		for n, A := range x.series {
			if R.series[n], err = A.Inverse(); err != nil {
				return
			}
		}
	case WARPFIELD:
		err = fmt.Errorf("%w: warpfields are not invertible", utils.ErrInvalidInput)
	case STACK:
		var s *Stack
		if s, err = x.stack.invert(false); err == nil {
			R = s.Xfm()
		}
	}
	return
}
