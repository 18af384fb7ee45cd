package volume

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/goresample/utils"
)

// SformTolerance is the ratio by which two sform elements may differ and
// still describe the same voxel grid.
const SformTolerance = 0.999

// VolumeSpace is a voxel grid placed in millimeter space by a 4x4 sform.
type VolumeSpace struct {
	Dims  [3]int
	Sform [4][4]float64
	inv   [4][4]float64
}

func NewVolumeSpace(dims [3]int, sform [4][4]float64) (vs VolumeSpace, err error) {
	for n, d := range dims {
		if d < 1 {
			err = fmt.Errorf("%w: dimension %d of volume space is %d", utils.ErrInvalidInput, n, d)
			return
		}
	}
	if sform[3] != [4]float64{0, 0, 0, 1} {
		err = fmt.Errorf("%w: sform last row must be [0 0 0 1], have %v", utils.ErrDimension, sform[3])
		return
	}
	S := utils.NewMatrix(4, 4)
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			S.Set(i, j, sform[i][j])
		}
	}
	S.SetReadOnly("sform")
	var Sinv utils.Matrix
	if Sinv, err = S.Inverse(); err != nil {
		err = fmt.Errorf("%w: sform is singular", utils.ErrInvalidInput)
		return
	}
	vs = VolumeSpace{Dims: dims, Sform: sform}
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			vs.inv[i][j] = Sinv.At(i, j)
		}
	}
	return
}

// NewOrthogonalSpace places voxel centers on a grid of the given spacing,
// voxel (0,0,0) at origin.
func NewOrthogonalSpace(dims [3]int, spacing, origin r3.Vec) (vs VolumeSpace, err error) {
	return NewVolumeSpace(dims, [4][4]float64{
		{spacing.X, 0, 0, origin.X},
		{0, spacing.Y, 0, origin.Y},
		{0, 0, spacing.Z, origin.Z},
		{0, 0, 0, 1},
	})
}

func apply(M [4][4]float64, p r3.Vec) r3.Vec {
	return r3.Vec{
		X: M[0][0]*p.X + M[0][1]*p.Y + M[0][2]*p.Z + M[0][3],
		Y: M[1][0]*p.X + M[1][1]*p.Y + M[1][2]*p.Z + M[1][3],
		Z: M[2][0]*p.X + M[2][1]*p.Y + M[2][2]*p.Z + M[2][3],
	}
}

// IndexToSpace maps fractional voxel indices to millimeter coordinates.
func (vs VolumeSpace) IndexToSpace(idx r3.Vec) r3.Vec { return apply(vs.Sform, idx) }

// SpaceToIndex maps millimeter coordinates to fractional voxel indices.
func (vs VolumeSpace) SpaceToIndex(p r3.Vec) r3.Vec { return apply(vs.inv, p) }

// EnclosingVoxel returns the voxel whose center is nearest p, which may be
// outside the grid.
func (vs VolumeSpace) EnclosingVoxel(p r3.Vec) (ijk [3]int) {
	idx := vs.SpaceToIndex(p)
	ijk[0] = int(math.Floor(idx.X + 0.5))
	ijk[1] = int(math.Floor(idx.Y + 0.5))
	ijk[2] = int(math.Floor(idx.Z + 0.5))
	return
}

func (vs VolumeSpace) IndexValid(i, j, k int) bool {
	return i >= 0 && j >= 0 && k >= 0 && i < vs.Dims[0] && j < vs.Dims[1] && k < vs.Dims[2]
}

func (vs VolumeSpace) NumVoxels() int { return vs.Dims[0] * vs.Dims[1] * vs.Dims[2] }

// Index flattens voxel indices, i varies fastest.
func (vs VolumeSpace) Index(i, j, k int) int { return i + vs.Dims[0]*(j+vs.Dims[1]*k) }

// AxisVectors returns the millimeter step along each index axis.
func (vs VolumeSpace) AxisVectors() (ivec, jvec, kvec r3.Vec) {
	S := vs.Sform
	ivec = r3.Vec{X: S[0][0], Y: S[1][0], Z: S[2][0]}
	jvec = r3.Vec{X: S[0][1], Y: S[1][1], Z: S[2][1]}
	kvec = r3.Vec{X: S[0][2], Y: S[1][2], Z: S[2][2]}
	return
}

// Spacing is the length of each axis vector.
func (vs VolumeSpace) Spacing() (sp [3]float64) {
	ivec, jvec, kvec := vs.AxisVectors()
	return [3]float64{r3.Norm(ivec), r3.Norm(jvec), r3.Norm(kvec)}
}

// Matches compares dimensions exactly and sform elements by ratio.
func (vs VolumeSpace) Matches(other VolumeSpace) bool {
	if vs.Dims != other.Dims {
		return false
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 4; j++ {
			l, r := vs.Sform[i][j], other.Sform[i][j]
			if l == r {
				continue
			}
			if l == 0 || r == 0 || l/r < SformTolerance || r/l < SformTolerance {
				return false
			}
		}
	}
	return true
}

func (vs VolumeSpace) String() string {
	sp := vs.Spacing()
	return fmt.Sprintf("dims %v, spacing [%.4g %.4g %.4g], origin [%.4g %.4g %.4g]",
		vs.Dims, sp[0], sp[1], sp[2], vs.Sform[0][3], vs.Sform[1][3], vs.Sform[2][3])
}
