package volume

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/goresample/utils"
)

// FWHMToSigma converts a full width at half maximum to a Gaussian sigma.
func FWHMToSigma(fwhm float64) float64 { return fwhm / (2 * math.Sqrt(2*math.Ln2)) }

// Kernel is a Gaussian of sigma mm truncated at 3 sigma, tabulated over the
// voxel offsets of a possibly non orthogonal grid.
type Kernel struct {
	Sigma   float64
	Ranges  [3]int
	dims    [3]int
	axes    [3]r3.Vec
	reach   [3]float64 // unrounded Ranges, in index units
	mult    float64
	weights []float64
}

func NewKernel(space VolumeSpace, sigma float64) (kn Kernel, err error) {
	if !(sigma > 0) {
		err = fmt.Errorf("%w: kernel size must be positive, have %v", utils.ErrInvalidInput, sigma)
		return
	}
	var (
		ivec, jvec, kvec = space.AxisVectors()
		axes             = [3]r3.Vec{ivec, jvec, kvec}
		mult             = -1 / (2 * sigma * sigma)
	)
	kn = Kernel{Sigma: sigma, dims: space.Dims, axes: axes, mult: mult}
	for n := 0; n < 3; n++ {
		// distance between neighboring planes of this axis
		normal := r3.Unit(r3.Cross(axes[(n+1)%3], axes[(n+2)%3]))
		kn.reach[n] = math.Max(math.Abs(3*sigma/r3.Dot(axes[n], normal)), 1)
		kn.Ranges[n] = int(math.Floor(kn.reach[n]))
	}
	var (
		ri, rj, rk = kn.Ranges[0], kn.Ranges[1], kn.Ranges[2]
	)
	kn.weights = make([]float64, 0, (2*ri+1)*(2*rj+1)*(2*rk+1))
	for dk := -rk; dk <= rk; dk++ {
		for dj := -rj; dj <= rj; dj++ {
			for di := -ri; di <= ri; di++ {
				d := r3.Add(r3.Add(r3.Scale(float64(di), ivec), r3.Scale(float64(dj), jvec)), r3.Scale(float64(dk), kvec))
				kn.weights = append(kn.weights, math.Exp(r3.Norm2(d)*mult))
			}
		}
	}
	return
}

func (kn Kernel) Index(i, j, k int) int { return i + kn.dims[0]*(j+kn.dims[1]*k) }

// WeightedMean averages data over the voxels within the kernel box of
// (i,j,k) for which include is true. ok is false when no voxel qualified.
func (kn Kernel) WeightedMean(i, j, k int, data []float64, include func(idx int) bool) (mean float64, ok bool) {
	var (
		ri, rj, rk = kn.Ranges[0], kn.Ranges[1], kn.Ranges[2]
		ni, nj, nk = kn.dims[0], kn.dims[1], kn.dims[2]
		wi, wj     = 2*ri + 1, 2*rj + 1
		sum, wsum  float64
	)
	for kk := max(k-rk, 0); kk < min(k+rk+1, nk); kk++ {
		for jj := max(j-rj, 0); jj < min(j+rj+1, nj); jj++ {
			var (
				rowBase = ni * (jj + nj*kk)
				wBase   = wi * (jj - j + rj + wj*(kk-k+rk))
			)
			for ii := max(i-ri, 0); ii < min(i+ri+1, ni); ii++ {
				idx := rowBase + ii
				if !include(idx) {
					continue
				}
				w := kn.weights[wBase+ii-i+ri]
				sum += w * data[idx]
				wsum += w
			}
		}
	}
	if wsum != 0 {
		mean, ok = sum/wsum, true
	}
	return
}

// WeightedMeanAt is WeightedMean centered on a fractional voxel index, as
// when the center comes from another volume space. Weights are evaluated
// from the exact offsets instead of the table.
func (kn Kernel) WeightedMeanAt(center r3.Vec, data []float64, include func(idx int) bool) (mean float64, ok bool) {
	var (
		c         = [3]float64{center.X, center.Y, center.Z}
		lo, hi    [3]int
		sum, wsum float64
	)
	for n := 0; n < 3; n++ {
		lo[n] = max(int(math.Ceil(c[n]-kn.reach[n])), 0)
		hi[n] = min(int(math.Floor(c[n]+kn.reach[n]))+1, kn.dims[n])
	}
	for kk := lo[2]; kk < hi[2]; kk++ {
		kd := r3.Scale(float64(kk)-c[2], kn.axes[2])
		for jj := lo[1]; jj < hi[1]; jj++ {
			var (
				jd      = r3.Add(kd, r3.Scale(float64(jj)-c[1], kn.axes[1]))
				rowBase = kn.dims[0] * (jj + kn.dims[1]*kk)
			)
			for ii := lo[0]; ii < hi[0]; ii++ {
				idx := rowBase + ii
				if !include(idx) {
					continue
				}
				d := r3.Add(jd, r3.Scale(float64(ii)-c[0], kn.axes[0]))
				w := math.Exp(r3.Norm2(d) * kn.mult)
				sum += w * data[idx]
				wsum += w
			}
		}
	}
	if wsum != 0 {
		mean, ok = sum/wsum, true
	}
	return
}

// SmoothROI returns a copy of v with every frame Gaussian smoothed, using
// only voxels where roi > 0 (all voxels when roi is nil). Voxels outside the
// roi are zero. With fixZeros, zero valued voxels are treated as missing and
// refilled from their nonzero neighbors.
func SmoothROI(v *Volume, sigma float64, roi []float64, fixZeros bool) (out *Volume, err error) {
	var kn Kernel
	if kn, err = NewKernel(v.Space, sigma); err != nil {
		return
	}
	nv := v.Space.NumVoxels()
	if roi != nil && len(roi) != nv {
		err = fmt.Errorf("%w: roi has %d voxels, volume has %d", utils.ErrDimension, len(roi), nv)
		return
	}
	out = NewVolumeLike(v, v.Space)
	inROI := func(idx int) bool { return roi == nil || roi[idx] > 0 }
	for c := 0; c < v.NumComponents; c++ {
		for m := 0; m < v.NumMaps; m++ {
			kn.SmoothFrame(v.Frame(m, c), out.Frame(m, c), inROI, fixZeros)
		}
	}
	return
}

// SmoothFrame writes the smoothed in frame into out, over voxels passing
// inROI, in parallel over k planes.
func (kn Kernel) SmoothFrame(in, out []float64, inROI func(idx int) bool, fixZeros bool) {
	var (
		ni, nj, nk = kn.dims[0], kn.dims[1], kn.dims[2]
	)
	include := inROI
	if fixZeros {
		include = func(idx int) bool { return inROI(idx) && in[idx] != 0 }
	}
	utils.ParallelFor(nk, func(kMin, kMax int) {
		for k := kMin; k < kMax; k++ {
			for j := 0; j < nj; j++ {
				for i := 0; i < ni; i++ {
					idx := i + ni*(j+nj*k)
					if !inROI(idx) {
						out[idx] = 0
						continue
					}
					out[idx], _ = kn.WeightedMean(i, j, k, in, include)
				}
			}
		}
	})
}
