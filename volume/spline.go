package volume

import (
	"math"

	"github.com/notargets/goresample/utils"
)

// Cubic B-spline interpolation with mirror boundaries. Frames are converted
// to spline coefficients once, then sampled with a 4x4x4 footprint.

var (
	splinePole = math.Sqrt(3) - 2
	splineGain = 6.0 // (1 - z)(1 - 1/z)
)

const splineTolerance = 1e-12

// PrepareSpline builds the coefficients of one frame ahead of concurrent
// sampling.
func (v *Volume) PrepareSpline(mapIndex, component int) {
	v.splineFor(v.frameIndex(mapIndex, component))
}

// FreeSpline drops all cached coefficients. Call it after writing frame data
// through SetValue, Frame or Data.
func (v *Volume) FreeSpline() {
	v.splineMu.Lock()
	v.splines = nil
	v.splineMu.Unlock()
}

func (v *Volume) invalidateSpline(f int) {
	v.splineMu.Lock()
	delete(v.splines, f)
	v.splineMu.Unlock()
}

func (v *Volume) splineFor(f int) (coeffs []float64) {
	var ok bool
	v.splineMu.RLock()
	coeffs, ok = v.splines[f]
	v.splineMu.RUnlock()
	if ok {
		return
	}
	v.splineMu.Lock()
	defer v.splineMu.Unlock()
	if coeffs, ok = v.splines[f]; ok {
		return
	}
	nv := v.Space.NumVoxels()
	coeffs = make([]float64, nv)
	copy(coeffs, v.Data[f*nv:(f+1)*nv])
	splineCoefficients(coeffs, v.Space.Dims)
	if v.splines == nil {
		v.splines = make(map[int][]float64)
	}
	v.splines[f] = coeffs
	return
}

// splineCoefficients prefilters data in place along each axis.
func splineCoefficients(data []float64, dims [3]int) {
	var (
		ni, nj, nk = dims[0], dims[1], dims[2]
	)
	// i and j passes touch one k plane at a time
	utils.ParallelFor(nk, func(kMin, kMax int) {
		line := make([]float64, max(ni, nj))
		for k := kMin; k < kMax; k++ {
			for j := 0; j < nj; j++ {
				base := ni * (j + nj*k)
				prefilter(data[base : base+ni])
			}
			for i := 0; i < ni; i++ {
				for j := 0; j < nj; j++ {
					line[j] = data[i+ni*(j+nj*k)]
				}
				prefilter(line[:nj])
				for j := 0; j < nj; j++ {
					data[i+ni*(j+nj*k)] = line[j]
				}
			}
		}
	})
	utils.ParallelFor(nj, func(jMin, jMax int) {
		line := make([]float64, nk)
		for j := jMin; j < jMax; j++ {
			for i := 0; i < ni; i++ {
				for k := 0; k < nk; k++ {
					line[k] = data[i+ni*(j+nj*k)]
				}
				prefilter(line)
				for k := 0; k < nk; k++ {
					data[i+ni*(j+nj*k)] = line[k]
				}
			}
		}
	})
}

func prefilter(c []float64) {
	var (
		n = len(c)
		z = splinePole
	)
	if n < 2 {
		return
	}
	for i := range c {
		c[i] *= splineGain
	}
	c[0] = initialCausal(c, z)
	for i := 1; i < n; i++ {
		c[i] += z * c[i-1]
	}
	c[n-1] = (z / (z*z - 1)) * (z*c[n-2] + c[n-1])
	for i := n - 2; i >= 0; i-- {
		c[i] = z * (c[i+1] - c[i])
	}
}

func initialCausal(c []float64, z float64) (sum float64) {
	var (
		n       = len(c)
		horizon = int(math.Ceil(math.Log(splineTolerance) / math.Log(math.Abs(z))))
	)
	if horizon < n {
		zn := z
		sum = c[0]
		for i := 1; i < horizon; i++ {
			sum += zn * c[i]
			zn *= z
		}
		return
	}
	var (
		zn  = z
		iz  = 1 / z
		z2n = math.Pow(z, float64(n-1))
	)
	sum = c[0] + z2n*c[n-1]
	z2n *= z2n * iz
	for i := 1; i < n-1; i++ {
		sum += (zn + z2n) * c[i]
		zn *= z
		z2n *= iz
	}
	return sum / (1 - zn*zn)
}

func splineWeights(t float64) (w [4]float64) {
	var (
		t2 = t * t
		t3 = t2 * t
		s  = 1 - t
	)
	w[0] = s * s * s / 6
	w[1] = (3*t3 - 6*t2 + 4) / 6
	w[2] = (-3*t3 + 3*t2 + 3*t + 1) / 6
	w[3] = t3 / 6
	return
}

// mirror folds an index onto [0, n) with whole sample symmetric boundaries.
func mirror(i, n int) int {
	if n == 1 {
		return 0
	}
	period := 2*n - 2
	if i < 0 {
		i = -i
	}
	i %= period
	if i >= n {
		i = period - i
	}
	return i
}

func splineAxis(x float64, n int) (idx [4]int, w [4]float64) {
	fl := math.Floor(x)
	w = splineWeights(x - fl)
	for m := 0; m < 4; m++ {
		idx[m] = mirror(int(fl)-1+m, n)
	}
	return
}

func sampleSpline(coeffs []float64, dims [3]int, x, y, z float64) (val float64) {
	var (
		ii, wi = splineAxis(x, dims[0])
		jj, wj = splineAxis(y, dims[1])
		kk, wk = splineAxis(z, dims[2])
	)
	for c := 0; c < 4; c++ {
		var plane float64
		for b := 0; b < 4; b++ {
			base := dims[0] * (jj[b] + dims[1]*kk[c])
			var row float64
			for a := 0; a < 4; a++ {
				row += wi[a] * coeffs[base+ii[a]]
			}
			plane += wj[b] * row
		}
		val += wk[c] * plane
	}
	return
}
