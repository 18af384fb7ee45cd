package resample

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/notargets/goresample/mesh"
	"github.com/notargets/goresample/utils"
)

type helperOptions struct {
	curAreaSurf, newAreaSurf mesh.SurfaceProvider
	curAreas, newAreas       []float64
	curROI                   []float64
	nonSphere                bool
}

type Option func(*helperOptions)

// WithAreaSurfaces supplies anatomical surfaces matching the spheres vertex
// for vertex, used only to measure vertex areas.
func WithAreaSurfaces(current, next mesh.SurfaceProvider) Option {
	return func(o *helperOptions) {
		o.curAreaSurf, o.newAreaSurf = current, next
	}
}

// WithAreaValues supplies per vertex areas directly.
func WithAreaValues(current, next []float64) Option {
	return func(o *helperOptions) {
		o.curAreas, o.newAreas = current, next
	}
}

// WithCurrentROI excludes source vertices whose ROI value is not positive.
func WithCurrentROI(roi []float64) Option {
	return func(o *helperOptions) {
		o.curROI = roi
	}
}

// WithNonSphere accepts arbitrary surfaces in place of spheres, skipping the
// shape check and the radius normalization.
func WithNonSphere() Option {
	return func(o *helperOptions) {
		o.nonSphere = true
	}
}

// Helper holds the weights mapping every vertex of a new mesh onto vertices
// of a current mesh. It is immutable after construction, so one Helper can
// resample any number of data columns concurrently.
type Helper struct {
	method    Method
	numSource int
	weights   weightTable
}

func NewHelper(method Method, currentSphere, newSphere mesh.SurfaceProvider, opts ...Option) (h *Helper, err error) {
	var (
		o                  = &helperOptions{}
		useCur, useNew     *mesh.Surface
		curAreas, newAreas []float64
	)
	for _, opt := range opts {
		opt(o)
	}
	if method != BARYCENTRIC && method != ADAP_BARY_AREA {
		err = fmt.Errorf("%w: unknown surface resampling method %v", utils.ErrInvalidInput, method)
		return
	}
	if o.nonSphere {
		useCur, useNew = mesh.FromProvider(currentSphere), mesh.FromProvider(newSphere)
	} else {
		for _, s := range []mesh.SurfaceProvider{currentSphere, newSphere} {
			var isSphere bool
			if isSphere, err = mesh.CheckSphere(s); err != nil {
				return
			}
			if !isSphere {
				err = fmt.Errorf("%w: input surfaces to the resampling helper must be spheres", utils.ErrInvalidInput)
				return
			}
		}
		useCur = mesh.ChangeRadius(mesh.CanonicalRadius, currentSphere)
		useNew = mesh.ChangeRadius(mesh.CanonicalRadius, newSphere)
	}
	nCur, nNew := useCur.NumberOfVertices(), useNew.NumberOfVertices()
	if o.curROI != nil && len(o.curROI) != nCur {
		err = fmt.Errorf("%w: current ROI has %d values, current sphere has %d vertices",
			utils.ErrInvalidInput, len(o.curROI), nCur)
		return
	}
	if curAreas, newAreas, err = o.areas(nCur, nNew); err != nil {
		return
	}
	h = &Helper{method: method, numSource: nCur}
	switch method {
	case ADAP_BARY_AREA:
		if curAreas == nil || newAreas == nil {
			h = nil
			err = fmt.Errorf("%w: ADAP_BARY_AREA method requires providing vertex areas using anatomical surfaces or vertex area metrics",
				utils.ErrInvalidInput)
			return
		}
		h.weights = compactWeights(adapBaryAreaWeights(useCur, useNew, curAreas, newAreas, o.curROI, o.nonSphere))
	case BARYCENTRIC:
		h.weights = compactWeights(makeBarycentricWeights(useCur, useNew, o.curROI, o.nonSphere))
	}
	return
}

func (o *helperOptions) areas(nCur, nNew int) (curAreas, newAreas []float64, err error) {
	if o.curAreaSurf != nil || o.newAreaSurf != nil {
		if o.curAreaSurf == nil || o.newAreaSurf == nil {
			err = fmt.Errorf("%w: both current and new area surfaces must be given", utils.ErrInvalidInput)
			return
		}
		if n := o.curAreaSurf.NumberOfVertices(); n != nCur {
			err = fmt.Errorf("%w: current area surface has %d vertices, current sphere has %d",
				utils.ErrInvalidInput, n, nCur)
			return
		}
		if n := o.newAreaSurf.NumberOfVertices(); n != nNew {
			err = fmt.Errorf("%w: new area surface has %d vertices, new sphere has %d",
				utils.ErrInvalidInput, n, nNew)
			return
		}
		curAreas, newAreas = mesh.VertexAreas(o.curAreaSurf), mesh.VertexAreas(o.newAreaSurf)
		return
	}
	if o.curAreas != nil || o.newAreas != nil {
		if len(o.curAreas) != nCur || len(o.newAreas) != nNew {
			err = fmt.Errorf("%w: area values have %d and %d entries, spheres have %d and %d vertices",
				utils.ErrInvalidInput, len(o.curAreas), len(o.newAreas), nCur, nNew)
			return
		}
		curAreas, newAreas = o.curAreas, o.newAreas
	}
	return
}

// makeBarycentricWeights locates every vertex of to on from. Source vertices
// outside roi are dropped and the remainder renormalized.
func makeBarycentricWeights(from, to *mesh.Surface, roi []float64, nonSphere bool) (weights []map[int]float64) {
	var (
		numTo    = to.NumberOfVertices()
		locator  = mesh.NewTriangleLocator(from)
		warnDist = 3 * math.Max(mesh.SpacingStatistics(from).Mean, mesh.SpacingStatistics(to).Mean)
		doWarn   atomic.Bool
	)
	weights = make([]map[int]float64, numTo)
	utils.ParallelFor(numTo, func(kMin, kMax int) {
		for i := kMin; i < kMax; i++ {
			info := locator.Locate(to.Coordinate(i))
			w := make(map[int]float64, 3)
			var sum float64
			for j := 0; j < 3; j++ {
				if info.Weights[j] == 0 {
					continue
				}
				if roi != nil && !(roi[info.Nodes[j]] > 0) {
					continue
				}
				w[info.Nodes[j]] += info.Weights[j]
				sum += info.Weights[j]
			}
			if roi != nil && sum != 0 {
				for node := range w {
					w[node] /= sum
				}
			}
			if info.AbsDistance > warnDist && (roi == nil || sum != 0) {
				doWarn.Store(true)
			}
			weights[i] = w
		}
	})
	if doWarn.Load() {
		if nonSphere {
			utils.LogWarnf("current and new resampling surfaces do not follow the same contour very closely everywhere (or have extreme distortion somewhere), resampling output may have artifacts\n")
		} else {
			utils.LogWarnf("current or new resampling spheres seem to have extremely large distortions, please check them manually\n")
		}
	}
	return
}

func adapBaryAreaWeights(cur, next *mesh.Surface, curAreas, newAreas, roi []float64, nonSphere bool) (adap []map[int]float64) {
	var (
		// area correction must see every vertex, the ROI is applied afterwards
		forward       = makeBarycentricWeights(cur, next, nil, nonSphere)
		reverse       = makeBarycentricWeights(next, cur, nil, nonSphere)
		numNew        = next.NumberOfVertices()
		numCur        = cur.NumberOfVertices()
		reverseGather = make([]map[int]float64, numNew)
		correctionSum = make([]float64, numCur)
	)
	for i := range reverseGather {
		reverseGather[i] = make(map[int]float64)
	}
	// scatter to gather transpose
	for curNode := 0; curNode < numCur; curNode++ {
		for newNode, w := range reverse[curNode] {
			reverseGather[newNode][curNode] += w
		}
	}
	adap = make([]map[int]float64, numNew)
	utils.ParallelFor(numNew, func(kMin, kMax int) {
		for i := kMin; i < kMax; i++ {
			useForward := true
			for node := range reverseGather[i] {
				if _, ok := forward[i][node]; !ok {
					useForward = false
					break
				}
			}
			src := reverseGather[i]
			if useForward {
				src = forward[i]
			}
			w := make(map[int]float64, len(src))
			for node, val := range src {
				w[node] = val * newAreas[i]
			}
			adap[i] = w
		}
	})
	for i := 0; i < numNew; i++ {
		for node, val := range adap[i] {
			correctionSum[node] += val
		}
	}
	utils.ParallelFor(numNew, func(kMin, kMax int) {
		for i := kMin; i < kMax; i++ {
			var sum float64
			for node, val := range adap[i] {
				if roi != nil && !(roi[node] > 0) {
					delete(adap[i], node)
					continue
				}
				val *= curAreas[node] / correctionSum[node]
				adap[i][node] = val
				sum += val
			}
			// zero only when the ROI removed everything, or areas are zero
			if sum != 0 {
				for node := range adap[i] {
					adap[i][node] /= sum
				}
			}
		}
	})
	return
}
