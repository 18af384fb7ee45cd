package algorithms

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/goresample/utils"
	"github.com/notargets/goresample/volume"
	"github.com/notargets/goresample/xfm"
)

// resamplingStack turns the user transforms, which map input space to
// output space, into the stack evaluated from output voxels.
func resamplingStack(in *volume.Volume, transforms *xfm.Stack) (inv *xfm.Stack, err error) {
	if transforms == nil {
		return xfm.NewStack(), nil
	}
	if inv, err = transforms.InvertForResampling(); err != nil {
		return
	}
	if nf := inv.Frames(); nf != 0 && nf < in.NumMaps {
		err = fmt.Errorf("%w: affine series has %d frames, volume has %d maps", utils.ErrInvalidInput, nf, in.NumMaps)
	}
	return
}

// VolumeResample resamples every frame of in onto refSpace. Output voxels
// whose point is invalid after the transforms, or falls outside in, get
// background.
func VolumeResample(in *volume.Volume, transforms *xfm.Stack, refSpace volume.VolumeSpace, method volume.InterpType, background float64) (R *volume.Volume, err error) {
	var inv *xfm.Stack
	if inv, err = resamplingStack(in, transforms); err != nil {
		return
	}
	R = volume.NewVolumeLike(in, refSpace)
	for c := 0; c < in.NumComponents; c++ {
		for m := 0; m < in.NumMaps; m++ {
			if method == volume.CUBIC {
				in.PrepareSpline(m, c)
			}
			out := R.Frame(m, c)
			forEachVoxel(refSpace, func(idx int, p r3.Vec) {
				q, valid := inv.Apply(p, m)
				if !valid {
					out[idx] = background
					return
				}
				out[idx], _ = in.Interpolate(q, method, m, c, background)
			})
			if method == volume.CUBIC {
				in.FreeSpline()
			}
		}
	}
	return
}

// forEachVoxel visits every voxel of vs with its millimeter coordinate, in
// parallel over k planes.
func forEachVoxel(vs volume.VolumeSpace, f func(idx int, p r3.Vec)) {
	var (
		ni, nj, nk = vs.Dims[0], vs.Dims[1], vs.Dims[2]
	)
	utils.ParallelFor(nk, func(kMin, kMax int) {
		for k := kMin; k < kMax; k++ {
			for j := 0; j < nj; j++ {
				for i := 0; i < ni; i++ {
					f(vs.Index(i, j, k), vs.IndexToSpace(r3.Vec{X: float64(i), Y: float64(j), Z: float64(k)}))
				}
			}
		}
	})
}

func labelKey(v float64) int32 { return int32(math.Floor(v + 0.5)) }

// frameKeys lists the label keys present in a frame, ascending.
func frameKeys(frame []float64) (keys []int32) {
	seen := make(map[int32]struct{})
	for _, v := range frame {
		seen[labelKey(v)] = struct{}{}
	}
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return
}

// VolumeLabelResample resamples a LABEL volume. Each label is resampled as
// an indicator mask, Gaussian smoothed first when kernel > 0, and every
// output voxel takes the label with the largest value. The unassigned label
// is considered first so it wins ties. ENCLOSING_VOXEL copies labels
// directly. CUBIC masks are interpolated trilinearly.
func VolumeLabelResample(in *volume.Volume, transforms *xfm.Stack, refSpace volume.VolumeSpace, method volume.InterpType, kernel float64) (R *volume.Volume, err error) {
	if in.Type != volume.LABEL {
		err = fmt.Errorf("%w: input volume is not a label volume", utils.ErrInvalidInput)
		return
	}
	var inv *xfm.Stack
	if inv, err = resamplingStack(in, transforms); err != nil {
		return
	}
	if method == volume.CUBIC {
		method = volume.TRILINEAR
	}
	R = volume.NewVolumeLike(in, refSpace)
	for c := 0; c < in.NumComponents; c++ {
		for m := 0; m < in.NumMaps; m++ {
			var (
				unassigned = in.LabelTable(m).UnassignedKey()
				out        = R.Frame(m, c)
			)
			if method == volume.ENCLOSING_VOXEL {
				forEachVoxel(refSpace, func(idx int, p r3.Vec) {
					q, valid := inv.Apply(p, m)
					if !valid {
						out[idx] = float64(unassigned)
						return
					}
					val, _ := in.Interpolate(q, volume.ENCLOSING_VOXEL, m, c, float64(unassigned))
					out[idx] = float64(labelKey(val))
				})
				continue
			}
			var (
				keys  []int32
				masks []*volume.Volume
			)
			if keys, masks, err = labelMasks(in, m, c, unassigned, kernel); err != nil {
				return
			}
			forEachVoxel(refSpace, func(idx int, p r3.Vec) {
				out[idx] = float64(unassigned)
				q, valid := inv.Apply(p, m)
				if !valid {
					return
				}
				var (
					best    float64
					bestKey = unassigned
				)
				for n, mask := range masks {
					val, ok := mask.Interpolate(q, method, 0, 0, 0)
					if !ok {
						return
					}
					if n == 0 || val > best {
						best, bestKey = val, keys[n]
					}
				}
				out[idx] = float64(bestKey)
			})
		}
	}
	return
}

// labelMasks builds one indicator volume per label present in a frame, the
// unassigned key first.
func labelMasks(in *volume.Volume, m, c int, unassigned int32, kernel float64) (keys []int32, masks []*volume.Volume, err error) {
	frame := in.Frame(m, c)
	keys = []int32{unassigned}
	for _, key := range frameKeys(frame) {
		if key != unassigned {
			keys = append(keys, key)
		}
	}
	masks = make([]*volume.Volume, len(keys))
	for n, key := range keys {
		var mask *volume.Volume
		if mask, err = volume.NewVolume(in.Space, 1, 1, volume.ANATOMY); err != nil {
			return
		}
		data := mask.Frame(0, 0)
		for idx, v := range frame {
			if labelKey(v) == key {
				data[idx] = 1
			}
		}
		if kernel > 0 {
			if mask, err = volume.SmoothROI(mask, kernel, nil, false); err != nil {
				return
			}
		}
		masks[n] = mask
	}
	return
}
