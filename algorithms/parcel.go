package algorithms

import (
	"fmt"
	"sync/atomic"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/goresample/types"
	"github.com/notargets/goresample/utils"
	"github.com/notargets/goresample/volume"
)

// FixZerosIterations bounds the dilation that fills zeros left inside a
// parcel after smoothing.
const FixZerosIterations = 10

type ParcelOptions struct {
	FixZeros  bool // treat zeros as missing data and fill them from neighbors
	FWHM      bool // kernel is a full width at half maximum instead of a sigma
	Subvolume int  // -1 for all maps
}

type labelPair struct{ current, next int32 }

// matchLabels pairs labels of the two tables, by key and name first, then by
// name alone.
func matchLabels(cur, next *types.LabelTable) (pairs []labelPair) {
	for _, key := range cur.Keys() {
		if key == cur.UnassignedKey() {
			continue
		}
		name, _ := cur.Name(key)
		if nextName, ok := next.Name(key); ok && nextName == name {
			pairs = append(pairs, labelPair{key, key})
		} else if nextKey, ok := next.KeyForName(name); ok {
			pairs = append(pairs, labelPair{key, nextKey})
		}
	}
	return
}

// VolumeParcelResampling moves data between two parcellations of the same
// voxel grid. For every parcel present in both label volumes, each voxel of
// the new parcel gets the Gaussian weighted mean of the input over the
// voxels of the current parcel. Voxels outside every matched new parcel are
// zero.
func VolumeParcelResampling(in, curLabel, newLabel *volume.Volume, kernel float64, po ParcelOptions) (R *volume.Volume, err error) {
	if !in.Space.Matches(curLabel.Space) || !in.Space.Matches(newLabel.Space) {
		err = fmt.Errorf("%w: volume spacing or dimension mismatch", utils.ErrInvalidInput)
		return
	}
	return resampleParcels(in, curLabel, newLabel, kernel, po, false)
}

// VolumeParcelResamplingGeneric is VolumeParcelResampling for a new
// parcellation on its own voxel grid. The output lies in the space of
// newLabel, and each of its voxel centers is mapped through world
// coordinates into the input grid, where the kernel is evaluated in mm.
func VolumeParcelResamplingGeneric(in, curLabel, newLabel *volume.Volume, kernel float64, po ParcelOptions) (R *volume.Volume, err error) {
	if !in.Space.Matches(curLabel.Space) {
		err = fmt.Errorf("%w: input label volume must be in the same space as input data volume", utils.ErrInvalidInput)
		return
	}
	return resampleParcels(in, curLabel, newLabel, kernel, po, true)
}

func resampleParcels(in, curLabel, newLabel *volume.Volume, kernel float64, po ParcelOptions, generic bool) (R *volume.Volume, err error) {
	if curLabel.Type != volume.LABEL || newLabel.Type != volume.LABEL {
		err = fmt.Errorf("%w: parcel volumes are not of type label", utils.ErrInvalidInput)
		return
	}
	if po.Subvolume < -1 || po.Subvolume >= in.NumMaps {
		err = fmt.Errorf("%w: invalid subvolume %d specified", utils.ErrInvalidInput, po.Subvolume)
		return
	}
	pairs := matchLabels(curLabel.LabelTable(0), newLabel.LabelTable(0))
	if len(pairs) == 0 {
		err = fmt.Errorf("%w: no matching labels", utils.ErrInvalidInput)
		return
	}
	if po.FWHM {
		kernel = volume.FWHMToSigma(kernel)
	}
	var inKernel, newKernel volume.Kernel
	if inKernel, err = volume.NewKernel(in.Space, kernel); err != nil {
		return
	}
	if newKernel, err = volume.NewKernel(newLabel.Space, kernel); err != nil {
		return
	}
	maps := []int{po.Subvolume}
	if po.Subvolume == -1 {
		maps = make([]int, in.NumMaps)
		for m := range maps {
			maps[m] = m
		}
	}
	var (
		outSpace = newLabel.Space
		nv       = outSpace.NumVoxels()
		curFrame = curLabel.Frame(0, 0)
		newFrame = newLabel.Frame(0, 0)
		scratch  = [2][]float64{make([]float64, nv), make([]float64, nv)}
		parcels  = make(map[int32][][3]int)
	)
	if R, err = volume.NewVolume(outSpace, len(maps), in.NumComponents, volume.ANATOMY); err != nil {
		return
	}
	for k := 0; k < outSpace.Dims[2]; k++ {
		for j := 0; j < outSpace.Dims[1]; j++ {
			for i := 0; i < outSpace.Dims[0]; i++ {
				key := labelKey(newFrame[outSpace.Index(i, j, k)])
				parcels[key] = append(parcels[key], [3]int{i, j, k})
			}
		}
	}
	mean := func(voxels [][3]int, data, out []float64, include func(idx int) bool) {
		if generic {
			parcelMeanAcross(inKernel, in.Space, outSpace, voxels, data, out, include)
		} else {
			parcelMean(inKernel, voxels, data, out, include)
		}
	}
	for _, pair := range pairs {
		var (
			inCur  = func(idx int) bool { return labelKey(curFrame[idx]) == pair.current }
			inNew  = func(idx int) bool { return labelKey(newFrame[idx]) == pair.next }
			voxels = parcels[pair.next]
		)
		for c := 0; c < in.NumComponents; c++ {
			for n, m := range maps {
				var (
					data = in.Frame(m, c)
					out  = R.Frame(n, c)
				)
				if !po.FixZeros {
					mean(voxels, data, out, inCur)
					continue
				}
				include := func(idx int) bool { return inCur(idx) && data[idx] != 0 }
				mean(voxels, data, scratch[0], include)
				if !fixParcelZeros(newKernel, voxels, scratch, out, inNew) {
					name, _ := curLabel.LabelTable(0).Name(pair.current)
					utils.LogWarnf("unable to fix all zeros in parcel %s\n", name)
				}
			}
		}
	}
	for m := range maps {
		R.MapNames[m] = in.MapNames[maps[m]]
	}
	return
}

func parcelMean(kn volume.Kernel, voxels [][3]int, data, out []float64, include func(idx int) bool) {
	utils.ParallelFor(len(voxels), func(nMin, nMax int) {
		for _, v := range voxels[nMin:nMax] {
			i, j, k := v[0], v[1], v[2]
			out[kn.Index(i, j, k)], _ = kn.WeightedMean(i, j, k, data, include)
		}
	})
}

// parcelMeanAcross is parcelMean for voxels of outSpace, each averaged in
// inSpace around the point sharing its world coordinates.
func parcelMeanAcross(kn volume.Kernel, inSpace, outSpace volume.VolumeSpace, voxels [][3]int, data, out []float64, include func(idx int) bool) {
	utils.ParallelFor(len(voxels), func(nMin, nMax int) {
		for _, v := range voxels[nMin:nMax] {
			var (
				xyz    = outSpace.IndexToSpace(r3.Vec{X: float64(v[0]), Y: float64(v[1]), Z: float64(v[2])})
				center = inSpace.SpaceToIndex(xyz)
			)
			out[outSpace.Index(v[0], v[1], v[2])], _ = kn.WeightedMeanAt(center, data, include)
		}
	})
}

// fixParcelZeros repeatedly replaces zeros at the parcel voxels of
// scratch[0] with the weighted mean of their nonzero parcel neighbors, then
// writes the parcel voxels to out. It reports whether every zero was filled.
func fixParcelZeros(kn volume.Kernel, voxels [][3]int, scratch [2][]float64, out []float64, inParcel func(idx int) bool) (fixed bool) {
	var (
		current, next = scratch[0], scratch[1]
		index         = func(v [3]int) int { return kn.Index(v[0], v[1], v[2]) }
		iter          int
	)
	for iter = 0; iter < FixZerosIterations; iter++ {
		var again atomic.Bool
		include := func(idx int) bool { return inParcel(idx) && current[idx] != 0 }
		utils.ParallelFor(len(voxels), func(nMin, nMax int) {
			for _, v := range voxels[nMin:nMax] {
				idx := index(v)
				if current[idx] != 0 {
					next[idx] = current[idx]
					continue
				}
				val, ok := kn.WeightedMean(v[0], v[1], v[2], current, include)
				if !ok {
					again.Store(true)
				}
				next[idx] = val
			}
		})
		current, next = next, current
		if !again.Load() {
			break
		}
	}
	for _, v := range voxels {
		idx := index(v)
		out[idx] = current[idx]
	}
	return iter < FixZerosIterations
}
