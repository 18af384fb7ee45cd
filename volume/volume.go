package volume

import (
	"fmt"
	"strings"
	"sync"

	"github.com/notargets/goresample/types"
	"github.com/notargets/goresample/utils"
)

type VolumeType uint8

const (
	ANATOMY VolumeType = iota
	LABEL
)

var VolumeTypeNameMap = map[string]VolumeType{
	"ANATOMY": ANATOMY,
	"LABEL":   LABEL,
}

func (vt VolumeType) String() string {
	for name, v := range VolumeTypeNameMap {
		if v == vt {
			return name
		}
	}
	return "UNKNOWN"
}

func NewVolumeType(label string) (vt VolumeType, err error) {
	var ok bool
	if vt, ok = VolumeTypeNameMap[strings.ToUpper(strings.TrimSpace(label))]; !ok {
		err = fmt.Errorf("%w: unknown volume type %q", utils.ErrInvalidInput, label)
	}
	return
}

// Volume holds NumComponents x NumMaps frames over one VolumeSpace. Frame f
// of map m and component c is f = c*NumMaps + m, voxels within a frame are
// laid out by VolumeSpace.Index.
type Volume struct {
	Space         VolumeSpace
	NumMaps       int
	NumComponents int
	Data          []float64
	Type          VolumeType
	LabelTables   []*types.LabelTable // one per map, LABEL volumes only
	MapNames      []string

	splineMu sync.RWMutex
	splines  map[int][]float64
}

// NewVolume allocates a zero filled volume. LABEL volumes get a default
// label table per map.
func NewVolume(space VolumeSpace, numMaps, numComponents int, vt VolumeType) (v *Volume, err error) {
	if numMaps < 1 || numComponents < 1 {
		err = fmt.Errorf("%w: volume needs at least one map and component, have %d, %d",
			utils.ErrInvalidInput, numMaps, numComponents)
		return
	}
	v = &Volume{
		Space:         space,
		NumMaps:       numMaps,
		NumComponents: numComponents,
		Data:          make([]float64, space.NumVoxels()*numMaps*numComponents),
		Type:          vt,
		MapNames:      make([]string, numMaps),
	}
	if vt == LABEL {
		v.LabelTables = make([]*types.LabelTable, numMaps)
		for m := range v.LabelTables {
			v.LabelTables[m] = types.NewLabelTable()
		}
	}
	return
}

// NewVolumeLike allocates an empty volume with the frame layout, type and
// label tables of v on a different space.
func NewVolumeLike(v *Volume, space VolumeSpace) (R *Volume) {
	var err error
	if R, err = NewVolume(space, v.NumMaps, v.NumComponents, v.Type); err != nil {
		panic(err)
	}
	copy(R.MapNames, v.MapNames)
	if v.Type == LABEL {
		for m := range R.LabelTables {
			R.LabelTables[m] = v.LabelTable(m).Copy()
		}
	}
	return
}

func (v *Volume) NumFrames() int { return v.NumMaps * v.NumComponents }

func (v *Volume) Dimensions() (dims [5]int) {
	return [5]int{v.Space.Dims[0], v.Space.Dims[1], v.Space.Dims[2], v.NumMaps, v.NumComponents}
}

func (v *Volume) frameIndex(mapIndex, component int) int {
	if mapIndex < 0 || mapIndex >= v.NumMaps || component < 0 || component >= v.NumComponents {
		panic(fmt.Errorf("map %d component %d out of range [%d, %d]", mapIndex, component, v.NumMaps, v.NumComponents))
	}
	return component*v.NumMaps + mapIndex
}

// Frame returns a writable view of one frame. Cached spline coefficients
// are not refreshed by writes through it or SetValue, see FreeSpline.
func (v *Volume) Frame(mapIndex, component int) []float64 {
	var (
		nv = v.Space.NumVoxels()
		f  = v.frameIndex(mapIndex, component)
	)
	return v.Data[f*nv : (f+1)*nv]
}

func (v *Volume) Value(i, j, k, mapIndex, component int) float64 {
	return v.Frame(mapIndex, component)[v.Space.Index(i, j, k)]
}

func (v *Volume) SetValue(val float64, i, j, k, mapIndex, component int) {
	v.Frame(mapIndex, component)[v.Space.Index(i, j, k)] = val
}

// SetFrame copies data into one frame.
func (v *Volume) SetFrame(data []float64, mapIndex, component int) {
	frame := v.Frame(mapIndex, component)
	if len(data) != len(frame) {
		panic(fmt.Errorf("frame length %d, have %d", len(frame), len(data)))
	}
	copy(frame, data)
	v.invalidateSpline(v.frameIndex(mapIndex, component))
}

// LabelTable returns the table of a map, creating a default one when absent.
func (v *Volume) LabelTable(mapIndex int) *types.LabelTable {
	if v.LabelTables == nil {
		v.LabelTables = make([]*types.LabelTable, v.NumMaps)
	}
	if v.LabelTables[mapIndex] == nil {
		v.LabelTables[mapIndex] = types.NewLabelTable()
	}
	return v.LabelTables[mapIndex]
}

// SingleSlice is true when any spatial dimension has one voxel.
func (v *Volume) SingleSlice() bool {
	d := v.Space.Dims
	return d[0] == 1 || d[1] == 1 || d[2] == 1
}
