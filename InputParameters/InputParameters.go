package InputParameters

import (
	"fmt"
	"strings"

	"github.com/ghodss/yaml"
	"github.com/mitchellh/go-homedir"

	"github.com/notargets/goresample/resample"
	"github.com/notargets/goresample/utils"
	"github.com/notargets/goresample/volume"
)

type JobKind string

const (
	SurfaceJob      JobKind = "surface"
	CutSurfaceJob   JobKind = "cut-surface"
	MetricJob       JobKind = "metric"
	LabelJob        JobKind = "label"
	VolumeJob       JobKind = "volume"
	VolumeLabelJob  JobKind = "volume-label"
	VolumeParcelJob JobKind = "volume-parcel"
)

func (jk JobKind) IsSurface() bool {
	return jk == SurfaceJob || jk == CutSurfaceJob || jk == MetricJob || jk == LabelJob
}

// TransformSpec is one stage of a transform stack. Type is affine, series
// or warpfield. An affine File holds a text matrix, a series File a YAML
// list of them, a warpfield File a three map displacement volume.
type TransformSpec struct {
	Type string `json:"Type"`
	File string `json:"File"`
}

// Parameters obtained from the YAML job file
type ResampleJob struct {
	Title             string          `json:"Title"`
	Kind              JobKind         `json:"Kind"`
	Method            string          `json:"Method"` // surface method or volume interpolation
	Input             string          `json:"Input"`
	Output            string          `json:"Output"`
	CurrentSphere     string          `json:"CurrentSphere"`
	NewSphere         string          `json:"NewSphere"`
	CurrentArea       string          `json:"CurrentArea"`
	NewArea           string          `json:"NewArea"`
	CurrentAreaMetric string          `json:"CurrentAreaMetric"`
	NewAreaMetric     string          `json:"NewAreaMetric"`
	CurrentROI        string          `json:"CurrentROI"`
	ValidROIOut       string          `json:"ValidROIOut"`
	Largest           bool            `json:"Largest"`
	WeightsIn         string          `json:"WeightsIn"`  // reuse saved weights
	WeightsOut        string          `json:"WeightsOut"` // save the weights used
	Reference         string          `json:"Reference"`  // volume defining the output space
	Transforms        []TransformSpec `json:"Transforms"`
	Background        float64         `json:"Background"`
	Kernel            float64         `json:"Kernel"`
	FWHM              bool            `json:"FWHM"`
	FixZeros          bool            `json:"FixZeros"`
	Subvolume         *int            `json:"Subvolume"`
	CurrentParcels    string          `json:"CurrentParcels"`
	NewParcels        string          `json:"NewParcels"`
	Generic           bool            `json:"Generic"` // new parcels may lie on another voxel grid
}

func (rj *ResampleJob) Parse(data []byte) (err error) {
	if err = yaml.Unmarshal(data, rj); err != nil {
		return
	}
	rj.Kind = JobKind(strings.ToLower(strings.TrimSpace(string(rj.Kind))))
	for _, path := range rj.paths() {
		if *path, err = homedir.Expand(*path); err != nil {
			return
		}
	}
	for i := range rj.Transforms {
		if rj.Transforms[i].File, err = homedir.Expand(rj.Transforms[i].File); err != nil {
			return
		}
	}
	return
}

func (rj *ResampleJob) paths() []*string {
	return []*string{
		&rj.Input, &rj.Output, &rj.CurrentSphere, &rj.NewSphere,
		&rj.CurrentArea, &rj.NewArea, &rj.CurrentAreaMetric, &rj.NewAreaMetric,
		&rj.CurrentROI, &rj.ValidROIOut, &rj.WeightsIn, &rj.WeightsOut,
		&rj.Reference, &rj.CurrentParcels, &rj.NewParcels,
	}
}

// SubvolumeIndex is the requested map, -1 for all maps.
func (rj *ResampleJob) SubvolumeIndex() int {
	if rj.Subvolume == nil {
		return -1
	}
	return *rj.Subvolume
}

func (rj *ResampleJob) SurfaceMethod() (resample.Method, error) {
	return resample.NewMethod(rj.Method)
}

// InterpMethod defaults to CUBIC for volume jobs and TRILINEAR for label
// volume jobs.
func (rj *ResampleJob) InterpMethod() (volume.InterpType, error) {
	if len(strings.TrimSpace(rj.Method)) == 0 {
		if rj.Kind == VolumeLabelJob {
			return volume.TRILINEAR, nil
		}
		return volume.CUBIC, nil
	}
	return volume.NewInterpType(rj.Method)
}

// Validate checks the job has the files and method its kind needs.
func (rj *ResampleJob) Validate() (err error) {
	missing := func(name, val string) error {
		if len(val) == 0 {
			return fmt.Errorf("%w: %s job needs %s", utils.ErrInvalidInput, rj.Kind, name)
		}
		return nil
	}
	check := func(names ...string) error {
		vals := map[string]string{
			"Input": rj.Input, "Output": rj.Output,
			"CurrentSphere": rj.CurrentSphere, "NewSphere": rj.NewSphere,
			"Reference": rj.Reference, "CurrentParcels": rj.CurrentParcels, "NewParcels": rj.NewParcels,
		}
		for _, name := range names {
			if err := missing(name, vals[name]); err != nil {
				return err
			}
		}
		return nil
	}
	switch rj.Kind {
	case SurfaceJob, MetricJob, LabelJob:
		if err = check("Input", "Output", "CurrentSphere", "NewSphere"); err != nil {
			return
		}
		if _, err = rj.SurfaceMethod(); err != nil {
			return
		}
		if (len(rj.CurrentArea) == 0) != (len(rj.NewArea) == 0) {
			return fmt.Errorf("%w: area surfaces must be given in pairs", utils.ErrInvalidInput)
		}
		if (len(rj.CurrentAreaMetric) == 0) != (len(rj.NewAreaMetric) == 0) {
			return fmt.Errorf("%w: area metrics must be given in pairs", utils.ErrInvalidInput)
		}
		if len(rj.CurrentArea) != 0 && len(rj.CurrentAreaMetric) != 0 {
			return fmt.Errorf("%w: give area surfaces or area metrics, not both", utils.ErrInvalidInput)
		}
		if len(rj.WeightsIn) != 0 && len(rj.WeightsOut) != 0 {
			return fmt.Errorf("%w: give WeightsIn or WeightsOut, not both", utils.ErrInvalidInput)
		}
	case CutSurfaceJob:
		if err = check("Input", "Output", "CurrentSphere", "NewSphere"); err != nil {
			return
		}
	case VolumeJob, VolumeLabelJob:
		if err = check("Input", "Output", "Reference"); err != nil {
			return
		}
		if _, err = rj.InterpMethod(); err != nil {
			return
		}
		for _, ts := range rj.Transforms {
			switch strings.ToLower(ts.Type) {
			case "affine", "series", "warpfield":
			default:
				return fmt.Errorf("%w: unknown transform type %q", utils.ErrInvalidInput, ts.Type)
			}
			if len(ts.File) == 0 {
				return fmt.Errorf("%w: %s transform has no file", utils.ErrInvalidInput, ts.Type)
			}
		}
	case VolumeParcelJob:
		if err = check("Input", "Output", "CurrentParcels", "NewParcels"); err != nil {
			return
		}
		if rj.Kernel <= 0 {
			return fmt.Errorf("%w: parcel resampling needs a positive Kernel", utils.ErrInvalidInput)
		}
	default:
		return fmt.Errorf("%w: unknown job kind %q", utils.ErrInvalidInput, rj.Kind)
	}
	return
}

func (rj *ResampleJob) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", rj.Title)
	fmt.Printf("[%s]\t\t= Kind\n", rj.Kind)
	if len(rj.Method) != 0 {
		fmt.Printf("[%s]\t\t= Method\n", rj.Method)
	}
	fmt.Printf("%s\t= Input\n", rj.Input)
	fmt.Printf("%s\t= Output\n", rj.Output)
	if rj.Kind.IsSurface() {
		fmt.Printf("%s\t= Current Sphere\n", rj.CurrentSphere)
		fmt.Printf("%s\t= New Sphere\n", rj.NewSphere)
		if rj.Kind != CutSurfaceJob {
			fmt.Printf("[%v]\t\t= Largest\n", rj.Largest)
		}
		if len(rj.WeightsIn) != 0 {
			fmt.Printf("%s\t= Weights In\n", rj.WeightsIn)
		}
		if len(rj.WeightsOut) != 0 {
			fmt.Printf("%s\t= Weights Out\n", rj.WeightsOut)
		}
		return
	}
	switch rj.Kind {
	case VolumeJob, VolumeLabelJob:
		fmt.Printf("%s\t= Reference\n", rj.Reference)
		for i, ts := range rj.Transforms {
			fmt.Printf("Transforms[%d] = %s %s\n", i, ts.Type, ts.File)
		}
		if rj.Kind == VolumeJob {
			fmt.Printf("%8.5f\t\t= Background\n", rj.Background)
		}
	case VolumeParcelJob:
		fmt.Printf("%s\t= Current Parcels\n", rj.CurrentParcels)
		fmt.Printf("%s\t= New Parcels\n", rj.NewParcels)
		fmt.Printf("[%v]\t\t= Fix Zeros\n", rj.FixZeros)
		fmt.Printf("[%v]\t\t= Generic\n", rj.Generic)
		fmt.Printf("[%d]\t\t\t= Subvolume\n", rj.SubvolumeIndex())
	}
	if rj.Kernel > 0 {
		fmt.Printf("%8.5f\t\t= Kernel (FWHM: %v)\n", rj.Kernel, rj.FWHM)
	}
}
