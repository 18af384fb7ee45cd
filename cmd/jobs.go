package cmd

import (
	"fmt"
	"os"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/notargets/goresample/InputParameters"
	"github.com/notargets/goresample/algorithms"
	"github.com/notargets/goresample/mesh"
	"github.com/notargets/goresample/readfiles"
	"github.com/notargets/goresample/resample"
	"github.com/notargets/goresample/types"
	"github.com/notargets/goresample/utils"
	"github.com/notargets/goresample/volume"
	"github.com/notargets/goresample/xfm"
)

// readJob parses and validates a job file. An empty Kind is taken from the
// command running it.
func readJob(fileName string, kind InputParameters.JobKind) (rj *InputParameters.ResampleJob, err error) {
	var data []byte
	if data, err = os.ReadFile(fileName); err != nil {
		return
	}
	rj = &InputParameters.ResampleJob{}
	if err = rj.Parse(data); err != nil {
		return
	}
	if len(rj.Kind) == 0 {
		rj.Kind = kind
	}
	if rj.Kind != kind {
		err = fmt.Errorf("%w: job file %s is a %s job, not %s", utils.ErrInvalidInput, fileName, rj.Kind, kind)
		return
	}
	err = rj.Validate()
	return
}

func runJob(rj *InputParameters.ResampleJob) error {
	utils.LogPrintf("running %s job %q\n", rj.Kind, rj.Title)
	switch rj.Kind {
	case InputParameters.SurfaceJob, InputParameters.MetricJob, InputParameters.LabelJob:
		return runSurfaceJob(rj)
	case InputParameters.CutSurfaceJob:
		return runCutSurfaceJob(rj)
	case InputParameters.VolumeJob, InputParameters.VolumeLabelJob:
		return runVolumeJob(rj)
	case InputParameters.VolumeParcelJob:
		return runParcelJob(rj)
	}
	return fmt.Errorf("%w: unknown job kind %q", utils.ErrInvalidInput, rj.Kind)
}

func surfaceOptions(rj *InputParameters.ResampleJob) (so algorithms.SurfaceOptions, err error) {
	if so.Method, err = rj.SurfaceMethod(); err != nil {
		return
	}
	so.Largest = rj.Largest
	if len(rj.CurrentArea) != 0 {
		if so.CurrentAreaSurf, err = readfiles.ReadSurface(rj.CurrentArea); err != nil {
			return
		}
		if so.NewAreaSurf, err = readfiles.ReadSurface(rj.NewArea); err != nil {
			return
		}
	}
	if len(rj.CurrentAreaMetric) != 0 {
		if so.CurrentAreas, err = readfiles.ReadROI(rj.CurrentAreaMetric); err != nil {
			return
		}
		if so.NewAreas, err = readfiles.ReadROI(rj.NewAreaMetric); err != nil {
			return
		}
	}
	if len(rj.CurrentROI) != 0 {
		so.CurrentROI, err = readfiles.ReadROI(rj.CurrentROI)
	}
	return
}

// surfaceWeights loads saved weights, or computes and saves them, when the
// job asks for either.
func surfaceWeights(rj *InputParameters.ResampleJob, so *algorithms.SurfaceOptions, curSphere, newSphere *mesh.Surface) (err error) {
	switch {
	case len(rj.WeightsIn) != 0:
		var M utils.CSR
		if M, err = readfiles.ReadWeights(rj.WeightsIn); err != nil {
			return
		}
		so.Weights, err = resample.FromMatrix(M)
	case len(rj.WeightsOut) != 0:
		if so.Weights, err = so.Helper(curSphere.NumberOfVertices(), curSphere, newSphere); err != nil {
			return
		}
		utils.LogPrintf("writing %d weights to %s\n", so.Weights.NumWeights(), rj.WeightsOut)
		err = readfiles.WriteWeights(rj.WeightsOut, so.Weights.Matrix())
	}
	return
}

func runSurfaceJob(rj *InputParameters.ResampleJob) (err error) {
	var (
		curSphere, newSphere *mesh.Surface
		so                   algorithms.SurfaceOptions
		validROI             []float64
	)
	if curSphere, err = readfiles.ReadSurface(rj.CurrentSphere); err != nil {
		return
	}
	if newSphere, err = readfiles.ReadSurface(rj.NewSphere); err != nil {
		return
	}
	if so, err = surfaceOptions(rj); err != nil {
		return
	}
	if err = surfaceWeights(rj, &so, curSphere, newSphere); err != nil {
		return
	}
	switch rj.Kind {
	case InputParameters.SurfaceJob:
		var surf, R *mesh.Surface
		if surf, err = readfiles.ReadSurface(rj.Input); err != nil {
			return
		}
		if R, err = algorithms.SurfaceResample(surf, curSphere, newSphere, so); err != nil {
			return
		}
		return readfiles.WriteSurface(rj.Output, R)
	case InputParameters.MetricJob:
		var m, R *types.Metric
		if m, err = readfiles.ReadMetric(rj.Input); err != nil {
			return
		}
		if R, validROI, err = algorithms.MetricResample(m, curSphere, newSphere, so); err != nil {
			return
		}
		if err = readfiles.WriteMetric(rj.Output, R); err != nil {
			return
		}
	case InputParameters.LabelJob:
		var l, R *types.LabelColumns
		if l, err = readfiles.ReadLabels(rj.Input); err != nil {
			return
		}
		if R, validROI, err = algorithms.LabelResample(l, curSphere, newSphere, so); err != nil {
			return
		}
		if err = readfiles.WriteLabels(rj.Output, R); err != nil {
			return
		}
	}
	if len(rj.ValidROIOut) != 0 && validROI != nil {
		roi := &types.Metric{Columns: [][]float64{validROI}, ColumnNames: []string{"valid roi"}}
		err = readfiles.WriteMetric(rj.ValidROIOut, roi)
	}
	return
}

func runCutSurfaceJob(rj *InputParameters.ResampleJob) (err error) {
	var cut, curSphere, newSphere, R *mesh.Surface
	if cut, err = readfiles.ReadSurface(rj.Input); err != nil {
		return
	}
	if curSphere, err = readfiles.ReadSurface(rj.CurrentSphere); err != nil {
		return
	}
	if newSphere, err = readfiles.ReadSurface(rj.NewSphere); err != nil {
		return
	}
	if R, err = algorithms.CutSurfaceResample(cut, curSphere, newSphere); err != nil {
		return
	}
	return readfiles.WriteSurface(rj.Output, R)
}

// readStack builds the transform stack in the order the job lists it.
func readStack(specs []InputParameters.TransformSpec) (s *xfm.Stack, err error) {
	s = xfm.NewStack()
	for _, ts := range specs {
		var x xfm.Xfm
		switch strings.ToLower(ts.Type) {
		case "affine":
			var A *mat.Dense
			if A, err = readfiles.ReadAffine(ts.File); err != nil {
				return
			}
			x, err = xfm.NewAffine(A)
		case "series":
			var Ms []mat.Matrix
			if Ms, err = readfiles.ReadAffineSeries(ts.File); err != nil {
				return
			}
			x, err = xfm.NewAffineSeries(Ms)
		case "warpfield":
			var field *volume.Volume
			if field, err = readfiles.ReadVolume(ts.File); err != nil {
				return
			}
			x, err = xfm.NewWarpfield(field)
		default:
			err = fmt.Errorf("%w: unknown transform type %q", utils.ErrInvalidInput, ts.Type)
		}
		if err != nil {
			return
		}
		s.Push(x)
	}
	for n := 0; n < s.Len(); n++ {
		utils.LogPrintf("transform %d of %d: %s\n", n+1, s.Len(), s.Stage(n).Type)
	}
	return
}

func runVolumeJob(rj *InputParameters.ResampleJob) (err error) {
	var (
		in, ref, R *volume.Volume
		stack      *xfm.Stack
		method     volume.InterpType
	)
	if method, err = rj.InterpMethod(); err != nil {
		return
	}
	if in, err = readfiles.ReadVolume(rj.Input); err != nil {
		return
	}
	if ref, err = readfiles.ReadVolume(rj.Reference); err != nil {
		return
	}
	if stack, err = readStack(rj.Transforms); err != nil {
		return
	}
	if rj.Kind == InputParameters.VolumeLabelJob {
		kernel := rj.Kernel
		if rj.FWHM {
			kernel = volume.FWHMToSigma(kernel)
		}
		R, err = algorithms.VolumeLabelResample(in, stack, ref.Space, method, kernel)
	} else {
		R, err = algorithms.VolumeResample(in, stack, ref.Space, method, rj.Background)
	}
	if err != nil {
		return
	}
	return writeVolume(rj.Output, R)
}

func writeVolume(fileName string, R *volume.Volume) error {
	utils.LogPrintf("writing volume %v (i, j, k, maps, components) to %s\n", R.Dimensions(), fileName)
	return readfiles.WriteVolume(fileName, R)
}

func runParcelJob(rj *InputParameters.ResampleJob) (err error) {
	var in, curLabel, newLabel, R *volume.Volume
	if in, err = readfiles.ReadVolume(rj.Input); err != nil {
		return
	}
	if curLabel, err = readfiles.ReadVolume(rj.CurrentParcels); err != nil {
		return
	}
	if newLabel, err = readfiles.ReadVolume(rj.NewParcels); err != nil {
		return
	}
	po := algorithms.ParcelOptions{
		FixZeros:  rj.FixZeros,
		FWHM:      rj.FWHM,
		Subvolume: rj.SubvolumeIndex(),
	}
	resampleParcels := algorithms.VolumeParcelResampling
	if rj.Generic {
		resampleParcels = algorithms.VolumeParcelResamplingGeneric
	}
	if R, err = resampleParcels(in, curLabel, newLabel, rj.Kernel, po); err != nil {
		return
	}
	return writeVolume(rj.Output, R)
}
