/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/notargets/goresample/InputParameters"
	"github.com/notargets/goresample/utils"
)

var exampleJobs = map[InputParameters.JobKind]string{
	InputParameters.SurfaceJob: `
########################################
Title: "midthickness to 32k"
Kind: surface
Method: BARYCENTRIC # or ADAP_BARY_AREA
Input: midthickness.164k.yaml
Output: midthickness.32k.yaml
CurrentSphere: sphere.164k.yaml
NewSphere: sphere.32k.yaml
########################################
`,
	InputParameters.CutSurfaceJob: `
########################################
Title: "cut flat map surface to 32k"
Kind: cut-surface
Input: cut.164k.yaml # shares vertices with the current sphere
Output: cut.32k.yaml
CurrentSphere: sphere.164k.yaml
NewSphere: sphere.32k.yaml
########################################
`,
	InputParameters.MetricJob: `
########################################
Title: "thickness to 32k"
Kind: metric
Method: ADAP_BARY_AREA # or BARYCENTRIC
Input: thickness.164k.yaml
Output: thickness.32k.yaml
CurrentSphere: sphere.164k.yaml
NewSphere: sphere.32k.yaml
CurrentArea: midthickness.164k.yaml # area surfaces, or CurrentAreaMetric/NewAreaMetric
NewArea: midthickness.32k.yaml
CurrentROI: medialwall.164k.yaml # optional
ValidROIOut: valid.32k.yaml      # optional
WeightsOut: weights.164k_32k.yaml # optional, or WeightsIn to reuse them
Largest: false
########################################
`,
	InputParameters.LabelJob: `
########################################
Title: "parcels to 32k"
Kind: label
Method: ADAP_BARY_AREA
Input: aparc.164k.yaml
Output: aparc.32k.yaml
CurrentSphere: sphere.164k.yaml
NewSphere: sphere.32k.yaml
Largest: true
########################################
`,
	InputParameters.VolumeJob: `
########################################
Title: "T1 to MNI"
Kind: volume
Method: CUBIC # TRILINEAR or ENCLOSING_VOXEL
Input: T1w.yaml
Output: T1w.mni.yaml
Reference: mni.yaml
Background: 0
Transforms: # applied in order, input space to reference space
- Type: affine    # text file, four rows of four numbers
  File: acpc.txt
- Type: warpfield # three map displacement volume
  File: acpc_to_mni.yaml
########################################
`,
	InputParameters.VolumeLabelJob: `
########################################
Title: "aseg to MNI"
Kind: volume-label
Method: TRILINEAR
Input: aseg.yaml
Output: aseg.mni.yaml
Reference: mni.yaml
Kernel: 2 # optional smoothing of the label masks
FWHM: true
Transforms:
- Type: affine
  File: acpc.txt
########################################
`,
	InputParameters.VolumeParcelJob: `
########################################
Title: "subject parcels to atlas parcels"
Kind: volume-parcel
Input: bold.yaml
Output: bold.atlas.yaml
CurrentParcels: subject.aparc.yaml
NewParcels: atlas.aparc.yaml
Kernel: 2
FWHM: false
FixZeros: true
Subvolume: -1 # -1 for every map
Generic: false # true when the new parcels lie on another voxel grid
########################################
`,
}

func jobCommand(use, short string, kind InputParameters.JobKind) (jc *cobra.Command) {
	jc = &cobra.Command{
		Use:   use,
		Short: short,
		Long:  short + ", as described by a YAML job file",
		Run: func(cmd *cobra.Command, args []string) {
			var (
				err error
				rj  *InputParameters.ResampleJob
			)
			jobFile, _ := cmd.Flags().GetString("inputJobFile")
			rj = processInput(jobFile, kind)
			if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
				rj.Print()
			}
			if err = runJob(rj); err != nil {
				utils.LogFatalf("error: %s\n", err.Error())
			}
		},
	}
	jc.Flags().StringP("inputJobFile", "I", "", "YAML job file")
	jc.Flags().BoolP("verbose", "v", false, "print the job parameters")
	return
}

func processInput(jobFile string, kind InputParameters.JobKind) (rj *InputParameters.ResampleJob) {
	var err error
	if len(jobFile) == 0 {
		err = fmt.Errorf("must supply a job file (-I, --inputJobFile), for example:")
		fmt.Printf("error: %s\n%s", err.Error(), exampleJobs[kind])
		os.Exit(1)
	}
	if rj, err = readJob(jobFile, kind); err != nil {
		fmt.Printf("error: %s\n", err.Error())
		os.Exit(1)
	}
	return
}

var (
	SurfaceResampleCmd      = jobCommand("surface-resample", "Resample surface coordinates onto a new sphere", InputParameters.SurfaceJob)
	SurfaceCutResampleCmd   = jobCommand("surface-cut-resample", "Resample a surface with cuts onto a new sphere", InputParameters.CutSurfaceJob)
	MetricResampleCmd       = jobCommand("metric-resample", "Resample metric columns onto a new sphere", InputParameters.MetricJob)
	LabelResampleCmd        = jobCommand("label-resample", "Resample label columns onto a new sphere", InputParameters.LabelJob)
	VolumeResampleCmd       = jobCommand("volume-resample", "Resample a volume through transforms onto a reference space", InputParameters.VolumeJob)
	VolumeLabelResampleCmd  = jobCommand("volume-label-resample", "Resample a label volume through transforms onto a reference space", InputParameters.VolumeLabelJob)
	VolumeParcelResampleCmd = jobCommand("volume-parcel-resample", "Move volume data between two parcellations", InputParameters.VolumeParcelJob)
)

func init() {
	rootCmd.AddCommand(SurfaceResampleCmd, SurfaceCutResampleCmd, MetricResampleCmd, LabelResampleCmd)
	rootCmd.AddCommand(VolumeResampleCmd, VolumeLabelResampleCmd, VolumeParcelResampleCmd)
}
