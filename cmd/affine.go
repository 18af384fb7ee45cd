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

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/goresample/readfiles"
	"github.com/notargets/goresample/utils"
	"github.com/notargets/goresample/xfm"
)

// AffineInvertCmd represents the affine-invert command
var AffineInvertCmd = &cobra.Command{
	Use:   "affine-invert",
	Short: "Invert a world affine or an affine series",
	Long: `Invert a world affine, four rows of four numbers in a text file, or with
--series every frame of a YAML affine series. The inverse maps reference
space back to input space, so it can be listed in a transform stack to undo
a registration.`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			err error
		)
		input, _ := cmd.Flags().GetString("input")
		output, _ := cmd.Flags().GetString("output")
		if len(input) == 0 || len(output) == 0 {
			fmt.Printf("error: must supply input and output files (-i, --input, -o, --output)\n")
			os.Exit(1)
		}
		if input, err = homedir.Expand(input); err != nil {
			utils.LogFatalf("error: %s\n", err.Error())
		}
		if output, err = homedir.Expand(output); err != nil {
			utils.LogFatalf("error: %s\n", err.Error())
		}
		series, _ := cmd.Flags().GetBool("series")
		if err = invertAffineFile(input, output, series); err != nil {
			utils.LogFatalf("error: %s\n", err.Error())
		}
	},
}

func invertAffine(M mat.Matrix) (R *mat.Dense, err error) {
	var A, Ainv xfm.Affine
	if A, err = xfm.AffineFrom(M); err != nil {
		return
	}
	if Ainv, err = A.Inverse(); err != nil {
		return
	}
	return Ainv.Matrix(), nil
}

func invertAffineFile(input, output string, series bool) (err error) {
	if !series {
		var A, R *mat.Dense
		if A, err = readfiles.ReadAffine(input); err != nil {
			return
		}
		if R, err = invertAffine(A); err != nil {
			return fmt.Errorf("affine %s: %w", input, err)
		}
		utils.LogPrintf("writing inverse of %s to %s\n", input, output)
		return readfiles.WriteAffine(output, R)
	}
	var Ms []mat.Matrix
	if Ms, err = readfiles.ReadAffineSeries(input); err != nil {
		return
	}
	for n, M := range Ms {
		if Ms[n], err = invertAffine(M); err != nil {
			return fmt.Errorf("affine series %s frame %d: %w", input, n, err)
		}
	}
	utils.LogPrintf("writing inverse of %d frames from %s to %s\n", len(Ms), input, output)
	return readfiles.WriteAffineSeries(output, Ms)
}

func init() {
	rootCmd.AddCommand(AffineInvertCmd)
	AffineInvertCmd.Flags().StringP("input", "i", "", "input affine file")
	AffineInvertCmd.Flags().StringP("output", "o", "", "output affine file")
	AffineInvertCmd.Flags().BoolP("series", "s", false, "files hold a YAML affine series")
}
