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
	"github.com/spf13/viper"

	"github.com/notargets/goresample/mesh"
	"github.com/notargets/goresample/readfiles"
	"github.com/notargets/goresample/utils"
)

// SphereCmd represents the sphere command
var SphereCmd = &cobra.Command{
	Use:   "sphere",
	Short: "Write a subdivided icosahedron sphere",
	Long: `Write a subdivided icosahedron sphere. A level n sphere has 10*4^n+2
vertices, and its vertices are the leading vertices of every finer level.`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			err error
		)
		output, _ := cmd.Flags().GetString("output")
		if len(output) == 0 {
			fmt.Printf("error: must supply an output file (-o, --output)\n")
			os.Exit(1)
		}
		if output, err = homedir.Expand(output); err != nil {
			utils.LogFatalf("error: %s\n", err.Error())
		}
		if err = writeSphere(output, viper.GetInt("sphere.level"), viper.GetFloat64("sphere.radius")); err != nil {
			utils.LogFatalf("error: %s\n", err.Error())
		}
	},
}

func writeSphere(fileName string, level int, radius float64) (err error) {
	var s *mesh.Surface
	if s, err = mesh.NewIcosphere(level, radius); err != nil {
		return
	}
	utils.LogPrintf("level %d sphere, %d vertices, radius %g, area %.6g\n", level, s.NumberOfVertices(), radius, mesh.TotalArea(s))
	return readfiles.WriteSurface(fileName, s)
}

func init() {
	rootCmd.AddCommand(SphereCmd)
	SphereCmd.Flags().StringP("output", "o", "", "output surface file")
	SphereCmd.Flags().IntP("level", "l", 5, "subdivision level")
	SphereCmd.Flags().Float64P("radius", "r", 100, "sphere radius")
	_ = viper.BindPFlag("sphere.level", SphereCmd.Flags().Lookup("level"))
	_ = viper.BindPFlag("sphere.radius", SphereCmd.Flags().Lookup("radius"))
}
