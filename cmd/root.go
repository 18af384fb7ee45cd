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
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/goresample/utils"
)

var (
	cfgFile  string
	profiler interface{ Stop() }
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "goresample",
	Short: "Resample surface and volume data between meshes and voxel spaces",
	Long: `Resample surface and volume data between meshes and voxel spaces.

Surface data (coordinates, metrics and labels) moves between registered
spheres by barycentric or area adaptive weights. Volume data moves through a
stack of affine and warpfield transforms onto a reference voxel space.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) (err error) {
		utils.SetParallelDegree(viper.GetInt("procs"))
		if logFile := viper.GetString("log-file"); len(logFile) != 0 {
			if logFile, err = homedir.Expand(logFile); err != nil {
				return
			}
			if err = utils.LogAlsoToFile(logFile); err != nil {
				return
			}
		}
		switch mode := strings.ToLower(viper.GetString("profile")); mode {
		case "":
		case "cpu":
			profiler = profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.Quiet)
		case "mem":
			profiler = profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.Quiet)
		default:
			return fmt.Errorf("unknown profile mode %q, use cpu or mem", mode)
		}
		utils.LogPrintf("%s\n", utils.GetSystemSummary())
		return
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if profiler != nil {
			profiler.Stop()
		}
		utils.LogPrintf("%s\n", utils.GetMemUsage())
		_ = utils.LogClose()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.goresample.yaml)")
	rootCmd.PersistentFlags().Int("procs", 0, "number of parallel workers, 0 uses every CPU")
	rootCmd.PersistentFlags().String("log-file", "", "also write the log to this file")
	rootCmd.PersistentFlags().String("profile", "", "write a cpu or mem profile to the working directory")
	for _, name := range []string{"procs", "log-file", "profile"} {
		_ = viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".goresample" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".goresample")
	}

	viper.SetEnvPrefix("goresample")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}
