// Copyright 2026 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/gorse-io/gorse-als/base/log"
	"github.com/gorse-io/gorse-als/cmd/version"
	"github.com/gorse-io/gorse-als/config"
	"github.com/gorse-io/gorse-als/engine"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

var rootCommand = &cobra.Command{
	Use:   "gorse-als",
	Short: "Movie recommendations by ALS matrix factorization.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		debug, _ := cmd.Flags().GetBool("debug")
		log.SetLogger(cmd.Flags(), debug)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = log.Logger().Sync()
	},
}

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Search ALS hyper-parameters, evaluate the best model and recommend movies to a user.",
	Run: func(cmd *cobra.Command, args []string) {
		conf := loadConfig(cmd.Flags())
		bar := newSearchBar(os.Stderr)
		session, err := engine.Open(conf, engine.WithListener(bar.Listen))
		if err != nil {
			log.Logger().Fatal("failed to open session", zap.Error(err))
		}
		defer session.Close()
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		report, err := engine.Run(ctx, session)
		if err != nil {
			log.Logger().Fatal("failed to run", zap.Error(err))
		}
		renderReport(os.Stdout, report)
	},
}

var describeCommand = &cobra.Command{
	Use:   "describe",
	Short: "Show the first rows and the size of every input table.",
	Run: func(cmd *cobra.Command, args []string) {
		conf := loadConfig(cmd.Flags())
		n, _ := cmd.Flags().GetInt("n")
		session, err := engine.Open(conf)
		if err != nil {
			log.Logger().Fatal("failed to open session", zap.Error(err))
		}
		defer session.Close()
		summaries, err := engine.Describe(session, n)
		if err != nil {
			log.Logger().Fatal("failed to describe tables", zap.Error(err))
		}
		renderSummaries(os.Stdout, summaries)
	},
}

var versionCommand = &cobra.Command{
	Use:   "version",
	Short: "Show the version of gorse-als.",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.BuildInfo())
	},
}

// loadConfig loads the configuration file and applies flags set on the command line.
func loadConfig(flagSet *pflag.FlagSet) *config.Config {
	configPath, _ := flagSet.GetString("config")
	log.Logger().Info("load config", zap.String("config", configPath))
	conf, err := config.LoadConfig(configPath)
	if err != nil {
		log.Logger().Fatal("failed to load config", zap.Error(err))
	}
	if err = applyFlags(conf, flagSet); err != nil {
		log.Logger().Fatal("invalid flags", zap.Error(err))
	}
	return conf
}

func applyFlags(conf *config.Config, flagSet *pflag.FlagSet) error {
	if flagSet.Changed("data-dir") {
		conf.Data.Dir, _ = flagSet.GetString("data-dir")
	}
	if flagSet.Changed("user-id") {
		conf.Recommend.UserId, _ = flagSet.GetInt32("user-id")
	}
	if flagSet.Changed("threshold") {
		conf.Recommend.Threshold, _ = flagSet.GetFloat32("threshold")
	}
	if flagSet.Changed("top-k") {
		conf.Recommend.TopK, _ = flagSet.GetInt("top-k")
	}
	if flagSet.Changed("jobs") {
		conf.Search.Jobs, _ = flagSet.GetInt("jobs")
	}
	if flagSet.Changed("fit-jobs") {
		conf.Search.FitJobs, _ = flagSet.GetInt("fit-jobs")
	}
	return conf.Validate()
}

func init() {
	log.AddFlags(rootCommand.PersistentFlags())
	rootCommand.PersistentFlags().Bool("debug", false, "use debug log mode")
	rootCommand.PersistentFlags().StringP("config", "c", "", "configuration file path")
	rootCommand.PersistentFlags().String("data-dir", "", "directory containing the input files")
	runCommand.Flags().Int32("user-id", 0, "user to recommend movies to")
	runCommand.Flags().Float32("threshold", 0, "minimum prediction (exclusive) of recommended movies")
	runCommand.Flags().Int("top-k", 0, "number of recommendations to show, 0 shows all")
	runCommand.Flags().Int("jobs", 1, "number of candidates trained concurrently")
	runCommand.Flags().Int("fit-jobs", 1, "number of goroutines used to train one candidate")
	describeCommand.Flags().IntP("n", "n", 20, "number of rows to show")
	rootCommand.AddCommand(runCommand, describeCommand, versionCommand)
}

func main() {
	if err := rootCommand.Execute(); err != nil {
		log.Logger().Fatal("failed to execute command", zap.Error(err))
	}
}
