// Copyright 2025 go-highway Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cmd is the engine's example/dev front-end: a thin cobra CLI over
// the decode and convert packages, so the quantize-tool surface and the
// decode loop are exercised end-to-end (spec.md §1 carves the "command-line
// front-end" out as a product, but an example CLI demonstrating the library
// API is ambient tooling — see SPEC_FULL.md §6). Grounded on
// inference-sim-inference-sim's cmd/root.go cobra root-command pattern.
package cmd

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/wutthichai46/neural-speed/internal/nslog"
)

var rootCmd = &cobra.Command{
	Use:   "neural-speed",
	Short: "CPU decode engine for quantized transformer inference",
}

var logLevel string

// Execute runs the CLI, exiting nonzero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		nslog.Log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "info", "log level (debug, info, warn, error)")
	cobra.OnInitialize(func() {
		if lvl, err := zerolog.ParseLevel(logLevel); err == nil {
			zerolog.SetGlobalLevel(lvl)
		}
	})
	rootCmd.AddCommand(quantizeCmd)
	rootCmd.AddCommand(decodeCmd)
}
