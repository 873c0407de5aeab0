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

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wutthichai46/neural-speed/convert"
)

var (
	quantizeIn           string
	quantizeOut          string
	quantizeWeightDtype  string
	quantizeAlgo         string
	quantizeGroupSize    int
	quantizeScaleDtype   string
	quantizeComputeDtype string
)

var quantizeCmd = &cobra.Command{
	Use:   "quantize",
	Short: "Re-quantize a model file's tensors to a new weight format",
	RunE: func(cmd *cobra.Command, args []string) error {
		opt := convert.Options{
			WeightDtype:  quantizeWeightDtype,
			Algo:         quantizeAlgo,
			GroupSize:    quantizeGroupSize,
			ScaleDtype:   quantizeScaleDtype,
			ComputeDtype: quantizeComputeDtype,
		}
		if err := convert.Quantize(quantizeIn, quantizeOut, opt); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", quantizeOut)
		return nil
	},
}

func init() {
	quantizeCmd.Flags().StringVar(&quantizeIn, "in", "", "input model file path")
	quantizeCmd.Flags().StringVar(&quantizeOut, "out", "", "output model file path")
	quantizeCmd.Flags().StringVar(&quantizeWeightDtype, "weight-dtype", "int4", "int4, int8, fp8_e4m3, fp8_e5m2, fp4_e2m1, nf4")
	quantizeCmd.Flags().StringVar(&quantizeAlgo, "algo", "sym", "sym or asym (asym only valid for integer weights)")
	quantizeCmd.Flags().IntVar(&quantizeGroupSize, "group-size", 32, "32, 128, or -1 for per-column")
	quantizeCmd.Flags().StringVar(&quantizeScaleDtype, "scale-dtype", "float32", "scale storage dtype")
	quantizeCmd.Flags().StringVar(&quantizeComputeDtype, "compute-dtype", "float32", "activation compute dtype")
	quantizeCmd.MarkFlagRequired("in")
	quantizeCmd.MarkFlagRequired("out")
}
