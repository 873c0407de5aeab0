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

	"github.com/wutthichai46/neural-speed/decode"
	"github.com/wutthichai46/neural-speed/graph"
	"github.com/wutthichai46/neural-speed/modelfile"
	"github.com/wutthichai46/neural-speed/tokenizer"
)

var (
	decodeModelPath  string
	decodeConfigPath string
	decodePrompt     string
)

var decodeCmd = &cobra.Command{
	Use:   "decode",
	Short: "Run prefill + incremental decode over a prompt and print sampled tokens",
	RunE: func(cmd *cobra.Command, args []string) error {
		model, err := modelfile.Open(decodeModelPath)
		if err != nil {
			return err
		}
		defer model.Close()

		cfg := decode.DefaultConfig()
		if decodeConfigPath != "" {
			cfg, err = decode.LoadConfig(decodeConfigPath)
			if err != nil {
				return err
			}
		}

		arch, err := graph.ConfigForArchTag(model.Hyper.ArchTag)
		if err != nil {
			return err
		}

		vocab := make([]string, len(model.Tokens))
		for i, t := range model.Tokens {
			vocab[i] = t.Text
		}
		tok := tokenizer.NewVocabTokenizer(vocab, int32(len(vocab)-1))

		sess, err := decode.NewSession(model, arch, cfg, tok)
		if err != nil {
			return err
		}
		defer sess.Release()

		promptIDs, err := tok.Encode(decodePrompt)
		if err != nil {
			return err
		}
		if err := sess.Prefill(promptIDs); err != nil {
			return err
		}

		var produced []int32
		for sess.State() == decode.Decode {
			next, stop, err := sess.Step()
			if err != nil {
				return err
			}
			produced = append(produced, next)
			if stop {
				break
			}
		}

		text, err := tok.Decode(produced)
		if err != nil {
			return err
		}
		fmt.Println(text)
		return nil
	},
}

func init() {
	decodeCmd.Flags().StringVar(&decodeModelPath, "model", "", "model file path")
	decodeCmd.Flags().StringVar(&decodeConfigPath, "config", "", "YAML runtime-parameter file (spec.md §6)")
	decodeCmd.Flags().StringVar(&decodePrompt, "prompt", "", "prompt text")
	decodeCmd.MarkFlagRequired("model")
	decodeCmd.MarkFlagRequired("prompt")
}
