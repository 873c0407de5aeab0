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

package decode

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wutthichai46/neural-speed/nserrors"
)

// yamlConfig is Config's on-disk shape: spec.md §6's runtime parameters,
// expressed with yaml tags (grounded on inference-sim's yaml.v3-tagged
// WorkloadSpec convention) so a CLI front-end can ship a config file instead
// of a long flag list.
type yamlConfig struct {
	CtxSize           int     `yaml:"ctx_size"`
	BatchSizeTruncate int     `yaml:"batch_size_truncate"`
	Threads           int     `yaml:"threads"`
	NPredict          int     `yaml:"n_predict"`
	Seed              int64   `yaml:"seed"`
	Temperature       float32 `yaml:"temperature"`
	TopK              int     `yaml:"top_k"`
	TopP              float32 `yaml:"top_p"`
	RepeatPenalty     float32 `yaml:"repeat_penalty"`
	Keep              int     `yaml:"keep"`
	ShiftRopedK       bool    `yaml:"shift_roped_k"`
	CollectLogits     bool    `yaml:"collect_logits"`
	NumericGuard      bool    `yaml:"numeric_guard"`
}

// LoadConfig reads a YAML runtime-parameter file (spec.md §6) into a Config.
// Zero-valued fields not present in the file keep Go's zero value; callers
// wanting defaults should start from DefaultConfig and override from there.
func LoadConfig(path string) (Config, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return Config{}, nserrors.Newf(nserrors.ResourceExhausted, "decode.LoadConfig", err, "reading %s", path)
	}
	var y yamlConfig
	if err := yaml.Unmarshal(buf, &y); err != nil {
		return Config{}, nserrors.Newf(nserrors.InvalidConfiguration, "decode.LoadConfig", err, "parsing %s", path)
	}
	return Config(y), nil
}

// DefaultConfig returns the runtime parameter set used when no config file
// is supplied: single-threaded, unlimited n_predict, greedy sampling
// disabled in favor of a mild temperature, repeat penalty off.
func DefaultConfig() Config {
	return Config{
		CtxSize:           2048,
		BatchSizeTruncate: 512,
		Threads:           1,
		NPredict:          -1,
		Seed:              -1,
		Temperature:       0.8,
		TopK:              40,
		TopP:              0.95,
		RepeatPenalty:     1.0,
		Keep:              -1,
	}
}
