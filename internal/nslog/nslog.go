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

// Package nslog is the engine's structured logger, shared by modelfile,
// decode and convert so every layer reports through the same sink. Grounded
// on itohio-EasyRobot's pkg/logger: a package-level zerolog.Logger writing
// to stderr, rather than a context-threaded logger, since nothing in this
// engine's call graph needs per-request loggers.
package nslog

import (
	"os"

	"github.com/rs/zerolog"
)

// Log is the engine-wide logger. Callers needing a quieter or more verbose
// level adjust zerolog.SetGlobalLevel, same as upstream EasyRobot does.
var Log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).With().Timestamp().Logger()

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if lvl := os.Getenv("NEURAL_SPEED_LOG"); lvl != "" {
		if parsed, err := zerolog.ParseLevel(lvl); err == nil {
			zerolog.SetGlobalLevel(parsed)
			return
		}
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}
