// Copyright 2024-2026 The Tracealign Authors
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
	"os"

	"github.com/alecthomas/kong"
	"github.com/common-nighthawk/go-figure"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/A-Dorri/tracealign/pkg/tracealign"
)

func main() {
	ctx := context.Background()
	flags := &tracealign.Flags{}
	kong.Parse(flags)

	banner := figure.NewColorFigure("Tracealign", "roman", "cyan", true)
	banner.Print()

	logger := tracealign.NewLogger(flags.LogLevel, flags.LogFormat, "")

	registry := prometheus.NewRegistry()

	if err := tracealign.Run(ctx, logger, registry, flags, os.Stdout); err != nil {
		level.Error(logger).Log("msg", "program exited with error", "err", err)
		os.Exit(1)
	}
}
