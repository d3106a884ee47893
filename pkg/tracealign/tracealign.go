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

// Package tracealign wires the reconciliation core into the command line
// driver: it loads a module manifest and a recorded trace, resolves every
// module's slide and renders the slide table.
package tracealign

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/olekukonko/tablewriter"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/exp/maps"

	"github.com/A-Dorri/tracealign/pkg/aslr"
	"github.com/A-Dorri/tracealign/pkg/lifter"
	"github.com/A-Dorri/tracealign/pkg/loader"
	"github.com/A-Dorri/tracealign/pkg/trace"
)

// Flags are the command line flags of the tracealign binary.
type Flags struct {
	Manifest  string `help:"Path to the YAML module manifest describing the program model." required:""`
	Trace     string `help:"Path to the recorded trace, one hexadecimal address per line." required:""`
	LogLevel  string `default:"info" enum:"error,warn,info,debug" help:"Log level."`
	LogFormat string `default:"logfmt" enum:"logfmt,json" help:"Configure if structured logging as JSON or as logfmt"`
}

// Run resolves the slides of every module in the manifest against the trace
// and writes the resulting table to w.
func Run(ctx context.Context, logger log.Logger, reg *prometheus.Registry, flags *Flags, w io.Writer) error {
	manifestContent, err := os.ReadFile(flags.Manifest)
	if err != nil {
		level.Error(logger).Log("msg", "failed to read manifest", "path", flags.Manifest)
		return err
	}
	manifest, err := loader.ParseManifest(manifestContent)
	if err != nil {
		level.Error(logger).Log("msg", "failed to parse manifest", "err", err, "path", flags.Manifest)
		return err
	}

	traceFile, err := os.Open(flags.Trace)
	if err != nil {
		level.Error(logger).Log("msg", "failed to open trace", "path", flags.Trace)
		return err
	}
	defer traceFile.Close()

	tr, err := trace.FromReader(traceFile)
	if err != nil {
		level.Error(logger).Log("msg", "failed to parse trace", "err", err, "path", flags.Trace)
		return err
	}
	level.Info(logger).Log("msg", "trace loaded", "addresses", tr.Len(), "modules", len(manifest.Modules))

	ld := manifest.BuildLoader()
	lf := lifter.NewStaticLifter(manifest.SuccessorMap())

	detector := aslr.New(logger, reg, tr, ld, lf)
	if err := detector.ResolveAllSlides(); err != nil {
		level.Error(logger).Log("msg", "slide resolution failed", "err", err)
		return err
	}

	renderSlides(w, detector.Slides())
	return nil
}

func renderSlides(w io.Writer, slides map[loader.Module]aslr.Slide) {
	mods := maps.Keys(slides)
	sort.Slice(mods, func(i, j int) bool { return mods[i].Name() < mods[j].Name() })

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Module", "Slide"})
	for _, mod := range mods {
		table.Append([]string{mod.Name(), fmt.Sprintf("%#x", slides[mod])})
	}
	table.SetFooter([]string{"resolved", strconv.Itoa(len(mods))})
	table.Render()
}
