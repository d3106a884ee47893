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

// Package aslr reconciles the address space of a recorded execution trace
// with the address space of a static program model. Each loaded module may
// have been placed at a randomized base in the traced run, while the model
// loads it wherever it likes; the difference is a constant per-module offset
// called the slide, with
//
//	model_address = trace_address - slide
//	trace_address = model_address + slide
//
// The Detector recovers slides from initializer executions visible in the
// trace, translates addresses between the two spaces, and checks consistency
// while the spaces are walked in lockstep.
package aslr

import (
	"fmt"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/exp/maps"

	"github.com/A-Dorri/tracealign/pkg/lifter"
	"github.com/A-Dorri/tracealign/pkg/loader"
	"github.com/A-Dorri/tracealign/pkg/trace"
)

// Slide is the signed offset between a module's trace-space and model-space
// base addresses. Address arithmetic uses two's-complement wraparound, so a
// negative slide subtracts cleanly from uint64 addresses.
type Slide int64

const (
	pageSize = 0x1000

	// Adaptive search bounds. A ~256KB threshold cheaply catches
	// well-isolated inter-module transitions typical of dynamic-linker and
	// initializer calls; halving trades precision for recall on noisier
	// traces, bounded at a page-scale floor.
	initialThreshold = 0x40000
	minThreshold     = 0x2000
)

type metrics struct {
	scanPasses      prometheus.Counter
	resolutions     *prometheus.CounterVec
	lazyResolutions prometheus.Counter
	desyncs         prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) *metrics {
	return &metrics{
		scanPasses: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "tracealign_scan_passes_total",
			Help: "Total number of trace scan passes run by the adaptive slide search.",
		}),
		resolutions: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "tracealign_module_resolutions_total",
			Help: "Total number of per-module slide resolutions by outcome.",
		}, []string{"outcome"}),
		lazyResolutions: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "tracealign_lazy_resolutions_total",
			Help: "Total number of slides recorded lazily during lockstep comparison.",
		}),
		desyncs: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "tracealign_trace_desyncs_total",
			Help: "Total number of detected trace/model desynchronizations.",
		}),
	}
}

// Detector owns the slide table for one reconciliation session. It is not
// safe for concurrent use; callers needing shared access must serialize
// externally.
type Detector struct {
	logger log.Logger

	trace  *trace.Trace
	loader loader.Loader
	lifter lifter.Lifter

	indirectJump IndirectJumpPolicy

	slides map[loader.Module]Slide

	metrics *metrics
}

// Option configures a Detector.
type Option func(*Detector)

// WithIndirectJumpPolicy replaces the heuristic used to validate candidates
// whose blocks have no statically resolvable successors.
func WithIndirectJumpPolicy(p IndirectJumpPolicy) Option {
	return func(d *Detector) {
		d.indirectJump = p
	}
}

// New returns a Detector over the given trace and collaborators. Call
// ResolveAllSlides once before translating addresses.
func New(
	logger log.Logger,
	reg prometheus.Registerer,
	tr *trace.Trace,
	ld loader.Loader,
	lf lifter.Lifter,
	opts ...Option,
) *Detector {
	d := &Detector{
		logger:       logger,
		trace:        tr,
		loader:       ld,
		lifter:       lf,
		indirectJump: LargeJumpHeuristic,
		slides:       map[loader.Module]Slide{},
		metrics:      newMetrics(reg),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Slides returns a copy of the current slide table.
func (d *Detector) Slides() map[loader.Module]Slide {
	return maps.Clone(d.slides)
}

// ResolveAllSlides establishes the slide of every module enumerated by the
// loader. It fails on the first module whose trace evidence is absent or
// ambiguous; modules without initializer evidence are left unresolved and
// may still be picked up lazily by Compare.
func (d *Detector) ResolveAllSlides() error {
	for _, mod := range d.loader.Modules() {
		// Loader bookkeeping objects are not backed by real code.
		if mod.Pseudo() {
			continue
		}
		if err := d.resolveModule(mod); err != nil {
			return err
		}
	}
	return nil
}

func (d *Detector) resolveModule(mod loader.Module) error {
	// Non-relocatable modules are loaded where they were linked.
	if !mod.PositionIndependent() {
		d.setSlide(mod, 0)
		return nil
	}

	// A pinned base was chosen to match the traced run.
	if mod.PinnedBase() {
		level.Info(d.logger).Log(
			"msg", "assuming module is loaded at the address matching the trace",
			"module", mod.Name(),
		)
		d.setSlide(mod, 0)
		return nil
	}

	// Each initializer must have run under the same slide; intersecting the
	// per-initializer candidate sets cancels out the noise of the heuristic
	// search.
	entries := append([]uint64(nil), mod.Initializers()...)
	if mod.IsMainModule() {
		entries = append(entries, mod.EntryPoint())
	}

	var possibilities map[Slide]struct{}
	for _, entry := range entries {
		slides := d.locateEntryPoint(entry)
		if possibilities == nil {
			possibilities = slides
			continue
		}
		for s := range possibilities {
			if _, ok := slides[s]; !ok {
				delete(possibilities, s)
			}
		}
	}

	if possibilities == nil {
		level.Debug(d.logger).Log(
			"msg", "module has no initializer evidence, leaving unresolved",
			"module", mod.Name(),
		)
		d.metrics.resolutions.WithLabelValues("unresolved").Inc()
		return nil
	}

	switch len(possibilities) {
	case 0:
		d.metrics.resolutions.WithLabelValues("absent").Inc()
		return fmt.Errorf("%w: %s", ErrAbsentTrace, mod.Name())
	case 1:
		for s := range possibilities {
			d.setSlide(mod, s)
		}
		return nil
	default:
		d.metrics.resolutions.WithLabelValues("ambiguous").Inc()
		return fmt.Errorf("%w: %s: %d consistent offsets", ErrAmbiguousSlide, mod.Name(), len(possibilities))
	}
}

func (d *Detector) setSlide(mod loader.Module, s Slide) {
	d.slides[mod] = s
	d.metrics.resolutions.WithLabelValues("resolved").Inc()
	level.Debug(d.logger).Log("msg", "resolved module slide", "module", mod.Name(), "slide", int64(s))
}

// locateEntryPoint searches the trace for executions of the model-space
// address entry under some unknown slide, and returns the set of slides
// consistent with the surviving candidates. It scans with a shrinking jump
// threshold until candidates survive validation or the threshold floor is
// reached.
func (d *Detector) locateEntryPoint(entry uint64) map[Slide]struct{} {
	var indices []int
	threshold := uint64(initialThreshold)
	for len(indices) == 0 && threshold > minThreshold {
		d.metrics.scanPasses.Inc()
		indices = indices[:0]
		for _, idx := range d.scan(entry, threshold) {
			if d.validate(entry, idx) {
				indices = append(indices, idx)
			}
		}
		threshold /= 2
	}

	slides := make(map[Slide]struct{}, len(indices))
	for _, idx := range indices {
		slides[Slide(d.trace.At(idx)-entry)] = struct{}{}
	}
	return slides
}

func absDiff(a, b uint64) uint64 {
	if a > b {
		return a - b
	}
	return b - a
}
