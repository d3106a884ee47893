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

package aslr

import (
	"fmt"

	"github.com/go-kit/log/level"
)

// Compare checks a trace-space address against a model-space address during
// lockstep execution. Extern and kernel pseudo-addresses never match. For a
// module with a resolved slide the addresses must agree exactly. For a
// module still unresolved, a page-aligned difference is taken as the first
// confident sighting of its slide and recorded for future translations;
// this picks up late-bound libraries whose initializers never showed in the
// trace. Anything else means the trace and model have diverged, which is
// fatal to the replay session.
func (d *Detector) Compare(traceAddr, modelAddr uint64) (bool, error) {
	mod := d.loader.FindModuleContaining(modelAddr)

	switch {
	case mod == d.loader.ExternModule() || mod == d.loader.KernelModule():
		return false, nil
	case mod != nil:
		if s, ok := d.slides[mod]; ok {
			return traceAddr == modelAddr+uint64(s), nil
		}
		if (traceAddr-modelAddr)&(pageSize-1) == 0 {
			s := Slide(traceAddr - modelAddr)
			d.slides[mod] = s
			d.metrics.lazyResolutions.Inc()
			level.Info(d.logger).Log(
				"msg", "resolved module slide during lockstep execution",
				"module", mod.Name(),
				"slide", int64(s),
			)
			return true, nil
		}
		d.metrics.desyncs.Inc()
		return false, fmt.Errorf(
			"%w: jumped into %s; was the same build of this library loaded?",
			ErrTraceDesync, mod.Name(),
		)
	default:
		d.metrics.desyncs.Inc()
		return false, fmt.Errorf(
			"%w: jumped into %#x, where no module is mapped",
			ErrTraceDesync, modelAddr,
		)
	}
}
