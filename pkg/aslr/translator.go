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

	"github.com/A-Dorri/tracealign/pkg/loader"
)

// ToModelAddress translates a trace-space address into model space. If mod
// is nil the owning module is inferred from the slide table: a resolved
// module owns the address if it contains the address once slid back into
// model space.
func (d *Detector) ToModelAddress(traceAddr uint64, mod loader.Module) (uint64, error) {
	if mod == nil {
		for m, s := range d.slides {
			if m.Contains(traceAddr - uint64(s)) {
				return traceAddr - uint64(s), nil
			}
		}
		return 0, fmt.Errorf("%w: trace address %#x", ErrNoOwningModule, traceAddr)
	}
	s, ok := d.slides[mod]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnresolvedModule, mod.Name())
	}
	return traceAddr - uint64(s), nil
}

// ToTraceAddress translates a model-space address into trace space. If mod
// is nil the owning module is inferred by containment in model space.
func (d *Detector) ToTraceAddress(modelAddr uint64, mod loader.Module) (uint64, error) {
	if mod == nil {
		if mod = d.loader.FindModuleContaining(modelAddr); mod == nil {
			return 0, fmt.Errorf("%w: model address %#x", ErrNoOwningModule, modelAddr)
		}
	}
	s, ok := d.slides[mod]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnresolvedModule, mod.Name())
	}
	return modelAddr + uint64(s), nil
}
