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

import "errors"

var (
	// ErrAbsentTrace means the trace contains no internally consistent
	// evidence of a module's initializers running, so no slide can be
	// established for it.
	ErrAbsentTrace = errors.New("trace does not contain module initializers")

	// ErrAmbiguousSlide means the trace is consistent with more than one
	// slide for a module. Better trace data is required; the detector never
	// picks one.
	ErrAmbiguousSlide = errors.New("trace is ambiguous about the module's slide")

	// ErrUnresolvedModule means a translation was requested for a module
	// whose slide has not been established.
	ErrUnresolvedModule = errors.New("module has no resolved slide")

	// ErrNoOwningModule means no known module contains the address, so the
	// owning module could not be inferred.
	ErrNoOwningModule = errors.New("no module contains the address")

	// ErrTraceDesync means a lockstep comparison proved the trace and the
	// program model have diverged. Later trace positions are meaningless
	// without knowing the true divergence point, so this is fatal to the
	// replay session.
	ErrTraceDesync = errors.New("trace desynchronized from the program model")
)
