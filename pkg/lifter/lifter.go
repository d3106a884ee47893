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

// Package lifter defines the boundary to the control-flow lifter, which
// turns a model-space code address into the statically known direct jump
// targets of the block starting there.
package lifter

// Lifter resolves direct successors of code blocks.
type Lifter interface {
	// Successors returns the statically known direct jump targets of the
	// block starting at addr. An empty result means the block ends in a
	// control transfer with no statically resolvable targets, e.g. an
	// indirect call.
	Successors(addr uint64) []uint64
}

// StaticLifter serves successors from a fixed table, for offline analysis
// and tests.
type StaticLifter struct {
	succs map[uint64][]uint64
}

// NewStaticLifter builds a lifter over the given successor table. The map is
// used as-is and must not be mutated afterwards.
func NewStaticLifter(succs map[uint64][]uint64) *StaticLifter {
	if succs == nil {
		succs = map[uint64][]uint64{}
	}
	return &StaticLifter{succs: succs}
}

func (l *StaticLifter) Successors(addr uint64) []uint64 {
	return l.succs[addr]
}
