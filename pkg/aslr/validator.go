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

// IndirectJumpPolicy decides whether the recorded step from one trace
// address to the next is plausible for a block with no statically
// resolvable successors.
type IndirectJumpPolicy func(from, to uint64) bool

// LargeJumpHeuristic accepts steps longer than a page. The intuition is that
// an indirect jump at the first block of an initializer is usually a call
// out to another binary, notably __libc_start_main. Known to be imprecise in
// both directions; the intersection across initializers tolerates that.
func LargeJumpHeuristic(from, to uint64) bool {
	return absDiff(from, to) > pageSize
}

// validate confirms the candidate at trace index idx for the model-space
// address modelAddr: under the slide the candidate implies, the next
// recorded address must be one of the block's statically known successors,
// or pass the indirect-jump policy when the lifter knows none.
func (d *Detector) validate(modelAddr uint64, idx int) bool {
	// A candidate at the end of the trace has no recorded successor to
	// check against.
	if idx+1 >= d.trace.Len() {
		return false
	}
	slide := d.trace.At(idx) - modelAddr
	next := d.trace.At(idx + 1)
	if targets := d.lifter.Successors(modelAddr); len(targets) > 0 {
		for _, t := range targets {
			if t+slide == next {
				return true
			}
		}
		return false
	}
	return d.indirectJump(d.trace.At(idx), next)
}
