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

// scan returns every trace index that could plausibly be the first execution
// of the model-space address entry under some unknown slide: the recorded
// address must share entry's page offset (slides are page-aligned), and the
// step into it must be the start of the trace or a jump longer than
// threshold, so mid-block fallthrough addresses don't qualify.
func (d *Detector) scan(entry, threshold uint64) []int {
	var indices []int
	for i := 0; i < d.trace.Len(); i++ {
		addr := d.trace.At(i)
		if (addr-entry)&(pageSize-1) != 0 {
			continue
		}
		if i == 0 || absDiff(d.trace.At(i-1), addr) > threshold {
			indices = append(indices, i)
		}
	}
	return indices
}
