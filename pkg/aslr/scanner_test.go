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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScan(t *testing.T) {
	t.Parallel()

	// Index 0 qualifies without a preceding jump; index 2 is entered by a
	// long jump; index 3 shares the page offset but is reached by a short
	// step; index 4 is entered by a medium jump.
	d, _ := testDetector(
		[]uint64{0x401000, 0x401008, 0x985000, 0x986000, 0x9d0000},
		nil,
		nil,
	)

	require.Equal(t, []int{0, 2, 4}, d.scan(0x1000, 0x40000))
	require.Nil(t, d.scan(0x1234, 0x40000))

	// A higher threshold suppresses the shorter jump into index 4.
	require.Equal(t, []int{0, 2}, d.scan(0x1000, 0x100000))
}

func TestValidateRejectsTraceEnd(t *testing.T) {
	t.Parallel()

	d, _ := testDetector([]uint64{0x405000}, nil, nil)
	require.False(t, d.validate(0x401000, 0))
}

func TestValidateDirectSuccessors(t *testing.T) {
	t.Parallel()

	succs := map[uint64][]uint64{0x401000: {0x401020, 0x401080}}
	d, _ := testDetector([]uint64{0x405000, 0x405080}, nil, succs)

	require.True(t, d.validate(0x401000, 0))

	// Without a matching slid successor the candidate is rejected even
	// though the step is large.
	d, _ = testDetector([]uint64{0x405000, 0x415090}, nil, succs)
	require.False(t, d.validate(0x401000, 0))
}

func TestLargeJumpHeuristic(t *testing.T) {
	t.Parallel()

	require.True(t, LargeJumpHeuristic(0x405000, 0x409000))
	require.True(t, LargeJumpHeuristic(0x409000, 0x405000))
	require.False(t, LargeJumpHeuristic(0x405000, 0x405fff))
	require.False(t, LargeJumpHeuristic(0x405000, 0x406000))
}
