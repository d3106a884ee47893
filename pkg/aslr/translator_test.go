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

	"github.com/A-Dorri/tracealign/pkg/loader"
)

// resolvedFixture returns a detector with libfoo.so resolved at slide 0x4000
// and liblazy.so left unresolved.
func resolvedFixture(t *testing.T) (*Detector, *loader.Object, *loader.Object) {
	t.Helper()

	resolved := loader.NewObject(loader.ObjectInfo{
		Name:                "libfoo.so",
		MinAddr:             0x400000,
		MaxAddr:             0x402000,
		PositionIndependent: true,
		Initializers:        []uint64{0x401000},
	})
	unresolved := loader.NewObject(loader.ObjectInfo{
		Name:                "liblazy.so",
		MinAddr:             0x500000,
		MaxAddr:             0x502000,
		PositionIndependent: true,
	})
	d, _ := testDetector(
		[]uint64{0x100, 0x405000, 0x500000},
		[]*loader.Object{resolved, unresolved},
		nil,
	)
	require.NoError(t, d.ResolveAllSlides())
	require.Equal(t, map[loader.Module]Slide{resolved: 0x4000}, d.Slides())
	return d, resolved, unresolved
}

func TestTranslateRoundTrip(t *testing.T) {
	t.Parallel()

	d, _, _ := resolvedFixture(t)

	traceAddr := uint64(0x405678)
	model, err := d.ToModelAddress(traceAddr, nil)
	require.NoError(t, err)
	require.Equal(t, uint64(0x401678), model)

	back, err := d.ToTraceAddress(model, nil)
	require.NoError(t, err)
	require.Equal(t, traceAddr, back)

	// Translation composed with its inverse is idempotent.
	again, err := d.ToModelAddress(back, nil)
	require.NoError(t, err)
	require.Equal(t, model, again)
}

func TestTranslateExplicitModule(t *testing.T) {
	t.Parallel()

	d, resolved, _ := resolvedFixture(t)

	model, err := d.ToModelAddress(0x405000, resolved)
	require.NoError(t, err)
	require.Equal(t, uint64(0x401000), model)

	traceAddr, err := d.ToTraceAddress(0x401000, resolved)
	require.NoError(t, err)
	require.Equal(t, uint64(0x405000), traceAddr)
}

func TestTranslateUnresolvedModule(t *testing.T) {
	t.Parallel()

	d, _, unresolved := resolvedFixture(t)

	_, err := d.ToModelAddress(0x505000, unresolved)
	require.ErrorIs(t, err, ErrUnresolvedModule)

	_, err = d.ToTraceAddress(0x501000, unresolved)
	require.ErrorIs(t, err, ErrUnresolvedModule)

	// Inference lands on the unresolved module too.
	_, err = d.ToTraceAddress(0x501000, nil)
	require.ErrorIs(t, err, ErrUnresolvedModule)
}

func TestTranslateNoOwningModule(t *testing.T) {
	t.Parallel()

	d, _, _ := resolvedFixture(t)

	_, err := d.ToModelAddress(0xdead0000, nil)
	require.ErrorIs(t, err, ErrNoOwningModule)

	_, err = d.ToTraceAddress(0xdead0000, nil)
	require.ErrorIs(t, err, ErrNoOwningModule)
}
