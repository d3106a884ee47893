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

package tracealign

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-kit/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	manifest := filepath.Join(dir, "model.yaml")
	require.NoError(t, os.WriteFile(manifest, []byte(`
modules:
  - name: libfoo.so
    min_addr: 0x400000
    max_addr: 0x402000
    position_independent: true
    initializers: [0x401000]
`), 0o644))

	tracePath := filepath.Join(dir, "trace.txt")
	require.NoError(t, os.WriteFile(tracePath, []byte("0x100\n0x405000\n0x500000\n"), 0o644))

	var out bytes.Buffer
	err := Run(
		context.Background(),
		log.NewNopLogger(),
		prometheus.NewRegistry(),
		&Flags{Manifest: manifest, Trace: tracePath},
		&out,
	)
	require.NoError(t, err)
	require.Contains(t, out.String(), "libfoo.so")
	require.Contains(t, out.String(), "0x4000")
}

func TestRunFailsOnAbsentTrace(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	manifest := filepath.Join(dir, "model.yaml")
	require.NoError(t, os.WriteFile(manifest, []byte(`
modules:
  - name: libmissing.so
    min_addr: 0x600000
    max_addr: 0x602000
    position_independent: true
    initializers: [0x601234]
`), 0o644))

	tracePath := filepath.Join(dir, "trace.txt")
	require.NoError(t, os.WriteFile(tracePath, []byte("0x1000\n0x405000\n0x500000\n"), 0o644))

	err := Run(
		context.Background(),
		log.NewNopLogger(),
		prometheus.NewRegistry(),
		&Flags{Manifest: manifest, Trace: tracePath},
		&bytes.Buffer{},
	)
	require.Error(t, err)
}
