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

// Package trace holds the recorded execution trace: an ordered, immutable
// sequence of instruction addresses from a concrete run of the program.
package trace

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Trace is a read-only sequence of executed instruction addresses, one per
// executed instruction or block-entry event, in execution order.
type Trace struct {
	addrs []uint64
}

// New copies addrs into a new Trace. The caller may reuse the slice
// afterwards.
func New(addrs []uint64) *Trace {
	t := &Trace{addrs: make([]uint64, len(addrs))}
	copy(t.addrs, addrs)
	return t
}

// Len returns the number of recorded addresses.
func (t *Trace) Len() int { return len(t.addrs) }

// At returns the address recorded at index i.
func (t *Trace) At(i int) uint64 { return t.addrs[i] }

// FromReader parses a trace from its textual form: one hexadecimal address
// per line, with an optional 0x prefix. Blank lines and lines starting with
// '#' are skipped.
func FromReader(r io.Reader) (*Trace, error) {
	var addrs []uint64
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		addr, err := strconv.ParseUint(strings.TrimPrefix(text, "0x"), 16, 64)
		if err != nil {
			return nil, fmt.Errorf("parse trace line %d: %w", line, err)
		}
		addrs = append(addrs, addr)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read trace: %w", err)
	}
	return &Trace{addrs: addrs}, nil
}
