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

package loader

import (
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

// Manifest is the YAML description of a program model: its loaded modules,
// the optional extern/kernel pseudo-module ranges, and the statically known
// direct-successor edges consumed by the control-flow lifter.
type Manifest struct {
	Modules []ModuleSpec `yaml:"modules"`
	Extern  *RangeSpec   `yaml:"extern,omitempty"`
	Kernel  *RangeSpec   `yaml:"kernel,omitempty"`
	Blocks  []BlockSpec  `yaml:"blocks,omitempty"`
}

// ModuleSpec describes one loaded module in model space.
type ModuleSpec struct {
	Name                string   `yaml:"name"`
	MinAddr             uint64   `yaml:"min_addr"`
	MaxAddr             uint64   `yaml:"max_addr"`
	PositionIndependent bool     `yaml:"position_independent"`
	PinnedBase          bool     `yaml:"pinned_base"`
	Entry               uint64   `yaml:"entry,omitempty"`
	Initializers        []uint64 `yaml:"initializers,omitempty"`
	Main                bool     `yaml:"main,omitempty"`
}

// RangeSpec is a half-open model-space address range.
type RangeSpec struct {
	MinAddr uint64 `yaml:"min_addr"`
	MaxAddr uint64 `yaml:"max_addr"`
}

// BlockSpec lists the statically known direct jump targets of the code block
// starting at Addr.
type BlockSpec struct {
	Addr       uint64   `yaml:"addr"`
	Successors []uint64 `yaml:"successors"`
}

// ParseManifest unmarshals and validates a manifest.
func ParseManifest(content []byte) (*Manifest, error) {
	m := &Manifest{}
	if err := yaml.Unmarshal(content, m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("validate manifest: %w", err)
	}
	return m, nil
}

// Validate returns an error if the manifest is not valid.
func (m *Manifest) Validate() error {
	return validation.ValidateStruct(m,
		validation.Field(&m.Modules, validation.Required),
		validation.Field(&m.Extern),
		validation.Field(&m.Kernel),
	)
}

// Validate returns an error if the module spec is not valid.
func (s ModuleSpec) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Name, validation.Required),
		validation.Field(&s.MaxAddr, validation.Required, validation.By(func(interface{}) error {
			if s.MaxAddr <= s.MinAddr {
				return errors.New("max_addr must be greater than min_addr")
			}
			return nil
		})),
	)
}

// Validate returns an error if the range is not valid.
func (r RangeSpec) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.MaxAddr, validation.Required, validation.By(func(interface{}) error {
			if r.MaxAddr <= r.MinAddr {
				return errors.New("max_addr must be greater than min_addr")
			}
			return nil
		})),
	)
}

// BuildLoader materializes the manifest's module set into a StaticLoader.
func (m *Manifest) BuildLoader() *StaticLoader {
	objs := make([]*Object, 0, len(m.Modules))
	for _, s := range m.Modules {
		objs = append(objs, NewObject(ObjectInfo{
			Name:                s.Name,
			MinAddr:             s.MinAddr,
			MaxAddr:             s.MaxAddr,
			PositionIndependent: s.PositionIndependent,
			PinnedBase:          s.PinnedBase,
			EntryPoint:          s.Entry,
			Initializers:        s.Initializers,
			MainModule:          s.Main,
		}))
	}
	var opts []StaticLoaderOption
	if m.Extern != nil {
		opts = append(opts, WithExternRange(m.Extern.MinAddr, m.Extern.MaxAddr))
	}
	if m.Kernel != nil {
		opts = append(opts, WithKernelRange(m.Kernel.MinAddr, m.Kernel.MaxAddr))
	}
	return NewStaticLoader(objs, opts...)
}

// SuccessorMap flattens the manifest's block list into the lookup table
// consumed by the static lifter.
func (m *Manifest) SuccessorMap() map[uint64][]uint64 {
	succs := make(map[uint64][]uint64, len(m.Blocks))
	for _, b := range m.Blocks {
		succs[b.Addr] = append(succs[b.Addr], b.Successors...)
	}
	return succs
}
