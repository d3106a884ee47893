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

// Package loader defines the boundary to the binary loader: the set of
// modules mapped into the program model, their load-time properties, and
// address-containment lookups. The reconciliation core consumes modules
// through the interfaces here; it never creates or destroys them.
package loader

// Module is one loaded binary object in the program model's address space.
// Implementations must be comparable (the reconciliation core uses modules
// as map keys).
type Module interface {
	// Name returns a human-readable identifier for diagnostics.
	Name() string
	// PositionIndependent reports whether the operating system may place
	// the module at a randomized base address.
	PositionIndependent() bool
	// PinnedBase reports whether the model was told to load the module at
	// a specific base address.
	PinnedBase() bool
	// EntryPoint returns the module's entry address in model space. Only
	// meaningful for the main module.
	EntryPoint() uint64
	// Initializers returns the model-space addresses the loader guarantees
	// run early after the module is mapped, in run order.
	Initializers() []uint64
	// IsMainModule reports whether this is the main executable.
	IsMainModule() bool
	// Pseudo reports whether the module is loader bookkeeping (extern or
	// kernel stubs) rather than real loaded code.
	Pseudo() bool
	// Contains reports whether addr falls inside the module's model-space
	// mapping.
	Contains(addr uint64) bool
}

// Loader enumerates the modules of one program model.
type Loader interface {
	// Modules returns all loaded modules, pseudo-modules included.
	Modules() []Module
	// FindModuleContaining returns the module whose model-space mapping
	// contains addr, or nil if no module does.
	FindModuleContaining(addr uint64) Module
	// ExternModule returns the pseudo-module backing unresolved external
	// symbols.
	ExternModule() Module
	// KernelModule returns the pseudo-module backing kernel addresses.
	KernelModule() Module
}

// ObjectInfo describes a static module for NewObject.
type ObjectInfo struct {
	Name                string
	MinAddr             uint64
	MaxAddr             uint64
	PositionIndependent bool
	PinnedBase          bool
	EntryPoint          uint64
	Initializers        []uint64
	MainModule          bool
	PseudoModule        bool
}

// Object is an in-memory Module implementation, used by the static loader,
// the CLI manifest, and tests.
type Object struct {
	info ObjectInfo
}

// NewObject returns an Object with the given properties. The initializer
// slice is copied.
func NewObject(info ObjectInfo) *Object {
	info.Initializers = append([]uint64(nil), info.Initializers...)
	return &Object{info: info}
}

func (o *Object) Name() string              { return o.info.Name }
func (o *Object) PositionIndependent() bool { return o.info.PositionIndependent }
func (o *Object) PinnedBase() bool          { return o.info.PinnedBase }
func (o *Object) EntryPoint() uint64        { return o.info.EntryPoint }
func (o *Object) IsMainModule() bool        { return o.info.MainModule }
func (o *Object) Pseudo() bool              { return o.info.PseudoModule }

func (o *Object) Initializers() []uint64 {
	return append([]uint64(nil), o.info.Initializers...)
}

func (o *Object) Contains(addr uint64) bool {
	return addr >= o.info.MinAddr && addr < o.info.MaxAddr
}

// StaticLoader is a Loader over a fixed set of Objects, plus the two
// well-known pseudo-modules.
type StaticLoader struct {
	modules []Module
	extern  *Object
	kernel  *Object
}

// StaticLoaderOption configures a StaticLoader.
type StaticLoaderOption func(*StaticLoader)

// WithExternRange gives the extern pseudo-module a model-space mapping.
func WithExternRange(minAddr, maxAddr uint64) StaticLoaderOption {
	return func(l *StaticLoader) {
		l.extern.info.MinAddr = minAddr
		l.extern.info.MaxAddr = maxAddr
	}
}

// WithKernelRange gives the kernel pseudo-module a model-space mapping.
func WithKernelRange(minAddr, maxAddr uint64) StaticLoaderOption {
	return func(l *StaticLoader) {
		l.kernel.info.MinAddr = minAddr
		l.kernel.info.MaxAddr = maxAddr
	}
}

// NewStaticLoader builds a loader over objs. The extern and kernel
// pseudo-modules are always present; by default they contain no addresses.
func NewStaticLoader(objs []*Object, opts ...StaticLoaderOption) *StaticLoader {
	l := &StaticLoader{
		extern: NewObject(ObjectInfo{Name: "extern", PseudoModule: true}),
		kernel: NewObject(ObjectInfo{Name: "kernel", PseudoModule: true}),
	}
	for _, opt := range opts {
		opt(l)
	}
	for _, o := range objs {
		l.modules = append(l.modules, o)
	}
	l.modules = append(l.modules, l.extern, l.kernel)
	return l
}

func (l *StaticLoader) Modules() []Module {
	return append([]Module(nil), l.modules...)
}

func (l *StaticLoader) FindModuleContaining(addr uint64) Module {
	for _, m := range l.modules {
		if m.Contains(addr) {
			return m
		}
	}
	return nil
}

func (l *StaticLoader) ExternModule() Module { return l.extern }
func (l *StaticLoader) KernelModule() Module { return l.kernel }
