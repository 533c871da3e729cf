package rtype

import (
	"sync/atomic"

	"github.com/specialistvlad/scenegrid/internal/lock"
)

var (
	// stdMu serialises creation and teardown of the process-wide registry.
	stdMu lock.Mutex
	std   atomic.Pointer[Registry]
)

// Init creates the process-wide registry if it does not exist yet and
// returns it. Options only apply to the call that creates it.
func Init(opts ...Option) *Registry {
	if r := std.Load(); r != nil {
		return r
	}
	stdMu.Acquire()
	defer stdMu.Release()

	if r := std.Load(); r != nil {
		return r
	}
	r := New(opts...)
	std.Store(r)
	return r
}

// Default returns the process-wide registry, creating it on first use.
func Default() *Registry {
	return Init()
}

// Initialized reports whether the process-wide registry exists.
func Initialized() bool {
	return std.Load() != nil
}

// Shutdown drops the process-wide registry. Types obtained from it remain
// valid values, but the next Default call starts a fresh registry. It must
// not run while other goroutines still use the registry.
func Shutdown() {
	stdMu.Acquire()
	defer stdMu.Release()
	std.Store(nil)
}

// CreateType registers a type in the process-wide registry.
func CreateType(parent Type, typeName string, opts ...TypeOption) (Type, error) {
	return Default().CreateType(parent, typeName, opts...)
}

// FromName looks a type up in the process-wide registry.
func FromName(typeName string) Type {
	return Default().FromName(typeName)
}
