// Package rtype implements the runtime type registry used by scene nodes and
// actions.
//
// Every node kind and action kind registers a Type at class-setup time. Types
// form a single-inheritance forest: each Type has exactly one parent, or none
// for a root. The registry supports the queries traversal dispatch needs:
// equality by identity, lookup by name, and ancestor tests.
//
// # Identity
//
// A Type is a small value handle to an immutable descriptor. Descriptors get
// integer identities from 1 upward in registration order. Identity 0 belongs
// to the bad type, which is also the zero Type:
//
//	var t rtype.Type   // t.IsBad() == true
//
// Type names are interned (see package name), so name comparison inside the
// registry is handle comparison.
//
// # Registration
//
// CreateType is idempotent for a repeated (name, parent) pair, which lets
// class setup run more than once. Registering an existing name under a
// different parent fails with a *DuplicateTypeError.
//
// # Concurrency
//
// Registration holds the registry's lock.Mutex for the duration of the
// insert. Descriptors are published only after they are complete and are
// never mutated afterwards, so every read-only query runs without the lock.
//
// # Lifecycle
//
// New creates an isolated registry. The process-wide registry is created by
// Init (or on first use through Default) and dropped by Shutdown, which is
// meant for process teardown and tests only.
package rtype
