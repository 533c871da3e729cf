// Package dispatch maps runtime node types to handlers for one action kind.
//
// A Table is populated during the action kind's one-time class setup with
// AddMethod and then sealed. Resolve returns the handler registered for the
// exact type, else the one registered for the nearest ancestor, else reports
// that no handler applies. Because the hierarchy is single-inheritance, the
// nearest ancestor is always unique.
//
// # Sealing
//
// Setup and use are two phases. A table leaves setup on an explicit Seal or
// on its first Resolve. After that, AddMethod fails with a *SealError unless
// the table was built WithLateRegistration, in which case the explicit
// entries are copied into a new snapshot and the resolution cache starts
// empty. WithStrictSeal makes a Resolve on an unsealed table panic instead of
// sealing it.
//
// # Memoisation
//
// Each snapshot carries a cache from type to resolution, including negative
// results. Sealed snapshots are immutable, so the read path takes no lock.
//
// # Inheritance
//
// NewChild creates the table of a derived action kind. At seal time the
// child starts from the parent's explicit entries and overrides them with its
// own.
package dispatch
