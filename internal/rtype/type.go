package rtype

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/scenegrid/internal/name"
)

// ErrAbstractType is returned when instantiating a type without a factory.
var ErrAbstractType = errors.New("rtype: type cannot be instantiated")

// Factory creates an instance of t.
type Factory func(t Type) (any, error)

// descriptor is the registry record behind a Type. It is immutable once
// published.
type descriptor struct {
	id      int
	name    name.Name
	parent  Type
	depth   int
	factory Factory
	reg     *Registry
}

// Type identifies a registered runtime type. The zero value is the bad type.
// Types are comparable; two Types are equal iff they have the same identity.
type Type struct {
	d *descriptor
}

// Bad returns the sentinel that is distinct from every registered type.
func Bad() Type { return Type{} }

// IsBad reports whether t is the bad type.
func (t Type) IsBad() bool { return t.d == nil }

// ID returns the identity of t. The bad type has identity 0.
func (t Type) ID() int {
	if t.d == nil {
		return 0
	}
	return t.d.id
}

// Name returns the interned type name. The bad type has the empty name.
func (t Type) Name() name.Name {
	if t.d == nil {
		return name.Name{}
	}
	return t.d.name
}

// Parent returns the parent type, or the bad type for roots.
func (t Type) Parent() Type {
	if t.d == nil {
		return Type{}
	}
	return t.d.parent
}

// Depth returns the number of parent links between t and its root.
func (t Type) Depth() int {
	if t.d == nil {
		return 0
	}
	return t.d.depth
}

// Registry returns the registry that owns t, or nil for the bad type.
func (t Type) Registry() *Registry {
	if t.d == nil {
		return nil
	}
	return t.d.reg
}

// IsDerivedFrom reports whether ancestor is t itself or lies on t's parent
// chain. It is false whenever either side is the bad type.
func (t Type) IsDerivedFrom(ancestor Type) bool {
	if t.d == nil || ancestor.d == nil {
		return false
	}
	// Depth lets us stop early instead of walking to the root.
	if ancestor.d.depth > t.d.depth {
		return false
	}
	for cur := t; cur.d != nil; cur = cur.d.parent {
		if cur == ancestor {
			return true
		}
	}
	return false
}

// CanCreateInstance reports whether t has a factory.
func (t Type) CanCreateInstance() bool {
	return t.d != nil && t.d.factory != nil
}

// CreateInstance invokes the factory of t.
func (t Type) CreateInstance() (any, error) {
	if !t.CanCreateInstance() {
		return nil, fmt.Errorf("%w: %s", ErrAbstractType, t)
	}
	return t.d.factory(t)
}

// String returns the type name, or "<bad type>".
func (t Type) String() string {
	if t.d == nil {
		return "<bad type>"
	}
	return t.d.name.String()
}
