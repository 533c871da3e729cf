package rtype

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/specialistvlad/scenegrid/internal/lock"
	"github.com/specialistvlad/scenegrid/internal/name"
)

var (
	// ErrEmptyName is returned when a type is registered without a name.
	ErrEmptyName = errors.New("rtype: empty type name")
	// ErrForeignParent is returned when the parent belongs to another registry.
	ErrForeignParent = errors.New("rtype: parent type belongs to another registry")
	// ErrDuplicateType matches every *DuplicateTypeError via errors.Is.
	ErrDuplicateType = errors.New("rtype: duplicate type registration")
)

// DuplicateTypeError reports an attempt to register an existing type name
// under a different parent.
type DuplicateTypeError struct {
	Name      string
	Existing  Type
	Requested Type
}

// Error implements the error interface.
func (e *DuplicateTypeError) Error() string {
	return fmt.Sprintf("rtype: type %q is already registered with parent %s, requested parent %s",
		e.Name, e.Existing.Parent(), e.Requested)
}

// Is makes errors.Is(err, ErrDuplicateType) true.
func (e *DuplicateTypeError) Is(target error) bool {
	return target == ErrDuplicateType
}

// Option configures a Registry.
type Option func(*Registry)

// WithNames sets the intern table used for type names. Defaults to the
// process-wide table.
func WithNames(t *name.Table) Option {
	return func(r *Registry) {
		if t != nil {
			r.names = t
		}
	}
}

// WithLogger sets the logger used for registration events.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// TypeOption configures a single registration.
type TypeOption func(*typeOpts)

type typeOpts struct {
	factory Factory
}

// WithFactory makes the registered type instantiable. When a type is
// registered again, the factory of the first registration is kept.
func WithFactory(f Factory) TypeOption {
	return func(o *typeOpts) { o.factory = f }
}

// Registry holds the type forest. It is safe for concurrent use.
type Registry struct {
	names  *name.Table
	logger *slog.Logger

	// mu serialises registration.
	mu lock.Mutex
	// byName maps name.Name -> *descriptor.
	byName sync.Map
	// all is a growth-only list indexed by id-1. Readers load the header
	// atomically and only ever index below its length.
	all atomic.Pointer[[]*descriptor]
}

// New creates an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		names:  name.Default(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	empty := make([]*descriptor, 0, 64)
	r.all.Store(&empty)
	return r
}

// Names returns the intern table used for type names.
func (r *Registry) Names() *name.Table { return r.names }

// CreateType registers typeName as a child of parent. Pass Bad() as parent
// to register a root. Registering the same name with the same parent again
// returns the existing type.
func (r *Registry) CreateType(parent Type, typeName string, opts ...TypeOption) (Type, error) {
	if typeName == "" {
		return Type{}, ErrEmptyName
	}
	if !parent.IsBad() && parent.d.reg != r {
		return Type{}, fmt.Errorf("%w: %s", ErrForeignParent, parent)
	}

	var o typeOpts
	for _, opt := range opts {
		opt(&o)
	}

	n := r.names.Intern(typeName)
	if v, ok := r.byName.Load(n); ok {
		return matchParent(v.(*descriptor), parent)
	}

	t, created, err := r.register(n, parent, o)
	if err != nil {
		return Type{}, err
	}
	if created {
		r.logger.Debug("Registered runtime type.", "type", typeName, "id", t.ID(), "parent", parent.String())
	}
	return t, nil
}

// MustCreateType is CreateType that panics on error. It is meant for class
// setup, where a conflicting registration is a programming error.
func (r *Registry) MustCreateType(parent Type, typeName string, opts ...TypeOption) Type {
	t, err := r.CreateType(parent, typeName, opts...)
	if err != nil {
		panic(err)
	}
	return t
}

// register performs the insert-if-absent under the registry lock.
func (r *Registry) register(n name.Name, parent Type, o typeOpts) (Type, bool, error) {
	r.mu.Acquire()
	defer r.mu.Release()

	// Re-check: another goroutine may have won the race.
	if v, ok := r.byName.Load(n); ok {
		t, err := matchParent(v.(*descriptor), parent)
		return t, false, err
	}

	prev := *r.all.Load()
	d := &descriptor{
		id:      len(prev) + 1,
		name:    n,
		parent:  parent,
		factory: o.factory,
		reg:     r,
	}
	if !parent.IsBad() {
		d.depth = parent.d.depth + 1
	}

	next := append(prev, d)
	r.all.Store(&next)
	r.byName.Store(n, d)
	return Type{d: d}, true, nil
}

func matchParent(d *descriptor, parent Type) (Type, error) {
	if d.parent == parent {
		return Type{d: d}, nil
	}
	return Type{}, &DuplicateTypeError{
		Name:      d.name.String(),
		Existing:  Type{d: d},
		Requested: parent,
	}
}

// FromName returns the type registered under typeName, or the bad type.
func (r *Registry) FromName(typeName string) Type {
	n, ok := r.names.Lookup(typeName)
	if !ok {
		return Type{}
	}
	return r.FromHandle(n)
}

// FromHandle returns the type registered under n, or the bad type.
func (r *Registry) FromHandle(n name.Name) Type {
	v, ok := r.byName.Load(n)
	if !ok {
		return Type{}
	}
	return Type{d: v.(*descriptor)}
}

// ByID returns the type with identity id, or the bad type.
func (r *Registry) ByID(id int) Type {
	all := *r.all.Load()
	if id <= 0 || id > len(all) {
		return Type{}
	}
	return Type{d: all[id-1]}
}

// NumTypes returns the number of registered types.
func (r *Registry) NumTypes() int {
	return len(*r.all.Load())
}

// Types returns every registered type in registration order.
func (r *Registry) Types() []Type {
	all := *r.all.Load()
	out := make([]Type, len(all))
	for i, d := range all {
		out[i] = Type{d: d}
	}
	return out
}

// AllDerivedFrom returns t and every registered descendant of t, in
// registration order.
func (r *Registry) AllDerivedFrom(t Type) []Type {
	if t.IsBad() || t.d.reg != r {
		return nil
	}
	var out []Type
	for _, d := range *r.all.Load() {
		if (Type{d: d}).IsDerivedFrom(t) {
			out = append(out, Type{d: d})
		}
	}
	return out
}
