package dispatch

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/specialistvlad/scenegrid/internal/lock"
	"github.com/specialistvlad/scenegrid/internal/rtype"
)

var (
	// ErrSealed is the cause of a *SealError raised by AddMethod on a sealed table.
	ErrSealed = errors.New("dispatch: table is sealed")
	// ErrNotSealed is the cause of a *SealError raised by a strict Resolve
	// on a table still in setup.
	ErrNotSealed = errors.New("dispatch: table is not sealed")
	// ErrBadType is returned by AddMethod for the bad type.
	ErrBadType = errors.New("dispatch: cannot add a method for the bad type")
	// ErrNilHandler is returned by AddMethod for a nil handler.
	ErrNilHandler = errors.New("dispatch: cannot add a nil handler")
)

// SealError reports a setup/use ordering violation on a table. It indicates
// a programming defect.
type SealError struct {
	Op    string
	Owner rtype.Type
	Err   error
}

// Error implements the error interface.
func (e *SealError) Error() string {
	return fmt.Sprintf("dispatch: %s on the table of %s: %v", e.Op, e.Owner, e.Err)
}

// Unwrap returns ErrSealed or ErrNotSealed.
func (e *SealError) Unwrap() error { return e.Err }

// Option configures a Table.
type Option func(*options)

type options struct {
	strict bool
	late   bool
	logger *slog.Logger
}

// WithStrictSeal makes Resolve panic on a table that was not sealed
// explicitly.
func WithStrictSeal() Option {
	return func(o *options) { o.strict = true }
}

// WithLateRegistration lets AddMethod succeed after sealing. Every such call
// rebuilds the snapshot and drops all memoised resolutions.
func WithLateRegistration() Option {
	return func(o *options) { o.late = true }
}

// WithLogger sets the logger for sealing and rebuild events.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// resolution is a memoised Resolve result. from is the type whose explicit
// entry matched, or the bad type.
type resolution[H any] struct {
	h    H
	from rtype.Type
	ok   bool
}

// snapshot is the immutable in-use state of a table.
type snapshot[H any] struct {
	methods map[rtype.Type]H
	// cache maps rtype.Type -> resolution[H].
	cache sync.Map
}

func (s *snapshot[H]) resolve(t rtype.Type) resolution[H] {
	if v, ok := s.cache.Load(t); ok {
		return v.(resolution[H])
	}
	var r resolution[H]
	for cur := t; !cur.IsBad(); cur = cur.Parent() {
		if h, ok := s.methods[cur]; ok {
			r = resolution[H]{h: h, from: cur, ok: true}
			break
		}
	}
	s.cache.Store(t, r)
	return r
}

// Table is the dispatch table of one action kind.
type Table[H any] struct {
	owner  rtype.Type
	parent *Table[H]
	opts   options

	// mu guards own, children and snapshot replacement.
	mu       lock.Mutex
	own      map[rtype.Type]H
	children []*Table[H]

	// snap is nil while the table is in setup.
	snap atomic.Pointer[snapshot[H]]
}

// New creates an empty table owned by the action kind owner.
func New[H any](owner rtype.Type, opts ...Option) *Table[H] {
	tb := &Table[H]{
		owner: owner,
		opts:  options{logger: slog.Default()},
		own:   make(map[rtype.Type]H),
	}
	for _, opt := range opts {
		opt(&tb.opts)
	}
	return tb
}

// NewChild creates the table of an action kind derived from parent's owner.
// The child inherits the parent's explicit entries when it is sealed.
func NewChild[H any](parent *Table[H], owner rtype.Type, opts ...Option) *Table[H] {
	tb := New[H](owner, opts...)
	tb.parent = parent
	parent.mu.Acquire()
	parent.children = append(parent.children, tb)
	parent.mu.Release()
	return tb
}

// Owner returns the action kind that owns the table.
func (tb *Table[H]) Owner() rtype.Type { return tb.owner }

// Parent returns the table this one inherits from, or nil.
func (tb *Table[H]) Parent() *Table[H] { return tb.parent }

// Sealed reports whether the table has left setup.
func (tb *Table[H]) Sealed() bool { return tb.snap.Load() != nil }

// AddMethod registers h for target. It must be called during setup.
func (tb *Table[H]) AddMethod(target rtype.Type, h H) error {
	if target.IsBad() {
		return ErrBadType
	}
	if isNil(h) {
		return ErrNilHandler
	}
	rebuilt, children, err := tb.add(target, h)
	if err != nil {
		return err
	}
	if rebuilt {
		tb.opts.logger.Debug("Dispatch table rebuilt after late registration.", "action", tb.owner.String(), "type", target.String())
		for _, c := range children {
			c.refresh()
		}
	}
	return nil
}

func isNil(h any) bool {
	if h == nil {
		return true
	}
	switch v := reflect.ValueOf(h); v.Kind() {
	case reflect.Func, reflect.Pointer, reflect.Map, reflect.Chan, reflect.Interface, reflect.Slice:
		return v.IsNil()
	}
	return false
}

// MustAddMethod is AddMethod that panics on error.
func (tb *Table[H]) MustAddMethod(target rtype.Type, h H) {
	if err := tb.AddMethod(target, h); err != nil {
		panic(err)
	}
}

func (tb *Table[H]) add(target rtype.Type, h H) (bool, []*Table[H], error) {
	tb.mu.Acquire()
	defer tb.mu.Release()

	if tb.snap.Load() == nil {
		tb.own[target] = h
		return false, nil, nil
	}
	if !tb.opts.late {
		return false, nil, &SealError{Op: "AddMethod", Owner: tb.owner, Err: ErrSealed}
	}
	tb.own[target] = h
	tb.snap.Store(tb.build())
	return true, slices.Clone(tb.children), nil
}

// build merges the parent's explicit entries with this table's own. The
// caller holds tb.mu and the parent is sealed.
func (tb *Table[H]) build() *snapshot[H] {
	methods := make(map[rtype.Type]H, len(tb.own))
	if tb.parent != nil {
		if ps := tb.parent.snap.Load(); ps != nil {
			for t, h := range ps.methods {
				methods[t] = h
			}
		}
	}
	for t, h := range tb.own {
		methods[t] = h
	}
	return &snapshot[H]{methods: methods}
}

// refresh rebuilds a sealed child after its parent changed.
func (tb *Table[H]) refresh() {
	children, rebuilt := func() ([]*Table[H], bool) {
		tb.mu.Acquire()
		defer tb.mu.Release()
		if tb.snap.Load() == nil {
			return nil, false
		}
		tb.snap.Store(tb.build())
		return slices.Clone(tb.children), true
	}()
	if !rebuilt {
		return
	}
	for _, c := range children {
		c.refresh()
	}
}

// Seal ends setup. It seals the parent first. Sealing twice is a no-op.
func (tb *Table[H]) Seal() {
	if tb.snap.Load() != nil {
		return
	}
	if tb.parent != nil {
		tb.parent.Seal()
	}
	sealed, n := func() (bool, int) {
		tb.mu.Acquire()
		defer tb.mu.Release()
		if tb.snap.Load() != nil {
			return false, 0
		}
		s := tb.build()
		tb.snap.Store(s)
		return true, len(s.methods)
	}()
	if sealed {
		tb.opts.logger.Debug("Dispatch table sealed.", "action", tb.owner.String(), "methods", n)
	}
}

// current returns the in-use snapshot, sealing the table on first use.
func (tb *Table[H]) current() *snapshot[H] {
	if s := tb.snap.Load(); s != nil {
		return s
	}
	if tb.opts.strict {
		panic(&SealError{Op: "Resolve", Owner: tb.owner, Err: ErrNotSealed})
	}
	tb.Seal()
	return tb.snap.Load()
}

// Resolve returns the handler for t: the exact entry, else the entry of the
// nearest ancestor. ok is false when no type on t's parent chain has an entry
// or t is the bad type. The result is memoised.
func (tb *Table[H]) Resolve(t rtype.Type) (h H, ok bool) {
	s := tb.current()
	if t.IsBad() {
		return h, false
	}
	r := s.resolve(t)
	return r.h, r.ok
}

// Source returns the type whose explicit entry Resolve(t) uses, or the bad
// type when nothing resolves.
func (tb *Table[H]) Source(t rtype.Type) rtype.Type {
	s := tb.current()
	if t.IsBad() {
		return rtype.Bad()
	}
	return s.resolve(t).from
}

// Lookup returns the explicit entry for t only, without ancestor fallback.
func (tb *Table[H]) Lookup(t rtype.Type) (H, bool) {
	if s := tb.snap.Load(); s != nil {
		h, ok := s.methods[t]
		return h, ok
	}
	tb.mu.Acquire()
	defer tb.mu.Release()
	h, ok := tb.own[t]
	return h, ok
}

// Entries returns the types with explicit entries, ordered by identity. On a
// sealed table this includes inherited entries.
func (tb *Table[H]) Entries() []rtype.Type {
	var out []rtype.Type
	if s := tb.snap.Load(); s != nil {
		for t := range s.methods {
			out = append(out, t)
		}
	} else {
		tb.mu.Acquire()
		for t := range tb.own {
			out = append(out, t)
		}
		tb.mu.Release()
	}
	slices.SortFunc(out, func(a, b rtype.Type) int { return a.ID() - b.ID() })
	return out
}

// Len returns the number of explicit entries.
func (tb *Table[H]) Len() int {
	return len(tb.Entries())
}
