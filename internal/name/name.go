// Package name implements the process-wide table of unique strings.
//
// Interning a string returns a Name handle. Two handles are equal exactly when
// their contents are byte-identical, so comparing names is a single pointer
// comparison. Entries are permanent: a handle and its content stay valid for
// the rest of the process, and nothing is ever removed from a table.
//
//	a := name.Intern("Cube")
//	b := name.Intern("Cube")
//	a == b // true
//
// The zero Name is the empty name and equals Intern("").
package name

import (
	"strings"
	"sync"
	"sync/atomic"

	"github.com/specialistvlad/scenegrid/internal/lock"
)

// entry is the permanent storage behind a Name. It is never mutated after
// publication.
type entry struct {
	s string
}

// Name is a handle to interned string content.
type Name struct {
	e *entry
}

// String returns the interned content.
func (n Name) String() string {
	if n.e == nil {
		return ""
	}
	return n.e.s
}

// Len returns the length of the content in bytes.
func (n Name) Len() int { return len(n.String()) }

// IsEmpty reports whether n is the empty name.
func (n Name) IsEmpty() bool { return n.e == nil }

// Table maps string content to permanent entries. The zero value is not
// usable; create tables with NewTable.
type Table struct {
	mu lock.Mutex
	// m holds string -> *entry. Published entries are read without the lock.
	m sync.Map
	n atomic.Int64
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{}
}

// Intern returns the handle for s, adding s to the table on first use.
// Concurrent first requests for the same content all receive one handle.
func (t *Table) Intern(s string) Name {
	if s == "" {
		return Name{}
	}
	if v, ok := t.m.Load(s); ok {
		return Name{e: v.(*entry)}
	}

	t.mu.Acquire()
	defer t.mu.Release()

	// Another goroutine may have published s while we waited.
	if v, ok := t.m.Load(s); ok {
		return Name{e: v.(*entry)}
	}
	e := &entry{s: strings.Clone(s)}
	t.m.Store(e.s, e)
	t.n.Add(1)
	return Name{e: e}
}

// InternBytes is Intern for a byte slice. The table keeps its own copy.
func (t *Table) InternBytes(b []byte) Name {
	return t.Intern(string(b))
}

// Lookup returns the handle for s without adding it.
func (t *Table) Lookup(s string) (Name, bool) {
	if s == "" {
		return Name{}, true
	}
	v, ok := t.m.Load(s)
	if !ok {
		return Name{}, false
	}
	return Name{e: v.(*entry)}, true
}

// Len returns the number of non-empty entries in the table.
func (t *Table) Len() int { return int(t.n.Load()) }

// std is the process-wide table. It is never torn down.
var std = NewTable()

// Default returns the process-wide table.
func Default() *Table { return std }

// Intern interns s in the process-wide table.
func Intern(s string) Name { return std.Intern(s) }

// InternBytes interns b in the process-wide table.
func InternBytes(b []byte) Name { return std.InternBytes(b) }

// Lookup looks s up in the process-wide table without adding it.
func Lookup(s string) (Name, bool) { return std.Lookup(s) }
