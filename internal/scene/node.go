package scene

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/specialistvlad/scenegrid/internal/name"
	"github.com/specialistvlad/scenegrid/internal/rtype"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

var (
	// ErrNotGroup is returned when a child is added to a node whose type does
	// not derive from Group.
	ErrNotGroup = errors.New("scene: node cannot have children")
	// ErrInvalidName is returned for instance names that scene files cannot
	// represent.
	ErrInvalidName = errors.New("scene: invalid instance name")
	// ErrUnknownType is returned when instantiating an unregistered type.
	ErrUnknownType = errors.New("scene: unknown node type")
)

// Node is a vertex of a scene graph as seen by actions.
type Node interface {
	// RuntimeType returns the registered type of the node.
	RuntimeType() rtype.Type
	Name() name.Name
	// Children returns nil for nodes that are not groups.
	Children() []Node
	Field(n name.Name) (cty.Value, bool)
	// FieldNames returns the names of the set fields in lexical order.
	FieldNames() []name.Name
}

// Object is the generic scene node. Its behaviour comes entirely from its
// runtime type, so node kinds registered at run time need no Go code.
type Object struct {
	typ      rtype.Type
	name     name.Name
	group    bool
	fields   map[name.Name]cty.Value
	children []Node
}

var _ Node = (*Object)(nil)

// RuntimeType implements Node.
func (o *Object) RuntimeType() rtype.Type { return o.typ }

// Name implements Node.
func (o *Object) Name() name.Name { return o.name }

// SetName sets the instance name. The empty string clears it.
func (o *Object) SetName(s string) error {
	if s != "" && !name.ValidBaseName(s) {
		return fmt.Errorf("%w: %q", ErrInvalidName, s)
	}
	o.name = o.names().Intern(s)
	return nil
}

// IsGroup reports whether the node accepts children.
func (o *Object) IsGroup() bool { return o.group }

// Children implements Node.
func (o *Object) Children() []Node { return o.children }

// AddChild appends c to the children of o.
func (o *Object) AddChild(c Node) error {
	if !o.group {
		return fmt.Errorf("%w: %s is not a group", ErrNotGroup, o.typ)
	}
	o.children = append(o.children, c)
	return nil
}

// Field implements Node.
func (o *Object) Field(n name.Name) (cty.Value, bool) {
	v, ok := o.fields[n]
	return v, ok
}

// Get looks a field up by its string name.
func (o *Object) Get(field string) (cty.Value, bool) {
	n, ok := o.names().Lookup(field)
	if !ok {
		return cty.NilVal, false
	}
	return o.Field(n)
}

// SetField sets a field. A null value removes it.
func (o *Object) SetField(field string, v cty.Value) {
	n := o.names().Intern(field)
	if v.IsNull() {
		delete(o.fields, n)
		return
	}
	o.fields[n] = v
}

// FieldNames implements Node.
func (o *Object) FieldNames() []name.Name {
	out := make([]name.Name, 0, len(o.fields))
	for n := range o.fields {
		out = append(out, n)
	}
	slices.SortFunc(out, func(a, b name.Name) int { return strings.Compare(a.String(), b.String()) })
	return out
}

func (o *Object) names() *name.Table {
	return o.typ.Registry().Names()
}

// String returns "Type" or "Type name".
func (o *Object) String() string {
	if o.name.IsEmpty() {
		return o.typ.String()
	}
	return o.typ.String() + " " + o.name.String()
}

// Int reads a whole-number field of n, falling back to def when the field is
// unset or not a number.
func Int(n Node, field name.Name, def int) int {
	v, ok := n.Field(field)
	if !ok || !v.IsKnown() || v.Type() != cty.Number {
		return def
	}
	var i int
	if err := gocty.FromCtyValue(v, &i); err != nil {
		return def
	}
	return i
}

// Ints reads a list or tuple of whole numbers. A single number is returned as
// a one-element slice.
func Ints(n Node, field name.Name) []int {
	v, ok := n.Field(field)
	if !ok || !v.IsWhollyKnown() {
		return nil
	}
	if v.Type() == cty.Number {
		var i int
		if gocty.FromCtyValue(v, &i) != nil {
			return nil
		}
		return []int{i}
	}
	if !v.CanIterateElements() {
		return nil
	}
	var out []int
	for it := v.ElementIterator(); it.Next(); {
		_, ev := it.Element()
		var i int
		if ev.Type() != cty.Number || gocty.FromCtyValue(ev, &i) != nil {
			return nil
		}
		out = append(out, i)
	}
	return out
}

// Strings reads a string field or a list or tuple of strings.
func Strings(n Node, field name.Name) []string {
	v, ok := n.Field(field)
	if !ok || !v.IsWhollyKnown() {
		return nil
	}
	if v.Type() == cty.String {
		return []string{v.AsString()}
	}
	if !v.CanIterateElements() {
		return nil
	}
	var out []string
	for it := v.ElementIterator(); it.Next(); {
		_, ev := it.Element()
		if ev.Type() != cty.String {
			return nil
		}
		out = append(out, ev.AsString())
	}
	return out
}
