package scene

import (
	"fmt"

	"github.com/specialistvlad/scenegrid/internal/name"
	"github.com/specialistvlad/scenegrid/internal/rtype"
	"github.com/zclconf/go-cty/cty"
)

// Types holds the built-in node types of one registry.
type Types struct {
	Registry *rtype.Registry

	Node      rtype.Type
	Group     rtype.Type
	Separator rtype.Type
	Shape     rtype.Type
	Cube      rtype.Type
	Sphere    rtype.Type
	Cone      rtype.Type
	Cylinder  rtype.Type
	FaceSet   rtype.Type
	LineSet   rtype.Type
	PointSet  rtype.Type
	Text2     rtype.Type
	Text3     rtype.Type
	Texture2  rtype.Type
}

// InitClasses registers the built-in node hierarchy in reg. Calling it again
// on the same registry returns the same types.
func InitClasses(reg *rtype.Registry) (*Types, error) {
	ts := &Types{Registry: reg}
	num := cty.NumberIntVal

	steps := []struct {
		dst      *rtype.Type
		parent   *rtype.Type
		name     string
		abstract bool
		defaults map[string]cty.Value
	}{
		{&ts.Node, nil, "Node", true, nil},
		{&ts.Group, &ts.Node, "Group", false, nil},
		{&ts.Separator, &ts.Group, "Separator", false, nil},
		{&ts.Shape, &ts.Node, "Shape", true, nil},
		{&ts.Cube, &ts.Shape, "Cube", false, map[string]cty.Value{
			"width": num(2), "height": num(2), "depth": num(2),
		}},
		{&ts.Sphere, &ts.Shape, "Sphere", false, map[string]cty.Value{
			"radius": num(1),
		}},
		{&ts.Cone, &ts.Shape, "Cone", false, map[string]cty.Value{
			"bottomRadius": num(1), "height": num(2),
		}},
		{&ts.Cylinder, &ts.Shape, "Cylinder", false, map[string]cty.Value{
			"radius": num(1), "height": num(2),
		}},
		{&ts.FaceSet, &ts.Shape, "FaceSet", false, nil},
		{&ts.LineSet, &ts.Shape, "LineSet", false, nil},
		{&ts.PointSet, &ts.Shape, "PointSet", false, nil},
		{&ts.Text2, &ts.Shape, "Text2", false, map[string]cty.Value{
			"string": cty.StringVal(""),
		}},
		{&ts.Text3, &ts.Shape, "Text3", false, map[string]cty.Value{
			"string": cty.StringVal(""),
		}},
		{&ts.Texture2, &ts.Node, "Texture2", false, map[string]cty.Value{
			"filename": cty.StringVal(""),
		}},
	}

	for _, s := range steps {
		parent := rtype.Bad()
		if s.parent != nil {
			parent = *s.parent
		}
		var opts []rtype.TypeOption
		if !s.abstract {
			opts = append(opts, rtype.WithFactory(ts.Factory(s.defaults)))
		}
		t, err := reg.CreateType(parent, s.name, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to register node type %s: %w", s.name, err)
		}
		*s.dst = t
	}
	return ts, nil
}

// Factory returns an rtype factory creating *Object values with the given
// default fields. Objects of types derived from Group accept children.
func (ts *Types) Factory(defaults map[string]cty.Value) rtype.Factory {
	return func(t rtype.Type) (any, error) {
		o := &Object{
			typ:    t,
			group:  t.IsDerivedFrom(ts.Group),
			fields: make(map[name.Name]cty.Value, len(defaults)),
		}
		for k, v := range defaults {
			o.SetField(k, v)
		}
		return o, nil
	}
}

// IsGroup reports whether nodes of type t accept children.
func (ts *Types) IsGroup(t rtype.Type) bool {
	return t.IsDerivedFrom(ts.Group)
}

// IsNode reports whether t belongs to the node hierarchy.
func (ts *Types) IsNode(t rtype.Type) bool {
	return t.IsDerivedFrom(ts.Node)
}

// New instantiates the node type registered as typeName.
func (ts *Types) New(typeName, instanceName string) (*Object, error) {
	t := ts.Registry.FromName(typeName)
	if t.IsBad() || !ts.IsNode(t) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, typeName)
	}
	return ts.Instantiate(t, instanceName)
}

// Instantiate creates a node of type t.
func (ts *Types) Instantiate(t rtype.Type, instanceName string) (*Object, error) {
	v, err := t.CreateInstance()
	if err != nil {
		return nil, err
	}
	o, ok := v.(*Object)
	if !ok {
		return nil, fmt.Errorf("scene: factory of %s returned %T", t, v)
	}
	if err := o.SetName(instanceName); err != nil {
		return nil, err
	}
	return o, nil
}
