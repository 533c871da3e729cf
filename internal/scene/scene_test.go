package scene_test

import (
	"testing"

	"github.com/specialistvlad/scenegrid/internal/name"
	"github.com/specialistvlad/scenegrid/internal/rtype"
	"github.com/specialistvlad/scenegrid/internal/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func newTypes(t *testing.T) *scene.Types {
	t.Helper()
	ts, err := scene.InitClasses(rtype.New(rtype.WithNames(name.NewTable())))
	require.NoError(t, err)
	return ts
}

func TestInitClasses_Hierarchy(t *testing.T) {
	ts := newTypes(t)

	assert.True(t, ts.Node.Parent().IsBad())
	assert.Equal(t, ts.Group, ts.Separator.Parent())
	assert.True(t, ts.Cube.IsDerivedFrom(ts.Shape))
	assert.True(t, ts.Text3.IsDerivedFrom(ts.Node))
	assert.False(t, ts.Texture2.IsDerivedFrom(ts.Shape))

	assert.False(t, ts.Node.CanCreateInstance())
	assert.False(t, ts.Shape.CanCreateInstance())
	assert.True(t, ts.Cube.CanCreateInstance())

	again, err := scene.InitClasses(ts.Registry)
	require.NoError(t, err)
	assert.Equal(t, ts.Cube, again.Cube)
	assert.Equal(t, 14, ts.Registry.NumTypes())
}

func TestNew(t *testing.T) {
	ts := newTypes(t)

	cube, err := ts.New("Cube", "box")
	require.NoError(t, err)
	assert.Equal(t, ts.Cube, cube.RuntimeType())
	assert.Equal(t, "box", cube.Name().String())
	assert.Equal(t, "Cube box", cube.String())

	width, ok := cube.Get("width")
	require.True(t, ok)
	assert.True(t, width.RawEquals(cty.NumberIntVal(2)))

	_, err = ts.New("Torus", "")
	assert.ErrorIs(t, err, scene.ErrUnknownType)

	_, err = ts.New("Shape", "")
	assert.ErrorIs(t, err, rtype.ErrAbstractType)

	_, err = ts.New("Cube", "1box")
	assert.ErrorIs(t, err, scene.ErrInvalidName)
}

func TestObject_Children(t *testing.T) {
	ts := newTypes(t)

	sep, err := ts.New("Separator", "root")
	require.NoError(t, err)
	cube, err := ts.New("Cube", "")
	require.NoError(t, err)

	require.True(t, sep.IsGroup())
	require.NoError(t, sep.AddChild(cube))
	assert.Len(t, sep.Children(), 1)

	assert.False(t, cube.IsGroup())
	assert.ErrorIs(t, cube.AddChild(sep), scene.ErrNotGroup)
	assert.Nil(t, cube.Children())
}

func TestObject_Fields(t *testing.T) {
	ts := newTypes(t)
	names := ts.Registry.Names()

	o, err := ts.New("FaceSet", "")
	require.NoError(t, err)
	o.SetField("numVertices", cty.TupleVal([]cty.Value{cty.NumberIntVal(3), cty.NumberIntVal(4)}))
	o.SetField("label", cty.StringVal("tri"))
	o.SetField("count", cty.NumberIntVal(7))

	numVertices := names.Intern("numVertices")
	assert.Equal(t, []int{3, 4}, scene.Ints(o, numVertices))
	assert.Equal(t, 7, scene.Int(o, names.Intern("count"), 0))
	assert.Equal(t, 5, scene.Int(o, names.Intern("missing"), 5))
	assert.Equal(t, 5, scene.Int(o, names.Intern("label"), 5))
	assert.Equal(t, []string{"tri"}, scene.Strings(o, names.Intern("label")))

	var got []string
	for _, n := range o.FieldNames() {
		got = append(got, n.String())
	}
	assert.Equal(t, []string{"count", "label", "numVertices"}, got)

	o.SetField("label", cty.NullVal(cty.String))
	_, ok := o.Get("label")
	assert.False(t, ok)
}

func TestFactory_CustomType(t *testing.T) {
	ts := newTypes(t)

	torus, err := ts.Registry.CreateType(ts.Shape, "Torus",
		rtype.WithFactory(ts.Factory(map[string]cty.Value{"triangles": cty.NumberIntVal(128)})))
	require.NoError(t, err)
	bag, err := ts.Registry.CreateType(ts.Group, "Bag", rtype.WithFactory(ts.Factory(nil)))
	require.NoError(t, err)

	o, err := ts.Instantiate(torus, "ring")
	require.NoError(t, err)
	assert.Equal(t, 128, scene.Int(o, ts.Registry.Names().Intern("triangles"), 0))
	assert.False(t, o.IsGroup())

	g, err := ts.New("Bag", "")
	require.NoError(t, err)
	assert.Equal(t, bag, g.RuntimeType())
	assert.True(t, g.IsGroup())
}
