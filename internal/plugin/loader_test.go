package plugin_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/specialistvlad/scenegrid/internal/action"
	"github.com/specialistvlad/scenegrid/internal/name"
	"github.com/specialistvlad/scenegrid/internal/plugin"
	"github.com/specialistvlad/scenegrid/internal/rtype"
	"github.com/specialistvlad/scenegrid/internal/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func newTypes(t *testing.T) *scene.Types {
	t.Helper()
	types, err := scene.InitClasses(rtype.New(rtype.WithNames(name.NewTable())))
	require.NoError(t, err)
	return types
}

const torusPlugin = `
local name = scene.register_node{
  name = "Torus",
  parent = "Shape",
  fields = { triangles = 128, tags = { "round", "donut" }, size = { inner = 0.5, outer = 2 } },
}
assert(name == "Torus")
assert(scene.is_derived_from("Torus", "Node"))
assert(not scene.is_derived_from("Torus", "Group"))
assert(scene.type_exists("Torus"))
assert(not scene.type_exists("Teapot"))
assert(scene.parent_of("Torus") == "Shape")
assert(scene.parent_of("Node") == nil)

scene.register_node{ name = "Bundle", parent = "Group" }
`

func TestRun_RegistersTypes(t *testing.T) {
	types := newTypes(t)
	l := plugin.NewLoader(types)

	got, err := l.Run(context.Background(), torusPlugin, "torus.lua")
	require.NoError(t, err)
	require.Len(t, got, 2)

	torus := types.Registry.FromName("Torus")
	assert.Equal(t, torus, got[0])
	assert.Equal(t, types.Shape, torus.Parent())
	assert.True(t, torus.CanCreateInstance())

	o, err := types.New("Torus", "ring")
	require.NoError(t, err)
	tri, ok := o.Get("triangles")
	require.True(t, ok)
	assert.True(t, tri.RawEquals(cty.NumberIntVal(128)))
	tags, _ := o.Get("tags")
	assert.True(t, tags.RawEquals(cty.TupleVal([]cty.Value{cty.StringVal("round"), cty.StringVal("donut")})))
	size, _ := o.Get("size")
	assert.True(t, size.GetAttr("inner").RawEquals(cty.NumberFloatVal(0.5)))

	bundle, err := types.New("Bundle", "")
	require.NoError(t, err)
	assert.True(t, bundle.IsGroup())
}

func TestRun_PluginTypesDispatchThroughAncestors(t *testing.T) {
	types := newTypes(t)
	classes, err := action.InitClasses(types)
	require.NoError(t, err)

	_, err = plugin.NewLoader(types).Run(context.Background(), torusPlugin, "torus.lua")
	require.NoError(t, err)

	ring, err := types.New("Torus", "")
	require.NoError(t, err)
	bundle, err := types.New("Bundle", "")
	require.NoError(t, err)
	require.NoError(t, bundle.AddChild(ring))
	cube, err := types.New("Cube", "")
	require.NoError(t, err)
	require.NoError(t, bundle.AddChild(cube))

	a := classes.NewPrimitiveCountAction()
	require.NoError(t, action.Apply(context.Background(), a, bundle))
	assert.Equal(t, 140, a.TriangleCount())
}

func TestRun_Errors(t *testing.T) {
	testCases := []struct {
		name string
		src  string
		want string
	}{
		{name: "syntax", src: `scene.register_node{`, want: "failed to compile plugin"},
		{name: "bad name", src: `scene.register_node{ name = "two words" }`, want: "name must be an identifier"},
		{name: "unknown parent", src: `scene.register_node{ name = "X", parent = "Teapot" }`, want: `parent "Teapot" is not a node type`},
		{name: "duplicate", src: `scene.register_node{ name = "Cube", parent = "Group" }`, want: "already registered"},
		{name: "bad field", src: `scene.register_node{ name = "X", fields = { f = print } }`, want: "unsupported Lua value"},
		{name: "no file loading", src: `dofile("/etc/passwd")`, want: "plugin sandbox.lua failed"},
		{name: "no os library", src: `os.exit(1)`, want: "plugin sandbox.lua failed"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			l := plugin.NewLoader(newTypes(t))
			_, err := l.Run(context.Background(), tc.src, "sandbox.lua")
			require.Error(t, err)
			assert.ErrorContains(t, err, tc.want)
		})
	}
}

func TestRun_Timeout(t *testing.T) {
	l := plugin.NewLoader(newTypes(t), plugin.WithTimeout(50*time.Millisecond))
	_, err := l.Run(context.Background(), `while true do end`, "spin.lua")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLoadPath(t *testing.T) {
	types := newTypes(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.lua"), []byte(`scene.register_node{ name = "A" }`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.lua"), []byte(`scene.register_node{ name = "B", parent = "A" }`), 0o644))

	got, err := plugin.NewLoader(types).LoadPath(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[1].IsDerivedFrom(types.Shape))

	_, err = plugin.NewLoader(types).LoadPath(context.Background(), filepath.Join(dir, "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
