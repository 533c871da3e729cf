package plugin

import (
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/specialistvlad/scenegrid/internal/name"
	"github.com/specialistvlad/scenegrid/internal/rtype"
	"github.com/specialistvlad/scenegrid/internal/scene"
	lua "github.com/yuin/gopher-lua"
	"github.com/zclconf/go-cty/cty"
)

// sceneAPI backs the "scene" global of a plugin state.
type sceneAPI struct {
	types      *scene.Types
	logger     *slog.Logger
	registered []rtype.Type
}

func (a *sceneAPI) install(L *lua.LState) {
	mod := L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"register_node":   a.registerNode,
		"is_derived_from": a.isDerivedFrom,
		"type_exists":     a.typeExists,
		"parent_of":       a.parentOf,
	})
	L.SetGlobal("scene", mod)
}

// registerNode implements scene.register_node{name=, parent=, fields=}.
func (a *sceneAPI) registerNode(L *lua.LState) int {
	opts := L.CheckTable(1)

	typeName, ok := opts.RawGetString("name").(lua.LString)
	if !ok || !name.ValidIdent(string(typeName)) {
		L.ArgError(1, "name must be an identifier")
		return 0
	}
	parentName, ok := opts.RawGetString("parent").(lua.LString)
	if !ok {
		parentName = "Shape"
	}
	parent := a.types.Registry.FromName(string(parentName))
	if parent.IsBad() || !a.types.IsNode(parent) {
		L.ArgError(1, fmt.Sprintf("parent %q is not a node type", string(parentName)))
		return 0
	}

	var defaults map[string]cty.Value
	switch f := opts.RawGetString("fields").(type) {
	case *lua.LNilType:
	case *lua.LTable:
		var err error
		if defaults, err = fieldsFromTable(f); err != nil {
			L.ArgError(1, err.Error())
			return 0
		}
	default:
		L.ArgError(1, "fields must be a table")
		return 0
	}

	t, err := a.types.Registry.CreateType(parent, string(typeName), rtype.WithFactory(a.types.Factory(defaults)))
	if err != nil {
		L.RaiseError("%s", err.Error())
		return 0
	}
	a.registered = append(a.registered, t)
	a.logger.Debug("Plugin registered node type.", "type", t.String(), "parent", parent.String(), "fields", len(defaults))

	L.Push(lua.LString(t.String()))
	return 1
}

func (a *sceneAPI) isDerivedFrom(L *lua.LState) int {
	t := a.types.Registry.FromName(L.CheckString(1))
	ancestor := a.types.Registry.FromName(L.CheckString(2))
	L.Push(lua.LBool(t.IsDerivedFrom(ancestor)))
	return 1
}

func (a *sceneAPI) typeExists(L *lua.LState) int {
	L.Push(lua.LBool(!a.types.Registry.FromName(L.CheckString(1)).IsBad()))
	return 1
}

func (a *sceneAPI) parentOf(L *lua.LState) int {
	t := a.types.Registry.FromName(L.CheckString(1))
	if t.IsBad() || t.Parent().IsBad() {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LString(t.Parent().String()))
	return 1
}

func fieldsFromTable(tbl *lua.LTable) (map[string]cty.Value, error) {
	out := make(map[string]cty.Value)
	var err error
	tbl.ForEach(func(k, v lua.LValue) {
		if err != nil {
			return
		}
		key, ok := k.(lua.LString)
		if !ok || !name.ValidIdent(string(key)) {
			err = fmt.Errorf("field name %s must be an identifier", k.String())
			return
		}
		var cv cty.Value
		if cv, err = toCty(v, 0); err != nil {
			err = fmt.Errorf("field %s: %w", string(key), err)
			return
		}
		out[string(key)] = cv
	})
	return out, err
}

const maxDepth = 16

// toCty converts a Lua value into a field value. Sequences become tuples and
// other tables become objects.
func toCty(v lua.LValue, depth int) (cty.Value, error) {
	if depth > maxDepth {
		return cty.NilVal, fmt.Errorf("value nested deeper than %d levels", maxDepth)
	}
	switch lv := v.(type) {
	case lua.LBool:
		return cty.BoolVal(bool(lv)), nil
	case lua.LNumber:
		f := float64(lv)
		if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			return cty.NumberIntVal(int64(f)), nil
		}
		return cty.NumberFloatVal(f), nil
	case lua.LString:
		return cty.StringVal(string(lv)), nil
	case *lua.LTable:
		if n := lv.Len(); n > 0 {
			elems := make([]cty.Value, 0, n)
			for i := 1; i <= n; i++ {
				ev, err := toCty(lv.RawGetInt(i), depth+1)
				if err != nil {
					return cty.NilVal, err
				}
				elems = append(elems, ev)
			}
			return cty.TupleVal(elems), nil
		}
		attrs := make(map[string]cty.Value)
		var keys []string
		lv.ForEach(func(k, _ lua.LValue) {
			if ks, ok := k.(lua.LString); ok {
				keys = append(keys, string(ks))
			}
		})
		sort.Strings(keys)
		for _, k := range keys {
			ev, err := toCty(lv.RawGetString(k), depth+1)
			if err != nil {
				return cty.NilVal, err
			}
			attrs[k] = ev
		}
		return cty.ObjectVal(attrs), nil
	default:
		return cty.NilVal, fmt.Errorf("unsupported Lua value of type %s", v.Type().String())
	}
}
