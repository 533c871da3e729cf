// Package plugin registers node kinds from Lua scripts.
//
// Each script runs in its own sandboxed state with the base, table, string
// and math libraries, and a "scene" table:
//
//	scene.register_node{ name = "Torus", parent = "Shape", fields = { triangles = 128 } }
//	scene.is_derived_from("Torus", "Node")  -- true
//	scene.type_exists("Torus")              -- true
//	scene.parent_of("Torus")                -- "Shape"
//
// The parent defaults to Shape. Registered kinds can be instantiated from
// scene files and use the methods of their nearest ancestor in every action.
package plugin
