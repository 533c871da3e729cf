// Package scene defines the node model walked by actions.
//
// All nodes are *Object values; the runtime type registered in an
// rtype.Registry decides what a node is. InitClasses registers the built-in
// hierarchy:
//
//	Node
//	├── Group
//	│   └── Separator
//	├── Shape
//	│   ├── Cube, Sphere, Cone, Cylinder
//	│   ├── FaceSet, LineSet, PointSet
//	│   └── Text2, Text3
//	└── Texture2
//
// Node and Shape are abstract. Further kinds may be registered later (see
// package plugin) with Types.Factory.
package scene
