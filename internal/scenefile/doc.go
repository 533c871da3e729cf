// Package scenefile reads scene graphs written in HCL.
//
// A scene file holds one or more node blocks. The first label names a
// registered node type, the optional second label is the instance name.
// Attributes become node fields; nested node blocks become children and are
// only allowed inside groups:
//
//	node "Separator" "root" {
//	  node "Cube" "box" {
//	    width = 2
//	  }
//	  node "Torus" "ring" {
//	    triangles = max(64, 128)
//	  }
//	}
//
// Several top-level nodes, or the files of a directory, are gathered under an
// implicit Separator named "root".
package scenefile
