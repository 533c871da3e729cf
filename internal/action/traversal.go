package action

import (
	"context"
	"slices"
	"strings"

	"github.com/specialistvlad/scenegrid/internal/dispatch"
	"github.com/specialistvlad/scenegrid/internal/scene"
)

// Path is the chain of nodes from the traversal root to a node.
type Path []scene.Node

// Tail returns the last node of the path, or nil.
func (p Path) Tail() scene.Node {
	if len(p) == 0 {
		return nil
	}
	return p[len(p)-1]
}

// String renders the path as "Separator root/Cube box".
func (p Path) String() string {
	parts := make([]string, len(p))
	for i, n := range p {
		parts[i] = nodeLabel(n)
	}
	return strings.Join(parts, "/")
}

func nodeLabel(n scene.Node) string {
	if n.Name().IsEmpty() {
		return n.RuntimeType().String()
	}
	return n.RuntimeType().String() + " " + n.Name().String()
}

// Traversal is the state of one Apply call.
type Traversal struct {
	ctx        context.Context
	action     Action
	methods    *dispatch.Table[Method]
	path       Path
	terminated bool
	visited    int
}

// Context returns the context passed to Apply.
func (tr *Traversal) Context() context.Context { return tr.ctx }

// Action returns the running action.
func (tr *Traversal) Action() Action { return tr.action }

// Path returns a copy of the current path, ending at the node being handled.
func (tr *Traversal) Path() Path { return slices.Clone(tr.path) }

// Terminate stops the walk after the current method returns.
func (tr *Traversal) Terminate() { tr.terminated = true }

// Terminated reports whether Terminate was called.
func (tr *Traversal) Terminated() bool { return tr.terminated }

// Visited returns the number of nodes handled so far.
func (tr *Traversal) Visited() int { return tr.visited }

// Traverse dispatches n to the method of its runtime type. Nodes without a
// method are walked through to their children.
func (tr *Traversal) Traverse(n scene.Node) error {
	if tr.terminated {
		return nil
	}
	if err := tr.ctx.Err(); err != nil {
		return err
	}

	tr.path = append(tr.path, n)
	defer func() { tr.path = tr.path[:len(tr.path)-1] }()
	tr.visited++

	m, ok := tr.methods.Resolve(n.RuntimeType())
	if !ok || m == nil {
		return tr.TraverseChildren(n)
	}
	return m(tr, n)
}

// TraverseChildren traverses the children of n in order.
func (tr *Traversal) TraverseChildren(n scene.Node) error {
	for _, c := range n.Children() {
		if tr.terminated {
			return nil
		}
		if err := tr.Traverse(c); err != nil {
			return err
		}
	}
	return nil
}
