package action

import (
	"fmt"
	"io"

	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/specialistvlad/scenegrid/internal/scene"
)

// WriteAction renders a scene graph in the HCL scene format.
type WriteAction struct {
	kind  *Kind
	file  *hclwrite.File
	stack []*hclwrite.Body
}

var _ Beginner = (*WriteAction)(nil)

// NewWriteAction returns an empty writer.
func (c *Classes) NewWriteAction() *WriteAction {
	return &WriteAction{kind: c.Write, file: hclwrite.NewEmptyFile()}
}

// Kind implements Action.
func (a *WriteAction) Kind() *Kind { return a.kind }

// BeginTraversal starts a new document and walks root.
func (a *WriteAction) BeginTraversal(tr *Traversal, root scene.Node) error {
	a.file = hclwrite.NewEmptyFile()
	a.stack = []*hclwrite.Body{a.file.Body()}
	return tr.Traverse(root)
}

// Bytes returns the formatted document.
func (a *WriteAction) Bytes() []byte {
	return hclwrite.Format(a.file.Bytes())
}

// WriteTo writes the formatted document to w.
func (a *WriteAction) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(a.Bytes())
	return int64(n), err
}

func (c *Classes) addWriteMethods() {
	c.Write.Methods.MustAddMethod(c.Types.Node, writeNode)
	c.Write.Methods.MustAddMethod(c.Types.Group, writeNode)
}

func writeNode(tr *Traversal, n scene.Node) error {
	a, ok := tr.Action().(*WriteAction)
	if !ok {
		return fmt.Errorf("write method applied by %T", tr.Action())
	}
	labels := []string{n.RuntimeType().String()}
	if !n.Name().IsEmpty() {
		labels = append(labels, n.Name().String())
	}

	parent := a.stack[len(a.stack)-1]
	if len(parent.Attributes()) > 0 || len(parent.Blocks()) > 0 {
		parent.AppendNewline()
	}
	blk := parent.AppendNewBlock("node", labels)
	body := blk.Body()
	for _, f := range n.FieldNames() {
		v, _ := n.Field(f)
		body.SetAttributeValue(f.String(), v)
	}

	if len(n.Children()) == 0 {
		return nil
	}
	a.stack = append(a.stack, body)
	defer func() { a.stack = a.stack[:len(a.stack)-1] }()
	return tr.TraverseChildren(n)
}
