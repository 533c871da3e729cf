package action

import (
	"fmt"

	"github.com/specialistvlad/scenegrid/internal/name"
	"github.com/specialistvlad/scenegrid/internal/rtype"
	"github.com/specialistvlad/scenegrid/internal/scene"
)

// Interest selects which matches a SearchAction keeps.
type Interest int

const (
	InterestFirst Interest = iota
	InterestLast
	InterestAll
)

// SearchAction finds nodes by type and/or instance name. With neither set it
// matches nothing.
type SearchAction struct {
	kind  *Kind
	names *name.Table

	typ      rtype.Type
	derived  bool
	nodeName string
	interest Interest

	// target is nodeName resolved against the intern table at the start of
	// a traversal.
	target  name.Name
	missing bool
	paths   []Path
}

var _ Beginner = (*SearchAction)(nil)

// NewSearchAction returns a search with InterestFirst.
func (c *Classes) NewSearchAction() *SearchAction {
	return &SearchAction{kind: c.Search, names: c.Types.Registry.Names()}
}

// Kind implements Action.
func (a *SearchAction) Kind() *Kind { return a.kind }

// SetType restricts matches to type t, or to types derived from t.
func (a *SearchAction) SetType(t rtype.Type, derived bool) {
	a.typ = t
	a.derived = derived
}

// SetName restricts matches to nodes named s.
func (a *SearchAction) SetName(s string) { a.nodeName = s }

// SetInterest selects which matches are kept.
func (a *SearchAction) SetInterest(i Interest) { a.interest = i }

// Reset clears the criteria and the results.
func (a *SearchAction) Reset() {
	*a = SearchAction{kind: a.kind, names: a.names}
}

// BeginTraversal clears the previous results and walks root.
func (a *SearchAction) BeginTraversal(tr *Traversal, root scene.Node) error {
	a.paths = nil
	a.target, a.missing = name.Name{}, false
	if a.nodeName != "" {
		n, ok := a.names.Lookup(a.nodeName)
		a.target, a.missing = n, !ok
	}
	return tr.Traverse(root)
}

// Path returns the first kept match, or nil.
func (a *SearchAction) Path() Path {
	if len(a.paths) == 0 {
		return nil
	}
	return a.paths[0]
}

// Paths returns every kept match in traversal order.
func (a *SearchAction) Paths() []Path { return a.paths }

func (a *SearchAction) matches(n scene.Node) bool {
	if a.typ.IsBad() && a.nodeName == "" {
		return false
	}
	if !a.typ.IsBad() {
		t := n.RuntimeType()
		if a.derived && !t.IsDerivedFrom(a.typ) {
			return false
		}
		if !a.derived && t != a.typ {
			return false
		}
	}
	if a.nodeName != "" {
		// A name nobody interned cannot be carried by any node.
		if a.missing || n.Name() != a.target {
			return false
		}
	}
	return true
}

func (c *Classes) addSearchMethods() {
	c.Search.Methods.MustAddMethod(c.Types.Node, searchNode)
	c.Search.Methods.MustAddMethod(c.Types.Group, searchNode)
}

func searchNode(tr *Traversal, n scene.Node) error {
	a, ok := tr.Action().(*SearchAction)
	if !ok {
		return fmt.Errorf("search method applied by %T", tr.Action())
	}
	if a.matches(n) {
		switch a.interest {
		case InterestFirst:
			a.paths = []Path{tr.Path()}
			tr.Terminate()
			return nil
		case InterestLast:
			a.paths = []Path{tr.Path()}
		default:
			a.paths = append(a.paths, tr.Path())
		}
	}
	return tr.TraverseChildren(n)
}
