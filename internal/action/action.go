package action

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/specialistvlad/scenegrid/internal/ctxlog"
	"github.com/specialistvlad/scenegrid/internal/dispatch"
	"github.com/specialistvlad/scenegrid/internal/name"
	"github.com/specialistvlad/scenegrid/internal/rtype"
	"github.com/specialistvlad/scenegrid/internal/scene"
)

// Method handles one node during a traversal. tr.Action() is the running
// action.
type Method func(tr *Traversal, n scene.Node) error

// Action is anything that can be applied to a scene graph.
type Action interface {
	Kind() *Kind
}

// Beginner is implemented by actions that need to run code before the walk,
// such as resetting counters. BeginTraversal must start the walk itself with
// tr.Traverse(root).
type Beginner interface {
	BeginTraversal(tr *Traversal, root scene.Node) error
}

// Kind is an action kind: its runtime type and its dispatch table.
type Kind struct {
	Type    rtype.Type
	Methods *dispatch.Table[Method]
}

// String returns the name of the action kind.
func (k *Kind) String() string { return k.Type.String() }

// Option configures InitClasses.
type Option func(*classOpts)

type classOpts struct {
	logger *slog.Logger
	table  []dispatch.Option
}

// WithLogger sets the logger of the action kinds' dispatch tables.
func WithLogger(l *slog.Logger) Option {
	return func(o *classOpts) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithTableOptions passes extra options to every dispatch table.
func WithTableOptions(opts ...dispatch.Option) Option {
	return func(o *classOpts) { o.table = append(o.table, opts...) }
}

// Classes holds the action kinds of one type registry.
type Classes struct {
	Types *scene.Types

	Action         *Kind
	PrimitiveCount *Kind
	Search         *Kind
	Write          *Kind

	fields fieldNames
}

// fieldNames are the node fields read by the built-in handlers.
type fieldNames struct {
	triangles, lines, points name.Name
	numVertices, numPoints   name.Name
	slices, stacks           name.Name
	text, filename           name.Name
}

// InitClasses registers the action kinds in the registry of types, fills
// their dispatch tables and seals them.
func InitClasses(types *scene.Types, opts ...Option) (*Classes, error) {
	o := classOpts{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	tableOpts := append([]dispatch.Option{dispatch.WithLogger(o.logger)}, o.table...)

	reg := types.Registry
	names := reg.Names()
	c := &Classes{
		Types: types,
		fields: fieldNames{
			triangles:   names.Intern("triangles"),
			lines:       names.Intern("lines"),
			points:      names.Intern("points"),
			numVertices: names.Intern("numVertices"),
			numPoints:   names.Intern("numPoints"),
			slices:      names.Intern("slices"),
			stacks:      names.Intern("stacks"),
			text:        names.Intern("string"),
			filename:    names.Intern("filename"),
		},
	}

	root, err := reg.CreateType(rtype.Bad(), "Action")
	if err != nil {
		return nil, fmt.Errorf("failed to register action kind: %w", err)
	}
	c.Action = &Kind{Type: root, Methods: dispatch.New[Method](root, tableOpts...)}
	c.Action.Methods.MustAddMethod(types.Group, traverseChildren)

	derive := func(typeName string) (*Kind, error) {
		t, err := reg.CreateType(root, typeName)
		if err != nil {
			return nil, fmt.Errorf("failed to register action kind %s: %w", typeName, err)
		}
		return &Kind{Type: t, Methods: dispatch.NewChild(c.Action.Methods, t, tableOpts...)}, nil
	}
	if c.PrimitiveCount, err = derive("GetPrimitiveCountAction"); err != nil {
		return nil, err
	}
	if c.Search, err = derive("SearchAction"); err != nil {
		return nil, err
	}
	if c.Write, err = derive("WriteAction"); err != nil {
		return nil, err
	}

	c.addPrimitiveCountMethods()
	c.addSearchMethods()
	c.addWriteMethods()

	for _, k := range []*Kind{c.Action, c.PrimitiveCount, c.Search, c.Write} {
		k.Methods.Seal()
	}
	return c, nil
}

// Kinds returns the action kinds in registration order.
func (c *Classes) Kinds() []*Kind {
	return []*Kind{c.Action, c.PrimitiveCount, c.Search, c.Write}
}

// Apply runs a over the graph rooted at root.
func Apply(ctx context.Context, a Action, root scene.Node) error {
	logger := ctxlog.FromContext(ctx)
	k := a.Kind()
	tr := &Traversal{ctx: ctx, action: a, methods: k.Methods}

	logger.Debug("Applying action.", "action", k.String(), "root", nodeLabel(root))
	var err error
	if b, ok := a.(Beginner); ok {
		err = b.BeginTraversal(tr, root)
	} else {
		err = tr.Traverse(root)
	}
	if err != nil {
		return fmt.Errorf("%s failed: %w", k, err)
	}
	logger.Debug("Action finished.", "action", k.String(), "visited", tr.visited, "terminated", tr.terminated)
	return nil
}

func traverseChildren(tr *Traversal, n scene.Node) error {
	return tr.TraverseChildren(n)
}
