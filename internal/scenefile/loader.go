package scenefile

import (
	"context"
	"fmt"
	"slices"

	"github.com/agext/levenshtein"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/scenegrid/internal/ctxlog"
	"github.com/specialistvlad/scenegrid/internal/fsutil"
	"github.com/specialistvlad/scenegrid/internal/name"
	"github.com/specialistvlad/scenegrid/internal/scene"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

const (
	// Extension is the suffix of scene files found in directories.
	Extension = ".hcl"
	// RootName is the instance name of the implicit root separator.
	RootName = "root"

	nodeBlock = "node"
)

// Loader builds scene graphs from HCL scene files.
type Loader struct {
	types   *scene.Types
	evalCtx *hcl.EvalContext
}

// NewLoader returns a loader that instantiates nodes from types.
func NewLoader(types *scene.Types) *Loader {
	return &Loader{
		types: types,
		evalCtx: &hcl.EvalContext{
			Functions: map[string]function.Function{
				"abs":    stdlib.AbsoluteFunc,
				"ceil":   stdlib.CeilFunc,
				"concat": stdlib.ConcatFunc,
				"floor":  stdlib.FloorFunc,
				"format": stdlib.FormatFunc,
				"length": stdlib.LengthFunc,
				"lower":  stdlib.LowerFunc,
				"max":    stdlib.MaxFunc,
				"min":    stdlib.MinFunc,
				"range":  stdlib.RangeFunc,
				"upper":  stdlib.UpperFunc,
			},
		},
	}
}

// LoadPath loads a scene file, or every scene file below a directory.
func (l *Loader) LoadPath(ctx context.Context, path string) (*scene.Object, error) {
	logger := ctxlog.FromContext(ctx)

	files, err := fsutil.ResolveFiles(path, Extension)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve scene path %s: %w", path, err)
	}
	logger.Debug("Found scene files to load.", "files", files)

	parser := hclparse.NewParser()
	var nodes []*scene.Object
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		hclFile, diags := parser.ParseHCLFile(f)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse scene file %s: %w", f, diags)
		}
		got, err := l.decodeFile(hclFile, f)
		if err != nil {
			return nil, err
		}
		logger.Debug("Loaded scene file.", "file", f, "nodes", len(got))
		nodes = append(nodes, got...)
	}
	return l.wrap(nodes)
}

// LoadFile loads a single scene file.
func (l *Loader) LoadFile(ctx context.Context, path string) (*scene.Object, error) {
	hclFile, diags := hclparse.NewParser().ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse scene file %s: %w", path, diags)
	}
	nodes, err := l.decodeFile(hclFile, path)
	if err != nil {
		return nil, err
	}
	ctxlog.FromContext(ctx).Debug("Loaded scene file.", "file", path, "nodes", len(nodes))
	return l.wrap(nodes)
}

// Parse builds a scene from source text. filename is used in diagnostics.
func (l *Loader) Parse(src []byte, filename string) (*scene.Object, error) {
	hclFile, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse scene file %s: %w", filename, diags)
	}
	nodes, err := l.decodeFile(hclFile, filename)
	if err != nil {
		return nil, err
	}
	return l.wrap(nodes)
}

func (l *Loader) decodeFile(f *hcl.File, filename string) ([]*scene.Object, error) {
	body, ok := f.Body.(*hclsyntax.Body)
	if !ok {
		return nil, fmt.Errorf("scene file %s is not in native HCL syntax", filename)
	}

	var diags hcl.Diagnostics
	for _, attr := range body.Attributes {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Unexpected attribute",
			Detail:   fmt.Sprintf("Attribute %q must be set inside a node block.", attr.Name),
			Subject:  attr.SrcRange.Ptr(),
		})
	}

	var nodes []*scene.Object
	for _, blk := range body.Blocks {
		n, nodeDiags := l.decodeNode(blk)
		diags = append(diags, nodeDiags...)
		if n != nil {
			nodes = append(nodes, n)
		}
	}
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid scene file %s: %w", filename, diags)
	}
	return nodes, nil
}

// wrap returns the single top-level node, or a Separator holding them all.
func (l *Loader) wrap(nodes []*scene.Object) (*scene.Object, error) {
	switch len(nodes) {
	case 0:
		return nil, fmt.Errorf("scene contains no nodes")
	case 1:
		return nodes[0], nil
	}
	root, err := l.types.Instantiate(l.types.Separator, RootName)
	if err != nil {
		return nil, err
	}
	for _, n := range nodes {
		if err := root.AddChild(n); err != nil {
			return nil, err
		}
	}
	return root, nil
}

func (l *Loader) decodeNode(blk *hclsyntax.Block) (*scene.Object, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	if blk.Type != nodeBlock {
		return nil, append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Unsupported block type",
			Detail:   fmt.Sprintf("Blocks of type %q are not expected here; only %q blocks are.", blk.Type, nodeBlock),
			Subject:  blk.TypeRange.Ptr(),
		})
	}
	if len(blk.Labels) < 1 || len(blk.Labels) > 2 {
		return nil, append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Invalid node block",
			Detail:   "A node block takes a type label and an optional instance name label.",
			Subject:  blk.DefRange().Ptr(),
		})
	}

	typeName := blk.Labels[0]
	t := l.types.Registry.FromName(typeName)
	if t.IsBad() || !l.types.IsNode(t) {
		detail := fmt.Sprintf("No node type named %q is registered.", typeName)
		if s := l.suggestType(typeName); s != "" {
			detail += fmt.Sprintf(" Did you mean %q?", s)
		}
		return nil, append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Unknown node type",
			Detail:   detail,
			Subject:  blk.LabelRanges[0].Ptr(),
		})
	}
	if !t.CanCreateInstance() {
		return nil, append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Abstract node type",
			Detail:   fmt.Sprintf("Node type %q cannot be instantiated; use one of its subtypes.", typeName),
			Subject:  blk.LabelRanges[0].Ptr(),
		})
	}

	instanceName := ""
	if len(blk.Labels) == 2 {
		instanceName = blk.Labels[1]
		if !name.ValidBaseName(instanceName) {
			return nil, append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Invalid instance name",
				Detail:   fmt.Sprintf("%q must start with a letter or underscore and may not contain whitespace or any of \" ' + . \\ { }.", instanceName),
				Subject:  blk.LabelRanges[1].Ptr(),
			})
		}
	}

	o, err := l.types.Instantiate(t, instanceName)
	if err != nil {
		return nil, append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Failed to create node",
			Detail:   err.Error(),
			Subject:  blk.DefRange().Ptr(),
		})
	}

	for _, attr := range sortedAttributes(blk.Body.Attributes) {
		v, valDiags := attr.Expr.Value(l.evalCtx)
		diags = append(diags, valDiags...)
		if valDiags.HasErrors() {
			continue
		}
		o.SetField(attr.Name, v)
	}

	for _, child := range blk.Body.Blocks {
		c, childDiags := l.decodeNode(child)
		diags = append(diags, childDiags...)
		if c == nil {
			continue
		}
		if err := o.AddChild(c); err != nil {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Unexpected child node",
				Detail:   fmt.Sprintf("Node type %q is not a group and cannot have children.", typeName),
				Subject:  child.DefRange().Ptr(),
			})
		}
	}
	return o, diags
}

// suggestType returns the registered node type closest to given, if any is
// close enough to be a likely typo.
func (l *Loader) suggestType(given string) string {
	best, bestDist := "", 3
	for _, t := range l.types.Registry.AllDerivedFrom(l.types.Node) {
		if !t.CanCreateInstance() {
			continue
		}
		if d := levenshtein.Distance(given, t.String(), nil); d < bestDist {
			best, bestDist = t.String(), d
		}
	}
	return best
}

// sortedAttributes returns attrs in source order.
func sortedAttributes(attrs hclsyntax.Attributes) []*hclsyntax.Attribute {
	out := make([]*hclsyntax.Attribute, 0, len(attrs))
	for _, a := range attrs {
		out = append(out, a)
	}
	slices.SortFunc(out, func(a, b *hclsyntax.Attribute) int {
		return a.SrcRange.Start.Byte - b.SrcRange.Start.Byte
	})
	return out
}
