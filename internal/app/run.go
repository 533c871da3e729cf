package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/specialistvlad/scenegrid/internal/action"
	"github.com/specialistvlad/scenegrid/internal/ctxlog"
	"github.com/specialistvlad/scenegrid/internal/rtype"
	"github.com/specialistvlad/scenegrid/internal/scene"
	"github.com/specialistvlad/scenegrid/internal/scenefile"
)

// Run executes the main application logic based on the app's configuration.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if a.config.DumpTypes {
		a.printTypes()
	}
	if a.config.ScenePath == "" {
		return nil
	}

	root, err := scenefile.NewLoader(a.types).LoadPath(ctx, a.config.ScenePath)
	if err != nil {
		return fmt.Errorf("failed to load scene: %w", err)
	}
	a.logger.Debug("Scene loaded.", "path", a.config.ScenePath, "root", root.String())

	counts, err := a.countPrimitives(ctx, root)
	if err != nil {
		return err
	}
	a.printReport(counts)

	if a.config.WriteScene {
		w := a.classes.NewWriteAction()
		if err := action.Apply(ctx, w, root); err != nil {
			return err
		}
		fmt.Fprintln(a.outW)
		if _, err := w.WriteTo(a.outW); err != nil {
			return fmt.Errorf("failed to write scene: %w", err)
		}
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}

func (a *App) countPrimitives(ctx context.Context, root scene.Node) (*action.PrimitiveCountAction, error) {
	pc := a.classes.NewPrimitiveCountAction()
	pc.CountTextAsTriangles = a.config.TextAsTriangles
	pc.CanApproximate = a.config.Approximate
	decimation, err := action.ParseDecimationType(a.config.Decimation)
	if err != nil {
		return nil, err
	}
	pc.SetDecimation(decimation, a.config.DecimationPercentage)

	if err := action.Apply(ctx, pc, root); err != nil {
		return nil, err
	}
	a.logger.Info("Primitive count finished.", "triangles", pc.TriangleCount(), "lines", pc.LineCount(), "points", pc.PointCount())
	return pc, nil
}

func (a *App) printReport(pc *action.PrimitiveCountAction) {
	c := pc.Counts()
	fmt.Fprintf(a.outW, "Scene: %s\n", a.config.ScenePath)
	fmt.Fprintf(a.outW, "  triangles: %d\n", c.Triangles)
	fmt.Fprintf(a.outW, "  lines:     %d\n", c.Lines)
	fmt.Fprintf(a.outW, "  points:    %d\n", c.Points)
	fmt.Fprintf(a.outW, "  texts:     %d\n", c.Texts)
	fmt.Fprintf(a.outW, "  images:    %d\n", c.Images)
	fmt.Fprintf(a.outW, "  contains no primitives:       %t\n", pc.ContainsNoPrimitives())
	fmt.Fprintf(a.outW, "  contains non-triangle shapes: %t\n", pc.ContainsNonTriangleShapes())
}

// printTypes writes the type forest, children indented under their parent.
func (a *App) printTypes() {
	all := a.types.Registry.Types()
	children := make(map[rtype.Type][]rtype.Type)
	var roots []rtype.Type
	for _, t := range all {
		if t.Parent().IsBad() {
			roots = append(roots, t)
			continue
		}
		children[t.Parent()] = append(children[t.Parent()], t)
	}

	var walk func(t rtype.Type, depth int)
	walk = func(t rtype.Type, depth int) {
		line := strings.Repeat("  ", depth) + t.String()
		if a.types.IsNode(t) && !t.CanCreateInstance() {
			line += " (abstract)"
		}
		fmt.Fprintln(a.outW, line)
		for _, c := range children[t] {
			walk(c, depth+1)
		}
	}
	for _, r := range roots {
		walk(r, 0)
	}
}
