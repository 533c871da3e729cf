package action

import (
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/specialistvlad/scenegrid/internal/scene"
)

// DecimationType selects the level of detail shapes are counted at.
type DecimationType int

const (
	DecimationAutomatic DecimationType = iota
	DecimationHighest
	DecimationLowest
	DecimationPercentage
)

var decimationNames = map[DecimationType]string{
	DecimationAutomatic:  "automatic",
	DecimationHighest:    "highest",
	DecimationLowest:     "lowest",
	DecimationPercentage: "percentage",
}

func (d DecimationType) String() string {
	if s, ok := decimationNames[d]; ok {
		return s
	}
	return fmt.Sprintf("DecimationType(%d)", int(d))
}

// ParseDecimationType parses the String form of a DecimationType.
func ParseDecimationType(s string) (DecimationType, error) {
	for d, n := range decimationNames {
		if strings.EqualFold(n, s) {
			return d, nil
		}
	}
	return DecimationAutomatic, fmt.Errorf("unknown decimation type %q", s)
}

// Tessellation of curved shapes at full detail, and when approximating.
const (
	fullSlices   = 32
	fullStacks   = 16
	coarseSlices = 8
	coarseStacks = 4
	minSlices    = 3
	minStacks    = 1
)

// PrimitiveCounts are the totals gathered by a GetPrimitiveCountAction.
type PrimitiveCounts struct {
	Triangles int
	Lines     int
	Points    int
	Texts     int
	Images    int
}

// PrimitiveCountAction counts the primitives a scene would render.
type PrimitiveCountAction struct {
	kind   *Kind
	fields *fieldNames

	// CountTextAsTriangles counts Text3 glyphs as triangles instead of texts.
	CountTextAsTriangles bool
	// CanApproximate lets curved shapes use a coarse tessellation.
	CanApproximate       bool
	DecimationType       DecimationType
	DecimationPercentage float64

	counts PrimitiveCounts
}

var _ Beginner = (*PrimitiveCountAction)(nil)

// NewPrimitiveCountAction returns an action that counts text as triangles
// and does not approximate.
func (c *Classes) NewPrimitiveCountAction() *PrimitiveCountAction {
	return &PrimitiveCountAction{
		kind:                 c.PrimitiveCount,
		fields:               &c.fields,
		CountTextAsTriangles: true,
		DecimationPercentage: 1,
	}
}

// Kind implements Action.
func (a *PrimitiveCountAction) Kind() *Kind { return a.kind }

// SetDecimation sets the decimation type and percentage.
func (a *PrimitiveCountAction) SetDecimation(t DecimationType, percentage float64) {
	a.DecimationType = t
	a.DecimationPercentage = percentage
}

// BeginTraversal resets the counters and walks root.
func (a *PrimitiveCountAction) BeginTraversal(tr *Traversal, root scene.Node) error {
	a.counts = PrimitiveCounts{}
	return tr.Traverse(root)
}

// Counts returns the totals of the last traversal.
func (a *PrimitiveCountAction) Counts() PrimitiveCounts { return a.counts }

func (a *PrimitiveCountAction) TriangleCount() int { return a.counts.Triangles }
func (a *PrimitiveCountAction) LineCount() int     { return a.counts.Lines }
func (a *PrimitiveCountAction) PointCount() int    { return a.counts.Points }
func (a *PrimitiveCountAction) TextCount() int     { return a.counts.Texts }
func (a *PrimitiveCountAction) ImageCount() int    { return a.counts.Images }

// Negative amounts are ignored by the Add methods.
func (a *PrimitiveCountAction) AddTriangles(n int) { a.counts.Triangles += max(n, 0) }
func (a *PrimitiveCountAction) AddLines(n int)     { a.counts.Lines += max(n, 0) }
func (a *PrimitiveCountAction) AddPoints(n int)    { a.counts.Points += max(n, 0) }
func (a *PrimitiveCountAction) AddTexts(n int)     { a.counts.Texts += max(n, 0) }
func (a *PrimitiveCountAction) AddImages(n int)    { a.counts.Images += max(n, 0) }

func (a *PrimitiveCountAction) IncTriangles() { a.counts.Triangles++ }
func (a *PrimitiveCountAction) IncLines()     { a.counts.Lines++ }
func (a *PrimitiveCountAction) IncPoints()    { a.counts.Points++ }
func (a *PrimitiveCountAction) IncTexts()     { a.counts.Texts++ }
func (a *PrimitiveCountAction) IncImages()    { a.counts.Images++ }

// ContainsNoPrimitives reports whether every counter is zero.
func (a *PrimitiveCountAction) ContainsNoPrimitives() bool {
	return a.counts == PrimitiveCounts{}
}

// ContainsNonTriangleShapes reports whether anything besides triangles was
// counted.
func (a *PrimitiveCountAction) ContainsNonTriangleShapes() bool {
	c := a.counts
	return c.Lines != 0 || c.Points != 0 || c.Texts != 0 || c.Images != 0
}

// tessellation returns the slice and stack counts for a curved shape.
func (a *PrimitiveCountAction) tessellation(n scene.Node) (slices, stacks int) {
	if a.CanApproximate || a.DecimationType == DecimationLowest {
		return coarseSlices, coarseStacks
	}
	slices = scene.Int(n, a.fields.slices, fullSlices)
	stacks = scene.Int(n, a.fields.stacks, fullStacks)
	if a.DecimationType == DecimationPercentage {
		p := min(max(a.DecimationPercentage, 0), 1)
		slices = int(math.Round(float64(slices) * p))
		stacks = int(math.Round(float64(stacks) * p))
	}
	return max(slices, minSlices), max(stacks, minStacks)
}

func (c *Classes) addPrimitiveCountMethods() {
	t := c.Types
	m := c.PrimitiveCount.Methods
	m.MustAddMethod(t.Shape, countShape)
	m.MustAddMethod(t.Cube, countCube)
	m.MustAddMethod(t.Sphere, countSphere)
	m.MustAddMethod(t.Cone, countCone)
	m.MustAddMethod(t.Cylinder, countCylinder)
	m.MustAddMethod(t.FaceSet, countFaceSet)
	m.MustAddMethod(t.LineSet, countLineSet)
	m.MustAddMethod(t.PointSet, countPointSet)
	m.MustAddMethod(t.Text2, countText2)
	m.MustAddMethod(t.Text3, countText3)
	m.MustAddMethod(t.Texture2, countTexture2)
}

func primitiveCounter(tr *Traversal) (*PrimitiveCountAction, error) {
	a, ok := tr.Action().(*PrimitiveCountAction)
	if !ok {
		return nil, fmt.Errorf("primitive count method applied by %T", tr.Action())
	}
	return a, nil
}

// countShape handles shapes without a dedicated method. They declare their
// primitives in the triangles, lines and points fields.
func countShape(tr *Traversal, n scene.Node) error {
	a, err := primitiveCounter(tr)
	if err != nil {
		return err
	}
	a.AddTriangles(scene.Int(n, a.fields.triangles, 0))
	a.AddLines(scene.Int(n, a.fields.lines, 0))
	a.AddPoints(scene.Int(n, a.fields.points, 0))
	return nil
}

func countCube(tr *Traversal, _ scene.Node) error {
	a, err := primitiveCounter(tr)
	if err != nil {
		return err
	}
	a.AddTriangles(12)
	return nil
}

func countSphere(tr *Traversal, n scene.Node) error {
	a, err := primitiveCounter(tr)
	if err != nil {
		return err
	}
	slices, stacks := a.tessellation(n)
	// Two fans at the poles and quads in between.
	a.AddTriangles(2*slices + 2*slices*max(stacks-2, 0))
	return nil
}

func countCone(tr *Traversal, n scene.Node) error {
	a, err := primitiveCounter(tr)
	if err != nil {
		return err
	}
	slices, stacks := a.tessellation(n)
	// Apex fan, quad rings below it, bottom cap.
	a.AddTriangles(slices + 2*slices*(stacks-1) + slices)
	return nil
}

func countCylinder(tr *Traversal, n scene.Node) error {
	a, err := primitiveCounter(tr)
	if err != nil {
		return err
	}
	slices, stacks := a.tessellation(n)
	a.AddTriangles(2*slices*stacks + 2*slices)
	return nil
}

func countFaceSet(tr *Traversal, n scene.Node) error {
	a, err := primitiveCounter(tr)
	if err != nil {
		return err
	}
	for _, v := range scene.Ints(n, a.fields.numVertices) {
		if v >= 3 {
			a.AddTriangles(v - 2)
		}
	}
	return nil
}

func countLineSet(tr *Traversal, n scene.Node) error {
	a, err := primitiveCounter(tr)
	if err != nil {
		return err
	}
	for _, v := range scene.Ints(n, a.fields.numVertices) {
		if v >= 2 {
			a.AddLines(v - 1)
		}
	}
	return nil
}

func countPointSet(tr *Traversal, n scene.Node) error {
	a, err := primitiveCounter(tr)
	if err != nil {
		return err
	}
	a.AddPoints(max(scene.Int(n, a.fields.numPoints, 0), 0))
	return nil
}

func countText2(tr *Traversal, n scene.Node) error {
	a, err := primitiveCounter(tr)
	if err != nil {
		return err
	}
	a.AddTexts(len(scene.Strings(n, a.fields.text)))
	return nil
}

func countText3(tr *Traversal, n scene.Node) error {
	a, err := primitiveCounter(tr)
	if err != nil {
		return err
	}
	lines := scene.Strings(n, a.fields.text)
	if !a.CountTextAsTriangles {
		a.AddTexts(len(lines))
		return nil
	}
	// One quad per visible glyph.
	for _, l := range lines {
		for _, r := range l {
			if !unicode.IsSpace(r) {
				a.AddTriangles(2)
			}
		}
	}
	return nil
}

func countTexture2(tr *Traversal, n scene.Node) error {
	a, err := primitiveCounter(tr)
	if err != nil {
		return err
	}
	if files := scene.Strings(n, a.fields.filename); len(files) > 0 && files[0] != "" {
		a.IncImages()
	}
	return nil
}
