package scene

import (
	"math"
	"testing"

	"github.com/recera/seurat/pkg/graph"
)

func testSnapshot(t *testing.T) *graph.Snapshot {
	t.Helper()
	s := &graph.Snapshot{
		Nodes: []*graph.Node{
			{ID: "a", Group: "core", Size: 8, X: 10, Y: 20},
			{ID: "b", Group: "io", X: 30, Y: 40},
			{ID: "c", Group: "core", Changed: true, X: 50, Y: 60},
		},
		Links: []*graph.Link{
			{Source: "a", Target: "b", Value: 4},
			{Source: "b", Target: "c"},
		},
	}
	if err := s.Resolve(); err != nil {
		t.Fatalf("Failed to resolve test snapshot: %v", err)
	}
	return s
}

func TestRebuildBuildsShapes(t *testing.T) {
	snap := testSnapshot(t)
	sc := New()
	sc.Rebuild(snap)

	if len(sc.Links) != 2 || len(sc.Nodes) != 3 {
		t.Fatalf("Expected 2 links and 3 nodes, got %d and %d", len(sc.Links), len(sc.Nodes))
	}

	// Links first, then nodes, ids from 1.
	wantIDs := []uint32{1, 2, 3, 4, 5}
	gotIDs := []uint32{sc.Links[0].ID, sc.Links[1].ID, sc.Nodes[0].ID, sc.Nodes[1].ID, sc.Nodes[2].ID}
	for i, want := range wantIDs {
		if gotIDs[i] != want {
			t.Errorf("Shape %d: expected id %d, got %d", i, want, gotIDs[i])
		}
	}

	if got, want := sc.Links[0].Width, 3.0; math.Abs(got-want) > 1e-9 {
		t.Errorf("Expected weighted link width %v, got %v", want, got)
	}
	if got, want := sc.Links[1].Width, 1.5; math.Abs(got-want) > 1e-9 {
		t.Errorf("Expected default link width %v, got %v", want, got)
	}
	if sc.Links[0].X1 != 10 || sc.Links[0].Y1 != 20 || sc.Links[0].X2 != 30 || sc.Links[0].Y2 != 40 {
		t.Errorf("Link 0 endpoints wrong: %+v", sc.Links[0])
	}

	a := sc.Nodes[0]
	if a.Radius != 16 {
		t.Errorf("Expected radius 16 for size 8, got %v", a.Radius)
	}
	if a.Fill != category10[0] {
		t.Errorf("Expected first group color %s, got %s", category10[0], a.Fill)
	}
	if a.Stroke != DefaultStroke || a.StrokeWidth != DefaultStrokeWidth {
		t.Errorf("Expected default stroke, got %s width %v", a.Stroke, a.StrokeWidth)
	}

	b := sc.Nodes[1]
	if b.Radius != 10 {
		t.Errorf("Expected default radius 10, got %v", b.Radius)
	}
	if b.Fill != category10[1] {
		t.Errorf("Expected second group color %s, got %s", category10[1], b.Fill)
	}

	c := sc.Nodes[2]
	if !c.Changed || c.Fill != ChangedFill {
		t.Errorf("Expected changed fill %s, got %s", ChangedFill, c.Fill)
	}
	if c.Label != "c" {
		t.Errorf("Expected label fallback to id, got %q", c.Label)
	}
}

func TestRebuildIDsNeverReused(t *testing.T) {
	snap := testSnapshot(t)
	sc := New()
	sc.Rebuild(snap)
	firstMax := sc.Nodes[len(sc.Nodes)-1].ID

	sc.Rebuild(snap)
	if got := sc.Links[0].ID; got <= firstMax {
		t.Errorf("Expected fresh ids after rebuild, got %d (previous max %d)", got, firstMax)
	}
}

func TestGroupColorsStableAcrossRebuilds(t *testing.T) {
	sc := New()
	sc.Rebuild(testSnapshot(t))
	ioColor := sc.Nodes[1].Fill

	// A second snapshot where "io" now appears first.
	second := &graph.Snapshot{Nodes: []*graph.Node{{ID: "z", Group: "io"}}}
	if err := second.Resolve(); err != nil {
		t.Fatalf("Failed to resolve snapshot: %v", err)
	}
	sc.Rebuild(second)
	if got := sc.Nodes[0].Fill; got != ioColor {
		t.Errorf("Expected group to keep color %s across rebuilds, got %s", ioColor, got)
	}
}

func TestChangedNodeStillRegistersGroup(t *testing.T) {
	s := &graph.Snapshot{Nodes: []*graph.Node{
		{ID: "a", Group: "first", Changed: true},
		{ID: "b", Group: "second"},
	}}
	if err := s.Resolve(); err != nil {
		t.Fatalf("Failed to resolve snapshot: %v", err)
	}
	sc := New()
	sc.Rebuild(s)

	if got := sc.Nodes[0].Fill; got != ChangedFill {
		t.Errorf("Expected changed fill, got %s", got)
	}
	// "first" consumed slot 0 even though its fill was overridden.
	if got := sc.Nodes[1].Fill; got != category10[1] {
		t.Errorf("Expected second slot color %s, got %s", category10[1], got)
	}
}

func TestPaletteWraps(t *testing.T) {
	p := NewPalette()
	for i := 0; i < 10; i++ {
		p.Color(string(rune('a' + i)))
	}
	if got := p.Color("eleventh"); got != category10[0] {
		t.Errorf("Expected palette to wrap to %s, got %s", category10[0], got)
	}
	if p.Len() != 11 {
		t.Errorf("Expected 11 groups assigned, got %d", p.Len())
	}
}

func TestSelectionExclusive(t *testing.T) {
	sc := New()
	sc.Rebuild(testSnapshot(t))

	if !sc.SetSelected("a") {
		t.Fatal("Expected selection of existing node to succeed")
	}
	shape, _ := sc.Shape("a")
	if !shape.Selected || shape.Stroke != SelectedStroke || shape.StrokeWidth != SelectedStrokeWidth {
		t.Errorf("Expected selection emphasis on a, got %+v", shape)
	}

	if !sc.SetSelected("b") {
		t.Fatal("Expected selection of b to succeed")
	}
	aShape, _ := sc.Shape("a")
	if aShape.Selected || aShape.Stroke != DefaultStroke || aShape.StrokeWidth != DefaultStrokeWidth {
		t.Errorf("Expected previous selection restored to default, got %+v", aShape)
	}
	if id, ok := sc.Selected(); !ok || id != "b" {
		t.Errorf("Expected selected b, got %q ok=%v", id, ok)
	}

	if sc.SetSelected("ghost") {
		t.Error("Expected selection of unknown node to fail")
	}
	if _, ok := sc.Selected(); ok {
		t.Error("Expected selection cleared after unknown id")
	}
	bShape, _ := sc.Shape("b")
	if bShape.Selected {
		t.Error("Expected b deselected after unknown id")
	}
}

func TestRebuildClearsSelectionAndHover(t *testing.T) {
	snap := testSnapshot(t)
	sc := New()
	sc.Rebuild(snap)
	sc.SetSelected("a")
	sc.SetHovered("b")

	sc.Rebuild(snap)
	if _, ok := sc.Selected(); ok {
		t.Error("Expected selection cleared by rebuild")
	}
	if _, ok := sc.Hovered(); ok {
		t.Error("Expected hover cleared by rebuild")
	}
	for _, n := range sc.Nodes {
		if n.Selected || n.Stroke != DefaultStroke {
			t.Errorf("Expected default styling after rebuild, got %+v", n)
		}
	}
}

func TestSyncFrameMovesCoordinatesOnly(t *testing.T) {
	snap := testSnapshot(t)
	sc := New()
	sc.Rebuild(snap)
	sc.SetSelected("a")

	snap.Nodes[0].X, snap.Nodes[0].Y = 111, 222
	snap.Nodes[1].X, snap.Nodes[1].Y = 333, 444
	sc.SyncFrame(snap)

	if sc.Nodes[0].X != 111 || sc.Nodes[0].Y != 222 {
		t.Errorf("Expected node moved to (111, 222), got (%v, %v)", sc.Nodes[0].X, sc.Nodes[0].Y)
	}
	if sc.Links[0].X1 != 111 || sc.Links[0].Y1 != 222 || sc.Links[0].X2 != 333 || sc.Links[0].Y2 != 444 {
		t.Errorf("Expected link endpoints to follow nodes, got %+v", sc.Links[0])
	}
	if !sc.Nodes[0].Selected || sc.Nodes[0].Stroke != SelectedStroke {
		t.Error("Expected styling untouched by frame sync")
	}
	if sc.Nodes[0].ID != 3 {
		t.Errorf("Expected shape id untouched by frame sync, got %d", sc.Nodes[0].ID)
	}
}

func TestNodeAtReturnsTopmost(t *testing.T) {
	s := &graph.Snapshot{Nodes: []*graph.Node{
		{ID: "under", X: 0, Y: 0},
		{ID: "over", X: 5, Y: 0},
	}}
	if err := s.Resolve(); err != nil {
		t.Fatalf("Failed to resolve snapshot: %v", err)
	}
	sc := New()
	sc.Rebuild(s)

	// (4, 0) is inside both circles; the later shape wins.
	if id, ok := sc.NodeAt(4, 0); !ok || id != "over" {
		t.Errorf("Expected topmost hit 'over', got %q ok=%v", id, ok)
	}
	if id, ok := sc.NodeAt(-9, 0); !ok || id != "under" {
		t.Errorf("Expected hit 'under', got %q ok=%v", id, ok)
	}
	if _, ok := sc.NodeAt(300, 300); ok {
		t.Error("Expected miss far from all nodes")
	}
}

func TestFrameExtraction(t *testing.T) {
	snap := testSnapshot(t)
	sc := New()
	sc.Rebuild(snap)

	f := sc.Frame()
	if len(f.Links) != 2 || len(f.Nodes) != 3 {
		t.Fatalf("Expected 2 link and 3 node entries, got %d and %d", len(f.Links), len(f.Nodes))
	}
	if f.Links[0] != [4]float64{10, 20, 30, 40} {
		t.Errorf("Expected link coords [10 20 30 40], got %v", f.Links[0])
	}
	if f.Nodes[2] != [2]float64{50, 60} {
		t.Errorf("Expected node coords [50 60], got %v", f.Nodes[2])
	}
}

func TestLinkWidthTable(t *testing.T) {
	cases := []struct {
		value float64
		want  float64
	}{
		{0, 1.5},
		{1, 1.5},
		{4, 3},
		{-2, 1.5},
	}
	for _, tc := range cases {
		if got := LinkWidth(tc.value); math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("LinkWidth(%v): expected %v, got %v", tc.value, tc.want, got)
		}
	}
}

func TestNodeRadiusTable(t *testing.T) {
	cases := []struct {
		size float64
		want float64
	}{
		{0, 10},
		{5, 10},
		{8, 16},
		{-1, 10},
	}
	for _, tc := range cases {
		if got := NodeRadius(tc.size); got != tc.want {
			t.Errorf("NodeRadius(%v): expected %v, got %v", tc.size, tc.want, got)
		}
	}
}
