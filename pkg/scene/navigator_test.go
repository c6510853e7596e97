package scene

import (
	"errors"
	"math"
	"testing"

	"github.com/driftview/driftview/pkg/geom"
)

const tol = 1e-9

// chainGraph builds A→B→C with translate(100,0) and translate(0,100) edges,
// the canonical test topology.
func chainGraph(t *testing.T) *Graph[string] {
	t.Helper()
	return mustGraph(t, []string{"A", "B", "C"}, []Edge{
		{From: "A", To: "B", Transform: geom.Translate(100, 0)},
		{From: "B", To: "C", Transform: geom.Translate(0, 100)},
	})
}

func newNav(t *testing.T, g *Graph[string]) *Navigator[string] {
	t.Helper()
	nav, err := NewNavigator(g)
	if err != nil {
		t.Fatalf("NewNavigator: %v", err)
	}
	return nav
}

func TestNewNavigator(t *testing.T) {
	if _, err := NewNavigator(New[string]()); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("NewNavigator on empty graph = %v, want ErrUnknownNode", err)
	}

	nav := newNav(t, chainGraph(t))
	if nav.ReferenceNodeID() != "A" {
		t.Errorf("default reference = %q, want first node A", nav.ReferenceNodeID())
	}
	if !nav.Viewport().IsIdentity() {
		t.Errorf("initial viewport = %+v, want identity", nav.Viewport())
	}

	if _, err := NewNavigatorAt(chainGraph(t), "ghost"); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("NewNavigatorAt(ghost) = %v, want ErrUnknownNode", err)
	}
}

func TestSetReferenceNode(t *testing.T) {
	nav := newNav(t, chainGraph(t))

	if err := nav.SetReferenceNode("B"); err != nil {
		t.Errorf("SetReferenceNode(B): %v", err)
	}
	if err := nav.SetReferenceNode("ghost"); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("SetReferenceNode(ghost) = %v, want ErrUnknownNode", err)
	}
	if nav.ReferenceNodeID() != "B" {
		t.Errorf("reference after failed set = %q, want B", nav.ReferenceNodeID())
	}
}

func TestAccumulatedTransformIdentity(t *testing.T) {
	nav := newNav(t, chainGraph(t))
	acc, ok := nav.AccumulatedTransform("A")
	if !ok || !acc.IsIdentity() {
		t.Errorf("AccumulatedTransform(reference) = %+v, %v; want identity, true", acc, ok)
	}
}

func TestAccumulatedTransformChain(t *testing.T) {
	nav := newNav(t, chainGraph(t))

	acc, ok := nav.AccumulatedTransform("C")
	if !ok {
		t.Fatal("AccumulatedTransform(C) unreachable")
	}
	if want := geom.Translate(100, 100); !acc.Equal(want, tol) {
		t.Errorf("AccumulatedTransform(C) = %+v, want translate(100,100)", acc)
	}

	if !nav.MoveForward() {
		t.Fatal("MoveForward failed")
	}
	if nav.ReferenceNodeID() != "B" {
		t.Fatalf("reference = %q, want B", nav.ReferenceNodeID())
	}
	acc, ok = nav.AccumulatedTransform("C")
	if !ok {
		t.Fatal("AccumulatedTransform(C) unreachable after move")
	}
	if want := geom.Translate(0, 100); !acc.Equal(want, tol) {
		t.Errorf("AccumulatedTransform(C) = %+v, want translate(0,100)", acc)
	}
}

func TestAccumulatedTransformDisconnected(t *testing.T) {
	g := mustGraph(t, []string{"A", "B", "island"}, []Edge{
		{From: "A", To: "B", Transform: geom.Translate(10, 0)},
	})
	nav := newNav(t, g)

	if _, ok := nav.AccumulatedTransform("island"); ok {
		t.Error("AccumulatedTransform(island) reachable, want absent")
	}
	// Reverse direction is not traversable either: edges are directed.
	if err := nav.SetReferenceNode("B"); err != nil {
		t.Fatal(err)
	}
	if _, ok := nav.AccumulatedTransform("A"); ok {
		t.Error("AccumulatedTransform(A) from B reachable, want absent")
	}
}

func TestAccumulatedTransformFirstPathWins(t *testing.T) {
	// Two parallel edges A→B: BFS takes the first in insertion order.
	g := mustGraph(t, []string{"A", "B"}, []Edge{
		{From: "A", To: "B", Transform: geom.Translate(1, 0)},
		{From: "A", To: "B", Transform: geom.Translate(2, 0)},
	})
	nav := newNav(t, g)

	acc, ok := nav.AccumulatedTransform("B")
	if !ok || !acc.Equal(geom.Translate(1, 0), tol) {
		t.Errorf("AccumulatedTransform(B) = %+v, %v; want first edge transform", acc, ok)
	}
}

func TestZoomAtMatrix(t *testing.T) {
	nav := newNav(t, chainGraph(t))
	nav.ZoomAt(400, 300, 2.0)

	want := geom.Translate(400, 300).
		Multiply(geom.Scale(2, 2)).
		Multiply(geom.Translate(-400, -300))
	if !nav.Viewport().Equal(want, tol) {
		t.Errorf("viewport = %+v, want %+v", nav.Viewport(), want)
	}
}

func TestZoomFactorOne(t *testing.T) {
	nav := newNav(t, chainGraph(t))
	nav.Pan(5, 7)
	before := nav.Viewport()

	if nav.ZoomAt(123, 456, 1.0) {
		t.Error("ZoomAt(factor=1) re-centered")
	}
	if !nav.Viewport().Equal(before, tol) {
		t.Errorf("viewport changed by factor-1 zoom: %+v → %+v", before, nav.Viewport())
	}
}

func TestPan(t *testing.T) {
	nav := newNav(t, chainGraph(t))
	nav.Pan(10, -20)
	nav.Pan(5, 5)

	want := geom.Translate(15, -15)
	if !nav.Viewport().Equal(want, tol) {
		t.Errorf("viewport = %+v, want %+v", nav.Viewport(), want)
	}
	if nav.ReferenceNodeID() != "A" {
		t.Error("pan changed the reference node")
	}
}

func TestScreenPosition(t *testing.T) {
	nav := newNav(t, chainGraph(t))

	pos, ok := nav.ScreenPosition("C", 800, 600)
	if !ok {
		t.Fatal("ScreenPosition(C) absent")
	}
	want := geom.Point{X: 500, Y: 400} // canvas center + (100,100)
	if pos.Distance(want) > tol {
		t.Errorf("ScreenPosition(C) = %+v, want %+v", pos, want)
	}

	g := nav.Graph()
	if err := g.AddNode(Node[string]{ID: "island"}); err != nil {
		t.Fatal(err)
	}
	if _, ok := nav.ScreenPosition("island", 800, 600); ok {
		t.Error("ScreenPosition(island) present, want absent")
	}
}

func TestVisualContinuityForward(t *testing.T) {
	nav := newNav(t, chainGraph(t))
	nav.ZoomAt(400, 300, 1.5)
	nav.Pan(-30, 12)

	const w, h = 800, 600
	before := map[string]geom.Point{}
	for _, id := range []string{"A", "B", "C"} {
		pos, ok := nav.ScreenPosition(id, w, h)
		if !ok {
			t.Fatalf("ScreenPosition(%s) absent before move", id)
		}
		before[id] = pos
	}

	if !nav.MoveForward() {
		t.Fatal("MoveForward failed")
	}

	// Re-centering never changes what is on screen. A is now behind the
	// reference (unreachable along directed edges), so only reachable nodes
	// are compared.
	for _, id := range []string{"B", "C"} {
		pos, ok := nav.ScreenPosition(id, w, h)
		if !ok {
			t.Fatalf("ScreenPosition(%s) absent after move", id)
		}
		if pos.Distance(before[id]) > tol {
			t.Errorf("%s moved on screen: %+v → %+v", id, before[id], pos)
		}
	}
}

func TestVisualContinuityBackward(t *testing.T) {
	nav := newNav(t, chainGraph(t))
	if err := nav.SetReferenceNode("B"); err != nil {
		t.Fatal(err)
	}
	nav.ZoomAt(100, 100, 0.5)

	const w, h = 800, 600
	beforeB, _ := nav.ScreenPosition("B", w, h)
	beforeC, _ := nav.ScreenPosition("C", w, h)

	if !nav.MoveBackward() {
		t.Fatal("MoveBackward failed")
	}
	if nav.ReferenceNodeID() != "A" {
		t.Fatalf("reference = %q, want A", nav.ReferenceNodeID())
	}

	afterB, _ := nav.ScreenPosition("B", w, h)
	afterC, _ := nav.ScreenPosition("C", w, h)
	if afterB.Distance(beforeB) > tol {
		t.Errorf("B moved on screen: %+v → %+v", beforeB, afterB)
	}
	if afterC.Distance(beforeC) > tol {
		t.Errorf("C moved on screen: %+v → %+v", beforeC, afterC)
	}
}

func TestRoundTrip(t *testing.T) {
	g := mustGraph(t, []string{"A", "B"}, []Edge{
		{From: "A", To: "B", Transform: geom.Translate(50, 25).Multiply(geom.Scale(0.5, 0.5))},
	})
	nav := newNav(t, g)
	nav.ZoomAt(200, 150, 3)
	nav.Pan(8, -4)
	wantViewport := nav.Viewport()

	if !nav.MoveForward() {
		t.Fatal("MoveForward failed")
	}
	if !nav.MoveBackward() {
		t.Fatal("MoveBackward failed")
	}

	if nav.ReferenceNodeID() != "A" {
		t.Errorf("reference = %q, want A", nav.ReferenceNodeID())
	}
	if !nav.Viewport().Equal(wantViewport, tol) {
		t.Errorf("viewport = %+v, want %+v", nav.Viewport(), wantViewport)
	}
}

func TestMoveForwardExplicitTarget(t *testing.T) {
	g := mustGraph(t, []string{"A", "B", "C"}, []Edge{
		{From: "A", To: "B", Transform: geom.Translate(100, 0)},
		{From: "A", To: "C", Transform: geom.Translate(0, 100)},
	})
	nav := newNav(t, g)

	if !nav.MoveForward("C") {
		t.Fatal("MoveForward(C) failed")
	}
	if nav.ReferenceNodeID() != "C" {
		t.Errorf("reference = %q, want C", nav.ReferenceNodeID())
	}

	// No edge C→B: routine refusal, reference and viewport untouched.
	viewport := nav.Viewport()
	if nav.MoveForward("B") {
		t.Error("MoveForward(B) succeeded without an edge")
	}
	if nav.ReferenceNodeID() != "C" || !nav.Viewport().Equal(viewport, tol) {
		t.Error("failed MoveForward mutated state")
	}
}

func TestMoveBackwardNoPredecessor(t *testing.T) {
	nav := newNav(t, chainGraph(t))
	if nav.MoveBackward() {
		t.Error("MoveBackward succeeded with no predecessor")
	}
	if nav.ReferenceNodeID() != "A" {
		t.Errorf("reference = %q, want A", nav.ReferenceNodeID())
	}
}

func TestLastTargetContinuity(t *testing.T) {
	// Diamond: A→B, A→C, both →D. After moving A→C→D, backward moves should
	// retrace D→C→A via the continuity hint rather than D's first parent B.
	g := mustGraph(t, []string{"A", "B", "C", "D"}, []Edge{
		{From: "A", To: "B", Transform: geom.Translate(10, 0)},
		{From: "A", To: "C", Transform: geom.Translate(0, 10)},
		{From: "B", To: "D", Transform: geom.Translate(0, 10)},
		{From: "C", To: "D", Transform: geom.Translate(10, 0)},
	})
	nav := newNav(t, g)

	if !nav.MoveForward("C") || !nav.MoveForward("D") {
		t.Fatal("forward moves failed")
	}

	prev, ok := nav.BestPrevNode()
	if !ok || prev != "C" {
		t.Errorf("BestPrevNode = %q, %v; want C via continuity hint", prev, ok)
	}
	if !nav.MoveBackward() {
		t.Fatal("MoveBackward failed")
	}
	if nav.ReferenceNodeID() != "C" {
		t.Errorf("reference = %q, want C", nav.ReferenceNodeID())
	}

	// And forward again prefers the node just departed.
	next, ok := nav.BestNextNode()
	if !ok || next != "D" {
		t.Errorf("BestNextNode = %q, %v; want D via continuity hint", next, ok)
	}
}

func TestVisibleNodesCycle(t *testing.T) {
	// A→B→A, each edge shrinking by half: the traversal re-enters the cycle
	// and yields one nested copy per pass, so exactly maxCount entries appear
	// with the loop transform composed on each time. This is what makes a
	// renderer draw the repeating copies of a cyclic scene.
	g := mustGraph(t, []string{"A", "B"}, []Edge{
		{From: "A", To: "B", Transform: geom.Scale(0.5, 0.5)},
		{From: "B", To: "A", Transform: geom.Scale(0.5, 0.5)},
	})
	nav := newNav(t, g)

	var (
		ids    []string
		scales []float64
	)
	for v := range nav.VisibleNodes(6) {
		ids = append(ids, v.ID)
		scales = append(scales, v.Transform.A)
	}
	if len(ids) != 6 {
		t.Fatalf("VisibleNodes(6) on 2-cycle yielded %d entries, want exactly 6", len(ids))
	}
	wantIDs := []string{"A", "B", "A", "B", "A", "B"}
	wantScales := []float64{1, 0.5, 0.25, 0.125, 0.0625, 0.03125}
	for i := range wantIDs {
		if ids[i] != wantIDs[i] {
			t.Errorf("entry %d = %q, want %q", i, ids[i], wantIDs[i])
		}
		if math.Abs(scales[i]-wantScales[i]) > tol {
			t.Errorf("entry %d scale = %v, want %v", i, scales[i], wantScales[i])
		}
	}
}

func TestVisibleNodesBounded(t *testing.T) {
	g := mustGraph(t, []string{"A", "B", "C"}, []Edge{
		{From: "A", To: "B", Transform: geom.Translate(100, 0)},
		{From: "B", To: "C", Transform: geom.Translate(0, 100)},
		{From: "C", To: "A", Transform: geom.Translate(-100, -100)},
	})
	nav := newNav(t, g)

	count := 0
	for range nav.VisibleNodes(2) {
		count++
	}
	if count != 2 {
		t.Errorf("VisibleNodes(2) yielded %d nodes, want exactly 2", count)
	}

	if n := countSeq(nav.VisibleNodes(0)); n != 0 {
		t.Errorf("VisibleNodes(0) yielded %d nodes, want 0", n)
	}

	// On a cycle a bound larger than the node count is still reached exactly.
	if n := countSeq(nav.VisibleNodes(7)); n != 7 {
		t.Errorf("VisibleNodes(7) yielded %d nodes, want exactly 7", n)
	}
}

func TestVisibleNodesYieldsReferenceFirst(t *testing.T) {
	nav := newNav(t, chainGraph(t))

	// Restartable: two traversals give identical results.
	for run := 0; run < 2; run++ {
		seq := nav.VisibleNodes(10)
		first := true
		for v := range seq {
			if first {
				if v.ID != "A" || !v.Transform.IsIdentity() {
					t.Errorf("run %d: first = %q with %+v, want reference A with identity", run, v.ID, v.Transform)
				}
				first = false
			}
		}
		if first {
			t.Fatalf("run %d: empty sequence", run)
		}
	}
}

func TestVisibleNodesComposition(t *testing.T) {
	nav := newNav(t, chainGraph(t))

	got := map[string]geom.Matrix{}
	for v := range nav.VisibleNodes(10) {
		got[v.ID] = v.Transform
	}
	if !got["B"].Equal(geom.Translate(100, 0), tol) {
		t.Errorf("transform(B) = %+v", got["B"])
	}
	if !got["C"].Equal(geom.Translate(100, 100), tol) {
		t.Errorf("transform(C) = %+v", got["C"])
	}
}

func TestZoomAtPolicyRecenters(t *testing.T) {
	// B sits at the canvas center; zooming far enough in makes B cover the
	// screen and the reference moves forward, without changing the scene's
	// appearance.
	g := mustGraph(t, []string{"A", "B"}, []Edge{
		{From: "A", To: "B", Transform: geom.Scale(0.25, 0.25)},
	})
	nav := newNav(t, g)
	const w, h = 800, 600

	extent := func(string) float64 { return 1000 }
	zoomIn := CoverageZoomIn(extent)

	// One modest zoom step: B projects to 1000*0.25*1.5 = 375 < 600.
	if nav.ZoomAt(w/2, h/2, 1.5, WithCanvas[string](w, h), WithZoomInPolicy(zoomIn)) {
		t.Fatal("re-centered too early")
	}

	// Zoom until coverage: 375*4 = 1500 >= 600.
	if !nav.ZoomAt(w/2, h/2, 4, WithCanvas[string](w, h), WithZoomInPolicy(zoomIn)) {
		t.Fatal("expected re-centering onto B")
	}
	if nav.ReferenceNodeID() != "B" {
		t.Errorf("reference = %q, want B", nav.ReferenceNodeID())
	}
}

func TestZoomAtPolicyZoomOut(t *testing.T) {
	g := mustGraph(t, []string{"A", "B"}, []Edge{
		{From: "A", To: "B", Transform: geom.Scale(0.25, 0.25)},
	})
	nav := newNav(t, g)
	const w, h = 800, 600
	extent := func(string) float64 { return 1000 }

	if err := nav.SetReferenceNode("B"); err != nil {
		t.Fatal(err)
	}
	// Zoom out: B projects to 1000*0.5 = 500 < 600, so A takes over.
	if !nav.ZoomAt(w/2, h/2, 0.5, WithCanvas[string](w, h), WithZoomOutPolicy(CoverageZoomOut(extent))) {
		t.Fatal("expected re-centering onto A")
	}
	if nav.ReferenceNodeID() != "A" {
		t.Errorf("reference = %q, want A", nav.ReferenceNodeID())
	}
}

func TestClosestToCenterTieBreak(t *testing.T) {
	// Both children qualify under an always-true policy; the one nearer the
	// canvas center wins.
	g := mustGraph(t, []string{"A", "far", "near"}, []Edge{
		{From: "A", To: "far", Transform: geom.Translate(300, 300)},
		{From: "A", To: "near", Transform: geom.Translate(10, 10)},
	})
	nav := newNav(t, g)
	always := func(*Navigator[string], float64, float64, string) bool { return true }

	nav.ZoomAt(0, 0, 2, WithCanvas[string](800, 600), WithZoomInPolicy[string](always))
	if nav.ReferenceNodeID() != "near" {
		t.Errorf("reference = %q, want near (closest to center)", nav.ReferenceNodeID())
	}
}

func TestResetView(t *testing.T) {
	nav := newNav(t, chainGraph(t))
	nav.ZoomAt(1, 2, 3)
	if !nav.MoveForward() {
		t.Fatal("MoveForward failed")
	}

	if err := nav.ResetView("C"); err != nil {
		t.Fatalf("ResetView(C): %v", err)
	}
	if nav.ReferenceNodeID() != "C" {
		t.Errorf("reference = %q, want C", nav.ReferenceNodeID())
	}
	if !nav.Viewport().IsIdentity() {
		t.Errorf("viewport = %+v, want identity", nav.Viewport())
	}
	if _, ok := nav.LastTarget(); ok {
		t.Error("continuity hint survived reset")
	}

	if err := nav.ResetView("ghost"); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("ResetView(ghost) = %v, want ErrUnknownNode", err)
	}
}

// Deep zoom through a cyclic two-node space: repeated forward transitions
// must keep the viewport numerically tame, which is the entire point of the
// floating origin.
func TestDeepZoomCycleStability(t *testing.T) {
	g := mustGraph(t, []string{"A", "B"}, []Edge{
		{From: "A", To: "B", Transform: geom.Scale(0.001, 0.001)},
		{From: "B", To: "A", Transform: geom.Scale(0.001, 0.001)},
	})
	nav := newNav(t, g)
	const w, h = 800, 600

	for i := 0; i < 40; i++ {
		nav.ZoomAt(w/2, h/2, 1000) // undo one edge's worth of scale
		if !nav.MoveForward() {
			t.Fatalf("MoveForward failed at step %d", i)
		}
		// After compensation the viewport scale stays near 1 instead of
		// accumulating a factor of 1000 per step.
		scale := nav.Viewport().A
		if scale > 10 || scale < 0.1 {
			t.Fatalf("viewport scale diverged at step %d: %v", i, scale)
		}
	}
}

func countSeq[T any](seq func(func(T) bool)) int {
	n := 0
	seq(func(T) bool { n++; return true })
	return n
}
