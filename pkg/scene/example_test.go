package scene_test

import (
	"fmt"

	"github.com/driftview/driftview/pkg/geom"
	"github.com/driftview/driftview/pkg/scene"
)

func ExampleNavigator_basic() {
	// A chain of three tiles, each child shifted inside its parent.
	g := scene.New[string]()
	_ = g.AddNode(scene.Node[string]{ID: "sun", Data: "root tile"})
	_ = g.AddNode(scene.Node[string]{ID: "earth", Data: "child tile"})
	_ = g.AddNode(scene.Node[string]{ID: "moon", Data: "grandchild tile"})
	_ = g.AddEdge(scene.Edge{From: "sun", To: "earth", Transform: geom.Translate(100, 0)})
	_ = g.AddEdge(scene.Edge{From: "earth", To: "moon", Transform: geom.Translate(0, 100)})

	nav, _ := scene.NewNavigator(g)
	acc, _ := nav.AccumulatedTransform("moon")
	fmt.Printf("moon offset: (%.0f, %.0f)\n", acc.C, acc.F)

	// Re-centering onto earth shortens the path without moving anything
	// on screen.
	nav.MoveForward()
	acc, _ = nav.AccumulatedTransform("moon")
	fmt.Println("reference:", nav.ReferenceNodeID())
	fmt.Printf("moon offset: (%.0f, %.0f)\n", acc.C, acc.F)
	// Output:
	// moon offset: (100, 100)
	// reference: earth
	// moon offset: (0, 100)
}

func ExampleNavigator_VisibleNodes() {
	// A two-node cycle: the scene repeats forever, and the traversal keeps
	// descending into the nested copies until the caller's bound is reached.
	g := scene.New[string]()
	_ = g.AddNode(scene.Node[string]{ID: "outer", Data: ""})
	_ = g.AddNode(scene.Node[string]{ID: "inner", Data: ""})
	_ = g.AddEdge(scene.Edge{From: "outer", To: "inner", Transform: geom.Scale(0.5, 0.5)})
	_ = g.AddEdge(scene.Edge{From: "inner", To: "outer", Transform: geom.Scale(0.5, 0.5)})

	nav, _ := scene.NewNavigator(g)
	for v := range nav.VisibleNodes(5) {
		fmt.Printf("%s scale=%g\n", v.ID, v.Transform.A)
	}
	// Output:
	// outer scale=1
	// inner scale=0.5
	// outer scale=0.25
	// inner scale=0.125
	// outer scale=0.0625
}
