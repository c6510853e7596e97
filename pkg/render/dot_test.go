package render

import (
	"strings"
	"testing"

	"github.com/driftview/driftview/pkg/geom"
	"github.com/driftview/driftview/pkg/scene"
)

func buildGraph(t *testing.T) *scene.Graph[string] {
	t.Helper()
	g := scene.New[string]()
	for _, id := range []string{"root", "child"} {
		if err := g.AddNode(scene.Node[string]{ID: id, Data: strings.ToUpper(id)}); err != nil {
			t.Fatal(err)
		}
	}
	if err := g.AddEdge(scene.Edge{
		From:      "root",
		To:        "child",
		Transform: geom.Translate(100, 0).Multiply(geom.Scale(0.5, 0.5)),
	}); err != nil {
		t.Fatal(err)
	}
	return g
}

func TestToDOT(t *testing.T) {
	g := buildGraph(t)
	dot := ToDOT(g, nil, Options{})

	for _, want := range []string{
		"digraph scene {",
		`"root" [label="root"]`,
		`"child" [label="child"]`,
		`"root" -> "child";`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
}

func TestToDOTLabelAndReference(t *testing.T) {
	g := buildGraph(t)
	dot := ToDOT(g, func(id, data string) string { return data }, Options{Reference: "root"})

	if !strings.Contains(dot, `label="ROOT"`) {
		t.Errorf("custom label not applied:\n%s", dot)
	}
	if !strings.Contains(dot, `"root" [label="ROOT", fillcolor=lightblue, penwidth=2];`) {
		t.Errorf("reference node not highlighted:\n%s", dot)
	}
}

func TestToDOTDetailed(t *testing.T) {
	g := buildGraph(t)
	dot := ToDOT(g, nil, Options{Detailed: true})

	if !strings.Contains(dot, `label="×0.5 (100, 0)"`) {
		t.Errorf("edge transform label missing:\n%s", dot)
	}
}
