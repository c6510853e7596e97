// Package render exports scene graphs as Graphviz diagrams.
//
// A scene's topology (which node nests where, including cycles) is easier to
// debug as a node-link diagram than through the navigator's frame-relative
// view. ToDOT produces the DOT text; RenderSVG rasterizes it with Graphviz.
package render

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/driftview/driftview/pkg/geom"
	"github.com/driftview/driftview/pkg/scene"
)

// Options configures diagram generation.
type Options struct {
	// Detailed includes edge transform labels (scale and offset).
	Detailed bool

	// Reference highlights the given node as the current coordinate origin.
	Reference string
}

// ToDOT converts a scene graph to Graphviz DOT format. label maps a node to
// its display label; a nil label falls back to node IDs. The resulting DOT
// string can be rendered with [RenderSVG].
func ToDOT[T any](g *scene.Graph[T], label func(id string, data T) string, opts Options) string {
	if label == nil {
		label = func(id string, _ T) string { return id }
	}

	var buf bytes.Buffer
	buf.WriteString("digraph scene {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white];\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes() {
		attrs := []string{fmt.Sprintf("label=%q", label(n.ID, n.Data))}
		if n.ID == opts.Reference {
			attrs = append(attrs, "fillcolor=lightblue", "penwidth=2")
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		if opts.Detailed {
			fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", e.From, e.To, transformLabel(e.Transform))
		} else {
			fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// transformLabel summarizes an edge transform as "×scale (dx, dy)".
func transformLabel(m geom.Matrix) string {
	tx, ty := m.Translation()
	if m.IsTranslation() {
		return fmt.Sprintf("(%.3g, %.3g)", tx, ty)
	}
	return fmt.Sprintf("×%.3g (%.3g, %.3g)", m.A, tx, ty)
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
