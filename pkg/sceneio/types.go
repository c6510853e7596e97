// Package sceneio reads and writes scene files.
//
// A scene file describes nodes and transform-labeled edges in JSON or TOML.
// Both formats accept nodes and edges in two shapes: a flat list, or a
// mapping keyed by node ID (nodes) or by source ID (edges). Map-form input
// is normalized with sorted keys so decoding is deterministic. Build
// converts the decoded scene into a [scene.Graph] with strict endpoint
// validation.
package sceneio

import (
	"fmt"

	"github.com/driftview/driftview/pkg/geom"
	"github.com/driftview/driftview/pkg/scene"
)

// Payload is the node payload carried through [scene.Graph] for scenes built
// from files. Size is the node's side length in its own local frame, used by
// the coverage zoom policies.
type Payload struct {
	Label string
	Size  float64
	Color string
	Meta  map[string]any
}

// DisplayLabel returns the label if set, otherwise the fallback ID.
func (p Payload) DisplayLabel(id string) string {
	if p.Label != "" {
		return p.Label
	}
	return id
}

// Node is the serialization form of a scene node.
// In map-form input the ID field may be omitted; the map key wins.
type Node struct {
	ID    string         `json:"id,omitempty" toml:"id,omitempty"`
	Label string         `json:"label,omitempty" toml:"label,omitempty"`
	Size  float64        `json:"size,omitempty" toml:"size,omitempty"`
	Color string         `json:"color,omitempty" toml:"color,omitempty"`
	Meta  map[string]any `json:"meta,omitempty" toml:"meta,omitempty"`
}

// Edge is the serialization form of a directed edge.
// In map-form input the From field may be omitted; the map key wins.
type Edge struct {
	From      string    `json:"from,omitempty" toml:"from,omitempty"`
	To        string    `json:"to" toml:"to"`
	Transform Transform `json:"transform" toml:"transform"`
}

// Transform is the authored form of an edge transform. Either a raw 2x3
// matrix as a 6-tuple [a b c d e f], or components that compile to
// Translate(dx, dy) ∘ Rotate(rotate) ∘ Scale(scale). A present matrix takes
// precedence over components.
type Transform struct {
	Matrix []float64 `json:"matrix,omitempty" toml:"matrix,omitempty"`
	Scale  float64   `json:"scale,omitempty" toml:"scale,omitempty"`
	Rotate float64   `json:"rotate,omitempty" toml:"rotate,omitempty"` // radians
	Dx     float64   `json:"dx,omitempty" toml:"dx,omitempty"`
	Dy     float64   `json:"dy,omitempty" toml:"dy,omitempty"`
}

// Compile converts the authored transform to a matrix.
// An absent matrix with zero components compiles to the identity; a scale of
// zero means "unspecified" and defaults to 1.
func (t Transform) Compile() (geom.Matrix, error) {
	if len(t.Matrix) > 0 {
		if len(t.Matrix) != 6 {
			return geom.Matrix{}, fmt.Errorf("transform matrix has %d elements, want 6", len(t.Matrix))
		}
		return geom.Matrix{
			A: t.Matrix[0], B: t.Matrix[1], C: t.Matrix[2],
			D: t.Matrix[3], E: t.Matrix[4], F: t.Matrix[5],
		}, nil
	}

	scale := t.Scale
	if scale == 0 {
		scale = 1
	}
	m := geom.Translate(t.Dx, t.Dy)
	if t.Rotate != 0 {
		m = m.Multiply(geom.Rotate(t.Rotate))
	}
	if scale != 1 {
		m = m.Multiply(geom.Scale(scale, scale))
	}
	return m, nil
}

// FromMatrix returns the raw 6-tuple form of a matrix.
func FromMatrix(m geom.Matrix) Transform {
	return Transform{Matrix: []float64{m.A, m.B, m.C, m.D, m.E, m.F}}
}

// Scene is a decoded scene file.
type Scene struct {
	Name      string `json:"name,omitempty" toml:"name,omitempty"`
	Reference string `json:"reference,omitempty" toml:"reference,omitempty"` // optional initial reference node
	Nodes     []Node `json:"nodes" toml:"nodes"`
	Edges     []Edge `json:"edges" toml:"edges"`
}

// Build converts the scene into an indexed graph. Construction is strict:
// edges referencing unknown node IDs fail here rather than during traversal,
// and duplicate or empty node IDs are rejected by the graph.
func (s *Scene) Build() (*scene.Graph[Payload], error) {
	g := scene.New[Payload]()
	for _, n := range s.Nodes {
		err := g.AddNode(scene.Node[Payload]{
			ID: n.ID,
			Data: Payload{
				Label: n.Label,
				Size:  n.Size,
				Color: n.Color,
				Meta:  n.Meta,
			},
		})
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", n.ID, err)
		}
	}
	for _, e := range s.Edges {
		m, err := e.Transform.Compile()
		if err != nil {
			return nil, fmt.Errorf("edge %s→%s: %w", e.From, e.To, err)
		}
		if err := g.AddEdge(scene.Edge{From: e.From, To: e.To, Transform: m}); err != nil {
			return nil, fmt.Errorf("edge %s→%s: %w", e.From, e.To, err)
		}
	}
	return g, nil
}

// Navigator builds the graph and a navigator referenced at the scene's
// declared reference node, or the first node when none is declared.
func (s *Scene) Navigator() (*scene.Navigator[Payload], error) {
	g, err := s.Build()
	if err != nil {
		return nil, err
	}
	if s.Reference != "" {
		return scene.NewNavigatorAt(g, s.Reference)
	}
	return scene.NewNavigator(g)
}
