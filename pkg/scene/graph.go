// Package scene implements the floating-origin scene graph and its
// reference-frame navigator.
//
// A scene is a directed multigraph whose edges carry 2D affine transforms:
// each edge transform maps the target node's local coordinate frame into the
// source node's frame. Cycles are allowed and expected - a cyclic zoom space
// has no global coordinate system that stays numerically sound, which is why
// navigation is always expressed relative to a movable reference node.
//
// The graph is append-only from the navigator's perspective: navigators never
// add or remove nodes, so several navigators may share one graph as long as
// nothing mutates it while they are live.
package scene

import (
	"errors"
	"maps"
	"slices"

	"github.com/driftview/driftview/pkg/geom"
)

var (
	// ErrInvalidNodeID is returned by [Graph.AddNode] when the node ID is
	// empty. All nodes must have non-empty identifiers.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Graph.AddNode] when a node with the
	// same ID already exists. Node IDs must be unique.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned by [Graph.AddEdge] when the From node
	// does not exist in the graph.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Graph.AddEdge] when the To node
	// does not exist in the graph.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrUnknownNode is returned by [Navigator.SetReferenceNode] and
	// [NewNavigator] when the requested reference node is not in the graph.
	// This is a caller programming error, unlike the routine "no path"
	// conditions which are reported through boolean returns.
	ErrUnknownNode = errors.New("unknown node")
)

// Node is a vertex in the scene graph. Data is an opaque, caller-defined
// payload (size hints, labels) that the navigator never inspects or mutates.
type Node[T any] struct {
	ID   string
	Data T
}

// Edge is a directed connection between two nodes. Transform maps a point in
// the target node's local frame into the source node's frame, i.e. the
// transform applied when walking from From to To during rendering, composed
// parent ∘ child. Multiple edges between the same pair are permitted; queries
// that need one edge take the first in insertion order.
type Edge struct {
	From      string
	To        string
	Transform geom.Matrix
}

// Graph owns the node and edge sets and answers adjacency queries.
// Outgoing and incoming edges are both indexed for O(1) lookup; the reverse
// index keeps zoom-out candidate discovery cheap on dense graphs.
//
// The zero value is not usable - use [New] or [FromSets]. Graph is not safe
// for concurrent mutation; concurrent reads are fine.
type Graph[T any] struct {
	nodes    map[string]*Node[T]
	order    []string // node IDs in insertion order
	edges    []Edge
	outgoing map[string][]Edge
	incoming map[string][]Edge
}

// New creates an empty scene graph.
func New[T any]() *Graph[T] {
	return &Graph[T]{
		nodes:    make(map[string]*Node[T]),
		outgoing: make(map[string][]Edge),
		incoming: make(map[string][]Edge),
	}
}

// FromSets builds a graph from node and edge collections. Edges are added in
// slice order, so insertion-order tie-breaks are deterministic. Construction
// is strict: an edge referencing an unknown endpoint fails immediately with
// ErrUnknownSourceNode or ErrUnknownTargetNode rather than surfacing later
// during traversal.
func FromSets[T any](nodes []Node[T], edges []Edge) (*Graph[T], error) {
	g := New[T]()
	for _, n := range nodes {
		if err := g.AddNode(n); err != nil {
			return nil, err
		}
	}
	for _, e := range edges {
		if err := g.AddEdge(e); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// NodesFromMap normalizes an ID-keyed node mapping into a node slice.
// IDs are sorted so that map-form input yields a deterministic graph.
func NodesFromMap[T any](m map[string]T) []Node[T] {
	ids := slices.Sorted(maps.Keys(m))
	nodes := make([]Node[T], len(ids))
	for i, id := range ids {
		nodes[i] = Node[T]{ID: id, Data: m[id]}
	}
	return nodes
}

// EdgesFromMap normalizes a source-keyed edge mapping into a flat edge slice.
// Each edge's From field is overwritten with its map key. Sources are sorted
// for determinism; edges under one source keep their slice order.
func EdgesFromMap(m map[string][]Edge) []Edge {
	sources := slices.Sorted(maps.Keys(m))
	var edges []Edge
	for _, src := range sources {
		for _, e := range m[src] {
			e.From = src
			edges = append(edges, e)
		}
	}
	return edges
}

// AddNode adds a node to the graph. Returns ErrInvalidNodeID for an empty ID
// or ErrDuplicateNodeID if the ID is already present.
func (g *Graph[T]) AddNode(n Node[T]) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := g.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	node := n
	g.nodes[node.ID] = &node
	g.order = append(g.order, node.ID)
	return nil
}

// AddEdge adds a directed edge between two existing nodes. Returns
// ErrUnknownSourceNode or ErrUnknownTargetNode if an endpoint is missing.
// Self-loops and parallel edges are allowed.
func (g *Graph[T]) AddEdge(e Edge) error {
	if _, ok := g.nodes[e.From]; !ok {
		return ErrUnknownSourceNode
	}
	if _, ok := g.nodes[e.To]; !ok {
		return ErrUnknownTargetNode
	}
	g.edges = append(g.edges, e)
	g.outgoing[e.From] = append(g.outgoing[e.From], e)
	g.incoming[e.To] = append(g.incoming[e.To], e)
	return nil
}

// Node returns the node with the given ID and true, or nil and false.
func (g *Graph[T]) Node(id string) (*Node[T], bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Contains reports whether a node with the given ID exists.
func (g *Graph[T]) Contains(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// FirstNode returns the first node added to the graph and true, or nil and
// false for an empty graph. Navigators default their initial reference node
// to this.
func (g *Graph[T]) FirstNode() (*Node[T], bool) {
	if len(g.order) == 0 {
		return nil, false
	}
	return g.nodes[g.order[0]], true
}

// Nodes returns all nodes in insertion order.
func (g *Graph[T]) Nodes() []*Node[T] {
	nodes := make([]*Node[T], len(g.order))
	for i, id := range g.order {
		nodes[i] = g.nodes[id]
	}
	return nodes
}

// Edges returns a copy of all edges in insertion order.
func (g *Graph[T]) Edges() []Edge { return slices.Clone(g.edges) }

// NodeCount returns the number of nodes in the graph.
func (g *Graph[T]) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges in the graph.
func (g *Graph[T]) EdgeCount() int { return len(g.edges) }

// EdgesFrom returns the outgoing edges of a node in insertion order.
// A node with no outgoing edges yields an empty result, not an error.
// The returned slice is a read-only view.
func (g *Graph[T]) EdgesFrom(id string) []Edge { return g.outgoing[id] }

// EdgesInto returns the incoming edges of a node in insertion order.
// The returned slice is a read-only view.
func (g *Graph[T]) EdgesInto(id string) []Edge { return g.incoming[id] }

// EdgeBetween returns the first edge from one node to another in insertion
// order, or a zero edge and false if no such edge exists.
func (g *Graph[T]) EdgeBetween(from, to string) (Edge, bool) {
	for _, e := range g.outgoing[from] {
		if e.To == to {
			return e, true
		}
	}
	return Edge{}, false
}

// NodesInto returns the distinct source IDs of edges entering the node, one
// entry per source in first-seen order. Used for zoom-out candidate
// discovery.
func (g *Graph[T]) NodesInto(id string) []string {
	var sources []string
	seen := make(map[string]bool)
	for _, e := range g.incoming[id] {
		if !seen[e.From] {
			seen[e.From] = true
			sources = append(sources, e.From)
		}
	}
	return sources
}
