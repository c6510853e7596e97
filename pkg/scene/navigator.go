package scene

import (
	"fmt"
	"iter"

	"github.com/driftview/driftview/pkg/geom"
	"github.com/driftview/driftview/pkg/observability"
)

// Visible is one entry of a visibility traversal: a reachable node together
// with its accumulated transform relative to the current reference node.
type Visible[T any] struct {
	ID        string
	Node      *Node[T]
	Transform geom.Matrix
}

// Navigator maintains a current reference node and a viewport transform over
// one scene graph, and implements floating-origin re-centering: the reference
// node can be swapped for a neighbor while the viewport is compensated so the
// on-screen appearance does not change. This keeps coordinates small during
// arbitrarily deep zoom sequences, including through cycles.
//
// All operations are synchronous and run to completion; re-centering is
// atomic in the sense that state is only written once every lookup has
// succeeded. A Navigator is not safe for concurrent use; multiple navigators
// may share one graph as long as the graph is not mutated.
type Navigator[T any] struct {
	graph      *Graph[T]
	reference  string
	viewport   geom.Matrix
	lastTarget string // continuity hint: the node most recently departed
}

// NewNavigator creates a navigator bound to g, referenced at the first node
// added to the graph, with an identity viewport. Returns ErrUnknownNode for
// an empty graph.
func NewNavigator[T any](g *Graph[T]) (*Navigator[T], error) {
	first, ok := g.FirstNode()
	if !ok {
		return nil, fmt.Errorf("%w: graph has no nodes", ErrUnknownNode)
	}
	return NewNavigatorAt(g, first.ID)
}

// NewNavigatorAt creates a navigator referenced at the given node with an
// identity viewport. Returns ErrUnknownNode if the node is not in the graph.
func NewNavigatorAt[T any](g *Graph[T], referenceID string) (*Navigator[T], error) {
	if !g.Contains(referenceID) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownNode, referenceID)
	}
	return &Navigator[T]{
		graph:     g,
		reference: referenceID,
		viewport:  geom.Identity(),
	}, nil
}

// Graph returns the underlying scene graph.
func (n *Navigator[T]) Graph() *Graph[T] { return n.graph }

// ReferenceNodeID returns the ID of the current reference node.
func (n *Navigator[T]) ReferenceNodeID() string { return n.reference }

// ReferenceNode returns the current reference node.
func (n *Navigator[T]) ReferenceNode() *Node[T] {
	node, _ := n.graph.Node(n.reference)
	return node
}

// SetReferenceNode moves the reference to the given node without viewport
// compensation. Returns ErrUnknownNode if the node is not in the graph;
// assigning an absent reference is a programming error, not a routine miss.
func (n *Navigator[T]) SetReferenceNode(id string) error {
	if !n.graph.Contains(id) {
		return fmt.Errorf("%w: %q", ErrUnknownNode, id)
	}
	n.reference = id
	return nil
}

// Viewport returns the current viewport transform.
func (n *Navigator[T]) Viewport() geom.Matrix { return n.viewport }

// SetViewport replaces the viewport transform unchecked, e.g. to restore a
// saved view.
func (n *Navigator[T]) SetViewport(m geom.Matrix) { n.viewport = m }

// LastTarget returns the continuity hint (the node most recently departed
// during a re-centering transition) and whether one is set.
func (n *Navigator[T]) LastTarget() (string, bool) {
	return n.lastTarget, n.lastTarget != ""
}

// ResetView resets the viewport to identity and clears the continuity hint.
// With an ID, the reference moves there first (validated); without one the
// reference stays put.
func (n *Navigator[T]) ResetView(id ...string) error {
	if len(id) > 0 {
		if err := n.SetReferenceNode(id[0]); err != nil {
			return err
		}
	}
	n.viewport = geom.Identity()
	n.lastTarget = ""
	return nil
}

// AccumulatedTransform returns the composition of edge transforms along the
// shortest edge path from the reference node to the target, found by
// breadth-first search, and true. The reference node itself yields the
// identity. Returns false if no path exists; disconnection is routine, never
// an error. Each node is visited once, so cycles cannot loop.
func (n *Navigator[T]) AccumulatedTransform(targetID string) (geom.Matrix, bool) {
	if targetID == n.reference {
		if !n.graph.Contains(targetID) {
			return geom.Matrix{}, false
		}
		return geom.Identity(), true
	}

	type entry struct {
		id        string
		transform geom.Matrix
	}
	visited := map[string]bool{n.reference: true}
	queue := []entry{{id: n.reference, transform: geom.Identity()}}
	steps := 0

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		steps++

		for _, e := range n.graph.EdgesFrom(cur.id) {
			if visited[e.To] {
				continue
			}
			visited[e.To] = true
			acc := cur.transform.Multiply(e.Transform)
			if e.To == targetID {
				observability.Navigator().OnTraversal("accumulate", steps)
				return acc, true
			}
			queue = append(queue, entry{id: e.To, transform: acc})
		}
	}
	observability.Navigator().OnTraversal("accumulate", steps)
	return geom.Matrix{}, false
}

// VisibleNodes returns a lazy sequence of maxCount node occurrences with
// their accumulated transforms, for a renderer to draw each frame. The
// reference node is always yielded first with the identity transform,
// followed by a breadth-first expansion that deliberately re-enters cycles:
// each pass through a cycle yields the same nodes again with the loop's
// transform composed on, which is what lets a renderer draw the nested
// copies of a cyclic scene. Boundedness therefore comes from maxCount alone,
// not from a visited set; an acyclic scene simply exhausts its frontier
// early. IDs missing from the graph are silently skipped, so sparse or
// partially built scenes render what they can. Each call starts a fresh
// traversal.
func (n *Navigator[T]) VisibleNodes(maxCount int) iter.Seq[Visible[T]] {
	return func(yield func(Visible[T]) bool) {
		if maxCount <= 0 {
			return
		}
		ref, ok := n.graph.Node(n.reference)
		if !ok {
			return
		}
		root := Visible[T]{ID: ref.ID, Node: ref, Transform: geom.Identity()}
		if !yield(root) {
			return
		}

		yielded := 1
		queue := []Visible[T]{root}

		for len(queue) > 0 && yielded < maxCount {
			cur := queue[0]
			queue = queue[1:]

			for _, e := range n.graph.EdgesFrom(cur.ID) {
				node, ok := n.graph.Node(e.To)
				if !ok {
					continue
				}
				v := Visible[T]{ID: e.To, Node: node, Transform: cur.Transform.Multiply(e.Transform)}
				if !yield(v) {
					return
				}
				yielded++
				if yielded >= maxCount {
					return
				}
				queue = append(queue, v)
			}
		}
	}
}

// ScreenPosition returns where a node is drawn on a canvas of the given
// dimensions: the canvas center offset by the translation component of
// viewport ∘ accumulated. Returns false if the node is unreachable from the
// reference.
func (n *Navigator[T]) ScreenPosition(id string, canvasWidth, canvasHeight float64) (geom.Point, bool) {
	acc, ok := n.AccumulatedTransform(id)
	if !ok {
		return geom.Point{}, false
	}
	screen := n.viewport.Multiply(acc)
	tx, ty := screen.Translation()
	return geom.Point{X: canvasWidth/2 + tx, Y: canvasHeight/2 + ty}, true
}

// Pan composes a pure translation into the viewport. Panning never triggers
// re-centering; only zoom does.
func (n *Navigator[T]) Pan(dx, dy float64) {
	n.viewport = geom.Translate(dx, dy).Multiply(n.viewport)
}

// ZoomAt composes a scale about (cx, cy) into the viewport. When canvas
// dimensions and at least one policy are supplied via options, the
// re-centering check runs immediately: a factor below 1 checks the zoom-out
// direction, otherwise zoom-in. Reports whether the reference node changed.
// The factor is unbounded; a factor of exactly 1 composes an identity.
func (n *Navigator[T]) ZoomAt(cx, cy, factor float64, opts ...ZoomOption[T]) bool {
	n.viewport = geom.ScaleAbout(cx, cy, factor).Multiply(n.viewport)

	var cfg zoomConfig[T]
	for _, opt := range opts {
		opt(&cfg)
	}
	recentered := false
	if cfg.hasCanvas() && (cfg.zoomIn != nil || cfg.zoomOut != nil) {
		recentered = n.checkReferenceNode(factor < 1, cfg)
	}
	observability.Navigator().OnZoom(factor, recentered)
	return recentered
}

// checkReferenceNode decides whether a neighbor should take over as the
// coordinate origin and performs the transition. The policies carry the
// caller's judgment of screen dominance; the navigator only supplies the
// geometry.
func (n *Navigator[T]) checkReferenceNode(zoomingOut bool, cfg zoomConfig[T]) bool {
	if zoomingOut {
		if cfg.zoomOut == nil {
			return false
		}
		prev, ok := n.BestPrevNode()
		if !ok || !cfg.zoomOut(n, cfg.width, cfg.height, prev) {
			return false
		}
		return n.MoveBackward(prev)
	}

	if cfg.zoomIn == nil {
		return false
	}
	next, ok := n.bestNextByPolicy(cfg.width, cfg.height, cfg.zoomIn)
	if !ok {
		return false
	}
	return n.MoveForward(next)
}

// BestNextNode returns the preferred successor of the reference node: the
// target of an outgoing edge, favoring the continuity hint when it is a
// direct successor, otherwise the first edge in insertion order. Returns
// false if the reference has no outgoing edges.
func (n *Navigator[T]) BestNextNode() (string, bool) {
	edges := n.graph.EdgesFrom(n.reference)
	if len(edges) == 0 {
		return "", false
	}
	if n.lastTarget != "" {
		for _, e := range edges {
			if e.To == n.lastTarget {
				return e.To, true
			}
		}
	}
	return edges[0].To, true
}

// BestPrevNode returns the preferred predecessor of the reference node,
// favoring the continuity hint, otherwise the first incoming source in
// first-seen order. Returns false if the reference has no predecessors.
func (n *Navigator[T]) BestPrevNode() (string, bool) {
	sources := n.graph.NodesInto(n.reference)
	if len(sources) == 0 {
		return "", false
	}
	if n.lastTarget != "" {
		for _, src := range sources {
			if src == n.lastTarget {
				return src, true
			}
		}
	}
	return sources[0], true
}

// bestNextByPolicy evaluates every distinct successor against the zoom-in
// policy and, among those that qualify, picks the one whose screen position
// is closest to the canvas center. This subsumes the simple heuristic: with
// zero or one qualifying candidate it behaves identically.
func (n *Navigator[T]) bestNextByPolicy(w, h float64, policy Policy[T]) (string, bool) {
	var (
		best     string
		bestDist float64
		found    bool
	)
	center := geom.Point{X: w / 2, Y: h / 2}
	seen := make(map[string]bool)
	for _, e := range n.graph.EdgesFrom(n.reference) {
		if seen[e.To] {
			continue
		}
		seen[e.To] = true
		if !policy(n, w, h, e.To) {
			continue
		}
		pos, ok := n.ScreenPosition(e.To, w, h)
		if !ok {
			continue
		}
		if dist := pos.Distance(center); !found || dist < bestDist {
			best, bestDist, found = e.To, dist, true
		}
	}
	return best, found
}

// MoveForward re-centers onto a successor of the reference node (zoom-in
// direction). Without an argument the candidate comes from BestNextNode;
// with one, the target is validated against actual edge existence. The
// viewport is replaced by viewport ∘ accumulated so the scene's on-screen
// appearance is exactly unchanged - re-centering only changes which node is
// the coordinate origin. Returns false, leaving all state untouched, when no
// candidate or edge exists; that is a routine outcome, not an error.
func (n *Navigator[T]) MoveForward(targetID ...string) bool {
	var next string
	if len(targetID) > 0 {
		next = targetID[0]
		if _, ok := n.graph.EdgeBetween(n.reference, next); !ok {
			return false
		}
	} else {
		var ok bool
		next, ok = n.BestNextNode()
		if !ok {
			return false
		}
	}

	acc, ok := n.AccumulatedTransform(next)
	if !ok {
		return false
	}

	// The next node's frame becomes the identity frame; its previous
	// on-screen transform is the exact compensation.
	departed := n.reference
	n.viewport = n.viewport.Multiply(acc)
	n.reference = next
	n.lastTarget = departed
	observability.Navigator().OnRecenter("forward", departed, next)
	return true
}

// MoveBackward re-centers onto a predecessor of the reference node (zoom-out
// direction). Predecessors are derived from forward edges, so the edge from
// the chosen predecessor into the current reference must exist; its exact
// inverse is composed into the viewport to preserve the on-screen scene.
// Returns false, leaving all state untouched, when no predecessor, edge, or
// inverse exists.
func (n *Navigator[T]) MoveBackward(targetID ...string) bool {
	var prev string
	if len(targetID) > 0 {
		prev = targetID[0]
	} else {
		var ok bool
		prev, ok = n.BestPrevNode()
		if !ok {
			return false
		}
	}

	edge, ok := n.graph.EdgeBetween(prev, n.reference)
	if !ok {
		return false
	}
	inv, ok := edge.Transform.Invert()
	if !ok {
		return false
	}

	departed := n.reference
	n.viewport = n.viewport.Multiply(inv)
	n.reference = prev
	n.lastTarget = departed
	observability.Navigator().OnRecenter("backward", departed, prev)
	return true
}
