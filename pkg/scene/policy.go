package scene

import "math"

// Policy is the caller's judgment of whether a candidate node dominates
// (zoom-in) or no longer dominates (zoom-out) a canvas of the given
// dimensions. Policies are called synchronously during ZoomAt and must not
// mutate the navigator; re-entrant mutation is unsupported.
type Policy[T any] func(nav *Navigator[T], canvasWidth, canvasHeight float64, candidateID string) bool

// ZoomOption configures the re-centering check of [Navigator.ZoomAt].
type ZoomOption[T any] func(*zoomConfig[T])

type zoomConfig[T any] struct {
	width, height float64
	zoomIn        Policy[T]
	zoomOut       Policy[T]
}

func (c zoomConfig[T]) hasCanvas() bool { return c.width > 0 && c.height > 0 }

// WithCanvas supplies the canvas dimensions used by the re-centering check
// and the policy callbacks.
func WithCanvas[T any](width, height float64) ZoomOption[T] {
	return func(c *zoomConfig[T]) {
		c.width = width
		c.height = height
	}
}

// WithZoomInPolicy supplies the policy consulted when zooming in.
func WithZoomInPolicy[T any](p Policy[T]) ZoomOption[T] {
	return func(c *zoomConfig[T]) { c.zoomIn = p }
}

// WithZoomOutPolicy supplies the policy consulted when zooming out.
func WithZoomOutPolicy[T any](p Policy[T]) ZoomOption[T] {
	return func(c *zoomConfig[T]) { c.zoomOut = p }
}

// projectedExtent returns the candidate's local extent scaled onto the
// screen, using the length of the transformed x basis vector as the scale
// factor of viewport ∘ accumulated.
func projectedExtent[T any](nav *Navigator[T], id string, extent float64) (float64, bool) {
	acc, ok := nav.AccumulatedTransform(id)
	if !ok {
		return 0, false
	}
	screen := nav.Viewport().Multiply(acc)
	scale := math.Hypot(screen.A, screen.D)
	return extent * scale, true
}

// CoverageZoomIn builds a zoom-in policy that qualifies a candidate once its
// projected extent covers the smaller canvas dimension. extent reports a
// node's side length in its own local frame from its payload.
func CoverageZoomIn[T any](extent func(T) float64) Policy[T] {
	return func(nav *Navigator[T], w, h float64, candidateID string) bool {
		node, ok := nav.Graph().Node(candidateID)
		if !ok {
			return false
		}
		projected, ok := projectedExtent(nav, candidateID, extent(node.Data))
		return ok && projected >= math.Min(w, h)
	}
}

// CoverageZoomOut builds a zoom-out policy that qualifies a re-centering
// once the current reference node has shrunk below the smaller canvas
// dimension, i.e. it no longer covers the screen.
func CoverageZoomOut[T any](extent func(T) float64) Policy[T] {
	return func(nav *Navigator[T], w, h float64, candidateID string) bool {
		ref := nav.ReferenceNode()
		if ref == nil {
			return false
		}
		projected, ok := projectedExtent(nav, ref.ID, extent(ref.Data))
		return ok && projected < math.Min(w, h)
	}
}
