// Package viewstore persists named viewport states.
//
// A view is the small mutable part of a navigator - which node is the
// reference and the viewport transform - so saving and restoring one is how
// a user bookmarks a place in an otherwise unbounded zoom space. Backends:
//   - memory: in-process storage for tests and defaults
//   - file: one JSON file per view for CLI usage
//   - redis: shared storage for multi-instance servers
//   - mongo: durable storage for the hosted server
package viewstore

import (
	"context"
	"errors"
	"time"

	"github.com/driftview/driftview/pkg/geom"
	"github.com/driftview/driftview/pkg/scene"
)

// ErrNotFound is returned by [Store.Load] when no view with the requested
// name exists.
var ErrNotFound = errors.New("view not found")

// View is a persisted viewport state.
type View struct {
	Reference string      `json:"reference" bson:"reference"`
	Viewport  geom.Matrix `json:"viewport" bson:"viewport"`
	SavedAt   time.Time   `json:"saved_at" bson:"saved_at"`
}

// Store is the interface for view storage backends.
type Store interface {
	// Save stores a view under a name, replacing any previous view.
	Save(ctx context.Context, name string, v View) error

	// Load retrieves a view by name. Returns ErrNotFound if absent.
	Load(ctx context.Context, name string) (View, error)

	// Delete removes a view. Deleting an absent view is not an error.
	Delete(ctx context.Context, name string) error

	// List returns the stored view names in unspecified order.
	List(ctx context.Context) ([]string, error)

	// Close releases backend resources.
	Close() error
}

// Capture snapshots a navigator's restorable state.
func Capture[T any](nav *scene.Navigator[T]) View {
	return View{
		Reference: nav.ReferenceNodeID(),
		Viewport:  nav.Viewport(),
		SavedAt:   time.Now(),
	}
}

// Apply restores a view onto a navigator. Returns scene.ErrUnknownNode if
// the view references a node absent from the navigator's graph, e.g. a view
// saved against a different scene.
func Apply[T any](v View, nav *scene.Navigator[T]) error {
	if err := nav.SetReferenceNode(v.Reference); err != nil {
		return err
	}
	nav.SetViewport(v.Viewport)
	return nil
}
