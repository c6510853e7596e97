// Package pkg provides the core libraries for Driftview scene navigation.
//
// # Overview
//
// Driftview navigates effectively infinite, possibly cyclic 2D scenes. Nodes
// carry no absolute coordinates; each edge places its target relative to its
// source through an affine transform, and the view is always expressed
// relative to one reference node. The pkg directory is organized as:
//
//  1. [geom] - 2x3 affine matrices and points
//  2. [scene] - Graph store and reference-frame navigator (the core)
//  3. [sceneio] - Scene file codec (JSON and TOML)
//  4. [render] - Graphviz diagram export
//  5. [viewstore] - Saved viewport bookmarks (memory, file, Redis, MongoDB)
//  6. [observability] - Navigation instrumentation hooks
//
// # Architecture
//
// The typical data flow:
//
//	Scene file (JSON/TOML)
//	         ↓
//	    [sceneio] package (decode, validate, build graph)
//	         ↓
//	    [scene] package (navigator: pan, zoom, re-center)
//	         ↓
//	    explore TUI / HTTP server / [render] diagrams
//
// # Quick Start
//
// Load a scene and navigate it:
//
//	s, _ := sceneio.ReadSceneFile("scene.toml")
//	nav, _ := s.Navigator()
//
//	nav.ZoomAt(400, 300, 2.0)
//	nav.Pan(-50, 0)
//	if pos, ok := nav.ScreenPosition("moon", 800, 600); ok {
//	    fmt.Printf("moon at (%.0f, %.0f)\n", pos.X, pos.Y)
//	}
//
// The key property is floating-origin re-centering: when the viewport drifts
// deep into the scene, MoveForward and MoveBackward re-express the view
// relative to a nearby node without changing what is on screen, so precision
// never degrades even in cyclic, infinitely deep scenes.
//
// [geom]: https://pkg.go.dev/github.com/driftview/driftview/pkg/geom
// [scene]: https://pkg.go.dev/github.com/driftview/driftview/pkg/scene
// [sceneio]: https://pkg.go.dev/github.com/driftview/driftview/pkg/sceneio
// [render]: https://pkg.go.dev/github.com/driftview/driftview/pkg/render
// [viewstore]: https://pkg.go.dev/github.com/driftview/driftview/pkg/viewstore
// [observability]: https://pkg.go.dev/github.com/driftview/driftview/pkg/observability
package pkg
