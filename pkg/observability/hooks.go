// Package observability provides hooks for instrumenting scene navigation.
//
// The scene packages stay free of logging and metrics dependencies; instead
// they emit events through hooks registered here. Consumers register an
// implementation once at startup:
//
//	func main() {
//	    observability.SetNavigatorHooks(&myHooks{})
//	    // ... run application
//	}
//
// The default implementations are no-ops, so uninstrumented use costs a
// read-locked interface call and nothing more.
package observability

import "sync"

// NavigatorHooks receives events from scene navigators.
type NavigatorHooks interface {
	// OnRecenter records a completed reference-node transition.
	// direction is "forward" (zoom-in) or "backward" (zoom-out).
	OnRecenter(direction, from, to string)

	// OnZoom records a zoom gesture and whether it re-centered the reference.
	OnZoom(factor float64, recentered bool)

	// OnTraversal records a graph traversal and the number of nodes visited.
	OnTraversal(op string, visited int)
}

// NoopNavigatorHooks is a no-op implementation of NavigatorHooks.
type NoopNavigatorHooks struct{}

func (NoopNavigatorHooks) OnRecenter(string, string, string) {}
func (NoopNavigatorHooks) OnZoom(float64, bool)              {}
func (NoopNavigatorHooks) OnTraversal(string, int)           {}

var (
	navigatorHooks NavigatorHooks = NoopNavigatorHooks{}
	hooksMu        sync.RWMutex
)

// SetNavigatorHooks registers custom navigator hooks.
// Call once at application startup before navigation begins.
func SetNavigatorHooks(h NavigatorHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		navigatorHooks = h
	}
}

// Navigator returns the registered navigator hooks.
func Navigator() NavigatorHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return navigatorHooks
}
