// Package cli implements the driftview command-line interface.
//
// This package provides commands for inspecting scene files, exporting them
// as DOT/SVG diagrams, exploring them interactively in a terminal UI, and
// serving them over HTTP. The CLI is built using cobra and supports verbose
// logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - inspect: Show scene statistics and node/edge details
//   - export: Generate DOT or SVG diagrams of the scene graph
//   - explore: Navigate the scene interactively (pan, zoom, re-center)
//   - serve: Expose navigation sessions over an HTTP API
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
//
// # Example
//
//	import "github.com/driftview/driftview/internal/cli"
//
//	func main() {
//	    if err := cli.Execute(context.Background()); err != nil {
//	        os.Exit(1)
//	    }
//	}
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// The logger writes to w and filters messages at the specified level.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// navLogHooks logs navigation events at debug level. Registered globally
// when --verbose is set so re-centering decisions show up in the log stream.
type navLogHooks struct {
	logger *log.Logger
}

func (h navLogHooks) OnRecenter(direction, from, to string) {
	h.logger.Debug("re-centered", "direction", direction, "from", from, "to", to)
}

func (h navLogHooks) OnZoom(factor float64, recentered bool) {
	h.logger.Debug("zoom", "factor", factor, "recentered", recentered)
}

func (h navLogHooks) OnTraversal(op string, visited int) {
	h.logger.Debug("traversal", "op", op, "visited", visited)
}

// ctxKey is the type for context keys used in this package.
// Using a distinct type prevents collisions with other packages.
type ctxKey int

// loggerKey is the context key for storing a logger.
const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
// The logger can be retrieved later with loggerFromContext.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx.
// If no logger is attached, it returns log.Default().
// This ensures commands always have a valid logger even if context setup fails.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
