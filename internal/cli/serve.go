package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/driftview/driftview/internal/server"
	"github.com/driftview/driftview/pkg/sceneio"
	"github.com/driftview/driftview/pkg/viewstore"
)

// serveOpts holds the command-line flags for the serve command.
// Empty values fall back to the loaded config.
type serveOpts struct {
	addr    string
	backend string
}

// newServeCmd creates the serve command, which exposes navigation sessions
// over the scene graph as an HTTP API. Each session is an independent
// viewport; view bookmarks are persisted through the configured store.
func newServeCmd() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve [file]",
		Short: "Serve navigation sessions over HTTP",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default from config, :8433)")
	cmd.Flags().StringVar(&opts.backend, "store", "", "view store backend: memory (default), file, redis, mongo")

	return cmd
}

func runServe(ctx context.Context, input string, opts *serveOpts) error {
	logger := loggerFromContext(ctx)
	cfg := configFromContext(ctx)

	if opts.addr == "" {
		opts.addr = cfg.Server.Addr
	}
	if opts.backend == "" {
		opts.backend = cfg.Store.Backend
	}

	s, err := sceneio.ReadSceneFile(input)
	if err != nil {
		return err
	}
	g, err := s.Build()
	if err != nil {
		return err
	}
	logger.Infof("Loaded scene: %d nodes, %d edges", g.NodeCount(), g.EdgeCount())

	views, err := newViewStore(ctx, opts.backend, cfg.Store)
	if err != nil {
		return err
	}
	defer views.Close()
	logger.Debugf("View store backend: %s", opts.backend)

	srv := server.New(server.Config{
		Addr:         opts.addr,
		CanvasWidth:  cfg.Canvas.Width,
		CanvasHeight: cfg.Canvas.Height,
	}, g, views, logger)

	return srv.Run(ctx)
}

// newViewStore builds the view bookmark store for the chosen backend.
func newViewStore(ctx context.Context, backend string, cfg StoreConfig) (viewstore.Store, error) {
	switch backend {
	case "memory":
		return viewstore.NewMemoryStore(), nil
	case "file":
		dir := cfg.Dir
		if dir == "" {
			dir = ".driftview/views"
		}
		return viewstore.NewFileStore(dir)
	case "redis":
		return viewstore.NewRedisStore(ctx, viewstore.RedisConfig{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
	case "mongo":
		return viewstore.NewMongoStore(ctx, viewstore.MongoConfig{
			URI:      cfg.URI,
			Database: cfg.Database,
		})
	default:
		return nil, fmt.Errorf("unknown view store backend: %s (must be 'memory', 'file', 'redis', or 'mongo')", backend)
	}
}
