package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/driftview/driftview/pkg/render"
	"github.com/driftview/driftview/pkg/sceneio"
)

const (
	formatDOT = "dot"
	formatSVG = "svg"
)

// exportOpts holds the command-line flags for the export command.
type exportOpts struct {
	output   string // output file path; derived from input when empty
	format   string // "dot" or "svg"
	detailed bool   // include edge transform labels
}

// newExportCmd creates the export command for generating scene diagrams.
// It renders the scene's topology as a Graphviz node-link diagram, either as
// raw DOT text or rasterized to SVG.
func newExportCmd() *cobra.Command {
	opts := exportOpts{format: formatSVG}

	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Export a scene graph as a DOT or SVG diagram",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.format != formatDOT && opts.format != formatSVG {
				return fmt.Errorf("invalid format: %s (must be 'dot' or 'svg')", opts.format)
			}
			return runExport(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default derived from input)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: svg (default), dot")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include edge transform labels")

	return cmd
}

func runExport(ctx context.Context, input string, opts *exportOpts) error {
	logger := loggerFromContext(ctx)
	logger.Infof("Exporting %s", input)

	s, err := sceneio.ReadSceneFile(input)
	if err != nil {
		return err
	}
	g, err := s.Build()
	if err != nil {
		return err
	}
	logger.Infof("Loaded scene: %d nodes, %d edges", g.NodeCount(), g.EdgeCount())

	dot := render.ToDOT(g, func(id string, p sceneio.Payload) string {
		return p.DisplayLabel(id)
	}, render.Options{
		Detailed:  opts.detailed,
		Reference: s.Reference,
	})

	data := []byte(dot)
	if opts.format == formatSVG {
		logger.Debug("Rendering SVG via graphviz")
		data, err = render.RenderSVG(ctx, dot)
		if err != nil {
			return fmt.Errorf("render svg: %w", err)
		}
	}

	outputPath := opts.output
	if outputPath == "" {
		outputPath = strings.TrimSuffix(input, filepath.Ext(input)) + "." + opts.format
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return err
	}

	printSuccess("Exported %s diagram", opts.format)
	printFile(outputPath)
	return nil
}
