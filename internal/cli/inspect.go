package cli

import (
	"context"
	"fmt"
	"math"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/driftview/driftview/pkg/geom"
	"github.com/driftview/driftview/pkg/sceneio"
)

// inspectOpts holds the command-line flags for the inspect command.
type inspectOpts struct {
	edges bool // list edges with their transforms
}

// newInspectCmd creates the inspect command for examining scene files.
// It prints scene statistics and a node table, and optionally the edge list
// with per-edge transform summaries.
func newInspectCmd() *cobra.Command {
	var opts inspectOpts

	cmd := &cobra.Command{
		Use:   "inspect [file]",
		Short: "Show scene statistics and contents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().BoolVar(&opts.edges, "edges", false, "list edges with transforms")

	return cmd
}

func runInspect(ctx context.Context, input string, opts *inspectOpts) error {
	logger := loggerFromContext(ctx)
	logger.Debugf("Reading %s", input)

	s, err := sceneio.ReadSceneFile(input)
	if err != nil {
		return err
	}
	g, err := s.Build()
	if err != nil {
		return err
	}

	name := s.Name
	if name == "" {
		name = input
	}
	reference := s.Reference
	if reference == "" {
		if first, ok := g.FirstNode(); ok {
			reference = first.ID + " (first node)"
		}
	}

	fmt.Println(StyleTitle.Render(name))
	printKeyValue("Nodes", fmt.Sprintf("%d", g.NodeCount()))
	printKeyValue("Edges", fmt.Sprintf("%d", g.EdgeCount()))
	printKeyValue("Reference", reference)
	fmt.Println()

	fmt.Println(nodeTable(s, g.NodeCount()))

	if opts.edges {
		fmt.Println()
		fmt.Println(edgeTable(s))
	}

	printNextStep("Explore interactively", "driftview explore "+input)
	return nil
}

// nodeTable renders the node listing. Degree columns come from the scene's
// edge list rather than the graph so the table survives build-order changes.
func nodeTable(s *sceneio.Scene, nodeCount int) string {
	out := make(map[string]int, nodeCount)
	in := make(map[string]int, nodeCount)
	for _, e := range s.Edges {
		out[e.From]++
		in[e.To]++
	}

	rows := make([][]string, 0, len(s.Nodes))
	for _, n := range s.Nodes {
		label := n.Label
		if label == "" {
			label = "—"
		}
		size := "—"
		if n.Size > 0 {
			size = fmt.Sprintf("%g", n.Size)
		}
		rows = append(rows, []string{
			n.ID, label, size,
			fmt.Sprintf("%d", out[n.ID]),
			fmt.Sprintf("%d", in[n.ID]),
		})
	}

	return renderTable([]string{"ID", "Label", "Size", "Out", "In"}, rows)
}

// edgeTable renders the edge listing with compiled transform summaries.
func edgeTable(s *sceneio.Scene) string {
	rows := make([][]string, 0, len(s.Edges))
	for _, e := range s.Edges {
		m, err := e.Transform.Compile()
		summary := "invalid"
		if err == nil {
			summary = transformSummary(m)
		}
		rows = append(rows, []string{e.From, iconArrow, e.To, summary})
	}
	return renderTable([]string{"From", "", "To", "Transform"}, rows)
}

// transformSummary formats a matrix as "×scale (dx, dy)", the same shape the
// DOT exporter uses for edge labels.
func transformSummary(m geom.Matrix) string {
	dx, dy := m.Translation()
	if m.IsTranslation() {
		return fmt.Sprintf("(%g, %g)", dx, dy)
	}
	return fmt.Sprintf("×%g (%g, %g)", math.Hypot(m.A, m.D), dx, dy)
}

func renderTable(headers []string, rows [][]string) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 0 {
				return StyleHighlight
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		}).
		Render()
}
