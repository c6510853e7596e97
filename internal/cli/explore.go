package cli

import (
	"context"
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/driftview/driftview/pkg/scene"
	"github.com/driftview/driftview/pkg/sceneio"
)

// maxVisibleRows bounds the node table so deep or cyclic scenes stay readable.
const maxVisibleRows = 12

// newExploreCmd creates the explore command for interactive navigation.
// Arrow keys pan, +/- zoom at the canvas center, f/b force a re-centering
// move, and r resets the view. Zooming runs the coverage policies, so the
// reference node follows the viewport automatically.
func newExploreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "explore [file]",
		Short: "Navigate a scene interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExplore(cmd.Context(), args[0])
		},
	}
}

func runExplore(ctx context.Context, input string) error {
	logger := loggerFromContext(ctx)
	cfg := configFromContext(ctx)

	s, err := sceneio.ReadSceneFile(input)
	if err != nil {
		return err
	}
	nav, err := s.Navigator()
	if err != nil {
		return err
	}
	logger.Debugf("Exploring %s: %d nodes, %d edges", input, nav.Graph().NodeCount(), nav.Graph().EdgeCount())

	name := s.Name
	if name == "" {
		name = input
	}

	model := newExploreModel(name, nav, cfg)
	_, err = tea.NewProgram(model, tea.WithContext(ctx)).Run()
	return err
}

// =============================================================================
// ExploreModel - Interactive scene navigation
// =============================================================================

// ExploreModel is the bubbletea model for interactive scene exploration.
// It owns one navigator and translates keystrokes into pan, zoom, and
// re-centering operations.
type ExploreModel struct {
	Name string
	Nav  *scene.Navigator[sceneio.Payload]

	canvasW float64
	canvasH float64
	zoom    float64
	pan     float64

	status string
}

// newExploreModel creates the explore model with config-driven gesture sizes.
func newExploreModel(name string, nav *scene.Navigator[sceneio.Payload], cfg Config) ExploreModel {
	return ExploreModel{
		Name:    name,
		Nav:     nav,
		canvasW: cfg.Canvas.Width,
		canvasH: cfg.Canvas.Height,
		zoom:    cfg.Zoom.Step,
		pan:     cfg.Zoom.Pan,
	}
}

func (m ExploreModel) Init() tea.Cmd {
	return nil
}

func (m ExploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit

	case "left", "h":
		m.Nav.Pan(m.pan, 0)
		m.status = ""
	case "right", "l":
		m.Nav.Pan(-m.pan, 0)
		m.status = ""
	case "up", "k":
		m.Nav.Pan(0, m.pan)
		m.status = ""
	case "down", "j":
		m.Nav.Pan(0, -m.pan)
		m.status = ""

	case "+", "=":
		m.status = m.zoomAtCenter(m.zoom)
	case "-", "_":
		m.status = m.zoomAtCenter(1 / m.zoom)

	case "f":
		before := m.Nav.ReferenceNodeID()
		if m.Nav.MoveForward() {
			m.status = fmt.Sprintf("moved forward: %s %s %s", before, iconArrow, m.Nav.ReferenceNodeID())
		} else {
			m.status = "no forward target"
		}
	case "b":
		before := m.Nav.ReferenceNodeID()
		if m.Nav.MoveBackward() {
			m.status = fmt.Sprintf("moved backward: %s %s %s", before, iconArrow, m.Nav.ReferenceNodeID())
		} else {
			m.status = "no backward target"
		}

	case "r":
		if err := m.Nav.ResetView(); err == nil {
			m.status = "view reset"
		}
	}

	return m, nil
}

// zoomAtCenter zooms at the canvas center with the coverage policies active
// and reports whether the reference node changed.
func (m *ExploreModel) zoomAtCenter(factor float64) string {
	before := m.Nav.ReferenceNodeID()
	recentered := m.Nav.ZoomAt(m.canvasW/2, m.canvasH/2, factor,
		scene.WithCanvas[sceneio.Payload](m.canvasW, m.canvasH),
		scene.WithZoomInPolicy(scene.CoverageZoomIn(nodeExtent)),
		scene.WithZoomOutPolicy(scene.CoverageZoomOut(nodeExtent)),
	)
	if recentered {
		return fmt.Sprintf("re-centered: %s %s %s", before, iconArrow, m.Nav.ReferenceNodeID())
	}
	return ""
}

func (m ExploreModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Name))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("arrows pan  +/- zoom  f/b move  r reset  q quit"))
	b.WriteString("\n\n")

	vp := m.Nav.Viewport()
	dx, dy := vp.Translation()
	b.WriteString(fmt.Sprintf("%s %s   %s ×%.3g   %s (%.1f, %.1f)\n\n",
		StyleDim.Render("reference"), styleReference.Render(m.Nav.ReferenceNodeID()),
		StyleDim.Render("zoom"), math.Hypot(vp.A, vp.D),
		StyleDim.Render("offset"), dx, dy,
	))

	b.WriteString(m.visibleTable())
	b.WriteString("\n")

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(StyleSuccess.Render(m.status))
		b.WriteString("\n")
	}

	return b.String()
}

// visibleTable lists nodes reachable from the reference with their screen
// positions on the logical canvas.
func (m ExploreModel) visibleTable() string {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	rows := [][]string{}
	for v := range m.Nav.VisibleNodes(maxVisibleRows) {
		marker := "  "
		if v.ID == m.Nav.ReferenceNodeID() {
			marker = "▸ "
		}

		pos := "—"
		if p, ok := m.Nav.ScreenPosition(v.ID, m.canvasW, m.canvasH); ok {
			pos = fmt.Sprintf("(%.0f, %.0f)", p.X, p.Y)
		}

		scale := math.Hypot(v.Transform.A, v.Transform.D)
		rows = append(rows, []string{
			marker, v.Node.Data.DisplayLabel(v.ID), pos, fmt.Sprintf("×%.3g", scale),
		})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Node", "Screen", "Scale").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if row < len(rows) && rows[row][0] == "▸ " {
				return styleReference
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		}).
		Render()
}

// nodeExtent feeds node sizes to the coverage policies.
func nodeExtent(p sceneio.Payload) float64 { return p.Size }
