// Package ui provides consistent styling and components for the stretchres CLI
package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/bnema/stretchres/internal/display"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Color palette - consistent across the application
var (
	ColorPrimary = lipgloss.Color("39")  // Bright blue
	ColorSuccess = lipgloss.Color("82")  // Green
	ColorWarning = lipgloss.Color("214") // Orange
	ColorError   = lipgloss.Color("196") // Red
	ColorSubtle  = lipgloss.Color("241") // Medium gray
)

// Styles renders text for one output. Colors are dropped automatically when
// the output is not a terminal.
type Styles struct {
	r *lipgloss.Renderer

	Header  lipgloss.Style
	Label   lipgloss.Style
	Subtle  lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
}

// NewStyles creates styles bound to w's color profile
func NewStyles(w io.Writer) *Styles {
	r := lipgloss.NewRenderer(w)
	return &Styles{
		r:       r,
		Header:  r.NewStyle().Bold(true).Foreground(ColorPrimary),
		Label:   r.NewStyle().Bold(true),
		Subtle:  r.NewStyle().Foreground(ColorSubtle),
		Success: r.NewStyle().Foreground(ColorSuccess),
		Warning: r.NewStyle().Foreground(ColorWarning),
		Error:   r.NewStyle().Foreground(ColorError),
	}
}

// Outcome renders a setter outcome in the color matching its status
func (s *Styles) Outcome(o display.Outcome) string {
	switch o.Status {
	case display.StatusApplied:
		return s.Success.Render("✓ " + o.Message)
	case display.StatusNotFound:
		return s.Warning.Render("! " + o.Message)
	default:
		return s.Error.Render("✗ " + o.Message)
	}
}

// DisplayLine renders one display for listings
func (s *Styles) DisplayLine(d display.Display) string {
	var b strings.Builder

	title := fmt.Sprintf("Display %d", d.Index+1)
	if d.Primary() {
		title += " (primary)"
	}
	b.WriteString(s.Header.Render(title))
	b.WriteString("\n")

	fmt.Fprintf(&b, "  %s %s\n", s.Label.Render("Device:     "), d.Name)
	if d.Description != "" {
		fmt.Fprintf(&b, "  %s %s\n", s.Label.Render("Description:"), d.Description)
	}
	if d.HasMode {
		fmt.Fprintf(&b, "  %s %s\n", s.Label.Render("Mode:       "), d.Mode)
		if d.Mode.Fields.Has(display.FieldPosition) {
			fmt.Fprintf(&b, "  %s (%d, %d)\n", s.Label.Render("Position:   "), d.Mode.PositionX, d.Mode.PositionY)
		}
	} else {
		fmt.Fprintf(&b, "  %s %s\n", s.Label.Render("Mode:       "), s.Subtle.Render("inactive"))
	}
	fmt.Fprintf(&b, "  %s %s\n", s.Label.Render("State:      "), s.Subtle.Render(d.StateFlags.String()))
	return b.String()
}

// DisplayTable renders one row per display
func (s *Styles) DisplayTable(displays []display.Display) string {
	rows := make([][]string, 0, len(displays))
	for _, d := range displays {
		mode, position := "inactive", "-"
		if d.HasMode {
			mode = d.Mode.String()
			if d.Mode.Fields.Has(display.FieldPosition) {
				position = fmt.Sprintf("%d,%d", d.Mode.PositionX, d.Mode.PositionY)
			}
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", d.Index+1),
			d.Name,
			d.Description,
			mode,
			position,
			d.StateFlags.String(),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(s.r.NewStyle().Foreground(ColorSubtle)).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return s.r.NewStyle().Foreground(ColorPrimary).Bold(true).Padding(0, 1)
			case col == 0:
				return s.r.NewStyle().Bold(true).Padding(0, 1)
			default:
				return s.r.NewStyle().Padding(0, 1)
			}
		}).
		Headers("NO.", "DEVICE", "DESCRIPTION", "MODE", "POSITION", "STATE").
		Rows(rows...)

	return t.String()
}
