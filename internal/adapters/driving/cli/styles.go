package cli

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/Byrix/bom-scrapper/internal/core/domain"
)

// styles renders command output.
type styles struct {
	Title   lipgloss.Style
	Label   lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
}

func newStyles(w io.Writer) styles {
	// The renderer drops colour when w is not a terminal.
	r := lipgloss.NewRenderer(w)
	return styles{
		Title:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED")),
		Label:   r.NewStyle().Width(22),
		Muted:   r.NewStyle().Foreground(lipgloss.Color("#6C7086")),
		Success: r.NewStyle().Foreground(lipgloss.Color("#A6E3A1")),
		Warning: r.NewStyle().Foreground(lipgloss.Color("#F9E2AF")),
		Error:   r.NewStyle().Foreground(lipgloss.Color("#F38BA8")),
	}
}

// stepStatus renders a step outcome.
func (s styles) stepStatus(status domain.StepStatus) string {
	switch status {
	case domain.StepDone:
		return s.Success.Render("done")
	case domain.StepSkipped:
		return s.Muted.Render("skipped")
	case domain.StepFailed:
		return s.Error.Render("failed")
	default:
		return string(status)
	}
}

// runStatus renders a run outcome.
func (s styles) runStatus(status domain.RunStatus) string {
	switch status {
	case domain.RunSucceeded:
		return s.Success.Render(string(status))
	case domain.RunFailed:
		return s.Error.Render(string(status))
	default:
		return s.Warning.Render(string(status))
	}
}

// check renders a yes/no marker.
func (s styles) check(ok bool) string {
	if ok {
		return s.Success.Render("yes")
	}
	return s.Error.Render("no")
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
