package tui

import "github.com/charmbracelet/lipgloss"

// Unit status values shown in the STATUS column.
const (
	StatusPending   = "pending"
	StatusCompiling = "compiling"
	StatusCompiled  = "compiled"
	StatusCached    = "cached"
	StatusFailed    = "failed"
)

var (
	// HeaderStyle styles the column header row.
	HeaderStyle = lipgloss.NewStyle().Bold(true)

	// TitleStyle styles the line above the table.
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("4"))

	faintStyle = lipgloss.NewStyle().Faint(true)

	statusStyles = map[string]lipgloss.Style{
		StatusCompiled:  lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		StatusCached:    lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		StatusCompiling: lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		StatusFailed:    lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		StatusPending:   faintStyle,

		// doctor
		"ok":      lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		"warn":    lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		"missing": lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	}
)

// StatusStyle returns the lipgloss style for the given status string.
func StatusStyle(status string) lipgloss.Style {
	if s, ok := statusStyles[status]; ok {
		return s
	}
	return lipgloss.NewStyle()
}
