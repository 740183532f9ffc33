package tui

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"elecbind/internal/config"
	"elecbind/internal/features"
)

// SetupResult holds the values picked in the interactive config setup.
type SetupResult struct {
	Cancelled bool
	Strategy  config.Strategy
	Jobs      int
	Features  []string
}

var strategyInfo = []struct{ name, desc string }{
	{string(config.StrategyLink), "Link the prebuilt libelec archive shipped\nwith the libelec tree. No C compiler needed."},
	{string(config.StrategyCompile), "Compile the libelec sources with the detected\ntoolchain and archive them under the build dir."},
}

var jobsOptions = []string{"auto", "1", "2", "4", "8", "16"}

const jobsNote = "Parallel compiler invocations for the compile\n" +
	"strategy. auto uses one per CPU."

const (
	rowStrategy = iota
	rowJobs
	rowFirstFeature
)

type carouselRow struct {
	label   string
	options []string
	current int
	feature features.Feature
}

type setupModel struct {
	rows      []carouselRow
	focused   int
	done      bool
	cancelled bool
	invalid   error
}

func newSetupModel(cfg config.Config) setupModel {
	strategies := []string{string(config.StrategyLink), string(config.StrategyCompile)}
	rows := []carouselRow{
		{label: "Strategy", options: strategies, current: findIdx(strategies, string(cfg.Strategy), 0)},
		{label: "Jobs", options: jobsOptions, current: findIdx(jobsOptions, strconv.Itoa(cfg.Build.Jobs), 0)},
	}
	enabled := map[string]bool{}
	for _, f := range cfg.Features {
		enabled[f] = true
	}
	for _, f := range features.Known() {
		cur := 0
		if enabled[string(f)] {
			cur = 1
		}
		rows = append(rows, carouselRow{
			label:   string(f),
			options: []string{"off", "on"},
			current: cur,
			feature: f,
		})
	}
	return setupModel{rows: rows}
}

func findIdx(options []string, value string, defaultIdx int) int {
	for i, o := range options {
		if o == value {
			return i
		}
	}
	return defaultIdx
}

func (m setupModel) Init() tea.Cmd {
	return nil
}

func (m setupModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "up", "k":
		if m.focused > 0 {
			m.focused--
		}
	case "down", "j":
		if m.focused < len(m.rows)-1 {
			m.focused++
		}
	case "left", "h":
		row := &m.rows[m.focused]
		row.current = (row.current - 1 + len(row.options)) % len(row.options)
		m.invalid = nil
	case "right", "l", " ":
		row := &m.rows[m.focused]
		row.current = (row.current + 1) % len(row.options)
		m.invalid = nil
	case "enter":
		if _, err := features.Parse(m.selectedFeatures()...); err != nil {
			m.invalid = err
			return m, nil
		}
		m.done = true
		return m, tea.Quit
	case "esc", "q", "ctrl+c":
		m.cancelled = true
		return m, tea.Quit
	}
	return m, nil
}

func (m setupModel) selectedFeatures() []string {
	var out []string
	for _, row := range m.rows[rowFirstFeature:] {
		if row.options[row.current] == "on" {
			out = append(out, string(row.feature))
		}
	}
	return out
}

func (m setupModel) View() string {
	if m.cancelled {
		return faintStyle.Render("  cancelled") + "\n"
	}

	var sb strings.Builder
	sb.WriteString("\n")
	if m.done {
		for _, row := range m.rows {
			fmt.Fprintf(&sb, "%s %s\n", faintStyle.Render(fmt.Sprintf("  %-20s", row.label)), row.options[row.current])
		}
		sb.WriteString("\n")
		return sb.String()
	}

	focused := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("4"))
	for i, row := range m.rows {
		prefix, label := "  ", faintStyle.Render(fmt.Sprintf("%-20s", row.label))
		if i == m.focused {
			prefix, label = "▸ ", focused.Render(fmt.Sprintf("%-20s", row.label))
		}
		fmt.Fprintf(&sb, "%s%s ←  %-8s→\n", prefix, label, row.options[row.current])
	}

	sb.WriteString("\n")
	sb.WriteString(m.renderHelpPanel())
	sb.WriteString("\n")
	sb.WriteString(faintStyle.Render("  [↑↓] Navigate  [←→] Change  [Enter] Save  [Esc] Cancel"))
	sb.WriteString("\n")
	return sb.String()
}

func (m setupModel) renderHelpPanel() string {
	panel := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1).
		BorderForeground(lipgloss.Color("8"))

	if m.invalid != nil {
		red := lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
		return panel.Render(red.Render(m.invalid.Error()))
	}

	switch m.focused {
	case rowStrategy:
		return panel.Render(listPanel(m.rows[rowStrategy].options[m.rows[rowStrategy].current], strategyInfo, ""))
	case rowJobs:
		return panel.Render(jobsNote)
	default:
		return panel.Render(features.Describe(m.rows[m.focused].feature))
	}
}

func listPanel(current string, items []struct{ name, desc string }, note string) string {
	bold := lipgloss.NewStyle().Bold(true)
	var sb strings.Builder
	for _, info := range items {
		prefix, name := "  ", faintStyle.Render(fmt.Sprintf("%-8s", info.name))
		if info.name == current {
			prefix, name = "▸ ", bold.Render(fmt.Sprintf("%-8s", info.name))
		}
		for j, line := range strings.Split(info.desc, "\n") {
			if j == 0 {
				fmt.Fprintf(&sb, "%s%s  %s\n", prefix, name, line)
			} else {
				fmt.Fprintf(&sb, "            %s\n", line)
			}
		}
	}
	if note != "" {
		sb.WriteString("\n")
		for _, line := range strings.Split(note, "\n") {
			sb.WriteString(faintStyle.Render("  "+line) + "\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (m setupModel) result() SetupResult {
	if m.cancelled {
		return SetupResult{Cancelled: true}
	}
	jobs, _ := strconv.Atoi(m.rows[rowJobs].options[m.rows[rowJobs].current])
	return SetupResult{
		Strategy: config.Strategy(m.rows[rowStrategy].options[m.rows[rowStrategy].current]),
		Jobs:     jobs,
		Features: m.selectedFeatures(),
	}
}

// RunSetup runs the interactive carousel seeded from cfg.
func RunSetup(w io.Writer, cfg config.Config) (SetupResult, error) {
	p := tea.NewProgram(newSetupModel(cfg), tea.WithOutput(w))
	finalModel, err := p.Run()
	if err != nil {
		return SetupResult{}, err
	}
	return finalModel.(setupModel).result(), nil
}
