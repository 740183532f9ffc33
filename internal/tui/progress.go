package tui

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"elecbind/internal/nativebuild"
	"elecbind/internal/nativebuild/state"
)

const marqueeGap = "   "

// Column defines a single column in the progress table.
type Column struct {
	Header string
	Width  int
}

// UnitColumns is the table layout used for compile progress.
var UnitColumns = []Column{
	{Header: "#", Width: 3},
	{Header: "UNIT", Width: 22},
	{Header: "REASON", Width: 16},
	{Header: "STATUS", Width: 10},
	{Header: "TIME", Width: 8},
}

const (
	colIndex = iota
	colUnit
	colReason
	colStatus
	colTime
)

type unitRow struct {
	index  int
	fields []string
}

// BuildModel is a bubbletea model with one row per translation unit. Rows are
// created on first sight, so the caller does not need the plan up front.
type BuildModel struct {
	title   string
	rows    []unitRow
	byKey   map[string]int
	phase   string
	spinner spinner.Model
	tick    int
	done    bool
	err     error
}

// NewBuildModel creates an empty progress model.
func NewBuildModel(title string) BuildModel {
	return BuildModel{
		title:   title,
		byKey:   make(map[string]int),
		phase:   "resolving inputs",
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
}

// Init satisfies the tea.Model interface.
func (m BuildModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update satisfies the tea.Model interface.
func (m BuildModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		m.tick++
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case UnitStartMsg:
		row := m.row(msg.Plan)
		row.fields[colStatus] = StatusCompiling
		m.phase = "compiling"
		return m, nil

	case UnitDoneMsg:
		row := m.row(msg.Result.UnitPlan)
		row.fields[colStatus] = unitStatus(msg.Result)
		if msg.Result.Duration > 0 {
			row.fields[colTime] = formatElapsed(msg.Result.Duration)
		}
		return m, nil

	case PhaseMsg:
		m.phase = msg.Text
		return m, nil

	case WorkDoneMsg:
		m.done = true
		return m, tea.Quit

	case ErrorMsg:
		m.err = msg.Err
		m.done = true
		return m, tea.Quit

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

// row returns the row for plan, appending it when first seen.
func (m *BuildModel) row(plan nativebuild.UnitPlan) *unitRow {
	key := plan.Key()
	if idx, ok := m.byKey[key]; ok {
		return &m.rows[idx]
	}
	fields := make([]string, len(UnitColumns))
	fields[colIndex] = strconv.Itoa(plan.Index + 1)
	fields[colUnit] = key
	fields[colReason] = plan.Reason
	fields[colStatus] = StatusPending
	m.rows = append(m.rows, unitRow{index: plan.Index, fields: fields})
	sort.SliceStable(m.rows, func(i, j int) bool { return m.rows[i].index < m.rows[j].index })
	for i, r := range m.rows {
		m.byKey[r.fields[colUnit]] = i
	}
	return &m.rows[m.byKey[key]]
}

func unitStatus(res nativebuild.UnitResult) string {
	switch {
	case res.Err != nil:
		return StatusFailed
	case res.Action == state.ActionSkip:
		return StatusCached
	default:
		return StatusCompiled
	}
}

// View satisfies the tea.Model interface.
func (m BuildModel) View() string {
	if m.done && m.err != nil {
		return fmt.Sprintf("Error: %v\n", m.err)
	}

	widths := make([]int, len(UnitColumns))
	for i, col := range UnitColumns {
		widths[i] = max(len(col.Header), col.Width)
	}

	var b strings.Builder
	if m.title != "" {
		b.WriteString(TitleStyle.Render(m.title))
		b.WriteString("\n\n")
	}

	headers := make([]string, len(UnitColumns))
	for i, col := range UnitColumns {
		headers[i] = HeaderStyle.Render(pad(col.Header, widths[i]))
	}
	b.WriteString(strings.Join(headers, "  "))
	b.WriteByte('\n')

	for _, row := range m.rows {
		parts := make([]string, len(UnitColumns))
		for i, val := range row.fields {
			if !m.done && len(strings.TrimSpace(val)) > widths[i] {
				val = marqueeText(val, widths[i], m.tick)
			} else {
				val = TruncateWithEllipsis(val, widths[i])
			}
			if i == colStatus {
				parts[i] = StatusStyle(val).Render(pad(val, widths[i]))
			} else {
				parts[i] = pad(val, widths[i])
			}
		}
		b.WriteString(strings.Join(parts, "  "))
		b.WriteByte('\n')
	}

	if !m.done {
		finished, total := m.progressCounts()
		fmt.Fprintf(&b, "\n%s %s", m.spinner.View(), m.phase)
		if total > 0 {
			fmt.Fprintf(&b, " %d/%d", finished, total)
		}
		b.WriteString("...\n")
	}
	return b.String()
}

// progressCounts returns (finished, total) over the rows seen so far.
func (m BuildModel) progressCounts() (int, int) {
	finished := 0
	for _, row := range m.rows {
		switch row.fields[colStatus] {
		case StatusPending, StatusCompiling:
		default:
			finished++
		}
	}
	return finished, len(m.rows)
}

// Done returns whether the model has finished (work done or error).
func (m BuildModel) Done() bool {
	return m.done
}

// Err returns any fatal error that occurred.
func (m BuildModel) Err() error {
	return m.err
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// marqueeText renders a scrolling window over text wider than width.
func marqueeText(text string, width, tick int) string {
	text = strings.TrimSpace(text)
	if width <= 0 {
		return ""
	}
	if len(text) <= width {
		return text
	}
	cycle := text + marqueeGap
	offset := tick % len(cycle)
	var out strings.Builder
	out.Grow(width)
	for i := 0; i < width; i++ {
		out.WriteByte(cycle[(offset+i)%len(cycle)])
	}
	return out.String()
}

// NonEmptyOrDash returns "-" for empty/whitespace strings.
func NonEmptyOrDash(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "-"
	}
	return value
}

// TruncateWithEllipsis truncates a string and adds "..." if it exceeds max length.
func TruncateWithEllipsis(value string, max int) string {
	if max <= 0 {
		return ""
	}
	value = strings.TrimSpace(value)
	if len(value) <= max {
		return value
	}
	if max <= 3 {
		return value[:max]
	}
	return value[:max-3] + "..."
}

func formatElapsed(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < 10*time.Second:
		return fmt.Sprintf("%.1fs", d.Seconds())
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	default:
		return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
	}
}
