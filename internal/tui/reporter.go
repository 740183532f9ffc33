package tui

import (
	"fmt"
	"io"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"elecbind/internal/nativebuild"
)

// BuildReporter forwards driver progress into a running bubbletea program.
type BuildReporter struct {
	send func(tea.Msg)
}

// NewBuildReporter wraps send, usually the callback handed to RunWithWork.
func NewBuildReporter(send func(tea.Msg)) *BuildReporter {
	return &BuildReporter{send: send}
}

// Start implements nativebuild.ProgressReporter.
func (r *BuildReporter) Start(plan nativebuild.UnitPlan) {
	r.send(UnitStartMsg{Plan: plan})
}

// Complete implements nativebuild.ProgressReporter.
func (r *BuildReporter) Complete(res nativebuild.UnitResult) {
	r.send(UnitDoneMsg{Result: res})
}

// Phase reports a pipeline phase change.
func (r *BuildReporter) Phase(text string) {
	r.send(PhaseMsg{Text: text})
}

// LineReporter prints one line per finished unit. It is used when stdout is
// not a terminal.
type LineReporter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewLineReporter returns a reporter writing to w.
func NewLineReporter(w io.Writer) *LineReporter {
	return &LineReporter{w: w}
}

// Start implements nativebuild.ProgressReporter.
func (r *LineReporter) Start(nativebuild.UnitPlan) {}

// Complete implements nativebuild.ProgressReporter.
func (r *LineReporter) Complete(res nativebuild.UnitResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	status := unitStatus(res)
	if res.Err != nil {
		fmt.Fprintf(r.w, "%-8s %s: %v\n", status, res.Key(), res.Err)
		return
	}
	fmt.Fprintf(r.w, "%-8s %s (%s)\n", status, res.Key(), res.Reason)
}

// Phase reports a pipeline phase change.
func (r *LineReporter) Phase(string) {}
