package tui

import "elecbind/internal/nativebuild"

// UnitStartMsg marks a translation unit as handed to the compiler.
type UnitStartMsg struct {
	Plan nativebuild.UnitPlan
}

// UnitDoneMsg carries the outcome of one translation unit, including units
// the driver skipped.
type UnitDoneMsg struct {
	Result nativebuild.UnitResult
}

// PhaseMsg replaces the footer text, e.g. "archiving" or "writing bindings".
type PhaseMsg struct {
	Text string
}

// WorkDoneMsg signals that all background work has completed.
type WorkDoneMsg struct{}

// ErrorMsg signals a fatal error; the TUI should quit.
type ErrorMsg struct {
	Err error
}
