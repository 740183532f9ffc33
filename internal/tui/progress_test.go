package tui

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"elecbind/internal/config"
	"elecbind/internal/features"
	"elecbind/internal/nativebuild"
	"elecbind/internal/nativebuild/state"
)

func plan(i int, src, reason string) nativebuild.UnitPlan {
	return nativebuild.UnitPlan{
		Index:  i,
		Source: "/src/" + src,
		Object: "/obj/" + strings.TrimSuffix(src, ".c") + ".o",
		Action: state.ActionCompile,
		Reason: reason,
	}
}

func apply(t *testing.T, m BuildModel, msgs ...tea.Msg) BuildModel {
	t.Helper()
	for _, msg := range msgs {
		updated, _ := m.Update(msg)
		m = updated.(BuildModel)
	}
	return m
}

func TestUnitMessagesUpdateRows(t *testing.T) {
	m := NewBuildModel("build")
	m = apply(t, m,
		UnitStartMsg{Plan: plan(1, "libelec_drawing.c", state.ReasonNew)},
		UnitStartMsg{Plan: plan(0, "libelec.c", state.ReasonNew)},
		UnitDoneMsg{Result: nativebuild.UnitResult{UnitPlan: plan(0, "libelec.c", state.ReasonNew), Duration: 1500 * time.Millisecond}},
	)

	if len(m.rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(m.rows))
	}
	if m.rows[0].fields[colUnit] != "libelec.c" {
		t.Fatalf("rows not ordered by index: %v", m.rows)
	}
	if got := m.rows[0].fields[colStatus]; got != StatusCompiled {
		t.Errorf("expected compiled, got %q", got)
	}
	if got := m.rows[0].fields[colTime]; got != "1.5s" {
		t.Errorf("expected 1.5s, got %q", got)
	}
	if got := m.rows[1].fields[colStatus]; got != StatusCompiling {
		t.Errorf("expected compiling, got %q", got)
	}
}

func TestSkippedAndFailedUnits(t *testing.T) {
	skipped := plan(0, "libelec.c", state.ReasonUpToDate)
	skipped.Action = state.ActionSkip
	m := apply(t, NewBuildModel(""),
		UnitDoneMsg{Result: nativebuild.UnitResult{UnitPlan: skipped}},
		UnitDoneMsg{Result: nativebuild.UnitResult{UnitPlan: plan(1, "libelec_vis.c", state.ReasonNew), Err: errors.New("boom")}},
	)

	if got := m.rows[0].fields[colStatus]; got != StatusCached {
		t.Errorf("expected cached, got %q", got)
	}
	if got := m.rows[0].fields[colTime]; got != "" {
		t.Errorf("expected no time for skipped unit, got %q", got)
	}
	if got := m.rows[1].fields[colStatus]; got != StatusFailed {
		t.Errorf("expected failed, got %q", got)
	}
	finished, total := m.progressCounts()
	if finished != 2 || total != 2 {
		t.Errorf("progressCounts = %d/%d, want 2/2", finished, total)
	}
}

func TestWorkDoneMsg(t *testing.T) {
	updated, cmd := NewBuildModel("").Update(WorkDoneMsg{})
	m := updated.(BuildModel)

	if !m.Done() {
		t.Error("expected Done() to be true after WorkDoneMsg")
	}
	if cmd == nil {
		t.Error("expected tea.Quit command")
	}
}

func TestErrorMsg(t *testing.T) {
	updated, cmd := NewBuildModel("").Update(ErrorMsg{Err: tea.ErrProgramKilled})
	m := updated.(BuildModel)

	if !m.Done() || m.Err() == nil {
		t.Fatal("expected model to be done with an error")
	}
	if cmd == nil {
		t.Error("expected tea.Quit command")
	}
	if !strings.Contains(m.View(), "Error:") {
		t.Error("expected error view")
	}
}

func TestView(t *testing.T) {
	m := apply(t, NewBuildModel("elecbind build linux"),
		PhaseMsg{Text: "archiving"},
		UnitStartMsg{Plan: plan(0, "libelec.c", state.ReasonFlagsChanged)},
	)
	view := m.View()

	for _, want := range []string{"elecbind build linux", "UNIT", "STATUS", "libelec.c", "flags changed", "compiling", "0/1"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q:\n%s", want, view)
		}
	}
}

func TestViewHidesFooterWhenDone(t *testing.T) {
	m := apply(t, NewBuildModel(""),
		PhaseMsg{Text: "archiving"},
		WorkDoneMsg{},
	)
	if strings.Contains(m.View(), "archiving") {
		t.Error("expected footer to be hidden when done")
	}
}

func TestSpinnerTickStopsAfterDone(t *testing.T) {
	m := NewBuildModel("")
	_, cmd := m.Update(spinner.TickMsg{ID: m.spinner.ID()})
	if cmd == nil {
		t.Error("expected next tick command")
	}

	m = apply(t, m, WorkDoneMsg{})
	_, cmd = m.Update(spinner.TickMsg{ID: m.spinner.ID()})
	if cmd != nil {
		t.Error("expected no tick command after done")
	}
}

func TestCtrlC(t *testing.T) {
	updated, cmd := NewBuildModel("").Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	m := updated.(BuildModel)

	if !m.Done() {
		t.Error("expected Done() to be true after ctrl+c")
	}
	if cmd == nil {
		t.Error("expected tea.Quit command")
	}
}

func TestLineReporter(t *testing.T) {
	var b strings.Builder
	r := NewLineReporter(&b)
	r.Start(plan(0, "libelec.c", state.ReasonNew))
	r.Complete(nativebuild.UnitResult{UnitPlan: plan(0, "libelec.c", state.ReasonNew)})
	r.Complete(nativebuild.UnitResult{UnitPlan: plan(1, "libelec_vis.c", state.ReasonNew), Err: errors.New("exit 1")})

	out := b.String()
	if !strings.Contains(out, "compiled libelec.c (new)") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if !strings.Contains(out, "failed   libelec_vis.c: exit 1") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestBuildReporterSends(t *testing.T) {
	var got []tea.Msg
	r := NewBuildReporter(func(msg tea.Msg) { got = append(got, msg) })
	r.Start(plan(0, "libelec.c", state.ReasonNew))
	r.Complete(nativebuild.UnitResult{UnitPlan: plan(0, "libelec.c", state.ReasonNew)})
	r.Phase("archiving")

	if len(got) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(got))
	}
	if _, ok := got[0].(UnitStartMsg); !ok {
		t.Errorf("expected UnitStartMsg, got %T", got[0])
	}
	if p, ok := got[2].(PhaseMsg); !ok || p.Text != "archiving" {
		t.Errorf("expected PhaseMsg, got %#v", got[2])
	}
}

func TestSetupModelTogglesFeatures(t *testing.T) {
	cfg := config.Default()
	cfg.Features = []string{string(features.HostIntegration)}
	m := newSetupModel(cfg)

	idx := -1
	for i, row := range m.rows {
		if row.feature == features.LiveAttributes {
			idx = i
		}
	}
	if idx < 0 {
		t.Fatal("live-attributes row missing")
	}
	m.focused = idx
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m = updated.(setupModel)
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(setupModel)
	if cmd == nil || !m.done {
		t.Fatalf("expected setup to finish, invalid=%v", m.invalid)
	}

	res := m.result()
	if res.Strategy != config.StrategyLink {
		t.Errorf("unexpected strategy %q", res.Strategy)
	}
	want := "host-integration,live-attributes"
	if got := strings.Join(res.Features, ","); got != want {
		t.Errorf("features = %q, want %q", got, want)
	}
}

func TestSetupModelRejectsUnmetDependency(t *testing.T) {
	m := newSetupModel(config.Default())
	for i, row := range m.rows {
		if row.feature == features.Visualization {
			m.focused = i
		}
	}
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m = updated.(setupModel)
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(setupModel)

	if m.done {
		t.Fatal("expected setup to stay open")
	}
	if m.invalid == nil {
		t.Fatal("expected a validation error")
	}
}

func TestTruncateWithEllipsis(t *testing.T) {
	tests := []struct {
		input string
		max   int
		want  string
	}{
		{"short", 10, "short"},
		{"libelec_drawing.c", 10, "libelec..."},
		{"abcd", 3, "abc"},
		{"hello", 0, ""},
	}
	for _, tt := range tests {
		if got := TruncateWithEllipsis(tt.input, tt.max); got != tt.want {
			t.Errorf("TruncateWithEllipsis(%q, %d) = %q, want %q", tt.input, tt.max, got, tt.want)
		}
	}
}

func TestMarqueeText(t *testing.T) {
	tests := []struct {
		text  string
		width int
		tick  int
		want  string
	}{
		{"short", 10, 0, "short"},
		{"hello world here", 5, 1, "ello "},
		{"abcdef", 4, 6, "   a"},
	}
	for _, tt := range tests {
		if got := marqueeText(tt.text, tt.width, tt.tick); got != tt.want {
			t.Errorf("marqueeText(%q, %d, %d) = %q, want %q", tt.text, tt.width, tt.tick, got, tt.want)
		}
	}
}

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{250 * time.Millisecond, "250ms"},
		{2500 * time.Millisecond, "2.5s"},
		{42 * time.Second, "42s"},
		{125 * time.Second, "2m05s"},
	}
	for _, tt := range tests {
		if got := formatElapsed(tt.d); got != tt.want {
			t.Errorf("formatElapsed(%s) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestStatusWriterFollowsPhases(t *testing.T) {
	var buf bytes.Buffer
	sw := NewStatusWriter(&buf, "resolving inputs")
	sw.Phase("generating bindings")
	time.Sleep(3 * spinner.MiniDot.FPS)
	sw.Stop()
	sw.Stop()

	out := buf.String()
	if !strings.Contains(out, "generating bindings") {
		t.Fatalf("status line missing phase: %q", out)
	}
	if !strings.HasSuffix(out, "\r\033[K") {
		t.Fatalf("status line not cleared: %q", out)
	}
}
