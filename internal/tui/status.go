package tui

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"

	"elecbind/internal/nativebuild"
)

// StatusWriter is a one-line spinner for commands without a unit table.
// It satisfies the pipeline's progress and phase reporters, so it can be
// handed to a run directly.
type StatusWriter struct {
	w      io.Writer
	frames spinner.Spinner

	mu      sync.Mutex
	text    string
	since   time.Time
	stopped bool

	done chan struct{}
	wg   sync.WaitGroup
}

func NewStatusWriter(w io.Writer, text string) *StatusWriter {
	sw := &StatusWriter{
		w:      w,
		frames: spinner.MiniDot,
		text:   text,
		since:  time.Now(),
		done:   make(chan struct{}),
	}
	sw.wg.Add(1)
	go sw.loop()
	return sw
}

// Phase replaces the text and resets the elapsed timer.
func (sw *StatusWriter) Phase(text string) {
	sw.mu.Lock()
	sw.text = text
	sw.since = time.Now()
	sw.mu.Unlock()
}

func (sw *StatusWriter) Start(unit nativebuild.UnitPlan) {
	sw.Phase(fmt.Sprintf("compiling %s", unit.Key()))
}

func (sw *StatusWriter) Complete(nativebuild.UnitResult) {}

// Stop waits for the spinner to exit and clears the line. Repeated calls
// are no-ops.
func (sw *StatusWriter) Stop() {
	sw.mu.Lock()
	if sw.stopped {
		sw.mu.Unlock()
		return
	}
	sw.stopped = true
	sw.mu.Unlock()

	close(sw.done)
	sw.wg.Wait()
	fmt.Fprint(sw.w, "\r\033[K")
}

func (sw *StatusWriter) loop() {
	defer sw.wg.Done()
	ticker := time.NewTicker(sw.frames.FPS)
	defer ticker.Stop()

	for frame := 0; ; frame++ {
		select {
		case <-sw.done:
			return
		case <-ticker.C:
		}
		sw.mu.Lock()
		line := fmt.Sprintf("%s %s (%s)", sw.frames.Frames[frame%len(sw.frames.Frames)], sw.text, formatElapsed(time.Since(sw.since)))
		sw.mu.Unlock()
		fmt.Fprintf(sw.w, "\r\033[K%s", line)
	}
}
