// Package logx sets up the per-run log file.
package logx

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"elecbind/internal/paths"
)

// New creates a logger that writes to a timestamped file inside the build
// directory's log folder. With debug set, every line is mirrored to stderr
// as well. The returned closer should be closed when logging is no longer
// needed.
func New(p paths.ProjectPaths, debug bool) (*log.Logger, io.Closer, error) {
	return newLogger(p, debug, os.Stderr)
}

func newLogger(p paths.ProjectPaths, debug bool, mirror io.Writer) (*log.Logger, io.Closer, error) {
	if err := os.MkdirAll(p.LogsDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("ensure logs directory: %w", err)
	}

	filename := time.Now().Format("20060102-150405") + ".log"
	file, err := os.OpenFile(filepath.Join(p.LogsDir, filename), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	var w io.Writer = file
	if debug {
		w = io.MultiWriter(file, mirror)
	}
	return log.New(w, "", log.LstdFlags|log.Lmicroseconds), file, nil
}

// Discard returns a logger that drops everything, for commands that do not
// touch the build directory.
func Discard() *log.Logger {
	return log.New(io.Discard, "", 0)
}
