package nativebuild

import (
	"os"
	"path/filepath"
	"strings"
)

// readDepFile returns the headers a compile reported in its dependency
// file, in inclusion order and without the source itself.
func readDepFile(path, source string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseDepFile(data, source), nil
}

// parseDepFile reads the first rule of a make-style dependency file as
// written by -MMD. Later rules (phony targets from -MP) are ignored.
func parseDepFile(data []byte, source string) []string {
	text := strings.NewReplacer("\\\r\n", " ", "\\\n", " ").Replace(string(data))
	line, _, _ := strings.Cut(text, "\n")
	_, prereqs, ok := strings.Cut(line, ": ")
	if !ok {
		return nil
	}

	src := absPath(source)
	seen := map[string]bool{}
	var out []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() == 0 {
			return
		}
		p := absPath(cur.String())
		cur.Reset()
		if p == src || seen[p] {
			return
		}
		seen[p] = true
		out = append(out, p)
	}

	for i := 0; i < len(prereqs); i++ {
		c := prereqs[i]
		switch {
		case c == '\\' && i+1 < len(prereqs) && prereqs[i+1] == ' ':
			cur.WriteByte(' ')
			i++
		case c == '$' && i+1 < len(prereqs) && prereqs[i+1] == '$':
			cur.WriteByte('$')
			i++
		case c == ' ' || c == '\t' || c == '\r':
			flush()
		default:
			cur.WriteByte(c)
		}
	}
	flush()
	return out
}

// absPath resolves relative paths against the working directory, which is
// where the compiler ran.
func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}
