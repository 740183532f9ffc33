package nativebuild

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"elecbind/internal/flags"
)

// LinkDirectives is the Go-side analogue of link search and link library
// registration.
type LinkDirectives struct {
	SearchDirs []string `json:"search_dirs"`
	StaticLibs []string `json:"static_libs"`
	Extra      []string `json:"extra,omitempty"`
}

// LDFlags renders the directives as linker arguments.
func (l LinkDirectives) LDFlags() []string {
	var out []string
	for _, dir := range l.SearchDirs {
		out = append(out, "-L"+dir)
	}
	for _, lib := range l.StaticLibs {
		out = append(out, "-l"+lib)
	}
	return append(out, l.Extra...)
}

// WithExtra returns a copy with extra linker arguments appended.
func (l LinkDirectives) WithExtra(extra ...string) LinkDirectives {
	l.Extra = append(append([]string(nil), l.Extra...), extra...)
	return l
}

// CgoFile describes the generated cgo directive file.
type CgoFile struct {
	Path        string
	Package     string
	BuildTag    string
	Fingerprint string
	Flags       flags.FlagList
	Link        LinkDirectives
}

// Render returns the file contents.
func (f CgoFile) Render() []byte {
	var b bytes.Buffer
	b.WriteString("// Code generated by elecbind. DO NOT EDIT.\n")
	if f.Fingerprint != "" {
		fmt.Fprintf(&b, "// Manifest: %s\n", f.Fingerprint)
	}
	b.WriteString("\n")
	if f.BuildTag != "" {
		fmt.Fprintf(&b, "//go:build %s\n\n", f.BuildTag)
	}
	fmt.Fprintf(&b, "package %s\n\n", f.Package)
	b.WriteString("/*\n")
	fmt.Fprintf(&b, "#cgo CFLAGS: %s\n", joinDirective(f.Flags.Args()))
	fmt.Fprintf(&b, "#cgo LDFLAGS: %s\n", joinDirective(f.Link.LDFlags()))
	b.WriteString("*/\n")
	b.WriteString("import \"C\"\n")
	return b.Bytes()
}

// Write renders the file and replaces Path atomically.
func (f CgoFile) Write() error {
	return writeFileAtomic(f.Path, f.Render())
}

// joinDirective quotes arguments containing whitespace, which cgo splits
// with shell-like rules.
func joinDirective(args []string) string {
	out := make([]string, len(args))
	for i, a := range args {
		if strings.ContainsAny(a, " \t\"") {
			out[i] = "'" + a + "'"
			continue
		}
		out[i] = a
	}
	return strings.Join(out, " ")
}

func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
