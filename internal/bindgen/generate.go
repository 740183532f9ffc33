// Package bindgen produces the Go/cgo binding surface for libelec from its
// public headers.
package bindgen

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"elecbind/internal/flags"
	"elecbind/internal/manifest"
)

// Preprocessor runs the C preprocessor over source text.
type Preprocessor interface {
	Preprocess(ctx context.Context, fl flags.FlagList, source string) ([]byte, error)
}

// Options configures one generation run.
type Options struct {
	Package  string
	BuildTag string
	Policy   Policy
	Filename string
}

// Source is a generated binding file.
type Source struct {
	Package     string   `json:"package"`
	Fingerprint string   `json:"fingerprint"`
	Functions   int      `json:"functions"`
	Enums       int      `json:"enums"`
	Types       int      `json:"types"`
	Constants   int      `json:"constants"`
	Blocked     []string `json:"blocked,omitempty"`
	Content     []byte   `json:"-"`
}

// SyntheticUnit is the translation unit that includes every manifest header
// in order.
func SyntheticUnit(m manifest.Manifest) string {
	var b strings.Builder
	for _, h := range m.HeaderPaths() {
		fmt.Fprintf(&b, "#include %q\n", filepath.ToSlash(h))
	}
	return b.String()
}

// Generate preprocesses the manifest headers with fl and renders the
// bindings. Any failure is fatal.
func Generate(ctx context.Context, pp Preprocessor, m manifest.Manifest, fl flags.FlagList, opts Options) (Source, error) {
	if len(m.Headers) == 0 {
		return Source{}, fmt.Errorf("generate bindings: manifest has no headers")
	}
	out, err := pp.Preprocess(ctx, fl, SyntheticUnit(m))
	if err != nil {
		return Source{}, fmt.Errorf("preprocess headers: %w", err)
	}
	return FromPreprocessed(out, m, opts)
}

// FromPreprocessed renders bindings from existing preprocessor output.
func FromPreprocessed(out []byte, m manifest.Manifest, opts Options) (Source, error) {
	headers := m.HeaderPaths()
	allowed := make(map[string]bool, len(headers))
	for _, h := range headers {
		allowed[filepath.Clean(h)] = true
	}

	decls, err := Parse(bytes.NewReader(out), func(origin string) bool {
		return allowed[filepath.Clean(origin)]
	})
	if err != nil {
		return Source{}, fmt.Errorf("parse headers: %w", err)
	}

	sel, err := Select(decls, headers, opts.Policy)
	if err != nil {
		return Source{}, err
	}

	includes := make([]string, len(headers))
	for i, h := range headers {
		includes[i] = filepath.Base(h)
	}
	content, err := Emit(sel.Decls, EmitOptions{
		Package:     opts.Package,
		BuildTag:    opts.BuildTag,
		Fingerprint: m.Fingerprint,
		Includes:    includes,
		Policy:      opts.Policy,
		Filename:    opts.Filename,
	})
	if err != nil {
		return Source{}, err
	}

	src := Source{
		Package:     opts.Package,
		Fingerprint: m.Fingerprint,
		Blocked:     sel.Blocked,
		Content:     content,
	}
	for _, d := range sel.Decls {
		switch d.Kind {
		case KindFunc:
			src.Functions++
		case KindEnum:
			src.Enums++
		case KindTypedef, KindStruct:
			src.Types++
		case KindMacro:
			if _, ok := numericLiteral(d.Value); ok && !strings.HasPrefix(d.Name, "_") {
				src.Constants++
			}
		}
	}
	return src, nil
}

// Write replaces path with the generated content atomically.
func (s Source) Write(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, s.Content, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// ReadFingerprint returns the manifest fingerprint recorded in a generated
// file, or "" when the file has none.
func ReadFingerprint(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	for _, line := range strings.SplitN(string(data), "\n", 4) {
		if fp, ok := strings.CutPrefix(line, "// Manifest: "); ok {
			return strings.TrimSpace(fp), nil
		}
	}
	return "", nil
}
