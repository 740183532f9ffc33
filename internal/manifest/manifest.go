// Package manifest computes the single header and source set shared by the
// native build and the binding generator.
package manifest

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"elecbind/internal/cfgerr"
	"elecbind/internal/envconfig"
	"elecbind/internal/features"
	"elecbind/internal/paths"
)

// Unit is one native file paired with the feature that pulled it in. The
// core unit has an empty Feature.
type Unit struct {
	Path    string           `json:"path"`
	Feature features.Feature `json:"feature,omitempty"`
}

// Manifest is the ordered header and source list for one build. The
// fingerprint covers the headers only, so the generator and a compile run
// over the same headers agree on it; sources are tracked per unit by the
// build state.
type Manifest struct {
	Headers     []Unit `json:"headers"`
	Sources     []Unit `json:"sources,omitempty"`
	Fingerprint string `json:"fingerprint"`
}

type module struct {
	header  string
	source  string
	feature features.Feature
}

// modules lists libelec's public headers in inclusion order together with the
// source file implementing each one.
var modules = []module{
	{header: "libelec.h", source: "libelec.c"},
	{header: "libelec_drawing.h", source: "libelec_drawing.c", feature: features.Drawing},
	{header: "libelec_vis.h", source: "libelec_vis.c", feature: features.Visualization},
}

// Discover builds the manifest for the selected features. Sources are only
// collected when withSources is set, which requires a libelec source tree.
func Discover(deps paths.DependencyPaths, fs features.Set, withSources bool) (Manifest, error) {
	if !deps.Libelec.Present() {
		return Manifest{}, cfgerr.New(envconfig.KeyLibelec, "libelec root is not resolved")
	}
	if withSources && deps.Libelec.Layout != paths.LayoutSource {
		return Manifest{}, cfgerr.New(envconfig.KeyLibelec,
			"%s is a redistribution tree; the compile strategy needs libelec sources", deps.Libelec.Root)
	}

	var m Manifest
	for _, mod := range modules {
		if mod.feature != "" && !fs.Has(mod.feature) {
			continue
		}
		header := filepath.Join(deps.Libelec.Include, mod.header)
		if err := requireFile(header); err != nil {
			return Manifest{}, err
		}
		m.Headers = append(m.Headers, Unit{Path: header, Feature: mod.feature})

		if !withSources {
			continue
		}
		source := filepath.Join(deps.Libelec.Root, "src", mod.source)
		if err := requireFile(source); err != nil {
			return Manifest{}, err
		}
		m.Sources = append(m.Sources, Unit{Path: source, Feature: mod.feature})
	}

	fp, err := Fingerprint(m.Headers)
	if err != nil {
		return Manifest{}, err
	}
	m.Fingerprint = fp
	return m, nil
}

func requireFile(path string) error {
	ok, err := paths.FileExists(path)
	if err != nil {
		return cfgerr.Wrap(envconfig.KeyLibelec, err)
	}
	if !ok {
		return cfgerr.New(envconfig.KeyLibelec, "required file %s does not exist", path)
	}
	return nil
}

// HeaderPaths returns the header paths in inclusion order.
func (m Manifest) HeaderPaths() []string {
	out := make([]string, len(m.Headers))
	for i, h := range m.Headers {
		out[i] = h.Path
	}
	return out
}

// SourcePaths returns the source paths in compile order.
func (m Manifest) SourcePaths() []string {
	out := make([]string, len(m.Sources))
	for i, s := range m.Sources {
		out[i] = s.Path
	}
	return out
}

// Contains reports whether path is one of the manifest headers.
func (m Manifest) Contains(path string) bool {
	clean := filepath.Clean(path)
	for _, h := range m.Headers {
		if h.Path == clean {
			return true
		}
	}
	return false
}

// Fingerprint hashes the ordered file names and contents of every unit.
// Only the base name enters the hash, so identical headers under different
// roots produce the same fingerprint.
func Fingerprint(groups ...[]Unit) (string, error) {
	h := sha256.New()
	for _, group := range groups {
		for _, u := range group {
			fmt.Fprintf(h, "%s\x00", filepath.Base(u.Path))
			if err := hashFile(h, u.Path); err != nil {
				return "", err
			}
			h.Write([]byte{0})
		}
	}
	return fmt.Sprintf("sha256:%x", h.Sum(nil)), nil
}

func hashFile(w io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("fingerprint %s: %w", path, err)
	}
	defer f.Close()
	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("fingerprint %s: %w", path, err)
	}
	return nil
}

// FileHash returns the content hash of a single file in fingerprint format.
func FileHash(path string) (string, error) {
	h := sha256.New()
	if err := hashFile(h, path); err != nil {
		return "", err
	}
	return fmt.Sprintf("sha256:%x", h.Sum(nil)), nil
}
