// Package features models the build-time feature selection.
package features

import (
	"fmt"
	"sort"
	"strings"

	"elecbind/internal/cfgerr"
)

// Feature names a build-time capability.
type Feature string

const (
	HostIntegration    Feature = "host-integration"
	LiveAttributes     Feature = "live-attributes"
	RegenerateBindings Feature = "regenerate-bindings"
	Drawing            Feature = "drawing"
	Visualization      Feature = "visualization"
)

var known = map[Feature]string{
	HostIntegration:    "Build against the X-Plane plugin API",
	LiveAttributes:     "Export live component attributes as datarefs (requires host-integration)",
	RegenerateBindings: "Regenerate the Go bindings from the headers on every build",
	Drawing:            "Compile the network drawing module",
	Visualization:      "Compile the in-sim visualizer (requires host-integration and drawing)",
}

// requires lists the features each feature depends on.
var requires = map[Feature][]Feature{
	LiveAttributes: {HostIntegration},
	Visualization:  {HostIntegration, Drawing},
}

// Set is an immutable selection of features.
type Set struct {
	m map[Feature]bool
}

// Known returns every feature name in sorted order.
func Known() []Feature {
	out := make([]Feature, 0, len(known))
	for f := range known {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Describe returns the help text for f.
func Describe(f Feature) string {
	return known[f]
}

// Parse builds a Set from names, rejecting unknown names and unmet
// dependencies. Duplicates are ignored.
func Parse(names ...string) (Set, error) {
	s := Set{m: map[Feature]bool{}}
	for _, raw := range names {
		name := Feature(strings.ToLower(strings.TrimSpace(raw)))
		if name == "" {
			continue
		}
		if _, ok := known[name]; !ok {
			return Set{}, cfgerr.New("features", "unknown feature %q", raw)
		}
		s.m[name] = true
	}
	if err := s.Validate(); err != nil {
		return Set{}, err
	}
	return s, nil
}

// Of builds a Set without checking dependencies. Callers must Validate.
func Of(fs ...Feature) Set {
	s := Set{m: map[Feature]bool{}}
	for _, f := range fs {
		s.m[f] = true
	}
	return s
}

// Validate checks the dependent-feature invariants.
func (s Set) Validate() error {
	for _, f := range s.List() {
		for _, dep := range requires[f] {
			if !s.Has(dep) {
				return cfgerr.New("features", "%s requires %s", f, dep)
			}
		}
	}
	return nil
}

// Has reports whether f is selected.
func (s Set) Has(f Feature) bool {
	return s.m[f]
}

// List returns the selected features in sorted order.
func (s Set) List() []Feature {
	out := make([]Feature, 0, len(s.m))
	for f := range s.m {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Strings is List as plain strings.
func (s Set) Strings() []string {
	list := s.List()
	out := make([]string, len(list))
	for i, f := range list {
		out[i] = string(f)
	}
	return out
}

func (s Set) String() string {
	if len(s.m) == 0 {
		return "(none)"
	}
	return strings.Join(s.Strings(), ",")
}

// LiveAttributesEnabled reports whether the live-attribute hooks are on.
// Parse guarantees host integration is present whenever this is true.
func (s Set) LiveAttributesEnabled() bool {
	return s.Has(LiveAttributes) && s.Has(HostIntegration)
}

// MustParse is Parse for fixed inputs in tests and defaults.
func MustParse(names ...string) Set {
	s, err := Parse(names...)
	if err != nil {
		panic(fmt.Sprintf("features: %v", err))
	}
	return s
}
