package bindgen

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"elecbind/internal/config"
)

// vaListTypes are the spellings of va_list that cgo cannot pass.
var vaListTypes = []string{"va_list", "__gnuc_va_list", "__builtin_va_list"}

// Policy controls which declarations are exposed and how they are named.
type Policy struct {
	Blocklist   map[string]bool
	StripPrefix string
}

// PolicyFromConfig builds the policy described by the bindings section.
func PolicyFromConfig(b config.BindingsConfig) Policy {
	p := Policy{Blocklist: map[string]bool{}, StripPrefix: b.StripPrefixValue()}
	for _, name := range b.Blocklist {
		if name = strings.TrimSpace(name); name != "" {
			p.Blocklist[name] = true
		}
	}
	return p
}

// DefaultPolicy is the policy of an unconfigured project.
func DefaultPolicy() Policy {
	return PolicyFromConfig(config.Default().Bindings)
}

// PolicyName strips the configured prefix from names that carry it. Names
// without the prefix are returned unchanged.
func (p Policy) PolicyName(name string) string {
	if p.StripPrefix == "" {
		return name
	}
	if rest, ok := strings.CutPrefix(name, p.StripPrefix); ok && rest != "" {
		return rest
	}
	return name
}

// Selection is the outcome of applying a policy.
type Selection struct {
	Decls   []Decl
	Blocked []string
	Dropped int
}

// Select keeps declarations originating in one of headers, removes
// blocklisted names and rejects anything cgo cannot call.
func Select(decls []Decl, headers []string, p Policy) (Selection, error) {
	allowed := make(map[string]bool, len(headers))
	for _, h := range headers {
		allowed[filepath.Clean(h)] = true
	}

	var sel Selection
	blocked := map[string]bool{}
	for _, d := range decls {
		if !allowed[filepath.Clean(d.Origin)] {
			sel.Dropped++
			continue
		}
		if p.Blocklist[d.Name] {
			blocked[d.Name] = true
			continue
		}
		if d.Kind == KindFunc && d.Variadic {
			return Selection{}, fmt.Errorf("%s:%d: variadic function %s cannot be bound; add it to bindings.blocklist", d.Origin, d.Line, d.Name)
		}
		if d.Kind != KindMacro {
			for _, va := range vaListTypes {
				if d.References(va) {
					return Selection{}, fmt.Errorf("%s:%d: %s %s uses %s; add it to bindings.blocklist", d.Origin, d.Line, d.Kind, d.Name, va)
				}
			}
		}
		sel.Decls = append(sel.Decls, d)
	}
	for name := range blocked {
		sel.Blocked = append(sel.Blocked, name)
	}
	sort.Strings(sel.Blocked)
	return sel, nil
}
