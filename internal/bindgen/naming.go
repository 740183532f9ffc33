package bindgen

import (
	"fmt"
	gotoken "go/token"
	"strings"
	"unicode"
)

var initialisms = map[string]string{
	"ac":  "AC",
	"dc":  "DC",
	"id":  "ID",
	"cb":  "CB",
	"drs": "DRS",
	"gpu": "GPU",
	"api": "API",
	"url": "URL",
}

func splitName(name string) []string {
	var parts []string
	for _, p := range strings.Split(name, "_") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

func titlePart(p string) string {
	lower := strings.ToLower(p)
	if init, ok := initialisms[lower]; ok {
		return init
	}
	if p == lower || p == strings.ToUpper(p) {
		r := []rune(lower)
		r[0] = unicode.ToUpper(r[0])
		return string(r)
	}
	r := []rune(p)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// ExportName converts a C name into an exported Go identifier. Type names
// lose a trailing "_t".
func ExportName(name string, isType bool) string {
	parts := splitName(name)
	if isType && len(parts) > 1 && parts[len(parts)-1] == "t" {
		parts = parts[:len(parts)-1]
	}
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(titlePart(p))
	}
	out := b.String()
	if out == "" {
		return "X"
	}
	if unicode.IsDigit(rune(out[0])) {
		return "N" + out
	}
	return out
}

// localName converts a C parameter name into an unexported Go identifier.
func localName(name string, index int) string {
	parts := splitName(name)
	if len(parts) == 0 {
		return fmt.Sprintf("arg%d", index)
	}
	var b strings.Builder
	b.WriteString(strings.ToLower(parts[0]))
	for _, p := range parts[1:] {
		b.WriteString(titlePart(p))
	}
	out := b.String()
	if gotoken.IsKeyword(out) || out == "C" || !gotoken.IsIdentifier(out) {
		return fmt.Sprintf("%s%d", "arg", index)
	}
	return out
}

// unexport lowercases the leading run of an exported identifier, so that
// "ElecCompType" becomes "elecCompType" and "DRSValue" becomes "drsValue".
func unexport(name string) string {
	r := []rune(name)
	n := 0
	for n < len(r) && unicode.IsUpper(r[n]) {
		n++
	}
	if n > 1 && n < len(r) {
		n--
	}
	for i := 0; i < n; i++ {
		r[i] = unicode.ToLower(r[i])
	}
	return string(r)
}

// namer hands out Go identifiers and rejects collisions.
type namer struct {
	owners map[string]string
}

func newNamer() *namer {
	return &namer{owners: map[string]string{}}
}

func (n *namer) claim(goName, cName string) error {
	if prior, ok := n.owners[goName]; ok && prior != cName {
		return fmt.Errorf("naming collision: %s and %s both map to %s", prior, cName, goName)
	}
	n.owners[goName] = cName
	return nil
}
