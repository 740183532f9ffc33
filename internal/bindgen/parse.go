package bindgen

import (
	"fmt"
	"io"
	"strings"
)

// noise lists keywords that carry no information for the bindings.
var noise = map[string]bool{
	"extern":        true,
	"__extension__": true,
	"inline":        true,
	"__inline":      true,
	"__inline__":    true,
	"restrict":      true,
	"__restrict":    true,
	"__restrict__":  true,
	"volatile":      true,
	"__volatile__":  true,
	"register":      true,
	"_Noreturn":     true,
	"__cdecl":       true,
	"__stdcall":     true,
	"__fastcall":    true,
	"__nonnull":     true,
	"__wur":         true,
}

// wrappers are followed by a parenthesised group that is dropped with them.
var wrappers = map[string]bool{
	"__attribute__": true,
	"__attribute":   true,
	"__declspec":    true,
	"__asm__":       true,
	"__asm":         true,
	"asm":           true,
	"_Alignas":      true,
}

var baseKeywords = map[string]bool{
	"void": true, "char": true, "short": true, "int": true, "long": true,
	"float": true, "double": true, "signed": true, "unsigned": true,
	"bool": true, "_Bool": true,
}

// Parse reads preprocessor output and returns the declarations whose origin
// satisfies keep, in source order. Statements from other files are skipped
// without being interpreted.
func Parse(r io.Reader, keep func(origin string) bool) ([]Decl, error) {
	s, err := scan(r)
	if err != nil {
		return nil, err
	}

	var decls []Decl
	for _, stmt := range statements(s.tokens) {
		if len(stmt) == 0 || !keep(stmt[0].origin) {
			continue
		}
		d, ok, err := parseStatement(stmt)
		if err != nil {
			return nil, err
		}
		if ok {
			decls = append(decls, d)
		}
	}
	for _, m := range s.macros {
		if !keep(m.origin) {
			continue
		}
		decls = append(decls, Decl{Kind: KindMacro, Name: m.name, Value: m.value, Origin: m.origin, Line: m.line})
	}
	return decls, nil
}

// statements splits tokens at top-level semicolons. Function bodies end a
// statement at their closing brace.
func statements(tokens []token) [][]token {
	var (
		out   [][]token
		start int
		depth int
	)
	for i, t := range tokens {
		if t.kind != tokPunct {
			continue
		}
		switch t.text {
		case "{":
			depth++
		case "}":
			depth--
			if depth == 0 && isFunctionBody(tokens[start:i+1]) {
				out = append(out, tokens[start:i+1])
				start = i + 1
			}
		case ";":
			if depth == 0 {
				out = append(out, tokens[start:i])
				start = i + 1
			}
		}
	}
	if start < len(tokens) {
		out = append(out, tokens[start:])
	}
	return out
}

// isFunctionBody reports whether stmt is "... ( ... ) { ... }".
func isFunctionBody(stmt []token) bool {
	for i, t := range stmt {
		if t.text == "{" {
			return i > 0 && stmt[i-1].text == ")" && !hasIdent(stmt[:i], "typedef")
		}
	}
	return false
}

func hasIdent(toks []token, name string) bool {
	for _, t := range toks {
		if t.kind == tokIdent && t.text == name {
			return true
		}
	}
	return false
}

func texts(toks []token) []string {
	out := make([]string, len(toks))
	for i, t := range toks {
		out[i] = t.text
	}
	return out
}

// clean drops noise keywords and attribute-like wrappers.
func clean(toks []token) []token {
	out := make([]token, 0, len(toks))
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		if t.kind == tokIdent && wrappers[t.text] {
			if i+1 < len(toks) && toks[i+1].text == "(" {
				i = matching(toks, i+1)
			}
			continue
		}
		if t.kind == tokIdent && noise[t.text] {
			continue
		}
		out = append(out, t)
	}
	return out
}

// matching returns the index of the bracket closing the one at open, or the
// last index when unbalanced.
func matching(toks []token, open int) int {
	pairs := map[string]string{"(": ")", "{": "}", "[": "]"}
	want := pairs[toks[open].text]
	depth := 0
	for i := open; i < len(toks); i++ {
		switch toks[i].text {
		case toks[open].text:
			depth++
		case want:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return len(toks) - 1
}

func parseStatement(raw []token) (Decl, bool, error) {
	if isFunctionBody(raw) {
		return Decl{}, false, nil
	}
	toks := clean(raw)
	if len(toks) == 0 {
		return Decl{}, false, nil
	}
	if hasIdent(toks, "static") {
		return Decl{}, false, nil
	}

	base := Decl{Origin: toks[0].origin, Line: toks[0].line}
	for _, t := range toks {
		if t.kind == tokIdent {
			base.idents = append(base.idents, t.text)
		}
	}

	first := toks[0].text
	switch {
	case first == "typedef":
		return parseTypedef(base, toks[1:])
	case (first == "enum" || first == "struct" || first == "union") && indexOf(toks, "{") >= 0:
		return parseTagged(base, toks)
	case indexOf(toks, "(") >= 0:
		return parseFunction(base, toks)
	}
	return Decl{}, false, nil
}

func indexOf(toks []token, text string) int {
	for i, t := range toks {
		if t.text == text {
			return i
		}
	}
	return -1
}

func errorAt(t token, format string, args ...any) error {
	return fmt.Errorf("%s:%d: %s", t.origin, t.line, fmt.Sprintf(format, args...))
}

func parseTagged(d Decl, toks []token) (Decl, bool, error) {
	open := indexOf(toks, "{")
	closing := matching(toks, open)
	if toks[closing].text != "}" {
		return Decl{}, false, errorAt(toks[open], "unterminated %s body", toks[0].text)
	}
	if closing != len(toks)-1 {
		// "struct s {...} var;" declares a variable.
		return Decl{}, false, nil
	}
	if open != 2 || toks[1].kind != tokIdent {
		// Anonymous definitions are only reachable through a typedef.
		return Decl{}, false, nil
	}
	d.Name = toks[1].text
	if toks[0].text == "enum" {
		d.Kind = KindEnum
		d.Tagged = true
		members, err := parseEnumerators(toks[open+1 : closing])
		if err != nil {
			return Decl{}, false, err
		}
		d.Enumerators = members
		return d, true, nil
	}
	d.Kind = KindStruct
	return d, true, nil
}

func parseTypedef(d Decl, toks []token) (Decl, bool, error) {
	if len(toks) == 0 {
		return Decl{}, false, nil
	}
	d.Kind = KindTypedef

	if k := toks[0].text; (k == "enum" || k == "struct" || k == "union") && indexOf(toks, "{") >= 0 {
		open := indexOf(toks, "{")
		closing := matching(toks, open)
		if toks[closing].text != "}" {
			return Decl{}, false, errorAt(toks[open], "unterminated %s body", k)
		}
		rest := toks[closing+1:]
		if len(rest) == 0 || rest[0].kind != tokIdent {
			return Decl{}, false, errorAt(toks[closing], "typedef without a name")
		}
		d.Name = rest[0].text
		if k == "enum" {
			d.Kind = KindEnum
			members, err := parseEnumerators(toks[open+1 : closing])
			if err != nil {
				return Decl{}, false, err
			}
			d.Enumerators = members
			return d, true, nil
		}
		d.Target = CType{Base: k}
		return d, true, nil
	}

	if paren := indexOf(toks, "("); paren >= 0 {
		// typedef R (*name)(params);
		name := funcPtrName(toks[paren:])
		if name == "" {
			return Decl{}, false, errorAt(toks[paren], "unsupported typedef")
		}
		d.Name = name
		d.Target = CType{Base: "void", FuncPtr: true}
		return d, true, nil
	}

	last := toks[len(toks)-1]
	if last.kind != tokIdent {
		return Decl{}, false, errorAt(last, "typedef without a name")
	}
	d.Name = last.text
	target, _ := parseType(toks[:len(toks)-1], false)
	d.Target = target
	return d, true, nil
}

// funcPtrName extracts name from "( * name ) ( ... )".
func funcPtrName(toks []token) string {
	for i := 0; i+1 < len(toks); i++ {
		if toks[i].text == "*" && toks[i+1].kind == tokIdent {
			return toks[i+1].text
		}
		if toks[i].text == ")" {
			break
		}
	}
	return ""
}

func parseFunction(d Decl, toks []token) (Decl, bool, error) {
	paren := indexOf(toks, "(")
	if paren == 0 || toks[paren-1].kind != tokIdent {
		// Function pointer variables and casts.
		return Decl{}, false, nil
	}
	closing := matching(toks, paren)
	if toks[closing].text != ")" {
		return Decl{}, false, errorAt(toks[paren], "unterminated parameter list")
	}
	if closing != len(toks)-1 {
		return Decl{}, false, nil
	}
	if paren < 2 {
		return Decl{}, false, errorAt(toks[0], "function %s has no return type", toks[paren-1].text)
	}

	d.Kind = KindFunc
	d.Name = toks[paren-1].text
	d.Result, _ = parseType(toks[:paren-1], false)

	for _, group := range splitTop(toks[paren+1:closing], ",") {
		if len(group) == 0 {
			continue
		}
		if len(group) == 1 && group[0].text == "..." {
			d.Variadic = true
			continue
		}
		if len(group) == 1 && group[0].text == "void" {
			continue
		}
		typ, name := parseType(group, true)
		d.Params = append(d.Params, Param{Name: name, Type: typ})
	}
	return d, true, nil
}

// splitTop splits toks at sep outside any brackets.
func splitTop(toks []token, sep string) [][]token {
	var (
		out   [][]token
		start int
		depth int
	)
	for i, t := range toks {
		switch t.text {
		case "(", "[", "{":
			depth++
		case ")", "]", "}":
			depth--
		case sep:
			if depth == 0 {
				out = append(out, toks[start:i])
				start = i + 1
			}
		}
	}
	return append(out, toks[start:])
}

// parseType interprets a declaration specifier list with an optional
// declarator name. Arrays decay to pointers.
func parseType(toks []token, named bool) (CType, string) {
	if paren := indexOf(toks, "("); paren >= 0 {
		return CType{Base: "void", FuncPtr: true}, funcPtrName(toks[paren:])
	}

	var t CType
	if open := indexOf(toks, "["); open >= 0 {
		toks = toks[:open]
		t.Pointers++
	}

	var name string
	if named && len(toks) > 1 {
		last := toks[len(toks)-1]
		prev := toks[len(toks)-2].text
		if last.kind == tokIdent && !baseKeywords[last.text] && last.text != "const" &&
			prev != "struct" && prev != "enum" && prev != "union" {
			name = last.text
			toks = toks[:len(toks)-1]
		}
	}

	var base []string
	for _, tok := range toks {
		switch tok.text {
		case "*":
			t.Pointers++
		case "const":
			if t.Pointers == 0 {
				t.Const = true
			}
		default:
			base = append(base, tok.text)
		}
	}
	t.Base = normalizeBase(base)
	return t, name
}

// normalizeBase canonicalises multi-word integer spellings.
func normalizeBase(words []string) string {
	joined := strings.Join(words, " ")
	switch joined {
	case "", "signed", "signed int":
		return "int"
	case "unsigned", "unsigned int":
		return "unsigned int"
	case "long int", "signed long", "signed long int", "long signed int":
		return "long"
	case "unsigned long int", "long unsigned int":
		return "unsigned long"
	case "long long int", "signed long long":
		return "long long"
	case "unsigned long long int", "long long unsigned int":
		return "unsigned long long"
	case "short int", "signed short":
		return "short"
	case "unsigned short int", "short unsigned int":
		return "unsigned short"
	case "_Bool":
		return "bool"
	}
	return joined
}

func parseEnumerators(body []token) ([]Enumerator, error) {
	var out []Enumerator
	for _, group := range splitTop(body, ",") {
		if len(group) == 0 {
			continue
		}
		group = clean(group)
		if len(group) == 0 {
			continue
		}
		if group[0].kind != tokIdent {
			return nil, errorAt(group[0], "malformed enumerator %q", strings.Join(texts(group), " "))
		}
		e := Enumerator{Name: group[0].text}
		if len(group) > 2 && group[1].text == "=" {
			e.Value = strings.Join(texts(group[2:]), " ")
		}
		out = append(out, e)
	}
	return out, nil
}
