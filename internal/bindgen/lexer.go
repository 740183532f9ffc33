package bindgen

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokIdent tokenKind = iota
	tokNumber
	tokPunct
	tokString
)

type token struct {
	kind   tokenKind
	text   string
	origin string
	line   int
}

// macro is a #define seen in the preprocessor output.
type macro struct {
	name   string
	value  string
	origin string
	line   int
}

// stream is the preprocessed translation unit split into declaration tokens
// and macro definitions, each tagged with the file it came from.
type stream struct {
	tokens []token
	macros []macro
}

// scan reads "cc -E -dD" output. Line markers of the form
// `# <line> "<file>" <flags>` switch the current origin.
func scan(r io.Reader) (stream, error) {
	var (
		s      stream
		origin string
		line   int
	)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		text := sc.Text()
		trimmed := strings.TrimSpace(text)
		if strings.HasPrefix(trimmed, "#") {
			directive := strings.TrimSpace(trimmed[1:])
			if file, n, ok := parseLineMarker(directive); ok {
				origin, line = file, n
				continue
			}
			if rest, ok := strings.CutPrefix(directive, "define"); ok && startsWithSpace(rest) {
				if m, ok := parseDefine(rest); ok {
					m.origin, m.line = origin, line
					s.macros = append(s.macros, m)
				}
			}
			line++
			continue
		}
		toks, err := tokenize(text, origin, line)
		if err != nil {
			return stream{}, err
		}
		s.tokens = append(s.tokens, toks...)
		line++
	}
	if err := sc.Err(); err != nil {
		return stream{}, fmt.Errorf("read preprocessor output: %w", err)
	}
	return s, nil
}

func startsWithSpace(s string) bool {
	return s != "" && (s[0] == ' ' || s[0] == '\t')
}

func parseLineMarker(directive string) (string, int, bool) {
	rest := strings.TrimPrefix(directive, "line")
	rest = strings.TrimSpace(rest)
	end := strings.IndexFunc(rest, func(r rune) bool { return !unicode.IsDigit(r) })
	if end <= 0 {
		return "", 0, false
	}
	n, err := strconv.Atoi(rest[:end])
	if err != nil {
		return "", 0, false
	}
	rest = strings.TrimSpace(rest[end:])
	if !strings.HasPrefix(rest, `"`) {
		return "", 0, false
	}
	closing := strings.LastIndex(rest, `"`)
	if closing <= 0 {
		return "", 0, false
	}
	file, err := strconv.Unquote(rest[:closing+1])
	if err != nil {
		file = rest[1:closing]
	}
	return file, n, true
}

func parseDefine(rest string) (macro, bool) {
	rest = strings.TrimSpace(rest)
	end := strings.IndexFunc(rest, func(r rune) bool { return !isIdentRune(r) })
	if end < 0 {
		end = len(rest)
	}
	if end == 0 {
		return macro{}, false
	}
	name := rest[:end]
	// Function-like macros have "(" immediately after the name.
	if end < len(rest) && rest[end] == '(' {
		return macro{}, false
	}
	return macro{name: name, value: strings.TrimSpace(rest[end:])}, true
}

func isIdentRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func tokenize(text, origin string, line int) ([]token, error) {
	var toks []token
	i := 0
	for i < len(text) {
		c := text[i]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\f' || c == '\v':
			i++
		case c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z':
			j := i + 1
			for j < len(text) && (text[j] == '_' || isAlnum(text[j])) {
				j++
			}
			toks = append(toks, token{kind: tokIdent, text: text[i:j], origin: origin, line: line})
			i = j
		case c >= '0' && c <= '9' || c == '.' && i+1 < len(text) && text[i+1] >= '0' && text[i+1] <= '9':
			j := i + 1
			for j < len(text) && (isAlnum(text[j]) || text[j] == '.' || (text[j] == '+' || text[j] == '-') && (text[j-1] == 'e' || text[j-1] == 'E')) {
				j++
			}
			toks = append(toks, token{kind: tokNumber, text: text[i:j], origin: origin, line: line})
			i = j
		case c == '"' || c == '\'':
			j := i + 1
			for j < len(text) && text[j] != c {
				if text[j] == '\\' {
					j++
				}
				j++
			}
			if j >= len(text) {
				return nil, fmt.Errorf("%s:%d: unterminated literal", origin, line)
			}
			toks = append(toks, token{kind: tokString, text: text[i : j+1], origin: origin, line: line})
			i = j + 1
		case c == '.' && strings.HasPrefix(text[i:], "..."):
			toks = append(toks, token{kind: tokPunct, text: "...", origin: origin, line: line})
			i += 3
		default:
			toks = append(toks, token{kind: tokPunct, text: string(c), origin: origin, line: line})
			i++
		}
	}
	return toks, nil
}

func isAlnum(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}
