package bindgen

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/tools/imports"
)

// GeneratedHeader is the first line of every generated file.
const GeneratedHeader = "// Code generated by elecbind. DO NOT EDIT."

// EmitOptions controls the layout of the generated file.
type EmitOptions struct {
	Package     string
	BuildTag    string
	Fingerprint string
	// Includes are the header names placed in the cgo preamble.
	Includes []string
	Policy   Policy
	// Filename is only used for diagnostics while formatting.
	Filename string
}

type numericType struct {
	goType string
	cgo    string
}

var numerics = map[string]numericType{
	"char":               {"byte", "char"},
	"signed char":        {"int8", "schar"},
	"unsigned char":      {"uint8", "uchar"},
	"short":              {"int16", "short"},
	"unsigned short":     {"uint16", "ushort"},
	"int":                {"int32", "int"},
	"unsigned int":       {"uint32", "uint"},
	"long":               {"int", "long"},
	"unsigned long":      {"uint", "ulong"},
	"long long":          {"int64", "longlong"},
	"unsigned long long": {"uint64", "ulonglong"},
	"float":              {"float32", "float"},
	"double":             {"float64", "double"},
	"size_t":             {"uint", "size_t"},
	"ssize_t":            {"int", "ssize_t"},
	"int8_t":             {"int8", "int8_t"},
	"int16_t":            {"int16", "int16_t"},
	"int32_t":            {"int32", "int32_t"},
	"int64_t":            {"int64", "int64_t"},
	"uint8_t":            {"uint8", "uint8_t"},
	"uint16_t":           {"uint16", "uint16_t"},
	"uint32_t":           {"uint32", "uint32_t"},
	"uint64_t":           {"uint64", "uint64_t"},
	"uintptr_t":          {"uintptr", "uintptr_t"},
	"bool":               {"bool", "bool"},
}

type enumInfo struct {
	goName string
	cRef   string
	fromC  string
}

type emitter struct {
	opts    EmitOptions
	names   *namer
	aliases map[string]string
	enums   map[string]enumInfo
	b       bytes.Buffer
}

// Emit renders the selected declarations as one formatted Go file.
func Emit(decls []Decl, opts EmitOptions) ([]byte, error) {
	e := &emitter{
		opts:    opts,
		names:   newNamer(),
		aliases: map[string]string{},
		enums:   map[string]enumInfo{},
	}
	if err := e.index(decls); err != nil {
		return nil, err
	}

	e.header()
	for _, d := range decls {
		if d.Kind == KindTypedef || d.Kind == KindStruct {
			e.alias(d)
		}
	}
	for _, d := range decls {
		if d.Kind == KindEnum {
			e.enum(d)
		}
	}
	if err := e.macros(decls); err != nil {
		return nil, err
	}
	for _, d := range decls {
		if d.Kind == KindFunc {
			if err := e.function(d); err != nil {
				return nil, err
			}
		}
	}

	filename := opts.Filename
	if filename == "" {
		filename = "bindings_gen.go"
	}
	out, err := imports.Process(filename, e.b.Bytes(), &imports.Options{
		Comments:  true,
		TabIndent: true,
		TabWidth:  8,
	})
	if err != nil {
		return nil, fmt.Errorf("format generated bindings: %w", err)
	}
	return out, nil
}

// index registers every type name before any code is written so that
// declarations may refer to types declared later in the header.
func (e *emitter) index(decls []Decl) error {
	for _, d := range decls {
		if d.Kind == KindEnum && len(d.Enumerators) > 0 {
			goName := ExportName(e.opts.Policy.PolicyName(d.Name), true)
			if err := e.names.claim(goName, d.Name); err != nil {
				return err
			}
			info := enumInfo{goName: goName, cRef: d.CRef(), fromC: unexport(goName) + "FromC"}
			if d.Tagged {
				e.enums["enum "+d.Name] = info
			} else {
				e.enums[d.Name] = info
			}
			for _, m := range d.Enumerators {
				if err := e.names.claim(ExportName(e.opts.Policy.PolicyName(m.Name), false), m.Name); err != nil {
					return err
				}
			}
		}
	}
	for _, d := range decls {
		switch d.Kind {
		case KindTypedef:
			if info, ok := e.enums[d.Target.Base]; ok && d.Target.Pointers == 0 {
				e.enums[d.Name] = info
				continue
			}
			goName := ExportName(e.opts.Policy.PolicyName(d.Name), true)
			if err := e.names.claim(goName, d.Name); err != nil {
				return err
			}
			e.aliases[d.Name] = goName
		case KindStruct:
			goName := ExportName(e.opts.Policy.PolicyName(d.Name), true)
			if err := e.names.claim(goName, "struct "+d.Name); err != nil {
				return err
			}
			e.aliases["struct "+d.Name] = goName
		case KindFunc:
			if err := e.names.claim(ExportName(e.opts.Policy.PolicyName(d.Name), false), d.Name); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *emitter) printf(format string, args ...any) {
	fmt.Fprintf(&e.b, format, args...)
}

func (e *emitter) header() {
	e.printf("%s\n", GeneratedHeader)
	if e.opts.Fingerprint != "" {
		e.printf("// Manifest: %s\n", e.opts.Fingerprint)
	}
	e.printf("\n")
	if e.opts.BuildTag != "" {
		e.printf("//go:build %s\n\n", e.opts.BuildTag)
	}
	e.printf("package %s\n\n", e.opts.Package)
	e.printf("/*\n#include <stdlib.h>\n")
	for _, h := range e.opts.Includes {
		e.printf("#include %q\n", h)
	}
	e.printf("*/\nimport \"C\"\n\n")
	e.printf("import (\n\t\"fmt\"\n\t\"unsafe\"\n)\n\n")
}

func (e *emitter) alias(d Decl) {
	if d.Kind == KindTypedef {
		if _, ok := e.enums[d.Name]; ok {
			return
		}
	}
	key := d.Name
	if d.Kind == KindStruct {
		key = "struct " + d.Name
	}
	goName := e.aliases[key]
	e.printf("// %s mirrors %s.\n", goName, key)
	e.printf("type %s = C.%s\n\n", goName, d.CRef())
}

func (e *emitter) enum(d Decl) {
	if len(d.Enumerators) == 0 {
		return
	}
	info := e.enumFor(d)
	typ := info.goName
	table := unexport(typ) + "Names"

	e.printf("// %s mirrors %s.\n", typ, d.Name)
	e.printf("type %s int32\n\n", typ)
	e.printf("const (\n")
	for _, m := range d.Enumerators {
		e.printf("\t%s %s = C.%s\n", ExportName(e.opts.Policy.PolicyName(m.Name), false), typ, m.Name)
	}
	e.printf(")\n\n")

	e.printf("var %s = []struct {\n\tvalue %s\n\tname string\n}{\n", table, typ)
	for _, m := range d.Enumerators {
		e.printf("\t{%s, %q},\n", ExportName(e.opts.Policy.PolicyName(m.Name), false), m.Name)
	}
	e.printf("}\n\n")

	e.printf("// IsValid reports whether v is one of the declared enumerators.\n")
	e.printf("func (v %s) IsValid() bool {\n", typ)
	e.printf("\tfor _, e := range %s {\n\t\tif e.value == v {\n\t\t\treturn true\n\t\t}\n\t}\n\treturn false\n}\n\n", table)

	e.printf("func (v %s) String() string {\n", typ)
	e.printf("\tfor _, e := range %s {\n\t\tif e.value == v {\n\t\t\treturn e.name\n\t\t}\n\t}\n", table)
	e.printf("\treturn fmt.Sprintf(\"%s(%%d)\", int32(v))\n}\n\n", typ)

	e.printf("// %s converts a value produced by C, panicking on a value outside\n// the declared set.\n", info.fromC)
	e.printf("func %s(v C.%s) %s {\n", info.fromC, info.cRef, typ)
	e.printf("\tout := %s(v)\n\tif !out.IsValid() {\n", typ)
	e.printf("\t\tpanic(fmt.Sprintf(\"%s: invalid %s value %%d\", int32(out)))\n\t}\n\treturn out\n}\n\n", e.opts.Package, typ)
}

func (e *emitter) enumFor(d Decl) enumInfo {
	if d.Tagged {
		return e.enums["enum "+d.Name]
	}
	return e.enums[d.Name]
}

var (
	numberRe = regexp.MustCompile(`^[-+]?(0[xX][0-9a-fA-F]+[uUlL]*|[0-9]+[uUlL]*|([0-9]+\.[0-9]*|\.[0-9]+)([eE][-+]?[0-9]+)?[fFlL]?|[0-9]+[eE][-+]?[0-9]+[fFlL]?)$`)
	hexRe    = regexp.MustCompile(`^[-+]?0[xX]`)
)

// numericLiteral returns the Go spelling of a numeric macro body.
func numericLiteral(value string) (string, bool) {
	v := strings.TrimSpace(value)
	for strings.HasPrefix(v, "(") && strings.HasSuffix(v, ")") {
		v = strings.TrimSpace(v[1 : len(v)-1])
	}
	v = strings.ReplaceAll(v, " ", "")
	if !numberRe.MatchString(v) {
		return "", false
	}
	if hexRe.MatchString(v) {
		return strings.TrimRight(v, "uUlL"), true
	}
	return strings.TrimRight(v, "uUlLfF"), true
}

func (e *emitter) macros(decls []Decl) error {
	type constant struct{ goName, cName, value string }
	var consts []constant
	for _, d := range decls {
		if d.Kind != KindMacro || strings.HasPrefix(d.Name, "_") {
			continue
		}
		lit, ok := numericLiteral(d.Value)
		if !ok {
			continue
		}
		goName := ExportName(e.opts.Policy.PolicyName(d.Name), false)
		if err := e.names.claim(goName, d.Name); err != nil {
			return err
		}
		consts = append(consts, constant{goName, d.Name, lit})
	}
	if len(consts) == 0 {
		return nil
	}
	e.printf("const (\n")
	for _, c := range consts {
		e.printf("\t// %s mirrors %s.\n\t%s = %s\n", c.goName, c.cName, c.goName, c.value)
	}
	e.printf(")\n\n")
	return nil
}

// conversion describes how one C type crosses the Go boundary.
type conversion struct {
	goType string
	setup  func(name string) string
	arg    func(name string) string
	ret    func(expr string) string
}

func identity(s string) string { return s }

func (e *emitter) cgoName(base string) string {
	if n, ok := numerics[base]; ok {
		return n.cgo
	}
	for _, kw := range []string{"struct", "enum", "union"} {
		if rest, ok := strings.CutPrefix(base, kw+" "); ok {
			return kw + "_" + rest
		}
	}
	return base
}

func (e *emitter) convert(t CType) conversion {
	unsafePtr := conversion{goType: "unsafe.Pointer", arg: identity, ret: func(x string) string { return "unsafe.Pointer(" + x + ")" }}

	if t.FuncPtr {
		unsafePtr.arg = func(x string) string { return "(*[0]byte)(" + x + ")" }
		return unsafePtr
	}

	switch t.Pointers {
	case 0:
		if info, ok := e.enums[t.Base]; ok {
			return conversion{
				goType: info.goName,
				arg:    func(x string) string { return "C." + info.cRef + "(" + x + ")" },
				ret:    func(x string) string { return info.fromC + "(" + x + ")" },
			}
		}
		if n, ok := numerics[t.Base]; ok {
			return conversion{
				goType: n.goType,
				arg:    func(x string) string { return "C." + n.cgo + "(" + x + ")" },
				ret:    func(x string) string { return n.goType + "(" + x + ")" },
			}
		}
		if alias, ok := e.aliases[t.Base]; ok {
			return conversion{goType: alias, arg: identity, ret: identity}
		}
		return conversion{goType: "C." + e.cgoName(t.Base), arg: identity, ret: identity}

	case 1:
		if t.Base == "char" && t.Const {
			return conversion{
				goType: "string",
				setup: func(x string) string {
					c := "c" + ExportName(x, false)
					return fmt.Sprintf("%s := C.CString(%s)\ndefer C.free(unsafe.Pointer(%s))\n", c, x, c)
				},
				arg: func(x string) string { return "c" + ExportName(x, false) },
				ret: func(x string) string { return "C.GoString(" + x + ")" },
			}
		}
		if alias, ok := e.aliases[t.Base]; ok {
			return conversion{goType: "*" + alias, arg: identity, ret: identity}
		}
		if t.Base == "void" {
			return conversion{goType: "unsafe.Pointer", arg: identity, ret: identity}
		}
	}

	cType := strings.Repeat("*", t.Pointers) + "C." + e.cgoName(t.Base)
	if t.Base == "void" {
		cType = strings.Repeat("*", t.Pointers-1) + "unsafe.Pointer"
	}
	unsafePtr.arg = func(x string) string { return "(" + cType + ")(" + x + ")" }
	return unsafePtr
}

func (e *emitter) function(d Decl) error {
	goName := ExportName(e.opts.Policy.PolicyName(d.Name), false)

	var (
		params []string
		setup  []string
		args   []string
	)
	used := map[string]bool{}
	for i, p := range d.Params {
		name := localName(p.Name, i)
		if used[name] {
			name = fmt.Sprintf("%s%d", name, i)
		}
		used[name] = true

		c := e.convert(p.Type)
		params = append(params, name+" "+c.goType)
		if c.setup != nil {
			setup = append(setup, c.setup(name))
		}
		args = append(args, c.arg(name))
	}

	call := fmt.Sprintf("C.%s(%s)", d.Name, strings.Join(args, ", "))

	e.printf("// %s wraps %s.\n", goName, d.Name)
	if d.Result.IsVoid() {
		e.printf("func %s(%s) {\n", goName, strings.Join(params, ", "))
		e.printf("%s\t%s\n}\n\n", strings.Join(setup, ""), call)
		return nil
	}
	r := e.convert(d.Result)
	e.printf("func %s(%s) %s {\n", goName, strings.Join(params, ", "), r.goType)
	e.printf("%s\treturn %s\n}\n\n", strings.Join(setup, ""), r.ret(call))
	return nil
}
