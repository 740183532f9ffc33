package bindgen

import (
	"strings"
)

// Kind classifies a parsed declaration.
type Kind int

const (
	KindFunc Kind = iota
	KindEnum
	KindTypedef
	KindStruct
	KindMacro
)

func (k Kind) String() string {
	switch k {
	case KindFunc:
		return "function"
	case KindEnum:
		return "enum"
	case KindTypedef:
		return "typedef"
	case KindStruct:
		return "struct"
	case KindMacro:
		return "macro"
	default:
		return "unknown"
	}
}

// CType is a C type as far as the wrappers need to know it.
type CType struct {
	// Base is the type name without qualifiers or declarators, e.g.
	// "unsigned int", "struct elec_sys_s" or "elec_comp_t".
	Base     string
	Const    bool
	Pointers int
	// FuncPtr marks a function pointer; Base is then "void".
	FuncPtr bool
}

func (t CType) String() string {
	var b strings.Builder
	if t.Const {
		b.WriteString("const ")
	}
	b.WriteString(t.Base)
	if t.FuncPtr {
		b.WriteString(" (*)()")
	}
	if t.Pointers > 0 {
		b.WriteString(" " + strings.Repeat("*", t.Pointers))
	}
	return b.String()
}

// IsVoid reports whether t is plain void.
func (t CType) IsVoid() bool {
	return t.Base == "void" && t.Pointers == 0 && !t.FuncPtr
}

// Param is one function parameter. Name may be empty.
type Param struct {
	Name string
	Type CType
}

// Enumerator is one member of an enum; Value is the raw C expression.
type Enumerator struct {
	Name  string
	Value string
}

// Decl is one top-level declaration together with the file it came from.
type Decl struct {
	Kind   Kind
	Name   string
	Origin string
	Line   int

	// Functions.
	Result   CType
	Params   []Param
	Variadic bool

	// Enums. Tagged is set for "enum tag {...}" without a typedef.
	Enumerators []Enumerator
	Tagged      bool

	// Typedefs.
	Target CType

	// Macros.
	Value string

	// idents lists every identifier the declaration mentions.
	idents []string
}

// References reports whether the declaration mentions name.
func (d Decl) References(name string) bool {
	for _, id := range d.idents {
		if id == name {
			return true
		}
	}
	return false
}

// CRef is the cgo spelling of the declared type without the "C." prefix.
func (d Decl) CRef() string {
	if d.Kind == KindEnum && d.Tagged {
		return "enum_" + d.Name
	}
	if d.Kind == KindStruct {
		return "struct_" + d.Name
	}
	return d.Name
}
