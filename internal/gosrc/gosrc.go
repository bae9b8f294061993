// Package gosrc is an immutable model of a generated Go file: its imports and
// its top-level type declarations. Builders return modified copies; a value
// handed out is never changed afterwards.
package gosrc

import (
	"slices"
	"strings"
)

// Kind is the shape of a type declaration.
type Kind int

const (
	// Struct is `type T struct{...}`.
	Struct Kind = iota
	// Defined is `type T U` for any non-struct U.
	Defined
	// Alias is `type T = U`.
	Alias
)

func (k Kind) String() string {
	switch k {
	case Struct:
		return "struct"
	case Defined:
		return "defined"
	case Alias:
		return "alias"
	}
	return "unknown"
}

// Member is a named struct field. Type is a Go type expression and Tag the
// raw tag literal including its backquotes.
type Member struct {
	Names []string
	Type  string
	Tag   string
	Doc   []string
	// Comment is the line comment after the field, without its marker.
	Comment string
}

// Name returns the single field name, or "" when the member declares zero or
// several names.
func (m Member) Name() string {
	if len(m.Names) != 1 {
		return ""
	}
	return m.Names[0]
}

func (m Member) clone() Member {
	m.Names = slices.Clone(m.Names)
	m.Doc = slices.Clone(m.Doc)
	return m
}

// Decl is one top-level type declaration. For structs, Extends lists the
// embedded types and Members the named fields.
type Decl struct {
	name       string
	kind       Kind
	doc        []string
	underlying string
	members    []Member
	extends    []string
}

// NewStruct declares a struct type.
func NewStruct(name string, members []Member, extends ...string) Decl {
	return Decl{name: name, kind: Struct}.WithMembers(members).WithExtends(extends...)
}

// NewDefined declares `type name underlying`.
func NewDefined(name, underlying string) Decl {
	return Decl{name: name, kind: Defined, underlying: underlying}
}

// NewAlias declares `type name = target`.
func NewAlias(name, target string) Decl {
	return Decl{name: name, kind: Alias, underlying: target}
}

func (d Decl) Name() string       { return d.name }
func (d Decl) Kind() Kind         { return d.kind }
func (d Decl) Underlying() string { return d.underlying }
func (d Decl) Doc() []string      { return slices.Clone(d.doc) }
func (d Decl) Extends() []string  { return slices.Clone(d.extends) }

// Members returns a copy of the named fields.
func (d Decl) Members() []Member {
	out := make([]Member, len(d.members))
	for i, m := range d.members {
		out[i] = m.clone()
	}
	return out
}

// WithDoc returns d documented by lines.
func (d Decl) WithDoc(lines ...string) Decl {
	d.doc = slices.Clone(lines)
	return d
}

// WithMembers returns d with its named fields replaced.
func (d Decl) WithMembers(members []Member) Decl {
	d.members = make([]Member, len(members))
	for i, m := range members {
		d.members[i] = m.clone()
	}
	return d
}

// WithExtends returns d with its embedded types replaced.
func (d Decl) WithExtends(types ...string) Decl {
	d.extends = slices.Clone(types)
	return d
}

// Import is one import spec. Name is the optional local name.
type Import struct {
	Name string
	Path string
}

// File is a parsed or built Go source file.
type File struct {
	pkg     string
	imports []Import
	decls   []Decl
	// other holds top-level declarations that are not types (funcs, consts,
	// vars) as source text, in their original order.
	other []string
}

// NewFile builds a file from its parts.
func NewFile(pkg string, imports []Import, decls []Decl) File {
	return File{pkg: pkg, imports: slices.Clone(imports), decls: slices.Clone(decls)}
}

func (f File) Package() string   { return f.pkg }
func (f File) Imports() []Import { return slices.Clone(f.imports) }
func (f File) Decls() []Decl     { return slices.Clone(f.decls) }
func (f File) Other() []string   { return slices.Clone(f.other) }

// Decl returns the declaration called name.
func (f File) Decl(name string) (Decl, bool) {
	for _, d := range f.decls {
		if d.name == name {
			return d, true
		}
	}
	return Decl{}, false
}

// Names lists the declared type names in file order.
func (f File) Names() []string {
	out := make([]string, len(f.decls))
	for i, d := range f.decls {
		out[i] = d.name
	}
	return out
}

// WithDecls returns f with its type declarations replaced.
func (f File) WithDecls(decls []Decl) File {
	f.decls = slices.Clone(decls)
	return f
}

// WithImport returns f importing imp. Importing a path twice is a no-op.
func (f File) WithImport(imp Import) File {
	if slices.ContainsFunc(f.imports, func(i Import) bool { return i.Path == imp.Path }) {
		return f
	}
	f.imports = append(slices.Clone(f.imports), imp)
	slices.SortFunc(f.imports, func(a, b Import) int { return strings.Compare(a.Path, b.Path) })
	return f
}
