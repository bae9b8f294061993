// Package rewrite replaces page-shaped struct declarations with an embedded
// generic page type.
package rewrite

import (
	"go/ast"
	"go/parser"
	"go/types"

	"github.com/mark3labs/oas2types/internal/errs"
	"github.com/mark3labs/oas2types/internal/gosrc"
)

// PageRule describes the shape to detect and the abstraction to embed.
type PageRule struct {
	// ImportPath and Package locate the shared page type.
	ImportPath string
	Package    string
	TypeName   string
	// ItemsField and CursorField are the two field names of the shape.
	ItemsField  string
	CursorField string
}

// DefaultPageRule embeds pagination.Page[T] in place of Items/NextCursor.
func DefaultPageRule() PageRule {
	return PageRule{
		ImportPath:  "github.com/mark3labs/oas2types/pkg/pagination",
		Package:     "pagination",
		TypeName:    "Page",
		ItemsField:  "Items",
		CursorField: "NextCursor",
	}
}

// Apply returns a copy of f where every struct whose named fields are exactly
// the items and cursor fields, with nothing embedded, embeds the page type
// instead. The page import is added once when anything matched. The number
// of rewritten declarations is returned alongside.
func (r PageRule) Apply(f gosrc.File) (gosrc.File, int, error) {
	decls := f.Decls()
	out := make([]gosrc.Decl, 0, len(decls))
	matched := 0
	for _, d := range decls {
		items, ok := r.match(d)
		if !ok {
			out = append(out, d)
			continue
		}
		elem, err := elementType(d.Name(), items)
		if err != nil {
			return gosrc.File{}, 0, err
		}
		out = append(out, d.WithMembers(nil).WithExtends(r.Package+"."+r.TypeName+"["+elem+"]"))
		matched++
	}
	if matched == 0 {
		return f, 0, nil
	}
	res := f.WithDecls(out).WithImport(gosrc.Import{Path: r.ImportPath})
	return res, matched, nil
}

func (r PageRule) match(d gosrc.Decl) (gosrc.Member, bool) {
	if d.Kind() != gosrc.Struct || len(d.Extends()) != 0 {
		return gosrc.Member{}, false
	}
	members := d.Members()
	if len(members) != 2 {
		return gosrc.Member{}, false
	}
	var items gosrc.Member
	var haveItems, haveCursor bool
	for _, m := range members {
		switch m.Name() {
		case r.ItemsField:
			items, haveItems = m, true
		case r.CursorField:
			haveCursor = true
		}
	}
	return items, haveItems && haveCursor
}

// elementType reads T off an items field typed []T or []pkg.T, where T names a
// declared type.
func elementType(decl string, items gosrc.Member) (string, error) {
	fail := func() (string, error) {
		return "", errs.New(errs.RewritePrecondition, decl,
			"field %s has type %s, want a slice of a named type", items.Name(), items.Type)
	}
	expr, err := parser.ParseExpr(items.Type)
	if err != nil {
		return fail()
	}
	arr, ok := expr.(*ast.ArrayType)
	if !ok || arr.Len != nil {
		return fail()
	}
	switch elt := arr.Elt.(type) {
	case *ast.Ident:
		if types.Universe.Lookup(elt.Name) != nil {
			return fail()
		}
		return elt.Name, nil
	case *ast.SelectorExpr:
		if pkg, ok := elt.X.(*ast.Ident); ok {
			return pkg.Name + "." + elt.Sel.Name, nil
		}
	}
	return fail()
}
