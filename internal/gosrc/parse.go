package gosrc

import (
	"bytes"
	"go/ast"
	"go/format"
	"go/parser"
	"go/printer"
	"go/token"
	"strconv"
	"strings"

	"github.com/mark3labs/oas2types/internal/errs"
)

// Parse reads Go source produced by an emitter.
func Parse(src []byte) (File, error) {
	fset := token.NewFileSet()
	af, err := parser.ParseFile(fset, "emitted.go", src, parser.ParseComments)
	if err != nil {
		return File{}, errs.Wrap(errs.Emit, "emitted.go", err, "parse emitted source")
	}

	f := File{pkg: af.Name.Name}
	for _, decl := range af.Decls {
		gd, ok := decl.(*ast.GenDecl)
		if !ok || gd.Tok != token.TYPE {
			if ok && gd.Tok == token.IMPORT {
				f.imports = append(f.imports, imports(gd)...)
				continue
			}
			text, err := nodeText(fset, &printer.CommentedNode{Node: decl, Comments: af.Comments})
			if err != nil {
				return File{}, err
			}
			f.other = append(f.other, text)
			continue
		}
		for _, spec := range gd.Specs {
			ts := spec.(*ast.TypeSpec)
			d, err := typeDecl(fset, ts)
			if err != nil {
				return File{}, err
			}
			doc := ts.Doc
			if doc == nil && len(gd.Specs) == 1 {
				doc = gd.Doc
			}
			f.decls = append(f.decls, d.WithDoc(commentLines(doc)...))
		}
	}
	return f, nil
}

func imports(gd *ast.GenDecl) []Import {
	var out []Import
	for _, spec := range gd.Specs {
		is := spec.(*ast.ImportSpec)
		path, _ := strconv.Unquote(is.Path.Value)
		imp := Import{Path: path}
		if is.Name != nil {
			imp.Name = is.Name.Name
		}
		out = append(out, imp)
	}
	return out
}

func typeDecl(fset *token.FileSet, ts *ast.TypeSpec) (Decl, error) {
	name := ts.Name.Name
	if ts.TypeParams != nil {
		return Decl{}, errs.New(errs.Emit, name, "generic type declarations are not supported")
	}
	if ts.Assign.IsValid() {
		target, err := exprText(fset, ts.Type)
		return NewAlias(name, target), err
	}
	st, ok := ts.Type.(*ast.StructType)
	if !ok {
		underlying, err := exprText(fset, ts.Type)
		return NewDefined(name, underlying), err
	}

	var (
		members []Member
		extends []string
	)
	for _, field := range st.Fields.List {
		typ, err := exprText(fset, field.Type)
		if err != nil {
			return Decl{}, err
		}
		if len(field.Names) == 0 {
			extends = append(extends, typ)
			continue
		}
		m := Member{Type: typ, Doc: commentLines(field.Doc), Comment: strings.Join(commentLines(field.Comment), " ")}
		for _, n := range field.Names {
			m.Names = append(m.Names, n.Name)
		}
		if field.Tag != nil {
			m.Tag = field.Tag.Value
		}
		members = append(members, m)
	}
	return NewStruct(name, members, extends...), nil
}

func exprText(fset *token.FileSet, expr ast.Expr) (string, error) {
	var buf bytes.Buffer
	if err := printer.Fprint(&buf, fset, expr); err != nil {
		return "", errs.Wrap(errs.Emit, "emitted.go", err, "print type expression")
	}
	return buf.String(), nil
}

func nodeText(fset *token.FileSet, node any) (string, error) {
	var buf bytes.Buffer
	if err := format.Node(&buf, fset, node); err != nil {
		return "", errs.Wrap(errs.Emit, "emitted.go", err, "print declaration")
	}
	return buf.String(), nil
}

func commentLines(cg *ast.CommentGroup) []string {
	if cg == nil {
		return nil
	}
	return strings.Split(strings.TrimRight(cg.Text(), "\n"), "\n")
}
