// Package goemitter is the built-in engine that renders a schema set as Go
// type declarations.
package goemitter

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"unicode"

	"github.com/mark3labs/oas2types/internal/contract"
	"github.com/mark3labs/oas2types/internal/emitter"
	"github.com/mark3labs/oas2types/internal/errs"
	"github.com/mark3labs/oas2types/internal/gosrc"
	"github.com/mark3labs/oas2types/internal/refs"
	"go.uber.org/zap"
)

// FileName is the name of the single unit the emitter produces.
const FileName = "types.go"

// Emitter renders schemas as Go structs, slices, defined types and aliases.
type Emitter struct {
	log *zap.Logger
}

func New(log *zap.Logger) *Emitter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Emitter{log: log}
}

// TypeName implements emitter.Namer.
func (e *Emitter) TypeName(schema string) string { return TypeName(schema) }

// Emit implements emitter.Emitter.
func (e *Emitter) Emit(ctx context.Context, in emitter.Input) ([]emitter.Unit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pkg := sanitizePackageName(in.Package)
	if pkg == "" {
		pkg = "types"
	}

	r := &renderer{schemas: in.Schemas, names: map[string]string{}, imports: map[string]bool{}}
	for name := range in.Schemas.Keys() {
		goName := TypeName(name)
		if prev, ok := r.names[goName]; ok {
			return nil, errs.New(errs.NamingCollision, goName, "schemas %q and %q map to the same Go type", prev, name)
		}
		r.names[goName] = name
	}
	for name, s := range in.Schemas.All() {
		if err := r.top(TypeName(name), s); err != nil {
			return nil, err
		}
	}

	var imports []gosrc.Import
	for _, path := range []string{"encoding/json", "time"} {
		if r.imports[path] {
			imports = append(imports, gosrc.Import{Path: path})
		}
	}
	f := gosrc.NewFile(pkg, imports, r.decls)
	src, err := f.Render("")
	if err != nil {
		return nil, err
	}
	e.log.Debug("emitted go types", zap.String("package", pkg), zap.Int("declarations", len(r.decls)), zap.String("version", in.Version))
	return []emitter.Unit{{Name: FileName, Source: src}}, nil
}

type renderer struct {
	schemas *contract.Schemas
	// names maps taken Go identifiers to the schema or field path owning them.
	names   map[string]string
	imports map[string]bool
	decls   []gosrc.Decl
}

func (r *renderer) top(name string, s *contract.Schema) error {
	doc := docLines(name, s)
	switch s.Kind() {
	case contract.KindRef:
		target, err := r.refType(s.Ref)
		if err != nil {
			return err
		}
		r.decls = append(r.decls, gosrc.NewAlias(name, target).WithDoc(doc...))
	case contract.KindObject:
		if s.Properties.Len() == 0 {
			typ, err := r.mapType(name, s)
			if err != nil {
				return err
			}
			r.decls = append(r.decls, gosrc.NewDefined(name, typ).WithDoc(doc...))
			return nil
		}
		d, err := r.structDecl(name, s, nil)
		if err != nil {
			return err
		}
		r.decls = append(r.decls, d.WithDoc(doc...))
	case contract.KindComposite:
		if len(s.AllOf) == 0 {
			r.imports["encoding/json"] = true
			r.decls = append(r.decls, gosrc.NewAlias(name, "json.RawMessage").WithDoc(doc...))
			return nil
		}
		d, err := r.allOf(name, s)
		if err != nil {
			return err
		}
		r.decls = append(r.decls, d.WithDoc(doc...))
	case contract.KindAny:
		r.decls = append(r.decls, gosrc.NewAlias(name, "any").WithDoc(doc...))
	default:
		typ, err := r.typeExpr(name, s)
		if err != nil {
			return err
		}
		r.decls = append(r.decls, gosrc.NewDefined(name, typ).WithDoc(doc...))
	}
	return nil
}

// allOf embeds every referenced part and merges the properties of inline
// parts into the struct itself.
func (r *renderer) allOf(name string, s *contract.Schema) (gosrc.Decl, error) {
	var embeds []string
	merged := &contract.Schema{Type: "object", Required: slices.Clone(s.Required)}
	props := map[string]*contract.Schema{}
	var order []string
	for prop, ps := range s.Properties.All() {
		props[prop] = ps
		order = append(order, prop)
	}
	for _, part := range s.AllOf {
		switch part.Kind() {
		case contract.KindRef:
			target, err := r.refType(part.Ref)
			if err != nil {
				return gosrc.Decl{}, err
			}
			embeds = append(embeds, target)
		case contract.KindObject:
			for prop, ps := range part.Properties.All() {
				if _, ok := props[prop]; !ok {
					order = append(order, prop)
				}
				props[prop] = ps
			}
			merged.Required = append(merged.Required, part.Required...)
		default:
			return gosrc.Decl{}, errs.New(errs.Emit, name, "allOf member of kind %s cannot be embedded", part.Kind())
		}
	}
	return r.structDeclFrom(name, order, props, merged, embeds)
}

func (r *renderer) structDecl(name string, s *contract.Schema, embeds []string) (gosrc.Decl, error) {
	var order []string
	props := map[string]*contract.Schema{}
	for prop, ps := range s.Properties.All() {
		order = append(order, prop)
		props[prop] = ps
	}
	return r.structDeclFrom(name, order, props, s, embeds)
}

func (r *renderer) structDeclFrom(name string, order []string, props map[string]*contract.Schema, owner *contract.Schema, embeds []string) (gosrc.Decl, error) {
	fields := map[string]bool{}
	members := make([]gosrc.Member, 0, len(order))
	for _, prop := range order {
		ps := props[prop]
		field := FieldName(prop)
		for base, n := field, 2; fields[field]; n++ {
			field = fmt.Sprintf("%s%d", base, n)
		}
		fields[field] = true

		typ, err := r.typeExpr(name+field, ps)
		if err != nil {
			return gosrc.Decl{}, err
		}
		required := owner.IsRequired(prop)
		if (!required || (ps != nil && ps.Nullable)) && pointerable(typ) {
			typ = "*" + typ
		}
		tag := prop
		if !required {
			tag += ",omitempty"
		}
		members = append(members, gosrc.Member{
			Names: []string{field},
			Type:  typ,
			Tag:   "`json:\"" + tag + "\"`",
			Doc:   fieldDoc(ps),
		})
	}
	return gosrc.NewStruct(name, members, embeds...), nil
}

// typeExpr returns the Go type of s. Inline objects become declarations named
// hint.
func (r *renderer) typeExpr(hint string, s *contract.Schema) (string, error) {
	switch s.Kind() {
	case contract.KindRef:
		return r.refType(s.Ref)
	case contract.KindArray:
		elem, err := r.typeExpr(hint+"Item", s.Items)
		if err != nil {
			return "", err
		}
		return "[]" + elem, nil
	case contract.KindObject:
		if s.Properties.Len() == 0 {
			return r.mapType(hint, s)
		}
		if err := r.claim(hint); err != nil {
			return "", err
		}
		d, err := r.structDecl(hint, s, nil)
		if err != nil {
			return "", err
		}
		r.decls = append(r.decls, d.WithDoc(docLines(hint, s)...))
		return hint, nil
	case contract.KindComposite:
		if len(s.AllOf) == 1 && s.AllOf[0].Kind() == contract.KindRef && s.Properties.Len() == 0 {
			return r.refType(s.AllOf[0].Ref)
		}
		if len(s.AllOf) > 0 {
			if err := r.claim(hint); err != nil {
				return "", err
			}
			d, err := r.allOf(hint, s)
			if err != nil {
				return "", err
			}
			r.decls = append(r.decls, d.WithDoc(docLines(hint, s)...))
			return hint, nil
		}
		r.imports["encoding/json"] = true
		return "json.RawMessage", nil
	case contract.KindPrimitive:
		return r.primitive(s), nil
	}
	return "any", nil
}

func (r *renderer) mapType(hint string, s *contract.Schema) (string, error) {
	if s.AdditionalProperties == nil {
		return "map[string]any", nil
	}
	val, err := r.typeExpr(hint+"Value", s.AdditionalProperties)
	if err != nil {
		return "", err
	}
	return "map[string]" + val, nil
}

func (r *renderer) primitive(s *contract.Schema) string {
	switch s.Type {
	case "string":
		switch s.Format {
		case "date-time":
			r.imports["time"] = true
			return "time.Time"
		case "binary", "byte":
			return "[]byte"
		}
		return "string"
	case "integer":
		if s.Format == "int32" {
			return "int32"
		}
		return "int64"
	case "number":
		if s.Format == "float" {
			return "float32"
		}
		return "float64"
	case "boolean":
		return "bool"
	}
	return "any"
}

func (r *renderer) refType(ref string) (string, error) {
	parsed, err := refs.Parse(ref)
	if err != nil {
		return "", err
	}
	if parsed.Category != refs.Schemas {
		return "", errs.New(errs.Emit, ref, "only schema references can be typed")
	}
	return TypeName(parsed.Name), nil
}

func (r *renderer) claim(name string) error {
	if owner, ok := r.names[name]; ok {
		return errs.New(errs.NamingCollision, name, "inline type collides with %q", owner)
	}
	r.names[name] = name
	return nil
}

func pointerable(typ string) bool {
	return !strings.HasPrefix(typ, "[]") && !strings.HasPrefix(typ, "map[") &&
		typ != "any" && typ != "json.RawMessage"
}

func docLines(name string, s *contract.Schema) []string {
	var out []string
	if s == nil {
		return nil
	}
	if d := strings.TrimSpace(s.Description); d != "" {
		lines := strings.Split(d, "\n")
		lines[0] = name + ": " + lines[0]
		out = append(out, lines...)
	}
	if len(s.Enum) > 0 {
		out = append(out, "Enum: "+enumList(s.Enum))
	}
	return out
}

func fieldDoc(s *contract.Schema) []string {
	var out []string
	if s == nil {
		return nil
	}
	if d := strings.TrimSpace(s.Description); d != "" {
		out = append(out, strings.Split(d, "\n")...)
	}
	if len(s.Enum) > 0 {
		out = append(out, "Enum: "+enumList(s.Enum))
	}
	return out
}

func enumList(values []any) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, ", ")
}

var initialisms = map[string]string{
	"id": "ID", "url": "URL", "uri": "URI", "api": "API", "http": "HTTP",
	"json": "JSON", "uuid": "UUID", "ip": "IP", "sql": "SQL", "tls": "TLS",
}

// TypeName turns a schema name into an exported Go identifier, keeping the
// casing of each word after its first letter.
func TypeName(name string) string {
	return identifier(name, false)
}

// FieldName turns a property name into an exported Go field name, applying
// common initialisms to whole words.
func FieldName(prop string) string {
	return identifier(prop, true)
}

func identifier(s string, initials bool) string {
	words := strings.FieldsFunc(s, func(r rune) bool { return !unicode.IsLetter(r) && !unicode.IsDigit(r) })
	var b strings.Builder
	for _, w := range words {
		if up, ok := initialisms[strings.ToLower(w)]; ok && initials {
			b.WriteString(up)
			continue
		}
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		b.WriteString(string(runes))
	}
	out := b.String()
	if out == "" {
		return "X"
	}
	if unicode.IsDigit([]rune(out)[0]) {
		return "X" + out
	}
	return out
}

func sanitizePackageName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	b := strings.Builder{}
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		}
	}
	out := strings.TrimLeft(b.String(), "0123456789_")
	return out
}
