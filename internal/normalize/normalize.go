// Package normalize promotes response bodies, query parameters and inline
// request bodies into named schemas.
package normalize

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mark3labs/oas2types/internal/contract"
	"github.com/mark3labs/oas2types/internal/errs"
	"github.com/mark3labs/oas2types/internal/pathfilter"
	"github.com/mark3labs/oas2types/internal/refs"
	"github.com/speakeasy-api/openapi/sequencedmap"
)

// Options configures promotion naming.
type Options struct {
	ResponseSuffix   string
	QueryParamSuffix string
	RequestSuffix    string
	// NameInlineRequests enables inline request body naming from operationId.
	NameInlineRequests bool
}

// DefaultOptions returns the suffixes used across the project.
func DefaultOptions() Options {
	return Options{
		ResponseSuffix:   "Response",
		QueryParamSuffix: "Scope",
		RequestSuffix:    "Request",
	}
}

// Promotion is a schema synthesized from a non-schema component.
type Promotion struct {
	Name   string
	Schema *contract.Schema
	// Origin is the component reference the schema was promoted from. It is
	// empty for inline request bodies, which belong to one operation.
	Origin string
	// Path and Method locate the operation of an inline request body.
	Path   string
	Method contract.HttpMethod
}

// Ref returns the schema pointer of the promoted name.
func (p Promotion) Ref() string { return refs.SchemaRef(p.Name) }

// Promote synthesizes named schemas from c without touching its dictionaries.
// A synthesized name equal to an existing schema, or to another synthesized
// name, is a fatal NamingCollision.
func Promote(c *contract.Contract, opts Options) ([]Promotion, error) {
	taken := make(map[string]string, c.Components.Schemas.Len())
	for name := range c.Components.Schemas.Keys() {
		taken[name] = "schema " + refs.SchemaRef(name)
	}

	var out []Promotion
	add := func(p Promotion, from string) error {
		if prev, ok := taken[p.Name]; ok {
			return errs.New(errs.NamingCollision, p.Name, "promoting %s collides with existing %s", from, prev)
		}
		taken[p.Name] = from
		out = append(out, p)
		return nil
	}

	for name, r := range c.Components.Responses.All() {
		if r == nil {
			continue
		}
		body := contract.JSONSchema(r.Content)
		if body == nil {
			continue
		}
		origin := refs.Ref{Category: refs.Responses, Name: name}.String()
		p := Promotion{
			Name:   EnsureSuffix(name, opts.ResponseSuffix),
			Schema: body.Clone(),
			Origin: origin,
		}
		if err := add(p, "response "+origin); err != nil {
			return nil, err
		}
	}

	for name, param := range c.Components.Parameters.All() {
		if param == nil || param.In != "query" || param.Schema == nil {
			continue
		}
		origin := refs.Ref{Category: refs.Parameters, Name: name}.String()
		props := sequencedmap.New[string, *contract.Schema]()
		props.Set(param.Name, param.Schema.Clone())
		obj := &contract.Schema{Type: "object", Properties: props, Description: param.Description}
		if param.Required {
			obj.Required = []string{param.Name}
		}
		p := Promotion{
			Name:   EnsureSuffix(name, opts.QueryParamSuffix),
			Schema: obj,
			Origin: origin,
		}
		if err := add(p, "query parameter "+origin); err != nil {
			return nil, err
		}
	}

	if !opts.NameInlineRequests {
		return out, nil
	}
	for path, item := range c.Paths.All() {
		if item == nil {
			continue
		}
		for _, mo := range pathfilter.Operations(item) {
			rb := mo.Operation.RequestBody
			if rb == nil || rb.Ref != "" {
				continue
			}
			body := contract.JSONSchema(rb.Content)
			if body == nil || body.Kind() == contract.KindRef {
				continue
			}
			id := strings.TrimSpace(mo.Operation.OperationID)
			if id == "" {
				return nil, errs.New(errs.MissingOperationID, strings.ToUpper(string(mo.Method))+" "+path,
					"inline request body needs an operationId to derive its type name")
			}
			p := Promotion{
				Name:   EnsureSuffix(Capitalize(id), opts.RequestSuffix),
				Schema: body.Clone(),
				Path:   path,
				Method: mo.Method,
			}
			if err := add(p, "request body of "+strings.ToUpper(string(mo.Method))+" "+path); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// EnsureSuffix appends suffix unless name already ends with it, compared
// case-insensitively.
func EnsureSuffix(name, suffix string) string {
	if suffix == "" || strings.HasSuffix(strings.ToLower(name), strings.ToLower(suffix)) {
		return name
	}
	return name + suffix
}

// Capitalize upper-cases the first rune of s.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || unicode.IsUpper(r) {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
