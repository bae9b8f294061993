// Package refs resolves $ref pointers against a contract's component
// dictionaries and computes reference closures over possibly cyclic graphs.
package refs

import (
	"fmt"
	"strings"

	"github.com/mark3labs/oas2types/internal/contract"
	"github.com/mark3labs/oas2types/internal/errs"
)

// Category is a component namespace.
type Category string

const (
	Schemas    Category = "schemas"
	Responses  Category = "responses"
	Parameters Category = "parameters"
)

// Ref is a parsed component pointer.
type Ref struct {
	Category Category
	Name     string
}

func (r Ref) String() string {
	return fmt.Sprintf("#/components/%s/%s", r.Category, escape(r.Name))
}

// SchemaRef returns the pointer string for schema name.
func SchemaRef(name string) string {
	return Ref{Category: Schemas, Name: name}.String()
}

// Parse splits a pointer of the form #/components/<category>/<name>.
func Parse(ref string) (Ref, error) {
	if strings.Count(ref, "#") != 1 || !strings.HasPrefix(ref, "#/") {
		return Ref{}, errs.New(errs.MalformedReference, ref, "expected exactly one local '#' fragment")
	}
	segments := strings.Split(strings.TrimPrefix(ref, "#/"), "/")
	if len(segments) != 3 || segments[0] != "components" || segments[2] == "" {
		return Ref{}, errs.New(errs.MalformedReference, ref, "expected #/components/<category>/<name>")
	}
	cat := Category(segments[1])
	switch cat {
	case Schemas, Responses, Parameters:
	default:
		return Ref{}, errs.New(errs.UnknownComponentCategory, ref, "category %q is not one of schemas, responses, parameters", segments[1])
	}
	return Ref{Category: cat, Name: unescape(segments[2])}, nil
}

// References lists every $ref string found by structural descent into node,
// in first-discovered order. Duplicates are kept. $ref targets are not
// followed.
func References(node any) []string {
	var out []string
	collect(node, &out)
	return out
}

func collect(node any, out *[]string) {
	switch n := node.(type) {
	case nil:
	case *contract.PathItem:
		if n == nil {
			return
		}
		for _, p := range n.Parameters {
			collect(p, out)
		}
		for _, m := range contract.Methods {
			if op := n.Operation(m); op != nil {
				collect(op, out)
			}
		}
	case *contract.Operation:
		if n == nil {
			return
		}
		for _, p := range n.Parameters {
			collect(p, out)
		}
		collect(n.RequestBody, out)
		for _, r := range n.Responses.All() {
			collect(r, out)
		}
	case *contract.RequestBody:
		if n == nil {
			return
		}
		if n.Ref != "" {
			*out = append(*out, n.Ref)
			return
		}
		collect(n.Content, out)
	case *contract.Response:
		if n == nil {
			return
		}
		if n.Ref != "" {
			*out = append(*out, n.Ref)
			return
		}
		collect(n.Content, out)
	case *contract.Parameter:
		if n == nil {
			return
		}
		if n.Ref != "" {
			*out = append(*out, n.Ref)
			return
		}
		collect(n.Schema, out)
	case *contract.Content:
		for _, mt := range n.All() {
			collect(mt, out)
		}
	case *contract.MediaType:
		if n != nil {
			collect(n.Schema, out)
		}
	case *contract.Schema:
		collectSchema(n, out)
	default:
		panic(fmt.Sprintf("refs: unsupported node type %T", node))
	}
}

func collectSchema(s *contract.Schema, out *[]string) {
	switch s.Kind() {
	case contract.KindAny:
		if s == nil {
			return
		}
	case contract.KindRef:
		*out = append(*out, s.Ref)
		return
	}
	for _, p := range s.Properties.All() {
		collectSchema(p, out)
	}
	if s.Items != nil {
		collectSchema(s.Items, out)
	}
	if s.AdditionalProperties != nil {
		collectSchema(s.AdditionalProperties, out)
	}
	for _, group := range [][]*contract.Schema{s.AllOf, s.AnyOf, s.OneOf} {
		for _, sub := range group {
			collectSchema(sub, out)
		}
	}
}

// Deduplicate drops repeated references. Order is not part of the contract.
func Deduplicate(refs []string) []string {
	seen := make(map[string]struct{}, len(refs))
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}

func escape(token string) string {
	return strings.NewReplacer("~", "~0", "/", "~1").Replace(token)
}

func unescape(token string) string {
	return strings.NewReplacer("~1", "/", "~0", "~").Replace(token)
}
