// Package order canonicalizes key, member and declaration order so equal
// content always serializes to equal bytes.
package order

import (
	"cmp"
	"slices"
	"strings"

	"github.com/mark3labs/oas2types/internal/contract"
	"github.com/mark3labs/oas2types/internal/errs"
	"github.com/mark3labs/oas2types/internal/gosrc"
	"github.com/speakeasy-api/openapi/sequencedmap"
	"gopkg.in/yaml.v3"
)

// Contract returns a copy of c with every ordered map rebuilt in key order,
// recursively. List order is kept.
func Contract(c *contract.Contract) *contract.Contract {
	out := c.Clone()
	out.Paths = sorted(out.Paths, func(item *contract.PathItem) *contract.PathItem {
		if item == nil {
			return nil
		}
		for _, p := range item.Parameters {
			parameter(p)
		}
		for _, m := range contract.Methods {
			if op := item.Operation(m); op != nil {
				operation(op)
			}
		}
		return item
	})
	out.Components.Schemas = sorted(out.Components.Schemas, schema)
	out.Components.Responses = sorted(out.Components.Responses, response)
	out.Components.Parameters = sorted(out.Components.Parameters, parameter)
	return out
}

// sorted builds a new map holding m's entries in key order, each passed
// through fn. It works on owned clones, so fn may modify values in place.
func sorted[V any](m *sequencedmap.Map[string, V], fn func(V) V) *sequencedmap.Map[string, V] {
	keys := slices.Sorted(m.Keys())
	out := sequencedmap.New[string, V]()
	for _, k := range keys {
		v, _ := m.Get(k)
		out.Set(k, fn(v))
	}
	return out
}

func operation(op *contract.Operation) {
	for _, p := range op.Parameters {
		parameter(p)
	}
	if op.RequestBody != nil {
		op.RequestBody.Content = content(op.RequestBody.Content)
	}
	if op.Responses != nil {
		op.Responses = sorted(op.Responses, response)
	}
}

func parameter(p *contract.Parameter) *contract.Parameter {
	if p != nil {
		p.Schema = schema(p.Schema)
	}
	return p
}

func response(r *contract.Response) *contract.Response {
	if r != nil {
		r.Content = content(r.Content)
	}
	return r
}

func content(c *contract.Content) *contract.Content {
	if c == nil {
		return nil
	}
	return sorted(c, func(mt *contract.MediaType) *contract.MediaType {
		if mt != nil {
			mt.Schema = schema(mt.Schema)
		}
		return mt
	})
}

func schema(s *contract.Schema) *contract.Schema {
	if s == nil {
		return nil
	}
	if s.Properties != nil {
		s.Properties = sorted(s.Properties, schema)
	}
	s.Items = schema(s.Items)
	s.AdditionalProperties = schema(s.AdditionalProperties)
	for _, group := range [][]*contract.Schema{s.AllOf, s.AnyOf, s.OneOf} {
		for i, sub := range group {
			group[i] = schema(sub)
		}
	}
	return s
}

// Node returns a deep copy of n with the pairs of every mapping sorted by key.
// Sequence element order is kept.
func Node(n *yaml.Node) *yaml.Node {
	if n == nil {
		return nil
	}
	out := *n
	out.Content = make([]*yaml.Node, len(n.Content))
	for i, c := range n.Content {
		out.Content[i] = Node(c)
	}
	if out.Kind != yaml.MappingNode {
		return &out
	}
	type pair struct{ key, val *yaml.Node }
	pairs := make([]pair, 0, len(out.Content)/2)
	for i := 0; i+1 < len(out.Content); i += 2 {
		pairs = append(pairs, pair{out.Content[i], out.Content[i+1]})
	}
	slices.SortStableFunc(pairs, func(a, b pair) int { return strings.Compare(a.key.Value, b.key.Value) })
	out.Content = out.Content[:0]
	for _, p := range pairs {
		out.Content = append(out.Content, p.key, p.val)
	}
	return &out
}

// File sorts the named members of every struct declaration and then the
// declarations themselves by name. A member declaring zero or several names
// cannot be ordered and fails with UnsortableMember.
func File(f gosrc.File) (gosrc.File, error) {
	decls := f.Decls()
	for i, d := range decls {
		if d.Kind() != gosrc.Struct {
			continue
		}
		members := d.Members()
		for _, m := range members {
			if m.Name() == "" {
				return gosrc.File{}, errs.New(errs.UnsortableMember, d.Name(),
					"member %q of type %s has no single name", strings.Join(m.Names, ", "), m.Type)
			}
		}
		slices.SortStableFunc(members, func(a, b gosrc.Member) int { return cmp.Compare(a.Name(), b.Name()) })
		decls[i] = d.WithMembers(members)
	}
	slices.SortStableFunc(decls, func(a, b gosrc.Decl) int { return cmp.Compare(a.Name(), b.Name()) })
	return f.WithDecls(decls), nil
}
