package contract

import (
	"slices"

	"github.com/speakeasy-api/openapi/sequencedmap"
)

// Clone returns a deep copy of c. Scalar leaves under Enum/Default/Example are
// shared; they are never mutated by the pipeline.
func (c *Contract) Clone() *Contract {
	if c == nil {
		return nil
	}
	out := &Contract{
		OpenAPI: c.OpenAPI,
		Info:    c.Info,
		Paths:   cloneMap(c.Paths, (*PathItem).Clone),
		Components: Components{
			Schemas:    cloneMap(c.Components.Schemas, (*Schema).Clone),
			Responses:  cloneMap(c.Components.Responses, (*Response).Clone),
			Parameters: cloneMap(c.Components.Parameters, (*Parameter).Clone),
		},
	}
	return out
}

// cloneMap copies an ordered map, cloning each value. A nil map clones to an
// empty one so callers can always Set.
func cloneMap[V any](m *sequencedmap.Map[string, V], clone func(V) V) *sequencedmap.Map[string, V] {
	out := sequencedmap.New[string, V]()
	for k, v := range m.All() {
		out.Set(k, clone(v))
	}
	return out
}

func cloneList[V any](list []V, clone func(V) V) []V {
	if list == nil {
		return nil
	}
	out := make([]V, len(list))
	for i, v := range list {
		out[i] = clone(v)
	}
	return out
}

func (p *PathItem) Clone() *PathItem {
	if p == nil {
		return nil
	}
	out := &PathItem{Parameters: cloneList(p.Parameters, (*Parameter).Clone)}
	for _, m := range Methods {
		out.SetOperation(m, p.Operation(m).Clone())
	}
	return out
}

func (o *Operation) Clone() *Operation {
	if o == nil {
		return nil
	}
	out := *o
	out.Tags = slices.Clone(o.Tags)
	out.Parameters = cloneList(o.Parameters, (*Parameter).Clone)
	out.RequestBody = o.RequestBody.Clone()
	if o.Responses != nil {
		out.Responses = cloneMap(o.Responses, (*Response).Clone)
	}
	return &out
}

func (r *RequestBody) Clone() *RequestBody {
	if r == nil {
		return nil
	}
	out := *r
	if r.Content != nil {
		out.Content = cloneMap(r.Content, (*MediaType).Clone)
	}
	return &out
}

func (r *Response) Clone() *Response {
	if r == nil {
		return nil
	}
	out := *r
	if r.Content != nil {
		out.Content = cloneMap(r.Content, (*MediaType).Clone)
	}
	return &out
}

func (p *Parameter) Clone() *Parameter {
	if p == nil {
		return nil
	}
	out := *p
	out.Schema = p.Schema.Clone()
	return &out
}

func (m *MediaType) Clone() *MediaType {
	if m == nil {
		return nil
	}
	return &MediaType{Schema: m.Schema.Clone()}
}

func (s *Schema) Clone() *Schema {
	if s == nil {
		return nil
	}
	out := *s
	if s.Properties != nil {
		out.Properties = cloneMap(s.Properties, (*Schema).Clone)
	}
	out.Required = slices.Clone(s.Required)
	out.Items = s.Items.Clone()
	out.AdditionalProperties = s.AdditionalProperties.Clone()
	out.AllOf = cloneList(s.AllOf, (*Schema).Clone)
	out.AnyOf = cloneList(s.AnyOf, (*Schema).Clone)
	out.OneOf = cloneList(s.OneOf, (*Schema).Clone)
	out.Enum = slices.Clone(s.Enum)
	return &out
}
