package contract

import (
	"bytes"

	"github.com/mark3labs/oas2types/internal/errs"
	"gopkg.in/yaml.v3"
)

// Encode renders c as YAML. Dictionary keys keep the contract's order; run
// the result through order.Node first for a canonical byte stream.
func Encode(c *Contract) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(ToNode(c)); err != nil {
		return nil, errs.Wrap(errs.IO, "", err, "encode contract")
	}
	if err := enc.Close(); err != nil {
		return nil, errs.Wrap(errs.IO, "", err, "encode contract")
	}
	return buf.Bytes(), nil
}

// ToNode converts c into a YAML mapping node.
func ToNode(c *Contract) *yaml.Node {
	m := mapping()
	if c.OpenAPI != "" {
		m.add("openapi", scalar(c.OpenAPI))
	}
	if c.Info.Title != "" || c.Info.Version != "" {
		info := mapping()
		info.addStr("title", c.Info.Title)
		info.addStr("version", c.Info.Version)
		m.add("info", info.Node)
	}
	paths := mapping()
	for path, item := range c.Paths.All() {
		if item != nil {
			paths.add(path, pathItemNode(item))
		}
	}
	m.add("paths", paths.Node)

	comp := mapping()
	if c.Components.Schemas.Len() > 0 {
		schemas := mapping()
		for name, s := range c.Components.Schemas.All() {
			schemas.add(name, SchemaNode(s))
		}
		comp.add("schemas", schemas.Node)
	}
	if c.Components.Responses.Len() > 0 {
		responses := mapping()
		for name, r := range c.Components.Responses.All() {
			responses.add(name, responseNode(r))
		}
		comp.add("responses", responses.Node)
	}
	if c.Components.Parameters.Len() > 0 {
		params := mapping()
		for name, p := range c.Components.Parameters.All() {
			params.add(name, parameterNode(p))
		}
		comp.add("parameters", params.Node)
	}
	if len(comp.Content) > 0 {
		m.add("components", comp.Node)
	}
	return m.Node
}

type mapNode struct{ *yaml.Node }

func mapping() mapNode {
	return mapNode{&yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}}
}

func (m mapNode) add(key string, v *yaml.Node) {
	m.Content = append(m.Content, scalar(key), v)
}

func (m mapNode) addStr(key, v string) {
	if v != "" {
		m.add(key, scalar(v))
	}
}

func (m mapNode) addBool(key string, v bool) {
	if v {
		m.add(key, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: "true"})
	}
}

func (m mapNode) addAny(key string, v any) {
	if v == nil {
		return
	}
	n := &yaml.Node{}
	if err := n.Encode(v); err != nil {
		return
	}
	m.add(key, n)
}

func scalar(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

func sequence(nodes ...*yaml.Node) *yaml.Node {
	return &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Content: nodes}
}

func pathItemNode(item *PathItem) *yaml.Node {
	m := mapping()
	if len(item.Parameters) > 0 {
		m.add("parameters", parameterList(item.Parameters))
	}
	for _, verb := range Methods {
		if op := item.Operation(verb); op != nil {
			m.add(string(verb), operationNode(op))
		}
	}
	return m.Node
}

func operationNode(op *Operation) *yaml.Node {
	m := mapping()
	m.addStr("operationId", op.OperationID)
	m.addStr("summary", op.Summary)
	m.addStr("description", op.Description)
	if len(op.Tags) > 0 {
		tags := sequence()
		for _, t := range op.Tags {
			tags.Content = append(tags.Content, scalar(t))
		}
		m.add("tags", tags)
	}
	if len(op.Parameters) > 0 {
		m.add("parameters", parameterList(op.Parameters))
	}
	if op.RequestBody != nil {
		rb := mapping()
		rb.addStr("$ref", op.RequestBody.Ref)
		rb.addStr("description", op.RequestBody.Description)
		rb.addBool("required", op.RequestBody.Required)
		if op.RequestBody.Content.Len() > 0 {
			rb.add("content", contentNode(op.RequestBody.Content))
		}
		m.add("requestBody", rb.Node)
	}
	if op.Responses.Len() > 0 {
		responses := mapping()
		for status, r := range op.Responses.All() {
			responses.add(status, responseNode(r))
		}
		m.add("responses", responses.Node)
	}
	return m.Node
}

func parameterList(params []*Parameter) *yaml.Node {
	seq := sequence()
	for _, p := range params {
		if p != nil {
			seq.Content = append(seq.Content, parameterNode(p))
		}
	}
	return seq
}

func parameterNode(p *Parameter) *yaml.Node {
	m := mapping()
	if p == nil {
		return m.Node
	}
	m.addStr("$ref", p.Ref)
	m.addStr("name", p.Name)
	m.addStr("in", p.In)
	m.addStr("description", p.Description)
	m.addBool("required", p.Required)
	if p.Schema != nil {
		m.add("schema", SchemaNode(p.Schema))
	}
	return m.Node
}

func responseNode(r *Response) *yaml.Node {
	m := mapping()
	if r == nil {
		return m.Node
	}
	m.addStr("$ref", r.Ref)
	m.addStr("description", r.Description)
	if r.Content.Len() > 0 {
		m.add("content", contentNode(r.Content))
	}
	return m.Node
}

func contentNode(c *Content) *yaml.Node {
	m := mapping()
	for mime, mt := range c.All() {
		media := mapping()
		if mt != nil && mt.Schema != nil {
			media.add("schema", SchemaNode(mt.Schema))
		}
		m.add(mime, media.Node)
	}
	return m.Node
}

// SchemaNode converts a schema tree into YAML. A nil schema encodes as the
// empty schema.
func SchemaNode(s *Schema) *yaml.Node {
	m := mapping()
	if s == nil {
		return m.Node
	}
	m.addStr("$ref", s.Ref)
	m.addStr("title", s.Title)
	m.addStr("description", s.Description)
	m.addStr("type", s.Type)
	m.addStr("format", s.Format)
	m.addBool("nullable", s.Nullable)
	if len(s.Required) > 0 {
		req := sequence()
		for _, r := range s.Required {
			req.Content = append(req.Content, scalar(r))
		}
		m.add("required", req)
	}
	if s.Properties.Len() > 0 {
		props := mapping()
		for name, p := range s.Properties.All() {
			props.add(name, SchemaNode(p))
		}
		m.add("properties", props.Node)
	}
	if s.Items != nil {
		m.add("items", SchemaNode(s.Items))
	}
	if s.AdditionalProperties != nil {
		m.add("additionalProperties", SchemaNode(s.AdditionalProperties))
	}
	for _, group := range []struct {
		key  string
		list []*Schema
	}{{"allOf", s.AllOf}, {"anyOf", s.AnyOf}, {"oneOf", s.OneOf}} {
		if len(group.list) == 0 {
			continue
		}
		seq := sequence()
		for _, sub := range group.list {
			seq.Content = append(seq.Content, SchemaNode(sub))
		}
		m.add(group.key, seq)
	}
	if len(s.Enum) > 0 {
		m.addAny("enum", s.Enum)
	}
	m.addAny("default", s.Default)
	m.addAny("example", s.Example)
	return m.Node
}
