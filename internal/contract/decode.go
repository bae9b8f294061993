package contract

import (
	"bytes"
	"context"
	"slices"

	"github.com/mark3labs/oas2types/internal/errs"
	"github.com/speakeasy-api/openapi/jsonschema/oas3"
	"github.com/speakeasy-api/openapi/openapi"
	"github.com/speakeasy-api/openapi/sequencedmap"
	"github.com/speakeasy-api/openapi/values"
)

// Decode parses a YAML or JSON OpenAPI 3 document. Key order of paths and of
// every component dictionary is kept as written. Validation findings are
// dropped; use DecodeContext to see them.
func Decode(data []byte) (*Contract, error) {
	c, _, err := DecodeContext(context.Background(), data)
	return c, err
}

// DecodeContext unmarshals data with the speakeasy OpenAPI model and builds
// the Contract view of it. The returned findings are validation errors that
// did not stop decoding.
func DecodeContext(ctx context.Context, data []byte) (*Contract, []error, error) {
	doc, findings, err := openapi.Unmarshal(ctx, bytes.NewReader(data))
	if err != nil {
		return nil, nil, errs.Wrap(errs.Parse, "#", err, "decode contract")
	}
	if doc == nil {
		return nil, findings, errs.New(errs.Parse, "#", "empty document")
	}
	return FromDocument(doc), findings, nil
}

// FromDocument builds the Contract view of an unmarshalled OpenAPI document.
func FromDocument(doc *openapi.OpenAPI) *Contract {
	c := New()
	c.OpenAPI = doc.OpenAPI
	c.Info.Title = doc.Info.Title
	c.Info.Version = doc.Info.Version

	for path, item := range doc.GetPaths().All() {
		c.Paths.Set(path, pathItemView(item))
	}

	comp := doc.GetComponents()
	for name, js := range comp.GetSchemas().All() {
		c.Components.Schemas.Set(name, schemaView(js))
	}
	for name, r := range comp.GetResponses().All() {
		c.Components.Responses.Set(name, responseView(r))
	}
	for name, p := range comp.GetParameters().All() {
		c.Components.Parameters.Set(name, parameterView(p))
	}
	return c
}

func pathItemView(ref *openapi.ReferencedPathItem) *PathItem {
	obj := ref.GetObject()
	if obj == nil {
		return nil
	}
	item := &PathItem{Parameters: parametersView(obj.Parameters)}
	for _, m := range Methods {
		if op := obj.GetOperation(openapi.HTTPMethod(m)); op != nil {
			item.SetOperation(m, operationView(op))
		}
	}
	return item
}

func operationView(op *openapi.Operation) *Operation {
	out := &Operation{
		OperationID: op.GetOperationID(),
		Summary:     op.GetSummary(),
		Description: op.GetDescription(),
		Tags:        slices.Clone(op.GetTags()),
		Parameters:  parametersView(op.GetParameters()),
		RequestBody: requestBodyView(op.GetRequestBody()),
	}
	resp := op.GetResponses()
	if resp == nil {
		return out
	}
	out.Responses = sequencedmap.New[string, *Response]()
	for status, r := range resp.All() {
		out.Responses.Set(status, responseView(r))
	}
	if def := resp.GetDefault(); def != nil && !out.Responses.Has("default") {
		out.Responses.Set("default", responseView(def))
	}
	return out
}

func parametersView(list []*openapi.ReferencedParameter) []*Parameter {
	var out []*Parameter
	for _, p := range list {
		out = append(out, parameterView(p))
	}
	return out
}

func parameterView(ref *openapi.ReferencedParameter) *Parameter {
	if ref.IsReference() {
		return &Parameter{Ref: string(ref.GetReference())}
	}
	p := ref.GetObject()
	if p == nil {
		return nil
	}
	return &Parameter{
		Name:        p.Name,
		In:          string(p.In),
		Description: p.GetDescription(),
		Required:    p.GetRequired(),
		Schema:      schemaView(p.GetSchema()),
	}
}

func requestBodyView(ref *openapi.ReferencedRequestBody) *RequestBody {
	if ref.IsReference() {
		return &RequestBody{Ref: string(ref.GetReference())}
	}
	rb := ref.GetObject()
	if rb == nil {
		return nil
	}
	return &RequestBody{
		Description: rb.GetDescription(),
		Required:    rb.GetRequired(),
		Content:     contentView(rb.GetContent()),
	}
}

func responseView(ref *openapi.ReferencedResponse) *Response {
	if ref.IsReference() {
		return &Response{Ref: string(ref.GetReference())}
	}
	r := ref.GetObject()
	if r == nil {
		return nil
	}
	return &Response{Description: r.Description, Content: contentView(r.Content)}
}

func contentView(in *sequencedmap.Map[string, *openapi.MediaType]) *Content {
	if in == nil {
		return nil
	}
	out := sequencedmap.New[string, *MediaType]()
	for mime, mt := range in.All() {
		out.Set(mime, &MediaType{Schema: schemaView(mt.GetSchema())})
	}
	return out
}

// schemaView flattens a JSON schema. A boolean true schema accepts anything;
// false is treated as absent.
func schemaView(js *oas3.JSONSchema[oas3.Referenceable]) *Schema {
	if js == nil {
		return nil
	}
	if js.IsRight() {
		if b := js.GetRight(); b != nil && *b {
			return &Schema{}
		}
		return nil
	}
	s := js.GetLeft()
	if s == nil {
		return nil
	}
	out := &Schema{
		Ref:                  string(s.GetRef()),
		Format:               s.GetFormat(),
		Title:                s.GetTitle(),
		Description:          s.GetDescription(),
		Nullable:             s.GetNullable(),
		Required:             slices.Clone(s.GetRequired()),
		Items:                schemaView(s.GetItems()),
		AdditionalProperties: schemaView(s.GetAdditionalProperties()),
		AllOf:                schemaList(s.GetAllOf()),
		AnyOf:                schemaList(s.GetAnyOf()),
		OneOf:                schemaList(s.GetOneOf()),
		Default:              value(s.GetDefault()),
		Example:              value(s.GetExample()),
	}
	// 3.1 list form; a "null" member marks the schema nullable.
	for _, t := range s.GetType() {
		if t == oas3.SchemaTypeNull {
			out.Nullable = true
			continue
		}
		if out.Type == "" {
			out.Type = string(t)
		}
	}
	if props := s.GetProperties(); props != nil {
		out.Properties = sequencedmap.New[string, *Schema]()
		for name, p := range props.All() {
			out.Properties.Set(name, schemaView(p))
		}
	}
	for _, e := range s.GetEnum() {
		out.Enum = append(out.Enum, value(e))
	}
	return out
}

func schemaList(list []*oas3.JSONSchema[oas3.Referenceable]) []*Schema {
	var out []*Schema
	for _, js := range list {
		out = append(out, schemaView(js))
	}
	return out
}

func value(v values.Value) any {
	if v == nil {
		return nil
	}
	var out any
	if err := v.Decode(&out); err != nil {
		return v.Value
	}
	return out
}
