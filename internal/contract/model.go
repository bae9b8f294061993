// Package contract holds the read-only data shapes of an API contract: paths,
// operations and the schemas/responses/parameters component dictionaries.
//
// Dictionaries are insertion-ordered so document order survives decoding.
// Pipeline stages never mutate a Contract; they build new ones.
package contract

import (
	"strings"

	"github.com/speakeasy-api/openapi/sequencedmap"
)

type HttpMethod string

const (
	GET     HttpMethod = "get"
	PUT     HttpMethod = "put"
	POST    HttpMethod = "post"
	DELETE  HttpMethod = "delete"
	OPTIONS HttpMethod = "options"
	HEAD    HttpMethod = "head"
	PATCH   HttpMethod = "patch"
	TRACE   HttpMethod = "trace"
)

// Methods lists the supported verbs in their stable order.
var Methods = []HttpMethod{GET, PUT, POST, DELETE, OPTIONS, HEAD, PATCH, TRACE}

type (
	Paths      = sequencedmap.Map[string, *PathItem]
	Schemas    = sequencedmap.Map[string, *Schema]
	Responses  = sequencedmap.Map[string, *Response]
	Parameters = sequencedmap.Map[string, *Parameter]
	Content    = sequencedmap.Map[string, *MediaType]
)

type Contract struct {
	OpenAPI    string
	Info       Info
	Paths      *Paths
	Components Components
}

type Info struct {
	Title   string
	Version string
}

// Components holds the three separate component namespaces.
type Components struct {
	Schemas    *Schemas
	Responses  *Responses
	Parameters *Parameters
}

type PathItem struct {
	Parameters []*Parameter
	Get        *Operation
	Put        *Operation
	Post       *Operation
	Delete     *Operation
	Options    *Operation
	Head       *Operation
	Patch      *Operation
	Trace      *Operation
}

// Operation returns the operation bound to m, or nil.
func (p *PathItem) Operation(m HttpMethod) *Operation {
	if p == nil {
		return nil
	}
	switch m {
	case GET:
		return p.Get
	case PUT:
		return p.Put
	case POST:
		return p.Post
	case DELETE:
		return p.Delete
	case OPTIONS:
		return p.Options
	case HEAD:
		return p.Head
	case PATCH:
		return p.Patch
	case TRACE:
		return p.Trace
	}
	return nil
}

// SetOperation binds op to m.
func (p *PathItem) SetOperation(m HttpMethod, op *Operation) {
	switch m {
	case GET:
		p.Get = op
	case PUT:
		p.Put = op
	case POST:
		p.Post = op
	case DELETE:
		p.Delete = op
	case OPTIONS:
		p.Options = op
	case HEAD:
		p.Head = op
	case PATCH:
		p.Patch = op
	case TRACE:
		p.Trace = op
	}
}

type Operation struct {
	OperationID string
	Summary     string
	Description string
	Tags        []string
	Parameters  []*Parameter
	RequestBody *RequestBody
	Responses   *Responses
}

type RequestBody struct {
	Ref         string
	Description string
	Required    bool
	Content     *Content
}

type Response struct {
	Ref         string
	Description string
	Content     *Content
}

type Parameter struct {
	Ref         string
	Name        string
	In          string // path|query|header|cookie
	Description string
	Required    bool
	Schema      *Schema
}

type MediaType struct {
	Schema *Schema
}

// Kind discriminates the Schema variants.
type Kind int

const (
	KindAny Kind = iota
	KindRef
	KindObject
	KindArray
	KindPrimitive
	KindComposite
)

func (k Kind) String() string {
	switch k {
	case KindRef:
		return "ref"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	case KindPrimitive:
		return "primitive"
	case KindComposite:
		return "composite"
	}
	return "any"
}

type Schema struct {
	Ref                  string
	Type                 string
	Format               string
	Title                string
	Description          string
	Nullable             bool
	Properties           *Schemas
	Required             []string
	Items                *Schema
	AdditionalProperties *Schema
	AllOf                []*Schema
	AnyOf                []*Schema
	OneOf                []*Schema
	Enum                 []any
	Default              any
	Example              any
}

// Kind reports which variant s is. A $ref wins over every sibling keyword.
func (s *Schema) Kind() Kind {
	switch {
	case s == nil:
		return KindAny
	case s.Ref != "":
		return KindRef
	case len(s.AllOf) > 0 || len(s.AnyOf) > 0 || len(s.OneOf) > 0:
		return KindComposite
	case s.Type == "array" || s.Items != nil:
		return KindArray
	case s.Type == "object" || s.Properties.Len() > 0 || s.AdditionalProperties != nil:
		return KindObject
	case s.Type != "":
		return KindPrimitive
	}
	return KindAny
}

// IsRequired reports whether prop is listed in s.Required.
func (s *Schema) IsRequired(prop string) bool {
	for _, r := range s.Required {
		if r == prop {
			return true
		}
	}
	return false
}

// JSONSchema returns the schema of the first JSON media type in c, or nil.
// application/json wins over other +json types.
func JSONSchema(c *Content) *Schema {
	if mt, ok := c.Get("application/json"); ok && mt != nil && mt.Schema != nil {
		return mt.Schema
	}
	for mime, mt := range c.All() {
		if mt == nil || mt.Schema == nil {
			continue
		}
		if isJSONMime(mime) {
			return mt.Schema
		}
	}
	return nil
}

func isJSONMime(mime string) bool {
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	mime = strings.ToLower(strings.TrimSpace(mime))
	return mime == "application/json" || strings.HasSuffix(mime, "+json")
}

// New returns an empty contract with initialized dictionaries.
func New() *Contract {
	return &Contract{
		Paths: sequencedmap.New[string, *PathItem](),
		Components: Components{
			Schemas:    sequencedmap.New[string, *Schema](),
			Responses:  sequencedmap.New[string, *Response](),
			Parameters: sequencedmap.New[string, *Parameter](),
		},
	}
}

// Version is the declared contract version handed to emitters.
func (c *Contract) Version() string {
	if c.Info.Version != "" {
		return c.Info.Version
	}
	return c.OpenAPI
}
