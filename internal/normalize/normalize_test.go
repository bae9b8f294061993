package normalize

import (
	"errors"
	"testing"

	"github.com/mark3labs/oas2types/internal/contract"
	"github.com/mark3labs/oas2types/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const doc = `openapi: 3.0.3
paths:
  /api/v1/serviceB/functions:
    get:
      operationId: listFunctions
      parameters:
        - $ref: '#/components/parameters/FunctionListScope'
      responses:
        "200": { $ref: '#/components/responses/FunctionList' }
    post:
      operationId: createFunction
      requestBody:
        content:
          application/json:
            schema:
              type: object
              properties:
                name: { type: string }
      responses:
        "204": { $ref: '#/components/responses/Empty' }
    put:
      operationId: replaceFunction
      requestBody:
        content:
          application/json:
            schema: { $ref: '#/components/schemas/Function' }
      responses: {}
components:
  schemas:
    Function:
      type: object
      properties:
        name: { type: string }
  responses:
    FunctionList:
      description: ok
      content:
        application/vnd.api+json:
          schema:
            type: array
            items: { $ref: '#/components/schemas/Function' }
    Empty:
      description: no body
    TextOnly:
      content:
        text/plain:
          schema: { type: string }
  parameters:
    FunctionListScope:
      name: scope
      in: query
      required: true
      schema: { type: string, enum: [own, all] }
    Tenant:
      name: X-Tenant
      in: header
      schema: { type: string }
`

func decode(t *testing.T, src string) *contract.Contract {
	t.Helper()
	c, err := contract.Decode([]byte(src))
	require.NoError(t, err)
	return c
}

func names(ps []Promotion) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.Name)
	}
	return out
}

func TestPromote(t *testing.T) {
	t.Parallel()

	c := decode(t, doc)
	got, err := Promote(c, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"FunctionListResponse", "FunctionListScope"}, names(got))

	resp := got[0]
	assert.Equal(t, "#/components/responses/FunctionList", resp.Origin)
	assert.Equal(t, contract.KindArray, resp.Schema.Kind())
	assert.Equal(t, "#/components/schemas/FunctionListResponse", resp.Ref())

	scope := got[1]
	assert.Equal(t, "#/components/parameters/FunctionListScope", scope.Origin)
	assert.Equal(t, contract.KindObject, scope.Schema.Kind())
	prop, ok := scope.Schema.Properties.Get("scope")
	require.True(t, ok)
	assert.Equal(t, []any{"own", "all"}, prop.Enum)
	assert.True(t, scope.Schema.IsRequired("scope"))

	// the source dictionaries are untouched
	assert.Equal(t, 1, c.Components.Schemas.Len())
	prop.Enum = nil
	orig, _ := c.Components.Parameters.Get("FunctionListScope")
	assert.Len(t, orig.Schema.Enum, 2)
}

func TestPromote_InlineRequests(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	opts.NameInlineRequests = true
	got, err := Promote(decode(t, doc), opts)
	require.NoError(t, err)
	require.Equal(t, []string{"FunctionListResponse", "FunctionListScope", "CreateFunctionRequest"}, names(got))

	req := got[2]
	assert.Empty(t, req.Origin)
	assert.Equal(t, "/api/v1/serviceB/functions", req.Path)
	assert.Equal(t, contract.POST, req.Method)
}

func TestPromote_MissingOperationID(t *testing.T) {
	t.Parallel()

	c := decode(t, doc)
	item, _ := c.Paths.Get("/api/v1/serviceB/functions")
	item.Post.OperationID = "   "

	opts := DefaultOptions()
	opts.NameInlineRequests = true
	_, err := Promote(c, opts)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.MissingOperationID))
	assert.Contains(t, err.Error(), "POST /api/v1/serviceB/functions")

	opts.NameInlineRequests = false
	_, err = Promote(c, opts)
	assert.NoError(t, err)
}

func TestPromote_NamingCollision(t *testing.T) {
	t.Parallel()

	clean := decode(t, `openapi: 3.0.0
components:
  responses:
    Foo:
      content:
        application/json:
          schema: { type: object }
`)
	got, err := Promote(clean, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"FooResponse"}, names(got))

	clash := decode(t, `openapi: 3.0.0
components:
  schemas:
    FooResponse: { type: object }
  responses:
    Foo:
      content:
        application/json:
          schema: { type: object }
`)
	_, err = Promote(clash, DefaultOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.NamingCollision))
	assert.Contains(t, err.Error(), "FooResponse")
}

func TestPromote_CollisionBetweenPromotions(t *testing.T) {
	t.Parallel()

	c := decode(t, `openapi: 3.0.0
components:
  responses:
    Job:
      content:
        application/json:
          schema: { type: object }
    JobResponse:
      content:
        application/json:
          schema: { type: string }
`)
	_, err := Promote(c, DefaultOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.NamingCollision))
	assert.Contains(t, err.Error(), "JobResponse")
}

func TestEnsureSuffix(t *testing.T) {
	t.Parallel()

	cases := []struct{ name, suffix, want string }{
		{"Foo", "Response", "FooResponse"},
		{"FooResponse", "Response", "FooResponse"},
		{"Fooresponse", "Response", "Fooresponse"},
		{"FOORESPONSE", "Response", "FOORESPONSE"},
		{"ListScope", "Scope", "ListScope"},
		{"List", "", "List"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, EnsureSuffix(tc.name, tc.suffix), tc.name)
	}
}

func TestCapitalize(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "CreateFunction", Capitalize("createFunction"))
	assert.Equal(t, "Already", Capitalize("Already"))
	assert.Equal(t, "Élan", Capitalize("élan"))
	assert.Equal(t, "", Capitalize(""))
	assert.Equal(t, "_x", Capitalize("_x"))
}
