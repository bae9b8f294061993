package prune

import (
	"errors"
	"slices"
	"testing"

	"github.com/mark3labs/oas2types/internal/contract"
	"github.com/mark3labs/oas2types/internal/errs"
	"github.com/mark3labs/oas2types/internal/normalize"
	"github.com/mark3labs/oas2types/internal/pathfilter"
	"github.com/mark3labs/oas2types/internal/refs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const doc = `openapi: 3.0.3
paths:
  /api/v1/jobs:
    parameters:
      - $ref: '#/components/parameters/Tenant'
    get:
      parameters:
        - $ref: '#/components/parameters/Page'
      responses:
        "200": { $ref: '#/components/responses/JobList' }
        default: { $ref: '#/components/responses/Failure' }
    post:
      operationId: createJob
      requestBody:
        content:
          application/json:
            schema:
              type: object
              properties:
                spec: { $ref: '#/components/schemas/JobSpec' }
      responses:
        "201":
          content:
            application/json:
              schema: { $ref: '#/components/schemas/Job' }
  /api/v1/nodes:
    get:
      responses:
        "200":
          content:
            application/json:
              schema: { $ref: '#/components/schemas/Node' }
components:
  schemas:
    Job:
      type: object
      properties:
        spec: { $ref: '#/components/schemas/JobSpec' }
        owner: { $ref: '#/components/schemas/Owner' }
    JobSpec:
      type: object
      properties:
        image: { type: string }
    Owner:
      allOf:
        - $ref: '#/components/schemas/Principal'
    Principal:
      type: object
    Node:
      type: object
      properties:
        parent: { $ref: '#/components/schemas/Node' }
    Error:
      type: object
    ValidationErrorResponse:
      type: object
    PageSize:
      type: integer
    Tenant:
      type: string
  responses:
    JobList:
      content:
        application/json:
          schema:
            type: array
            items: { $ref: '#/components/schemas/Job' }
    Failure:
      content:
        application/json:
          schema:
            oneOf:
              - $ref: '#/components/schemas/Error'
              - $ref: '#/components/schemas/ValidationErrorResponse'
    Unused:
      content:
        application/json:
          schema: { $ref: '#/components/schemas/Node' }
  parameters:
    Page:
      name: page
      in: query
      schema: { $ref: '#/components/schemas/PageSize' }
    Tenant:
      name: X-Tenant
      in: header
      schema: { $ref: '#/components/schemas/Tenant' }
    Orphan:
      name: orphan
      in: query
      schema: { type: boolean }
`

func setup(t *testing.T, nameRequests bool) (*contract.Contract, []normalize.Promotion) {
	t.Helper()
	c, err := contract.Decode([]byte(doc))
	require.NoError(t, err)
	opts := normalize.DefaultOptions()
	opts.NameInlineRequests = nameRequests
	promos, err := normalize.Promote(c, opts)
	require.NoError(t, err)
	return c, promos
}

func schemaNames(c *contract.Contract) []string {
	return slices.Collect(c.Components.Schemas.Keys())
}

func TestPrune_JobsService(t *testing.T) {
	t.Parallel()

	c, promos := setup(t, true)
	paths := pathfilter.Filter(c.Paths, pathfilter.ServiceName(pathfilter.DefaultPrefix, "jobs"))

	got, err := Prune(c, paths, promos, DefaultDenylist())
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{
		"Job", "JobSpec", "Owner", "Principal", "PageSize", "Tenant",
		"JobListResponse", "PageScope", "FailureResponse", "CreateJobRequest",
	}, schemaNames(got))
	assert.Equal(t, []string{"JobList", "Failure"}, slices.Collect(got.Components.Responses.Keys()))
	assert.Equal(t, []string{"Page", "Tenant"}, slices.Collect(got.Components.Parameters.Keys()))
	assert.Equal(t, []string{"/api/v1/jobs"}, slices.Collect(got.Paths.Keys()))

	// originals keep document order, promotions follow
	assert.Equal(t, "Job", schemaNames(got)[0])

	assert.Equal(t, 9, c.Components.Schemas.Len())
}

func TestPrune_WithoutRequestNaming(t *testing.T) {
	t.Parallel()

	c, promos := setup(t, false)
	paths := pathfilter.Filter(c.Paths, pathfilter.ServiceName(pathfilter.DefaultPrefix, "jobs"))

	got, err := Prune(c, paths, promos, DefaultDenylist())
	require.NoError(t, err)
	assert.NotContains(t, schemaNames(got), "CreateJobRequest")
	assert.Contains(t, schemaNames(got), "JobSpec")
}

func TestPrune_Denylist(t *testing.T) {
	t.Parallel()

	c, promos := setup(t, false)
	got, err := Prune(c, c.Paths, promos, Denylist{})
	require.NoError(t, err)
	assert.Contains(t, schemaNames(got), "Error")
	assert.Contains(t, schemaNames(got), "ValidationErrorResponse")

	got, err = Prune(c, c.Paths, promos, DefaultDenylist())
	require.NoError(t, err)
	assert.NotContains(t, schemaNames(got), "Error")
	assert.NotContains(t, schemaNames(got), "ValidationErrorResponse")
	assert.Contains(t, schemaNames(got), "Node")
}

// Every kept schema is reachable from the paths, and every reachable schema
// not on the denylist is kept.
func TestPrune_ReachabilityCorrectness(t *testing.T) {
	t.Parallel()

	c, promos := setup(t, true)
	deny := DefaultDenylist()
	for _, service := range []string{"jobs", "nodes", "missing"} {
		paths := pathfilter.Filter(c.Paths, pathfilter.ServiceName(pathfilter.DefaultPrefix, service))
		got, err := Prune(c, paths, promos, deny)
		require.NoError(t, err)

		// reachability recomputed over the pruned contract itself
		var seeds []string
		for _, item := range got.Paths.All() {
			seeds = append(seeds, refs.References(item)...)
		}
		for _, p := range promos {
			if p.Origin == "" && got.Paths.Has(p.Path) {
				seeds = append(seeds, p.Ref())
			}
		}
		w := refs.NewWalker(got)
		w.Links = map[string][]string{}
		w.Extra = map[string]any{}
		for _, p := range promos {
			if p.Origin != "" {
				w.Links[p.Origin] = append(w.Links[p.Origin], p.Ref())
			}
			if deny.Denies(p.Name) {
				w.Extra[p.Ref()] = p.Schema
			}
		}
		for name := range c.Components.Schemas.Keys() {
			if deny.Denies(name) {
				s, _ := c.Components.Schemas.Get(name)
				w.Extra[refs.SchemaRef(name)] = s
			}
		}
		closure, err := w.Walk(seeds)
		require.NoError(t, err, service)

		var reachable []string
		for _, r := range closure {
			parsed, err := refs.Parse(r)
			require.NoError(t, err)
			if parsed.Category == refs.Schemas && !deny.Denies(parsed.Name) {
				reachable = append(reachable, parsed.Name)
			}
		}
		assert.ElementsMatch(t, reachable, schemaNames(got), service)
	}
}

func TestPrune_UnknownReference(t *testing.T) {
	t.Parallel()

	c, err := contract.Decode([]byte(`openapi: 3.0.0
paths:
  /api/v1/x:
    get:
      responses:
        "200": { $ref: '#/components/responses/Gone' }
`))
	require.NoError(t, err)
	_, err = Prune(c, c.Paths, nil, DefaultDenylist())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.UnknownComponent))
}

func TestDenylist_Denies(t *testing.T) {
	t.Parallel()

	d := DefaultDenylist()
	assert.True(t, d.Denies("Error"))
	assert.True(t, d.Denies("EmptyResponse"))
	assert.True(t, d.Denies("QuotaErrorResponse"))
	assert.False(t, d.Denies("Errors"))
	assert.False(t, d.Denies("ErrorResponseBody"))
	assert.False(t, Denylist{}.Denies("Error"))
}
