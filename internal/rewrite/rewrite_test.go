package rewrite

import (
	"errors"
	"testing"

	"github.com/mark3labs/oas2types/internal/errs"
	"github.com/mark3labs/oas2types/internal/gosrc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pagePath = "github.com/mark3labs/oas2types/pkg/pagination"

func parse(t *testing.T, src string) gosrc.File {
	t.Helper()
	f, err := gosrc.Parse([]byte(src))
	require.NoError(t, err)
	return f
}

func TestPageRule_RewritesExactShape(t *testing.T) {
	t.Parallel()

	f := parse(t, `package models

type SomeType struct {
	ID string `+"`json:\"id\"`"+`
}

type SomeTypeList struct {
	Items      []SomeType `+"`json:\"items\"`"+`
	NextCursor string     `+"`json:\"nextCursor,omitempty\"`"+`
}

type JobPage struct {
	NextCursor *string
	Items      []batch.Job
}

type Wider struct {
	Items      []SomeType
	NextCursor string
	Total      int
}
`)
	got, n, err := DefaultPageRule().Apply(f)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	list, _ := got.Decl("SomeTypeList")
	assert.Empty(t, list.Members())
	assert.Equal(t, []string{"pagination.Page[SomeType]"}, list.Extends())

	page, _ := got.Decl("JobPage")
	assert.Equal(t, []string{"pagination.Page[batch.Job]"}, page.Extends())

	wider, _ := got.Decl("Wider")
	assert.Len(t, wider.Members(), 3)
	assert.Empty(t, wider.Extends())

	assert.Equal(t, []gosrc.Import{{Path: pagePath}}, got.Imports())

	// input untouched
	orig, _ := f.Decl("SomeTypeList")
	assert.Len(t, orig.Members(), 2)
	assert.Empty(t, f.Imports())

	src, err := got.Render("")
	require.NoError(t, err)
	assert.Contains(t, string(src), "pagination.Page[SomeType]")
	assert.Contains(t, string(src), `"`+pagePath+`"`)
}

func TestPageRule_NoMatchKeepsFile(t *testing.T) {
	t.Parallel()

	f := parse(t, `package models

import "time"

type Only struct {
	Items []Thing
}

type Embeds struct {
	Base
	Items      []Thing
	NextCursor string
}
`)
	got, n, err := DefaultPageRule().Apply(f)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, f, got)
	assert.Equal(t, []gosrc.Import{{Path: "time"}}, got.Imports())
}

func TestPageRule_ImportAddedOnce(t *testing.T) {
	t.Parallel()

	f := parse(t, `package models

import "github.com/mark3labs/oas2types/pkg/pagination"

type A struct {
	Items      []X
	NextCursor string
}

type B struct {
	Items      []Y
	NextCursor string
}
`)
	got, n, err := DefaultPageRule().Apply(f)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []gosrc.Import{{Path: pagePath}}, got.Imports())
}

func TestPageRule_Precondition(t *testing.T) {
	t.Parallel()

	for _, typ := range []string{"[]string", "SomeType", "[4]SomeType", "[]*SomeType", "map[string]SomeType", "[][]SomeType"} {
		f := gosrc.NewFile("models", nil, []gosrc.Decl{
			gosrc.NewStruct("Bad", []gosrc.Member{
				{Names: []string{"Items"}, Type: typ},
				{Names: []string{"NextCursor"}, Type: "string"},
			}),
		})
		_, _, err := DefaultPageRule().Apply(f)
		require.Errorf(t, err, "type %s", typ)
		assert.True(t, errors.Is(err, errs.RewritePrecondition))
		assert.Contains(t, err.Error(), "Bad")
	}
}

func TestPageRule_CustomFields(t *testing.T) {
	t.Parallel()

	rule := DefaultPageRule()
	rule.ItemsField, rule.CursorField = "Data", "Next"
	f := gosrc.NewFile("models", nil, []gosrc.Decl{
		gosrc.NewStruct("Feed", []gosrc.Member{
			{Names: []string{"Data"}, Type: "[]Entry"},
			{Names: []string{"Next"}, Type: "string"},
		}),
	})
	got, n, err := rule.Apply(f)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	feed, _ := got.Decl("Feed")
	assert.Equal(t, []string{"pagination.Page[Entry]"}, feed.Extends())
}
