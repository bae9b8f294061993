package gosrc

import (
	"errors"
	"testing"

	"github.com/mark3labs/oas2types/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const emitted = `package models

import "encoding/json"

// Job is a unit of work.
type Job struct {
	Base
	// ID identifies the job.
	ID    string          ` + "`json:\"id\"`" + `
	Extra json.RawMessage ` + "`json:\"extra,omitempty\"`" + `
}

type (
	// Tags are labels.
	Tags []string
	JobID = string
)

// Version of the contract.
const Version = "1.0"
`

func TestParse(t *testing.T) {
	t.Parallel()

	f, err := Parse([]byte(emitted))
	require.NoError(t, err)
	assert.Equal(t, "models", f.Package())
	assert.Equal(t, []Import{{Path: "encoding/json"}}, f.Imports())
	assert.Equal(t, []string{"Job", "Tags", "JobID"}, f.Names())

	job, ok := f.Decl("Job")
	require.True(t, ok)
	assert.Equal(t, Struct, job.Kind())
	assert.Equal(t, []string{"Job is a unit of work."}, job.Doc())
	assert.Equal(t, []string{"Base"}, job.Extends())
	require.Len(t, job.Members(), 2)
	id := job.Members()[0]
	assert.Equal(t, "ID", id.Name())
	assert.Equal(t, "string", id.Type)
	assert.Equal(t, "`json:\"id\"`", id.Tag)
	assert.Equal(t, []string{"ID identifies the job."}, id.Doc)

	tags, _ := f.Decl("Tags")
	assert.Equal(t, Defined, tags.Kind())
	assert.Equal(t, "[]string", tags.Underlying())
	assert.Equal(t, []string{"Tags are labels."}, tags.Doc())

	alias, _ := f.Decl("JobID")
	assert.Equal(t, Alias, alias.Kind())
	assert.Equal(t, "string", alias.Underlying())

	require.Len(t, f.Other(), 1)
	assert.Contains(t, f.Other()[0], "// Version of the contract.")
}

func TestParse_KeepsLineComments(t *testing.T) {
	t.Parallel()

	src := "package models\n\ntype Job struct {\n\tName string `json:\"name\"` // display name\n\tID string\n}\n"
	f, err := Parse([]byte(src))
	require.NoError(t, err)
	job, _ := f.Decl("Job")
	assert.Equal(t, "display name", job.Members()[0].Comment)
	assert.Empty(t, job.Members()[1].Comment)

	out, err := f.Render("")
	require.NoError(t, err)
	assert.Contains(t, string(out), "`json:\"name\"` // display name\n")

	again, err := Parse(out)
	require.NoError(t, err)
	job, _ = again.Decl("Job")
	assert.Equal(t, "display name", job.Members()[0].Comment)
}

func TestParse_Invalid(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte("package x\ntype T struct {"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.Emit))

	_, err = Parse([]byte("package x\ntype T[E any] struct{ V E }\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.Emit))
}

func TestRender_RoundTrip(t *testing.T) {
	t.Parallel()

	f, err := Parse([]byte(emitted))
	require.NoError(t, err)
	out, err := f.Render("// header")
	require.NoError(t, err)

	again, err := Parse(out)
	require.NoError(t, err)
	assert.Equal(t, f, again)

	out2, err := again.Render("// header")
	require.NoError(t, err)
	assert.Equal(t, string(out), string(out2))
	assert.Contains(t, string(out), "// header\n\npackage models\n")
}

func TestBuilders_DoNotAlias(t *testing.T) {
	t.Parallel()

	members := []Member{{Names: []string{"A"}, Type: "int"}}
	d := NewStruct("T", members)
	members[0].Names[0] = "B"
	assert.Equal(t, "A", d.Members()[0].Name())

	got := d.Members()
	got[0].Names[0] = "C"
	assert.Equal(t, "A", d.Members()[0].Name())

	e := d.WithExtends("Base")
	assert.Empty(t, d.Extends())
	assert.Equal(t, []string{"Base"}, e.Extends())
}

func TestFile_WithImport(t *testing.T) {
	t.Parallel()

	f := NewFile("p", []Import{{Path: "time"}}, nil)
	g := f.WithImport(Import{Path: "encoding/json"}).WithImport(Import{Path: "encoding/json"})
	assert.Equal(t, []Import{{Path: "encoding/json"}, {Path: "time"}}, g.Imports())
	assert.Equal(t, []Import{{Path: "time"}}, f.Imports())
}

func TestMember_Name(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", Member{Names: []string{"A", "B"}}.Name())
	assert.Equal(t, "", Member{}.Name())
}
