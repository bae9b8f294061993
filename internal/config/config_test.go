package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Sample(t *testing.T) {
	t.Parallel()
	f, err := Parse([]byte(Sample))
	require.NoError(t, err)
	assert.Equal(t, "./openapi.yaml", f.Input)
	assert.Equal(t, "/api/v1", f.Prefix)
	require.Len(t, f.Services, 1)
	assert.Equal(t, "billing", f.Services[0].Name)
}

func TestParse_Full(t *testing.T) {
	t.Parallel()
	src := `
input: https://example.com/openapi.yaml
snapshot: s3://contracts/platform.yaml
prefix: /api/v2/
out: gen
concurrency: 2
nameInlineRequests: true
emitterCommand: [emit, "{input}"]
suffixes:
  response: Reply
denylist:
  names: [Problem]
services:
  - name: jobs
    include: [" scheduler "]
    exclude: [jobs/admin]
    types: [" Job"]
    package: jobs
`
	f, err := Parse([]byte(src))
	require.NoError(t, err)
	assert.Equal(t, "/api/v2", f.Prefix)
	assert.Equal(t, 2, f.Concurrency)
	assert.True(t, f.NameInlineRequests)
	assert.Equal(t, []string{"emit", "{input}"}, f.EmitterCommand)
	require.NotNil(t, f.Suffixes)
	assert.Equal(t, "Reply", f.Suffixes.Response)
	require.NotNil(t, f.Denylist)
	assert.Equal(t, []string{"Problem"}, f.Denylist.Names)
	require.Len(t, f.Services, 1)
	svc := f.Services[0]
	assert.Equal(t, "jobs", svc.Name)
	assert.Equal(t, []string{"scheduler"}, svc.Include)
	assert.Equal(t, []string{"Job"}, svc.Types)
}

func TestParse_Empty(t *testing.T) {
	t.Parallel()
	f, err := Parse(nil)
	require.NoError(t, err)
	assert.Empty(t, f.Services)
}

func TestParse_SchemaViolations(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"unknown field":      "lang: go\n",
		"wrong type":         "concurrency: many\n",
		"zero concurrency":   "concurrency: 0\n",
		"service needs name": "services:\n  - package: x\n",
		"bad package":        "services:\n  - name: a\n    package: Bad-Name\n",
		"relative prefix":    "prefix: api\n",
		"empty emitter":      "emitterCommand: []\n",
	}
	for name, src := range cases {
		_, err := Parse([]byte(src))
		assert.Error(t, err, name)
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), DefaultFile)
	require.NoError(t, os.WriteFile(path, []byte("out: ./gen\n"), 0o600))
	f, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "./gen", f.Out)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadEnvFrom(t *testing.T) {
	t.Parallel()
	e, err := LoadEnvFrom(map[string]string{
		"OAS2TYPES_LOG_LEVEL":     "debug",
		"OAS2TYPES_S3_ENDPOINT":   "localhost:9000",
		"OAS2TYPES_S3_USE_SSL":    "false",
		"OAS2TYPES_S3_ACCESS_KEY": "minio",
	})
	require.NoError(t, err)
	assert.Equal(t, "debug", e.LogLevel)
	assert.Equal(t, "console", e.LogFormat)
	assert.Equal(t, "us-east-1", e.S3Region)
	assert.Equal(t, "localhost:9000", e.S3Endpoint)
	assert.False(t, e.S3UseSSL)
	assert.Equal(t, "minio", e.S3AccessKey)

	_, err = LoadEnvFrom(map[string]string{"OAS2TYPES_S3_USE_SSL": "maybe"})
	assert.Error(t, err)
}
