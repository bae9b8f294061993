// Package config loads the oas2types configuration file and environment.
package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// DefaultFile is the config file name init writes and commands look for.
const DefaultFile = "oas2types.yaml"

//go:embed schema.json
var schemaJSON string

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	return jsonschema.CompileString("oas2types.schema.json", schemaJSON)
})

// File is the decoded configuration file. Every field is optional; flags
// override what is set here.
type File struct {
	// Input is a path or http(s) URL of the contract.
	Input string `yaml:"input,omitempty"`
	// Snapshot is where the snapshot command persists the contract: a path or
	// s3://bucket/key.
	Snapshot           string    `yaml:"snapshot,omitempty"`
	Prefix             string    `yaml:"prefix,omitempty"`
	Out                string    `yaml:"out,omitempty"`
	Manifest           string    `yaml:"manifest,omitempty"`
	Concurrency        int       `yaml:"concurrency,omitempty"`
	NameInlineRequests bool      `yaml:"nameInlineRequests,omitempty"`
	EmitterCommand     []string  `yaml:"emitterCommand,omitempty"`
	Suffixes           *Suffixes `yaml:"suffixes,omitempty"`
	Denylist           *Denylist `yaml:"denylist,omitempty"`
	Services           []Service `yaml:"services,omitempty"`
}

type Suffixes struct {
	Response   string `yaml:"response,omitempty"`
	QueryParam string `yaml:"queryParam,omitempty"`
	Request    string `yaml:"request,omitempty"`
}

type Denylist struct {
	Names    []string `yaml:"names,omitempty"`
	Suffixes []string `yaml:"suffixes,omitempty"`
}

// Service is one generation target. Name is the path segment after the
// prefix; Include and Exclude add more service names to match or reject.
type Service struct {
	Name    string   `yaml:"name"`
	Include []string `yaml:"include,omitempty"`
	Exclude []string `yaml:"exclude,omitempty"`
	Types   []string `yaml:"types,omitempty"`
	Package string   `yaml:"package,omitempty"`
	Output  string   `yaml:"output,omitempty"`
}

// Load reads and validates the config file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file %q: %w", path, err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config file %q: %w", path, err)
	}
	return f, nil
}

// Parse validates data against the config schema, then decodes it.
func Parse(data []byte) (*File, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if raw == nil {
		return &File{}, nil
	}
	if err := Validate(raw); err != nil {
		return nil, err
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	f.normalize()
	return &f, nil
}

// Validate checks a YAML-decoded document against the config schema.
func Validate(doc any) error {
	schema, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}
	raw, err := json.Marshal(jsonValue(doc))
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (f *File) normalize() {
	f.Input = strings.TrimSpace(f.Input)
	f.Snapshot = strings.TrimSpace(f.Snapshot)
	f.Prefix = strings.TrimRight(strings.TrimSpace(f.Prefix), "/")
	f.Out = strings.TrimSpace(f.Out)
	for i := range f.Services {
		s := &f.Services[i]
		s.Name = strings.Trim(strings.TrimSpace(s.Name), "/")
		s.Include = trimAll(s.Include)
		s.Exclude = trimAll(s.Exclude)
		s.Types = trimAll(s.Types)
	}
}

func trimAll(list []string) []string {
	if len(list) == 0 {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, s := range list {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func jsonValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = jsonValue(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = jsonValue(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = jsonValue(val)
		}
		return out
	default:
		return v
	}
}

// Env holds settings read from the environment (and a .env file loaded by
// main).
type Env struct {
	LogLevel  string `env:"OAS2TYPES_LOG_LEVEL"`
	LogFormat string `env:"OAS2TYPES_LOG_FORMAT" envDefault:"console"`
	// Input is the contract used when neither flag nor config names one.
	Input       string `env:"OAS2TYPES_INPUT"`
	S3Endpoint  string `env:"OAS2TYPES_S3_ENDPOINT"`
	S3Region    string `env:"OAS2TYPES_S3_REGION" envDefault:"us-east-1"`
	S3AccessKey string `env:"OAS2TYPES_S3_ACCESS_KEY"`
	S3SecretKey string `env:"OAS2TYPES_S3_SECRET_KEY"`
	S3UseSSL    bool   `env:"OAS2TYPES_S3_USE_SSL" envDefault:"true"`
}

// LoadEnv parses Env from the process environment.
func LoadEnv() (Env, error) {
	return env.ParseAs[Env]()
}

// LoadEnvFrom parses Env from vars instead of the process environment.
func LoadEnvFrom(vars map[string]string) (Env, error) {
	return env.ParseAsWithOptions[Env](env.Options{Environment: vars})
}
