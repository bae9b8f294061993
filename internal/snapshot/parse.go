package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	openapi2 "github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi2conv"
	"github.com/mark3labs/oas2types/internal/contract"
	"github.com/mark3labs/oas2types/internal/errs"
	"gopkg.in/yaml.v3"
)

// Document is a parsed contract together with the OpenAPI 3 source it was
// read from. Source carries everything the Contract view does not model
// (servers, headers, validation keywords, extensions) and is what snapshots
// persist.
type Document struct {
	Contract *contract.Contract
	Source   *yaml.Node
	// Findings are validation errors that did not stop decoding.
	Findings []error
}

// Parse decodes an OpenAPI 3 document as written, or converts a Swagger 2.0
// document to OpenAPI 3 first. location only labels errors.
func Parse(ctx context.Context, data []byte, location string) (*Document, error) {
	var src yaml.Node
	if err := yaml.Unmarshal(data, &src); err != nil {
		return nil, errs.Wrap(errs.Parse, location, err, "parse contract")
	}
	var root map[string]any
	if err := src.Decode(&root); err != nil {
		return nil, errs.Wrap(errs.Parse, location, err, "parse contract")
	}
	switch detectVersion(root) {
	case 3:
	case 2:
		converted, err := convertV2(root)
		if err != nil {
			return nil, errs.Wrap(errs.Parse, location, err, "convert swagger 2.0 to openapi 3")
		}
		data = converted
		src = yaml.Node{}
		if err := yaml.Unmarshal(data, &src); err != nil {
			return nil, errs.Wrap(errs.Parse, location, err, "parse converted contract")
		}
	default:
		return nil, errs.New(errs.Parse, location, "missing or unknown version (expected 'openapi: 3.x' or 'swagger: 2.0')")
	}
	c, findings, err := contract.DecodeContext(ctx, data)
	if err != nil {
		return nil, errs.Wrap(errs.Parse, location, err, "decode contract")
	}
	return &Document{Contract: c, Source: &src, Findings: findings}, nil
}

// detectVersion returns 3 for OpenAPI v3, 2 for Swagger v2, else 0.
func detectVersion(root map[string]any) int {
	if strings.HasPrefix(versionString(root["openapi"]), "3.") {
		return 3
	}
	if strings.HasPrefix(versionString(root["swagger"]), "2.") {
		return 2
	}
	return 0
}

// versionString accepts an unquoted `swagger: 2.0`, which YAML reads as a float.
func versionString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', 1, 64)
	case int:
		return strconv.Itoa(t) + ".0"
	}
	return ""
}

// convertV2 returns the OpenAPI 3 JSON form of a Swagger 2.0 document.
func convertV2(root map[string]any) ([]byte, error) {
	doc, _ := jsonValue(root).(map[string]any)
	fixV2Bodies(doc)
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var v2 openapi2.T
	if err := json.Unmarshal(raw, &v2); err != nil {
		return nil, err
	}
	v3, err := openapi2conv.ToV3(&v2)
	if err != nil {
		return nil, err
	}
	return json.Marshal(v3)
}

// jsonValue makes a YAML-decoded value encodable as JSON: mappings with
// non-string keys (unquoted status codes) get string keys.
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
