package snapshot

import "strings"

var v2Verbs = []string{"get", "put", "post", "delete", "options", "head", "patch"}

// fixV2Bodies rewrites Swagger 2.0 operations the converter rejects:
//   - several body parameters are merged into one object body, one property
//     per original parameter;
//   - body parameters mixed with formData become formData parameters and the
//     operation consumes multipart/form-data.
//
// It reports whether doc changed.
func fixV2Bodies(doc map[string]any) bool {
	paths, _ := doc["paths"].(map[string]any)
	changed := false
	for _, raw := range paths {
		item, _ := raw.(map[string]any)
		for _, verb := range v2Verbs {
			op, _ := item[verb].(map[string]any)
			if op == nil {
				continue
			}
			params, _ := op["parameters"].([]any)
			bodies, form := countParams(params)
			switch {
			case bodies > 0 && form:
				op["parameters"] = bodiesToFormData(params)
				consumes, _ := op["consumes"].([]any)
				if !containsString(consumes, "multipart/form-data") {
					op["consumes"] = append(consumes, "multipart/form-data")
				}
				changed = true
			case bodies > 1:
				op["parameters"] = mergeBodies(params)
				changed = true
			}
		}
	}
	return changed
}

func countParams(params []any) (bodies int, form bool) {
	for _, p := range params {
		pm, _ := p.(map[string]any)
		switch {
		case strings.EqualFold(asString(pm["in"]), "body"):
			bodies++
		case strings.EqualFold(asString(pm["in"]), "formData"):
			form = true
		}
	}
	return bodies, form
}

func mergeBodies(params []any) []any {
	props := map[string]any{}
	var required []any
	rest := make([]any, 0, len(params))
	for _, p := range params {
		pm, _ := p.(map[string]any)
		if !strings.EqualFold(asString(pm["in"]), "body") {
			rest = append(rest, p)
			continue
		}
		name := asString(pm["name"])
		if name == "" {
			name = "field"
		}
		schema := paramSchema(pm)
		if schema == nil {
			schema = map[string]any{"type": "string"}
		}
		props[name] = schema
		if req, _ := pm["required"].(bool); req {
			required = append(required, name)
		}
	}
	body := map[string]any{"type": "object", "properties": props}
	if len(required) > 0 {
		body["required"] = required
	}
	merged := map[string]any{"in": "body", "name": "body", "schema": body}
	return append([]any{merged}, rest...)
}

func bodiesToFormData(params []any) []any {
	out := make([]any, 0, len(params))
	for _, p := range params {
		pm, _ := p.(map[string]any)
		if strings.EqualFold(asString(pm["in"]), "body") {
			out = append(out, formDataParam(pm))
			continue
		}
		out = append(out, p)
	}
	return out
}

// formDataParam degrades a body parameter to a formData one. A referenced
// schema cannot be a form field and becomes a string.
func formDataParam(pm map[string]any) map[string]any {
	name := asString(pm["name"])
	if name == "" {
		name = "field"
	}
	out := map[string]any{"in": "formData", "name": name, "type": "string"}
	if desc := asString(pm["description"]); desc != "" {
		out["description"] = desc
	}
	if req, ok := pm["required"].(bool); ok {
		out["required"] = req
	}
	schema := paramSchema(pm)
	if schema == nil || schema["$ref"] != nil {
		return out
	}
	if t := asString(schema["type"]); t != "" {
		out["type"] = t
	}
	if f := asString(schema["format"]); f != "" {
		out["format"] = f
	}
	if items, ok := schema["items"].(map[string]any); ok {
		out["items"] = items
	}
	return out
}

// paramSchema returns the parameter's schema, or one built from its
// type/format/items.
func paramSchema(pm map[string]any) map[string]any {
	if s, ok := pm["schema"].(map[string]any); ok {
		return s
	}
	t := asString(pm["type"])
	if t == "" {
		return nil
	}
	s := map[string]any{"type": t}
	if items, ok := pm["items"].(map[string]any); ok {
		s["items"] = items
	}
	if f := asString(pm["format"]); f != "" {
		s["format"] = f
	}
	return s
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func containsString(list []any, want string) bool {
	for _, v := range list {
		if s, ok := v.(string); ok && s == want {
			return true
		}
	}
	return false
}
