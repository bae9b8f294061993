// Package pathfilter selects the paths of a contract that belong to one
// logical service.
package pathfilter

import (
	"regexp"
	"strings"

	"github.com/mark3labs/oas2types/internal/contract"
	"github.com/speakeasy-api/openapi/sequencedmap"
)

// DefaultPrefix is the API-version/project prefix every service path starts with.
const DefaultPrefix = "/api/v1"

// Predicate reports whether a path key is selected.
type Predicate func(path string) bool

// PassThrough selects every path.
func PassThrough(string) bool { return true }

// ServiceName matches paths of the form <prefix>/<service> or
// <prefix>/<service>/... . Segments match exactly, so "serviceA" never
// selects "/serviceAX".
func ServiceName(prefix, service string) Predicate {
	prefix = "/" + strings.Trim(prefix, "/")
	if prefix == "/" {
		prefix = ""
	}
	re := regexp.MustCompile("^" + regexp.QuoteMeta(prefix+"/"+strings.Trim(service, "/")) + "(?:/|$)")
	return re.MatchString
}

// FromConfig selects a path when it matches any include predicate and no
// exclude predicate. Exclusion wins.
func FromConfig(include, exclude []Predicate) Predicate {
	return func(path string) bool {
		for _, ex := range exclude {
			if ex(path) {
				return false
			}
		}
		for _, in := range include {
			if in(path) {
				return true
			}
		}
		return false
	}
}

// ServiceNames builds a FromConfig predicate from service names.
func ServiceNames(prefix string, include, exclude []string) Predicate {
	return FromConfig(namePredicates(prefix, include), namePredicates(prefix, exclude))
}

func namePredicates(prefix string, names []string) []Predicate {
	out := make([]Predicate, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, ServiceName(prefix, n))
		}
	}
	return out
}

// Filter returns the entries of paths whose key satisfies pred, in their
// original order. Nil path items are dropped whatever pred says.
func Filter(paths *contract.Paths, pred Predicate) *contract.Paths {
	if pred == nil {
		pred = PassThrough
	}
	out := sequencedmap.New[string, *contract.PathItem]()
	for path, item := range paths.All() {
		if item == nil || !pred(path) {
			continue
		}
		out.Set(path, item)
	}
	return out
}

// MethodOperation pairs an operation with its verb.
type MethodOperation struct {
	Method    contract.HttpMethod
	Operation *contract.Operation
}

// Operations lists the operations of item in the stable verb order of
// contract.Methods, skipping absent verbs.
func Operations(item *contract.PathItem) []MethodOperation {
	var out []MethodOperation
	for _, m := range contract.Methods {
		if op := item.Operation(m); op != nil {
			out = append(out, MethodOperation{Method: m, Operation: op})
		}
	}
	return out
}
