// Package prune drops every component a set of paths cannot reach.
package prune

import (
	"strings"

	"github.com/mark3labs/oas2types/internal/contract"
	"github.com/mark3labs/oas2types/internal/normalize"
	"github.com/mark3labs/oas2types/internal/refs"
	"github.com/speakeasy-api/openapi/sequencedmap"
)

// Denylist names schemas that are never emitted on their own, even when
// reachable. Matching is exact for Names and case-sensitive "ends with" for
// Suffixes.
type Denylist struct {
	Names    []string
	Suffixes []string
}

// DefaultDenylist covers the shared error envelope and the empty-body marker.
func DefaultDenylist() Denylist {
	return Denylist{
		Names:    []string{"Error", "EmptyResponse"},
		Suffixes: []string{"ErrorResponse"},
	}
}

// Denies reports whether name is on the list.
func (d Denylist) Denies(name string) bool {
	for _, n := range d.Names {
		if n == name {
			return true
		}
	}
	for _, s := range d.Suffixes {
		if s != "" && strings.HasSuffix(name, s) {
			return true
		}
	}
	return false
}

// Prune returns a new contract holding paths and only the components
// reachable from them. Promotions take part in the walk: a response or query
// parameter promotion is reached together with its origin, and an inline
// request promotion is reached when its operation is among paths. Marked
// promotions land in the schema namespace. Denied schema names are removed
// last.
func Prune(c *contract.Contract, paths *contract.Paths, promos []normalize.Promotion, deny Denylist) (*contract.Contract, error) {
	var seeds []string
	for path, item := range paths.All() {
		if item == nil {
			continue
		}
		seeds = append(seeds, refs.References(item)...)
		for _, p := range promos {
			if p.Origin == "" && p.Path == path && item.Operation(p.Method) != nil {
				seeds = append(seeds, p.Ref())
			}
		}
	}

	w := refs.NewWalker(c)
	w.Links = make(map[string][]string)
	w.Extra = make(map[string]any, len(promos))
	synth := make(map[string]*contract.Schema, len(promos))
	for _, p := range promos {
		w.Extra[p.Ref()] = p.Schema
		synth[p.Name] = p.Schema
		if p.Origin != "" {
			w.Links[p.Origin] = append(w.Links[p.Origin], p.Ref())
		}
	}

	closure, err := w.Walk(seeds)
	if err != nil {
		return nil, err
	}
	marked := make(map[refs.Ref]struct{}, len(closure))
	for _, r := range closure {
		parsed, err := refs.Parse(r)
		if err != nil {
			return nil, err
		}
		marked[parsed] = struct{}{}
	}
	isMarked := func(cat refs.Category, name string) bool {
		_, ok := marked[refs.Ref{Category: cat, Name: name}]
		return ok
	}

	out := contract.New()
	out.OpenAPI = c.OpenAPI
	out.Info = c.Info
	for path, item := range paths.All() {
		if item != nil {
			out.Paths.Set(path, item.Clone())
		}
	}
	for name, s := range c.Components.Schemas.All() {
		if isMarked(refs.Schemas, name) {
			out.Components.Schemas.Set(name, s.Clone())
		}
	}
	for _, p := range promos {
		if isMarked(refs.Schemas, p.Name) {
			out.Components.Schemas.Set(p.Name, synth[p.Name].Clone())
		}
	}
	for name, r := range c.Components.Responses.All() {
		if isMarked(refs.Responses, name) {
			out.Components.Responses.Set(name, r.Clone())
		}
	}
	for name, p := range c.Components.Parameters.All() {
		if isMarked(refs.Parameters, name) {
			out.Components.Parameters.Set(name, p.Clone())
		}
	}

	kept := sequencedmap.New[string, *contract.Schema]()
	for name, s := range out.Components.Schemas.All() {
		if !deny.Denies(name) {
			kept.Set(name, s)
		}
	}
	out.Components.Schemas = kept
	return out, nil
}
