package refs

import (
	"github.com/mark3labs/oas2types/internal/contract"
	"github.com/mark3labs/oas2types/internal/errs"
)

// Resolver looks references up in a contract's component dictionaries.
type Resolver struct {
	c *contract.Contract
}

func NewResolver(c *contract.Contract) *Resolver {
	return &Resolver{c: c}
}

// Resolve returns the component node addressed by ref: a *contract.Schema,
// *contract.Response or *contract.Parameter. A missing component is fatal.
func (r *Resolver) Resolve(ref string) (any, error) {
	parsed, err := Parse(ref)
	if err != nil {
		return nil, err
	}
	var (
		node  any
		found bool
	)
	switch parsed.Category {
	case Schemas:
		node, found = r.c.Components.Schemas.Get(parsed.Name)
	case Responses:
		node, found = r.c.Components.Responses.Get(parsed.Name)
	case Parameters:
		node, found = r.c.Components.Parameters.Get(parsed.Name)
	}
	if !found {
		return nil, errs.New(errs.UnknownComponent, ref, "no %s component named %q", parsed.Category, parsed.Name)
	}
	return node, nil
}

// Walker computes transitive closures of references.
type Walker struct {
	resolver *Resolver
	// Links adds edges that do not exist in the document: reaching the key
	// also reaches every listed reference.
	Links map[string][]string
	// Extra resolves references the contract does not hold yet, such as
	// schemas synthesized before pruning. Consulted before the contract.
	Extra map[string]any
}

func NewWalker(c *contract.Contract) *Walker {
	return &Walker{resolver: NewResolver(c)}
}

// Walk follows seeds to closure with a frontier worklist and a history set,
// so self references and longer cycles converge. The result lists every
// reached reference once, in discovery order.
func (w *Walker) Walk(seeds []string) ([]string, error) {
	seen := make(map[string]struct{}, len(seeds))
	var history []string
	frontier := make([]string, 0, len(seeds))
	push := func(ref string) {
		if _, ok := seen[ref]; ok {
			return
		}
		seen[ref] = struct{}{}
		history = append(history, ref)
		frontier = append(frontier, ref)
	}
	for _, s := range seeds {
		push(s)
	}
	for len(frontier) > 0 {
		ref := frontier[0]
		frontier = frontier[1:]

		node, err := w.resolve(ref)
		if err != nil {
			return nil, err
		}
		for _, next := range References(node) {
			push(next)
		}
		for _, next := range w.Links[ref] {
			push(next)
		}
	}
	return history, nil
}

func (w *Walker) resolve(ref string) (any, error) {
	if node, ok := w.Extra[ref]; ok {
		return node, nil
	}
	return w.resolver.Resolve(ref)
}
