// Package generate sequences the pipeline for one service: filter, promote,
// prune, rename, order, emit, rewrite and write.
package generate

import (
	"bytes"
	"context"
	"path/filepath"
	"slices"

	"github.com/mark3labs/oas2types/internal/contract"
	"github.com/mark3labs/oas2types/internal/emitter"
	"github.com/mark3labs/oas2types/internal/errs"
	"github.com/mark3labs/oas2types/internal/gosrc"
	"github.com/mark3labs/oas2types/internal/normalize"
	"github.com/mark3labs/oas2types/internal/order"
	"github.com/mark3labs/oas2types/internal/pathfilter"
	"github.com/mark3labs/oas2types/internal/prune"
	"github.com/mark3labs/oas2types/internal/refs"
	"github.com/mark3labs/oas2types/internal/rewrite"
	"github.com/speakeasy-api/openapi/sequencedmap"
	"go.uber.org/zap"
)

// Header starts every generated file.
const Header = "// Code generated by oas2types. DO NOT EDIT. Regenerate instead."

// Options configures one run. OutputPath is explicit per call; an empty path
// only renders.
type Options struct {
	// Service names the run in logs and errors.
	Service   string
	Filter    pathfilter.Predicate
	Normalize normalize.Options
	// Denylist drops schemas by source name and again by canonical name.
	// Generated code still refers to a denied type by name, so the target
	// package must declare it by hand.
	Denylist prune.Denylist
	// Allow, when set, keeps only the schema names it accepts after renaming.
	Allow      func(name string) bool
	Page       rewrite.PageRule
	Package    string
	OutputPath string
	DryRun     bool
	Force      bool
}

// DefaultOptions returns options with the project-wide conventions.
func DefaultOptions() Options {
	return Options{
		Filter:    pathfilter.PassThrough,
		Normalize: normalize.DefaultOptions(),
		Denylist:  prune.DefaultDenylist(),
		Page:      rewrite.DefaultPageRule(),
		Package:   "types",
	}
}

// Result describes one generated file.
type Result struct {
	Service string
	// Names are the generated top-level type names, sorted.
	Names   []string
	Source  []byte
	Path    string
	Planned []emitter.PlannedFile
}

// Generator runs the pipeline against an emission engine.
type Generator struct {
	emitter emitter.Emitter
	log     *zap.Logger
}

func New(e emitter.Emitter, log *zap.Logger) *Generator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Generator{emitter: e, log: log}
}

// GenerateTypes derives the type set of one service from c and renders it.
// c is never modified. Types on the denylist are referenced but not declared;
// they must be provided in the same package.
func (g *Generator) GenerateTypes(ctx context.Context, c *contract.Contract, opts Options) (*Result, error) {
	log := g.log.With(zap.String("service", opts.Service))

	work := c.Clone()

	paths := pathfilter.Filter(work.Paths, opts.Filter)
	log.Debug("filtered paths", zap.Int("kept", paths.Len()), zap.Int("total", work.Paths.Len()))

	scoped := *work
	scoped.Paths = paths
	promos, err := normalize.Promote(&scoped, opts.Normalize)
	if err != nil {
		return nil, err
	}
	pruned, err := prune.Prune(work, paths, promos, opts.Denylist)
	if err != nil {
		return nil, err
	}
	log.Debug("pruned components",
		zap.Int("promotions", len(promos)),
		zap.Int("schemas", pruned.Components.Schemas.Len()),
		zap.Int("responses", pruned.Components.Responses.Len()),
		zap.Int("parameters", pruned.Components.Parameters.Len()))

	renamed, err := Rename(pruned)
	if err != nil {
		return nil, err
	}
	renamed = allow(renamed, func(name string) bool { return !opts.Denylist.Denies(name) })
	if opts.Allow != nil {
		renamed = allow(renamed, opts.Allow)
	}
	ordered := order.Contract(renamed)

	units, err := g.emitter.Emit(ctx, emitter.Input{
		Version: c.Version(),
		Package: opts.Package,
		Schemas: ordered.Components.Schemas,
	})
	if err != nil {
		return nil, err
	}
	f, err := merge(units)
	if err != nil {
		return nil, err
	}

	page := opts.Page
	if page.TypeName == "" {
		page = rewrite.DefaultPageRule()
	}
	f, pages, err := page.Apply(f)
	if err != nil {
		return nil, err
	}
	f, err = order.File(f)
	if err != nil {
		return nil, err
	}
	src, err := f.Render(Header)
	if err != nil {
		return nil, err
	}

	res := &Result{Service: opts.Service, Names: f.Names(), Source: src, Path: opts.OutputPath}
	if opts.OutputPath != "" {
		dir, base := filepath.Split(opts.OutputPath)
		files := map[string][]byte{base: src}
		res.Planned = emitter.Plan(files)
		if !opts.DryRun {
			if err := emitter.WriteFiles(dir, files, opts.Force, IsGenerated); err != nil {
				return nil, errs.Wrap(errs.IO, opts.OutputPath, err, "write generated types")
			}
		}
	}
	log.Info("generated types",
		zap.Int("types", len(res.Names)),
		zap.Int("pages", pages),
		zap.String("output", opts.OutputPath),
		zap.Bool("dry_run", opts.DryRun))
	return res, nil
}

// typeName is the declared name of source schema name.
func (g *Generator) typeName(name string) string {
	canonical := normalize.Capitalize(name)
	if n, ok := g.emitter.(emitter.Namer); ok {
		return n.TypeName(canonical)
	}
	return canonical
}

// IsGenerated reports whether existing file content carries Header.
func IsGenerated(existing []byte) bool {
	return bytes.HasPrefix(existing, []byte(Header))
}

// Rename returns a copy of c whose schema names start with an upper-case
// letter, with every schema reference rewritten to match. Two names that
// rename to the same identifier are a NamingCollision.
func Rename(c *contract.Contract) (*contract.Contract, error) {
	out := c.Clone()
	renames := map[string]string{}
	owners := map[string]string{}
	schemas := sequencedmap.New[string, *contract.Schema]()
	for name, s := range out.Components.Schemas.All() {
		to := normalize.Capitalize(name)
		if prev, ok := owners[to]; ok {
			return nil, errs.New(errs.NamingCollision, to, "schemas %q and %q share a canonical name", prev, name)
		}
		owners[to] = name
		if to != name {
			renames[refs.SchemaRef(name)] = refs.SchemaRef(to)
		}
		schemas.Set(to, s)
	}
	out.Components.Schemas = schemas
	if len(renames) > 0 {
		out.EachSchema(func(s *contract.Schema) {
			if to, ok := renames[s.Ref]; ok {
				s.Ref = to
			}
		})
	}
	return out, nil
}

func allow(c *contract.Contract, keep func(string) bool) *contract.Contract {
	out := *c
	schemas := sequencedmap.New[string, *contract.Schema]()
	for name, s := range c.Components.Schemas.All() {
		if keep(name) {
			schemas.Set(name, s)
		}
	}
	out.Components.Schemas = schemas
	return &out
}

// merge parses every unit and folds them into the first.
func merge(units []emitter.Unit) (gosrc.File, error) {
	if len(units) == 0 {
		return gosrc.File{}, errs.New(errs.Emit, "", "emitter returned no source")
	}
	f, err := gosrc.Parse(units[0].Source)
	if err != nil {
		return gosrc.File{}, err
	}
	for _, u := range units[1:] {
		next, err := gosrc.Parse(u.Source)
		if err != nil {
			return gosrc.File{}, err
		}
		for _, imp := range next.Imports() {
			f = f.WithImport(imp)
		}
		decls := f.Decls()
		for _, d := range next.Decls() {
			if slices.ContainsFunc(decls, func(e gosrc.Decl) bool { return e.Name() == d.Name() }) {
				return gosrc.File{}, errs.New(errs.NamingCollision, d.Name(), "declared by more than one emitted unit (%s)", u.Name)
			}
			decls = append(decls, d)
		}
		f = f.WithDecls(decls)
	}
	return f, nil
}
