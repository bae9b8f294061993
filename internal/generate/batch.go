package generate

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"slices"

	"github.com/mark3labs/oas2types/internal/contract"
	"github.com/mark3labs/oas2types/internal/emitter"
	"github.com/mark3labs/oas2types/internal/errs"
	"github.com/mark3labs/oas2types/internal/pathfilter"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// ManifestFile is the default name of the export manifest.
const ManifestFile = "exports.yaml"

// Service is one configured generation target.
type Service struct {
	Name    string
	Include []string
	Exclude []string
	// Types restricts output to these schema names; empty keeps everything.
	Types   []string
	Package string
	// Output is the file to write; defaults to <out>/<name>/types.go.
	Output string
}

// BatchOptions configures Batch. Base supplies the options shared by every
// service; its Filter, Allow, Service, Package and OutputPath are replaced
// per service.
type BatchOptions struct {
	Base        Options
	Prefix      string
	OutDir      string
	Concurrency int
	// Manifest is the manifest path; empty means <OutDir>/exports.yaml.
	Manifest string
}

// Manifest records what each service exported.
type Manifest struct {
	Version  string          `yaml:"version"`
	Services []ServiceExport `yaml:"services"`
	// Unused lists source schemas no service generated.
	Unused []string `yaml:"unused,omitempty"`
}

type ServiceExport struct {
	Name   string   `yaml:"name"`
	Output string   `yaml:"output"`
	Types  []string `yaml:"types,omitempty"`
	Error  string   `yaml:"error,omitempty"`
}

// Batch generates every service from c. Services run concurrently up to
// Concurrency; a failing service does not stop the others. The returned error
// joins the per-service failures.
func (g *Generator) Batch(ctx context.Context, c *contract.Contract, services []Service, opts BatchOptions) (*Manifest, error) {
	prefix := opts.Prefix
	if prefix == "" {
		prefix = pathfilter.DefaultPrefix
	}
	results := make([]*Result, len(services))
	failures := make([]error, len(services))

	var eg errgroup.Group
	if opts.Concurrency > 0 {
		eg.SetLimit(opts.Concurrency)
	}
	for i, svc := range services {
		eg.Go(func() error {
			run := opts.Base
			run.Service = svc.Name
			run.Filter = pathfilter.ServiceNames(prefix, append([]string{svc.Name}, svc.Include...), svc.Exclude)
			run.Package = svc.Package
			if run.Package == "" {
				run.Package = path.Base(svc.Name)
			}
			run.OutputPath = svc.Output
			if run.OutputPath == "" {
				run.OutputPath = filepath.Join(opts.OutDir, filepath.FromSlash(svc.Name), "types.go")
			}
			run.Allow = nil
			if len(svc.Types) > 0 {
				types := slices.Clone(svc.Types)
				run.Allow = func(name string) bool { return slices.Contains(types, name) }
			}

			res, err := g.GenerateTypes(ctx, c, run)
			if err != nil {
				failures[i] = fmt.Errorf("service %s: %w", svc.Name, err)
				g.log.Error("service generation failed", zap.String("service", svc.Name), zap.Error(err))
				return nil
			}
			results[i] = res
			return nil
		})
	}
	_ = eg.Wait()

	m := &Manifest{Version: c.Version()}
	generated := map[string]bool{}
	for i, svc := range services {
		entry := ServiceExport{Name: svc.Name}
		if res := results[i]; res != nil {
			entry.Output = filepath.ToSlash(res.Path)
			entry.Types = res.Names
			for _, n := range res.Names {
				generated[n] = true
			}
		} else {
			entry.Error = failures[i].Error()
		}
		m.Services = append(m.Services, entry)
	}
	for name := range c.Components.Schemas.Keys() {
		if !generated[g.typeName(name)] {
			m.Unused = append(m.Unused, name)
		}
	}
	slices.Sort(m.Unused)

	if !opts.Base.DryRun {
		if err := writeManifest(opts, m); err != nil {
			failures = append(failures, err)
		}
	}
	return m, errors.Join(failures...)
}

func writeManifest(opts BatchOptions, m *Manifest) error {
	target := opts.Manifest
	if target == "" {
		target = filepath.Join(opts.OutDir, ManifestFile)
	}
	data, err := yaml.Marshal(m)
	if err != nil {
		return errs.Wrap(errs.IO, target, err, "encode manifest")
	}
	dir, base := filepath.Split(target)
	if err := emitter.WriteFiles(dir, map[string][]byte{base: data}, true, nil); err != nil {
		return errs.Wrap(errs.IO, target, err, "write manifest")
	}
	return nil
}
