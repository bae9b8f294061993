// Package emitter is the boundary between the generation pipeline and the
// engines that turn a schema set into Go source.
package emitter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/mark3labs/oas2types/internal/contract"
)

// Input is the normalized schema set handed to an engine.
type Input struct {
	Version string
	Package string
	Schemas *contract.Schemas
}

// Unit is one named piece of emitted source.
type Unit struct {
	Name   string
	Source []byte
}

// Emitter turns a schema set into source units.
type Emitter interface {
	Emit(ctx context.Context, in Input) ([]Unit, error)
}

// Namer is implemented by engines that derive declared type names from
// schema names. Engines without it declare schemas under their own name.
type Namer interface {
	TypeName(schema string) string
}

// Func adapts a function to Emitter.
type Func func(ctx context.Context, in Input) ([]Unit, error)

func (f Func) Emit(ctx context.Context, in Input) ([]Unit, error) { return f(ctx, in) }

// PlannedFile describes a file about to be written.
type PlannedFile struct {
	RelPath string
	Size    int
	Mode    os.FileMode
}

// Plan lists files in deterministic order.
func Plan(files map[string][]byte) []PlannedFile {
	rels := make([]string, 0, len(files))
	for p := range files {
		rels = append(rels, filepath.ToSlash(p))
	}
	sort.Strings(rels)

	planned := make([]PlannedFile, 0, len(rels))
	for _, rel := range rels {
		planned = append(planned, PlannedFile{RelPath: rel, Size: len(files[filepath.FromSlash(rel)]), Mode: 0o644})
	}
	return planned
}

// WriteFiles writes files under root, each through a temp file and rename.
// Unless force is set, an existing file is replaced only when replaceable
// accepts its current content; a nil replaceable refuses every existing file.
func WriteFiles(root string, files map[string][]byte, force bool, replaceable func(existing []byte) bool) error {
	abs, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolve out dir: %w", err)
	}
	if !force {
		for rel := range files {
			existing, err := os.ReadFile(filepath.Join(abs, rel))
			if err != nil {
				continue
			}
			if replaceable == nil || !replaceable(existing) {
				return fmt.Errorf("emitter: %q exists and was not generated (use --force to overwrite)", filepath.Join(abs, rel))
			}
		}
	}
	for _, pf := range Plan(files) {
		rel := filepath.FromSlash(pf.RelPath)
		p := filepath.Join(abs, rel)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return fmt.Errorf("mkdir: %w", err)
		}
		tmp := p + ".tmp-" + time.Now().Format("20060102150405.000000000")
		if err := os.WriteFile(tmp, files[rel], pf.Mode); err != nil {
			return fmt.Errorf("write temp %s: %w", pf.RelPath, err)
		}
		if err := os.Rename(tmp, p); err != nil {
			_ = os.Remove(tmp)
			return fmt.Errorf("rename %s: %w", pf.RelPath, err)
		}
	}
	return nil
}
