// Package cmdemitter delegates emission to an external command. The schema
// set is written as an OpenAPI document to a temporary file whose path
// replaces the {input} placeholder; the command prints Go source on stdout.
package cmdemitter

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"

	"github.com/mark3labs/oas2types/internal/contract"
	"github.com/mark3labs/oas2types/internal/emitter"
	"github.com/mark3labs/oas2types/internal/errs"
	"github.com/mark3labs/oas2types/internal/order"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	InputPlaceholder   = "{input}"
	PackagePlaceholder = "{package}"
)

// Emitter runs Command once per Emit.
type Emitter struct {
	Command []string
	// Dir is the working directory of the command; empty means the current one.
	Dir string
	log *zap.Logger
}

func New(command []string, log *zap.Logger) *Emitter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Emitter{Command: command, log: log}
}

// Emit implements emitter.Emitter.
func (e *Emitter) Emit(ctx context.Context, in emitter.Input) ([]emitter.Unit, error) {
	if len(e.Command) == 0 || strings.TrimSpace(e.Command[0]) == "" {
		return nil, errs.New(errs.Emit, "", "no emitter command configured")
	}

	doc := contract.New()
	doc.OpenAPI = "3.0.3"
	doc.Info = contract.Info{Title: in.Package, Version: in.Version}
	doc.Components.Schemas = in.Schemas
	data, err := yaml.Marshal(order.Node(contract.ToNode(doc)))
	if err != nil {
		return nil, errs.Wrap(errs.Emit, e.Command[0], err, "encode emitter input")
	}

	tmp, err := os.CreateTemp("", "oas2types-*.yaml")
	if err != nil {
		return nil, errs.Wrap(errs.IO, "", err, "create emitter input")
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return nil, errs.Wrap(errs.IO, tmp.Name(), err, "write emitter input")
	}
	if err := tmp.Close(); err != nil {
		return nil, errs.Wrap(errs.IO, tmp.Name(), err, "close emitter input")
	}

	args := make([]string, 0, len(e.Command)-1)
	for _, a := range e.Command[1:] {
		a = strings.ReplaceAll(a, InputPlaceholder, tmp.Name())
		a = strings.ReplaceAll(a, PackagePlaceholder, in.Package)
		args = append(args, a)
	}
	cmd := exec.CommandContext(ctx, e.Command[0], args...)
	cmd.Dir = e.Dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	e.log.Debug("running emitter command", zap.String("command", e.Command[0]), zap.Strings("args", args))
	if err := cmd.Run(); err != nil {
		return nil, errs.Wrap(errs.Emit, e.Command[0], err, "emitter command failed: %s", strings.TrimSpace(stderr.String()))
	}
	if stdout.Len() == 0 {
		return nil, errs.New(errs.Emit, e.Command[0], "emitter command printed no source")
	}
	return []emitter.Unit{{Name: "types.go", Source: stdout.Bytes()}}, nil
}
