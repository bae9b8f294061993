package emitter

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPlan_Deterministic(t *testing.T) {
	t.Parallel()
	files := map[string][]byte{
		filepath.Join("b", "types.go"): []byte("package b\n"),
		"a.go":                         []byte("package a\n\n"),
	}
	plan := Plan(files)
	if len(plan) != 2 {
		t.Fatalf("plan size: %d", len(plan))
	}
	if plan[0].RelPath != "a.go" || plan[1].RelPath != "b/types.go" {
		t.Fatalf("unexpected order: %+v", plan)
	}
	if plan[0].Size != 11 || plan[1].Size != 10 {
		t.Fatalf("unexpected sizes: %+v", plan)
	}
}

func TestWriteFiles(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	files := map[string][]byte{filepath.Join("svc", "types.go"): []byte("// generated\npackage svc\n")}
	if err := WriteFiles(dir, files, false, nil); err != nil {
		t.Fatalf("first write: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "svc", "types.go"))
	if err != nil || !strings.HasPrefix(string(data), "// generated") {
		t.Fatalf("read back: %q %v", data, err)
	}

	generated := func(b []byte) bool { return strings.HasPrefix(string(b), "// generated") }
	if err := WriteFiles(dir, files, false, generated); err != nil {
		t.Fatalf("regenerate: %v", err)
	}
	if err := WriteFiles(dir, files, false, nil); err == nil {
		t.Fatalf("expected refusal without replaceable")
	}

	hand := filepath.Join(dir, "svc", "types.go")
	if err := os.WriteFile(hand, []byte("package svc // hand written\n"), 0o600); err != nil {
		t.Fatalf("prewrite: %v", err)
	}
	if err := WriteFiles(dir, files, false, generated); err == nil {
		t.Fatalf("expected refusal to overwrite a hand-written file")
	}
	if err := WriteFiles(dir, files, true, nil); err != nil {
		t.Fatalf("force: %v", err)
	}

	entries, _ := os.ReadDir(filepath.Join(dir, "svc"))
	if len(entries) != 1 {
		t.Fatalf("temp files left behind: %v", entries)
	}
}

func TestFunc(t *testing.T) {
	t.Parallel()
	var e Emitter = Func(func(_ context.Context, in Input) ([]Unit, error) {
		return []Unit{{Name: in.Package + ".go"}}, nil
	})
	units, err := e.Emit(context.Background(), Input{Package: "x"})
	if err != nil || len(units) != 1 || units[0].Name != "x.go" {
		t.Fatalf("unexpected: %v %v", units, err)
	}
}
