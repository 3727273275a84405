package loader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeModule(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name+".h2o")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

func TestLoadResolvesRelativeImport(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "shapes", `
module shapes {
	layout point {
		x: i32,
		y: i32
	}
}
`)
	entry := writeModule(t, dir, "main", `
module main {
	using shapes

	function main() {
		Return
	}
}
`)

	l := New(dir)
	mod, err := l.Load(entry)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	dep, ok := mod.Modules["shapes"]
	if !ok {
		t.Fatal("expected shapes to be linked into main's Modules")
	}
	if _, ok := dep.Layouts["point"]; !ok {
		t.Fatal("expected the linked shapes module to carry its point layout")
	}
}

func TestLoadDetectsCircularDependency(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "a", `
module a {
	using b
	function main() { Return }
}
`)
	writeModule(t, dir, "b", `
module b {
	using a
	function main() { Return }
}
`)

	l := New(dir)
	_, err := l.Load(filepath.Join(dir, "a.h2o"))
	if err == nil {
		t.Fatal("expected a circular dependency error")
	}
	if !strings.Contains(err.Error(), "circular dependency") {
		t.Fatalf("expected a circular dependency message, got %v", err)
	}
}

func TestLoadMissingDependencyIsAnError(t *testing.T) {
	dir := t.TempDir()
	entry := writeModule(t, dir, "main", `
module main {
	using nope
	function main() { Return }
}
`)

	l := New(dir)
	if _, err := l.Load(entry); err == nil {
		t.Fatal("expected an error for an unresolvable import")
	}
}

func TestLoadCachesByAbsolutePath(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "shapes", `
module shapes {
	layout point { x: i32 }
}
`)
	entry := writeModule(t, dir, "main", `
module main {
	using shapes
	function main() { Return }
}
`)

	l := New(dir)
	first, err := l.Load(entry)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := l.Load(entry)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Fatal("expected the second Load of the same path to return the cached module")
	}
}

func TestResolveOrderPutsDependenciesFirst(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "shapes", `
module shapes {
	layout point { x: i32 }
}
`)
	entry := writeModule(t, dir, "main", `
module main {
	using shapes
	function main() { Return }
}
`)

	l := New(dir)
	mod, err := l.Load(entry)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	order := l.ResolveOrder(mod)
	shapesIdx, mainIdx := -1, -1
	for i, name := range order {
		switch name {
		case "shapes":
			shapesIdx = i
		case "main":
			mainIdx = i
		}
	}
	if shapesIdx == -1 || mainIdx == -1 {
		t.Fatalf("expected both modules in resolve order, got %v", order)
	}
	if shapesIdx > mainIdx {
		t.Fatalf("expected shapes before main in resolve order, got %v", order)
	}
}
