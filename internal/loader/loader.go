// Package loader resolves and links Hydro textual source files into a
// single runnable *hydro.Module tree, grounded on
// `internal/build/linker.go`'s ImportResolver: relative `using` imports are
// resolved against the importing file's directory, a visiting set catches
// import cycles, and a topological sort fixes the order modules are
// attached to their parents.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"hydro/internal/frontend"
	"hydro/internal/hydro"
)

// Loader loads and links .h2o source files, deduplicating concurrent loads
// of the same path via singleflight and caching the result for subsequent
// requests, the way a long-lived debug server would when multiple requests
// reference the same module.
type Loader struct {
	searchPath []string

	mu    sync.RWMutex
	cache map[string]*hydro.Module
	group singleflight.Group
}

func New(searchPath ...string) *Loader {
	if len(searchPath) == 0 {
		searchPath = []string{"."}
	}
	return &Loader{
		searchPath: searchPath,
		cache:      make(map[string]*hydro.Module),
	}
}

// Load reads, parses, and links entryPath together with every module it
// transitively `using`s, returning the fully linked entry module.
func (l *Loader) Load(entryPath string) (*hydro.Module, error) {
	visiting := make(map[string]bool)
	return l.resolve(entryPath, visiting)
}

func (l *Loader) resolve(path string, visiting map[string]bool) (*hydro.Module, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("loader: resolving path %q: %w", path, err)
	}

	l.mu.RLock()
	if cached, ok := l.cache[abs]; ok {
		l.mu.RUnlock()
		return cached, nil
	}
	l.mu.RUnlock()

	if visiting[abs] {
		return nil, fmt.Errorf("loader: circular dependency detected at %s", abs)
	}
	visiting[abs] = true
	defer delete(visiting, abs)

	result, err, _ := l.group.Do(abs, func() (interface{}, error) {
		return l.loadAndParse(abs)
	})
	if err != nil {
		return nil, err
	}
	mod := result.(*hydro.Module)

	for _, name := range mod.Imports {
		depPath, err := l.findDependency(name, filepath.Dir(abs))
		if err != nil {
			return nil, fmt.Errorf("loader: module %q imports %q: %w", mod.Name, name, err)
		}
		dep, err := l.resolve(depPath, visiting)
		if err != nil {
			return nil, err
		}
		mod.Modules[name] = dep
	}

	l.mu.Lock()
	l.cache[abs] = mod
	l.mu.Unlock()

	return mod, nil
}

func (l *Loader) loadAndParse(abs string) (*hydro.Module, error) {
	source, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("loader: reading %s: %w", abs, err)
	}
	mod, errs := frontend.Parse(string(source))
	if len(errs) > 0 {
		return nil, fmt.Errorf("loader: parsing %s: %s", abs, strings.Join(errs, "; "))
	}
	return mod, nil
}

// findDependency resolves a `using NAME` declaration to a file path: first
// relative to the importing file's own directory, then against each
// configured search path entry, trying both NAME and NAME.h2o.
func (l *Loader) findDependency(name, importerDir string) (string, error) {
	candidates := []string{
		filepath.Join(importerDir, name),
		filepath.Join(importerDir, name+".h2o"),
	}
	for _, dir := range l.searchPath {
		candidates = append(candidates, filepath.Join(dir, name), filepath.Join(dir, name+".h2o"))
	}
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c, nil
		}
	}
	return "", fmt.Errorf("no such module file (tried %s)", strings.Join(candidates, ", "))
}

// ResolveOrder returns every module path currently cached, in the order
// each would need to be linked for an offline build (dependencies before
// dependents), used by the build pipeline to report what it bundled.
func (l *Loader) ResolveOrder(entry *hydro.Module) []string {
	var order []string
	seen := make(map[string]bool)
	var visit func(m *hydro.Module)
	visit = func(m *hydro.Module) {
		if seen[m.Name] {
			return
		}
		seen[m.Name] = true
		for _, name := range m.Imports {
			if dep, ok := m.Modules[name]; ok {
				visit(dep)
			}
		}
		order = append(order, m.Name)
	}
	visit(entry)
	return order
}
