// Package compiler wires the module resolver, type checker, and C
// emitter into the single pipeline the `compile` and `repl` commands
// both drive: parse, resolve, infer, emit.
package compiler

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/evanlang2/evanlang2c/internal/ast"
	"github.com/evanlang2/evanlang2c/internal/codegen"
	"github.com/evanlang2/evanlang2c/internal/config"
	"github.com/evanlang2/evanlang2c/internal/infer"
	"github.com/evanlang2/evanlang2c/internal/module"
	"github.com/evanlang2/evanlang2c/internal/parser"
)

// Driver owns one configuration and the resolver it backs; a fresh
// Driver is cheap, so callers (the repl included) make one per
// compilation rather than reusing state across runs.
type Driver struct {
	cfg *config.Config
}

// New returns a Driver consulting cfg's search paths and stdlib location
// to locate every `open`ed module.
func New(cfg *config.Config) *Driver {
	return &Driver{cfg: cfg}
}

// CompileFile parses rootFile and every module it transitively opens,
// type-checks the whole tree, and returns the generated C translation
// unit as text.
func (d *Driver) CompileFile(rootFile string) (string, error) {
	resolver := module.NewResolver(filepath.Dir(rootFile), d.fileLoader())
	mod, err := resolver.Root(filepath.Base(rootFile))
	if err != nil {
		return "", err
	}

	checker := infer.New(resolver)
	if err := checker.CheckModule(mod); err != nil {
		return "", err
	}

	emitter := codegen.NewEmitter(mod)
	if err := emitter.EmitModule(mod); err != nil {
		return "", err
	}

	var out strings.Builder
	if err := emitter.WriteTo(&out); err != nil {
		return "", err
	}
	return out.String(), nil
}

// CompileSource type-checks and emits a single in-memory module named
// name, backed by src instead of a file on disk; any module it opens
// still resolves through the configured search paths. Used by the repl,
// where each accepted line is its own throwaway root module.
func (d *Driver) CompileSource(name string, src []byte) (string, error) {
	resolver := module.NewResolver(".", d.sourceLoader(name, src))
	mod, err := resolver.Root(name)
	if err != nil {
		return "", err
	}

	checker := infer.New(resolver)
	if err := checker.CheckModule(mod); err != nil {
		return "", err
	}

	emitter := codegen.NewEmitter(mod)
	if err := emitter.EmitModule(mod); err != nil {
		return "", err
	}

	var out strings.Builder
	if err := emitter.WriteTo(&out); err != nil {
		return "", err
	}
	return out.String(), nil
}

func (d *Driver) sourceLoader(rootName string, rootSrc []byte) module.FileLoader {
	disk := d.fileLoader()
	return func(dir, name string) (string, []ast.Toplevel, error) {
		if name == rootName {
			p := parser.New(name, rootSrc)
			prog, errs := p.ParseProgram()
			if len(errs) > 0 {
				return "", nil, fmt.Errorf("%d parse error(s): %w", len(errs), errs[0])
			}
			return name, prog.Toplevels, nil
		}
		return disk(dir, name)
	}
}

// fileLoader returns a module.FileLoader that reads dir/name from disk,
// falling back to each configured search path and finally the stdlib
// path when the file isn't found alongside its importer — the same
// precedence order the teacher's module manifest documents for locating
// a package outside the current directory.
func (d *Driver) fileLoader() module.FileLoader {
	return func(dir, name string) (string, []ast.Toplevel, error) {
		candidates := []string{filepath.Join(dir, name)}
		for _, sp := range d.cfg.SearchPaths {
			candidates = append(candidates, filepath.Join(sp, name))
		}
		if d.cfg.StdlibPath != "" {
			candidates = append(candidates, filepath.Join(d.cfg.StdlibPath, name))
		}

		var lastErr error
		for _, path := range candidates {
			src, err := os.ReadFile(path)
			if err != nil {
				lastErr = err
				continue
			}
			p := parser.New(path, src)
			prog, errs := p.ParseProgram()
			if len(errs) > 0 {
				return "", nil, fmt.Errorf("%s: %d parse error(s): %w", path, len(errs), errs[0])
			}
			return path, prog.Toplevels, nil
		}
		return "", nil, fmt.Errorf("module %q not found in %q or any search path: %w", name, dir, lastErr)
	}
}
