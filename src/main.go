// main.go is the compiler driver: parse arguments, run the pipeline over
// every named source file, and report the first error raised at any pass
// boundary. Each source file compiles to its own module; modules are
// bound together by extern binding.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/hhramberg/l0c/src/ast"
	codegenllvm "github.com/hhramberg/l0c/src/codegen/llvm"
	"github.com/hhramberg/l0c/src/frontend"
	"github.com/hhramberg/l0c/src/sema"
	"github.com/hhramberg/l0c/src/util"
)

// moduleName derives a module's name from its source file's stem. The
// empty path (source read from stdin) names itself "stdin".
func moduleName(path string) string {
	if path == "" {
		return "stdin"
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// outputPath returns the .ll path a source lowers to: alongside the
// source unless -o names an output directory.
func outputPath(opt util.Options, source string) string {
	name := moduleName(source) + ".ll"
	if opt.Out != "" {
		return filepath.Join(opt.Out, name)
	}
	if source == "" {
		return name
	}
	return filepath.Join(filepath.Dir(source), name)
}

// runTokenStream implements the -ts driver flag: lex source and print its
// tokens, skipping parsing entirely.
func runTokenStream(source string) error {
	src, err := util.ReadSource(source)
	if err != nil {
		return fmt.Errorf("could not read source code: %w", err)
	}
	toks, err := frontend.TokenStream(src)
	if err != nil {
		return fmt.Errorf("syntax error: %w", err)
	}
	w := util.NewWriter()
	defer w.Close()
	for _, t := range toks {
		w.Write("%s\n", t.String())
	}
	return nil
}

// parseModule runs passes 1-4 for one source file: lex, parse, top-level
// analysis, global-scope construction. These are independent per module,
// so parseModule is safe to call concurrently.
func parseModule(source string) (*ast.Module, error) {
	src, err := util.ReadSource(source)
	if err != nil {
		return nil, fmt.Errorf("could not read source code: %w", err)
	}
	m, err := frontend.Parse(src, moduleName(source), source)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	if err := sema.TopLevel(m); err != nil {
		return nil, fmt.Errorf("top-level analysis error: %w", err)
	}
	if err := sema.GlobalScope(m); err != nil {
		return nil, fmt.Errorf("scope error: %w", err)
	}
	return m, nil
}

// checkAndGenerate runs passes 6-10 for one module: resolver, type
// checker, return-statement pass, reference pass, LLVM generation, and
// writes the resulting .ll (and, with -obj, a native object file)
// alongside the source. Safe to call concurrently once pass 5 has bound
// every module's externs.
func checkAndGenerate(opt util.Options, m *ast.Module) error {
	if err := sema.Resolve(m); err != nil {
		return fmt.Errorf("%s: semantic error: %w", m.Name, err)
	}
	if err := sema.TypeCheck(m); err != nil {
		return fmt.Errorf("%s: semantic error: %w", m.Name, err)
	}
	if err := sema.CheckReturns(m); err != nil {
		return fmt.Errorf("%s: semantic error: %w", m.Name, err)
	}
	if err := sema.CheckReferences(m); err != nil {
		return fmt.Errorf("%s: semantic error: %w", m.Name, err)
	}

	ir, err := codegenllvm.Generate(opt, m)
	if err != nil {
		return fmt.Errorf("%s: generator error: %w", m.Name, err)
	}
	m.IR = &ir

	if opt.Verbose {
		w := util.NewWriter()
		w.Write("module %s:\n%s\n", m.Name, ir)
		w.Close()
	}

	llPath := outputPath(opt, m.SourcePath)
	if err := os.WriteFile(llPath, []byte(ir), 0644); err != nil {
		return fmt.Errorf("%s: %w", m.Name, err)
	}
	if opt.EmitObject {
		objPath := strings.TrimSuffix(llPath, ".ll") + ".o"
		if err := codegenllvm.EmitObject(llPath, objPath); err != nil {
			return fmt.Errorf("%s: object emission error: %w", m.Name, err)
		}
	}
	return nil
}

// errLister is the subset of *util.perror's methods firstError needs;
// named here since the concrete type returned by util.NewPerror is
// unexported.
type errLister interface {
	Len() int
	Errors() <-chan error
}

// firstError drains pe's buffered errors, printing every one but the
// first, and returns the first for the exit-code
// decision.
func firstError(pe errLister) error {
	var first error
	for err := range pe.Errors() {
		if first == nil {
			first = err
			continue
		}
		fmt.Println(err)
	}
	return first
}

// parallelDo runs fn(i) for every index in [0, n) using at most opt.Threads
// goroutines at a time. Modules within a pipeline phase are independent.
func parallelDo(opt util.Options, n int, fn func(i int)) {
	sem := make(chan struct{}, opt.Threads)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			fn(i)
		}(i)
	}
	wg.Wait()
}

// run drives the full pipeline over every source named in opt.Sources:
// passes 1-4 run per module, pass 5 (extern binding) is a hard barrier
// across every module, then passes 6-10 run per module again. No pass
// begins for any module until the prior phase has completed for every
// module.
func run(opt util.Options) error {
	if opt.TokenStream {
		for _, source := range opt.Sources {
			if err := runTokenStream(source); err != nil {
				return err
			}
		}
		return nil
	}

	modules := make([]*ast.Module, len(opt.Sources))
	pe := util.NewPerror(len(opt.Sources))
	defer pe.Stop()

	parallelDo(opt, len(opt.Sources), func(i int) {
		m, err := parseModule(opt.Sources[i])
		if err != nil {
			pe.Append(err)
			return
		}
		modules[i] = m
	})
	if pe.Len() > 0 {
		return firstError(pe)
	}

	if err := sema.BindExternals(modules); err != nil {
		return fmt.Errorf("scope error: %w", err)
	}

	parallelDo(opt, len(modules), func(i int) {
		if err := checkAndGenerate(opt, modules[i]); err != nil {
			pe.Append(err)
		}
	})
	if pe.Len() > 0 {
		return firstError(pe)
	}
	return nil
}

func main() {
	opt, err := util.ParseArgs()
	if err != nil {
		fmt.Printf("Command line argument error: %s\n", err)
		os.Exit(-1)
	}
	if len(opt.Sources) == 0 {
		opt.Sources = []string{""}
	}

	var wg sync.WaitGroup
	util.ListenWrite(opt.Threads, nil, &wg)
	defer util.Close()

	if err := run(opt); err != nil {
		fmt.Printf("Error: %s\n", err)
		wg.Wait()
		os.Exit(-1)
	}
	wg.Wait()
}
