package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"flarec/internal/context"
	"flarec/internal/diagnostics"
	"flarec/internal/frontend/ast"
	"flarec/internal/frontend/parser"
	"flarec/internal/phase"
	"flarec/internal/semantics/collector"
	"flarec/internal/semantics/resolver"
	"flarec/internal/semantics/typechecker"
	"flarec/internal/source"
)

// Pipeline drives one multi-module compilation. Lexing and parsing run
// in parallel, one goroutine per discovered module; the semantic phases
// run after a barrier so every module is collected before any module
// resolves imported names, keeping cross-module resolution independent
// of build order.
type Pipeline struct {
	ctx       *context.CompilerContext
	scheduled sync.Map // module path -> struct{}
	wg        sync.WaitGroup
}

func New(ctx *context.CompilerContext) *Pipeline {
	return &Pipeline{ctx: ctx}
}

// Run compiles the entry file and everything it transitively imports
func (p *Pipeline) Run(entryFile string) {
	p.schedule(entryFile)
	p.wg.Wait()

	// barrier reached: every module is parsed and registered
	for _, module := range p.ctx.Modules() {
		if p.skipSemantics(module) {
			p.ctx.Reports.Add(diagnostics.NewInfo(
				fmt.Sprintf("module '%s' was not analyzed because it failed to parse", module.Path)))
			continue
		}
		collector.CollectSymbols(p.ctx, module)
		p.advance(module, phase.Collected)
	}

	p.reportImportCycle()

	// the registration order above depends on goroutine scheduling;
	// resolve and check dependency-first instead, so inferred types flow
	// to importers and inference variables get the same identifiers on
	// every run over the same sources
	modules := p.semanticOrder()

	for _, module := range modules {
		if module.Phase != phase.Collected {
			continue
		}
		resolver.ResolveModule(p.ctx, module)
		p.advance(module, phase.Resolved)
	}

	for _, module := range modules {
		if module.Phase != phase.Resolved {
			continue
		}
		typechecker.CheckModule(p.ctx, module)
		p.advance(module, phase.TypeChecked)
	}
}

// semanticOrder returns the build's modules in a deterministic
// dependency-first order: a module comes after everything it imports,
// and ties break on module path. Cycle members fall back to path order.
func (p *Pipeline) semanticOrder() []*context.Module {
	modules := p.ctx.Modules()
	sort.Slice(modules, func(i, j int) bool { return modules[i].Path < modules[j].Path })

	seen := make(map[string]bool, len(modules))
	ordered := make([]*context.Module, 0, len(modules))
	var visit func(path string)
	visit = func(path string) {
		if seen[path] {
			return
		}
		seen[path] = true
		for _, dep := range p.ctx.Dependencies(path) {
			visit(dep)
		}
		if module, ok := p.ctx.GetModule(path); ok {
			ordered = append(ordered, module)
		}
	}
	for _, module := range modules {
		visit(module.Path)
	}
	return ordered
}

// schedule queues a module file for parallel parsing, once
func (p *Pipeline) schedule(filePath string) {
	modulePath := p.ctx.ModulePath(filePath)
	if _, loaded := p.scheduled.LoadOrStore(modulePath, struct{}{}); loaded {
		return
	}
	p.wg.Add(1)
	go p.parseModule(filePath, modulePath)
}

func (p *Pipeline) parseModule(filePath, modulePath string) {
	defer p.wg.Done()

	src, err := os.ReadFile(filePath)
	if err != nil {
		p.ctx.Reports.Add(diagnostics.NewError(fmt.Sprintf("cannot read '%s': %v", filePath, err)).
			WithCode(diagnostics.ErrModuleNotFound))
		return
	}

	p.ctx.Reports.AddSourceContent(filePath, string(src))

	module := &context.Module{
		Path:     modulePath,
		FilePath: filePath,
		Source:   string(src),
	}
	p.advance(module, phase.Lexed)
	module.AST = parser.NewParser(filePath, string(src), p.ctx.Reports, p.ctx.Config.Debug).Parse()
	p.advance(module, phase.Parsed)
	p.ctx.AddModule(module)

	// discovered imports fan out into their own parse goroutines
	for _, node := range module.AST.Nodes {
		imp, ok := node.(*ast.ImportStmt)
		if !ok {
			continue
		}
		importFile := p.fileFor(imp.Path.Value)
		if _, statErr := os.Stat(importFile); statErr == nil {
			p.schedule(importFile)
		}
		// a missing file is reported as module-not-found by the resolver
	}
}

// fileFor maps a logical module path to its source file under the root
func (p *Pipeline) fileFor(modulePath string) string {
	rel := strings.ReplaceAll(modulePath, ".", string(filepath.Separator))
	return filepath.Join(p.ctx.Config.RootDir, rel+p.ctx.Config.Extension)
}

// skipSemantics reports whether a module's parse output is too broken
// to analyze: resolving a file that produced no statements under errors
// would only manufacture noise.
func (p *Pipeline) skipSemantics(module *context.Module) bool {
	if module.AST == nil {
		return true
	}
	return len(module.AST.Nodes) == 0 && p.ctx.Reports.HasErrors()
}

func (p *Pipeline) advance(module *context.Module, next phase.ModulePhase) {
	if err := module.Advance(next); err != nil {
		// a phase-order violation is a driver bug, not a user error
		panic(err)
	}
}

// reportImportCycle raises one resolution error naming the cycle, when
// the dependency graph has one.
func (p *Pipeline) reportImportCycle() {
	cycle := p.ctx.DetectCycle()
	if len(cycle) < 2 {
		return
	}

	diag := diagnostics.NewError(fmt.Sprintf("import cycle: %s", strings.Join(cycle, " -> "))).
		WithCode(diagnostics.ErrCyclicImport).
		WithHelp("break the cycle by moving shared declarations into a separate module")
	if loc := p.importLocation(cycle[0], cycle[1]); loc != nil {
		diag.WithPrimaryLabel(loc, "part of the cycle")
	}
	p.ctx.Reports.Add(diag)
}

// importLocation finds where importer imports imported, for the cycle label
func (p *Pipeline) importLocation(importer, imported string) *source.Location {
	module, ok := p.ctx.GetModule(importer)
	if !ok || module.AST == nil {
		return nil
	}
	for _, node := range module.AST.Nodes {
		if imp, ok := node.(*ast.ImportStmt); ok && imp.Path.Value == imported {
			return imp.Loc()
		}
	}
	return nil
}
