package context

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"flarec/internal/diagnostics"
	"flarec/internal/frontend/ast"
	"flarec/internal/phase"
	"flarec/internal/semantics/symbols"
	"flarec/internal/semantics/table"
	"flarec/internal/types"
)

// Config carries the per-run compiler configuration
type Config struct {
	ProjectName string
	RootDir     string
	Extension   string // source file extension, ".flr"
	Debug       bool
}

// Module is one compilation unit and everything the pipeline derives
// from it. Fields fill in as the module advances through its phases.
type Module struct {
	Path     string // logical dotted path (utils.math)
	FilePath string
	Source   string
	AST      *ast.Module
	Phase    phase.ModulePhase

	// Scope is the module-level symbol table, populated by the collector
	Scope *table.SymbolTable

	// Exports records the settled visibility of every top-level symbol
	Exports map[string]bool

	// Bindings maps every resolved identifier occurrence to its symbol
	Bindings map[ast.Expression]*symbols.Symbol

	// Types is the typing table produced by the checker
	Types map[ast.Expression]types.SemType
}

// Advance moves the module to the next phase. Transitions are strictly
// sequential; skipping a phase is a driver bug.
func (m *Module) Advance(next phase.ModulePhase) error {
	if !m.Phase.CanTransitionTo(next) {
		return fmt.Errorf("module %s: cannot advance from %s to %s", m.Path, m.Phase, next)
	}
	m.Phase = next
	return nil
}

// CompilerContext owns the state shared by all phases of one run: the
// module registry, the universe scope, the dependency graph, and the
// diagnostics bag.
type CompilerContext struct {
	Config  Config
	Reports *diagnostics.DiagnosticBag

	// Universe holds the builtins every module scope hangs off
	Universe *table.SymbolTable

	// TypeVars allocates inference variables for this run, so rendered
	// variable names are identical across runs over the same input
	TypeVars *types.VarPool

	mu      sync.RWMutex
	modules map[string]*Module
	order   []string
	deps    map[string][]string // importer path -> imported paths
}

func New(cfg Config) *CompilerContext {
	if cfg.Extension == "" {
		cfg.Extension = ".flr"
	}
	return &CompilerContext{
		Config:   cfg,
		Reports:  diagnostics.NewDiagnosticBag(),
		Universe: buildUniverse(),
		TypeVars: types.NewVarPool(),
		modules:  make(map[string]*Module),
		deps:     make(map[string][]string),
	}
}

// buildUniverse declares the builtin functions. Primitive type names
// are not symbols; annotations resolve them structurally.
func buildUniverse() *table.SymbolTable {
	universe := table.NewSymbolTable(nil, table.UniverseScope)

	builtins := []*symbols.Symbol{
		// print accepts anything and checks nothing
		symbols.New("print", symbols.BuiltinSymbol, &types.FuncType{
			Return:  types.TypeNone,
			Dynamic: true,
		}, nil),
		symbols.New("len", symbols.BuiltinSymbol, &types.FuncType{
			Params: []types.SemType{types.NewList(types.TypeUnknown)},
			Return: types.TypeInt,
		}, nil),
		symbols.New("range", symbols.BuiltinSymbol, &types.FuncType{
			Params: []types.SemType{types.TypeInt},
			Return: types.NewList(types.TypeInt),
		}, nil),
	}
	for _, sym := range builtins {
		sym.Exported = true
		universe.Declare(sym)
	}
	return universe
}

// AddModule registers a compilation unit under its logical path
func (c *CompilerContext) AddModule(module *Module) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.modules[module.Path]; !exists {
		c.order = append(c.order, module.Path)
	}
	c.modules[module.Path] = module
}

// GetModule looks a module up by logical path
func (c *CompilerContext) GetModule(path string) (*Module, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	module, ok := c.modules[path]
	return module, ok
}

// Modules returns all modules in registration order
func (c *CompilerContext) Modules() []*Module {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]*Module, 0, len(c.order))
	for _, path := range c.order {
		result = append(result, c.modules[path])
	}
	return result
}

// ModulePath converts a file path under the project root to the
// logical dotted module path.
func (c *CompilerContext) ModulePath(filePath string) string {
	rel := filePath
	if c.Config.RootDir != "" {
		if r, err := filepath.Rel(c.Config.RootDir, filePath); err == nil {
			rel = r
		}
	}
	rel = strings.TrimSuffix(rel, c.Config.Extension)
	rel = filepath.ToSlash(rel)
	return strings.ReplaceAll(rel, "/", ".")
}

// AddDependency records that importer imports imported
func (c *CompilerContext) AddDependency(importer, imported string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, existing := range c.deps[importer] {
		if existing == imported {
			return
		}
	}
	c.deps[importer] = append(c.deps[importer], imported)
}

// Dependencies returns the module paths the given module imports, in
// the order its import statements were collected
func (c *CompilerContext) Dependencies(importer string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	deps := make([]string, len(c.deps[importer]))
	copy(deps, c.deps[importer])
	return deps
}

// DetectCycle searches the dependency graph for an import cycle and
// returns one as a path of module names (first repeated), or nil.
func (c *CompilerContext) DetectCycle() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[string]int)
	var stack []string
	var cycle []string

	var visit func(path string) bool
	visit = func(path string) bool {
		state[path] = visiting
		stack = append(stack, path)
		for _, dep := range c.deps[path] {
			switch state[dep] {
			case visiting:
				// unwind the stack back to the repeated module
				start := 0
				for i, name := range stack {
					if name == dep {
						start = i
						break
					}
				}
				cycle = append(append(cycle, stack[start:]...), dep)
				return true
			case unvisited:
				if visit(dep) {
					return true
				}
			}
		}
		stack = stack[:len(stack)-1]
		state[path] = done
		return false
	}

	for _, path := range c.order {
		if state[path] == unvisited && visit(path) {
			return cycle
		}
	}
	return nil
}
