package diagnostics

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"flarec/colors"
)

const (
	compileFailedMsg          = "\nCompilation failed with %d error(s)"
	andWarningMsg             = " and %d warning(s)"
	compileSuccessWithWarning = "\nCompilation succeeded with %d warning(s)\n"
)

// DiagnosticBag collects diagnostics during one compilation run.
//
// Diagnostics are appended in traversal order and never dropped; ordering
// by source position and deduplication happen only at report time, so the
// rendered report is stable regardless of internal traversal order.
type DiagnosticBag struct {
	diagnostics []*Diagnostic
	mu          sync.Mutex
	errorCount  int
	warnCount   int
	sourceCache *SourceCache
}

// NewDiagnosticBag creates a new diagnostic bag for a compilation run
func NewDiagnosticBag() *DiagnosticBag {
	return &DiagnosticBag{
		diagnostics: make([]*Diagnostic, 0),
		sourceCache: NewSourceCache(),
	}
}

// AddSourceContent adds source content for a file path. Safe to call
// from the parallel parse phase.
func (db *DiagnosticBag) AddSourceContent(filepath, content string) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.sourceCache.AddSource(filepath, content)
}

// Add adds a diagnostic to the bag
func (db *DiagnosticBag) Add(diag *Diagnostic) {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.diagnostics = append(db.diagnostics, diag)

	switch diag.Severity {
	case Error:
		db.errorCount++
	case Warning:
		db.warnCount++
	}
}

// HasErrors returns true if there are any errors
func (db *DiagnosticBag) HasErrors() bool {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.errorCount > 0
}

// ErrorCount returns the number of errors
func (db *DiagnosticBag) ErrorCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.errorCount
}

// WarningCount returns the number of warnings
func (db *DiagnosticBag) WarningCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.warnCount
}

// Diagnostics returns a copy of all diagnostics in insertion order (thread-safe)
func (db *DiagnosticBag) Diagnostics() []*Diagnostic {
	db.mu.Lock()
	defer db.mu.Unlock()
	result := make([]*Diagnostic, len(db.diagnostics))
	copy(result, db.diagnostics)
	return result
}

// sortKey is the identity of a diagnostic for ordering and deduplication
type sortKey struct {
	file      string
	line      int
	column    int
	endLine   int
	endColumn int
	severity  Severity
	code      string
	message   string
}

func keyOf(d *Diagnostic) sortKey {
	key := sortKey{
		severity: d.Severity,
		code:     d.Code,
		message:  d.Message,
	}
	if loc := d.PrimaryLocation(); loc != nil {
		if loc.Filename != nil {
			key.file = *loc.Filename
		}
		if loc.Start != nil {
			key.line = loc.Start.Line
			key.column = loc.Start.Column
		}
		if loc.End != nil {
			key.endLine = loc.End.Line
			key.endColumn = loc.End.Column
		}
	}
	return key
}

// Report returns the diagnostics ordered by source position (file, then line,
// then column), with exact duplicates (same span, code, severity, and message)
// removed. Ties at the same position keep insertion order.
func (db *DiagnosticBag) Report() []*Diagnostic {
	db.mu.Lock()
	snapshot := make([]*Diagnostic, len(db.diagnostics))
	copy(snapshot, db.diagnostics)
	db.mu.Unlock()

	seen := make(map[sortKey]bool, len(snapshot))
	deduped := make([]*Diagnostic, 0, len(snapshot))
	for _, diag := range snapshot {
		key := keyOf(diag)
		if seen[key] {
			continue
		}
		seen[key] = true
		deduped = append(deduped, diag)
	}

	sort.SliceStable(deduped, func(i, j int) bool {
		a, b := keyOf(deduped[i]), keyOf(deduped[j])
		if a.file != b.file {
			return a.file < b.file
		}
		if a.line != b.line {
			return a.line < b.line
		}
		return a.column < b.column
	})

	return deduped
}

// EmitAll renders the full ordered report to stderr
func (db *DiagnosticBag) EmitAll() {
	emitter := NewEmitter(os.Stderr)
	for _, diag := range db.Report() {
		emitter.Emit(diag)
	}
	db.printSummary(os.Stderr)
}

// EmitAllToString renders the full ordered report to a string with ANSI codes
func (db *DiagnosticBag) EmitAllToString() string {
	var buf bytes.Buffer
	emitter := &Emitter{
		cache:  db.sourceCache,
		writer: &buf,
	}
	for _, diag := range db.Report() {
		emitter.Emit(diag)
	}
	db.printSummary(&buf)
	return buf.String()
}

// ReportString renders the ordered report without ANSI codes, for tests
// and machine consumption
func (db *DiagnosticBag) ReportString() string {
	return colors.StripANSI(db.EmitAllToString())
}

func (db *DiagnosticBag) printSummary(w io.Writer) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.errorCount > 0 {
		colors.RED.Fprintf(w, compileFailedMsg, db.errorCount)
		if db.warnCount > 0 {
			colors.RED.Fprintf(w, andWarningMsg, db.warnCount)
		}
		fmt.Fprintln(w)
	} else if db.warnCount > 0 {
		colors.ORANGE.Fprintf(w, compileSuccessWithWarning, db.warnCount)
	}
}

// Clear removes all diagnostics at the start of a new run
func (db *DiagnosticBag) Clear() {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.diagnostics = make([]*Diagnostic, 0)
	db.errorCount = 0
	db.warnCount = 0
}
