package compiler

import (
	"fmt"
	"os"
	"path/filepath"

	"flarec/internal/context"
	"flarec/internal/pipeline"
)

// Options for one compilation run
type Options struct {
	// EntryFile is the root source file; imports resolve relative to
	// its directory.
	EntryFile string
	// Debug enables token and phase tracing
	Debug bool
	// Quiet suppresses the stderr report; diagnostics are still
	// available on the Result
	Quiet bool
}

// Result of compilation
type Result struct {
	Success bool
	// Report is the rendered diagnostic report without ANSI codes
	Report string
	// Errors and Warnings are the final counts after deduplication
	Errors   int
	Warnings int
}

// Compile runs the front end over the entry file and everything it
// imports, and returns the outcome.
func Compile(opts Options) Result {
	absPath, err := filepath.Abs(opts.EntryFile)
	if err != nil {
		return Result{Report: fmt.Sprintf("failed to resolve path: %v\n", err), Errors: 1}
	}
	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		return Result{Report: fmt.Sprintf("file not found: %s\n", opts.EntryFile), Errors: 1}
	}

	rootDir := filepath.Dir(absPath)
	ctx := context.New(context.Config{
		ProjectName: filepath.Base(rootDir),
		RootDir:     rootDir,
		Debug:       opts.Debug,
	})

	pipeline.New(ctx).Run(absPath)

	if !opts.Quiet {
		ctx.Reports.EmitAll()
	}

	return Result{
		Success:  !ctx.Reports.HasErrors(),
		Report:   ctx.Reports.ReportString(),
		Errors:   ctx.Reports.ErrorCount(),
		Warnings: ctx.Reports.WarningCount(),
	}
}
