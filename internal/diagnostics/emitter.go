package diagnostics

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"flarec/colors"
)

// SourceCache caches source file contents for error reporting
type SourceCache struct {
	files map[string][]string
}

func NewSourceCache() *SourceCache {
	return &SourceCache{
		files: make(map[string][]string),
	}
}

// AddSource registers in-memory source content for a file path
func (sc *SourceCache) AddSource(filepath, content string) {
	sc.files[filepath] = strings.Split(content, "\n")
}

// GetLine retrieves a specific line from a source file
func (sc *SourceCache) GetLine(filepath string, line int) (string, error) {
	if lines, ok := sc.files[filepath]; ok {
		if line > 0 && line <= len(lines) {
			return lines[line-1], nil
		}
		return "", fmt.Errorf("line %d out of range", line)
	}

	file, err := os.Open(filepath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	lines := make([]string, 0)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}

	sc.files[filepath] = lines

	if line > 0 && line <= len(lines) {
		return lines[line-1], nil
	}
	return "", fmt.Errorf("line %d out of range", line)
}

// Emitter renders diagnostics in a rustc-like format:
//
//	error[T0001]: type mismatch
//	 --> main.flr:3:10
//	  |
//	3 | f("s")
//	  |   ^^^ str is not compatible with int
type Emitter struct {
	cache  *SourceCache
	writer io.Writer
}

// NewEmitter creates an emitter that writes to a specific writer
func NewEmitter(w io.Writer) *Emitter {
	return &Emitter{
		cache:  NewSourceCache(),
		writer: w,
	}
}

func severityColor(s Severity) colors.COLOR {
	switch s {
	case Error:
		return colors.BOLD_RED
	case Warning:
		return colors.ORANGE
	default:
		return colors.BOLD_BLUE
	}
}

// Emit renders a single diagnostic
func (e *Emitter) Emit(diag *Diagnostic) {
	color := severityColor(diag.Severity)

	if diag.Code != "" {
		color.Fprintf(e.writer, "%s[%s]", diag.Severity, diag.Code)
	} else {
		color.Fprintf(e.writer, "%s", diag.Severity)
	}
	fmt.Fprintf(e.writer, ": %s\n", diag.Message)

	lineNumWidth := e.lineNumWidth(diag)
	for _, label := range diag.Labels {
		e.emitLabel(label, lineNumWidth, color)
	}

	for _, note := range diag.Notes {
		colors.CYAN.Fprintf(e.writer, "%s= note: ", strings.Repeat(" ", lineNumWidth+1))
		fmt.Fprintln(e.writer, note.Message)
	}
	if diag.Help != "" {
		colors.GREEN.Fprintf(e.writer, "%s= help: ", strings.Repeat(" ", lineNumWidth+1))
		fmt.Fprintln(e.writer, diag.Help)
	}
	fmt.Fprintln(e.writer)
}

func (e *Emitter) lineNumWidth(diag *Diagnostic) int {
	width := 1
	for _, label := range diag.Labels {
		if label.Location == nil || label.Location.End == nil {
			continue
		}
		w := len(fmt.Sprintf("%d", label.Location.End.Line))
		if w > width {
			width = w
		}
	}
	return width
}

func (e *Emitter) emitLabel(label Label, lineNumWidth int, color colors.COLOR) {
	loc := label.Location
	if loc == nil || loc.Start == nil || loc.Filename == nil {
		return
	}

	pad := strings.Repeat(" ", lineNumWidth)
	colors.BLUE.Fprintf(e.writer, "%s--> ", pad)
	fmt.Fprintf(e.writer, "%s:%d:%d\n", *loc.Filename, loc.Start.Line, loc.Start.Column)

	line, err := e.cache.GetLine(*loc.Filename, loc.Start.Line)
	if err != nil {
		return
	}

	colors.GREY.Fprintf(e.writer, "%s |\n", pad)
	colors.GREY.Fprintf(e.writer, "%*d | ", lineNumWidth, loc.Start.Line)
	fmt.Fprintln(e.writer, line)

	// Underline the span on its first line
	startCol := loc.Start.Column
	endCol := startCol + 1
	if loc.End != nil && loc.End.Line == loc.Start.Line && loc.End.Column > startCol {
		endCol = loc.End.Column
	}
	marker := "^"
	markerColor := color
	if label.Style == Secondary {
		marker = "-"
		markerColor = colors.BLUE
	}

	colors.GREY.Fprintf(e.writer, "%s | ", pad)
	fmt.Fprint(e.writer, strings.Repeat(" ", startCol-1))
	markerColor.Fprint(e.writer, strings.Repeat(marker, endCol-startCol))
	if label.Message != "" {
		markerColor.Fprintf(e.writer, " %s", label.Message)
	}
	fmt.Fprintln(e.writer)
}
