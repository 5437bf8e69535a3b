// Package diag carries user-facing findings about overload declarations.
// Findings are data, not Go errors: a scan keeps going after one and reports
// all of them together.
package diag

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Severity of a finding.
type Severity int

const (
	// Warning marks a declaration the engine can safely skip.
	Warning Severity = iota
	// Error marks a declaration that would silently miscompile if ignored.
	Error
)

func (s Severity) String() string {
	if s == Error {
		return "error"
	}
	return "warning"
}

func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Diagnostic is one finding, located by file and 1-based line.
type Diagnostic struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Path     string   `json:"file"`
	Line     int      `json:"line"`
	Snippet  string   `json:"code,omitempty"`
}

// String renders "file:line: message\ncode".
func (d Diagnostic) String() string {
	head := fmt.Sprintf("%s:%d: %s", d.Path, d.Line, d.Message)
	if d.Snippet == "" {
		return head
	}
	return head + "\n" + d.Snippet
}

// List accumulates diagnostics in discovery order.
type List []Diagnostic

func (l *List) Warn(path string, line int, snippet, format string, args ...any) {
	l.add(Warning, path, line, snippet, format, args...)
}

func (l *List) Error(path string, line int, snippet, format string, args ...any) {
	l.add(Error, path, line, snippet, format, args...)
}

func (l *List) add(sev Severity, path string, line int, snippet, format string, args ...any) {
	*l = append(*l, Diagnostic{
		Severity: sev,
		Message:  fmt.Sprintf(format, args...),
		Path:     path,
		Line:     line,
		Snippet:  snippet,
	})
}

// Count returns the number of warnings and errors.
func (l List) Count() (warnings, errors int) {
	for _, d := range l {
		if d.Severity == Error {
			errors++
		} else {
			warnings++
		}
	}
	return warnings, errors
}

// HasErrors reports whether any diagnostic is an error.
func (l List) HasErrors() bool {
	_, errs := l.Count()
	return errs > 0
}

// Report collects the diagnostics of one pipeline run.
type Report struct {
	Diagnostics List `json:"diagnostics"`
}

func (r *Report) Add(l List) {
	r.Diagnostics = append(r.Diagnostics, l...)
}

// Fatal reports whether the run must stop before rewriting. Errors are
// always fatal; warnings only when escalated.
func (r *Report) Fatal(warningsAsErrors bool) bool {
	if warningsAsErrors {
		return len(r.Diagnostics) > 0
	}
	return r.Diagnostics.HasErrors()
}

// Sorted returns the diagnostics ordered by file, line, then message.
func (r *Report) Sorted() List {
	out := make(List, len(r.Diagnostics))
	copy(out, r.Diagnostics)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		if out[i].Line != out[j].Line {
			return out[i].Line < out[j].Line
		}
		return out[i].Message < out[j].Message
	})
	return out
}

// Error joins every diagnostic for use as a single error message.
func (r *Report) Error() string {
	parts := make([]string, 0, len(r.Diagnostics))
	for _, d := range r.Sorted() {
		parts = append(parts, d.Severity.String()+": "+d.String())
	}
	return strings.Join(parts, "\n")
}

// Snippet trims a source line for display.
func Snippet(line string) string {
	line = strings.TrimSpace(line)
	if len(line) > 120 {
		line = line[:117] + "..."
	}
	return line
}
