// Package logging prints run progress and diagnostics to the console.
// Errors are shown as they arrive; warnings are held back and flushed
// together once a scan completes.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/morozRed/overloadts/internal/diag"
	"github.com/pterm/pterm"
)

// Level controls how much the logger prints.
type Level int

const (
	LevelSilent  Level = iota // no output at all
	LevelError                // errors and the closing summary
	LevelWarning              // errors, warnings and the closing summary
	LevelVerbose              // everything, including progress (default)
)

var levelNames = map[string]Level{
	"silent":  LevelSilent,
	"error":   LevelError,
	"warning": LevelWarning,
	"verbose": LevelVerbose,
}

func ParseLevel(raw string) (Level, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return LevelVerbose, nil
	}
	level, ok := levelNames[raw]
	if !ok {
		return LevelVerbose, fmt.Errorf("unknown log level %q (want silent, error, warning or verbose)", raw)
	}
	return level, nil
}

var (
	SuccessColorFG = pterm.FgLightGreen
	SuccessStyleBG = pterm.NewStyle(pterm.BgLightGreen, pterm.FgBlack)
	WarnColorFG    = pterm.FgYellow
	WarnStyleBG    = pterm.NewStyle(pterm.BgYellow, pterm.FgBlack)
	ErrorColorFG   = pterm.FgRed
	ErrorStyleBG   = pterm.NewStyle(pterm.BgRed, pterm.FgWhite)
	InfoColorFG    = pterm.FgLightCyan
)

// Logger accumulates and prints diagnostics for one run. It is safe for
// concurrent use.
type Logger struct {
	Level Level

	out   io.Writer
	color bool

	errorCount int
	warnings   []diag.Diagnostic

	m sync.Mutex
}

// New creates a logger writing to out. Colour is enabled only when out is
// a terminal.
func New(out io.Writer, level Level) *Logger {
	color := false
	if f, ok := out.(*os.File); ok {
		color = IsTerminal(f)
	}
	return &Logger{Level: level, out: out, color: color}
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (l *Logger) paint(style interface{ Sprint(...any) string }, s string) string {
	if !l.color {
		return s
	}
	return style.Sprint(s)
}

// Diagnostic records one finding. Errors print immediately; warnings wait
// for Flush.
func (l *Logger) Diagnostic(d diag.Diagnostic) {
	l.m.Lock()
	defer l.m.Unlock()

	if d.Severity == diag.Error {
		l.errorCount++
		if l.Level > LevelSilent {
			l.display(d)
		}
		return
	}
	l.warnings = append(l.warnings, d)
}

func (l *Logger) Diagnostics(list diag.List) {
	for _, d := range list {
		l.Diagnostic(d)
	}
}

// Flush prints the accumulated warnings.
func (l *Logger) Flush() {
	l.m.Lock()
	defer l.m.Unlock()

	if l.Level >= LevelWarning {
		for _, d := range l.warnings {
			l.display(d)
		}
	}
}

func (l *Logger) display(d diag.Diagnostic) {
	tag := d.Severity.String()
	if l.color {
		style := WarnStyleBG
		if d.Severity == diag.Error {
			style = ErrorStyleBG
		}
		tag = style.Sprint(" " + tag + " ")
	}
	fmt.Fprintf(l.out, "%s %s:%d: %s\n", tag, d.Path, d.Line, d.Message)
	if d.Snippet != "" {
		fmt.Fprintf(l.out, "    %s %s\n", l.paint(InfoColorFG, "|"), d.Snippet)
	}
}

// Infof prints a progress line at verbose level.
func (l *Logger) Infof(format string, args ...any) {
	if l.Level < LevelVerbose {
		return
	}
	l.m.Lock()
	defer l.m.Unlock()
	fmt.Fprintf(l.out, format+"\n", args...)
}

// Warnf prints a tool-level warning, such as an unreadable file.
func (l *Logger) Warnf(format string, args ...any) {
	if l.Level < LevelWarning {
		return
	}
	l.m.Lock()
	defer l.m.Unlock()
	fmt.Fprintf(l.out, "%s %s\n", l.paint(WarnColorFG, "warning:"), fmt.Sprintf(format, args...))
}

// Error prints a Go error that stopped the run.
func (l *Logger) Error(err error) {
	if l.Level == LevelSilent || err == nil {
		return
	}
	l.m.Lock()
	defer l.m.Unlock()
	fmt.Fprintf(l.out, "%s %s\n", l.paint(ErrorColorFG, "error:"), err)
}

// Counts returns the number of errors and warnings recorded.
func (l *Logger) Counts() (errors, warnings int) {
	l.m.Lock()
	defer l.m.Unlock()
	return l.errorCount, len(l.warnings)
}

// Finish prints the closing summary line.
func (l *Logger) Finish(success bool) {
	if l.Level == LevelSilent {
		return
	}
	errs, warns := l.Counts()

	l.m.Lock()
	defer l.m.Unlock()
	if success {
		fmt.Fprint(l.out, l.paint(SuccessColorFG, "All done!"))
	} else {
		fmt.Fprint(l.out, l.paint(ErrorColorFG, "Oh no!"))
	}
	fmt.Fprintf(l.out, " (%s, %s)\n", plural(errs, "error"), plural(warns, "warning"))
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, word)
}
