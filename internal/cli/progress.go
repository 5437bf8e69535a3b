package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/morozRed/overloadts/internal/logging"
)

type progressReporter struct {
	enabled bool
	out     io.Writer
	label   string
	total   int
	start   time.Time
	spinner int
	lastLen int
}

// newProgressReporter draws a spinner on out, but only when out is a
// terminal and nothing machine-readable is being printed.
func newProgressReporter(out io.Writer, label string, total int, asJSON bool) *progressReporter {
	enabled := false
	if f, ok := out.(*os.File); ok {
		enabled = logging.IsTerminal(f) && !asJSON
	}
	return &progressReporter{
		enabled: enabled,
		out:     out,
		label:   label,
		total:   total,
		start:   time.Now(),
	}
}

func (r *progressReporter) Update(file string, count int) {
	if !r.enabled {
		return
	}
	frames := [4]string{"-", "\\", "|", "/"}
	frame := frames[r.spinner%len(frames)]
	r.spinner++
	file = strings.TrimSpace(file)
	if len(file) > 88 {
		file = "..." + file[len(file)-85:]
	}

	status := fmt.Sprintf("%s %s %d %s", frame, r.label, count, file)
	if r.total > 0 {
		status = fmt.Sprintf("%s %s %d/%d %s", frame, r.label, count, r.total, file)
	}
	r.printStatus(status)
}

func (r *progressReporter) Done(count int) {
	if !r.enabled {
		return
	}
	elapsed := time.Since(r.start).Round(time.Millisecond)
	status := fmt.Sprintf("%s complete (%d files in %s)", r.label, count, elapsed)
	r.printStatus(status)
	fmt.Fprintln(r.out)
}

func (r *progressReporter) printStatus(status string) {
	if r.lastLen > len(status) {
		status = status + strings.Repeat(" ", r.lastLen-len(status))
	}
	r.lastLen = len(status)
	fmt.Fprintf(r.out, "\r%s", status)
}
