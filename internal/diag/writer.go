package diag

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
)

var severityColors = map[Severity]*color.Color{
	SevError:   color.New(color.FgRed, color.Bold),
	SevWarning: color.New(color.FgYellow, color.Bold),
	SevRemark:  color.New(color.FgCyan),
	SevNote:    color.New(color.FgHiBlack),
}

// Writer renders diagnostics to an io.Writer, one per line, optionally
// colorized. It is safe for use from a single pipeline goroutine; the mutex
// only guards against interleaving with the fatal path.
type Writer struct {
	mu       sync.Mutex
	out      io.Writer
	colorize bool
	quiet    bool
}

// NewWriter returns a rendering handler. With quiet set, only errors and
// warnings are printed.
func NewWriter(out io.Writer, colorize, quiet bool) *Writer {
	return &Writer{out: out, colorize: colorize, quiet: quiet}
}

func (w *Writer) Handle(d Diagnostic) {
	if w.quiet && d.Severity > SevWarning {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	tag := d.Severity.String()
	if w.colorize {
		if c, ok := severityColors[d.Severity]; ok {
			tag = c.Sprint(tag)
		}
	}
	fmt.Fprintf(w.out, "%s: %s\n", tag, d.Message)
}
