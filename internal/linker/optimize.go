package linker

import (
	"fmt"
	"strings"

	"github.com/BretasArthur1/bpf-linker/internal/backend"
	"github.com/BretasArthur1/bpf-linker/internal/diag"
)

// OptLevel is the requested optimization level.
type OptLevel uint8

const (
	OptNone OptLevel = iota
	OptLess
	OptDefault
	OptAggressive
	OptSize
	OptSizeMin
)

// ParseOptLevel maps a -O flag value to a level.
func ParseOptLevel(s string) (OptLevel, error) {
	switch s {
	case "0":
		return OptNone, nil
	case "1":
		return OptLess, nil
	case "2":
		return OptDefault, nil
	case "3":
		return OptAggressive, nil
	case "s":
		return OptSize, nil
	case "z":
		return OptSizeMin, nil
	}
	return 0, fmt.Errorf("invalid optimization level %q (expected 0|1|2|3|s|z)", s)
}

func (l OptLevel) String() string {
	switch l {
	case OptNone:
		return "O0"
	case OptLess:
		return "O1"
	case OptDefault:
		return "O2"
	case OptAggressive:
		return "O3"
	case OptSize:
		return "Os"
	case OptSizeMin:
		return "Oz"
	}
	return "O?"
}

// pipelineFor maps a level to the backend pipeline string. Pretty much
// nothing compiles for this target at true O0, so O0 is an alias for O1. A
// dce pass is appended unconditionally: not every default pipeline includes
// it, and internalization depends on it running.
func pipelineFor(level OptLevel) string {
	var def string
	switch level {
	case OptNone, OptLess:
		def = "default<O1>"
	case OptAggressive:
		def = "default<O3>"
	case OptSize:
		def = "default<Os>"
	case OptSizeMin:
		def = "default<Oz>"
	default:
		def = "default<O2>"
	}
	return strings.Join([]string{def, "dce"}, ",")
}

// optimize runs the selected pipeline against the image. All-or-nothing: a
// backend failure surfaces verbatim and aborts the run.
func (l *Linker) optimize(image *backend.Module, tm *backend.TargetMachine) error {
	passes := pipelineFor(l.opts.OptLevel)
	diag.Remark(l.handler, fmt.Sprintf("running passes: %s", passes))
	if err := l.ctx.RunPasses(image, passes, tm); err != nil {
		return &OptimizeError{Msg: err.Error()}
	}
	return nil
}
