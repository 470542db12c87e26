package linker

import (
	"fmt"

	"github.com/BretasArthur1/bpf-linker/internal/backend"
	"github.com/BretasArthur1/bpf-linker/internal/diag"
)

// Options configures one link run.
type Options struct {
	// Inputs are consumed in order; each contributes at most one fragment.
	Inputs []Input
	// Output is the destination path of the final artifact.
	Output string
	// OutputKind selects the artifact's serialized form.
	OutputKind backend.OutputKind
	// Target overrides the triple recorded in the inputs.
	Target string
	// CPU is the BPF processor generation; empty means generic.
	CPU string
	// CPUFeatures is the machine feature string.
	CPUFeatures string
	// Exports lists the symbol names that stay externally visible.
	Exports []string
	// OptLevel selects the pass pipeline.
	OptLevel OptLevel
	// BTF keeps debug info in the image for BTF consumers; without it all
	// debug metadata is stripped before emission.
	BTF bool
	// IgnoreInlineNever removes the inlining-suppression attribute so
	// internalized functions stay inlinable.
	IgnoreInlineNever bool
	// DumpModule, when set, writes the pre-optimization IR to this path.
	DumpModule string
}

// Linker drives one pipeline run over a single program image.
type Linker struct {
	opts    Options
	handler diag.Handler
	ctx     *backend.Context
}

// New returns a linker for opts reporting through h.
func New(opts Options, h diag.Handler) *Linker {
	return &Linker{opts: opts, handler: h}
}

// Link runs the pipeline end to end: acquire and merge every input, apply
// the visibility policy, sanitize, optimize, optionally strip debug info and
// emit. Any stage failure aborts the run; there are no retries.
func (l *Linker) Link() error {
	ctx, err := backend.NewContext(l.handler)
	if err != nil {
		return err
	}
	defer ctx.Close()
	l.ctx = ctx

	image := ctx.NewModule(l.opts.Output)
	for _, in := range l.opts.Inputs {
		frag, err := l.acquire(in)
		if err != nil {
			return err
		}
		if frag == nil {
			continue
		}
		if !ctx.Merge(image, frag) {
			return &LinkError{Path: in.Path}
		}
	}

	tm, err := l.resolveMachine(image)
	if err != nil {
		return err
	}
	image.SetTargetTriple(tm.Triple())

	l.sanitize(image)
	l.internalize(image, NewExportSet(l.opts.Exports))

	if l.opts.DumpModule != "" {
		if err := ctx.EmitIR(image, l.opts.DumpModule); err != nil {
			return &EmitError{Path: l.opts.DumpModule, Err: err}
		}
	}

	if err := l.optimize(image, tm); err != nil {
		return err
	}

	if !l.opts.BTF {
		if ctx.StripDebugInfo(image) {
			diag.Note(l.handler, "stripped debug info")
		}
	}

	return l.emit(image, tm)
}

// resolveMachine picks the target description: explicit request first, then
// the triple recorded in the image, then the plain bpf default.
func (l *Linker) resolveMachine(image *backend.Module) (*backend.TargetMachine, error) {
	triple := l.opts.Target
	if triple == "" {
		triple = image.TargetTriple()
	}
	if triple == "" {
		triple = "bpf"
		diag.Note(l.handler, "no target recorded in inputs, defaulting to bpf")
	}
	target, err := backend.TargetFromTriple(triple)
	if err != nil {
		return nil, err
	}
	cpu := l.opts.CPU
	if cpu == "" {
		cpu = "generic"
	}
	tm := l.ctx.NewTargetMachine(target, triple, cpu, l.opts.CPUFeatures)
	if tm == nil {
		return nil, fmt.Errorf("failed to create machine configuration for %s (cpu %q)", triple, cpu)
	}
	return tm, nil
}

func (l *Linker) emit(image *backend.Module, tm *backend.TargetMachine) error {
	var err error
	switch l.opts.OutputKind {
	case backend.OutputIR:
		err = l.ctx.EmitIR(image, l.opts.Output)
	case backend.OutputBitcode:
		err = l.ctx.EmitBitcode(image, l.opts.Output)
	case backend.OutputAssembly:
		err = l.ctx.EmitAssembly(tm, image, l.opts.Output)
	default:
		err = l.ctx.EmitObject(tm, image, l.opts.Output)
	}
	if err != nil {
		return &EmitError{Path: l.opts.Output, Err: err}
	}
	diag.Note(l.handler, fmt.Sprintf("wrote %s (%s)", l.opts.Output, l.opts.OutputKind))
	return nil
}
