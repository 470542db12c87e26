package linker

import (
	"fmt"
	"os"

	"github.com/BretasArthur1/bpf-linker/internal/backend"
	"github.com/BretasArthur1/bpf-linker/internal/bitcode"
	"github.com/BretasArthur1/bpf-linker/internal/diag"
	"github.com/BretasArthur1/bpf-linker/internal/objfile"
)

// Input is one raw input to the pipeline. Data may be pre-read by the
// caller; when nil, acquisition reads Path itself.
type Input struct {
	Path string
	Data []byte
}

// inputKind is the classification acquisition works from.
type inputKind uint8

const (
	kindIR inputKind = iota
	kindBitcode
	kindObject
)

func classify(data []byte) inputKind {
	switch {
	case objfile.IsObject(data):
		return kindObject
	case bitcode.Is(data):
		return kindBitcode
	default:
		return kindIR
	}
}

// acquire turns one input into a parsed fragment. A nil fragment with a nil
// error means the input legitimately contributes nothing (an object file
// without embedded bitcode).
func (l *Linker) acquire(in Input) (*backend.Module, error) {
	data := in.Data
	if data == nil {
		var err error
		// #nosec G304 -- inputs are user-provided paths by design
		data, err = os.ReadFile(in.Path)
		if err != nil {
			return nil, &AcquireError{Path: in.Path, Err: err}
		}
	}

	switch classify(data) {
	case kindObject:
		embedded, err := objfile.EmbeddedBitcode(data)
		if err != nil {
			return nil, &AcquireError{Path: in.Path, Err: err}
		}
		if embedded == nil {
			diag.Note(l.handler, fmt.Sprintf("%s: no embedded bitcode, skipping", in.Path))
			return nil, nil
		}
		frag, err := l.ctx.ParseBitcode(in.Path, embedded)
		if err != nil {
			return nil, &AcquireError{Path: in.Path, Err: err}
		}
		return frag, nil
	case kindBitcode:
		frag, err := l.ctx.ParseBitcode(in.Path, data)
		if err != nil {
			return nil, &AcquireError{Path: in.Path, Err: err}
		}
		return frag, nil
	default:
		frag, err := l.ctx.ParseIR(in.Path, data)
		if err != nil {
			return nil, &AcquireError{Path: in.Path, Err: err}
		}
		return frag, nil
	}
}
