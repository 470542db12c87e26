package linker

import (
	"strings"

	"github.com/BretasArthur1/bpf-linker/internal/backend"
	"github.com/BretasArthur1/bpf-linker/internal/diag"
)

// probestackMarker identifies frontend-injected stack-probing support code.
// Stack probes cannot run on the BPF target; a module-level asm blob
// containing the marker is dropped wholesale, not edited.
const probestackMarker = "__rust_probestack"

// sanitize removes constructs the target cannot accept. It must run before
// internalization so that attribute removal reaches functions while their
// linkage is still untouched.
func (l *Linker) sanitize(image *backend.Module) {
	if asm := image.InlineAsm(); strings.Contains(asm, probestackMarker) {
		diag.Note(l.handler, "removing module-level inline assembly (stack probes are unsupported on this target)")
		image.SetInlineAsm("")
	}

	if l.opts.IgnoreInlineNever {
		for _, f := range image.Funcs() {
			if strings.HasPrefix(f.Name(), intrinsicPrefix) {
				continue
			}
			f.RemoveAttr("noinline")
		}
	}
}
