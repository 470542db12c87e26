package linker

import (
	"fmt"
	"strings"

	"github.com/BretasArthur1/bpf-linker/internal/backend"
	"github.com/BretasArthur1/bpf-linker/internal/diag"
)

// intrinsicPrefix marks backend-provided pseudo-functions. Symbols under it
// are never touched by the visibility policy.
const intrinsicPrefix = "llvm."

// internalize reclassifies every global symbol: exported names keep their
// linkage, everything else becomes link-local so the dead-code pass can
// collect it if unreferenced. Globals and aliases first, then functions;
// insertion order within each class keeps the output reproducible.
func (l *Linker) internalize(image *backend.Module, exports ExportSet) {
	for _, sym := range image.Globals() {
		l.internalizeSymbol(sym, exports)
	}
	for _, sym := range image.Aliases() {
		l.internalizeSymbol(sym, exports)
	}
	for _, sym := range image.Funcs() {
		l.internalizeSymbol(sym, exports)
	}
}

func (l *Linker) internalizeSymbol(sym backend.Value, exports ExportSet) {
	name := sym.Name()
	if strings.HasPrefix(name, intrinsicPrefix) {
		return
	}
	if exports.Contains(name) {
		return
	}
	// A function with no body is provided from outside the image; forcing it
	// internal would corrupt the link. Variables and aliases have no such
	// exception.
	if sym.IsFunction() && !sym.HasBody() {
		diag.Note(l.handler, fmt.Sprintf("not internalizing undefined function %s", name))
		return
	}
	sym.SetLinkage(backend.LinkageInternal)
	// Default visibility avoids hidden-visibility interactions downstream.
	sym.SetVisibility(backend.VisibilityDefault)
}
