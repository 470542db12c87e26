package backend

import (
	"fmt"

	"github.com/llir/llvm/asm"
	"github.com/llir/llvm/ir"

	"github.com/BretasArthur1/bpf-linker/internal/bitcode"
)

// ParseIR parses textual IR into a fresh module owned by the context. The
// parser's own message is returned verbatim; tagging it with the input's
// identity is the caller's job.
func (c *Context) ParseIR(name string, data []byte) (*Module, error) {
	c.ensureOpen()
	m, err := safeParse(name, data)
	if err != nil {
		return nil, err
	}
	return c.adopt(m), nil
}

// ParseBitcode unwraps a bitcode buffer and parses the IR it carries.
func (c *Context) ParseBitcode(name string, data []byte) (*Module, error) {
	c.ensureOpen()
	text, err := bitcode.Decode(data)
	if err != nil {
		return nil, err
	}
	return c.ParseIR(name, text)
}

// safeParse keeps reader panics inside the parse boundary: a malformed input
// is an ordinary typed failure, never a fatal backend fault.
func safeParse(name string, data []byte) (m *ir.Module, err error) {
	defer func() {
		if r := recover(); r != nil {
			m, err = nil, fmt.Errorf("ir reader: %v", r)
		}
	}()
	return asm.ParseBytes(name, data)
}
