package backend

import (
	"fmt"

	"github.com/llir/llvm/ir"

	"github.com/BretasArthur1/bpf-linker/internal/diag"
)

// Context is an isolated compilation context. Modules and target machines
// are scoped to it and become invalid when it closes. The diagnostic handler
// is bound at construction; every operation on the context reports through
// it synchronously.
type Context struct {
	handler  diag.Handler
	modules  []*Module
	machines []*TargetMachine
	closed   bool
}

// NewContext creates a context bound to h. Init must have run first.
func NewContext(h diag.Handler) (*Context, error) {
	if !initialized {
		return nil, fmt.Errorf("backend not initialized: call backend.Init first")
	}
	return &Context{handler: h}, nil
}

// NewModule creates an empty module owned by the context.
func (c *Context) NewModule(name string) *Module {
	c.ensureOpen()
	m := &Module{ctx: c, m: ir.NewModule()}
	m.m.SourceFilename = name
	c.modules = append(c.modules, m)
	return m
}

// Close releases everything the context owns, machines before modules, in
// reverse acquisition order. The context and its handles must not be used
// afterwards.
func (c *Context) Close() {
	if c.closed {
		return
	}
	for i := len(c.machines) - 1; i >= 0; i-- {
		c.machines[i].release()
	}
	c.machines = nil
	for i := len(c.modules) - 1; i >= 0; i-- {
		c.modules[i].release()
	}
	c.modules = nil
	c.closed = true
}

func (c *Context) ensureOpen() {
	if c == nil || c.closed {
		panic("use of closed backend context")
	}
}

func (c *Context) adopt(m *ir.Module) *Module {
	mod := &Module{ctx: c, m: m}
	c.modules = append(c.modules, mod)
	return mod
}
