package backend

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/BretasArthur1/bpf-linker/internal/bitcode"
	"github.com/BretasArthur1/bpf-linker/internal/objfile"
)

// OutputKind selects the serialized form of an emitted module.
type OutputKind uint8

const (
	OutputObject OutputKind = iota
	OutputAssembly
	OutputIR
	OutputBitcode
)

func (k OutputKind) String() string {
	switch k {
	case OutputObject:
		return "obj"
	case OutputAssembly:
		return "asm"
	case OutputIR:
		return "ll"
	case OutputBitcode:
		return "bc"
	}
	return "unknown"
}

// ParseOutputKind maps a CLI spelling to an output kind.
func ParseOutputKind(s string) (OutputKind, error) {
	switch s {
	case "obj":
		return OutputObject, nil
	case "asm":
		return OutputAssembly, nil
	case "ll":
		return OutputIR, nil
	case "bc":
		return OutputBitcode, nil
	}
	return 0, fmt.Errorf("unsupported output kind %q (supported: obj, asm, ll, bc)", s)
}

// NeedsMachine reports whether emitting this kind requires a target machine.
func (k OutputKind) NeedsMachine() bool {
	return k == OutputObject || k == OutputAssembly
}

// EmitIR writes the module as textual IR. Always available; no machine
// configuration required.
func (c *Context) EmitIR(m *Module, path string) error {
	defer guardFatal()
	m.ensureLive()
	if err := os.WriteFile(path, []byte(m.m.String()), 0o600); err != nil {
		return fmt.Errorf("failed to write IR to %q: %w", path, err)
	}
	return nil
}

// EmitBitcode writes the module in the toolchain's bitcode container.
func (c *Context) EmitBitcode(m *Module, path string) error {
	defer guardFatal()
	m.ensureLive()
	buf, err := bitcode.Encode([]byte(m.m.String()))
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, buf, 0o600); err != nil {
		return fmt.Errorf("failed to write bitcode to %q: %w", path, err)
	}
	return nil
}

// EmitObject writes the module as an ELF relocatable for the machine's
// target: the program image travels in the embedded-bitcode section and the
// symbol table lists the externally visible symbols.
func (c *Context) EmitObject(tm *TargetMachine, m *Module, path string) error {
	defer guardFatal()
	m.ensureLive()
	if tm == nil {
		return fmt.Errorf("object emission requires a target machine")
	}
	tm.ensureLive()

	embedded, err := bitcode.Encode([]byte(m.m.String()))
	if err != nil {
		return err
	}
	obj := &objfile.Object{
		ByteOrder: tm.ByteOrder(),
		Bitcode:   embedded,
		Symbols:   visibleSymbols(m),
	}
	var buf bytes.Buffer
	if err := objfile.Write(&buf, obj); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("failed to write object to %q: %w", path, err)
	}
	return nil
}

// EmitAssembly writes a textual listing for the machine's target.
func (c *Context) EmitAssembly(tm *TargetMachine, m *Module, path string) error {
	defer guardFatal()
	m.ensureLive()
	if tm == nil {
		return fmt.Errorf("assembly emission requires a target machine")
	}
	tm.ensureLive()

	var b strings.Builder
	fmt.Fprintf(&b, "\t.text\n")
	if m.m.SourceFilename != "" {
		fmt.Fprintf(&b, "\t.file\t%q\n", m.m.SourceFilename)
	}
	for _, f := range m.m.Funcs {
		if len(f.Blocks) == 0 {
			continue
		}
		name := f.Name()
		b.WriteByte('\n')
		if isLinkVisible(f.Linkage) {
			fmt.Fprintf(&b, "\t.globl\t%s\n", name)
		}
		fmt.Fprintf(&b, "\t.p2align\t3\n")
		fmt.Fprintf(&b, "%s:\n", name)
		for _, blk := range f.Blocks {
			if blk.Name() != "" {
				fmt.Fprintf(&b, ".L%s_%s:\n", name, blk.Name())
			}
			for _, inst := range blk.Insts {
				fmt.Fprintf(&b, "\t%s\n", inst.LLString())
			}
			fmt.Fprintf(&b, "\t%s\n", blk.Term.LLString())
		}
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o600); err != nil {
		return fmt.Errorf("failed to write assembly to %q: %w", path, err)
	}
	return nil
}

// visibleSymbols lists the externally visible definitions for the object's
// symbol table, functions first to match the image's enumeration order.
func visibleSymbols(m *Module) []objfile.Symbol {
	var syms []objfile.Symbol
	for _, f := range m.m.Funcs {
		if len(f.Blocks) > 0 && isLinkVisible(f.Linkage) && f.Name() != "" {
			syms = append(syms, objfile.Symbol{Name: f.Name(), Kind: objfile.SymFunc})
		}
	}
	for _, g := range m.m.Globals {
		if g.Init != nil && isLinkVisible(g.Linkage) && g.Name() != "" {
			syms = append(syms, objfile.Symbol{Name: g.Name(), Kind: objfile.SymObject})
		}
	}
	return syms
}
