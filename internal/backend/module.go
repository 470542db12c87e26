package backend

import (
	"strings"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/enum"
)

// Module wraps one in-memory program module. The pipeline holds exactly one
// long-lived Module (the program image); parsed fragments are Modules too,
// consumed by a single merge.
type Module struct {
	ctx      *Context
	m        *ir.Module
	released bool
}

func (m *Module) release() {
	m.released = true
	m.m = nil
}

func (m *Module) ensureLive() {
	if m == nil || m.released {
		panic("use of released backend module")
	}
	m.ctx.ensureOpen()
}

// Name returns the module's recorded source file name.
func (m *Module) Name() string {
	m.ensureLive()
	return m.m.SourceFilename
}

// TargetTriple returns the triple recorded in the module, if any.
func (m *Module) TargetTriple() string {
	m.ensureLive()
	return m.m.TargetTriple
}

// SetTargetTriple records triple in the module.
func (m *Module) SetTargetTriple(triple string) {
	m.ensureLive()
	m.m.TargetTriple = triple
}

// InlineAsm returns the module-level inline-assembly blob.
func (m *Module) InlineAsm() string {
	m.ensureLive()
	return strings.Join(m.m.ModuleAsms, "\n")
}

// SetInlineAsm replaces the module-level inline-assembly blob. An empty
// string clears it.
func (m *Module) SetInlineAsm(asm string) {
	m.ensureLive()
	if asm == "" {
		m.m.ModuleAsms = nil
		return
	}
	m.m.ModuleAsms = strings.Split(asm, "\n")
}

// String renders the module as textual IR.
func (m *Module) String() string {
	m.ensureLive()
	return m.m.String()
}

// Globals returns the module's global variables in insertion order.
func (m *Module) Globals() []Value {
	m.ensureLive()
	vals := make([]Value, 0, len(m.m.Globals))
	for _, g := range m.m.Globals {
		vals = append(vals, Value{kind: ValueGlobal, g: g})
	}
	return vals
}

// Aliases returns the module's aliases in insertion order.
func (m *Module) Aliases() []Value {
	m.ensureLive()
	vals := make([]Value, 0, len(m.m.Aliases))
	for _, a := range m.m.Aliases {
		vals = append(vals, Value{kind: ValueAlias, a: a})
	}
	return vals
}

// Funcs returns the module's functions in insertion order.
func (m *Module) Funcs() []Value {
	m.ensureLive()
	vals := make([]Value, 0, len(m.m.Funcs))
	for _, f := range m.m.Funcs {
		vals = append(vals, Value{kind: ValueFunction, f: f})
	}
	return vals
}

// Lookup finds a named symbol of any kind.
func (m *Module) Lookup(name string) (Value, bool) {
	m.ensureLive()
	for _, g := range m.m.Globals {
		if g.Name() == name {
			return Value{kind: ValueGlobal, g: g}, true
		}
	}
	for _, a := range m.m.Aliases {
		if a.Name() == name {
			return Value{kind: ValueAlias, a: a}, true
		}
	}
	for _, f := range m.m.Funcs {
		if f.Name() == name {
			return Value{kind: ValueFunction, f: f}, true
		}
	}
	return Value{}, false
}

// ValueKind classifies a global symbol.
type ValueKind uint8

const (
	ValueGlobal ValueKind = iota
	ValueAlias
	ValueFunction
)

// Linkage is the subset of symbol linkage the pipeline distinguishes.
type Linkage uint8

const (
	LinkageExternal Linkage = iota
	LinkageInternal
	LinkagePrivate
	LinkageWeak
	LinkageOther
)

// Visibility is a symbol's ELF-style visibility.
type Visibility uint8

const (
	VisibilityDefault Visibility = iota
	VisibilityHidden
	VisibilityProtected
)

// Value is a view over one global symbol: function, global variable or
// alias. The zero Value is invalid.
type Value struct {
	kind ValueKind
	g    *ir.Global
	a    *ir.Alias
	f    *ir.Func
}

// Kind returns the symbol class.
func (v Value) Kind() ValueKind { return v.kind }

// IsFunction reports whether the symbol is a function.
func (v Value) IsFunction() bool { return v.kind == ValueFunction }

// Name returns the symbol name; empty for unnamed symbols.
func (v Value) Name() string {
	switch v.kind {
	case ValueGlobal:
		return v.g.Name()
	case ValueAlias:
		return v.a.Name()
	default:
		return v.f.Name()
	}
}

// HasBody reports whether the symbol is a definition: a function with at
// least one basic block, a global with an initializer. Aliases are always
// definitions.
func (v Value) HasBody() bool {
	switch v.kind {
	case ValueGlobal:
		return v.g.Init != nil
	case ValueAlias:
		return true
	default:
		return len(v.f.Blocks) > 0
	}
}

// Linkage returns the symbol's linkage class.
func (v Value) Linkage() Linkage {
	return linkageFromIR(v.rawLinkage())
}

// SetLinkage sets the symbol's linkage.
func (v Value) SetLinkage(l Linkage) {
	raw := linkageToIR(l)
	switch v.kind {
	case ValueGlobal:
		v.g.Linkage = raw
	case ValueAlias:
		v.a.Linkage = raw
	default:
		v.f.Linkage = raw
	}
}

// Visibility returns the symbol's visibility.
func (v Value) Visibility() Visibility {
	var raw enum.Visibility
	switch v.kind {
	case ValueGlobal:
		raw = v.g.Visibility
	case ValueAlias:
		raw = v.a.Visibility
	default:
		raw = v.f.Visibility
	}
	switch raw {
	case enum.VisibilityHidden:
		return VisibilityHidden
	case enum.VisibilityProtected:
		return VisibilityProtected
	default:
		return VisibilityDefault
	}
}

// SetVisibility sets the symbol's visibility.
func (v Value) SetVisibility(vis Visibility) {
	var raw enum.Visibility
	switch vis {
	case VisibilityHidden:
		raw = enum.VisibilityHidden
	case VisibilityProtected:
		raw = enum.VisibilityProtected
	default:
		raw = enum.VisibilityDefault
	}
	switch v.kind {
	case ValueGlobal:
		v.g.Visibility = raw
	case ValueAlias:
		v.a.Visibility = raw
	default:
		v.f.Visibility = raw
	}
}

var funcAttrByName = map[string]enum.FuncAttr{
	"alwaysinline": enum.FuncAttrAlwaysInline,
	"noinline":     enum.FuncAttrNoInline,
	"optnone":      enum.FuncAttrOptNone,
}

// RemoveAttr removes the named attribute from a function, flattening any
// attribute group that carries it so other functions keep theirs. Returns
// whether anything was removed. Non-functions report false.
func (v Value) RemoveAttr(name string) bool {
	if v.kind != ValueFunction {
		return false
	}
	target, ok := funcAttrByName[name]
	if !ok {
		return false
	}
	changed := false
	out := make([]ir.FuncAttribute, 0, len(v.f.FuncAttrs))
	for _, attr := range v.f.FuncAttrs {
		switch a := attr.(type) {
		case enum.FuncAttr:
			if a == target {
				changed = true
				continue
			}
			out = append(out, a)
		case *ir.AttrGroupDef:
			if !attrGroupContains(a, target) {
				out = append(out, a)
				continue
			}
			changed = true
			for _, ga := range a.FuncAttrs {
				if fa, ok := ga.(enum.FuncAttr); ok && fa == target {
					continue
				}
				out = append(out, ga)
			}
		default:
			out = append(out, attr)
		}
	}
	v.f.FuncAttrs = out
	return changed
}

func attrGroupContains(g *ir.AttrGroupDef, target enum.FuncAttr) bool {
	for _, attr := range g.FuncAttrs {
		if fa, ok := attr.(enum.FuncAttr); ok && fa == target {
			return true
		}
	}
	return false
}

func (v Value) rawLinkage() enum.Linkage {
	switch v.kind {
	case ValueGlobal:
		return v.g.Linkage
	case ValueAlias:
		return v.a.Linkage
	default:
		return v.f.Linkage
	}
}

func linkageFromIR(l enum.Linkage) Linkage {
	switch l {
	case enum.LinkageInternal:
		return LinkageInternal
	case enum.LinkagePrivate:
		return LinkagePrivate
	case enum.LinkageWeak, enum.LinkageWeakODR, enum.LinkageLinkOnce, enum.LinkageLinkOnceODR:
		return LinkageWeak
	case enum.LinkageNone, enum.LinkageExternal:
		return LinkageExternal
	default:
		return LinkageOther
	}
}

func linkageToIR(l Linkage) enum.Linkage {
	switch l {
	case LinkageInternal:
		return enum.LinkageInternal
	case LinkagePrivate:
		return enum.LinkagePrivate
	case LinkageWeak:
		return enum.LinkageWeak
	default:
		return enum.LinkageExternal
	}
}

func isLinkVisible(l enum.Linkage) bool {
	switch l {
	case enum.LinkageInternal, enum.LinkagePrivate:
		return false
	}
	return true
}
