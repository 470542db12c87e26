package backend

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/llir/llvm/ir"

	"github.com/BretasArthur1/bpf-linker/internal/diag"
)

// passFunc runs one transformation over a module and reports whether it
// changed anything.
type passFunc func(m *ir.Module) bool

// The registry keys are the names accepted in pipeline strings. The
// default<O*> pipelines share one cleanup body: the level only matters to
// real instruction-level optimizers, which this backend leaves to the
// verifier downstream of it.
var passRegistry = map[string]passFunc{
	"default<O1>":           defaultPipeline,
	"default<O2>":           defaultPipeline,
	"default<O3>":           defaultPipeline,
	"default<Os>":           defaultPipeline,
	"default<Oz>":           defaultPipeline,
	"dce":                   deadCodeElim,
	"strip-dead-prototypes": stripDeadPrototypes,
}

// RunPasses executes a comma-separated pipeline against the module using the
// machine configuration. The returned error carries the backend's message
// verbatim; the run is all-or-nothing from the caller's perspective.
func (c *Context) RunPasses(m *Module, pipeline string, tm *TargetMachine) error {
	defer guardFatal()
	m.ensureLive()
	if tm == nil {
		return fmt.Errorf("missing target machine for pipeline %q", pipeline)
	}
	tm.ensureLive()
	for _, name := range strings.Split(pipeline, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		pass, ok := passRegistry[name]
		if !ok {
			return fmt.Errorf("unknown pass %q in pipeline %q", name, pipeline)
		}
		if pass(m.m) {
			diag.Remark(c.handler, fmt.Sprintf("pass %s modified the module", name))
		}
	}
	return nil
}

func defaultPipeline(m *ir.Module) bool {
	return stripDeadPrototypes(m)
}

// deadCodeElim removes link-local definitions and declarations that nothing
// reachable references. Roots are the externally visible definitions plus
// anything named from module-level asm or metadata.
func deadCodeElim(m *ir.Module) bool {
	live := markLive(m, func(name string, defined, visible bool) bool {
		return defined && visible
	})
	return sweep(m, live, true)
}

// stripDeadPrototypes drops unreferenced declarations only.
func stripDeadPrototypes(m *ir.Module) bool {
	live := markLive(m, func(name string, defined, visible bool) bool {
		return defined
	})
	return sweep(m, live, false)
}

type symbolEntry struct {
	defined bool
	visible bool
	refs    []string
}

// markLive computes the transitively referenced symbol set, seeding from
// every symbol isRoot accepts. References are recovered from each
// definition's printed form; string constants can produce false positives,
// which only ever keep more alive.
func markLive(m *ir.Module, isRoot func(name string, defined, visible bool) bool) map[string]bool {
	table := make(map[string]*symbolEntry)
	add := func(name string, defined bool, visible bool, text string) {
		if name == "" {
			return
		}
		table[name] = &symbolEntry{
			defined: defined,
			visible: visible,
			refs:    globalRefs(text, name),
		}
	}
	for _, g := range m.Globals {
		add(g.Name(), g.Init != nil, isLinkVisible(g.Linkage), g.LLString())
	}
	for _, a := range m.Aliases {
		add(a.Name(), true, isLinkVisible(a.Linkage), a.LLString())
	}
	for _, f := range m.Funcs {
		add(f.Name(), len(f.Blocks) > 0, isLinkVisible(f.Linkage), f.LLString())
	}

	var worklist []string
	live := make(map[string]bool)
	mark := func(name string) {
		if name != "" && !live[name] {
			live[name] = true
			worklist = append(worklist, name)
		}
	}
	for name, entry := range table {
		if isRoot(name, entry.defined, entry.visible) {
			mark(name)
		}
	}
	// Module asm and metadata may name symbols the IR never loads from.
	for _, asmLine := range m.ModuleAsms {
		for _, ref := range globalRefs(asmLine, "") {
			mark(ref)
		}
	}
	for _, def := range m.MetadataDefs {
		for _, ref := range globalRefs(def.LLString(), "") {
			mark(ref)
		}
	}

	for len(worklist) > 0 {
		name := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		entry, ok := table[name]
		if !ok {
			continue
		}
		for _, ref := range entry.refs {
			mark(ref)
		}
	}
	return live
}

// sweep removes symbols absent from live: declarations always, definitions
// only when removeDefs is set. Externally visible definitions are live by
// construction and never touched.
func sweep(m *ir.Module, live map[string]bool, removeDefs bool) bool {
	changed := false

	globals := m.Globals[:0]
	for _, g := range m.Globals {
		name := g.Name()
		removable := g.Init == nil || removeDefs
		if name != "" && !live[name] && removable {
			changed = true
			continue
		}
		globals = append(globals, g)
	}
	m.Globals = globals

	if removeDefs {
		aliases := m.Aliases[:0]
		for _, a := range m.Aliases {
			if name := a.Name(); name != "" && !live[name] {
				changed = true
				continue
			}
			aliases = append(aliases, a)
		}
		m.Aliases = aliases
	}

	funcs := m.Funcs[:0]
	for _, f := range m.Funcs {
		name := f.Name()
		removable := len(f.Blocks) == 0 || removeDefs
		if name != "" && !live[name] && removable {
			changed = true
			continue
		}
		funcs = append(funcs, f)
	}
	m.Funcs = funcs

	return changed
}

var globalRefRE = regexp.MustCompile(`@("(?:[^"\\]|\\.)*"|[-a-zA-Z$._][-a-zA-Z$._0-9]*)`)

// globalRefs extracts the global symbol names referenced in a printed IR
// snippet, excluding self (a definition's header names itself).
func globalRefs(text, self string) []string {
	var refs []string
	for _, match := range globalRefRE.FindAllStringSubmatch(text, -1) {
		name := match[1]
		if strings.HasPrefix(name, `"`) {
			name = unquoteGlobalName(name)
		}
		if name != "" && name != self {
			refs = append(refs, name)
		}
	}
	return refs
}

// unquoteGlobalName undoes the printer's quoting of unusual symbol names:
// surrounding quotes, \\ for a backslash and \XX hex escapes.
func unquoteGlobalName(s string) string {
	s = strings.TrimPrefix(s, `"`)
	s = strings.TrimSuffix(s, `"`)
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' {
			b.WriteByte(s[i])
			continue
		}
		if i+1 < len(s) && s[i+1] == '\\' {
			b.WriteByte('\\')
			i++
			continue
		}
		if i+2 < len(s) {
			if hi, ok1 := hexVal(s[i+1]); ok1 {
				if lo, ok2 := hexVal(s[i+2]); ok2 {
					b.WriteByte(hi<<4 | lo)
					i += 2
					continue
				}
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func hexVal(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
