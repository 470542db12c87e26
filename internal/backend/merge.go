package backend

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/metadata"

	"github.com/BretasArthur1/bpf-linker/internal/diag"
)

// Merge links src into dst under one-definition semantics and reports the
// boolean outcome; the failure reason travels through the diagnostic
// handler, not a structured error. On success src's contents belong to dst
// and the src handle must not be used again.
func (c *Context) Merge(dst, src *Module) bool {
	defer guardFatal()
	dst.ensureLive()
	src.ensureLive()
	if err := mergeModules(dst.m, src.m, c.handler); err != nil {
		diag.Error(c.handler, fmt.Sprintf("cannot link %s: %v", src.Name(), err))
		return false
	}
	src.release()
	return true
}

type symbolKind uint8

const (
	symGlobal symbolKind = iota
	symAlias
	symFunc
)

func (k symbolKind) String() string {
	switch k {
	case symGlobal:
		return "global variable"
	case symAlias:
		return "alias"
	default:
		return "function"
	}
}

func mergeModules(dst, src *ir.Module, h diag.Handler) error {
	// Target identity: first non-empty wins, disagreement is suspicious but
	// not fatal (the frontends may record normalized variants).
	switch {
	case dst.TargetTriple == "":
		dst.TargetTriple = src.TargetTriple
	case src.TargetTriple != "" && src.TargetTriple != dst.TargetTriple:
		diag.Warning(h, fmt.Sprintf("linking module with triple %q into module with triple %q", src.TargetTriple, dst.TargetTriple))
	}
	switch {
	case dst.DataLayout == "":
		dst.DataLayout = src.DataLayout
	case src.DataLayout != "" && src.DataLayout != dst.DataLayout:
		diag.Warning(h, "linking modules with differing data layouts")
	}
	if dst.SourceFilename == "" {
		dst.SourceFilename = src.SourceFilename
	}

	kinds := make(map[string]symbolKind)
	globalIdx := make(map[string]int)
	funcIdx := make(map[string]int)
	aliasIdx := make(map[string]int)
	for i, g := range dst.Globals {
		if name := g.Name(); name != "" {
			kinds[name] = symGlobal
			globalIdx[name] = i
		}
	}
	for i, a := range dst.Aliases {
		if name := a.Name(); name != "" {
			kinds[name] = symAlias
			aliasIdx[name] = i
		}
	}
	for i, f := range dst.Funcs {
		if name := f.Name(); name != "" {
			kinds[name] = symFunc
			funcIdx[name] = i
		}
	}

	checkKind := func(name string, want symbolKind) error {
		if have, ok := kinds[name]; ok && have != want {
			return fmt.Errorf("symbol %s redefined as a different kind (%s vs %s)", name, want, have)
		}
		return nil
	}

	for _, g := range src.Globals {
		name := g.Name()
		if name == "" {
			dst.Globals = append(dst.Globals, g)
			continue
		}
		if err := checkKind(name, symGlobal); err != nil {
			return err
		}
		i, exists := globalIdx[name]
		switch {
		case !exists:
			globalIdx[name] = len(dst.Globals)
			kinds[name] = symGlobal
			dst.Globals = append(dst.Globals, g)
		case dst.Globals[i].Init != nil && g.Init != nil:
			return fmt.Errorf("duplicate definition of %s", name)
		case dst.Globals[i].Init == nil && g.Init != nil:
			// Declaration resolved by this fragment's definition.
			dst.Globals[i] = g
		}
	}

	for _, a := range src.Aliases {
		name := a.Name()
		if name == "" {
			dst.Aliases = append(dst.Aliases, a)
			continue
		}
		if err := checkKind(name, symAlias); err != nil {
			return err
		}
		if _, exists := aliasIdx[name]; exists {
			return fmt.Errorf("duplicate definition of %s", name)
		}
		aliasIdx[name] = len(dst.Aliases)
		kinds[name] = symAlias
		dst.Aliases = append(dst.Aliases, a)
	}

	for _, f := range src.Funcs {
		name := f.Name()
		if name == "" {
			dst.Funcs = append(dst.Funcs, f)
			continue
		}
		if err := checkKind(name, symFunc); err != nil {
			return err
		}
		i, exists := funcIdx[name]
		switch {
		case !exists:
			funcIdx[name] = len(dst.Funcs)
			kinds[name] = symFunc
			dst.Funcs = append(dst.Funcs, f)
		case len(dst.Funcs[i].Blocks) > 0 && len(f.Blocks) > 0:
			return fmt.Errorf("duplicate definition of %s", name)
		case len(dst.Funcs[i].Blocks) == 0 && len(f.Blocks) > 0:
			dst.Funcs[i] = f
		}
	}

	// Type definitions: the image's definition wins on a name collision.
	seenTypes := make(map[string]bool)
	for _, t := range dst.TypeDefs {
		if nt, ok := t.(interface{ Name() string }); ok {
			seenTypes[nt.Name()] = true
		}
	}
	for _, t := range src.TypeDefs {
		if nt, ok := t.(interface{ Name() string }); ok && seenTypes[nt.Name()] {
			continue
		}
		dst.TypeDefs = append(dst.TypeDefs, t)
	}

	dst.ComdatDefs = append(dst.ComdatDefs, src.ComdatDefs...)
	dst.ModuleAsms = append(dst.ModuleAsms, src.ModuleAsms...)

	// Attribute groups and metadata keep pointer identity across the merge;
	// only their printed IDs must be made unique again.
	dst.AttrGroupDefs = append(dst.AttrGroupDefs, src.AttrGroupDefs...)
	for i, g := range dst.AttrGroupDefs {
		g.ID = int64(i)
	}
	dst.MetadataDefs = append(dst.MetadataDefs, src.MetadataDefs...)
	renumberMetadata(dst)

	if len(src.NamedMetadataDefs) > 0 && dst.NamedMetadataDefs == nil {
		dst.NamedMetadataDefs = make(map[string]*metadata.NamedDef)
	}
	for name, def := range src.NamedMetadataDefs {
		if have, ok := dst.NamedMetadataDefs[name]; ok {
			have.Nodes = append(have.Nodes, def.Nodes...)
			continue
		}
		dst.NamedMetadataDefs[name] = def
	}
	return nil
}

func renumberMetadata(m *ir.Module) {
	for i, def := range m.MetadataDefs {
		def.SetID(int64(i))
	}
}
