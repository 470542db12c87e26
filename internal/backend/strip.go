package backend

import (
	"strings"

	"github.com/llir/llvm/ir/metadata"
)

// StripDebugInfo removes all debug metadata from the module: llvm.dbg named
// metadata, debug-info metadata definitions and !dbg attachments on
// functions and globals. Reports whether anything was removed; running it
// again is a no-op.
func (c *Context) StripDebugInfo(m *Module) bool {
	defer guardFatal()
	m.ensureLive()
	changed := false

	for name := range m.m.NamedMetadataDefs {
		if strings.HasPrefix(name, "llvm.dbg") {
			delete(m.m.NamedMetadataDefs, name)
			changed = true
		}
	}

	for _, f := range m.m.Funcs {
		var dropped bool
		f.Metadata, dropped = dropDbgAttachments(f.Metadata)
		changed = changed || dropped
	}
	for _, g := range m.m.Globals {
		var dropped bool
		g.Metadata, dropped = dropDbgAttachments(g.Metadata)
		changed = changed || dropped
	}

	kept := m.m.MetadataDefs[:0]
	for _, def := range m.m.MetadataDefs {
		if isDebugNode(def) {
			changed = true
			continue
		}
		kept = append(kept, def)
	}
	m.m.MetadataDefs = kept
	if changed {
		renumberMetadata(m.m)
	}
	return changed
}

func dropDbgAttachments(atts []*metadata.Attachment) ([]*metadata.Attachment, bool) {
	changed := false
	kept := atts[:0]
	for _, att := range atts {
		if att.Name == "dbg" {
			changed = true
			continue
		}
		kept = append(kept, att)
	}
	if !changed {
		return atts, false
	}
	return kept, true
}

func isDebugNode(def metadata.Definition) bool {
	switch def.(type) {
	case *metadata.DIBasicType,
		*metadata.DICompileUnit,
		*metadata.DICompositeType,
		*metadata.DIDerivedType,
		*metadata.DIEnumerator,
		*metadata.DIExpression,
		*metadata.DIFile,
		*metadata.DIGlobalVariable,
		*metadata.DIGlobalVariableExpression,
		*metadata.DIImportedEntity,
		*metadata.DILabel,
		*metadata.DILexicalBlock,
		*metadata.DILexicalBlockFile,
		*metadata.DILocalVariable,
		*metadata.DILocation,
		*metadata.DIModule,
		*metadata.DINamespace,
		*metadata.DISubprogram,
		*metadata.DISubrange,
		*metadata.DISubroutineType:
		return true
	}
	return false
}
