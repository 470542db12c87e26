package linker

// ExportSet is the allow-list of symbol names that must stay externally
// visible after internalization. Membership is exact-match only.
type ExportSet map[string]struct{}

// NewExportSet builds an export set from a flat list of symbol names.
func NewExportSet(names []string) ExportSet {
	set := make(ExportSet, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set
}

// Contains reports whether name is exported.
func (s ExportSet) Contains(name string) bool {
	_, ok := s[name]
	return ok
}
