package diag

// Severity defines the importance of a diagnostic. The order mirrors the
// backend's ladder: errors first, notes last.
type Severity uint8

const (
	// SevError is for error diagnostics.
	SevError Severity = iota
	// SevWarning is for warning diagnostics.
	SevWarning
	// SevRemark is for optimization remarks.
	SevRemark
	// SevNote is for informational notes.
	SevNote
)

func (s Severity) String() string {
	switch s {
	case SevError:
		return "ERROR"
	case SevWarning:
		return "WARNING"
	case SevRemark:
		return "REMARK"
	case SevNote:
		return "NOTE"
	}
	return "UNKNOWN"
}
