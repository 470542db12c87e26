package diag

// Diagnostic is one severity-tagged message. Diagnostics are ephemeral:
// produced and consumed within a single backend call, never persisted.
type Diagnostic struct {
	Severity Severity
	Message  string
}

// Handler — минимальный контракт получения диагностик от бэкенда.
// Реализации: Bag (кладёт в слайс), Writer (печатает), Multi (fan-out).
type Handler interface {
	Handle(d Diagnostic)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(d Diagnostic)

// Handle calls f(d).
func (f HandlerFunc) Handle(d Diagnostic) { f(d) }

// Error reports an error diagnostic to h. A nil h drops the message.
func Error(h Handler, msg string) {
	report(h, SevError, msg)
}

// Warning reports a warning diagnostic to h.
func Warning(h Handler, msg string) {
	report(h, SevWarning, msg)
}

// Remark reports an optimization remark to h.
func Remark(h Handler, msg string) {
	report(h, SevRemark, msg)
}

// Note reports an informational note to h.
func Note(h Handler, msg string) {
	report(h, SevNote, msg)
}

func report(h Handler, sev Severity, msg string) {
	if h == nil {
		return
	}
	h.Handle(Diagnostic{Severity: sev, Message: msg})
}

// Multi fans a diagnostic out to every handler in order.
type Multi []Handler

func (m Multi) Handle(d Diagnostic) {
	for _, h := range m {
		if h != nil {
			h.Handle(d)
		}
	}
}
