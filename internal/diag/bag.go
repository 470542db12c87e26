package diag

type Bag struct {
	items []Diagnostic
	max   int
}

// NewBag returns a collecting handler that keeps at most max diagnostics.
// max <= 0 means unbounded.
func NewBag(max int) *Bag {
	return &Bag{max: max}
}

// Handle добавляет диагностику, учитывая лимит.
func (b *Bag) Handle(d Diagnostic) {
	if b.max > 0 && len(b.items) >= b.max {
		return
	}
	b.items = append(b.items, d)
}

// HasErrors возвращает true, если есть хотя бы одна диагностика SevError.
func (b *Bag) HasErrors() bool {
	for i := range b.items {
		if b.items[i].Severity == SevError {
			return true
		}
	}
	return false
}

func (b *Bag) Len() int {
	return len(b.items)
}

// Items возвращает read-only slice диагностик.
// ВАЖНО: не модифицируйте возвращаемый срез!
func (b *Bag) Items() []Diagnostic {
	return b.items
}
