package diag

import (
	"strings"
	"testing"
)

func TestBagCollectsAndLimits(t *testing.T) {
	bag := NewBag(2)
	Error(bag, "first")
	Warning(bag, "second")
	Note(bag, "third") // over the limit, dropped

	if bag.Len() != 2 {
		t.Fatalf("Len = %d, want 2", bag.Len())
	}
	if !bag.HasErrors() {
		t.Error("HasErrors = false with an error collected")
	}
	items := bag.Items()
	if items[0].Message != "first" || items[0].Severity != SevError {
		t.Errorf("items[0] = %+v", items[0])
	}
}

func TestBagHasErrorsIgnoresWarnings(t *testing.T) {
	bag := NewBag(0)
	Warning(bag, "just a warning")
	Remark(bag, "just a remark")
	if bag.HasErrors() {
		t.Error("HasErrors = true without any error")
	}
}

func TestNilHandlerDropsMessages(t *testing.T) {
	// Must not panic.
	Error(nil, "into the void")
	Note(nil, "also fine")
}

func TestWriterQuiet(t *testing.T) {
	var sb strings.Builder
	w := NewWriter(&sb, false, true)
	Error(w, "kept")
	Warning(w, "kept too")
	Remark(w, "suppressed")
	Note(w, "suppressed")

	out := sb.String()
	if !strings.Contains(out, "ERROR: kept") || !strings.Contains(out, "WARNING: kept too") {
		t.Errorf("errors/warnings missing from quiet output:\n%s", out)
	}
	if strings.Contains(out, "suppressed") {
		t.Errorf("quiet mode leaked low-severity output:\n%s", out)
	}
}

func TestWriterVerbose(t *testing.T) {
	var sb strings.Builder
	w := NewWriter(&sb, false, false)
	Remark(w, "pass did a thing")
	if !strings.Contains(sb.String(), "REMARK: pass did a thing") {
		t.Errorf("remark not rendered:\n%s", sb.String())
	}
}

func TestMultiFanOut(t *testing.T) {
	a := NewBag(0)
	b := NewBag(0)
	m := Multi{a, nil, b}
	Error(m, "broadcast")

	if a.Len() != 1 || b.Len() != 1 {
		t.Errorf("fan-out reached (%d, %d) handlers, want (1, 1)", a.Len(), b.Len())
	}
}

func TestHandlerFunc(t *testing.T) {
	var got Diagnostic
	h := HandlerFunc(func(d Diagnostic) { got = d })
	Warning(h, "adapted")
	if got.Severity != SevWarning || got.Message != "adapted" {
		t.Errorf("got %+v", got)
	}
}
