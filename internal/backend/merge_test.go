package backend

import (
	"strings"
	"testing"

	"github.com/BretasArthur1/bpf-linker/internal/diag"
)

func newTestContext(t *testing.T, h diag.Handler) *Context {
	t.Helper()
	Init(nil)
	ctx, err := NewContext(h)
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	t.Cleanup(ctx.Close)
	return ctx
}

func parseModule(t *testing.T, ctx *Context, name, src string) *Module {
	t.Helper()
	m, err := ctx.ParseIR(name, []byte(src))
	if err != nil {
		t.Fatalf("ParseIR(%s): %v", name, err)
	}
	return m
}

func TestMergeResolvesDeclarations(t *testing.T) {
	bag := diag.NewBag(0)
	ctx := newTestContext(t, bag)
	dst := parseModule(t, ctx, "a.ll", `
declare i32 @helper(i32)

define i32 @entry(i32 %x) {
	%r = call i32 @helper(i32 %x)
	ret i32 %r
}
`)
	src := parseModule(t, ctx, "b.ll", `
define i32 @helper(i32 %x) {
	ret i32 %x
}
`)

	if !ctx.Merge(dst, src) {
		t.Fatalf("Merge failed: %v", bag.Items())
	}
	sym, ok := dst.Lookup("helper")
	if !ok {
		t.Fatal("helper missing after merge")
	}
	if !sym.HasBody() {
		t.Error("declaration not resolved by the fragment's definition")
	}
	// Exactly one helper survives.
	if n := strings.Count(dst.String(), "@helper"); n != 2 { // definition header + call site
		t.Errorf("unexpected @helper occurrences in merged module: %d\n%s", n, dst.String())
	}
}

func TestMergeRejectsDuplicateDefinitions(t *testing.T) {
	bag := diag.NewBag(0)
	ctx := newTestContext(t, bag)
	def := `
define i32 @helper(i32 %x) {
	ret i32 %x
}
`
	dst := parseModule(t, ctx, "a.ll", def)
	src := parseModule(t, ctx, "b.ll", def)

	if ctx.Merge(dst, src) {
		t.Fatal("merge of duplicate definitions succeeded")
	}
	var reported bool
	for _, d := range bag.Items() {
		if d.Severity == diag.SevError && strings.Contains(d.Message, "duplicate definition of helper") {
			reported = true
		}
	}
	if !reported {
		t.Errorf("failure reason not reported, got %v", bag.Items())
	}
}

func TestMergeRejectsKindCollisions(t *testing.T) {
	bag := diag.NewBag(0)
	ctx := newTestContext(t, bag)
	dst := parseModule(t, ctx, "a.ll", `@thing = global i32 1`)
	src := parseModule(t, ctx, "b.ll", `
define i32 @thing() {
	ret i32 0
}
`)
	if ctx.Merge(dst, src) {
		t.Fatal("merge across symbol kinds succeeded")
	}
	if !bag.HasErrors() {
		t.Error("kind collision produced no error diagnostic")
	}
}

func TestMergeTripleAndLayout(t *testing.T) {
	bag := diag.NewBag(0)
	ctx := newTestContext(t, bag)
	dst := ctx.NewModule("image")
	src := parseModule(t, ctx, "a.ll", `
target triple = "bpf"

define i32 @f(i32 %x) {
	ret i32 %x
}
`)
	if !ctx.Merge(dst, src) {
		t.Fatalf("Merge failed: %v", bag.Items())
	}
	if got := dst.TargetTriple(); got != "bpf" {
		t.Errorf("triple = %q, want bpf (first non-empty wins)", got)
	}

	other := parseModule(t, ctx, "b.ll", `
target triple = "bpfeb"

define i32 @g(i32 %x) {
	ret i32 %x
}
`)
	if !ctx.Merge(dst, other) {
		t.Fatalf("second merge failed: %v", bag.Items())
	}
	if got := dst.TargetTriple(); got != "bpf" {
		t.Errorf("triple = %q after conflicting merge, want bpf", got)
	}
	var warned bool
	for _, d := range bag.Items() {
		if d.Severity == diag.SevWarning && strings.Contains(d.Message, "triple") {
			warned = true
		}
	}
	if !warned {
		t.Error("conflicting triples produced no warning")
	}
}

func TestMergeRenumbersAttributeGroups(t *testing.T) {
	bag := diag.NewBag(0)
	ctx := newTestContext(t, bag)
	dst := parseModule(t, ctx, "a.ll", `
define i32 @f(i32 %x) #0 {
	ret i32 %x
}

attributes #0 = { noinline }
`)
	src := parseModule(t, ctx, "b.ll", `
define i32 @g(i32 %x) #0 {
	ret i32 %x
}

attributes #0 = { optnone }
`)
	if !ctx.Merge(dst, src) {
		t.Fatalf("Merge failed: %v", bag.Items())
	}
	out := dst.String()
	if !strings.Contains(out, "attributes #0") || !strings.Contains(out, "attributes #1") {
		t.Errorf("attribute groups not renumbered:\n%s", out)
	}
	if !strings.Contains(out, "noinline") || !strings.Contains(out, "optnone") {
		t.Errorf("attribute group contents lost:\n%s", out)
	}
}

func TestMergeReleasesSource(t *testing.T) {
	ctx := newTestContext(t, nil)
	dst := ctx.NewModule("image")
	src := parseModule(t, ctx, "a.ll", `
define i32 @f(i32 %x) {
	ret i32 %x
}
`)
	if !ctx.Merge(dst, src) {
		t.Fatal("Merge failed")
	}
	defer func() {
		if recover() == nil {
			t.Error("using a merged-away module did not panic")
		}
	}()
	_ = src.Name()
}
