package linker

import (
	"strings"
	"testing"

	"github.com/BretasArthur1/bpf-linker/internal/diag"
)

const probestackFixture = `
target triple = "bpf"

module asm ".weak __rust_probestack"
module asm "__rust_probestack:"
module asm "	ret"

define i32 @entry(i32 %x) {
	ret i32 %x
}
`

const benignAsmFixture = `
target triple = "bpf"

module asm ".section maps"

define i32 @entry(i32 %x) {
	ret i32 %x
}
`

func TestSanitizeDropsProbestackAsm(t *testing.T) {
	bag := diag.NewBag(0)
	ctx := newTestContext(t, bag)
	image, err := ctx.ParseIR("probe.ll", []byte(probestackFixture))
	if err != nil {
		t.Fatalf("ParseIR: %v", err)
	}

	l := &Linker{handler: bag, ctx: ctx}
	l.sanitize(image)

	if asm := image.InlineAsm(); asm != "" {
		t.Errorf("module asm not cleared, still %q", asm)
	}
	var noted bool
	for _, d := range bag.Items() {
		if d.Severity == diag.SevNote && strings.Contains(d.Message, "inline assembly") {
			noted = true
		}
	}
	if !noted {
		t.Error("expected a note about removing inline assembly")
	}
}

func TestSanitizeKeepsUnrelatedAsm(t *testing.T) {
	ctx := newTestContext(t, nil)
	image, err := ctx.ParseIR("benign.ll", []byte(benignAsmFixture))
	if err != nil {
		t.Fatalf("ParseIR: %v", err)
	}

	before := image.String()
	l := &Linker{ctx: ctx}
	l.sanitize(image)
	if after := image.String(); after != before {
		t.Error("sanitize changed a module with no probestack marker")
	}
}

const noinlineFixture = `
target triple = "bpf"

define i32 @plain(i32 %x) noinline {
	ret i32 %x
}

define i32 @grouped(i32 %x) #0 {
	ret i32 %x
}

define i32 @untouched(i32 %x) {
	ret i32 %x
}

attributes #0 = { noinline optnone }
`

func TestSanitizeRemovesNoinline(t *testing.T) {
	ctx := newTestContext(t, nil)
	image, err := ctx.ParseIR("noinline.ll", []byte(noinlineFixture))
	if err != nil {
		t.Fatalf("ParseIR: %v", err)
	}

	l := &Linker{ctx: ctx, opts: Options{IgnoreInlineNever: true}}
	l.sanitize(image)

	out := image.String()
	if strings.Contains(out, "noinline") {
		t.Errorf("noinline survived sanitization:\n%s", out)
	}
	// Flattening the attribute group must not discard its other attributes.
	if !strings.Contains(out, "optnone") {
		t.Errorf("optnone lost while removing noinline:\n%s", out)
	}
}

func TestSanitizeKeepsNoinlineByDefault(t *testing.T) {
	ctx := newTestContext(t, nil)
	image, err := ctx.ParseIR("noinline.ll", []byte(noinlineFixture))
	if err != nil {
		t.Fatalf("ParseIR: %v", err)
	}

	l := &Linker{ctx: ctx}
	l.sanitize(image)
	if !strings.Contains(image.String(), "noinline") {
		t.Error("noinline removed without the flag")
	}
}
