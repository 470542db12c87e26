package backend

import (
	"strings"
	"testing"
)

const debugFixture = `
target triple = "bpf"

define i32 @entry(i32 %x) !dbg !2 {
	ret i32 %x
}

!llvm.dbg.cu = !{!0}
!custom.notes = !{!3}

!0 = !DIFile(filename: "prog.rs", directory: "src")
!2 = distinct !DISubprogram(name: "entry")
!3 = !{!"keep me"}
`

func TestStripDebugInfo(t *testing.T) {
	ctx := newTestContext(t, nil)
	m := parseModule(t, ctx, "dbg.ll", debugFixture)

	if !ctx.StripDebugInfo(m) {
		t.Fatal("strip reported no change on a module with debug info")
	}

	out := m.String()
	for _, gone := range []string{"llvm.dbg.cu", "DIFile", "DISubprogram", "!dbg"} {
		if strings.Contains(out, gone) {
			t.Errorf("%s survived the strip:\n%s", gone, out)
		}
	}
	if !strings.Contains(out, "custom.notes") || !strings.Contains(out, "keep me") {
		t.Errorf("non-debug metadata lost:\n%s", out)
	}
}

func TestStripDebugInfoIsIdempotent(t *testing.T) {
	ctx := newTestContext(t, nil)
	m := parseModule(t, ctx, "dbg.ll", debugFixture)

	ctx.StripDebugInfo(m)
	first := m.String()
	if ctx.StripDebugInfo(m) {
		t.Error("second strip reported a change")
	}
	if second := m.String(); second != first {
		t.Error("second strip altered the module")
	}
}

func TestStripDebugInfoNoDebug(t *testing.T) {
	ctx := newTestContext(t, nil)
	m := parseModule(t, ctx, "plain.ll", `
define i32 @entry(i32 %x) {
	ret i32 %x
}
`)
	if ctx.StripDebugInfo(m) {
		t.Error("strip reported a change on a debug-free module")
	}
}
