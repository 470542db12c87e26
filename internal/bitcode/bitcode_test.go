package bitcode

import (
	"bytes"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	ir := []byte("target triple = \"bpf\"\n\ndefine i32 @f() {\nentry:\n  ret i32 0\n}\n")
	buf, err := Encode(ir)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if !Is(buf) {
		t.Fatal("encoded buffer does not carry the bitcode magic")
	}
	got, err := Decode(buf)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !bytes.Equal(got, ir) {
		t.Errorf("round trip mismatch:\ngot:  %q\nwant: %q", got, ir)
	}
}

func TestIsRejectsOtherData(t *testing.T) {
	cases := [][]byte{
		nil,
		[]byte(""),
		[]byte("define i32 @f() { ret i32 0 }"),
		[]byte("\x7fELF junk"),
		[]byte("BPFB"), // shorter than the magic
	}
	for _, data := range cases {
		if Is(data) {
			t.Errorf("Is(%q) = true, want false", data)
		}
	}
}

func TestDecodeRejectsBadInput(t *testing.T) {
	if _, err := Decode([]byte("not bitcode at all")); err == nil {
		t.Error("Decode accepted a buffer without magic")
	}
	// Magic followed by garbage must fail at the payload layer.
	bad := append(append([]byte{}, Magic...), 0xff, 0x00, 0x13)
	if _, err := Decode(bad); err == nil {
		t.Error("Decode accepted a corrupt payload")
	}
}
