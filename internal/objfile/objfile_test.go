package objfile

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"testing"
)

func TestWriteAndRediscoverBitcode(t *testing.T) {
	payload := []byte("BPFBC\x00fake payload for section round trip")
	var buf bytes.Buffer
	err := Write(&buf, &Object{
		ByteOrder: binary.LittleEndian,
		Bitcode:   payload,
		Symbols: []Symbol{
			{Name: "test_x", Kind: SymFunc},
			{Name: "counter", Kind: SymObject},
		},
	})
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	data := buf.Bytes()
	if !IsObject(data) {
		t.Fatal("written object does not start with the ELF magic")
	}

	got, err := EmbeddedBitcode(data)
	if err != nil {
		t.Fatalf("EmbeddedBitcode failed: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("embedded bitcode mismatch:\ngot:  %q\nwant: %q", got, payload)
	}
}

func TestWrittenObjectIsWellFormed(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, &Object{
		Bitcode: []byte("contents"),
		Symbols: []Symbol{{Name: "entry", Kind: SymFunc}},
	})
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	f, err := elf.NewFile(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("debug/elf rejected the output: %v", err)
	}
	defer f.Close()

	if f.Machine != elf.EM_BPF {
		t.Errorf("machine = %v, want EM_BPF", f.Machine)
	}
	if f.Type != elf.ET_REL {
		t.Errorf("type = %v, want ET_REL", f.Type)
	}
	syms, err := f.Symbols()
	if err != nil {
		t.Fatalf("failed to read symbol table: %v", err)
	}
	if len(syms) != 1 {
		t.Fatalf("symbol count = %d, want 1", len(syms))
	}
	if syms[0].Name != "entry" {
		t.Errorf("symbol name = %q, want %q", syms[0].Name, "entry")
	}
	if elf.ST_BIND(syms[0].Info) != elf.STB_GLOBAL {
		t.Errorf("symbol binding = %v, want STB_GLOBAL", elf.ST_BIND(syms[0].Info))
	}
}

func TestObjectWithoutBitcodeSection(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, &Object{
		Symbols: []Symbol{{Name: "opaque", Kind: SymFunc}},
	})
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	got, err := EmbeddedBitcode(buf.Bytes())
	if err != nil {
		t.Fatalf("EmbeddedBitcode failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected no embedded bitcode, got %d bytes", len(got))
	}
}

func TestEmbeddedBitcodeRejectsGarbage(t *testing.T) {
	if _, err := EmbeddedBitcode([]byte("\x7fELF but truncated")); err == nil {
		t.Error("expected an error for a malformed object file")
	}
}

func TestIsObject(t *testing.T) {
	if IsObject([]byte("define i32 @f()")) {
		t.Error("textual IR misclassified as an object file")
	}
	if !IsObject([]byte{0x7f, 'E', 'L', 'F', 0, 0}) {
		t.Error("ELF magic not recognized")
	}
}
