// Package objfile reads and writes the linker's ELF object containers.
//
// Objects produced by this toolchain are ELF64 relocatables for the BPF
// machine. The final program image travels in a .bpfbc section so that an
// emitted object can be fed back into a later link; the symbol table lists
// the externally visible symbols that survived internalization.
package objfile

import (
	"bytes"
	"debug/elf"
	"fmt"
)

// BitcodeSection is the name of the embedded-bitcode section.
const BitcodeSection = ".bpfbc"

var elfMagic = []byte{0x7f, 'E', 'L', 'F'}

// IsObject reports whether data starts with the ELF magic.
func IsObject(data []byte) bool {
	return bytes.HasPrefix(data, elfMagic)
}

// EmbeddedBitcode scans an object file for the embedded-bitcode section and
// returns its contents. A missing section is not an error: the result is
// (nil, nil) and the object simply carries no IR.
func EmbeddedBitcode(data []byte) ([]byte, error) {
	f, err := elf.NewFile(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to read object file: %w", err)
	}
	defer f.Close()
	for _, s := range f.Sections {
		if s.Name != BitcodeSection {
			continue
		}
		contents, err := s.Data()
		if err != nil {
			return nil, fmt.Errorf("failed to read section %s: %w", BitcodeSection, err)
		}
		return contents, nil
	}
	return nil, nil
}
