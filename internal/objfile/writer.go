package objfile

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"fmt"
	"io"

	"fortio.org/safecast"
)

// SymKind classifies a symbol table entry.
type SymKind uint8

const (
	SymFunc SymKind = iota
	SymObject
)

// Symbol is one externally visible symbol recorded in the object.
type Symbol struct {
	Name string
	Kind SymKind
}

// Object describes one relocatable output file.
type Object struct {
	ByteOrder binary.ByteOrder
	Bitcode   []byte
	Symbols   []Symbol
}

const (
	ehdrSize  = 64
	shdrSize  = 64
	symSize   = 24
	sectAlign = 8
)

// Write serializes obj as an ELF64 EM_BPF relocatable.
func Write(w io.Writer, obj *Object) error {
	if obj == nil {
		return fmt.Errorf("missing object")
	}
	bo := obj.ByteOrder
	if bo == nil {
		bo = binary.LittleEndian
	}

	// String tables. Index 0 is the empty name by convention.
	var strtab bytes.Buffer
	strtab.WriteByte(0)
	nameOff := func(tab *bytes.Buffer, name string) (uint32, error) {
		off, err := safecast.Conv[uint32](tab.Len())
		if err != nil {
			return 0, fmt.Errorf("string table overflow: %w", err)
		}
		tab.WriteString(name)
		tab.WriteByte(0)
		return off, nil
	}

	hasBitcode := len(obj.Bitcode) > 0

	// Section order: NULL, [.bpfbc], .symtab, .strtab, .shstrtab.
	var shstrtab bytes.Buffer
	shstrtab.WriteByte(0)
	type section struct {
		hdr  elf.Section64
		body []byte
	}
	sections := []section{{}} // SHT_NULL

	bitcodeIndex := uint16(0)
	if hasBitcode {
		name, err := nameOff(&shstrtab, BitcodeSection)
		if err != nil {
			return err
		}
		bitcodeIndex, err = safecast.Conv[uint16](len(sections))
		if err != nil {
			return fmt.Errorf("too many sections: %w", err)
		}
		sections = append(sections, section{
			hdr: elf.Section64{
				Name:      name,
				Type:      uint32(elf.SHT_PROGBITS),
				Size:      uint64(len(obj.Bitcode)),
				Addralign: 1,
			},
			body: obj.Bitcode,
		})
	}

	// Symbol table: null entry followed by the global symbols.
	var symtab bytes.Buffer
	if err := binary.Write(&symtab, bo, elf.Sym64{}); err != nil {
		return fmt.Errorf("failed to write null symbol: %w", err)
	}
	shndx := uint16(elf.SHN_ABS)
	if hasBitcode {
		shndx = bitcodeIndex
	}
	for _, sym := range obj.Symbols {
		name, err := nameOff(&strtab, sym.Name)
		if err != nil {
			return err
		}
		typ := elf.STT_FUNC
		if sym.Kind == SymObject {
			typ = elf.STT_OBJECT
		}
		entry := elf.Sym64{
			Name:  name,
			Info:  elf.ST_INFO(elf.STB_GLOBAL, typ),
			Shndx: shndx,
		}
		if err := binary.Write(&symtab, bo, entry); err != nil {
			return fmt.Errorf("failed to write symbol %q: %w", sym.Name, err)
		}
	}

	symtabName, err := nameOff(&shstrtab, ".symtab")
	if err != nil {
		return err
	}
	strtabName, err := nameOff(&shstrtab, ".strtab")
	if err != nil {
		return err
	}
	shstrtabName, err := nameOff(&shstrtab, ".shstrtab")
	if err != nil {
		return err
	}

	strtabIndex, err := safecast.Conv[uint32](len(sections) + 1)
	if err != nil {
		return fmt.Errorf("too many sections: %w", err)
	}
	sections = append(sections,
		section{
			hdr: elf.Section64{
				Name: symtabName,
				Type: uint32(elf.SHT_SYMTAB),
				Size: uint64(symtab.Len()),
				Link: strtabIndex,
				// All symbols past the null entry are global.
				Info:      1,
				Addralign: sectAlign,
				Entsize:   symSize,
			},
			body: symtab.Bytes(),
		},
		section{
			hdr: elf.Section64{
				Name:      strtabName,
				Type:      uint32(elf.SHT_STRTAB),
				Size:      uint64(strtab.Len()),
				Addralign: 1,
			},
			body: strtab.Bytes(),
		},
		section{
			hdr: elf.Section64{
				Name:      shstrtabName,
				Type:      uint32(elf.SHT_STRTAB),
				Size:      uint64(shstrtab.Len()),
				Addralign: 1,
			},
			body: shstrtab.Bytes(),
		},
	)

	// Lay out bodies after the header, section header table last.
	offset := uint64(ehdrSize)
	for i := range sections {
		if sections[i].hdr.Type == uint32(elf.SHT_NULL) {
			continue
		}
		offset = align(offset, sections[i].hdr.Addralign)
		sections[i].hdr.Off = offset
		offset += uint64(len(sections[i].body))
	}
	shoff := align(offset, sectAlign)

	shnum, err := safecast.Conv[uint16](len(sections))
	if err != nil {
		return fmt.Errorf("too many sections: %w", err)
	}
	data := elf.ELFDATA2LSB
	if bo == binary.BigEndian {
		data = elf.ELFDATA2MSB
	}
	var ident [16]byte
	copy(ident[:], elfMagic)
	ident[elf.EI_CLASS] = byte(elf.ELFCLASS64)
	ident[elf.EI_DATA] = byte(data)
	ident[elf.EI_VERSION] = byte(elf.EV_CURRENT)
	ehdr := elf.Header64{
		Ident:     ident,
		Type:      uint16(elf.ET_REL),
		Machine:   uint16(elf.EM_BPF),
		Version:   uint32(elf.EV_CURRENT),
		Shoff:     shoff,
		Ehsize:    ehdrSize,
		Shentsize: shdrSize,
		Shnum:     shnum,
		Shstrndx:  shnum - 1,
	}

	var out bytes.Buffer
	if err := binary.Write(&out, bo, ehdr); err != nil {
		return fmt.Errorf("failed to write ELF header: %w", err)
	}
	for i := range sections {
		if sections[i].hdr.Type == uint32(elf.SHT_NULL) {
			continue
		}
		pad(&out, sections[i].hdr.Off)
		out.Write(sections[i].body)
	}
	pad(&out, shoff)
	for i := range sections {
		if err := binary.Write(&out, bo, sections[i].hdr); err != nil {
			return fmt.Errorf("failed to write section header: %w", err)
		}
	}

	if _, err := w.Write(out.Bytes()); err != nil {
		return fmt.Errorf("failed to write object: %w", err)
	}
	return nil
}

func align(off, alignment uint64) uint64 {
	if alignment <= 1 {
		return off
	}
	rem := off % alignment
	if rem == 0 {
		return off
	}
	return off + alignment - rem
}

func pad(buf *bytes.Buffer, target uint64) {
	for uint64(buf.Len()) < target {
		buf.WriteByte(0)
	}
}
