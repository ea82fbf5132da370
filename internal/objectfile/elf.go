package objectfile

import (
	"encoding/binary"
	"io"

	"github.com/orcaman/writerseeker"

	"github.com/rust-secure-code/cargo-auditable-go/internal/targetinfo"
)

// writeELF synthesizes a minimal ELF relocatable object file carrying one
// read-only data section (SectionName) and one global data symbol pointing
// at it, the same shape `object::write::Object` produces for
// `create_metadata_file` upstream: section data first, then string/symbol
// tables, then the section header table, with the ELF header itself
// written twice — a zeroed placeholder up front, then patched in place
// once the section header offset is known. That two-pass shape is why this
// writer, like writeMachO, uses a seekable buffer rather than a single
// append-only one.
func writeELF(t targetinfo.Target, triple string, payload []byte, symbol string) ([]byte, error) {
	machine, is64, ok := elfMachine(t)
	if !ok {
		return nil, ErrUnsupportedArchitecture
	}
	order := binary.ByteOrder(binary.LittleEndian)
	if t.Endian() == "big" {
		order = binary.BigEndian
	}

	ehdrSize := 52
	shdrSize := 40
	symSize := 16
	if is64 {
		ehdrSize = 64
		shdrSize = 64
		symSize = 24
	}

	var shstrtab stringTable
	shstrtab.add("") // index 0 is always the empty string
	nameDep := shstrtab.add(SectionName)
	nameSymtab := shstrtab.add(".symtab")
	nameStrtab := shstrtab.add(".strtab")
	nameShstrtab := shstrtab.add(".shstrtab")

	var strtab stringTable
	strtab.add("")
	nameSymbol := strtab.add(symbol)

	ws := &writerseeker.WriterSeeker{}
	if _, err := ws.Write(make([]byte, ehdrSize)); err != nil {
		return nil, err
	}

	depOff := uint64(ehdrSize)
	if _, err := ws.Write(payload); err != nil {
		return nil, err
	}

	symtabOff := depOff + uint64(len(payload))
	// index 1 is the .dep-v0 section in the section header list built
	// below (0 is the NULL section header).
	const depSectionIndex = 1
	symtab := make([]byte, 0, 2*symSize)
	symtab = appendSymbol(symtab, order, is64, 0, 0, 0, 0, 0)
	symtab = appendSymbol(symtab, order, is64, nameSymbol, 0, uint64(len(payload)), depSectionIndex, elfSTB_GLOBAL<<4|elfSTT_OBJECT)
	if _, err := ws.Write(symtab); err != nil {
		return nil, err
	}

	strtabOff := symtabOff + uint64(len(symtab))
	if _, err := ws.Write(strtab.bytes()); err != nil {
		return nil, err
	}

	shstrtabOff := strtabOff + uint64(strtab.len())
	if _, err := ws.Write(shstrtab.bytes()); err != nil {
		return nil, err
	}

	shoff := shstrtabOff + uint64(shstrtab.len())
	shdrs := make([]byte, 0, 4*shdrSize)
	// [0] NULL
	shdrs = appendShdr(shdrs, order, is64, 0, 0, 0, 0, 0, 0, 0)
	// [1] .dep-v0: SHT_PROGBITS(1), no SHF_ALLOC (sh_flags=0, matching
	// "explicitly set no flags" upstream).
	shdrs = appendShdr(shdrs, order, is64, nameDep, 1, 0, depOff, uint64(len(payload)), 0, 1)
	// [2] .symtab: SHT_SYMTAB(2), sh_link -> .strtab index, sh_info ->
	// one past the last local symbol (only the null symbol at index 0 is
	// local, so 1).
	shdrs = appendShdr(shdrs, order, is64, nameSymtab, 2, 0, symtabOff, uint64(len(symtab)), 3, 1)
	// [3] .strtab: SHT_STRTAB(3)
	shdrs = appendShdr(shdrs, order, is64, nameStrtab, 3, 0, strtabOff, uint64(strtab.len()), 0, 0)
	// [4] .shstrtab: SHT_STRTAB(3)
	shdrs = appendShdr(shdrs, order, is64, nameShstrtab, 3, 0, shstrtabOff, uint64(shstrtab.len()), 0, 0)
	if _, err := ws.Write(shdrs); err != nil {
		return nil, err
	}

	ehdr := buildELFHeader(order, is64, machine, elfOSABI(t), elfFlags(machine, triple, t), uint64(ehdrSize), shoff, uint16(shdrSize), 5, 4)
	if _, err := ws.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	if _, err := ws.Write(ehdr); err != nil {
		return nil, err
	}

	r, err := ws.Reader()
	if err != nil {
		return nil, err
	}
	return io.ReadAll(r)
}

const (
	elfSTB_GLOBAL = 1
	elfSTT_OBJECT = 1
)

func buildELFHeader(order binary.ByteOrder, is64 bool, machine uint16, osABI byte, flags uint32, ehdrSize, shoff uint64, shentsize, shnum, shstrndx uint16) []byte {
	size := 52
	if is64 {
		size = 64
	}
	b := make([]byte, size)
	b[0], b[1], b[2], b[3] = 0x7f, 'E', 'L', 'F'
	if is64 {
		b[4] = 2
	} else {
		b[4] = 1
	}
	if order == binary.BigEndian {
		b[5] = 2
	} else {
		b[5] = 1
	}
	b[6] = 1 // EV_CURRENT
	b[7] = osABI
	// e_type = ET_REL(1)
	order.PutUint16(b[16:18], 1)
	order.PutUint16(b[18:20], machine)
	order.PutUint32(b[20:24], 1) // e_version

	if is64 {
		order.PutUint64(b[40:48], shoff)
		order.PutUint32(b[48:52], flags)
		order.PutUint16(b[52:54], uint16(ehdrSize))
		order.PutUint16(b[58:60], shentsize)
		order.PutUint16(b[60:62], shnum)
		order.PutUint16(b[62:64], shstrndx)
	} else {
		order.PutUint32(b[32:36], uint32(shoff))
		order.PutUint32(b[36:40], flags)
		order.PutUint16(b[40:42], uint16(ehdrSize))
		order.PutUint16(b[46:48], shentsize)
		order.PutUint16(b[48:50], shnum)
		order.PutUint16(b[50:52], shstrndx)
	}
	return b
}

func appendShdr(b []byte, order binary.ByteOrder, is64 bool, name uint32, typ uint32, flags, offset, size uint64, link, info uint32) []byte {
	if is64 {
		entry := make([]byte, 64)
		order.PutUint32(entry[0:4], name)
		order.PutUint32(entry[4:8], typ)
		order.PutUint64(entry[8:16], flags)
		order.PutUint64(entry[24:32], offset)
		order.PutUint64(entry[32:40], size)
		order.PutUint32(entry[40:44], link)
		order.PutUint32(entry[44:48], info)
		order.PutUint64(entry[48:56], 1) // sh_addralign
		return append(b, entry...)
	}
	entry := make([]byte, 40)
	order.PutUint32(entry[0:4], name)
	order.PutUint32(entry[4:8], typ)
	order.PutUint32(entry[8:12], uint32(flags))
	order.PutUint32(entry[16:20], uint32(offset))
	order.PutUint32(entry[20:24], uint32(size))
	order.PutUint32(entry[24:28], link)
	order.PutUint32(entry[28:32], info)
	order.PutUint32(entry[32:36], 1)
	return append(b, entry...)
}

func appendSymbol(b []byte, order binary.ByteOrder, is64 bool, name uint32, value, size uint64, shndx uint16, info byte) []byte {
	if is64 {
		entry := make([]byte, 24)
		order.PutUint32(entry[0:4], name)
		entry[4] = info
		order.PutUint16(entry[6:8], shndx)
		order.PutUint64(entry[8:16], value)
		order.PutUint64(entry[16:24], size)
		return append(b, entry...)
	}
	entry := make([]byte, 16)
	order.PutUint32(entry[0:4], name)
	order.PutUint32(entry[4:8], uint32(value))
	order.PutUint32(entry[8:12], uint32(size))
	entry[12] = info
	order.PutUint16(entry[14:16], shndx)
	return append(b, entry...)
}

// stringTable accumulates a NUL-terminated string table, returning each
// added string's byte offset for use as an sh_name/st_name index.
type stringTable struct {
	buf []byte
}

func (s *stringTable) add(str string) uint32 {
	off := uint32(len(s.buf))
	s.buf = append(s.buf, str...)
	s.buf = append(s.buf, 0)
	return off
}

func (s *stringTable) bytes() []byte { return s.buf }
func (s *stringTable) len() int      { return len(s.buf) }
