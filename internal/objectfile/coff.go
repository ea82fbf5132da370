package objectfile

import (
	"encoding/binary"

	"github.com/rust-secure-code/cargo-auditable-go/internal/targetinfo"
)

const (
	coffMachineAMD64 = 0x8664
	coffMachineI386  = 0x14c
	coffMachineARM64 = 0xaa64
	coffMachineARMNT = 0x1c4

	coffFileHdrSize    = 20
	coffSectionHdrSize = 40
	coffSymbolSize     = 18

	coffSectionChars = 0x40000040 // IMAGE_SCN_CNT_INITIALIZED_DATA | IMAGE_SCN_MEM_READ
	coffSymTypeNull  = 0
	coffStorageExt   = 2 // IMAGE_SYM_CLASS_EXTERNAL
)

func coffMachine(t targetinfo.Target) (uint16, bool) {
	switch t.Arch() {
	case "x86_64":
		return coffMachineAMD64, true
	case "x86":
		return coffMachineI386, true
	case "aarch64":
		return coffMachineARM64, true
	case "arm":
		return coffMachineARMNT, true
	default:
		return 0, false
	}
}

// writeCOFF synthesizes a minimal COFF object file with one section
// (SectionName) and one external symbol defined in it, the shape a COFF
// linker needs to keep the section alive via an undefined reference to the
// symbol — COFF has no "referenced by name" retention trick, hence the
// comment upstream about the symbol mattering "for MachO and probably PE".
func writeCOFF(t targetinfo.Target, payload []byte, symbol string) ([]byte, error) {
	machine, ok := coffMachine(t)
	if !ok {
		return nil, ErrUnsupportedArchitecture
	}
	order := binary.LittleEndian

	rawDataOff := uint32(coffFileHdrSize + coffSectionHdrSize)
	symTableOff := rawDataOff + uint32(len(payload))

	var name [8]byte
	copy(name[:], SectionName) // fits within 8 bytes, no string-table fallback needed

	section := make([]byte, coffSectionHdrSize)
	copy(section[0:8], name[:])
	order.PutUint32(section[16:20], uint32(len(payload))) // SizeOfRawData
	order.PutUint32(section[20:24], rawDataOff)            // PointerToRawData
	order.PutUint32(section[36:40], coffSectionChars)

	// Long symbol names (>8 bytes) go through the string table as
	// "\0\0\0\0"+offset; our symbol names are build-tool-supplied and
	// typically short, but handle the long case rather than truncate it.
	var strtab []byte
	var nameField [8]byte
	if len(symbol) <= 8 {
		copy(nameField[:], symbol)
	} else {
		order.PutUint32(nameField[4:8], uint32(4+len(strtab)))
		strtab = append(strtab, symbol...)
		strtab = append(strtab, 0)
	}

	sym := make([]byte, coffSymbolSize)
	copy(sym[0:8], nameField[:])
	order.PutUint32(sym[8:12], 0)    // Value: offset within the section
	order.PutUint16(sym[12:14], 1)   // SectionNumber: 1-based index of our section
	order.PutUint16(sym[14:16], coffSymTypeNull)
	sym[16] = coffStorageExt
	sym[17] = 0 // NumberOfAuxSymbols

	var buf []byte
	fileHdr := make([]byte, coffFileHdrSize)
	order.PutUint16(fileHdr[0:2], machine)
	order.PutUint16(fileHdr[2:4], 1) // NumberOfSections
	order.PutUint32(fileHdr[8:12], symTableOff)
	order.PutUint32(fileHdr[12:16], 1) // NumberOfSymbols

	buf = append(buf, fileHdr...)
	buf = append(buf, section...)
	buf = append(buf, payload...)
	buf = append(buf, sym...)
	strSize := make([]byte, 4)
	order.PutUint32(strSize, uint32(4+len(strtab)))
	buf = append(buf, strSize...)
	buf = append(buf, strtab...)
	return buf, nil
}
