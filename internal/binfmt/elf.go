package binfmt

import "encoding/binary"

const (
	elf32EhdrSize = 52
	elf64EhdrSize = 64
	elf32ShdrSize = 40
	elf64ShdrSize = 64
)

// elfSection locates SectionName in an ELF32 or ELF64 image by walking the
// section header table and resolving names against the section-header
// string table, exactly as readelf/binfarce do — no debug/elf involved.
func elfSection(data []byte, is64 bool) ([]byte, error) {
	if len(data) < 6 {
		return nil, ErrUnexpectedEOF
	}
	order := byteOrderOf(data[5] == 1)

	var shoff, shentsize, shnum, shstrndx uint64
	ehdrSize := elf32EhdrSize
	if is64 {
		ehdrSize = elf64EhdrSize
	}
	hdr, err := slice(data, 0, uint64(ehdrSize))
	if err != nil {
		return nil, err
	}
	if is64 {
		shoff = order.Uint64(hdr[40:48])
		shentsize = uint64(order.Uint16(hdr[58:60]))
		shnum = uint64(order.Uint16(hdr[60:62]))
		shstrndx = uint64(order.Uint16(hdr[62:64]))
	} else {
		shoff = uint64(order.Uint32(hdr[32:36]))
		shentsize = uint64(order.Uint16(hdr[46:48]))
		shnum = uint64(order.Uint16(hdr[48:50]))
		shstrndx = uint64(order.Uint16(hdr[50:52]))
	}
	if shnum == 0 {
		return nil, ErrNoAuditData
	}
	if shstrndx == 0xffff {
		// SHN_XINDEX: the real string table index lives in section[0]'s
		// sh_link. Rare in practice for cargo-built binaries; treat as
		// unsupported rather than mis-parse it.
		return nil, ErrMalformed
	}

	shdrSize := int(shentsize)
	minShdrSize := elf32ShdrSize
	if is64 {
		minShdrSize = elf64ShdrSize
	}
	if shdrSize < minShdrSize {
		return nil, ErrMalformed
	}

	offset, size, err := findELFSection(data, order, is64, shoff, shnum, shstrndx, shdrSize)
	if err != nil {
		return nil, err
	}
	return slice(data, offset, size)
}

func findELFSection(data []byte, order binary.ByteOrder, is64 bool, shoff, shnum, shstrndx uint64, shdrSize int) (offset, size uint64, err error) {
	strtabHdr, err := slice(data, shoff+shstrndx*uint64(shdrSize), uint64(shdrSize))
	if err != nil {
		return 0, 0, err
	}
	var strtabOff, strtabSize uint64
	if is64 {
		strtabOff = order.Uint64(strtabHdr[24:32])
		strtabSize = order.Uint64(strtabHdr[32:40])
	} else {
		strtabOff = uint64(order.Uint32(strtabHdr[16:20]))
		strtabSize = uint64(order.Uint32(strtabHdr[20:24]))
	}
	strtab, err := slice(data, strtabOff, strtabSize)
	if err != nil {
		return 0, 0, err
	}

	for i := uint64(0); i < shnum; i++ {
		shdr, err := slice(data, shoff+i*uint64(shdrSize), uint64(shdrSize))
		if err != nil {
			return 0, 0, err
		}
		nameIdx := uint64(order.Uint32(shdr[0:4]))
		name, err := cstring(strtab, nameIdx)
		if err != nil {
			continue
		}
		if name != SectionName {
			continue
		}
		if is64 {
			return order.Uint64(shdr[24:32]), order.Uint64(shdr[32:40]), nil
		}
		return uint64(order.Uint32(shdr[16:20])), uint64(order.Uint32(shdr[20:24])), nil
	}
	return 0, 0, ErrNoAuditData
}
