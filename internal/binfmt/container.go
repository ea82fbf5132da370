// Package binfmt recognizes and picks apart the handful of executable
// container formats a Rust toolchain can produce — ELF32, ELF64, Mach-O,
// PE/COFF and WASM — far enough to locate one named section by hand,
// without pulling in a full object-file library. It deliberately does not
// use the standard library's debug/elf or debug/macho: those parsers
// allocate freely and are written for well-formed toolchain output, not for
// scanning arbitrary (possibly adversarial, possibly truncated or
// corrupted) binaries handed to an extractor, which is this package's main
// consumer (internal/extract). Every read here is bounds-checked against
// the input slice directly.
package binfmt

import "encoding/binary"

// Container is the closed set of executable formats this package
// recognizes.
type Container uint8

const (
	Unknown Container = iota
	Elf32
	Elf64
	MachO
	PE
	Wasm
)

// SectionName is the name of the section cargo-auditable embeds its SBOM
// payload under, in every container format it supports: a single unified
// name, not the legacy per-format names ("rust-deps-v0", "rdep-v0") some
// older tooling in this ecosystem still documents.
const SectionName = ".dep-v0"

var (
	elfMagic   = [4]byte{0x7f, 'E', 'L', 'F'}
	machMagics = [][4]byte{
		{0xfe, 0xed, 0xfa, 0xce}, // 32-bit big endian
		{0xce, 0xfa, 0xed, 0xfe}, // 32-bit little endian
		{0xfe, 0xed, 0xfa, 0xcf}, // 64-bit big endian
		{0xcf, 0xfa, 0xed, 0xfe}, // 64-bit little endian
	}
	wasmMagic = [4]byte{0x00, 'a', 's', 'm'}
)

// Detect sniffs the container format from a handful of magic bytes, the
// same dispatch binfarce's detect_format performs: a closed switch over
// known magics, Unknown for everything else (never an error by itself —
// callers turn Unknown into ErrNotExecutable where that's the right thing
// to report).
func Detect(data []byte) Container {
	if len(data) >= 4 && data[0] == elfMagic[0] && data[1] == elfMagic[1] && data[2] == elfMagic[2] && data[3] == elfMagic[3] {
		if len(data) < 5 {
			return Unknown
		}
		switch data[4] {
		case 1:
			return Elf32
		case 2:
			return Elf64
		default:
			return Unknown
		}
	}
	if len(data) >= 2 && data[0] == 'M' && data[1] == 'Z' {
		return PE
	}
	if len(data) >= 4 {
		var got [4]byte
		copy(got[:], data[:4])
		for _, m := range machMagics {
			if got == m {
				return MachO
			}
		}
		if got == wasmMagic {
			return Wasm
		}
	}
	return Unknown
}

// Section locates the .dep-v0 section in data and returns its raw bytes
// (a sub-slice of data, never copied). It returns ErrNotExecutable if data
// doesn't match a known container, ErrNoAuditData if the container is
// recognized but carries no such section, and ErrMalformed/ErrUnexpectedEOF
// if the container's own structure doesn't check out.
func Section(data []byte) ([]byte, error) {
	switch Detect(data) {
	case Elf32:
		return elfSection(data, false)
	case Elf64:
		return elfSection(data, true)
	case MachO:
		return machoSection(data)
	case PE:
		return peSection(data)
	case Wasm:
		return wasmSection(data)
	default:
		return nil, ErrNotExecutable
	}
}

// byteOrderOf returns the encoding/binary ByteOrder implied by an ELF or
// Mach-O magic's endianness byte/word, used throughout the per-format
// parsers below.
func byteOrderOf(little bool) binary.ByteOrder {
	if little {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

// slice returns data[off:off+n], bounds-checked, or ErrUnexpectedEOF.
func slice(data []byte, off, n uint64) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	if off > uint64(len(data)) || n > uint64(len(data))-off {
		return nil, ErrUnexpectedEOF
	}
	return data[off : off+n], nil
}

// trimNulPadded returns the string in b up to its first NUL byte (or all of
// b if there is none), for fixed-width NUL-padded name fields (Mach-O
// segname/sectname, COFF section names).
func trimNulPadded(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

// cstring reads a NUL-terminated string starting at off within data.
func cstring(data []byte, off uint64) (string, error) {
	if off > uint64(len(data)) {
		return "", ErrUnexpectedEOF
	}
	rest := data[off:]
	for i, b := range rest {
		if b == 0 {
			return string(rest[:i]), nil
		}
	}
	return "", ErrMalformed
}
