package objectfile

import (
	"encoding/binary"
	"io"

	"github.com/orcaman/writerseeker"

	"github.com/rust-secure-code/cargo-auditable-go/internal/targetinfo"
)

const (
	machoCPUX86_64  = 0x01000007
	machoCPUARM64   = 0x0100000c
	machoSubAll     = 0
	machoSubX86All  = 3
	machoFiletypeObj = 0x1
	machoLCSegment64 = 0x19
	machoLCSymtab    = 0x2
	machoSTSectDep   = 1 // n_sect: first (and only) section defined
)

func machoCPUType(t targetinfo.Target) (cputype, cpusubtype uint32, ok bool) {
	switch t.Arch() {
	case "x86_64":
		return machoCPUX86_64, machoSubX86All, true
	case "aarch64":
		return machoCPUARM64, machoSubAll, true
	default:
		return 0, 0, false
	}
}

// writeMachO synthesizes a minimal MH_OBJECT Mach-O file: one __DATA
// segment holding SectionName, and one exported symbol pointing at it via
// an LC_SYMTAB load command — matching where
// `object::write::StandardSegment::Data` places the section upstream.
func writeMachO(t targetinfo.Target, payload []byte, symbol string) ([]byte, error) {
	cputype, cpusubtype, ok := machoCPUType(t)
	if !ok {
		return nil, ErrUnsupportedArchitecture
	}
	order := binary.LittleEndian // Apple targets are all little-endian today

	const hdrSize = 32
	const segCmdSize = 72
	const sectSize = 80
	const symtabCmdSize = 24
	sizeofcmds := segCmdSize + sectSize + symtabCmdSize
	ncmds := 2

	// Mach-O C-level symbol names carry a leading underscore, which is the
	// name the driver's `-u,_<symbol>` retention flag refers to.
	var strtab stringTable
	strtab.add("")
	nameSymbol := strtab.add("_" + symbol)

	ws := &writerseeker.WriterSeeker{}
	if _, err := ws.Write(make([]byte, hdrSize+sizeofcmds)); err != nil {
		return nil, err
	}

	sectionOff := uint64(hdrSize + sizeofcmds)
	if _, err := ws.Write(payload); err != nil {
		return nil, err
	}

	symOff := sectionOff + uint64(len(payload))
	sym := make([]byte, 16)
	order.PutUint32(sym[0:4], nameSymbol)
	sym[4] = 0x0f // N_SECT | N_EXT (external, defined in a section)
	sym[5] = machoSTSectDep
	order.PutUint64(sym[8:16], 0) // n_value: offset within the section
	if _, err := ws.Write(sym); err != nil {
		return nil, err
	}

	strOff := symOff + uint64(len(sym))
	if _, err := ws.Write(strtab.bytes()); err != nil {
		return nil, err
	}

	if _, err := ws.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	header := make([]byte, hdrSize)
	order.PutUint32(header[0:4], 0xfeedfacf) // MH_MAGIC_64
	order.PutUint32(header[4:8], cputype)
	order.PutUint32(header[8:12], cpusubtype)
	order.PutUint32(header[12:16], machoFiletypeObj)
	order.PutUint32(header[16:20], uint32(ncmds))
	order.PutUint32(header[20:24], uint32(sizeofcmds))
	if _, err := ws.Write(header); err != nil {
		return nil, err
	}

	seg := make([]byte, segCmdSize)
	order.PutUint32(seg[0:4], machoLCSegment64)
	order.PutUint32(seg[4:8], segCmdSize+sectSize)
	copy(seg[8:24], "__DATA")
	// vmaddr/vmsize left 0: this is a relocatable object, not a loaded image.
	order.PutUint64(seg[40:48], sectionOff) // fileoff
	order.PutUint64(seg[48:56], uint64(len(payload)))
	order.PutUint32(seg[64:68], 1) // nsects
	if _, err := ws.Write(seg); err != nil {
		return nil, err
	}

	sect := make([]byte, sectSize)
	copy(sect[0:16], SectionName)
	copy(sect[16:32], "__DATA")
	order.PutUint64(sect[32:40], 0) // addr
	order.PutUint64(sect[40:48], uint64(len(payload)))
	order.PutUint32(sect[48:52], uint32(sectionOff))
	if _, err := ws.Write(sect); err != nil {
		return nil, err
	}

	symtabCmd := make([]byte, symtabCmdSize)
	order.PutUint32(symtabCmd[0:4], machoLCSymtab)
	order.PutUint32(symtabCmd[4:8], symtabCmdSize)
	order.PutUint32(symtabCmd[8:12], uint32(symOff))
	order.PutUint32(symtabCmd[12:16], 1) // nsyms
	order.PutUint32(symtabCmd[16:20], uint32(strOff))
	order.PutUint32(symtabCmd[20:24], uint32(strtab.len()))
	if _, err := ws.Write(symtabCmd); err != nil {
		return nil, err
	}

	r, err := ws.Reader()
	if err != nil {
		return nil, err
	}
	return io.ReadAll(r)
}
