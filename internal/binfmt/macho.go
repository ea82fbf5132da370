package binfmt

import "encoding/binary"

const machoSegmentSize = 16 // segname/sectname field width, NUL-padded
const (
	machoSegCmd   = 0x1
	machoSegCmd64 = 0x19
)

// machoSection locates SectionName (expected in segment "__DATA", which is
// where object::write::StandardSegment::Data maps to on Mach-O) by walking
// the load command list, matching cargo-auditable's own section placement.
func machoSection(data []byte) ([]byte, error) {
	if len(data) < 8 {
		return nil, ErrUnexpectedEOF
	}
	is64, order, err := machoHeaderKind(data)
	if err != nil {
		return nil, err
	}

	hdrSize := 28
	if is64 {
		hdrSize = 32
	}
	hdr, err := slice(data, 0, uint64(hdrSize))
	if err != nil {
		return nil, err
	}
	ncmds := order.Uint32(hdr[16:20])
	sizeofcmds := order.Uint32(hdr[20:24])

	cmds, err := slice(data, uint64(hdrSize), uint64(sizeofcmds))
	if err != nil {
		return nil, err
	}

	var cursor uint32
	for i := uint32(0); i < ncmds; i++ {
		if uint64(cursor)+8 > uint64(len(cmds)) {
			return nil, ErrMalformed
		}
		cmd := order.Uint32(cmds[cursor : cursor+4])
		cmdsize := order.Uint32(cmds[cursor+4 : cursor+8])
		if cmdsize < 8 || uint64(cursor)+uint64(cmdsize) > uint64(len(cmds)) {
			return nil, ErrMalformed
		}
		body := cmds[cursor : cursor+cmdsize]

		if cmd == machoSegCmd || cmd == machoSegCmd64 {
			section, err := machoSectionInSegment(data, order, body, cmd == machoSegCmd64)
			if err != nil && err != ErrNoAuditData {
				return nil, err
			}
			if section != nil {
				return section, nil
			}
		}
		cursor += cmdsize
	}
	return nil, ErrNoAuditData
}

// machoSectionInSegment scans one LC_SEGMENT/LC_SEGMENT_64 command body for
// SectionName among its sections, returning (nil, ErrNoAuditData) if absent
// rather than stopping the outer walk.
func machoSectionInSegment(data []byte, order binary.ByteOrder, body []byte, is64 bool) ([]byte, error) {
	segHdrSize := 56
	secSize := 68
	if is64 {
		segHdrSize = 72
		secSize = 80
	}
	if len(body) < segHdrSize {
		return nil, ErrMalformed
	}
	nsects := order.Uint32(body[48:52])
	if is64 {
		nsects = order.Uint32(body[64:68])
	}

	off := segHdrSize
	for i := uint32(0); i < nsects; i++ {
		if off+secSize > len(body) {
			return nil, ErrMalformed
		}
		sec := body[off : off+secSize]
		name := trimNulPadded(sec[0:machoSegmentSize])
		var size, fileOff uint64
		if is64 {
			size = order.Uint64(sec[40:48])
			fileOff = uint64(order.Uint32(sec[48:52]))
		} else {
			size = uint64(order.Uint32(sec[36:40]))
			fileOff = uint64(order.Uint32(sec[40:44]))
		}
		if name == SectionName {
			return slice(data, fileOff, size)
		}
		off += secSize
	}
	return nil, ErrNoAuditData
}

// machoHeaderKind decodes the magic's bit-width and byte order directly from
// the raw magic bytes, the same four patterns Detect matches on
// — no arithmetic byte-swapping needed, since each (width, order)
// combination has its own distinct literal byte sequence.
func machoHeaderKind(data []byte) (is64 bool, order binary.ByteOrder, err error) {
	switch [4]byte{data[0], data[1], data[2], data[3]} {
	case [4]byte{0xfe, 0xed, 0xfa, 0xce}:
		return false, binary.BigEndian, nil
	case [4]byte{0xce, 0xfa, 0xed, 0xfe}:
		return false, binary.LittleEndian, nil
	case [4]byte{0xfe, 0xed, 0xfa, 0xcf}:
		return true, binary.BigEndian, nil
	case [4]byte{0xcf, 0xfa, 0xed, 0xfe}:
		return true, binary.LittleEndian, nil
	default:
		return false, nil, ErrMalformed
	}
}
