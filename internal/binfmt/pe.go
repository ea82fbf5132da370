package binfmt

import "encoding/binary"

const (
	peSignatureOffsetPtr = 0x3c
	coffSectionNameSize  = 8
	coffSectionHdrSize   = 40
)

// peSection locates SectionName in a PE/COFF image's section table. PE
// section names are truncated to 8 bytes, so a name as short as ".dep-v0"
// (7 bytes) fits without needing the long-name-in-string-table fallback
// COFF provides for longer names.
func peSection(data []byte) ([]byte, error) {
	if len(data) < peSignatureOffsetPtr+4 {
		return nil, ErrUnexpectedEOF
	}
	peOff := uint64(binary.LittleEndian.Uint32(data[peSignatureOffsetPtr : peSignatureOffsetPtr+4]))
	sig, err := slice(data, peOff, 4)
	if err != nil {
		return nil, err
	}
	if sig[0] != 'P' || sig[1] != 'E' || sig[2] != 0 || sig[3] != 0 {
		return nil, ErrMalformed
	}

	fileHdr, err := slice(data, peOff+4, 20)
	if err != nil {
		return nil, err
	}
	numSections := binary.LittleEndian.Uint16(fileHdr[2:4])
	optHdrSize := binary.LittleEndian.Uint16(fileHdr[16:18])

	sectionTableOff := peOff + 4 + 20 + uint64(optHdrSize)
	for i := uint16(0); i < numSections; i++ {
		hdr, err := slice(data, sectionTableOff+uint64(i)*coffSectionHdrSize, coffSectionHdrSize)
		if err != nil {
			return nil, err
		}
		name := trimNulPadded(hdr[0:coffSectionNameSize])
		if name != SectionName {
			continue
		}
		rawSize := uint64(binary.LittleEndian.Uint32(hdr[16:20]))
		rawPtr := uint64(binary.LittleEndian.Uint32(hdr[20:24]))
		return slice(data, rawPtr, rawSize)
	}
	return nil, ErrNoAuditData
}
