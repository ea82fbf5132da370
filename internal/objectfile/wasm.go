package objectfile

// writeWASM builds the minimum valid WASM module carrying the `.dep-v0`
// custom section, preceded by a `linking` custom section of version 2 —
// without it rust-lld rejects the file as non-relocatable and drops it
// rather than linking it in.
func writeWASM(payload []byte) []byte {
	result := []byte{0x00, 'a', 's', 'm', 1, 0, 0, 0}
	result = writeCustomSection(result, "linking", []byte{2})
	result = writeCustomSection(result, SectionName, payload)
	return result
}

func writeCustomSection(module []byte, name string, content []byte) []byte {
	var body []byte
	body = EncodeUint32(body, uint32(len(name)))
	body = append(body, name...)
	body = append(body, content...)

	module = append(module, 0) // custom section id
	module = EncodeUint32(module, uint32(len(body)))
	module = append(module, body...)
	return module
}

// EncodeUint32 appends v to dst as unsigned LEB128, WASM's integer
// encoding throughout its binary format (named to match the
// Encode/Decode convention tetratelabs/wazero uses for its own leb128
// helpers).
func EncodeUint32(dst []byte, v uint32) []byte {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			dst = append(dst, b|0x80)
			continue
		}
		return append(dst, b)
	}
}
