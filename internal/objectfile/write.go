// Package objectfile synthesizes a minimal ELF, COFF, Mach-O or WASM
// object file carrying one section of caller-supplied bytes under
// SectionName plus one symbol pointing at it — the artifact handed to the
// linker so the embedded SBOM survives into the final binary, mirroring
// what rustc's own metadata-embedding does for debug info.
package objectfile

import (
	"github.com/rust-secure-code/cargo-auditable-go/internal/binfmt"
	"github.com/rust-secure-code/cargo-auditable-go/internal/targetinfo"
)

// SectionName is the section name written into every container format;
// kept in lockstep with internal/binfmt.SectionName, the name the
// extractor looks for.
const SectionName = binfmt.SectionName

// Write builds the object file for t's container format. It returns
// ErrUnsupportedArchitecture (never a generic error) when t's architecture
// has no encoding in this package — callers (the injection driver) treat
// that as "skip embedding, warn, keep building" rather than a fatal error.
func Write(t targetinfo.Target, triple string, payload []byte, symbol string) ([]byte, error) {
	switch t.Container() {
	case targetinfo.ContainerWASM:
		return writeWASM(payload), nil
	case targetinfo.ContainerMachO:
		return writeMachO(t, payload, symbol)
	case targetinfo.ContainerCOFF:
		return writeCOFF(t, payload, symbol)
	default:
		return writeELF(t, triple, payload, symbol)
	}
}
