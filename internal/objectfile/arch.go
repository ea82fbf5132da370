package objectfile

import (
	"errors"
	"strings"

	"github.com/rust-secure-code/cargo-auditable-go/internal/targetinfo"
)

// ErrUnsupportedArchitecture is returned by Write when the target's
// target_arch isn't one this package knows how to encode an object file
// for. The driver treats this as a warning, not a fatal build error (spec
// §4.D): a build proceeds without an embedded SBOM rather than failing.
var ErrUnsupportedArchitecture = errors.New("objectfile: unsupported architecture")

// elfMachine is the ELF e_machine value for a target_arch, and is64 is
// whether it takes the 64-bit ELF class — a direct port of
// object_file.rs's `create_object_file` architecture match, restricted to
// the subset that has an ELF encoding (Mach-O/COFF targets never reach
// this table; see macho.go/coff.go for their own machine constants).
func elfMachine(t targetinfo.Target) (machine uint16, is64 bool, ok bool) {
	arch := t.Arch()
	is32 := t.Is32Bit()
	switch arch {
	case "arm":
		return emARM, false, true
	case "aarch64":
		if is32 {
			return emAARCH64, false, true // ILP32: still EM_AARCH64, 32-bit class
		}
		return emAARCH64, true, true
	case "x86":
		return emI386, false, true
	case "s390x":
		return emS390, true, true
	case "mips":
		return emMIPS, false, true
	case "mips64":
		return emMIPS, true, true
	case "x86_64":
		if is32 {
			return emX86_64, false, true // x32: still EM_X86_64, 32-bit class
		}
		return emX86_64, true, true
	case "powerpc":
		return emPPC, false, true
	case "powerpc64":
		return emPPC64, true, true
	case "riscv32":
		return emRISCV, false, true
	case "riscv64":
		return emRISCV, true, true
	case "sparc64":
		return emSPARCV9, true, true
	case "loongarch64":
		return emLoongArch, true, true
	default:
		return 0, false, false
	}
}

const (
	emARM       = 40
	emAARCH64   = 183
	emI386      = 3
	emS390      = 22
	emMIPS      = 8
	emX86_64    = 62
	emPPC       = 20
	emPPC64     = 21
	emRISCV     = 243
	emSPARCV9   = 43
	emLoongArch = 258
)

// ELF e_flags bits used below, named after the constants object_file.rs
// pulls from the `object` crate's `elf` module.
const (
	efMIPSNoreorder = 0x00000001
	efMIPSPIC       = 0x00000002
	efMIPSCPIC      = 0x00000004
	efMIPSABI_O32   = 0x00001000
	efMIPSARCH_32R2 = 0x70000000
	efMIPSARCH_32R6 = 0x90000000
	efMIPSARCH_64R2 = 0x80000000
	efMIPSARCH_64R6 = 0xa0000000
	efMIPSNAN2008   = 0x00000400

	efRISCV_RVC            = 0x0001
	efRISCV_FLOAT_ABI_SOFT   = 0x0000
	efRISCV_FLOAT_ABI_SINGLE = 0x0002
	efRISCV_FLOAT_ABI_DOUBLE = 0x0004

	efLARCH_OBJABI_V1        = 0x40
	efLARCH_ABI_SOFT_FLOAT   = 0x0
	efLARCH_ABI_SINGLE_FLOAT = 0x1
	efLARCH_ABI_DOUBLE_FLOAT = 0x2
)

// elfOSABI mirrors LLVM's MCELFObjectTargetWriter::getOSABI.
func elfOSABI(t targetinfo.Target) byte {
	const (
		elfosabiNone       = 0
		elfosabiStandalone = 255
		elfosabiFreeBSD    = 9
		elfosabiSolaris    = 6
	)
	switch t.OS() {
	case "hermit":
		return elfosabiStandalone
	case "freebsd":
		return elfosabiFreeBSD
	case "solaris":
		return elfosabiSolaris
	default:
		return elfosabiNone
	}
}

// elfFlags computes e_flags for the architectures that need it (everything
// else is 0), a direct port of object_file.rs's per-architecture match.
func elfFlags(machine uint16, triple string, t targetinfo.Target) uint32 {
	switch machine {
	case emMIPS:
		if t.Arch() == "mips64" {
			arch := uint32(efMIPSARCH_64R2)
			flags := uint32(efMIPSCPIC | efMIPSPIC)
			if strings.Contains(triple, "r6") {
				return flags | efMIPSARCH_64R6 | efMIPSNAN2008
			}
			return flags | arch
		}
		arch := uint32(efMIPSARCH_32R2)
		if strings.Contains(triple, "r6") {
			arch = efMIPSARCH_32R6
		}
		flags := uint32(efMIPSCPIC) | efMIPSABI_O32 | arch
		if strings.Contains(triple, "r6") {
			flags |= efMIPSNAN2008
		}
		return flags
	case emRISCV:
		features := riscvFeatures(triple, t)
		var flags uint32
		if strings.Contains(features, "c") {
			flags |= efRISCV_RVC
		}
		switch {
		case strings.Contains(features, "d"):
			flags |= efRISCV_FLOAT_ABI_DOUBLE
		case strings.Contains(features, "f"):
			flags |= efRISCV_FLOAT_ABI_SINGLE
		default:
			flags |= efRISCV_FLOAT_ABI_SOFT
		}
		return flags
	case emLoongArch:
		features := loongarchFeatures(triple)
		flags := uint32(efLARCH_OBJABI_V1)
		switch {
		case strings.Contains(features, "d"):
			flags |= efLARCH_ABI_DOUBLE_FLOAT
		case strings.Contains(features, "f"):
			flags |= efLARCH_ABI_SINGLE_FLOAT
		default:
			flags |= efLARCH_ABI_SOFT_FLOAT
		}
		return flags
	default:
		return 0
	}
}

// riscvFeatures recovers the extension letters a RISC-V target triple
// implies, since `rustc --print=cfg` doesn't expose the 'd'/'f' extensions
// we need (the original comment in object_file.rs: "not as robust as I
// would like").
func riscvFeatures(triple string, t targetinfo.Target) string {
	arch, _, _ := strings.Cut(triple, "-")
	if len(arch) < 7 || arch[:5] != "riscv" {
		return ""
	}
	extensions := arch[7:]
	if strings.Contains(extensions, "g") {
		extensions += "imadf"
	}
	switch t.OS() {
	case "linux", "android":
		extensions += "imadfc"
	}
	return extensions
}

// loongarchFeatures mirrors the hardcoded special case in object_file.rs:
// only the explicit softfloat target triple lacks float support.
func loongarchFeatures(triple string) string {
	if triple == "loongarch64-unknown-none-softfloat" {
		return ""
	}
	return "f,d"
}
