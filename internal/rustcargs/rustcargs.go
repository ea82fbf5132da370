// Package rustcargs picks the handful of flags this tool cares about out of
// a full rustc invocation. It deliberately doesn't validate or reject
// anything it doesn't recognize: rustc's own flag surface changes across
// releases, and a wrapper that errors on an unrecognized flag would break
// on the next compiler update. The standard library's flag package can't
// be used here for exactly that reason — it requires every flag to be
// pre-declared and errors on the first one it doesn't know.
package rustcargs

import "strings"

// Args holds the rustc arguments this tool inspects. Fields it doesn't
// recognize are simply not collected; unrecognized flags pass through the
// scan untouched (the wrapper forwards the original argument list to rustc
// regardless of what Parse extracted from it).
type Args struct {
	CrateName  string
	CrateTypes []string
	Cfg        []string
	Emit       []string
	OutDir     string
	Target     string
	Print      []string
	Codegen    map[string]string
}

// CodegenOption returns the value of a -C codegen option, such as
// "linker-flavor", and whether it was present at all.
func (a Args) CodegenOption(key string) (string, bool) {
	v, ok := a.Codegen[key]
	return v, ok
}

// Parse walks a rustc argument list once, collecting the `--flag value` and
// `--flag=value` forms of the recognized flags. Positional arguments and
// unrecognized flags are skipped, not rejected.
func Parse(args []string) Args {
	var a Args
	for i := 0; i < len(args); i++ {
		flag, inlineValue, hasInline := splitFlag(args[i])
		value := func() (string, bool) {
			if hasInline {
				return inlineValue, true
			}
			if i+1 < len(args) {
				i++
				return args[i], true
			}
			return "", false
		}

		switch flag {
		case "--crate-name":
			if v, ok := value(); ok {
				a.CrateName = v
			}
		case "--crate-type":
			if v, ok := value(); ok {
				a.CrateTypes = append(a.CrateTypes, splitComma(v)...)
			}
		case "--cfg":
			if v, ok := value(); ok {
				a.Cfg = append(a.Cfg, v)
			}
		case "--emit":
			if v, ok := value(); ok {
				a.Emit = append(a.Emit, splitComma(v)...)
			}
		case "--out-dir":
			if v, ok := value(); ok {
				a.OutDir = v
			}
		case "--target":
			if v, ok := value(); ok {
				a.Target = v
			}
		case "--print":
			if v, ok := value(); ok {
				a.Print = append(a.Print, v)
			}
		default:
			if opt, ok := codegenOption(args[i], value); ok {
				if a.Codegen == nil {
					a.Codegen = make(map[string]string)
				}
				key, val, _ := splitCodegenKV(opt)
				a.Codegen[key] = val
			}
		}
	}
	return a
}

// codegenOption recognizes rustc's -C flag in both its "-C key=value" and
// glued "-Ckey=value" forms, returning the "key=value" (or bare "key") text.
func codegenOption(arg string, value func() (string, bool)) (string, bool) {
	switch {
	case arg == "-C":
		return value()
	case strings.HasPrefix(arg, "-C") && len(arg) > len("-C"):
		return arg[len("-C"):], true
	default:
		return "", false
	}
}

func splitCodegenKV(opt string) (key, value string, hasValue bool) {
	if idx := strings.IndexByte(opt, '='); idx != -1 {
		return opt[:idx], opt[idx+1:], true
	}
	return opt, "", false
}

// splitFlag splits a "--flag=value" argument into its flag and value; for
// a bare "--flag" it reports hasInline=false so the caller consumes the
// next argument instead.
func splitFlag(arg string) (flag, value string, hasInline bool) {
	if idx := strings.IndexByte(arg, '='); idx != -1 && strings.HasPrefix(arg, "--") {
		return arg[:idx], arg[idx+1:], true
	}
	return arg, "", false
}

func splitComma(v string) []string {
	if v == "" {
		return nil
	}
	return strings.Split(v, ",")
}

// EnabledFeatures extracts the Cargo feature names passed via
// `--cfg feature="name"`, the only --cfg shape Cargo itself ever emits for
// features (arbitrary --cfg values from build scripts are left alone).
func (a Args) EnabledFeatures() []string {
	var features []string
	for _, item := range a.Cfg {
		const prefix = `feature="`
		if !strings.HasPrefix(item, prefix) {
			continue
		}
		rest := item[len(prefix):]
		if idx := strings.IndexByte(rest, '"'); idx != -1 {
			features = append(features, rest[:idx])
		}
	}
	return features
}

func contains(items []string, want string) bool {
	for _, item := range items {
		if item == want {
			return true
		}
	}
	return false
}

// ShouldInject reports whether this compiler invocation is one that
// produces a linkable artifact worth embedding an SBOM into: it must build
// a "bin" or "cdylib" crate type, must either emit nothing explicit or
// include "link" among what it emits, and must not be a `--print`-only
// query invocation (those never reach the linker at all).
func (a Args) ShouldInject() bool {
	producesLinkable := contains(a.CrateTypes, "bin") || contains(a.CrateTypes, "cdylib")
	if !producesLinkable {
		return false
	}
	emitsLink := len(a.Emit) == 0 || contains(a.Emit, "link")
	if !emitsLink {
		return false
	}
	isPrintOnlyQuery := len(a.Print) > 0 && len(a.Emit) == 0
	return !isPrintOnlyQuery
}
