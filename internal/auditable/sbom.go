// Package auditable implements the canonical SBOM data model: a sorted
// sequence of packages with a single root and an acyclic dependency graph,
// plus the codec that turns it into the deflate-wrapped JSON blob embedded
// in built artifacts.
package auditable

import (
	"fmt"
	"strings"

	"golang.org/x/mod/semver"
)

// Version is a package's source version, stored exactly as supplied so that
// round-tripping through Encode/Decode is byte-for-byte stable. Comparison
// and validation delegate to golang.org/x/mod/semver, which requires a "v"
// prefix that Cargo's own semver strings don't carry.
type Version string

// Valid reports whether v parses as a semantic version.
func (v Version) Valid() bool {
	return semver.IsValid(v.prefixed())
}

// Compare orders two versions, following semver precedence rules.
func (v Version) Compare(other Version) int {
	return semver.Compare(v.prefixed(), other.prefixed())
}

func (v Version) prefixed() string {
	s := string(v)
	if strings.HasPrefix(s, "v") {
		return s
	}
	return "v" + s
}

// SourceKind is the closed set of places a package can come from.
type SourceKind uint8

const (
	SourceCratesIO SourceKind = iota
	SourceRegistry
	SourceGit
	SourceLocal
	SourceOther
)

// cratesIOIndex is the well-known registry URL prefix that gets its own
// dedicated Source tag; every other registry URL collapses to the generic
// "registry" tag, discarding the URL for privacy and reproducibility.
const cratesIOIndex = "registry+https://github.com/rust-lang/crates.io-index"

// Source is a tagged variant over where a package was obtained. It
// serializes to a single string (see MarshalJSON); unrecognized strings on
// decode map to SourceOther, keeping the format forward-compatible.
type Source struct {
	Kind  SourceKind
	Other string // populated only when Kind == SourceOther
}

var (
	SourceOfCratesIO = Source{Kind: SourceCratesIO}
	SourceOfRegistry = Source{Kind: SourceRegistry}
	SourceOfGit      = Source{Kind: SourceGit}
	SourceOfLocal    = Source{Kind: SourceLocal}
)

// OtherSource builds a Source for a tag not among the recognized ones.
func OtherSource(tag string) Source {
	return Source{Kind: SourceOther, Other: tag}
}

// String renders the wire representation of the source tag.
func (s Source) String() string {
	switch s.Kind {
	case SourceCratesIO:
		return "crates.io"
	case SourceRegistry:
		return "registry"
	case SourceGit:
		return "git"
	case SourceLocal:
		return "local"
	case SourceOther:
		return s.Other
	default:
		return "local"
	}
}

// ParseSource maps a wire string (or a `cargo metadata` source repr such as
// "registry+https://...", "git+https://...#rev", "path+file://...") back to
// a Source. Unrecognized kinds fall back to SourceOther, never an error.
func ParseSource(raw string) Source {
	kind := raw
	if idx := strings.IndexByte(raw, '+'); idx != -1 {
		kind = raw[:idx]
	}
	switch {
	case raw == cratesIOIndex:
		return SourceOfCratesIO
	case kind == "registry":
		return SourceOfRegistry
	case kind == "git":
		return SourceOfGit
	case kind == "path" || raw == "local":
		return SourceOfLocal
	case raw == "crates.io":
		return SourceOfCratesIO
	default:
		return OtherSource(raw)
	}
}

func (s Source) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", s.String())), nil
}

func (s *Source) UnmarshalJSON(data []byte) error {
	var raw string
	if err := unquoteJSONString(data, &raw); err != nil {
		return err
	}
	*s = ParseSource(raw)
	return nil
}

// Kind is whether a dependency's code ends up in the shipped artifact.
// The zero value is KindRuntime, the default that is elided on encode.
type Kind string

const (
	KindRuntime Kind = ""
	KindBuild   Kind = "build"
)

func (k Kind) String() string {
	if k == KindRuntime {
		return "runtime"
	}
	return string(k)
}

// Package is one source package recorded in an SBOM.
//
// Field order matches the canonical field-name-sorted JSON object
// (dependencies, kind, name, root, source, version); encoding/json preserves
// struct declaration order, so this ordering IS the wire ordering.
type Package struct {
	Dependencies []int   `json:"dependencies,omitempty"`
	Kind         Kind    `json:"kind,omitempty"`
	Name         string  `json:"name"`
	Root         bool    `json:"root,omitempty"`
	Source       Source  `json:"source"`
	Version      Version `json:"version"`
}

// SBOM is the top-level, ordered Package sequence.
type SBOM struct {
	Packages []Package `json:"packages"`
}

func unquoteJSONString(data []byte, out *string) error {
	// A minimal JSON string unquoter: Source strings never contain escape
	// sequences in practice (they're package-manager-internal identifiers),
	// but we still handle the common \" and \\ cases rather than assume it.
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("auditable: source is not a JSON string: %s", data)
	}
	body := data[1 : len(data)-1]
	var b strings.Builder
	b.Grow(len(body))
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c == '\\' && i+1 < len(body) {
			i++
			switch body[i] {
			case '"':
				b.WriteByte('"')
			case '\\':
				b.WriteByte('\\')
			default:
				b.WriteByte(body[i])
			}
			continue
		}
		b.WriteByte(c)
	}
	*out = b.String()
	return nil
}
