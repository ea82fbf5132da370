package metadata

import "encoding/json"

// Precursor is the richer, build-tool-native alternative to Graph: instead
// of re-deriving the dependency graph from a `cargo metadata` invocation,
// the injection driver can hand the encoder a file deposited directly by
// the build tool during compilation, a "precursor" input. It carries the
// same information as Graph but keyed by a dense crate list
// rather than package-id strings, since it's assembled while cargo already
// has everything resolved in memory.
type Precursor struct {
	RootCrate int     `json:"root"` // index into Crates; -1 if no root (virtual workspace)
	Crates    []Crate `json:"crates"`
}

// Crate is one resolved crate in a precursor file.
type Crate struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Source  string `json:"source"` // cargo's raw source repr; see metadata.Package.Source
	// ID is the precursor's own dense identifier for this crate, used only
	// to resolve Dependency.Crate references; it has no meaning outside
	// this Precursor value.
	ID           int          `json:"id"`
	Dependencies []Dependency `json:"dependencies"`
}

// Dependency is one outgoing edge in a precursor's dependency list. Unlike
// Graph's Dep, a precursor edge already carries a single resolved kind per
// entry — multiple kinds on the same (from, to) pair show up as multiple
// Dependency entries, one per kind, which FromPrecursor collapses exactly
// like FromMetadata collapses Graph's DepKindInfo lists.
type Dependency struct {
	Crate  int      `json:"crate"` // ID of the target Crate
	Kind   EdgeKind `json:"kind"`
	Target string   `json:"target"` // cfg() predicate, "" if unconditional
}

// ParsePrecursor decodes the JSON contents of a file named by
// CARGO_SBOM_PATH. The precursor format is Cargo's own unstable SBOM
// feature with no published schema to diverge from, so this type's json
// tags are its schema rather than a mirror of someone else's.
func ParsePrecursor(data []byte) (Precursor, error) {
	var p Precursor
	err := json.Unmarshal(data, &p)
	return p, err
}
