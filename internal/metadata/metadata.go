// Package metadata defines the JSON shapes produced by the host build tool's
// own dependency-resolution query (`cargo metadata --format-version=1`) and
// by the richer SBOM-precursor file it may deposit instead. Both are
// Cargo-internal wire formats with no existing Go client library, so
// they are plain structs with json tags rather than a stdlib-vs-library
// tradeoff — there is no library to choose over.
package metadata

// EdgeKind is the per-edge dependency kind cargo reports. Values are
// ordered weakest-to-strongest so casting to int is meaningful, matching
// auditable-serde's DependencyKind convention.
type EdgeKind int

const (
	EdgeDevelopment EdgeKind = iota
	EdgeBuild
	EdgeNormal // becomes Kind = runtime
)

// DepKindInfo mirrors cargo_metadata's per-(kind, target-cfg) entry. A
// single edge can carry several of these, one per cfg()-gated feature set;
// Target is a cfg() predicate string, empty when the dependency applies
// unconditionally.
type DepKindInfo struct {
	Kind   EdgeKind
	Target string
}

// Dep is one outgoing dependency edge from a Node.
type Dep struct {
	PkgID    string
	DepKinds []DepKindInfo
}

// Node is one entry in cargo's resolved dependency graph
// (`metadata.resolve.nodes[]`).
type Node struct {
	ID   string
	Deps []Dep
}

// Package is one entry in `metadata.packages[]`: the package-level
// information cargo knows regardless of whether it's reachable from the
// root (workspace members not used by the root crate are listed here too).
type Package struct {
	ID      string
	Name    string
	Version string
	// Source is the raw `cargo metadata` source repr, e.g.
	// "registry+https://github.com/rust-lang/crates.io-index" or
	// "git+https://...#<rev>". Empty for path (local) dependencies.
	Source string
}

// Graph is the resolved dependency graph plus package metadata, i.e. the
// parts of `cargo metadata`'s JSON output this tool actually consumes.
type Graph struct {
	Root     string // package id of the primary (root) package; "" if none
	HasDeps  bool   // false if metadata was queried with --no-deps
	Packages []Package
	Nodes    []Node
}
