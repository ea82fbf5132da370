package auditable

import "errors"

// Validation errors, raised by Decode when an SBOM's structural invariants
// don't hold.
var (
	ErrRootCount  = errors.New("auditable: SBOM must have exactly one root package")
	ErrCyclic     = errors.New("auditable: SBOM dependency graph is cyclic")
	ErrDepIndex   = errors.New("auditable: dependency index out of range")
	ErrDepSorting = errors.New("auditable: dependency indices must be strictly ascending")
)

// Encoder-layer errors: both are fatal and user-actionable.
var (
	// ErrNoDeps means the build tool did not resolve a dependency graph
	// (e.g. metadata was queried with dependency resolution disabled).
	ErrNoDeps = errors.New("auditable: no dependency resolution available; rerun without --no-deps")
	// ErrVirtualWorkspace means no root package could be identified,
	// e.g. the tool was invoked from a workspace root rather than a package.
	ErrVirtualWorkspace = errors.New("auditable: no root package; run from a package directory, not a workspace root")
)
