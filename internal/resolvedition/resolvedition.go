// Package resolvedition determines which Cargo dependency resolver a
// workspace uses, the same precedence Cargo itself applies: an explicit
// `resolver` field wins outright; failing that, the crate's edition
// implies a resolver version; failing that, Cargo defaults to the oldest
// resolver. The injection driver (internal/driver) does not call this
// package: the SBOM it embeds is built from cargo metadata or the
// precursor file without consulting the resolver version.
package resolvedition

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Resolver is a Cargo dependency resolver version.
type Resolver string

const (
	V1 Resolver = "1"
	V2 Resolver = "2"
	V3 Resolver = "3"
)

type rawPackage struct {
	Resolver string         `toml:"resolver"`
	Edition  toml.Primitive `toml:"edition"`
}

type rawWorkspace struct {
	Package  *rawPackage `toml:"package"`
	Resolver string      `toml:"resolver"`
}

type rawManifest struct {
	Package   *rawPackage   `toml:"package"`
	Workspace *rawWorkspace `toml:"workspace"`
}

// inheritWorkspace mirrors the `{ workspace = true }` shape `edition` can
// take instead of a plain string, when a package wants to reuse its
// workspace's edition. TOML has no native untagged union, so both shapes
// are decoded from a toml.Primitive on demand.
type inheritWorkspace struct {
	Workspace bool `toml:"workspace"`
}

// Resolve parses a Cargo.toml (workspace root or standalone package) and
// returns the resolver version it selects. A manifest with neither an
// explicit resolver nor a usable edition (including one with neither a
// [package] nor a [workspace] table) yields V1, Cargo's legacy default.
// Errors come from invalid TOML, a malformed edition field, or an
// unrecognized resolver or edition value.
func Resolve(manifestTOML []byte) (Resolver, error) {
	var raw rawManifest
	meta, err := toml.Decode(string(manifestTOML), &raw)
	if err != nil {
		return "", fmt.Errorf("parsing manifest: %w", err)
	}

	// Cargo rejects manifests specifying both package.resolver and
	// workspace.resolver; since at most one is ever present, workspace
	// wins when it's there.
	if raw.Workspace != nil && raw.Workspace.Resolver != "" {
		return parseResolverVersion(raw.Workspace.Resolver)
	}
	if raw.Package != nil && raw.Package.Resolver != "" {
		return parseResolverVersion(raw.Package.Resolver)
	}

	edition, ok, err := resolveEdition(meta, raw)
	if err != nil {
		return "", err
	}
	if !ok {
		return V1, nil
	}
	return resolverFromEdition(edition)
}

// resolveEdition follows the same chain raw_fields.rs does: a package's
// own edition, or — when it writes `edition.workspace = true` — the
// workspace's package.edition, which itself may not also be an inherit
// marker (Cargo has nothing further to inherit from).
func resolveEdition(meta toml.MetaData, raw rawManifest) (value string, ok bool, err error) {
	if raw.Package == nil || !meta.IsDefined("package", "edition") {
		return "", false, nil
	}
	value, inherit, err := decodeEdition(meta, raw.Package.Edition)
	if err != nil {
		return "", false, err
	}
	if !inherit {
		return value, true, nil
	}

	if raw.Workspace == nil || raw.Workspace.Package == nil || !meta.IsDefined("workspace", "package", "edition") {
		return "", false, nil
	}
	wsValue, wsInherit, err := decodeEdition(meta, raw.Workspace.Package.Edition)
	if err != nil {
		return "", false, err
	}
	if wsInherit {
		return "", false, nil
	}
	return wsValue, true, nil
}

// decodeEdition decodes an edition field's raw TOML representation as
// either a plain edition string or an inherit-workspace marker.
func decodeEdition(meta toml.MetaData, prim toml.Primitive) (value string, inherit bool, err error) {
	var s string
	if err := meta.PrimitiveDecode(prim, &s); err == nil {
		return s, false, nil
	}
	var inh inheritWorkspace
	if err := meta.PrimitiveDecode(prim, &inh); err == nil {
		return "", inh.Workspace, nil
	}
	return "", false, fmt.Errorf("edition field is neither a string nor { workspace = bool }")
}

func parseResolverVersion(v string) (Resolver, error) {
	switch v {
	case "1":
		return V1, nil
	case "2":
		return V2, nil
	case "3":
		return V3, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownResolver, v)
	}
}

func resolverFromEdition(edition string) (Resolver, error) {
	switch edition {
	case "2015":
		return V1, nil
	case "2018", "2021":
		return V2, nil
	case "2024":
		return V3, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownEdition, edition)
	}
}
