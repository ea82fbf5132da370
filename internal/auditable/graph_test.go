package auditable

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/rust-secure-code/cargo-auditable-go/internal/metadata"
)

func TestFromMetadataPrunesDevOnlyAndPropagatesKind(t *testing.T) {
	// root --(normal)--> runtime-lib --(normal)--> transitive-lib
	// root --(build)--> build-lib
	// root --(dev)----> dev-only-lib
	// build-lib --(normal)--> transitive-lib   (shared leaf, reached two ways)
	g := metadata.Graph{
		Root:    "root",
		HasDeps: true,
		Packages: []metadata.Package{
			{ID: "root", Name: "root", Version: "1.0.0", Source: ""},
			{ID: "runtime-lib", Name: "runtime-lib", Version: "2.0.0", Source: "registry+https://github.com/rust-lang/crates.io-index"},
			{ID: "transitive-lib", Name: "transitive-lib", Version: "0.3.0", Source: "registry+https://github.com/rust-lang/crates.io-index"},
			{ID: "build-lib", Name: "build-lib", Version: "4.0.0", Source: "registry+https://github.com/rust-lang/crates.io-index"},
			{ID: "dev-only-lib", Name: "dev-only-lib", Version: "9.0.0", Source: "registry+https://github.com/rust-lang/crates.io-index"},
		},
		Nodes: []metadata.Node{
			{ID: "root", Deps: []metadata.Dep{
				{PkgID: "runtime-lib", DepKinds: []metadata.DepKindInfo{{Kind: metadata.EdgeNormal}}},
				{PkgID: "build-lib", DepKinds: []metadata.DepKindInfo{{Kind: metadata.EdgeBuild}}},
				{PkgID: "dev-only-lib", DepKinds: []metadata.DepKindInfo{{Kind: metadata.EdgeDevelopment}}},
			}},
			{ID: "runtime-lib", Deps: []metadata.Dep{
				{PkgID: "transitive-lib", DepKinds: []metadata.DepKindInfo{{Kind: metadata.EdgeNormal}}},
			}},
			{ID: "build-lib", Deps: []metadata.Dep{
				{PkgID: "transitive-lib", DepKinds: []metadata.DepKindInfo{{Kind: metadata.EdgeNormal}}},
			}},
			{ID: "transitive-lib"},
			{ID: "dev-only-lib"},
		},
	}

	sbom, err := FromMetadata(g, nil)
	if err != nil {
		t.Fatalf("FromMetadata: %v", err)
	}

	names := make([]string, len(sbom.Packages))
	for i, p := range sbom.Packages {
		names[i] = p.Name
	}
	for _, want := range []string{"root", "runtime-lib", "build-lib", "transitive-lib"} {
		found := false
		for _, n := range names {
			if n == want {
				found = true
			}
		}
		if !found {
			t.Errorf("expected package %q in result, got %v", want, names)
		}
	}
	for _, n := range names {
		if n == "dev-only-lib" {
			t.Errorf("dev-only-lib should have been pruned, got %v", names)
		}
	}

	var transitive, buildLib Package
	for _, p := range sbom.Packages {
		switch p.Name {
		case "transitive-lib":
			transitive = p
		case "build-lib":
			buildLib = p
		}
	}
	// transitive-lib is reached both via a runtime path (root->runtime-lib)
	// and a build path (root->build-lib); the strongest of the two wins.
	if transitive.Kind != KindRuntime {
		t.Errorf("transitive-lib kind = %q, want runtime", transitive.Kind)
	}
	if buildLib.Kind != KindBuild {
		t.Errorf("build-lib kind = %q, want build", buildLib.Kind)
	}
}

func TestFromMetadataNoDeps(t *testing.T) {
	_, err := FromMetadata(metadata.Graph{HasDeps: false}, nil)
	if err != ErrNoDeps {
		t.Fatalf("FromMetadata() error = %v, want ErrNoDeps", err)
	}
}

func TestFromMetadataVirtualWorkspace(t *testing.T) {
	_, err := FromMetadata(metadata.Graph{HasDeps: true, Root: ""}, nil)
	if err != ErrVirtualWorkspace {
		t.Fatalf("FromMetadata() error = %v, want ErrVirtualWorkspace", err)
	}
}

func TestFromMetadataCfgFiltering(t *testing.T) {
	g := metadata.Graph{
		Root:    "root",
		HasDeps: true,
		Packages: []metadata.Package{
			{ID: "root", Name: "root", Version: "1.0.0"},
			{ID: "winapi", Name: "winapi", Version: "0.3.9", Source: "registry+https://github.com/rust-lang/crates.io-index"},
		},
		Nodes: []metadata.Node{
			{ID: "root", Deps: []metadata.Dep{
				{PkgID: "winapi", DepKinds: []metadata.DepKindInfo{
					{Kind: metadata.EdgeNormal, Target: `cfg(windows)`},
				}},
			}},
			{ID: "winapi"},
		},
	}

	linuxOnly := CfgMatcher(func(string) bool { return false })
	sbom, err := FromMetadata(g, linuxOnly)
	if err != nil {
		t.Fatalf("FromMetadata: %v", err)
	}
	if len(sbom.Packages) != 1 {
		t.Fatalf("expected winapi filtered out on a non-windows target, got %+v", sbom.Packages)
	}

	windows := CfgMatcher(func(string) bool { return true })
	sbom, err = FromMetadata(g, windows)
	if err != nil {
		t.Fatalf("FromMetadata: %v", err)
	}
	if len(sbom.Packages) != 2 {
		t.Fatalf("expected winapi included on a windows target, got %+v", sbom.Packages)
	}
}

func TestFromPrecursorMatchesFromMetadata(t *testing.T) {
	p := metadata.Precursor{
		RootCrate: 0,
		Crates: []metadata.Crate{
			{ID: 0, Name: "root", Version: "1.0.0", Dependencies: []metadata.Dependency{
				{Crate: 1, Kind: metadata.EdgeNormal},
			}},
			{ID: 1, Name: "leaf", Version: "0.1.0", Source: "registry+https://github.com/rust-lang/crates.io-index"},
		},
	}
	sbom, err := FromPrecursor(p, nil)
	if err != nil {
		t.Fatalf("FromPrecursor: %v", err)
	}

	g := metadata.Graph{
		Root:    "root",
		HasDeps: true,
		Packages: []metadata.Package{
			{ID: "root", Name: "root", Version: "1.0.0"},
			{ID: "leaf", Name: "leaf", Version: "0.1.0", Source: "registry+https://github.com/rust-lang/crates.io-index"},
		},
		Nodes: []metadata.Node{
			{ID: "root", Deps: []metadata.Dep{
				{PkgID: "leaf", DepKinds: []metadata.DepKindInfo{{Kind: metadata.EdgeNormal}}},
			}},
			{ID: "leaf"},
		},
	}
	want, err := FromMetadata(g, nil)
	if err != nil {
		t.Fatalf("FromMetadata: %v", err)
	}

	if diff := cmp.Diff(want, sbom); diff != "" {
		t.Errorf("FromPrecursor result differs from equivalent FromMetadata result (-want +got):\n%s", diff)
	}
}

func TestFromPrecursorVirtualWorkspace(t *testing.T) {
	_, err := FromPrecursor(metadata.Precursor{RootCrate: -1}, nil)
	if err != ErrVirtualWorkspace {
		t.Fatalf("FromPrecursor() error = %v, want ErrVirtualWorkspace", err)
	}
}
