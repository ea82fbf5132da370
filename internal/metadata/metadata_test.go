package metadata

import "testing"

func TestParseCargoMetadata(t *testing.T) {
	data := []byte(`{
		"packages": [
			{"id": "pkg-a 0.1.0", "name": "pkg-a", "version": "0.1.0", "source": null},
			{"id": "pkg-b 1.0.0", "name": "pkg-b", "version": "1.0.0", "source": "registry+https://github.com/rust-lang/crates.io-index"}
		],
		"resolve": {
			"root": "pkg-a 0.1.0",
			"nodes": [
				{"id": "pkg-a 0.1.0", "deps": [
					{"pkg": "pkg-b 1.0.0", "dep_kinds": [{"kind": null, "target": null}]}
				]},
				{"id": "pkg-b 1.0.0", "deps": []}
			]
		}
	}`)

	g, err := ParseCargoMetadata(data)
	if err != nil {
		t.Fatalf("ParseCargoMetadata: %v", err)
	}
	if !g.HasDeps {
		t.Error("HasDeps = false, want true")
	}
	if g.Root != "pkg-a 0.1.0" {
		t.Errorf("Root = %q, want %q", g.Root, "pkg-a 0.1.0")
	}
	if len(g.Packages) != 2 {
		t.Fatalf("len(Packages) = %d, want 2", len(g.Packages))
	}
	if g.Packages[1].Source == "" {
		t.Error("Packages[1].Source is empty, want registry source string")
	}
	if len(g.Nodes) != 2 || len(g.Nodes[0].Deps) != 1 {
		t.Fatalf("unexpected node shape: %+v", g.Nodes)
	}
	if g.Nodes[0].Deps[0].DepKinds[0].Kind != EdgeNormal {
		t.Errorf("dep kind = %v, want EdgeNormal for a null kind", g.Nodes[0].Deps[0].DepKinds[0].Kind)
	}
}

func TestParseCargoMetadataNoDeps(t *testing.T) {
	data := []byte(`{"packages": [{"id": "pkg-a 0.1.0", "name": "pkg-a", "version": "0.1.0", "source": null}]}`)
	g, err := ParseCargoMetadata(data)
	if err != nil {
		t.Fatalf("ParseCargoMetadata: %v", err)
	}
	if g.HasDeps {
		t.Error("HasDeps = true, want false when resolve is absent")
	}
}

func TestParseCargoMetadataDevAndBuildKinds(t *testing.T) {
	data := []byte(`{
		"packages": [],
		"resolve": {
			"root": "a",
			"nodes": [
				{"id": "a", "deps": [
					{"pkg": "b", "dep_kinds": [{"kind": "dev", "target": null}]},
					{"pkg": "c", "dep_kinds": [{"kind": "build", "target": null}]}
				]}
			]
		}
	}`)
	g, err := ParseCargoMetadata(data)
	if err != nil {
		t.Fatalf("ParseCargoMetadata: %v", err)
	}
	deps := g.Nodes[0].Deps
	if deps[0].DepKinds[0].Kind != EdgeDevelopment {
		t.Errorf("deps[0] kind = %v, want EdgeDevelopment", deps[0].DepKinds[0].Kind)
	}
	if deps[1].DepKinds[0].Kind != EdgeBuild {
		t.Errorf("deps[1] kind = %v, want EdgeBuild", deps[1].DepKinds[0].Kind)
	}
}

func TestParsePrecursor(t *testing.T) {
	data := []byte(`{
		"root": 0,
		"crates": [
			{"id": 0, "name": "a", "version": "0.1.0", "source": "", "dependencies": [
				{"crate": 1, "kind": 2, "target": ""}
			]},
			{"id": 1, "name": "b", "version": "1.0.0", "source": "", "dependencies": []}
		]
	}`)
	p, err := ParsePrecursor(data)
	if err != nil {
		t.Fatalf("ParsePrecursor: %v", err)
	}
	if p.RootCrate != 0 {
		t.Errorf("RootCrate = %d, want 0", p.RootCrate)
	}
	if len(p.Crates) != 2 {
		t.Fatalf("len(Crates) = %d, want 2", len(p.Crates))
	}
	if len(p.Crates[0].Dependencies) != 1 || p.Crates[0].Dependencies[0].Kind != EdgeNormal {
		t.Fatalf("unexpected dependency shape: %+v", p.Crates[0].Dependencies)
	}
}
