package metadata

import "encoding/json"

// wireMetadata mirrors the on-the-wire JSON cargo itself emits for
// `cargo metadata --format-version=1`: snake_case keys, a flat package
// list, and a separate resolve graph keyed by package id. This is decoded
// once and flattened into a Graph, which is the shape the rest of this
// tool actually works with.
type wireMetadata struct {
	Packages []wirePackage `json:"packages"`
	Resolve  *wireResolve  `json:"resolve"`
}

type wirePackage struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Version string `json:"version"`
	Source  string `json:"source"`
}

type wireResolve struct {
	Root  string     `json:"root"`
	Nodes []wireNode `json:"nodes"`
}

type wireNode struct {
	ID   string    `json:"id"`
	Deps []wireDep `json:"deps"`
}

type wireDep struct {
	PkgID    string             `json:"pkg"`
	DepKinds []wireDepKindInfo `json:"dep_kinds"`
}

type wireDepKindInfo struct {
	Kind   string `json:"kind"`
	Target string `json:"target"`
}

func (k wireDepKindInfo) edgeKind() EdgeKind {
	switch k.Kind {
	case "dev":
		return EdgeDevelopment
	case "build":
		return EdgeBuild
	default: // cargo reports the normal-dependency kind as null/""
		return EdgeNormal
	}
}

// ParseCargoMetadata decodes the raw JSON output of
// `cargo metadata --format-version=1` into a Graph. Metadata queried with
// --no-deps carries no "resolve" key at all, which is reported back as
// Graph.HasDeps == false so callers can fall back to a per-package view.
func ParseCargoMetadata(data []byte) (Graph, error) {
	var wire wireMetadata
	if err := json.Unmarshal(data, &wire); err != nil {
		return Graph{}, err
	}

	g := Graph{
		HasDeps:  wire.Resolve != nil,
		Packages: make([]Package, len(wire.Packages)),
	}
	for i, p := range wire.Packages {
		g.Packages[i] = Package{ID: p.ID, Name: p.Name, Version: p.Version, Source: p.Source}
	}
	if wire.Resolve != nil {
		g.Root = wire.Resolve.Root
		g.Nodes = make([]Node, len(wire.Resolve.Nodes))
		for i, n := range wire.Resolve.Nodes {
			deps := make([]Dep, len(n.Deps))
			for j, d := range n.Deps {
				kinds := make([]DepKindInfo, len(d.DepKinds))
				for k, dk := range d.DepKinds {
					kinds[k] = DepKindInfo{Kind: dk.edgeKind(), Target: dk.Target}
				}
				deps[j] = Dep{PkgID: d.PkgID, DepKinds: kinds}
			}
			g.Nodes[i] = Node{ID: n.ID, Deps: deps}
		}
	}
	return g, nil
}
