package auditable

import (
	"sort"

	"github.com/rust-secure-code/cargo-auditable-go/internal/metadata"
)

// CfgMatcher reports whether a cfg() predicate string (as recorded on a
// metadata dependency edge) holds for the target the SBOM is being built
// for. A nil CfgMatcher is treated as "match everything", i.e. no
// per-target filtering — the behavior when the build isn't cross-compiling
// or the caller doesn't care to filter.
type CfgMatcher func(predicate string) bool

func (m CfgMatcher) matches(predicate string) bool {
	if predicate == "" {
		return true
	}
	if m == nil {
		return true
	}
	return m(predicate)
}

// strongestKind collapses the several (kind, cfg) entries cargo can report
// for a single dependency edge into one EdgeKind: the strongest kind among
// whichever entries apply to the current target. ok is false when none of
// the entries apply, meaning the edge should not be traversed at all for
// this target.
func strongestKind(infos []metadata.DepKindInfo, match CfgMatcher) (kind metadata.EdgeKind, ok bool) {
	kind = metadata.EdgeDevelopment
	for _, info := range infos {
		if !match.matches(info.Target) {
			continue
		}
		ok = true
		if info.Kind > kind {
			kind = info.Kind
		}
	}
	return kind, ok
}

func minKind(a, b metadata.EdgeKind) metadata.EdgeKind {
	if a < b {
		return a
	}
	return b
}

// propagated is the BFS working state for one package id: the strongest
// kind with which it has been reached so far, and whether it has been
// reached at all.
type propagated struct {
	kind    metadata.EdgeKind
	visited bool
}

// FromMetadata builds a canonical SBOM from a resolved `cargo metadata`
// dependency graph. It walks the graph breadth-first from the root,
// propagating each node's "strongest" reachable dependency kind: a node
// revisited via a stronger path than before is requeued so its own
// children get re-evaluated, exactly mirroring the fixed-point relaxation
// cargo-auditable's own metadata walker performs. Development-only nodes,
// and edges whose strongest applicable kind is development, are dropped
// from the result entirely — they never ship in the built artifact.
func FromMetadata(g metadata.Graph, match CfgMatcher) (SBOM, error) {
	if !g.HasDeps {
		return SBOM{}, ErrNoDeps
	}
	if g.Root == "" {
		return SBOM{}, ErrVirtualWorkspace
	}

	byID := make(map[string]metadata.Package, len(g.Packages))
	for _, p := range g.Packages {
		byID[p.ID] = p
	}
	adj := make(map[string][]metadata.Dep, len(g.Nodes))
	for _, n := range g.Nodes {
		adj[n.ID] = n.Deps
	}

	state := map[string]*propagated{g.Root: {kind: metadata.EdgeNormal, visited: true}}
	queue := []string{g.Root}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		curKind := state[cur].kind
		for _, dep := range adj[cur] {
			edgeKind, ok := strongestKind(dep.DepKinds, match)
			if !ok {
				continue
			}
			candidate := minKind(edgeKind, curKind)
			s, seen := state[dep.PkgID]
			if !seen {
				state[dep.PkgID] = &propagated{kind: candidate, visited: true}
				queue = append(queue, dep.PkgID)
				continue
			}
			if candidate > s.kind {
				s.kind = candidate
				queue = append(queue, dep.PkgID)
			}
		}
	}

	var keep []reachable
	for id, s := range state {
		if id == g.Root || s.kind > metadata.EdgeDevelopment {
			keep = append(keep, reachable{id: id, kind: s.kind})
		}
	}

	return assemble(g.Root, keep, byID, adj, match)
}

// reachable records one package id that survived pruning, along with the
// strongest dependency kind it was reached with.
type reachable struct {
	id   string
	kind metadata.EdgeKind
}

func assemble(
	root string,
	keep []reachable,
	byID map[string]metadata.Package,
	adj map[string][]metadata.Dep,
	match CfgMatcher,
) (SBOM, error) {
	keptKind := make(map[string]metadata.EdgeKind, len(keep))
	for _, k := range keep {
		keptKind[k.id] = k.kind
	}

	type built struct {
		id  string
		pkg Package
	}
	packages := make([]built, 0, len(keep))
	for _, k := range keep {
		meta, ok := byID[k.id]
		if !ok {
			continue
		}
		packages = append(packages, built{
			id: k.id,
			pkg: Package{
				Name:    meta.Name,
				Version: Version(meta.Version),
				Source:  sourceOf(meta.Source),
				Root:    k.id == root,
				Kind:    kindOf(k.kind),
			},
		})
	}

	sort.Slice(packages, func(i, j int) bool {
		a, b := packages[i].pkg, packages[j].pkg
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		if a.Version != b.Version {
			return a.Version.Compare(b.Version) < 0
		}
		as, bs := a.Source.String(), b.Source.String()
		if as != bs {
			return as < bs
		}
		return packages[i].id < packages[j].id
	})

	index := make(map[string]int, len(packages))
	for i, b := range packages {
		index[b.id] = i
	}

	sbom := SBOM{Packages: make([]Package, len(packages))}
	for i, b := range packages {
		deps := adj[b.id]
		seen := make(map[int]bool, len(deps))
		var depIdx []int
		for _, dep := range deps {
			edgeKind, ok := strongestKind(dep.DepKinds, match)
			if !ok || edgeKind == metadata.EdgeDevelopment {
				continue
			}
			j, ok := index[dep.PkgID]
			if !ok || j == i || seen[j] {
				continue
			}
			seen[j] = true
			depIdx = append(depIdx, j)
		}
		sort.Ints(depIdx)
		b.pkg.Dependencies = depIdx
		sbom.Packages[i] = b.pkg
	}

	if err := validate(sbom); err != nil {
		return SBOM{}, err
	}
	return sbom, nil
}

func sourceOf(raw string) Source {
	if raw == "" {
		return SourceOfLocal
	}
	return ParseSource(raw)
}

func kindOf(k metadata.EdgeKind) Kind {
	if k == metadata.EdgeBuild {
		return KindBuild
	}
	return KindRuntime
}

// FromPrecursor builds a canonical SBOM from a build-tool-native precursor
// file: the same propagation as FromMetadata, but over a precursor's dense
// crate list instead of string package ids. Multiple
// Dependency entries between the same pair of crates (one per applicable
// kind) are collapsed into a single edge exactly as DepKindInfo lists are
// in FromMetadata.
func FromPrecursor(p metadata.Precursor, match CfgMatcher) (SBOM, error) {
	if p.RootCrate < 0 || p.RootCrate >= len(p.Crates) {
		return SBOM{}, ErrVirtualWorkspace
	}

	byID := make(map[int]metadata.Crate, len(p.Crates))
	edgeTarget := make(map[int]map[int][]metadata.DepKindInfo)
	for _, c := range p.Crates {
		byID[c.ID] = c
		grouped := make(map[int][]metadata.DepKindInfo)
		for _, d := range c.Dependencies {
			grouped[d.Crate] = append(grouped[d.Crate], metadata.DepKindInfo{Kind: d.Kind, Target: d.Target})
		}
		edgeTarget[c.ID] = grouped
	}

	rootID := p.Crates[p.RootCrate].ID
	state := map[int]*propagated{rootID: {kind: metadata.EdgeNormal, visited: true}}
	queue := []int{rootID}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		curKind := state[cur].kind
		for target, infos := range edgeTarget[cur] {
			edgeKind, ok := strongestKind(infos, match)
			if !ok {
				continue
			}
			candidate := minKind(edgeKind, curKind)
			s, seen := state[target]
			if !seen {
				state[target] = &propagated{kind: candidate, visited: true}
				queue = append(queue, target)
				continue
			}
			if candidate > s.kind {
				s.kind = candidate
				queue = append(queue, target)
			}
		}
	}

	type keptEntry struct {
		id   int
		kind metadata.EdgeKind
	}
	var keep []keptEntry
	for id, s := range state {
		if id == rootID || s.kind > metadata.EdgeDevelopment {
			keep = append(keep, keptEntry{id: id, kind: s.kind})
		}
	}

	type built struct {
		id  int
		pkg Package
	}
	packages := make([]built, 0, len(keep))
	for _, k := range keep {
		c, ok := byID[k.id]
		if !ok {
			continue
		}
		packages = append(packages, built{
			id: k.id,
			pkg: Package{
				Name:    c.Name,
				Version: Version(c.Version),
				Source:  sourceOf(c.Source),
				Root:    k.id == rootID,
				Kind:    kindOf(k.kind),
			},
		})
	}

	sort.Slice(packages, func(i, j int) bool {
		a, b := packages[i].pkg, packages[j].pkg
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		if a.Version != b.Version {
			return a.Version.Compare(b.Version) < 0
		}
		as, bs := a.Source.String(), b.Source.String()
		if as != bs {
			return as < bs
		}
		return packages[i].id < packages[j].id
	})

	index := make(map[int]int, len(packages))
	for i, b := range packages {
		index[b.id] = i
	}

	sbom := SBOM{Packages: make([]Package, len(packages))}
	for i, b := range packages {
		seen := make(map[int]bool)
		var depIdx []int
		for target, infos := range edgeTarget[b.id] {
			edgeKind, ok := strongestKind(infos, match)
			if !ok || edgeKind == metadata.EdgeDevelopment {
				continue
			}
			j, ok := index[target]
			if !ok || j == i || seen[j] {
				continue
			}
			seen[j] = true
			depIdx = append(depIdx, j)
		}
		sort.Ints(depIdx)
		b.pkg.Dependencies = depIdx
		sbom.Packages[i] = b.pkg
	}

	if err := validate(sbom); err != nil {
		return SBOM{}, err
	}
	return sbom, nil
}
