package auditable

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/klauspost/compress/zlib"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// CompressionLevel is the fixed zlib level used when embedding SBOMs. A
// middling level is plenty: payloads are a few kilobytes of JSON and the
// cost is paid once per build, so milliseconds-per-package is the right
// tradeoff rather than squeezing out the last few bytes.
const CompressionLevel = 7

// EncodeJSON serializes an SBOM to its canonical, field-name-sorted JSON
// form. It does not compress; see Compress and Encode.
func EncodeJSON(sbom SBOM) ([]byte, error) {
	return json.Marshal(sbom)
}

// Compress deflate-wraps JSON (or any byte slice) using the fixed
// compression level. The wrapper is plain zlib, the same "deflate under a
// standard wrapper" container the extractor expects on the way back out.
func Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := zlib.NewWriterLevel(&buf, CompressionLevel)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Encode is Compress(EncodeJSON(sbom)) — the full payload that gets
// embedded in the built artifact by the injection driver.
func Encode(sbom SBOM) ([]byte, error) {
	data, err := EncodeJSON(sbom)
	if err != nil {
		return nil, err
	}
	return Compress(data)
}

// Decompress inflates a deflate-wrapped blob with no size ceiling. Callers
// that consume untrusted input (the extractor, component B) must instead
// bound output size themselves; this helper is for trusted round-trip use
// (tests, and the driver's own freshly-produced data).
func Decompress(blob []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(blob))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// Decode performs a two-step deserialization: a structural JSON decode into
// an SBOM value (no invariants enforced yet), then a validating pass that
// enforces the single-root and acyclicity invariants. data must already be
// decompressed JSON — see package extract for the bounded decompression
// step.
func Decode(data []byte) (SBOM, error) {
	var sbom SBOM
	if err := json.Unmarshal(data, &sbom); err != nil {
		return SBOM{}, err
	}
	if err := validate(sbom); err != nil {
		return SBOM{}, err
	}
	return sbom, nil
}

// validate enforces: exactly one root, in-range and strictly-ascending
// dependency indices, and an acyclic dependency graph. Acyclicity is
// checked with gonum's topological sort, mirroring the cycle-detection
// idiom distri's own batch scheduler uses for its package build graph.
func validate(sbom SBOM) error {
	roots := 0
	for _, p := range sbom.Packages {
		if p.Root {
			roots++
		}
	}
	if roots != 1 {
		return ErrRootCount
	}

	n := len(sbom.Packages)
	g := simple.NewDirectedGraph()
	for i := 0; i < n; i++ {
		g.AddNode(simple.Node(i))
	}
	for i, p := range sbom.Packages {
		prev := -1
		for _, dep := range p.Dependencies {
			if dep < 0 || dep >= n {
				return ErrDepIndex
			}
			if dep <= prev {
				return ErrDepSorting
			}
			prev = dep
			if dep == i {
				return ErrCyclic
			}
			g.SetEdge(g.NewEdge(simple.Node(i), simple.Node(dep)))
		}
	}
	if _, err := topo.Sort(g); err != nil {
		if _, ok := err.(topo.Unorderable); ok {
			return ErrCyclic
		}
		return err
	}
	return nil
}
