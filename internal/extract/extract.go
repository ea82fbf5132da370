// Package extract pulls the embedded SBOM payload out of a built artifact:
// it bounds how much of the artifact it will read, locates the `.dep-v0`
// section via internal/binfmt, and inflates the result under its own
// separate bound. Untrusted input gets independent ceilings at every
// stage — container size, the section's own size, and the decompressed
// size — so a crafted binary can't force unbounded reads or a
// decompression bomb.
package extract

import (
	"bytes"
	"errors"
	"io"

	"github.com/klauspost/compress/zlib"

	"github.com/rust-secure-code/cargo-auditable-go/internal/binfmt"
)

// Default bounds for Extract when the caller doesn't have a more specific
// figure of their own. DefaultInputLimit covers any reasonably sized Rust
// binary; DefaultOutputLimit covers any reasonably sized dependency tree's
// JSON rendering once decompressed.
const (
	DefaultInputLimit  = 1 << 30 // 1 GiB
	DefaultOutputLimit = 8 << 20 // 8 MiB
)

var (
	// ErrInputLimitExceeded means the artifact itself was larger than
	// inputLimit.
	ErrInputLimitExceeded = errors.New("extract: input exceeds configured limit")
	// ErrOutputLimitExceeded means the decompressed SBOM was larger than
	// outputLimit — a red flag for a crafted decompression-bomb payload as
	// much as it is a sanity bound.
	ErrOutputLimitExceeded = errors.New("extract: decompressed output exceeds configured limit")
)

// Extract reads an artifact from r (bounded by inputLimit bytes), locates
// its embedded `.dep-v0` section, and returns the decompressed SBOM JSON
// bytes (bounded by outputLimit). It never trusts size claims the input
// itself makes: both bounds are enforced by reading one byte past the
// limit and rejecting, not by believing a declared length up front.
func Extract(r io.Reader, inputLimit, outputLimit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, inputLimit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > inputLimit {
		return nil, ErrInputLimitExceeded
	}

	section, err := binfmt.Section(data)
	if err != nil {
		return nil, err
	}
	if int64(len(section)) > outputLimit {
		return nil, ErrOutputLimitExceeded
	}

	zr, err := zlib.NewReader(bytes.NewReader(section))
	if err != nil {
		return nil, binfmt.ErrMalformed
	}
	defer zr.Close()

	limited := io.LimitReader(zr, outputLimit+1)
	out, err := io.ReadAll(limited)
	if err != nil {
		return nil, err
	}
	if int64(len(out)) > outputLimit {
		return nil, ErrOutputLimitExceeded
	}
	return out, nil
}
