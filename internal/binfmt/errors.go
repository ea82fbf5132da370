package binfmt

import "errors"

// Errors returned by Section and the container-specific parsers. They form a
// closed set mirroring binfarce's ParseError plus auditable-extract's own
// error enum: a small, exhaustive list a caller can switch on rather than
// an open-ended wrapped-error chain, since binary parsing
// failures are all "this isn't what it claims to be" and callers only ever
// need to distinguish "not an executable" from "no audit data" from
// "malformed".
var (
	// ErrNotExecutable means the input doesn't match any known container
	// magic at all.
	ErrNotExecutable = errors.New("binfmt: not a recognized executable container")
	// ErrNoAuditData means the container was parsed fine but carries no
	// .dep-v0 section.
	ErrNoAuditData = errors.New("binfmt: no audit data section present")
	// ErrMalformed means the container's own structure is inconsistent
	// (out-of-range offsets, bad counts, truncated headers).
	ErrMalformed = errors.New("binfmt: malformed container")
	// ErrUnexpectedEOF means a section or header claims bytes the input
	// doesn't actually have.
	ErrUnexpectedEOF = errors.New("binfmt: unexpected end of file")
)
