package resolvedition

import "errors"

var (
	ErrUnknownResolver = errors.New("unrecognized resolver version")
	ErrUnknownEdition  = errors.New("unrecognized Rust edition")
)
