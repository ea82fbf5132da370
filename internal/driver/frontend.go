package driver

import (
	"os"

	"github.com/rust-secure-code/cargo-auditable-go/internal/cargoargs"
)

// forwardedArgsJSON captures the cargo flags the wrapper needs to know
// about when it later queries metadata on its own, and serializes them for
// CARGO_AUDITABLE_ORIG_ARGS.
func forwardedArgsJSON(args []string) (string, error) {
	return cargoargs.Parse(args).ToJSON()
}

// forwardedArgsFromEnv recovers the Args the front end serialized into
// CARGO_AUDITABLE_ORIG_ARGS, if any.
func forwardedArgsFromEnv() (cargoargs.Args, bool) {
	raw, ok := os.LookupEnv(envOrigArgs)
	if !ok {
		return cargoargs.Args{}, false
	}
	args, err := cargoargs.FromJSON(raw)
	if err != nil {
		return cargoargs.Args{}, false
	}
	return args, true
}
