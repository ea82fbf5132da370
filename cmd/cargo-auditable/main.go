// Command cargo-auditable is both halves of the SBOM-embedding build
// wrapper: invoked as `cargo auditable <subcommand> ...` it re-runs Cargo
// with itself installed as the per-crate rustc wrapper; invoked by Cargo
// as that wrapper it embeds a dependency manifest into the artifacts that
// need one and forwards everything else unchanged.
package main

import (
	"os"

	"github.com/rust-secure-code/cargo-auditable-go/internal/driver"
)

func main() {
	os.Exit(driver.Run(os.Args[1:]))
}
