// Package driver implements the two-mode process that both subcommands of
// this tool boil down to: a front-end that re-invokes Cargo with itself
// installed as the per-crate compiler wrapper, and a wrapper that
// intercepts each rustc invocation long enough to embed an SBOM object
// file into the ones that produce a linkable artifact.
package driver

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// versionInfoSymbol is the symbol the linker is told to retain so the
// SBOM section survives dead-stripping; it marks the payload the same way
// across every container format this tool targets.
const versionInfoSymbol = "AUDITABLE_VERSION_INFO"

const (
	envPrimaryPackage   = "CARGO_PRIMARY_PACKAGE"
	envWorkspaceWrapper = "RUSTC_WORKSPACE_WRAPPER"
	envOrigArgs         = "CARGO_AUDITABLE_ORIG_ARGS"
	envSBOMPath         = "CARGO_SBOM_PATH"
)

// Run is the single entry point shared by cmd/cargo-auditable's main. args
// is the process's arguments with argv[0] already stripped. It returns the
// process exit code to use.
func Run(args []string) int {
	if len(args) > 0 && args[0] == "rustc" {
		return runWrapper(args[1:])
	}
	return runFrontend(args)
}

// runFrontend re-invokes cargo with the remaining arguments, installing
// this same binary as the workspace rustc wrapper so every local crate's
// compile step routes back through runWrapper. Using the workspace slot
// (not the plain RUSTC_WRAPPER) means dependencies pulled from crates.io
// are compiled directly by rustc and never see this wrapper at all.
func runFrontend(args []string) int {
	// Cargo runs an external subcommand as `cargo-auditable auditable ...`;
	// the tag itself is not an argument for the nested cargo.
	if len(args) > 0 && args[0] == "auditable" {
		args = args[1:]
	}

	self, err := os.Executable()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargo-auditable: locating own executable: %v\n", err)
		return 1
	}

	cmd := exec.Command("cargo", args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = append(os.Environ(), envWorkspaceWrapper+"="+self)

	if origArgs, err := forwardedArgsJSON(args); err == nil {
		cmd.Env = append(cmd.Env, envOrigArgs+"="+origArgs)
	}

	return runAndExitCode(cmd)
}

// runAndExitCode runs cmd and translates its outcome into a process exit
// code: the child's own code when it ran and exited, 1 if we couldn't even
// start it (no point guessing a more specific code for that).
func runAndExitCode(cmd *exec.Cmd) int {
	err := cmd.Run()
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	fmt.Fprintf(os.Stderr, "cargo-auditable: %v\n", err)
	return 1
}
