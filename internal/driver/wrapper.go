package driver

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/renameio"
	"golang.org/x/xerrors"

	"github.com/rust-secure-code/cargo-auditable-go/internal/auditable"
	"github.com/rust-secure-code/cargo-auditable-go/internal/metadata"
	"github.com/rust-secure-code/cargo-auditable-go/internal/objectfile"
	"github.com/rust-secure-code/cargo-auditable-go/internal/rustcargs"
	"github.com/rust-secure-code/cargo-auditable-go/internal/targetinfo"
)

// runWrapper is invoked as `<this binary> rustc <original rustc args>`,
// cargo's convention for RUSTC_WORKSPACE_WRAPPER. args excludes the
// leading "rustc". It forwards the compiler invocation unchanged unless
// this is a primary-package compile that injects a linkable artifact.
func runWrapper(args []string) int {
	parsed := rustcargs.Parse(args)
	finalArgs := args

	if os.Getenv(envPrimaryPackage) != "" && parsed.ShouldInject() {
		augmented, err := inject(args, parsed)
		switch {
		case err == nil:
			finalArgs = augmented
		case err == objectfile.ErrUnsupportedArchitecture:
			fmt.Fprintf(os.Stderr, "cargo-auditable: warning: unsupported target architecture, building without an embedded SBOM\n")
		default:
			fmt.Fprintf(os.Stderr, "cargo-auditable: warning: failed to embed SBOM: %v\n", err)
		}
	}

	cmd := exec.Command("rustc", finalArgs...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = withoutWorkspaceWrapper(os.Environ())
	return runAndExitCode(cmd)
}

// inject builds the SBOM object file for this compile and returns the
// rustc argument list with the link-arg flags that embed it appended.
func inject(args []string, parsed rustcargs.Args) ([]string, error) {
	triple := parsed.Target
	if triple == "" {
		var err error
		triple, err = hostTargetTriple()
		if err != nil {
			return nil, err
		}
	}

	target, err := targetinfo.Query(context.Background(), "rustc", triple)
	if err != nil {
		return nil, err
	}

	sbom, err := collectSBOM(target)
	if err != nil {
		return nil, err
	}
	payload, err := auditable.Encode(sbom)
	if err != nil {
		return nil, err
	}

	obj, err := objectfile.Write(target, triple, payload, versionInfoSymbol)
	if err != nil {
		return nil, err
	}

	outDir := parsed.OutDir
	if outDir == "" {
		outDir = "."
	}
	objPath := filepath.Join(outDir, parsed.CrateName+"_audit_data.o")
	if err := writeObjectFileAtomically(objPath, obj); err != nil {
		return nil, xerrors.Errorf("writing %s: %w", objPath, err)
	}

	linkArgs := []string{
		"-Clink-arg=" + objPath,
		"-Clink-arg=" + retainSymbolFlag(target, parsed),
	}
	return append(append([]string{}, args...), linkArgs...), nil
}

// retainSymbolFlag picks the linker directive that keeps
// AUDITABLE_VERSION_INFO from being dead-stripped, varying by container
// format and by whether rustc is driving a "bare" linker directly instead
// of going through a cc-style driver that understands -Wl,.
func retainSymbolFlag(t targetinfo.Target, parsed rustcargs.Args) string {
	bare := isBareLinker(parsed)
	switch t.Container() {
	case targetinfo.ContainerMachO:
		flag := "-u,_" + versionInfoSymbol
		if bare {
			return flag
		}
		return "-Wl," + flag
	case targetinfo.ContainerCOFF:
		return "/INCLUDE:" + versionInfoSymbol
	default:
		flag := "--undefined=" + versionInfoSymbol
		if bare {
			return flag
		}
		return "-Wl," + flag
	}
}

// isBareLinker reports whether rustc was told to invoke the linker
// directly (-Clinker-flavor=ld and friends) rather than through a cc-style
// driver, which determines whether link-args need a -Wl, escape.
func isBareLinker(parsed rustcargs.Args) bool {
	flavor, ok := parsed.CodegenOption("linker-flavor")
	if !ok {
		return false
	}
	return flavor == "ld" || strings.HasPrefix(flavor, "ld.")
}

// collectSBOM builds the SBOM for the crate currently being compiled,
// preferring a build-tool-deposited precursor file over querying metadata
// fresh, since the precursor is scoped to this artifact rather than the
// whole workspace.
func collectSBOM(_ targetinfo.Target) (auditable.SBOM, error) {
	if path := firstSBOMPath(os.Getenv(envSBOMPath)); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return auditable.SBOM{}, xerrors.Errorf("reading SBOM precursor: %w", err)
		}
		precursor, err := metadata.ParsePrecursor(data)
		if err != nil {
			return auditable.SBOM{}, xerrors.Errorf("parsing SBOM precursor: %w", err)
		}
		return auditable.FromPrecursor(precursor, nil)
	}

	graph, err := queryCargoMetadata()
	if err != nil {
		return auditable.SBOM{}, err
	}
	return auditable.FromMetadata(graph, nil)
}

// firstSBOMPath returns the first path in CARGO_SBOM_PATH, which Cargo
// documents as a platform path-list (":"- or ";"-separated) of precursor
// files, one per compiled target in this crate; we only ever need the one
// for the artifact currently being linked.
func firstSBOMPath(envVal string) string {
	if envVal == "" {
		return ""
	}
	return strings.Split(envVal, string(os.PathListSeparator))[0]
}

// queryCargoMetadata runs `cargo metadata` restricted to this crate's own
// manifest, reusing the flags captured from the front-end invocation so
// the nested query sees the same --offline/--locked/--frozen/--config the
// user originally passed to `cargo auditable`.
func queryCargoMetadata() (metadata.Graph, error) {
	cargoArgs := []string{"metadata", "--format-version=1"}
	if manifestDir := os.Getenv("CARGO_MANIFEST_DIR"); manifestDir != "" {
		cargoArgs = append(cargoArgs, "--manifest-path", filepath.Join(manifestDir, "Cargo.toml"))
	}
	if orig, ok := forwardedArgsFromEnv(); ok {
		if orig.Offline {
			cargoArgs = append(cargoArgs, "--offline")
		}
		if orig.Locked {
			cargoArgs = append(cargoArgs, "--locked")
		}
		if orig.Frozen {
			cargoArgs = append(cargoArgs, "--frozen")
		}
		for _, c := range orig.Config {
			cargoArgs = append(cargoArgs, "--config", c)
		}
	}

	cmd := exec.Command("cargo", cargoArgs...)
	cmd.Env = withoutWorkspaceWrapper(os.Environ())
	out, err := cmd.Output()
	if err != nil {
		return metadata.Graph{}, xerrors.Errorf("%v: %w", cmd.Args, err)
	}
	return metadata.ParseCargoMetadata(out)
}

// withoutWorkspaceWrapper strips RUSTC_WORKSPACE_WRAPPER from a copy of
// env so a nested cargo/rustc invocation doesn't recursively re-enter this
// wrapper. The parent process's own environment is never touched.
func withoutWorkspaceWrapper(env []string) []string {
	out := make([]string, 0, len(env))
	prefix := envWorkspaceWrapper + "="
	for _, kv := range env {
		if strings.HasPrefix(kv, prefix) {
			continue
		}
		out = append(out, kv)
	}
	return out
}

// hostTargetTriple asks rustc for the default target triple of the host
// it's running on, for invocations that didn't pass an explicit --target.
func hostTargetTriple() (string, error) {
	cmd := exec.Command("rustc", "-vV")
	out, err := cmd.Output()
	if err != nil {
		return "", xerrors.Errorf("%v: %w", cmd.Args, err)
	}
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := scanner.Text()
		if rest, ok := strings.CutPrefix(line, "host: "); ok {
			return rest, nil
		}
	}
	return "", xerrors.New("rustc -vV output did not contain a host line")
}

// writeObjectFileAtomically writes obj to path via a renameio temp file on
// the same filesystem, renamed into place once fully written — concurrent wrapper
// invocations for other crates never observe a partially written object
// file.
func writeObjectFileAtomically(path string, obj []byte) error {
	f, err := renameio.TempFile("", path)
	if err != nil {
		return err
	}
	defer f.Cleanup()
	if _, err := f.Write(obj); err != nil {
		return err
	}
	return f.CloseAtomicallyReplace()
}
