// Command rust-audit-info reads the SBOM embedded in a Rust binary by
// cargo-auditable and prints it as JSON. Usage:
//
//	rust-audit-info FILE [INPUT_LIMIT_BYTES [OUTPUT_LIMIT_BYTES]]
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/rust-secure-code/cargo-auditable-go/internal/auditable"
	"github.com/rust-secure-code/cargo-auditable-go/internal/extract"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "rust-audit-info: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: rust-audit-info FILE [INPUT_LIMIT_BYTES [OUTPUT_LIMIT_BYTES]]")
	}
	path := args[0]

	inputLimit := int64(extract.DefaultInputLimit)
	outputLimit := int64(extract.DefaultOutputLimit)
	if len(args) >= 2 {
		v, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid INPUT_LIMIT_BYTES: %w", err)
		}
		inputLimit = v
	}
	if len(args) >= 3 {
		v, err := strconv.ParseInt(args[2], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid OUTPUT_LIMIT_BYTES: %w", err)
		}
		outputLimit = v
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	data, err := extract.Extract(f, inputLimit, outputLimit)
	if err != nil {
		return err
	}

	sbom, err := auditable.Decode(data)
	if err != nil {
		return err
	}

	out, err := auditable.EncodeJSON(sbom)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(append(out, '\n'))
	return err
}
