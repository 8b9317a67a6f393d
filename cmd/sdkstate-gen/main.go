// Command sdkstate-gen compiles the SDK state table (states.yaml) into Go.
//
// Usage:
//
//	sdkstate-gen -input pkg/sdkstate/states.yaml -output pkg/sdkstate/states_gen.go
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/tools/imports"
)

func main() {
	input := flag.String("input", "", "Path to the state table YAML")
	output := flag.String("output", "", "Path of the generated Go file")
	flag.Parse()

	if *input == "" || *output == "" {
		fmt.Fprintln(os.Stderr, "Usage: sdkstate-gen -input <states.yaml> -output <states_gen.go>")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if err := run(*input, *output); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(input, output string) error {
	table, err := LoadStateTable(input)
	if err != nil {
		return fmt.Errorf("loading state table: %w", err)
	}

	code, err := Generate(table)
	if err != nil {
		return fmt.Errorf("generating: %w", err)
	}

	if err := writeFormatted(output, code); err != nil {
		return err
	}
	fmt.Printf("  generated %s (%d states)\n", output, len(table.States))
	return nil
}

// writeFormatted formats Go source code with goimports and writes it to a file.
func writeFormatted(path string, code string) error {
	formatted, err := imports.Process(path, []byte(code), nil)
	if err != nil {
		_ = os.WriteFile(path+".broken", []byte(code), 0o644)
		return fmt.Errorf("goimports %s: %w", filepath.Base(path), err)
	}
	return os.WriteFile(path, formatted, 0o644)
}
