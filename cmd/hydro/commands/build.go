// cmd/hydro/commands/build.go
package commands

import (
	"fmt"
	"os"

	"hydro/internal/buildpipeline"
)

// BuildCommand resolves a root module and serializes it, either as a
// binary bundle (default) or re-emitted textual source, per section 6.2's
// `hydro build <file> [--format binary|source] [-o OUT]`.
func BuildCommand(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("build requires a file argument")
	}

	format := "binary"
	out := ""
	var path string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--format":
			if i+1 >= len(args) {
				return fmt.Errorf("--format requires binary or source")
			}
			i++
			format = args[i]
		case "-o", "--out":
			if i+1 >= len(args) {
				return fmt.Errorf("-o requires an output path")
			}
			i++
			out = args[i]
		default:
			if path == "" {
				path = args[i]
			}
		}
	}
	if path == "" {
		return fmt.Errorf("build requires a file argument")
	}

	root, err := loadEntry(path)
	if err != nil {
		return err
	}

	var bundle []byte
	switch format {
	case "binary":
		bundle, err = buildpipeline.Encode(root)
		if err != nil {
			return fmt.Errorf("build: %w", err)
		}
	case "source":
		bundle = []byte(buildpipeline.Print(root))
	default:
		return fmt.Errorf("build: unknown format %q (want binary or source)", format)
	}

	if out == "" {
		_, err = os.Stdout.Write(bundle)
		return err
	}
	if err := os.WriteFile(out, bundle, 0o644); err != nil {
		return fmt.Errorf("build: writing %s: %w", out, err)
	}

	hash, err := buildpipeline.ContentHash(bundle)
	if err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d bytes, content hash %s)\n", out, len(bundle), hash)
	return nil
}
