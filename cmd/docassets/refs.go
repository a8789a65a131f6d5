package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/alnah/go-docassets"
)

// runRefs lists the references of one document without writing anything.
func runRefs(_ context.Context, args []string, env *Environment) error {
	flags, positional, err := parseRefsFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if len(positional) != 1 {
		return fmt.Errorf("%w: expected exactly one document, got %d", ErrUsage, len(positional))
	}
	if _, err := loadSettings(&flags.common, env); err != nil {
		return err
	}

	docPath, err := filepath.Abs(positional[0])
	if err != nil {
		return fmt.Errorf("%w: %v", ErrReadDocument, err)
	}
	content, err := os.ReadFile(docPath) // #nosec G304 -- user-provided document
	if err != nil {
		return fmt.Errorf("%w: %w", ErrReadDocument, err)
	}

	eng, err := docassets.NewEngine()
	if err != nil {
		return err
	}
	infos := eng.Inspect(docassets.Input{Text: string(content), BaseDir: filepath.Dir(docPath)})

	missing := printReferences(env, infos, flags.missing)

	if flags.strict && missing > 0 {
		return fmt.Errorf("%w: %d local reference(s) missing", ErrDiagnostics, missing)
	}
	return nil
}

// printReferences writes a table of infos and returns how many local
// references point at missing files. With onlyMissing, other rows are skipped.
func printReferences(env *Environment, infos []docassets.ReferenceInfo, onlyMissing bool) int {
	tw := tabwriter.NewWriter(env.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SYNTAX\tPATH\tLOCATION\tRESOLVED\tEXISTS")

	missing := 0
	for _, info := range infos {
		location, resolved, exists := "external", "-", "-"
		switch {
		case info.Managed:
			location, resolved = "managed", info.Path
		case !info.External:
			location, resolved, exists = "local", info.Path, "yes"
			if !info.Exists {
				exists = "no"
				missing++
			}
		}
		if onlyMissing && exists != "no" {
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", info.Syntax, info.RawPath, location, resolved, exists)
	}

	// Error ignored: the writers are stdout or an in-memory buffer.
	_ = tw.Flush()
	return missing
}
