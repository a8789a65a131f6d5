package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: docassets <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  rewrite    Rewrite documents into an output root and relocate their images")
	fmt.Fprintln(w, "  preview    Stage one document into a preview directory")
	fmt.Fprintln(w, "  watch      Stage one document and restage it on every save")
	fmt.Fprintln(w, "  refs       List the image references of a document")
	fmt.Fprintln(w, "  config     Print the effective configuration as YAML")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'docassets help <command>' for details on a specific command.")
}

// printCommonUsage prints the flags every command accepts.
func printCommonUsage(w io.Writer) {
	fmt.Fprintln(w, "Common:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "      --log-level <s>       Log level: debug, info, warn, error")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show timing and info logs")
}

// printRewriteUsage prints usage for the rewrite command.
func printRewriteUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: docassets rewrite [input] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Rewrite Markdown and Typst documents into an output root. Local images")
	fmt.Fprintln(w, "outside the root are copied into <output>/assets and referenced as")
	fmt.Fprintln(w, "/assets/<name>; URLs are left untouched.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  input    Document or directory (optional if config has input.defaultDir)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -o, --output <dir>        Output root (default: output.defaultDir, else ./out)")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel workers (0 = auto)")
	fmt.Fprintln(w, "      --strict              Exit 5 if a reference was left unchanged")
	fmt.Fprintln(w, "      --no-serialize        Do not lock the assets directory around copies")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printPreviewUsage prints usage for the preview command.
func printPreviewUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: docassets preview <document> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Stage a document into a preview directory with its images copied into")
	fmt.Fprintln(w, "assets/, then print the staged path. <dir>/<document name> is replaced if")
	fmt.Fprintln(w, "it exists; a directory containing the document's own directory is refused.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -d, --dir <dir>           Preview directory (default: new temp dir)")
	fmt.Fprintln(w, "      --strict              Exit 5 if a reference was left unchanged")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printWatchUsage prints usage for the watch command.
func printWatchUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: docassets watch <document> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Stage a document like preview, then restage it whenever it is saved.")
	fmt.Fprintln(w, "Stops on Ctrl+C.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -d, --dir <dir>           Preview directory (default: new temp dir)")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printRefsUsage prints usage for the refs command.
func printRefsUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: docassets refs <document> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "List every image reference with the file it resolves to. Nothing is copied.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --missing             Only list local references whose file is missing")
	fmt.Fprintln(w, "      --strict              Exit 5 if a local reference is missing")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// runHelp prints help for a specific command and returns the exit code.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	switch args[0] {
	case "rewrite":
		printRewriteUsage(env.Stdout)
	case "preview":
		printPreviewUsage(env.Stdout)
	case "watch":
		printWatchUsage(env.Stdout)
	case "refs":
		printRefsUsage(env.Stdout)
	case "config":
		printConfigUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: docassets version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: docassets help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "unknown command: %s\n\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}

// printConfigUsage prints usage for the config command.
func printConfigUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: docassets config [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Print the configuration a command would run with: defaults, then the")
	fmt.Fprintln(w, "config file, then DOCASSETS_* variables, then flags.")
	fmt.Fprintln(w)
	printCommonUsage(w)
}
