package main

import (
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"
)

// ErrUsage wraps flag parsing and argument count errors.
var ErrUsage = errors.New("invalid usage")

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config   string
	logLevel string
	quiet    bool
	verbose  bool
}

// rewriteFlags holds all flags for the rewrite command.
type rewriteFlags struct {
	common      commonFlags
	output      string
	workers     int
	strict      bool
	noSerialize bool
}

// stageFlags holds flags for the preview and watch commands.
type stageFlags struct {
	common commonFlags
	dir    string
	strict bool
}

// refsFlags holds flags for the refs command.
type refsFlags struct {
	common  commonFlags
	missing bool
	strict  bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn, error")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show per-document timing and info logs")
}

// newFlagSet creates a FlagSet that reports errors instead of exiting and
// prints usage to w.
func newFlagSet(name string, w io.Writer, usage func(io.Writer)) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(w)
	fs.Usage = func() { usage(w) }
	return fs
}

// parseArgs parses args, passing flag.ErrHelp through and wrapping every
// other failure in ErrUsage.
func parseArgs(fs *flag.FlagSet, args []string) ([]string, error) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return fs.Args(), nil
}

func parseRewriteFlags(args []string, w io.Writer) (*rewriteFlags, []string, error) {
	f := &rewriteFlags{}
	fs := newFlagSet("rewrite", w, printRewriteUsage)

	fs.StringVarP(&f.output, "output", "o", "", "output root directory")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	fs.BoolVar(&f.strict, "strict", false, "exit 5 if any reference was left unchanged")
	fs.BoolVar(&f.noSerialize, "no-serialize", false, "do not lock the assets directory around copies")
	addCommonFlags(fs, &f.common)

	positional, err := parseArgs(fs, args)
	if err != nil {
		return nil, nil, err
	}
	return f, positional, nil
}

func parseStageFlags(name string, args []string, w io.Writer) (*stageFlags, []string, error) {
	usage := printPreviewUsage
	if name == "watch" {
		usage = printWatchUsage
	}

	f := &stageFlags{}
	fs := newFlagSet(name, w, usage)

	fs.StringVarP(&f.dir, "dir", "d", "", "preview directory (default: new temp dir)")
	fs.BoolVar(&f.strict, "strict", false, "exit 5 if any reference was left unchanged")
	addCommonFlags(fs, &f.common)

	positional, err := parseArgs(fs, args)
	if err != nil {
		return nil, nil, err
	}
	return f, positional, nil
}

func parseRefsFlags(args []string, w io.Writer) (*refsFlags, []string, error) {
	f := &refsFlags{}
	fs := newFlagSet("refs", w, printRefsUsage)

	fs.BoolVar(&f.missing, "missing", false, "only list local references whose file is missing")
	fs.BoolVar(&f.strict, "strict", false, "exit 5 if any local reference is missing")
	addCommonFlags(fs, &f.common)

	positional, err := parseArgs(fs, args)
	if err != nil {
		return nil, nil, err
	}
	return f, positional, nil
}
