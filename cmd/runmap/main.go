// runmap - adaptive run-length bitmap codec
//
// Usage:
//
//	runmap [--archive | --fixed] [--stats] -   compress stdin to stdout
//	runmap [--archive | --fixed] [--stats] +   expand stdin to stdout
//
// --archive wraps the stream in a checksummed container and --fixed uses the
// 8-bit run count format instead of the adaptive dictionary.
// --stats prints a summary to stderr.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/seiflotfy/runmap"
)

const usage = "usage: runmap [--archive | --fixed] [--stats] - | +\n" +
	"  -  compress stdin to stdout\n" +
	"  +  expand stdin to stdout\n"

type options struct {
	mode    string
	archive bool
	fixed   bool
	stats   bool
}

func main() {
	opts, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "runmap: %v\n%s", err, usage)
		os.Exit(2)
	}

	in := bufio.NewReader(os.Stdin)
	out := bufio.NewWriter(os.Stdout)

	stats, err := run(opts, out, in)
	if ferr := out.Flush(); ferr != nil && err == nil {
		err = ferr
	}
	if err != nil {
		fatal("%v", err)
	}
	if opts.stats {
		fmt.Fprintf(os.Stderr, "runmap %s: %s\n", opts.mode, stats)
	}
}

func parseArgs(args []string) (options, error) {
	var opts options
	for _, arg := range args {
		switch arg {
		case "-", "+":
			if opts.mode != "" {
				return opts, fmt.Errorf("mode given twice")
			}
			opts.mode = arg
		case "--archive":
			opts.archive = true
		case "--fixed":
			opts.fixed = true
		case "--stats":
			opts.stats = true
		default:
			return opts, fmt.Errorf("illegal command line argument %q", arg)
		}
	}
	if opts.mode == "" {
		return opts, fmt.Errorf("missing mode")
	}
	if opts.archive && opts.fixed {
		return opts, fmt.Errorf("--archive and --fixed are exclusive")
	}
	return opts, nil
}

func run(opts options, w io.Writer, r io.Reader) (runmap.Stats, error) {
	enc := runmap.NewEncoder()
	dec := runmap.NewDecoder()

	switch {
	case opts.mode == "-" && opts.archive:
		return enc.CompressArchive(w, r)
	case opts.mode == "-" && opts.fixed:
		return enc.CompressFixed(w, r)
	case opts.mode == "-":
		return enc.Compress(w, r)
	case opts.archive:
		return dec.ExpandArchive(w, r)
	case opts.fixed:
		return dec.ExpandFixed(w, r)
	default:
		return dec.Expand(w, r)
	}
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "runmap: "+format+"\n", args...)
	os.Exit(1)
}
