package util

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Options holds the parsed driver configuration.
type Options struct {
	Sources     []string // Paths to source files, one per module.
	Out         string   // Output directory. Defaults to each source's own directory.
	Threads     int      // Parallelism across independent modules, for passes 1-4 and again for passes 6-10.
	Verbose     bool     // Print the generated module to stdout.
	TokenStream bool     // Dump the token stream and exit, skipping parsing.
	LLOnly      bool     // Stop after emitting .ll (always true; kept for compatibility).
	EmitObject  bool     // Also emit a native object file via the in-process target machine.
}

// ---------------------
// ----- Constants -----
// ---------------------

const maxThreads = 64 // Maximum modules compiled in parallel.
const appVersion = "l0c compiler 1.0"

// ---------------------
// ----- functions -----
// ---------------------

// ParseArgs parses command line arguments.
func ParseArgs() (Options, error) {
	opt := Options{Threads: 1, LLOnly: true}
	if len(os.Args) < 2 {
		return opt, nil
	}
	args := os.Args[1:]
	for i1 := 0; i1 < len(args); i1++ {
		switch args[i1] {
		case "-h", "--h", "-help", "--help":
			printHelp()
			os.Exit(0)
		case "-v", "--v", "-version", "--version":
			fmt.Println(appVersion)
			os.Exit(0)
		case "-ll-only":
			opt.LLOnly = true
		case "-obj":
			opt.EmitObject = true
		case "-ts":
			opt.TokenStream = true
		case "-vb":
			opt.Verbose = true
		case "-o":
			if i1+1 >= len(args) {
				return opt, fmt.Errorf("got flag %s but no argument", args[i1])
			}
			if strings.HasPrefix(args[i1+1], "-") {
				return opt, fmt.Errorf("expected output directory, got new flag %s", args[i1+1])
			}
			opt.Out = args[i1+1]
			i1++
		case "-t":
			if i1+1 >= len(args) {
				return opt, fmt.Errorf("got flag %s but no argument", args[i1])
			}
			t, err := strconv.Atoi(args[i1+1])
			if err != nil {
				return opt, fmt.Errorf("expected integer thread count, got: %s", args[i1+1])
			}
			if t <= 0 || t > maxThreads {
				return opt, fmt.Errorf("thread count must be integer in range [1, %d]", maxThreads)
			}
			opt.Threads = t
			i1++
		default:
			if strings.HasPrefix(args[i1], "-") {
				return opt, fmt.Errorf("unexpected flag: %s", args[i1])
			}
			opt.Sources = append(opt.Sources, args[i1])
		}
	}
	return opt, nil
}

// printHelp prints a helpful usage message to stdout.
func printHelp() {
	w := tabwriter.NewWriter(os.Stdout, 6, 1, 1, 0, 0)
	_, _ = fmt.Fprintln(w, "-h, -help\tPrints this help message and exits the application.")
	_, _ = fmt.Fprintln(w, "--h, --help")
	_, _ = fmt.Fprintln(w, "-o\tOutput directory. Defaults to each source file's own directory.")
	_, _ = fmt.Fprintln(w, "-ll-only\tStop after emitting .ll. The only mode this front-end supports.")
	_, _ = fmt.Fprintln(w, "-obj\tAlso emit a native object file alongside the .ll output.")
	_, _ = fmt.Fprintln(w, "-ts\tOutput the tokens of the source code and exit.")
	_, _ = fmt.Fprintf(w, "-t\tNumber of modules compiled in parallel. Must be in range [1, %d].\n", maxThreads)
	_, _ = fmt.Fprintln(w, "-v, -version\tPrints application version and exits the application.")
	_, _ = fmt.Fprintln(w, "--v, --version")
	_, _ = fmt.Fprintln(w, "-vb\tVerbose mode: print the generated module to stdout.")
	_ = w.Flush()
}
