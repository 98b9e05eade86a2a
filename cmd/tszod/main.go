package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const version = "0.1.0-dev"

func main() {
	// A .env file may set TSZOD_CONFIG; a missing file is fine.
	_ = godotenv.Load()
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		return runBuild(nil, stdout, stderr)
	}

	switch args[0] {
	case "build":
		return runBuild(args[1:], stdout, stderr)
	case "watch":
		return runWatch(args[1:], stdout, stderr)
	case "dump":
		return runDump(args[1:], stdout, stderr)
	case "--version", "-v":
		fmt.Fprintln(stdout, "tszod", version)
		return 0
	case "--help", "-h":
		printUsage(stdout)
		return 0
	default:
		if strings.HasPrefix(args[0], "-") {
			return runBuild(args, stdout, stderr)
		}
		fmt.Fprintf(stderr, "unknown command: %s\n", args[0])
		printUsage(stderr)
		return 1
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "tszod - compile TypeScript type declarations into zod schemas")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  tszod [flags]                 Build the schema module (default)")
	fmt.Fprintln(w, "  tszod build [flags]           Build the schema module")
	fmt.Fprintln(w, "  tszod watch [flags]           Rebuild whenever the input or config changes")
	fmt.Fprintln(w, "  tszod dump [flags]            Print compiled declarations to stdout")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Flags:")
	fmt.Fprintln(w, "  --version, -v          Print version and exit")
	fmt.Fprintln(w, "  --help, -h             Print this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Build Flags:")
	fmt.Fprintln(w, "  --config <path>        Path to tszod.config.yaml (default: discovered, or $TSZOD_CONFIG)")
	fmt.Fprintln(w, "  --input, -i <path>     Type unit to compile (.json, .yaml, .yml)")
	fmt.Fprintln(w, "  --output, -o <path>    Schema module to write")
	fmt.Fprintln(w, "  --workers <n>          Declarations compiled in parallel")
	fmt.Fprintln(w, "  --strict               Treat warnings as errors")
	fmt.Fprintln(w, "  --quiet                Suppress warnings")
	fmt.Fprintln(w, "  --force                Rebuild even when the build cache is valid")
	fmt.Fprintln(w, "  --verbose              Print debug logs")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Watch Flags:")
	fmt.Fprintln(w, "  Build flags, plus")
	fmt.Fprintln(w, "  --debounce <duration>  Quiet period before rebuilding (default: 200ms)")
	fmt.Fprintln(w, "  --exec <command>       Command restarted after each successful build")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Dump Flags:")
	fmt.Fprintln(w, "  --format <json|ts>     Output format (default: json)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  tszod")
	fmt.Fprintln(w, "  tszod build --input api/types.ast.json --output src/api.zod.ts")
	fmt.Fprintln(w, "  tszod dump --format ts")
	fmt.Fprintln(w)
}
