package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"

	"github.com/tsgonest/tszod/internal/compiler"
	"github.com/tsgonest/tszod/internal/diagnostic"
	"github.com/tsgonest/tszod/internal/render"
	"github.com/tsgonest/tszod/internal/typeast"
)

// dumpOutput is the JSON written by dump.
type dumpOutput struct {
	Fingerprint  string                  `json:"fingerprint"`
	Order        []string                `json:"order"`
	Cycles       [][]string              `json:"cycles,omitempty"`
	Declarations []*compiler.Result      `json:"declarations"`
	Failures     []dumpFailure           `json:"failures,omitempty"`
	Skipped      []string                `json:"skipped,omitempty"`
	Diagnostics  []diagnostic.Diagnostic `json:"diagnostics,omitempty"`
}

type dumpFailure struct {
	Declaration string `json:"declaration"`
	Error       string `json:"error"`
}

// runDump compiles the input unit and prints the compiled declarations.
func runDump(args []string, stdout, stderr io.Writer) int {
	f, err := parseBuildArgs("dump", args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	p, err := loadProject(f, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	unit, err := typeast.Load(p.cfg.Input)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	d, err := p.newDriver(f.Verbose, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	report, err := d.Run(context.Background(), unit)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	if f.Format == "ts" {
		for _, name := range report.Order {
			r, _ := report.Result(name)
			fmt.Fprintf(stdout, "%s = %s\n", r.SchemaName, render.Expr(r.Schema))
		}
		for _, fail := range report.Failures {
			fmt.Fprintf(stdout, "// %s: %v\n", fail.Declaration, fail.Err)
		}
	} else {
		out := dumpOutput{
			Fingerprint:  report.Fingerprint,
			Order:        report.Order,
			Cycles:       report.Cycles,
			Declarations: report.Results,
			Skipped:      report.Skipped,
			Diagnostics:  report.Diagnostics.Diagnostics(),
		}
		for _, fail := range report.Failures {
			out.Failures = append(out.Failures, dumpFailure{Declaration: fail.Declaration, Error: fail.Err.Error()})
		}
		if err := json.MarshalWrite(stdout, out, jsontext.WithIndent("  ")); err != nil {
			fmt.Fprintf(stderr, "error encoding JSON: %v\n", err)
			return 1
		}
		fmt.Fprintln(stdout)
	}

	if !report.OK() {
		return 1
	}
	return 0
}
