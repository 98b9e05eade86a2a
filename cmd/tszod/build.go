package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/tsgonest/tszod/internal/buildcache"
	"github.com/tsgonest/tszod/internal/config"
	"github.com/tsgonest/tszod/internal/driver"
	"github.com/tsgonest/tszod/internal/pathalias"
	"github.com/tsgonest/tszod/internal/render"
	"github.com/tsgonest/tszod/internal/typeast"
)

// buildFlags holds the flags of build, watch and dump.
type buildFlags struct {
	ConfigPath string
	Input      string
	Output     string
	Workers    int
	Strict     bool
	Quiet      bool
	Force      bool
	Verbose    bool
	Format     string
	Debounce   time.Duration
	Exec       string
}

// parseBuildArgs parses the flags of the named subcommand.
func parseBuildArgs(name string, args []string, stderr io.Writer) (buildFlags, error) {
	var f buildFlags
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&f.ConfigPath, "config", "", "Path to tszod config file (tszod.config.yaml)")
	fs.StringVar(&f.Input, "input", "", "Type unit to compile (or use -i)")
	fs.StringVar(&f.Input, "i", "", "Type unit to compile (shorthand for --input)")
	fs.IntVar(&f.Workers, "workers", 0, "Declarations compiled in parallel (default from config)")
	fs.BoolVar(&f.Strict, "strict", false, "Treat warnings as errors")
	fs.BoolVar(&f.Quiet, "quiet", false, "Suppress warnings")
	fs.BoolVar(&f.Verbose, "verbose", false, "Print debug logs")
	switch name {
	case "dump":
		fs.StringVar(&f.Format, "format", "json", "Output format: json or ts")
	case "build", "watch":
		fs.StringVar(&f.Output, "output", "", "Schema module to write (or use -o)")
		fs.StringVar(&f.Output, "o", "", "Schema module to write (shorthand for --output)")
		fs.BoolVar(&f.Force, "force", false, "Rebuild even when the build cache is valid")
	}
	if name == "watch" {
		fs.DurationVar(&f.Debounce, "debounce", 200*time.Millisecond, "Quiet period before rebuilding")
		fs.StringVar(&f.Exec, "exec", "", "Command restarted after each successful build")
	}
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: tszod %s [flags]\n\nFlags:\n", name)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return f, err
	}
	if fs.NArg() > 0 {
		return f, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if f.Workers < 0 {
		return f, fmt.Errorf("--workers must not be negative, got %d", f.Workers)
	}
	if name == "dump" && f.Format != "json" && f.Format != "ts" {
		return f, fmt.Errorf("--format must be json or ts, got %q", f.Format)
	}
	return f, nil
}

// project is a loaded config with flags applied.
type project struct {
	cfg        *config.Config
	configPath string
	// baseDir anchors path aliases: the config file's directory, or the
	// working directory without one.
	baseDir string
}

// loadProject locates and loads the config, then applies flag overrides.
func loadProject(f buildFlags, stderr io.Writer) (*project, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("could not get working directory: %w", err)
	}

	p := &project{configPath: config.Locate(f.ConfigPath, cwd), baseDir: cwd}
	if p.configPath != "" {
		if p.cfg, err = config.Load(p.configPath); err != nil {
			return nil, err
		}
		if p.baseDir, err = filepath.Abs(filepath.Dir(p.configPath)); err != nil {
			return nil, err
		}
		fmt.Fprintf(stderr, "loaded config from %s\n", p.configPath)
	} else {
		cfg := config.DefaultConfig()
		p.cfg = &cfg
	}

	if f.Input != "" {
		p.cfg.Input = f.Input
	}
	if f.Output != "" {
		p.cfg.Output = f.Output
	}
	if f.Workers > 0 {
		p.cfg.Workers = f.Workers
	}
	p.cfg.Strict = p.cfg.Strict || f.Strict
	p.cfg.Quiet = p.cfg.Quiet || f.Quiet

	result := p.cfg.ValidateDetailed()
	for _, w := range result.Warnings {
		fmt.Fprintf(stderr, "warning: config: %s\n", w)
	}
	if err := p.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if p.cfg.Input, err = filepath.Abs(p.cfg.Input); err != nil {
		return nil, err
	}
	if p.cfg.Output, err = filepath.Abs(p.cfg.Output); err != nil {
		return nil, err
	}
	return p, nil
}

// newDriver builds a driver configured from the project.
func (p *project) newDriver(verbose bool, stderr io.Writer) (*driver.Driver, error) {
	return driver.New(p.cfg.CompilerOptions(),
		driver.WithLogger(driver.StdLogger{L: log.New(stderr, "", 0), Verbose: verbose}),
		driver.WithWorkers(p.cfg.Workers),
		driver.WithCacheSize(p.cfg.CacheSize),
		driver.WithStrict(p.cfg.Strict),
		driver.WithQuiet(p.cfg.Quiet),
		driver.WithFile(p.cfg.Input),
	)
}

// runBuild compiles the input unit and writes the schema module.
func runBuild(args []string, stdout, stderr io.Writer) int {
	f, err := parseBuildArgs("build", args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return build(f, stderr)
}

// build runs one build with parsed flags.
func build(f buildFlags, stderr io.Writer) int {
	start := time.Now()

	p, err := loadProject(f, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	cfg := p.cfg

	unit, err := typeast.Load(cfg.Input)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	fingerprint, err := driver.Fingerprint(unit)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	configHash, err := buildcache.HashConfig(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	cachePath := buildcache.CachePath(cfg.Output, cfg.Input)
	if !f.Force && buildcache.Load(cachePath).IsValid(fingerprint, configHash) {
		fmt.Fprintf(stderr, "%s is up to date\n", cfg.Output)
		return 0
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
	fmt.Fprint(stderr, report.Diagnostics.FormatAll())

	out := render.File(report, render.FileOptions{
		TypesImport: pathalias.New(p.baseDir, cfg.Paths).Resolve(cfg.TypesImport, cfg.Output),
		Source:      filepath.Base(cfg.Input),
	})
	if err := writeOutput(cfg.Output, out); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	fmt.Fprintf(stderr, "wrote %d schema(s) to %s (%s)\n", len(report.Results), cfg.Output, report.Diagnostics.Summary())

	if !report.OK() {
		buildcache.Delete(cachePath)
		fmt.Fprintf(stderr, "build failed: %d declaration(s) failed, %d error(s)\n",
			len(report.Failures), report.Diagnostics.ErrorCount())
		return 1
	}
	if err := buildcache.Save(cachePath, buildcache.New(fingerprint, configHash, []string{cfg.Output})); err != nil {
		fmt.Fprintf(stderr, "warning: build cache: %v\n", err)
	}
	fmt.Fprintf(stderr, "done in %s\n", time.Since(start).Round(time.Millisecond))
	return 0
}

// writeOutput writes the module atomically, creating its directory.
func writeOutput(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
