package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/tsgonest/tszod/internal/runner"
	"github.com/tsgonest/tszod/internal/watcher"
)

// runWatch builds once, then rebuilds whenever the input unit or the config
// file changes, until interrupted. With --exec the command is restarted
// after every successful build.
func runWatch(args []string, stdout, stderr io.Writer) int {
	f, err := parseBuildArgs("watch", args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return watch(ctx, f, stderr)
}

func watch(ctx context.Context, f buildFlags, stderr io.Writer) int {
	p, err := loadProject(f, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	paths := []string{p.cfg.Input}
	if p.configPath != "" {
		paths = append(paths, p.configPath)
	}

	var child *runner.Runner
	if f.Exec != "" {
		if child, err = runner.Parse(f.Exec, ""); err != nil {
			fmt.Fprintf(stderr, "error: --exec: %v\n", err)
			return 1
		}
		child.Stderr = stderr
		defer child.Stop()
	}
	rebuild := func() {
		if build(f, stderr) != 0 || child == nil {
			return
		}
		if err := child.Restart(); err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
		}
	}

	rebuild()
	fmt.Fprintf(stderr, "watching %d file(s) for changes\n", len(paths))

	w := watcher.New(paths, f.Debounce, func(events []watcher.Event) {
		for _, e := range events {
			fmt.Fprintf(stderr, "%s %s\n", e.Op, e.Path)
		}
		rebuild()
	})
	if err := w.Watch(ctx); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}
