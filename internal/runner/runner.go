// Package runner supervises a child process that is restarted after every
// successful rebuild in watch mode.
package runner

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// DefaultStopTimeout is how long Stop waits before killing the process.
const DefaultStopTimeout = 5 * time.Second

// Runner manages one child process at a time.
type Runner struct {
	command string
	args    []string
	dir     string

	// Stdout and Stderr receive the child's output. Nil means the parent's.
	Stdout io.Writer
	Stderr io.Writer
	// StopTimeout bounds a graceful stop.
	StopTimeout time.Duration

	mu   sync.Mutex
	cmd  *exec.Cmd
	done chan struct{}
}

// New creates a runner for command with args, started in dir.
func New(command string, args []string, dir string) *Runner {
	return &Runner{
		command:     command,
		args:        args,
		dir:         dir,
		StopTimeout: DefaultStopTimeout,
	}
}

// Parse splits a command line on whitespace into a runner.
func Parse(line, dir string) (*Runner, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, errors.New("empty command")
	}
	return New(fields[0], fields[1:], dir), nil
}

// String returns the command line.
func (r *Runner) String() string {
	return strings.Join(append([]string{r.command}, r.args...), " ")
}

// Start starts the child process.
func (r *Runner) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cmd := exec.Command(r.command, r.args...)
	cmd.Dir = r.dir
	cmd.Stdout = orDefault(r.Stdout, os.Stdout)
	cmd.Stderr = orDefault(r.Stderr, os.Stderr)
	configure(cmd)

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting %s: %w", r, err)
	}
	done := make(chan struct{})
	go func() {
		cmd.Wait()
		close(done)
	}()
	r.cmd, r.done = cmd, done
	return nil
}

// Stop terminates the child process, killing it when it outlives
// StopTimeout. Stopping a runner that never started is a no-op.
func (r *Runner) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cmd == nil || r.cmd.Process == nil {
		return nil
	}
	select {
	case <-r.done:
		return nil
	default:
	}

	terminate(r.cmd)
	select {
	case <-r.done:
	case <-time.After(r.StopTimeout):
		kill(r.cmd)
		<-r.done
	}
	return nil
}

// Restart stops and restarts the child process.
func (r *Runner) Restart() error {
	if err := r.Stop(); err != nil {
		return err
	}
	return r.Start()
}

// Wait blocks until the child process exits.
func (r *Runner) Wait() {
	r.mu.Lock()
	done := r.done
	r.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Running reports whether the child process is alive.
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.done == nil {
		return false
	}
	select {
	case <-r.done:
		return false
	default:
		return true
	}
}

func orDefault(w, def io.Writer) io.Writer {
	if w == nil {
		return def
	}
	return w
}
