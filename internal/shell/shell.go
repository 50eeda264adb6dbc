// Package shell runs external tools, capturing and echoing their output.
package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/mattn/go-shellwords"
	"golang.org/x/sync/errgroup"

	"github.com/starford/kfmt/internal/apperr"
)

// Command describes one external process invocation.
type Command struct {
	Name string
	Args []string
	Dir  string
	Env  []string // appended to the current environment
}

func (c Command) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// Result is the outcome of a finished process.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Runner runs external commands. A non-zero exit status is reported in
// Result, not as an error; the error is reserved for processes that could
// not be started or waited on.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}

// Exec runs commands with os/exec. Output is captured and, when Stdout or
// Stderr is set, echoed there verbatim as it arrives.
type Exec struct {
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

// Verify *Exec satisfies Runner at compile time.
var _ Runner = (*Exec)(nil)

// NewExec returns a runner echoing to the process's stdout and stderr.
func NewExec(logger *slog.Logger) *Exec {
	return &Exec{Stdout: os.Stdout, Stderr: os.Stderr, Logger: logger}
}

// Run starts cmd and waits for it to exit.
func (e *Exec) Run(ctx context.Context, cmd Command) (Result, error) {
	logger := e.Logger
	if logger == nil {
		logger = slog.Default()
	}

	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	if len(cmd.Env) > 0 {
		c.Env = append(os.Environ(), cmd.Env...)
	}

	stdoutPipe, err := c.StdoutPipe()
	if err != nil {
		return Result{}, fmt.Errorf("shell: stdout pipe: %w", err)
	}
	stderrPipe, err := c.StderrPipe()
	if err != nil {
		return Result{}, fmt.Errorf("shell: stderr pipe: %w", err)
	}

	logger.Debug("shell: run", slog.String("command", cmd.String()), slog.String("dir", cmd.Dir))
	if err := c.Start(); err != nil {
		return Result{}, fmt.Errorf("shell: start %s: %w", cmd.Name, err)
	}

	var stdout, stderr bytes.Buffer
	var g errgroup.Group
	g.Go(func() error { return drain(stdoutPipe, &stdout, e.Stdout) })
	g.Go(func() error { return drain(stderrPipe, &stderr, e.Stderr) })
	// Pipes must be fully read before Wait closes them.
	copyErr := g.Wait()
	waitErr := c.Wait()

	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			return res, fmt.Errorf("shell: wait %s: %w", cmd.Name, waitErr)
		}
		res.ExitCode = exitErr.ExitCode()
		if res.ExitCode < 0 {
			// Killed by a signal, usually ctx cancellation.
			if ctxErr := ctx.Err(); ctxErr != nil {
				return res, fmt.Errorf("shell: %s: %w", cmd.Name, ctxErr)
			}
			res.ExitCode = 1
		}
	}
	if copyErr != nil {
		return res, fmt.Errorf("shell: read output of %s: %w", cmd.Name, copyErr)
	}

	logger.Debug("shell: done", slog.String("command", cmd.Name), slog.Int("exit_code", res.ExitCode))
	return res, nil
}

func drain(r io.Reader, buf *bytes.Buffer, echo io.Writer) error {
	var w io.Writer = buf
	if echo != nil {
		w = io.MultiWriter(buf, echo)
	}
	_, err := io.Copy(w, r)
	return err
}

// Check turns a non-zero exit status into an *apperr.ToolError.
func Check(tool string, res Result) error {
	if res.ExitCode == 0 {
		return nil
	}
	return &apperr.ToolError{
		Tool:     tool,
		ExitCode: res.ExitCode,
		Stdout:   res.Stdout,
		Stderr:   res.Stderr,
	}
}

// RunChecked runs cmd and fails on a non-zero exit status.
func RunChecked(ctx context.Context, r Runner, cmd Command) (Result, error) {
	res, err := r.Run(ctx, cmd)
	if err != nil {
		return res, err
	}
	return res, Check(cmd.Name, res)
}

// Split parses a configured command line such as "python -m black" into
// argv. Environment variables and backticks are not expanded.
func Split(cmdline string) ([]string, error) {
	p := shellwords.NewParser()
	p.ParseEnv = false
	p.ParseBacktick = false
	argv, err := p.Parse(cmdline)
	if err != nil {
		return nil, fmt.Errorf("shell: parse %q: %w", cmdline, err)
	}
	if len(argv) == 0 {
		return nil, fmt.Errorf("shell: empty command")
	}
	return argv, nil
}

// FromLine builds a Command from a configured command line plus extra args.
func FromLine(cmdline string, args ...string) (Command, error) {
	argv, err := Split(cmdline)
	if err != nil {
		return Command{}, err
	}
	all := make([]string, 0, len(argv)-1+len(args))
	all = append(all, argv[1:]...)
	all = append(all, args...)
	return Command{Name: argv[0], Args: all}, nil
}
