// Package formatter runs the external code formatter on a script in place.
package formatter

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/starford/kfmt/internal/shell"
)

// Formatter rewrites a Python file in place.
type Formatter struct {
	runner  shell.Runner
	command string
	args    []string
	logger  *slog.Logger
}

// New returns a formatter running command (e.g. "black") with passthrough
// args placed before the target path.
func New(runner shell.Runner, command string, args []string, logger *slog.Logger) *Formatter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Formatter{runner: runner, command: command, args: args, logger: logger}
}

// Format runs the formatter on path.
func (f *Formatter) Format(ctx context.Context, path string) error {
	argv := make([]string, 0, len(f.args)+1)
	argv = append(argv, f.args...)
	argv = append(argv, path)

	cmd, err := shell.FromLine(f.command, argv...)
	if err != nil {
		return fmt.Errorf("formatter: %w", err)
	}
	f.logger.Info("formatting", slog.String("path", path), slog.String("command", cmd.String()))
	if _, err := shell.RunChecked(ctx, f.runner, cmd); err != nil {
		return fmt.Errorf("formatter: %w", err)
	}
	return nil
}
