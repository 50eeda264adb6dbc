// Package kaggle drives the kaggle CLI to pull, push and query kernels.
package kaggle

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/starford/kfmt/internal/kernel"
	"github.com/starford/kfmt/internal/shell"
)

// MetadataFile is written next to the kernel by a pull with -m and read by push.
const MetadataFile = "kernel-metadata.json"

var statusRe = regexp.MustCompile(`has status "([^"]+)"`)

// Client runs kaggle kernels subcommands.
type Client struct {
	runner  shell.Runner
	command string
	logger  *slog.Logger
}

// NewClient returns a client running command (e.g. "kaggle") through runner.
func NewClient(runner shell.Runner, command string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{runner: runner, command: command, logger: logger}
}

func (c *Client) run(ctx context.Context, args ...string) (shell.Result, error) {
	cmd, err := shell.FromLine(c.command, args...)
	if err != nil {
		return shell.Result{}, fmt.Errorf("kaggle: %w", err)
	}
	res, err := shell.RunChecked(ctx, c.runner, cmd)
	if err != nil {
		return res, fmt.Errorf("kaggle %s: %w", strings.Join(args[:2], " "), err)
	}
	return res, nil
}

// Pull downloads the kernel and its metadata into dir.
func (c *Client) Pull(ctx context.Context, ref kernel.Ref, dir string) error {
	c.logger.Info("pulling kernel", slog.String("kernel", ref.String()), slog.String("dir", dir))
	_, err := c.run(ctx, "kernels", "pull", "-m", "-p", dir, ref.String())
	return err
}

// Push uploads the kernel found in dir.
func (c *Client) Push(ctx context.Context, dir string) error {
	c.logger.Info("pushing kernel", slog.String("dir", dir))
	_, err := c.run(ctx, "kernels", "push", "-p", dir)
	return err
}

// Status returns the kernel's current state, e.g. "queued" right after a push.
func (c *Client) Status(ctx context.Context, ref kernel.Ref) (string, error) {
	res, err := c.run(ctx, "kernels", "status", ref.String())
	if err != nil {
		return "", err
	}
	return ParseStatus(res.Stdout), nil
}

// ParseStatus extracts the quoted state from the CLI's status line, falling
// back to the trimmed output.
func ParseStatus(out string) string {
	if m := statusRe.FindStringSubmatch(out); m != nil {
		return m[1]
	}
	return strings.TrimSpace(out)
}
