// Package pipeline fetches a kernel, formats it and pushes it back.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/starford/kfmt/internal/apperr"
	"github.com/starford/kfmt/internal/kernel"
	"github.com/starford/kfmt/internal/magic"
	"github.com/starford/kfmt/internal/notebook"
	"github.com/starford/kfmt/internal/storage"
)

// Remote pulls and pushes kernels.
type Remote interface {
	Pull(ctx context.Context, ref kernel.Ref, dir string) error
	Push(ctx context.Context, dir string) error
	Status(ctx context.Context, ref kernel.Ref) (string, error)
}

// Formatter rewrites a script in place.
type Formatter interface {
	Format(ctx context.Context, path string) error
}

// Pipeline runs the steps in order and stops at the first failure.
type Pipeline struct {
	remote      Remote
	formatter   Formatter
	converter   notebook.Converter
	logger      *slog.Logger
	stagingRoot string
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = l
	}
}

// WithStagingRoot sets the parent of the temporary staging directories.
// Empty means the system temp directory.
func WithStagingRoot(dir string) Option {
	return func(p *Pipeline) {
		p.stagingRoot = dir
	}
}

// New returns a pipeline wired to its collaborators.
func New(remote Remote, formatter Formatter, converter notebook.Converter, opts ...Option) *Pipeline {
	p := &Pipeline{
		remote:    remote,
		formatter: formatter,
		converter: converter,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Format pulls ref into a staging directory, formats its kernel file and
// pushes it back. The staging directory is removed on every exit path.
func (p *Pipeline) Format(ctx context.Context, ref kernel.Ref) error {
	dir, err := os.MkdirTemp(p.stagingRoot, "kfmt-")
	if err != nil {
		return fmt.Errorf("pipeline: create staging dir: %w", err)
	}
	defer os.RemoveAll(dir)

	if err := p.remote.Pull(ctx, ref, dir); err != nil {
		return err
	}

	path, err := kernel.FindKernel(dir)
	if err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}
	if all, _ := kernel.Candidates(dir); len(all) > 1 {
		p.logger.Warn("several kernel files pulled, using the first",
			slog.String("kernel", ref.String()),
			slog.String("using", filepath.Base(path)),
			slog.Int("candidates", len(all)))
	}

	if err := p.FormatFile(ctx, path); err != nil {
		return err
	}

	if err := p.remote.Push(ctx, dir); err != nil {
		return err
	}

	status, err := p.remote.Status(ctx, ref)
	if err != nil {
		return err
	}
	p.logger.Info("kernel pushed", slog.String("kernel", ref.String()), slog.String("status", status))
	return nil
}

// FormatFile formats a local script or notebook in place.
func (p *Pipeline) FormatFile(ctx context.Context, path string) error {
	kind := kernel.Classify(path)
	p.logger.Debug("classified kernel", slog.String("path", path), slog.String("kind", kind.String()))

	switch kind {
	case kernel.Script:
		return p.formatter.Format(ctx, path)
	case kernel.Notebook:
		return p.formatNotebook(ctx, path)
	default:
		return &apperr.ClassificationError{Path: path, Ext: filepath.Ext(path)}
	}
}

// formatNotebook converts the notebook to a script in a scratch directory,
// hides magics from the formatter, formats, restores the magics and converts
// the result back over the original notebook.
func (p *Pipeline) formatNotebook(ctx context.Context, nbPath string) error {
	scratch, err := os.MkdirTemp(p.stagingRoot, "kfmt-script-")
	if err != nil {
		return fmt.Errorf("pipeline: create scratch dir: %w", err)
	}
	defer os.RemoveAll(scratch)

	store, err := storage.NewFS(scratch)
	if err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}
	name := kernel.ReplaceExt(filepath.Base(nbPath), kernel.ScriptExt)
	scriptPath := filepath.Join(store.Root(), name)

	if err := p.converter.ToScript(ctx, nbPath, scriptPath); err != nil {
		return fmt.Errorf("pipeline: notebook to script: %w", err)
	}
	if err := store.Rewrite(name, storage.Lines(magic.Comment)); err != nil {
		return fmt.Errorf("pipeline: comment magics: %w", err)
	}
	if err := p.formatter.Format(ctx, scriptPath); err != nil {
		return err
	}
	if err := store.Rewrite(name, storage.Lines(magic.Uncomment)); err != nil {
		return fmt.Errorf("pipeline: uncomment magics: %w", err)
	}
	if err := p.converter.ToNotebook(ctx, scriptPath, nbPath); err != nil {
		return fmt.Errorf("pipeline: script to notebook: %w", err)
	}
	return nil
}
