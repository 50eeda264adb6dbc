package notebook

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/starford/kfmt/internal/shell"
	"github.com/starford/kfmt/internal/storage"
)

// Converter turns a notebook into a script and back. With no edit in
// between, ToNotebook(ToScript(nb)) must keep every cell source verbatim.
type Converter interface {
	ToScript(ctx context.Context, nbPath, scriptPath string) error
	ToNotebook(ctx context.Context, scriptPath, nbPath string) error
}

// Native converts in-process using the percent format.
type Native struct{}

// Verify Native satisfies Converter at compile time.
var _ Converter = Native{}

// ToScript writes the percent-format script for the notebook at nbPath.
func (Native) ToScript(_ context.Context, nbPath, scriptPath string) error {
	nb, err := ReadFile(nbPath)
	if err != nil {
		return err
	}
	script, err := ToScript(nb)
	if err != nil {
		return err
	}
	store, err := storage.NewFS(filepath.Dir(scriptPath))
	if err != nil {
		return fmt.Errorf("notebook: %w", err)
	}
	return store.Write(filepath.Base(scriptPath), script)
}

// ToNotebook parses the script and writes it to nbPath. An existing notebook
// at nbPath supplies metadata, outputs and execution counts.
func (Native) ToNotebook(_ context.Context, scriptPath, nbPath string) error {
	script, err := os.ReadFile(scriptPath)
	if err != nil {
		return fmt.Errorf("notebook: read script: %w", err)
	}
	base, err := ReadFile(nbPath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		base = nil
	}
	nb, err := FromScript(script, base)
	if err != nil {
		return err
	}
	return WriteFile(nbPath, nb)
}

// Jupytext converts by running the jupytext CLI.
type Jupytext struct {
	Runner  shell.Runner
	Command string // e.g. "jupytext" or "python -m jupytext"
}

// Verify *Jupytext satisfies Converter at compile time.
var _ Converter = (*Jupytext)(nil)

// ToScript runs jupytext --to py:percent.
func (j *Jupytext) ToScript(ctx context.Context, nbPath, scriptPath string) error {
	return j.run(ctx, "--to", "py:percent", "--output", scriptPath, nbPath)
}

// ToNotebook runs jupytext --update --to ipynb so outputs are kept.
func (j *Jupytext) ToNotebook(ctx context.Context, scriptPath, nbPath string) error {
	return j.run(ctx, "--update", "--to", "ipynb", "--output", nbPath, scriptPath)
}

func (j *Jupytext) run(ctx context.Context, args ...string) error {
	cmd, err := shell.FromLine(j.Command, args...)
	if err != nil {
		return fmt.Errorf("notebook: jupytext command: %w", err)
	}
	if _, err := shell.RunChecked(ctx, j.Runner, cmd); err != nil {
		return fmt.Errorf("notebook: jupytext: %w", err)
	}
	return nil
}
