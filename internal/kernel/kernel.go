// Package kernel classifies kernel files and locates them in a staging directory.
package kernel

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/starford/kfmt/internal/apperr"
)

// Kind is the kind of a kernel file, derived from its extension.
type Kind int

const (
	Unknown Kind = iota
	Script
	Notebook
)

// Kernel file extensions.
const (
	ScriptExt   = ".py"
	NotebookExt = ".ipynb"
)

func (k Kind) String() string {
	switch k {
	case Script:
		return "script"
	case Notebook:
		return "notebook"
	default:
		return "unknown"
	}
}

// Classify reports the kind of path. Only the extension is inspected.
func Classify(path string) Kind {
	switch {
	case strings.HasSuffix(path, ScriptExt):
		return Script
	case strings.HasSuffix(path, NotebookExt):
		return Notebook
	default:
		return Unknown
	}
}

// IsKernel reports whether path names a script or a notebook.
func IsKernel(path string) bool {
	return Classify(path) != Unknown
}

// Candidates lists the kernel files directly inside dir, in directory
// listing order. Subdirectories are skipped.
func Candidates(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("kernel: list %s: %w", dir, err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !IsKernel(e.Name()) {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}
	return out, nil
}

// FindKernel returns the first kernel file in dir. When several exist the
// first in listing order wins; callers that care should use Candidates.
func FindKernel(dir string) (string, error) {
	paths, err := Candidates(dir)
	if err != nil {
		return "", err
	}
	if len(paths) == 0 {
		return "", fmt.Errorf("kernel: no %s or %s file in %s: %w", ScriptExt, NotebookExt, dir, apperr.ErrNotFound)
	}
	return paths[0], nil
}

// ReplaceExt swaps the final extension of path for ext. The leading dot of
// ext is optional.
func ReplaceExt(path, ext string) string {
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}
