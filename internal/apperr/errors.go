// Package apperr holds the error taxonomy shared by the pipeline and the CLI.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a directory holds no kernel file.
	ErrNotFound = errors.New("not found")
	// ErrInvalidRef is returned for kernel identifiers not shaped like owner/name.
	ErrInvalidRef = errors.New("invalid kernel reference")
)

// ClassificationError reports a file that is neither a script nor a notebook.
type ClassificationError struct {
	Path string
	Ext  string
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("invalid file type: '%s'", e.Ext)
}

// ToolError reports an external tool that exited with a non-zero status.
// Its output has already been echoed to the user by the time it is returned.
type ToolError struct {
	Tool     string
	ExitCode int
	Stdout   string
	Stderr   string
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("%s exited with status %d", e.Tool, e.ExitCode)
}

// ExitCode maps err to a process exit status: the tool's own status for a
// ToolError, 1 for anything else and 0 for nil.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var te *ToolError
	if errors.As(err, &te) && te.ExitCode > 0 {
		return te.ExitCode
	}
	return 1
}
