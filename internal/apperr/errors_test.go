package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"plain", errors.New("boom"), 1},
		{"not found", fmt.Errorf("find kernel: %w", ErrNotFound), 1},
		{"tool", &ToolError{Tool: "black", ExitCode: 123}, 123},
		{"wrapped tool", fmt.Errorf("format: %w", &ToolError{Tool: "kaggle", ExitCode: 2}), 2},
		{"tool without status", &ToolError{Tool: "kaggle"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestClassificationError_Message(t *testing.T) {
	err := &ClassificationError{Path: "/tmp/x/readme.md", Ext: ".md"}
	if err.Error() != "invalid file type: '.md'" {
		t.Errorf("Error() = %q", err.Error())
	}
}
