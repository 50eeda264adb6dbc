// Package testutil provides shared test helpers for staging directories and
// fake external tools.
package testutil

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/kfmt/internal/shell"
)

// HelloNotebook is a minimal nbformat 4 notebook with one code cell.
const HelloNotebook = `{
 "cells": [
  {
   "cell_type": "code",
   "execution_count": null,
   "metadata": {},
   "outputs": [],
   "source": [
    "print(\"hello world\")"
   ]
  }
 ],
 "metadata": {
  "language_info": {
   "codemirror_mode": {
    "name": "ipython",
    "version": 3
   },
   "file_extension": ".py",
   "mimetype": "text/x-python",
   "name": "python",
   "nbconvert_exporter": "python",
   "pygments_lexer": "ipython3",
   "version": 3
  },
  "orig_nbformat": 2
 },
 "nbformat": 4,
 "nbformat_minor": 2
}
`

// WriteFiles creates each name → content pair under dir.
func WriteFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

// ReadFile returns the content of path as a string.
func ReadFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

// HandlerFunc fakes one external tool.
type HandlerFunc func(cmd shell.Command) (shell.Result, error)

// FakeRunner records commands and dispatches them to per-tool handlers keyed
// by command name. Tools without a handler succeed with no output.
type FakeRunner struct {
	Handlers map[string]HandlerFunc
	Calls    []shell.Command
}

// Verify *FakeRunner satisfies shell.Runner at compile time.
var _ shell.Runner = (*FakeRunner)(nil)

// NewFakeRunner returns a runner with no handlers.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{Handlers: map[string]HandlerFunc{}}
}

// Run records cmd and calls its handler.
func (f *FakeRunner) Run(_ context.Context, cmd shell.Command) (shell.Result, error) {
	f.Calls = append(f.Calls, cmd)
	if h, ok := f.Handlers[cmd.Name]; ok {
		return h(cmd)
	}
	return shell.Result{}, nil
}

// Invocations returns each recorded call as a single string.
func (f *FakeRunner) Invocations() []string {
	out := make([]string, len(f.Calls))
	for i, c := range f.Calls {
		out[i] = c.String()
	}
	return out
}

// Called reports whether any recorded call starts with prefix.
func (f *FakeRunner) Called(prefix string) bool {
	for _, s := range f.Invocations() {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}
