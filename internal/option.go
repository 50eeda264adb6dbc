package internal

import (
	"io"
	"log/slog"

	"github.com/starford/kfmt/internal/formatter"
	"github.com/starford/kfmt/internal/notebook"
	"github.com/starford/kfmt/internal/shell"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config        *Config
	formatterArgs []string
	runner        shell.Runner
	logOutput     io.Writer

	// Set by newApplication.
	logger    *slog.Logger
	formatter *formatter.Formatter
	converter notebook.Converter
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithFormatterArgs sets the arguments passed through to the formatter.
func WithFormatterArgs(args []string) Option {
	return func(a *application) {
		a.formatterArgs = args
	}
}

// WithRunner replaces the external process runner.
func WithRunner(r shell.Runner) Option {
	return func(a *application) {
		a.runner = r
	}
}

// WithLogOutput sets where logs are written. Defaults to stderr.
func WithLogOutput(w io.Writer) Option {
	return func(a *application) {
		a.logOutput = w
	}
}
