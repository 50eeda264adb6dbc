// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/starford/kfmt/internal/formatter"
	"github.com/starford/kfmt/internal/kaggle"
	"github.com/starford/kfmt/internal/kernel"
	"github.com/starford/kfmt/internal/notebook"
	"github.com/starford/kfmt/internal/pipeline"
	"github.com/starford/kfmt/internal/shell"
	"github.com/starford/kfmt/internal/watch"
)

// Run pulls the kernel identified by kernelRef, formats it and pushes it back.
func Run(ctx context.Context, kernelRef string, opts ...Option) error {
	ref, err := kernel.ParseRef(kernelRef)
	if err != nil {
		return err
	}

	app, err := newApplication(opts)
	if err != nil {
		return err
	}

	if err := app.pipeline().Format(ctx, ref); err != nil {
		return fmt.Errorf("format kernel %s: %w", ref, err)
	}
	return nil
}

// RunLocal formats a local script or notebook in place. With watchMode it
// keeps running and reformats the file after every change until interrupted.
func RunLocal(ctx context.Context, path string, watchMode bool, opts ...Option) error {
	if !kernel.IsKernel(path) {
		return fmt.Errorf("local: %s: not a %s or %s file", path, kernel.ScriptExt, kernel.NotebookExt)
	}

	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	p := app.pipeline()

	if !watchMode {
		return p.FormatFile(ctx, path)
	}

	w, err := watch.New(path, p.FormatFile, app.logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return w.Run(gCtx)
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			app.logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
			cancel()
		case <-gCtx.Done():
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		app.logger.Error("watch error", slog.String("error", err.Error()))
		return err
	}
	return nil
}

func newApplication(opts []Option) (*application, error) {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	cfg := app.config
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	out := app.logOutput
	if out == nil {
		out = os.Stderr
	}
	// Structured JSON logs go to stderr; stdout carries the tools' output.
	logger := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	runner := app.runner
	if runner == nil {
		runner = shell.NewExec(logger)
	}

	args := make([]string, 0, len(cfg.Formatter.Args)+len(app.formatterArgs))
	args = append(args, cfg.Formatter.Args...)
	args = append(args, app.formatterArgs...)

	var conv notebook.Converter = notebook.Native{}
	if cfg.Converter.Mode == ConverterJupytext {
		conv = &notebook.Jupytext{Runner: runner, Command: cfg.Converter.Command}
	}

	logger.Debug("Configuration loaded",
		slog.String("kaggle", cfg.Kaggle.Command),
		slog.String("formatter", cfg.Formatter.Command),
		slog.Any("formatter_args", args),
		slog.String("converter", cfg.Converter.Mode),
		slog.String("log_level", cfg.App.LogLevel.String()))

	app.logger = logger
	app.runner = runner
	app.formatter = formatter.New(runner, cfg.Formatter.Command, args, logger)
	app.converter = conv
	return app, nil
}

func (a *application) pipeline() *pipeline.Pipeline {
	return pipeline.New(
		kaggle.NewClient(a.runner, a.config.Kaggle.Command, a.logger),
		a.formatter,
		a.converter,
		pipeline.WithLogger(a.logger),
		pipeline.WithStagingRoot(a.config.Staging.Dir),
	)
}
