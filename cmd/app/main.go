package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/kfmt/internal"
	"github.com/starford/kfmt/internal/apperr"
	pkgconfig "github.com/starford/kfmt/pkg/config"
)

// request is one parsed kfmt invocation.
type request struct {
	Kernel        string
	Config        string
	Local         bool
	Path          string
	Watch         bool
	FormatterArgs []string
}

type dispatchFunc func(ctx context.Context, req request) error

func dispatch(ctx context.Context, req request) error {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.Load(req.Config, cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
		internal.WithFormatterArgs(req.FormatterArgs),
	}

	if req.Local {
		return internal.RunLocal(ctx, req.Path, req.Watch, opts...)
	}
	return internal.Run(ctx, req.Kernel, opts...)
}

// newCommand builds the CLI. The parser only ever sees args.own; the
// formatter arguments and PATH reach fn without going through it.
func newCommand(args cliArgs, fn dispatchFunc) *cli.Command {
	return &cli.Command{
		Name:      "kfmt",
		Usage:     "Pull a Kaggle kernel, format it with black and push it back",
		ArgsUsage: "[formatter args...]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ref := cmd.String("kernel")
			if ref == "" {
				return errors.New("missing kernel: use -k owner/name")
			}
			return fn(ctx, request{
				Kernel:        ref,
				Config:        cmd.String("config"),
				FormatterArgs: args.formatter,
			})
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "kernel",
				Aliases: []string{"k"},
				Usage:   "Kernel to format, as owner/name",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (built-in defaults when empty)",
				Sources: cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "local",
				Usage:     "Format a local .py or .ipynb file in place",
				ArgsUsage: "PATH [formatter args...]",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if args.path == "" {
						return errors.New("local: missing PATH")
					}
					return fn(ctx, request{
						Config:        cmd.String("config"),
						Local:         true,
						Path:          args.path,
						Watch:         cmd.Bool("watch"),
						FormatterArgs: args.formatter,
					})
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "watch",
						Aliases: []string{"w"},
						Usage:   "Reformat the file whenever it changes",
					},
				},
			},
		},
	}
}

func main() {
	args := partitionArgs(os.Args)
	if err := newCommand(args, dispatch).Run(context.Background(), args.own); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(apperr.ExitCode(err))
	}
}
