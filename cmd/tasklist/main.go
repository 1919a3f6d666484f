package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"

	"github.com/Makepad-fr/tasklist/internal/cli"
	"github.com/Makepad-fr/tasklist/internal/config"
	"github.com/Makepad-fr/tasklist/internal/ui"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "tasklist", Level: log.WarnLevel})

	// Root flags (apply to every subcommand)
	cfg, rest, err := config.Load(args, os.Getenv, func() { cli.PrintHelp(os.Stdout) })
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		ui.Fail(os.Stderr, err.Error())
		return 2
	}
	if cfg.Debug {
		logger.SetLevel(log.DebugLevel)
	}
	if err := cfg.Validate(); err != nil {
		ui.Fail(os.Stderr, err.Error())
		return 2
	}
	ui.SetTheme(cfg.Theme)
	ui.SetColorForcing(cfg.Color == "always", cfg.Color == "never")

	if len(rest) == 0 {
		cli.PrintHelp(os.Stderr)
		return 2
	}
	if rest[0] == "help" {
		cli.PrintHelp(os.Stdout)
		return 0
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, closeFn, err := cli.OpenStore(ctx, cfg, logger)
	if err != nil {
		ui.Fail(os.Stderr, err.Error())
		return 1
	}
	defer closeFn()

	// Hand the remaining args to the CLI runner.
	code := cli.Run(ctx, rest, cli.Env{
		Store: st,
		Opt:   cli.Options{Group: cfg.Group, HideDone: cfg.HideDone},
		Out:   os.Stdout,
		Err:   os.Stderr,
	})
	if code != 0 {
		fmt.Fprintln(os.Stderr)
	}
	return code
}
