package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/aleister1102/httpeek/internal/common"
	"github.com/aleister1102/httpeek/internal/config"
	"github.com/aleister1102/httpeek/internal/logger"
	"github.com/aleister1102/httpeek/internal/urlhandler"
)

const version = "1.0.1"

// Exit codes.
const (
	exitOK          = 0
	exitError       = 1
	exitUsage       = 2
	exitInterrupted = 130
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	flags, err := ParseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitUsage
	}

	if flags.Version {
		fmt.Fprintf(stdout, "httpeek %s\n", version)
		return exitOK
	}

	if !flags.HasInput() {
		fmt.Fprintln(stderr, "error: no input provided; use -u, -l or -stdin (see -h)")
		return exitUsage
	}

	bootstrap := zerolog.New(zerolog.ConsoleWriter{Out: stderr}).With().Timestamp().Logger()

	cfg, err := config.LoadGlobalConfig(flags.ConfigFile, bootstrap)
	if err != nil {
		bootstrap.Error().Err(err).Msg("Could not load configuration")
		return exitError
	}
	flags.Apply(cfg)

	if err := config.ValidateConfig(cfg); err != nil {
		bootstrap.Error().Err(err).Msg("Configuration validation failed")
		return exitUsage
	}

	appLogger, err := logger.NewWithRunID(cfg.LogConfig, logger.NewRunID())
	if err != nil {
		bootstrap.Error().Err(err).Msg("Could not initialize logger")
		return exitError
	}

	sources := urlhandler.TargetSources{URL: flags.URL, ListFile: flags.ListFile}
	if flags.Stdin {
		sources.Stdin = stdin
	}
	targets, err := urlhandler.NewTargetManager(appLogger).LoadTargets(sources)
	if err != nil {
		if errors.Is(err, common.ErrNoTargets) {
			appLogger.Warn().Msg("No targets to probe")
			return exitOK
		}
		appLogger.Error().Err(err).Msg("Could not load targets")
		return exitError
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	app, err := newApplication(cfg, len(targets), terminal{
		stdout:      stdout,
		stderr:      stderr,
		interactive: isTerminal(stderr),
	}, appLogger)
	if err != nil {
		appLogger.Error().Err(err).Msg("Could not build probing pipeline")
		return exitError
	}
	defer app.Close()

	summary, err := app.Run(ctx, cancel, targets)
	if err != nil {
		appLogger.Error().Err(err).Msg("Writing results failed")
	}

	if summary.Interrupted {
		appLogger.Warn().Int("completed", summary.Completed()).Int("total", summary.Total).Msg("Exited")
		return exitInterrupted
	}

	appLogger.Info().Msg(summaryLine(summary))
	if err != nil {
		return exitError
	}
	return exitOK
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
