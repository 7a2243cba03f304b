// Command fraudctl is a terminal front-end for the fraud scoring API.
//
//	fraudctl predict [-profile safe|fraud] [-seed n] [-amount n] [-set v14=-3.2,time=400]
//	fraudctl stats
//	fraudctl history [-filter all|fraud|safe] [-search s] [-page n] [-watch]
//	fraudctl theme [toggle]
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"fraudlens/internal/client"
	"fraudlens/internal/config"
	"fraudlens/internal/dashboard/theme"
	"fraudlens/internal/logging"

	"go.uber.org/zap"
)

// env bundles what every subcommand needs.
type env struct {
	cfg    *config.Config
	api    *client.Client
	theme  *theme.Theme
	logger *zap.Logger
	out    io.Writer
	color  bool
}

func main() {
	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}

	config.LoadEnv()
	cfg := config.Load()

	logger, err := logging.New(cfg.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	th, err := theme.New(theme.NewFileStore(cfg.ThemeFile))
	if err != nil {
		logger.Debug("using default theme", zap.Error(err))
	}

	e := &env{
		cfg:    cfg,
		api:    client.New(cfg.APIURL, client.WithLogger(logger)),
		theme:  th,
		logger: logger,
		out:    os.Stdout,
		color:  os.Getenv("NO_COLOR") == "",
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := dispatch(ctx, e, os.Args[1], os.Args[2:]); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		fmt.Fprintf(os.Stderr, "fraudctl: %v\n", err)
		os.Exit(1)
	}
}

func dispatch(ctx context.Context, e *env, cmd string, args []string) error {
	switch cmd {
	case "predict":
		return runPredict(ctx, e, args)
	case "stats":
		return runStats(ctx, e, args)
	case "history":
		return runHistory(ctx, e, args)
	case "theme":
		return runTheme(e, args)
	case "help", "-h", "--help":
		usage(e.out)
		return nil
	default:
		usage(os.Stderr)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func usage(w io.Writer) {
	fmt.Fprint(w, `usage: fraudctl <command> [flags]

commands:
  predict   score one transaction
  stats     show aggregate prediction counters
  history   list recent predictions
  theme     show or toggle the colour theme
`)
}
