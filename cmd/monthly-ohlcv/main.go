package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"monthly-ohlcv/internal/app"
	"monthly-ohlcv/internal/slogx"
)

func init() {
	slog.SetDefault(slogx.NewDefault("info"))
}

func run(ctx context.Context, cmd *cli.Command) error {
	cfg := app.ConfigFromCommand(cmd)
	slog.SetDefault(slogx.New(os.Stderr, cfg.LogLevel, cfg.LogFormat))
	if err := cfg.Validate(); err != nil {
		return err
	}

	a, cleanup, err := InitializeApp(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	slog.Info("using data source", "source", a.Source.GetName())
	return a.Run(ctx)
}

func main() {
	cmd := &cli.Command{
		Name:   "monthly-ohlcv",
		Usage:  "Resample daily bars to monthly OHLCV with SMA/EMA 10 and 20",
		Flags:  app.Flags(),
		Action: run,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cmd.Run(ctx, os.Args); err != nil {
		slog.Error("run failed", "error", err)
		stop()
		os.Exit(1)
	}
}
