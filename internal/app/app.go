package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"monthly-ohlcv/internal/pipeline"
	"monthly-ohlcv/internal/saver"
	"monthly-ohlcv/internal/source"
)

// App holds application dependencies built by Wire.
type App struct {
	Config      *Config
	Source      source.DataSource
	Saver       saver.RowSaver
	Instruments Instruments
}

// Run runs once, then, when DailyAt is set, again every day at that UTC
// time until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a.Config.DailyAt == "" {
		_, err := a.RunOnce(ctx)
		return err
	}
	return a.RunDaily(ctx)
}

// RunOnce performs one full pipeline run.
func (a *App) RunOnce(ctx context.Context) (pipeline.Summary, error) {
	slog.Info("run", "source", a.Source.GetName(), "dir", a.Config.OutputDir, "format", a.Saver.Extension(), "workers", a.Config.Workers)
	sum, err := pipeline.Run(ctx, a.Config.PipelineOptions(a.Instruments), a.Source, a.Saver)
	if err != nil {
		return sum, fmt.Errorf("run %s: %w", sum.RunID, err)
	}
	return sum, nil
}

// RunDaily runs immediately, then schedules a daily run at Config.DailyAt
// (UTC). Runs never overlap. A failed run is logged and the schedule goes on.
func (a *App) RunDaily(ctx context.Context) error {
	scheduler := gocron.NewScheduler(time.UTC)
	scheduler.SingletonModeAll()

	job := func() {
		if ctx.Err() != nil {
			return
		}
		if _, err := a.RunOnce(ctx); err != nil {
			slog.Error("scheduled run failed", "error", err)
		}
	}
	if _, err := scheduler.Every(1).Day().At(a.Config.DailyAt).Do(job); err != nil {
		return fmt.Errorf("schedule daily run at %s: %w", a.Config.DailyAt, err)
	}

	job()
	scheduler.StartAsync()
	_, next := scheduler.NextRun()
	slog.Info("done, wait until next run", "until", next.Format("2006-01-02 15:04"))

	<-ctx.Done()
	slog.Info("received signal, graceful shutdown")
	scheduler.Stop()
	return nil
}
