package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"
)

func runLogWriter(w io.Writer, lines <-chan string) {
	for s := range lines {
		fmt.Fprintln(w, s)
	}
}

type errorEntry struct {
	Ticker    string
	Reason    string
	Malformed bool
}

func runErrorHandler(errors <-chan errorEntry, logger *slog.Logger) {
	for e := range errors {
		if e.Malformed {
			logger.Warn("malformed input, instrument skipped", "ticker", e.Ticker, "error", e.Reason)
			continue
		}
		logger.Error("instrument error", "ticker", e.Ticker, "error", e.Reason)
	}
}

func runHeartbeat(ctx context.Context, interval time.Duration, total int, mu *sync.Mutex, success, failed *int, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			mu.Lock()
			s, f := *success, *failed
			mu.Unlock()
			logger.Info("heartbeat", "done", s+f, "total", total, "success", s, "failed", f)
		}
	}
}
