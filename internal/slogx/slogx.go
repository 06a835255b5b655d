// Package slogx holds the slog handlers shared by the command and the pipeline workers.
package slogx

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// ChanWriter buffers writes and sends complete lines to channel.
// Used with slog.TextHandler for fan-in logging from pipeline workers.
type ChanWriter struct {
	Ch  chan<- string
	Buf []byte
}

func (w *ChanWriter) Write(p []byte) (n int, err error) {
	w.Buf = append(w.Buf, p...)
	for {
		i := bytes.IndexByte(w.Buf, '\n')
		if i < 0 {
			break
		}
		line := string(w.Buf[:i])
		w.Buf = w.Buf[i+1:]
		select {
		case w.Ch <- line:
		default:
			// channel full, drop
		}
	}
	return len(p), nil
}

// NewChanLogger creates a slog.Logger that writes to the channel in text format
// at the level of the current default logger.
func NewChanLogger(ch chan<- string) *slog.Logger {
	w := &ChanWriter{Ch: ch}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: defaultLevel(),
	}))
}

func defaultLevel() slog.Level {
	for _, l := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn} {
		if slog.Default().Enabled(context.Background(), l) {
			return l
		}
	}
	return slog.LevelError
}

// ParseLevel converts string (debug|info|warn|error) to slog.Level. Unknown → info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New creates a logger writing to w. format is "json" or "text" (default).
func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	var h slog.Handler
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h)
}

// NewDefault creates a text logger writing to stderr with the given level string.
func NewDefault(level string) *slog.Logger {
	return New(os.Stderr, level, "text")
}
