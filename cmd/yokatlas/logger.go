package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/use-agent/yokatlas/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

// initLogger configures slog based on the LogConfig. When cfg.File is set,
// records are also written to a size-rotated file. The returned func
// closes that file.
func initLogger(cfg config.LogConfig) func() {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var w io.Writer = os.Stdout
	closer := func() {}
	if cfg.File != "" {
		rotator := &lumberjack.Logger{
			Filename:  cfg.File,
			MaxSize:   200,
			LocalTime: true,
			Compress:  true,
		}
		w = io.MultiWriter(os.Stdout, rotator)
		closer = func() { _ = rotator.Close() }
	}

	slog.SetDefault(slog.New(newHandler(w, cfg.Format, opts)))
	return closer
}

func newHandler(w io.Writer, format string, opts *slog.HandlerOptions) slog.Handler {
	if format == "text" {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
