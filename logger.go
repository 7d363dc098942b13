package tinydi

import (
	"context"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/lmittmann/tint"
)

var defaultLogger atomic.Pointer[slog.Logger]

func init() {
	defaultLogger.Store(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slog.LevelWarn,
		TimeFormat: time.Kitchen,
	})))
}

// Replaces logger used by every Context created without WithLogger.
// Passing nil silences logging.
func SetDefaultLogger(logger *slog.Logger) {
	if logger == nil {
		logger = slog.New(discardHandler{})
	}

	defaultLogger.Store(logger)
}

func logger() *slog.Logger {
	return defaultLogger.Load()
}

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (h discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h discardHandler) WithGroup(string) slog.Handler           { return h }
