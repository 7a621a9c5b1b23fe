// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package log is a thin facade over the go-ethereum structured logger.
// Package level loggers are created with WithContext and always write through
// the current root logger, so SetDefault can be called after they are declared.
package log

import (
	"context"
	"io"
	"log/slog"

	ethlog "github.com/ethereum/go-ethereum/log"
)

const (
	LevelTrace = ethlog.LevelTrace
	LevelDebug = ethlog.LevelDebug
	LevelInfo  = ethlog.LevelInfo
	LevelWarn  = ethlog.LevelWarn
	LevelError = ethlog.LevelError
	LevelCrit  = ethlog.LevelCrit
)

// Logger writes key/value pairs.
type Logger interface {
	Trace(msg string, ctx ...any)
	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Warn(msg string, ctx ...any)
	Error(msg string, ctx ...any)
	Crit(msg string, ctx ...any)

	// New returns a logger with ctx appended to every record.
	New(ctx ...any) Logger
	Enabled(ctx context.Context, level slog.Level) bool
}

// Root returns the root logger.
func Root() Logger {
	return &contextLogger{}
}

// SetDefault replaces the root logger.
func SetDefault(handler slog.Handler) {
	ethlog.SetDefault(ethlog.NewLogger(handler))
}

// WithContext returns a logger that prefixes ctx to every record.
func WithContext(ctx ...any) Logger {
	return &contextLogger{ctx: ctx}
}

// NewTerminalHandler returns a human readable handler filtering records below level.
func NewTerminalHandler(w io.Writer, level slog.Level, useColor bool) slog.Handler {
	return ethlog.NewTerminalHandlerWithLevel(w, level, useColor)
}

// NewJSONHandlerWithLevel returns a JSON handler filtering records below level.
func NewJSONHandlerWithLevel(w io.Writer, level slog.Level) slog.Handler {
	return ethlog.JSONHandlerWithLevel(w, level)
}

// DiscardHandler returns a no-op handler.
func DiscardHandler() slog.Handler {
	return ethlog.DiscardHandler()
}

// FromVerbosity maps the 0 (crit) .. 5 (trace) verbosity flag to a level.
func FromVerbosity(verbosity int) slog.Level {
	return ethlog.FromLegacyLevel(verbosity)
}

func Trace(msg string, ctx ...any) { ethlog.Root().Trace(msg, ctx...) }
func Debug(msg string, ctx ...any) { ethlog.Root().Debug(msg, ctx...) }
func Info(msg string, ctx ...any)  { ethlog.Root().Info(msg, ctx...) }
func Warn(msg string, ctx ...any)  { ethlog.Root().Warn(msg, ctx...) }
func Error(msg string, ctx ...any) { ethlog.Root().Error(msg, ctx...) }

type contextLogger struct {
	ctx []any
}

func (l *contextLogger) with(ctx []any) []any {
	if len(l.ctx) == 0 {
		return ctx
	}
	merged := make([]any, 0, len(l.ctx)+len(ctx))
	return append(append(merged, l.ctx...), ctx...)
}

func (l *contextLogger) Trace(msg string, ctx ...any) { ethlog.Root().Trace(msg, l.with(ctx)...) }
func (l *contextLogger) Debug(msg string, ctx ...any) { ethlog.Root().Debug(msg, l.with(ctx)...) }
func (l *contextLogger) Info(msg string, ctx ...any)  { ethlog.Root().Info(msg, l.with(ctx)...) }
func (l *contextLogger) Warn(msg string, ctx ...any)  { ethlog.Root().Warn(msg, l.with(ctx)...) }
func (l *contextLogger) Error(msg string, ctx ...any) { ethlog.Root().Error(msg, l.with(ctx)...) }

// Crit logs and exits, like the go-ethereum logger.
func (l *contextLogger) Crit(msg string, ctx ...any) { ethlog.Root().Crit(msg, l.with(ctx)...) }

func (l *contextLogger) New(ctx ...any) Logger {
	return &contextLogger{ctx: l.with(ctx)}
}

func (l *contextLogger) Enabled(ctx context.Context, level slog.Level) bool {
	return ethlog.Root().Enabled(ctx, level)
}
