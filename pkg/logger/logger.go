// Package logger provides the structured, levelled pipeline logger built on
// log/slog.
//
// Every stage runs with a logger tagged with its stage name carried in the
// context, so lines from the generator, the loader and the report runner are
// easy to tell apart:
//
//	ctx = logger.Inject(ctx, logger.L.With("stage", "load"))
//	logger.WithCtx(ctx).Info("inserted rows", "table", "orders", "rows", 2500)
//	// → time=... level=INFO msg="inserted rows" stage=load table=orders rows=2500
//
// Logs go to stderr; stdout is reserved for report output.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/shashiranjanraj/ecomsynth/config"
)

var L *slog.Logger

func init() {
	L = New(os.Stderr, config.AppEnv(), config.LogLevel())
	slog.SetDefault(L)
}

// New builds a logger writing to w. Production environments get JSON lines,
// everything else the human-readable text format.
func New(w io.Writer, env, level string) *slog.Logger {
	return slog.New(newHandler(w, env, ParseLevel(level)))
}

func newHandler(w io.Writer, env string, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	switch env {
	case "production", "prod":
		return slog.NewJSONHandler(w, opts)
	default:
		return slog.NewTextHandler(w, opts)
	}
}

// ParseLevel maps debug/info/warn/error to a slog level. Unknown values mean info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Options configures Setup.
type Options struct {
	Env    string
	Level  string
	Writer io.Writer

	// MongoURI enables the MongoDB sink when non-empty.
	MongoURI        string
	MongoDB         string
	MongoCollection string
}

// Setup replaces the base logger. The returned func flushes and releases any
// sink and must be called before the process exits.
func Setup(opts Options) (func(), error) {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	level := ParseLevel(opts.Level)
	var handler slog.Handler = newHandler(w, opts.Env, level)
	closeFn := func() {}

	if opts.MongoURI != "" {
		mh, err := NewMongoHandler(opts.MongoURI, opts.MongoDB, opts.MongoCollection, level)
		if err != nil {
			return closeFn, fmt.Errorf("logger: %w", err)
		}
		handler = NewMultiHandler(handler, mh)
		closeFn = mh.Close
	}

	L = slog.New(handler)
	slog.SetDefault(L)
	return closeFn, nil
}

// ─────────────────────────────────────────────
// Context-aware logger
// ─────────────────────────────────────────────

type ctxKey struct{}

// WithCtx returns the logger stored by Inject, or the base logger.
func WithCtx(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return L
	}
	if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && log != nil {
		return log
	}
	return L
}

// Inject stores log in ctx.
func Inject(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

// ForStage tags the base logger with the stage name and stores it in ctx.
func ForStage(ctx context.Context, stage string) context.Context {
	return Inject(ctx, L.With("stage", stage))
}

func Debug(msg string, args ...any) { L.Debug(msg, args...) }

func Info(msg string, args ...any) { L.Info(msg, args...) }

func Warn(msg string, args ...any) { L.Warn(msg, args...) }

func Error(msg string, args ...any) { L.Error(msg, args...) }
