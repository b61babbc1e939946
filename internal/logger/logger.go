package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

var (
	defaultLogger *slog.Logger
)

type ctxKey struct{}

// Init инициализирует глобальный логгер
func Init(level, format string) {
	InitWriter(os.Stdout, level, format)
}

// InitWriter - то же что Init, но пишет в w (нужно тестам)
func InitWriter(w io.Writer, level, format string) {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLevel(level),
	}

	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	defaultLogger = slog.New(handler)
	slog.SetDefault(defaultLogger)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

// Get возвращает дефолтный логгер
func Get() *slog.Logger {
	if defaultLogger == nil {
		Init("info", "text")
	}
	return defaultLogger
}

// Into кладет в контекст логгер с дополнительными атрибутами (request_id, user_id)
func Into(ctx context.Context, args ...any) context.Context {
	return context.WithValue(ctx, ctxKey{}, WithContext(ctx).With(args...))
}

// WithContext возвращает логгер из контекста или дефолтный
func WithContext(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
			return l
		}
	}
	return Get()
}

// Info логирует на уровне info
func Info(msg string, args ...any) {
	Get().Info(msg, args...)
}

// Debug логирует на уровне debug
func Debug(msg string, args ...any) {
	Get().Debug(msg, args...)
}

// Warn логирует на уровне warn
func Warn(msg string, args ...any) {
	Get().Warn(msg, args...)
}

// Error логирует на уровне error
func Error(msg string, args ...any) {
	Get().Error(msg, args...)
}

// Fatal логирует на уровне error и завершает программу
func Fatal(msg string, args ...any) {
	Get().Error(msg, args...)
	os.Exit(1)
}

// With возвращает логгер с заданными атрибутами
func With(args ...any) *slog.Logger {
	return Get().With(args...)
}
