package utils

import (
	"context"
	"log/slog"
)

// LevelCritical 用于跨系统不一致的情况，这类日志需要人工介入处理
const LevelCritical = slog.Level(12)

// ReplaceLevel 让 slog 把 LevelCritical 输出为 CRITICAL 而不是 ERROR+4
func ReplaceLevel(groups []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey || len(groups) != 0 {
		return a
	}
	if level, ok := a.Value.Any().(slog.Level); ok && level == LevelCritical {
		a.Value = slog.StringValue("CRITICAL")
	}
	return a
}

func Critical(ctx context.Context, msg string, args ...any) {
	args = append(args, slog.Bool("manual_intervention", true))
	slog.Log(ctx, LevelCritical, msg, args...)
}

func NewLogger(handlerOpts *slog.HandlerOptions, w interface{ Write([]byte) (int, error) }) *slog.Logger {
	if handlerOpts == nil {
		handlerOpts = &slog.HandlerOptions{}
	}
	handlerOpts.ReplaceAttr = ReplaceLevel
	return slog.New(slog.NewTextHandler(w, handlerOpts))
}
