package server

import (
	"context"
	"log/slog"

	mcpserver "github.com/mark3labs/mcp-go/server"
)

const (
	methodLogMessage          = "notifications/message"
	methodProgress            = "notifications/progress"
	methodResourceListChanged = "notifications/resources/list_changed"
	methodResourceUpdated     = "notifications/resources/updated"

	loggerName = "aactmcp"
)

type ctxKey int

const (
	callLoggerKey ctxKey = iota
	progressTokenKey
)

func withCallLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, callLoggerKey, logger)
}

func withProgressToken(ctx context.Context, token any) context.Context {
	return context.WithValue(ctx, progressTokenKey, token)
}

// notifier forwards tool lifecycle events to the calling MCP session.
// Sends are best effort; a failed send is logged and dropped.
type notifier struct {
	logger *slog.Logger
}

func (n *notifier) loggerFor(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(callLoggerKey).(*slog.Logger); ok {
		return l
	}
	return n.logger
}

func (n *notifier) Info(ctx context.Context, msg string) {
	n.log(ctx, slog.LevelInfo, "info", msg)
}

func (n *notifier) Debug(ctx context.Context, msg string) {
	n.log(ctx, slog.LevelDebug, "debug", msg)
}

func (n *notifier) Error(ctx context.Context, msg string) {
	n.log(ctx, slog.LevelError, "error", msg)
}

func (n *notifier) Progress(ctx context.Context, progress, total float64, msg string) {
	n.loggerFor(ctx).Debug("progress", slog.Float64("progress", progress), slog.Float64("total", total), slog.String("message", msg))

	token := ctx.Value(progressTokenKey)
	if token == nil {
		return
	}
	n.send(ctx, methodProgress, map[string]any{
		"progressToken": token,
		"progress":      progress,
		"total":         total,
		"message":       msg,
	})
}

func (n *notifier) ResourceListChanged(ctx context.Context) {
	n.send(ctx, methodResourceListChanged, nil)
}

func (n *notifier) log(ctx context.Context, level slog.Level, mcpLevel, msg string) {
	n.loggerFor(ctx).Log(ctx, level, msg)
	n.send(ctx, methodLogMessage, map[string]any{
		"level":  mcpLevel,
		"logger": loggerName,
		"data":   msg,
	})
}

func (n *notifier) send(ctx context.Context, method string, params map[string]any) {
	srv := mcpserver.ServerFromContext(ctx)
	if srv == nil {
		return
	}
	if err := srv.SendNotificationToClient(ctx, method, params); err != nil {
		n.loggerFor(ctx).Debug("notification dropped", slog.String("method", method), slog.Any("error", err))
	}
}
