package tools

import "context"

// Reporter delivers lifecycle notifications to the caller of an operation.
// Implementations must not block and must not fail the operation.
type Reporter interface {
	Info(ctx context.Context, msg string)
	Debug(ctx context.Context, msg string)
	Error(ctx context.Context, msg string)
	Progress(ctx context.Context, progress, total float64, msg string)
	ResourceListChanged(ctx context.Context)
}

// NopReporter discards every notification.
type NopReporter struct{}

var _ Reporter = NopReporter{}

func (NopReporter) Info(context.Context, string)                        {}
func (NopReporter) Debug(context.Context, string)                       {}
func (NopReporter) Error(context.Context, string)                       {}
func (NopReporter) Progress(context.Context, float64, float64, string) {}
func (NopReporter) ResourceListChanged(context.Context)                 {}
