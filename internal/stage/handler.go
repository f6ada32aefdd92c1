package stage

import (
	"context"
	"log/slog"

	"audioscribe/internal/queue"
)

// Handler describes the contract the pipeline needs from each stage.
// Prepare validates inputs and stamps progress; Execute performs the work.
type Handler interface {
	Prepare(context.Context, *queue.Item) error
	Execute(context.Context, *queue.Item) error
	HealthCheck(context.Context) Health
}

// LoggerAware lets the executor inject a stage-scoped logger before running.
type LoggerAware interface {
	SetLogger(logger *slog.Logger)
}
