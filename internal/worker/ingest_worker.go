// Package worker consumes movement events from the queue and appends them to
// the movement log. The worker is the single writer to that log, so the API
// process never races it on inserts.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"asociados/internal/core"
)

// MovementLog is the slice of the repository the worker writes to.
type MovementLog interface {
	AppendMovement(ctx context.Context, e core.MovementEvent) (int64, error)
}

// IngestWorker validates consumed movement events and appends them to the
// movement log.
type IngestWorker struct {
	log MovementLog
}

func NewIngestWorker(log MovementLog) *IngestWorker {
	return &IngestWorker{log: log}
}

// HandleMovement processes a single movement event from AMQP. A validation
// failure is permanent: the caller should drop the message rather than
// requeue it.
func (w *IngestWorker) HandleMovement(ctx context.Context, e *core.MovementEvent) error {
	slog.InfoContext(ctx, "Processing movement event",
		"tipo", e.Tipo,
		"asociado_id", e.MemberID)

	if err := e.Validate(); err != nil {
		slog.WarnContext(ctx, "Dropping invalid movement event",
			"tipo", e.Tipo,
			"asociado_id", e.MemberID,
			"error", err)
		return nil
	}

	id, err := w.log.AppendMovement(ctx, *e)
	if err != nil {
		return fmt.Errorf("append movement: %w", err)
	}

	slog.InfoContext(ctx, "Movement appended",
		"id", id,
		"tipo", e.Tipo,
		"asociado_id", e.MemberID)
	return nil
}
