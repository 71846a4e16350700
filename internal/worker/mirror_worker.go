package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"fintrack/internal/amqp"
	applog "fintrack/internal/log"
	"fintrack/internal/ports"
	"fintrack/internal/sheets"
)

// MirrorWorker applies transaction events to a sheets mirror. The store is
// the source of truth: created and updated events re-read the row instead
// of trusting the message.
type MirrorWorker struct {
	store  ports.TransactionStore
	mirror sheets.Mirror
	logger *applog.Logger

	processed atomic.Int64
	failed    atomic.Int64
}

func NewMirrorWorker(store ports.TransactionStore, mirror sheets.Mirror, logger *slog.Logger) *MirrorWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &MirrorWorker{
		store:  store,
		mirror: mirror,
		logger: applog.Wrap(logger, applog.ComponentWorker),
	}
}

// Stats is a snapshot of the worker counters.
type Stats struct {
	Processed int64
	Failed    int64
}

func (w *MirrorWorker) Stats() Stats {
	return Stats{Processed: w.processed.Load(), Failed: w.failed.Load()}
}

// HandleTransactionEvent processes one event. A returned error asks the
// consumer to redeliver.
func (w *MirrorWorker) HandleTransactionEvent(ctx context.Context, ev *amqp.TransactionEvent) error {
	w.logger.InfoContext(ctx, "Processing transaction event",
		"kind", string(ev.Kind),
		applog.FieldUserID, ev.UserID,
		applog.FieldTransactionID, ev.TransactionID)

	if err := w.apply(ctx, ev); err != nil {
		w.failed.Add(1)
		w.logger.ErrorContext(ctx, "Failed to mirror transaction event",
			"kind", string(ev.Kind),
			applog.FieldUserID, ev.UserID,
			applog.FieldTransactionID, ev.TransactionID,
			applog.FieldError, err)
		return err
	}
	w.processed.Add(1)
	return nil
}

func (w *MirrorWorker) apply(ctx context.Context, ev *amqp.TransactionEvent) error {
	switch ev.Kind {
	case amqp.TransactionCreated, amqp.TransactionUpdated:
		t, err := w.store.GetTransaction(ctx, ev.UserID, ev.TransactionID)
		if errors.Is(err, ports.ErrNotFound) {
			// Deleted before we got here; the delete event may already be
			// processed, so make sure the row is gone.
			return w.remove(ctx, ev)
		}
		if err != nil {
			return fmt.Errorf("reload transaction %d: %w", ev.TransactionID, err)
		}
		if err := w.mirror.UpsertTransaction(ctx, t); err != nil {
			return fmt.Errorf("mirror transaction %d: %w", t.ID, err)
		}
		return nil
	case amqp.TransactionDeleted:
		return w.remove(ctx, ev)
	case amqp.UserDeleted:
		if err := w.mirror.RemoveUser(ctx, ev.UserID); err != nil {
			return fmt.Errorf("remove user %d from mirror: %w", ev.UserID, err)
		}
		return nil
	default:
		return fmt.Errorf("unhandled event kind %q", ev.Kind)
	}
}

func (w *MirrorWorker) remove(ctx context.Context, ev *amqp.TransactionEvent) error {
	if err := w.mirror.RemoveTransaction(ctx, ev.UserID, ev.TransactionID); err != nil {
		return fmt.Errorf("remove transaction %d from mirror: %w", ev.TransactionID, err)
	}
	return nil
}
