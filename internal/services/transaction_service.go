package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/ports"
)

// DefaultCategory is stored when a new transaction arrives without one.
const DefaultCategory = "General"

// TransactionInput is a transaction as submitted by a client, before
// validation.
type TransactionInput struct {
	Amount   string
	Type     string
	Date     string
	Month    string
	Category string
}

// Invalidator drops derived views of one user.
type Invalidator interface {
	Invalidate(userID int64)
}

// TransactionService validates and persists transactions, then tells the
// view cache and the event bus about the change.
type TransactionService struct {
	store  ports.TransactionStore
	events ports.EventPublisher
	views  Invalidator
	log    *applog.StructuredLogger
}

// NewTransactionService accepts nil events and views; those steps are then
// skipped.
func NewTransactionService(store ports.TransactionStore, events ports.EventPublisher, views Invalidator) *TransactionService {
	return &TransactionService{
		store:  store,
		events: events,
		views:  views,
		log:    applog.NewStructuredLogger(applog.Wrap(slog.Default(), applog.ComponentTransaction)),
	}
}

// build turns input into a validated transaction. An invalid date is
// dropped rather than rejected.
func (s *TransactionService) build(ctx context.Context, userID int64, in TransactionInput) (core.Transaction, error) {
	amount, err := core.ParseAmount(in.Amount)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("amount %q: %w", in.Amount, err)
	}
	kind, err := core.ParseTransactionType(in.Type)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("type %q: %w", in.Type, err)
	}

	t := core.Transaction{
		UserID:   userID,
		Amount:   amount,
		Type:     kind,
		Month:    strings.TrimSpace(in.Month),
		Category: strings.TrimSpace(in.Category),
	}
	if raw := strings.TrimSpace(in.Date); raw != "" {
		if d, ok := core.ParseDate(raw); ok {
			t.Date = d.Format(time.DateOnly)
		} else {
			slog.WarnContext(ctx, "Dropping unparseable transaction date",
				applog.FieldComponent, applog.ComponentTransaction,
				applog.FieldUserID, userID,
				"date", raw)
		}
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}

func (s *TransactionService) Create(ctx context.Context, userID int64, in TransactionInput) (core.Transaction, error) {
	t, err := s.build(ctx, userID, in)
	if err != nil {
		return core.Transaction{}, err
	}
	if t.Category == "" {
		t.Category = DefaultCategory
	}

	saved, err := s.store.CreateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}
	s.log.LogTransactionWrite(ctx, applog.OpCreate, saved.ID, saved.UserID, saved.Amount.Cents, string(saved.Type))
	s.changed(ctx, amqp.TransactionCreated, userID, saved.ID)
	return saved, nil
}

// Update replaces every field of transaction id. Fields left empty in the
// input are cleared.
func (s *TransactionService) Update(ctx context.Context, userID, id int64, in TransactionInput) (core.Transaction, error) {
	t, err := s.build(ctx, userID, in)
	if err != nil {
		return core.Transaction{}, err
	}
	t.ID = id

	saved, err := s.store.UpdateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	s.log.LogTransactionWrite(ctx, applog.OpUpdate, saved.ID, saved.UserID, saved.Amount.Cents, string(saved.Type))
	s.changed(ctx, amqp.TransactionUpdated, userID, saved.ID)
	return saved, nil
}

func (s *TransactionService) Delete(ctx context.Context, userID, id int64) error {
	if err := s.store.DeleteTransaction(ctx, userID, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	s.log.LogTransactionWrite(ctx, applog.OpDelete, id, userID, 0, "")
	s.changed(ctx, amqp.TransactionDeleted, userID, id)
	return nil
}

func (s *TransactionService) Get(ctx context.Context, userID, id int64) (core.Transaction, error) {
	return s.store.GetTransaction(ctx, userID, id)
}

func (s *TransactionService) List(ctx context.Context, userID int64) ([]core.Transaction, error) {
	return s.store.ListTransactions(ctx, userID)
}

// changed runs after a committed write. Publishing errors are logged only;
// the row is already saved.
func (s *TransactionService) changed(ctx context.Context, kind amqp.EventKind, userID, id int64) {
	if s.views != nil {
		s.views.Invalidate(userID)
	}
	if s.events == nil {
		return
	}
	if err := s.events.PublishTransactionEvent(ctx, amqp.NewTransactionEvent(kind, userID, id)); err != nil {
		slog.ErrorContext(ctx, "Failed to publish transaction event",
			applog.FieldComponent, applog.ComponentAMQP,
			"kind", kind,
			applog.FieldTransactionID, id,
			applog.FieldError, err)
	}
}
