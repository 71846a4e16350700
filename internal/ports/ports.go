// Package ports declares the storage and messaging contracts the services
// depend on.
package ports

import (
	"context"
	"errors"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
)

type (
	// TransactionStore persists transactions. Every lookup is scoped by
	// owner so one user can never read or change another user's rows.
	TransactionStore interface {
		CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
		GetTransaction(ctx context.Context, userID, id int64) (core.Transaction, error)
		// UpdateTransaction replaces every field of the row identified by
		// t.ID and t.UserID.
		UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
		DeleteTransaction(ctx context.Context, userID, id int64) error
		// ListTransactions returns a user's rows newest first, undated last.
		ListTransactions(ctx context.Context, userID int64) ([]core.Transaction, error)
		DeleteUserTransactions(ctx context.Context, userID int64) (int64, error)
	}

	UserStore interface {
		// CreateUser fails with ErrConflict when the username or email is taken.
		CreateUser(ctx context.Context, u core.User) (core.User, error)
		GetUserByUsername(ctx context.Context, username string) (core.User, error)
		GetUserByID(ctx context.Context, id int64) (core.User, error)
		DeleteUser(ctx context.Context, id int64) error
	}

	// Store is what every storage backend provides.
	Store interface {
		TransactionStore
		UserStore
		Ping(ctx context.Context) error
	}

	// EventPublisher announces committed changes. Implemented by
	// *amqp.Client; services treat a nil publisher as disabled.
	EventPublisher interface {
		PublishTransactionEvent(ctx context.Context, msg *amqp.TransactionEvent) error
	}
)
