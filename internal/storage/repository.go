package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/ports"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

var _ ports.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	created := u.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	row, err := r.queries.CreateUser(ctx, CreateUserParams{
		Username:     u.Username,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		CreatedAt:    created.Unix(),
	})
	if err != nil {
		if isUniqueViolation(err) {
			return core.User{}, fmt.Errorf("user %q: %w", u.Username, ports.ErrConflict)
		}
		return core.User{}, fmt.Errorf("create user: %w", err)
	}

	slog.InfoContext(ctx, "User saved to SQLite", "id", row.ID, "username", row.Username)
	return toCoreUser(row), nil
}

func (r *SQLiteRepository) GetUserByUsername(ctx context.Context, username string) (core.User, error) {
	row, err := r.queries.GetUserByUsername(ctx, username)
	if err != nil {
		return core.User{}, notFound(err, "user %q", username)
	}
	return toCoreUser(row), nil
}

func (r *SQLiteRepository) GetUserByID(ctx context.Context, id int64) (core.User, error) {
	row, err := r.queries.GetUserByID(ctx, id)
	if err != nil {
		return core.User{}, notFound(err, "user %d", id)
	}
	return toCoreUser(row), nil
}

func (r *SQLiteRepository) DeleteUser(ctx context.Context, id int64) error {
	n, err := r.queries.DeleteUser(ctx, id)
	if err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("user %d: %w", id, ports.ErrNotFound)
	}
	slog.InfoContext(ctx, "User deleted from SQLite", "id", id)
	return nil
}

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	row, err := r.queries.CreateTransaction(ctx, CreateTransactionParams{
		UserID:      t.UserID,
		AmountCents: t.Amount.Cents,
		Type:        string(t.Type),
		Date:        nullString(t.Date),
		Month:       nullString(t.Month),
		Category:    nullString(t.Category),
		Now:         time.Now().Unix(),
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", row.ID,
		"user_id", row.UserID,
		"amount_cents", row.AmountCents,
		"type", row.Type)

	return toCoreTransaction(row), nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, userID, id int64) (core.Transaction, error) {
	row, err := r.queries.GetTransaction(ctx, id, userID)
	if err != nil {
		return core.Transaction{}, notFound(err, "transaction %d", id)
	}
	return toCoreTransaction(row), nil
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	row, err := r.queries.UpdateTransaction(ctx, UpdateTransactionParams{
		ID:          t.ID,
		UserID:      t.UserID,
		AmountCents: t.Amount.Cents,
		Type:        string(t.Type),
		Date:        nullString(t.Date),
		Month:       nullString(t.Month),
		Category:    nullString(t.Category),
		Now:         time.Now().Unix(),
	})
	if err != nil {
		return core.Transaction{}, notFound(err, "transaction %d", t.ID)
	}
	return toCoreTransaction(row), nil
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, userID, id int64) error {
	n, err := r.queries.DeleteTransaction(ctx, id, userID)
	if err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("transaction %d: %w", id, ports.ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context, userID int64) ([]core.Transaction, error) {
	rows, err := r.queries.ListTransactions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	out := make([]core.Transaction, len(rows))
	for i, row := range rows {
		out[i] = toCoreTransaction(row)
	}
	return out, nil
}

func (r *SQLiteRepository) DeleteUserTransactions(ctx context.Context, userID int64) (int64, error) {
	n, err := r.queries.DeleteUserTransactions(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("delete transactions of user %d: %w", userID, err)
	}
	return n, nil
}

func toCoreUser(u User) core.User {
	return core.User{
		ID:           u.ID,
		Username:     u.Username,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		CreatedAt:    time.Unix(u.CreatedAt, 0).UTC(),
	}
}

func toCoreTransaction(t Transaction) core.Transaction {
	return core.Transaction{
		ID:       t.ID,
		UserID:   t.UserID,
		Amount:   core.Money{Cents: t.AmountCents},
		Type:     core.TransactionType(t.Type),
		Date:     t.Date.String,
		Month:    t.Month.String,
		Category: t.Category.String,
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func notFound(err error, format string, args ...any) error {
	what := fmt.Sprintf(format, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, ports.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", what, err)
}

func isUniqueViolation(err error) bool {
	var serr *sqlite.Error
	if errors.As(err, &serr) {
		// modernc enables extended result codes, so NOT NULL and CHECK
		// failures carry their own codes.
		switch serr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
	}
	return false
}
