// Package postgres stores users and transactions in PostgreSQL through a
// pgx connection pool.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/ports"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

type Repository struct {
	pool *pgxpool.Pool
}

var _ ports.Store = (*Repository)(nil)

// Open migrates the schema at databaseURL and returns a pooled repository.
func Open(ctx context.Context, databaseURL string) (*Repository, error) {
	if err := RunMigrations(databaseURL); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Repository{pool: pool}, nil
}

func (r *Repository) Close() error {
	r.pool.Close()
	return nil
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

const userColumns = `id, username, name, email, password_hash, created_at`

func scanUser(row pgx.Row) (core.User, error) {
	var u core.User
	err := row.Scan(&u.ID, &u.Username, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt)
	u.CreatedAt = u.CreatedAt.UTC()
	return u, err
}

func (r *Repository) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	created := u.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	row := r.pool.QueryRow(ctx,
		`INSERT INTO users (username, name, email, password_hash, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+userColumns,
		u.Username, u.Name, u.Email, u.PasswordHash, created)
	out, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return core.User{}, fmt.Errorf("user %q: %w", u.Username, ports.ErrConflict)
		}
		return core.User{}, fmt.Errorf("create user: %w", err)
	}
	slog.InfoContext(ctx, "User saved to PostgreSQL", "id", out.ID, "username", out.Username)
	return out, nil
}

func (r *Repository) GetUserByUsername(ctx context.Context, username string) (core.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username))
	if err != nil {
		return core.User{}, notFound(err, "user %q", username)
	}
	return u, nil
}

func (r *Repository) GetUserByID(ctx context.Context, id int64) (core.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return core.User{}, notFound(err, "user %d", id)
	}
	return u, nil
}

func (r *Repository) DeleteUser(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %d: %w", id, ports.ErrNotFound)
	}
	return nil
}

const transactionColumns = `id, user_id, amount_cents, type, date, month, category`

func scanTransaction(row pgx.Row) (core.Transaction, error) {
	var (
		t               core.Transaction
		date            pgtype.Date
		month, category pgtype.Text
		kind            string
	)
	if err := row.Scan(&t.ID, &t.UserID, &t.Amount.Cents, &kind, &date, &month, &category); err != nil {
		return core.Transaction{}, err
	}
	t.Type = core.TransactionType(kind)
	if date.Valid {
		t.Date = date.Time.Format(time.DateOnly)
	}
	t.Month = month.String
	t.Category = category.String
	return t, nil
}

func dateParam(s string) pgtype.Date {
	d, ok := core.ParseDate(s)
	return pgtype.Date{Time: d, Valid: ok}
}

func textParam(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}

func (r *Repository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO transactions (user_id, amount_cents, type, date, month, category)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+transactionColumns,
		t.UserID, t.Amount.Cents, string(t.Type), dateParam(t.Date), textParam(t.Month), textParam(t.Category))
	out, err := scanTransaction(row)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	slog.InfoContext(ctx, "Transaction saved to PostgreSQL",
		"id", out.ID,
		"user_id", out.UserID,
		"amount_cents", out.Amount.Cents,
		"type", out.Type)
	return out, nil
}

func (r *Repository) GetTransaction(ctx context.Context, userID, id int64) (core.Transaction, error) {
	t, err := scanTransaction(r.pool.QueryRow(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = $1 AND user_id = $2`, id, userID))
	if err != nil {
		return core.Transaction{}, notFound(err, "transaction %d", id)
	}
	return t, nil
}

func (r *Repository) UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE transactions
		 SET amount_cents = $3, type = $4, date = $5, month = $6, category = $7, updated_at = now()
		 WHERE id = $1 AND user_id = $2
		 RETURNING `+transactionColumns,
		t.ID, t.UserID, t.Amount.Cents, string(t.Type), dateParam(t.Date), textParam(t.Month), textParam(t.Category))
	out, err := scanTransaction(row)
	if err != nil {
		return core.Transaction{}, notFound(err, "transaction %d", t.ID)
	}
	return out, nil
}

func (r *Repository) DeleteTransaction(ctx context.Context, userID, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM transactions WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("transaction %d: %w", id, ports.ErrNotFound)
	}
	return nil
}

func (r *Repository) ListTransactions(ctx context.Context, userID int64) ([]core.Transaction, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+transactionColumns+` FROM transactions
		 WHERE user_id = $1
		 ORDER BY date DESC NULLS LAST, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	out := make([]core.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return out, nil
}

func (r *Repository) DeleteUserTransactions(ctx context.Context, userID int64) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM transactions WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("delete transactions of user %d: %w", userID, err)
	}
	return tag.RowsAffected(), nil
}

func notFound(err error, format string, args ...any) error {
	what := fmt.Sprintf(format, args...)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, ports.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", what, err)
}
