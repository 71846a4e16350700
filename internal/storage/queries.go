package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type User struct {
	ID           int64
	Username     string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    int64
}

type Transaction struct {
	ID          int64
	UserID      int64
	AmountCents int64
	Type        string
	Date        sql.NullString
	Month       sql.NullString
	Category    sql.NullString
	CreatedAt   int64
	UpdatedAt   int64
}

const userColumns = `id, username, name, email, password_hash, created_at`

const transactionColumns = `id, user_id, amount_cents, type, date, month, category, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt)
	return u, err
}

func scanTransaction(row interface{ Scan(...any) error }) (Transaction, error) {
	var t Transaction
	err := row.Scan(&t.ID, &t.UserID, &t.AmountCents, &t.Type, &t.Date, &t.Month, &t.Category, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

const createUser = `INSERT INTO users (username, name, email, password_hash, created_at)
VALUES (?, ?, ?, ?, ?)
RETURNING ` + userColumns

type CreateUserParams struct {
	Username     string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    int64
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRowContext(ctx, createUser, arg.Username, arg.Name, arg.Email, arg.PasswordHash, arg.CreatedAt)
	return scanUser(row)
}

const getUserByUsername = `SELECT ` + userColumns + ` FROM users WHERE username = ?`

func (q *Queries) GetUserByUsername(ctx context.Context, username string) (User, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUserByUsername, username))
}

const getUserByID = `SELECT ` + userColumns + ` FROM users WHERE id = ?`

func (q *Queries) GetUserByID(ctx context.Context, id int64) (User, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUserByID, id))
}

const deleteUser = `DELETE FROM users WHERE id = ?`

func (q *Queries) DeleteUser(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteUser, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const createTransaction = `INSERT INTO transactions (user_id, amount_cents, type, date, month, category, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + transactionColumns

type CreateTransactionParams struct {
	UserID      int64
	AmountCents int64
	Type        string
	Date        sql.NullString
	Month       sql.NullString
	Category    sql.NullString
	Now         int64
}

func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) (Transaction, error) {
	row := q.db.QueryRowContext(ctx, createTransaction,
		arg.UserID, arg.AmountCents, arg.Type, arg.Date, arg.Month, arg.Category, arg.Now, arg.Now)
	return scanTransaction(row)
}

const getTransaction = `SELECT ` + transactionColumns + ` FROM transactions WHERE id = ? AND user_id = ?`

func (q *Queries) GetTransaction(ctx context.Context, id, userID int64) (Transaction, error) {
	return scanTransaction(q.db.QueryRowContext(ctx, getTransaction, id, userID))
}

const updateTransaction = `UPDATE transactions
SET amount_cents = ?, type = ?, date = ?, month = ?, category = ?, updated_at = ?
WHERE id = ? AND user_id = ?
RETURNING ` + transactionColumns

type UpdateTransactionParams struct {
	ID          int64
	UserID      int64
	AmountCents int64
	Type        string
	Date        sql.NullString
	Month       sql.NullString
	Category    sql.NullString
	Now         int64
}

func (q *Queries) UpdateTransaction(ctx context.Context, arg UpdateTransactionParams) (Transaction, error) {
	row := q.db.QueryRowContext(ctx, updateTransaction,
		arg.AmountCents, arg.Type, arg.Date, arg.Month, arg.Category, arg.Now, arg.ID, arg.UserID)
	return scanTransaction(row)
}

const deleteTransaction = `DELETE FROM transactions WHERE id = ? AND user_id = ?`

func (q *Queries) DeleteTransaction(ctx context.Context, id, userID int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteTransaction, id, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const listTransactions = `SELECT ` + transactionColumns + ` FROM transactions
WHERE user_id = ?
ORDER BY date DESC NULLS LAST, id DESC`

func (q *Queries) ListTransactions(ctx context.Context, userID int64) ([]Transaction, error) {
	rows, err := q.db.QueryContext(ctx, listTransactions, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteUserTransactions = `DELETE FROM transactions WHERE user_id = ?`

func (q *Queries) DeleteUserTransactions(ctx context.Context, userID int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteUserTransactions, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
