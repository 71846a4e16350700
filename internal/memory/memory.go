// Package memory is a process-local store for development and tests.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/ports"

	"github.com/shopspring/decimal"
)

type Store struct {
	mu     sync.RWMutex
	nextTx int64
	nextU  int64
	txs    map[int64]core.Transaction
	users  map[int64]core.User
}

var _ ports.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		txs:   make(map[int64]core.Transaction),
		users: make(map[int64]core.User),
	}
}

type seedFile struct {
	Users []struct {
		Username     string `json:"username"`
		Name         string `json:"name"`
		Email        string `json:"email"`
		PasswordHash string `json:"password_hash"`
	} `json:"users"`
	Transactions []struct {
		Username string          `json:"username"`
		Amount   decimal.Decimal `json:"amount"`
		Type     string          `json:"type"`
		Date     string          `json:"date"`
		Month    string          `json:"month"`
		Category string          `json:"category"`
	} `json:"transactions"`
}

// NewFromFile seeds a store from a JSON document. A missing path yields an
// empty store; a malformed one is an error.
func NewFromFile(path string) (*Store, error) {
	s := New()
	if path == "" {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var seed seedFile
	if err := json.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}

	ctx := context.Background()
	ids := make(map[string]int64, len(seed.Users))
	for _, u := range seed.Users {
		created, err := s.CreateUser(ctx, core.User{Username: u.Username, Name: u.Name, Email: u.Email, PasswordHash: u.PasswordHash})
		if err != nil {
			return nil, fmt.Errorf("seed user %q: %w", u.Username, err)
		}
		ids[u.Username] = created.ID
	}
	for i, t := range seed.Transactions {
		uid, ok := ids[t.Username]
		if !ok {
			return nil, fmt.Errorf("seed transaction %d: unknown user %q", i, t.Username)
		}
		amount, err := core.MoneyFromDecimal(t.Amount)
		if err != nil {
			return nil, fmt.Errorf("seed transaction %d: %w", i, err)
		}
		s.mu.Lock()
		s.insertLocked(core.Transaction{
			UserID:   uid,
			Amount:   amount,
			Type:     core.TransactionType(t.Type),
			Date:     t.Date,
			Month:    t.Month,
			Category: t.Category,
		})
		s.mu.Unlock()
	}
	return s, nil
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) insertLocked(t core.Transaction) core.Transaction {
	s.nextTx++
	t.ID = s.nextTx
	s.txs[t.ID] = t
	return t
}

func (s *Store) CreateTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[t.UserID]; !ok {
		return core.Transaction{}, fmt.Errorf("user %d: %w", t.UserID, ports.ErrNotFound)
	}
	return s.insertLocked(t), nil
}

func (s *Store) GetTransaction(_ context.Context, userID, id int64) (core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.txs[id]
	if !ok || t.UserID != userID {
		return core.Transaction{}, fmt.Errorf("transaction %d: %w", id, ports.ErrNotFound)
	}
	return t, nil
}

func (s *Store) UpdateTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.txs[t.ID]
	if !ok || cur.UserID != t.UserID {
		return core.Transaction{}, fmt.Errorf("transaction %d: %w", t.ID, ports.ErrNotFound)
	}
	s.txs[t.ID] = t
	return t, nil
}

func (s *Store) DeleteTransaction(_ context.Context, userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.txs[id]
	if !ok || t.UserID != userID {
		return fmt.Errorf("transaction %d: %w", id, ports.ErrNotFound)
	}
	delete(s.txs, id)
	return nil
}

func (s *Store) ListTransactions(_ context.Context, userID int64) ([]core.Transaction, error) {
	s.mu.RLock()
	out := make([]core.Transaction, 0)
	for _, t := range s.txs {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	s.mu.RUnlock()
	slices.SortFunc(out, newestFirst)
	return out, nil
}

func (s *Store) DeleteUserTransactions(_ context.Context, userID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, t := range s.txs {
		if t.UserID == userID {
			delete(s.txs, id)
			n++
		}
	}
	return n, nil
}

func (s *Store) CreateUser(_ context.Context, u core.User) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Username == u.Username || strings.EqualFold(existing.Email, u.Email) {
			return core.User{}, fmt.Errorf("user %q: %w", u.Username, ports.ErrConflict)
		}
	}
	s.nextU++
	u.ID = s.nextU
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	s.users[u.ID] = u
	return u, nil
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return core.User{}, fmt.Errorf("user %q: %w", username, ports.ErrNotFound)
}

func (s *Store) GetUserByID(_ context.Context, id int64) (core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return core.User{}, fmt.Errorf("user %d: %w", id, ports.ErrNotFound)
	}
	return u, nil
}

func (s *Store) DeleteUser(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return fmt.Errorf("user %d: %w", id, ports.ErrNotFound)
	}
	delete(s.users, id)
	return nil
}

// newestFirst mirrors ORDER BY date DESC NULLS LAST, id DESC.
func newestFirst(a, b core.Transaction) int {
	ad, aok := core.ParseDate(a.Date)
	bd, bok := core.ParseDate(b.Date)
	switch {
	case aok && !bok:
		return -1
	case !aok && bok:
		return 1
	case aok && bok && !ad.Equal(bd):
		return bd.Compare(ad)
	}
	switch {
	case a.ID > b.ID:
		return -1
	case a.ID < b.ID:
		return 1
	}
	return 0
}
