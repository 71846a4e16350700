// Package memory is an in-process Mirror for development and tests.
package memory

import (
	"context"
	"slices"
	"sync"

	"fintrack/internal/core"
	"fintrack/internal/sheets"
)

type key struct {
	userID, id int64
}

type Store struct {
	mu   sync.Mutex
	rows map[key][]string
}

var _ sheets.Mirror = (*Store)(nil)

func New() *Store {
	return &Store{rows: make(map[key][]string)}
}

func (s *Store) UpsertTransaction(_ context.Context, t core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[key{t.UserID, t.ID}] = sheets.Row(t)
	return nil
}

func (s *Store) RemoveTransaction(_ context.Context, userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, key{userID, id})
	return nil
}

func (s *Store) RemoveUser(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.rows {
		if k.userID == userID {
			delete(s.rows, k)
		}
	}
	return nil
}

// Rows returns the mirrored rows of one user ordered by transaction id.
func (s *Store) Rows(userID int64) [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []int64
	for k := range s.rows {
		if k.userID == userID {
			ids = append(ids, k.id)
		}
	}
	slices.Sort(ids)
	out := make([][]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, slices.Clone(s.rows[key{userID, id}]))
	}
	return out
}
