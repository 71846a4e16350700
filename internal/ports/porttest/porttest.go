// Package porttest holds behaviour checks shared by every ports.Store backend.
package porttest

import (
	"context"
	"errors"
	"testing"

	"fintrack/internal/core"
	"fintrack/internal/ports"
)

// Run exercises a fresh store returned by newStore.
func Run(t *testing.T, newStore func(t *testing.T) ports.Store) {
	t.Helper()

	t.Run("users", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		u, err := s.CreateUser(ctx, core.User{Username: "ada", Name: "Ada", Email: "ada@example.com", PasswordHash: "h"})
		if err != nil {
			t.Fatalf("create user: %v", err)
		}
		if u.ID == 0 {
			t.Fatalf("expected an assigned id")
		}
		if _, err := s.CreateUser(ctx, core.User{Username: "ada", Email: "other@example.com", PasswordHash: "h"}); !errors.Is(err, ports.ErrConflict) {
			t.Fatalf("duplicate username: expected ErrConflict, got %v", err)
		}
		if _, err := s.CreateUser(ctx, core.User{Username: "bob", Email: "ada@example.com", PasswordHash: "h"}); !errors.Is(err, ports.ErrConflict) {
			t.Fatalf("duplicate email: expected ErrConflict, got %v", err)
		}

		byName, err := s.GetUserByUsername(ctx, "ada")
		if err != nil || byName.ID != u.ID || byName.Name != "Ada" || byName.Email != "ada@example.com" {
			t.Fatalf("get by username: %+v, %v", byName, err)
		}
		byID, err := s.GetUserByID(ctx, u.ID)
		if err != nil || byID.Username != "ada" || byID.PasswordHash != "h" {
			t.Fatalf("get by id: %+v, %v", byID, err)
		}
		if _, err := s.GetUserByUsername(ctx, "nobody"); !errors.Is(err, ports.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}

		if err := s.DeleteUser(ctx, u.ID); err != nil {
			t.Fatalf("delete user: %v", err)
		}
		if _, err := s.GetUserByID(ctx, u.ID); !errors.Is(err, ports.ErrNotFound) {
			t.Fatalf("expected ErrNotFound after delete, got %v", err)
		}
		if err := s.DeleteUser(ctx, u.ID); !errors.Is(err, ports.ErrNotFound) {
			t.Fatalf("second delete: expected ErrNotFound, got %v", err)
		}
	})

	t.Run("transactions", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		alice := mustUser(t, s, "alice")
		bob := mustUser(t, s, "bob")

		undated, err := s.CreateTransaction(ctx, core.Transaction{UserID: alice.ID, Amount: core.Money{Cents: 4200}, Type: core.TypeExpenses, Month: "Sep/2025"})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		older, err := s.CreateTransaction(ctx, core.Transaction{UserID: alice.ID, Amount: core.Money{Cents: 10000}, Type: core.TypeIncome, Date: "2024-01-15", Category: "Salary"})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		newer, err := s.CreateTransaction(ctx, core.Transaction{UserID: alice.ID, Amount: core.Money{Cents: 1250}, Type: core.TypeExpenses, Date: "2024-02-03", Category: "Food"})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if _, err := s.CreateTransaction(ctx, core.Transaction{UserID: bob.ID, Amount: core.Money{Cents: 1}, Type: core.TypeIncome}); err != nil {
			t.Fatalf("create: %v", err)
		}

		list, err := s.ListTransactions(ctx, alice.ID)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(list) != 3 {
			t.Fatalf("expected 3 rows for alice, got %d", len(list))
		}
		if list[0].ID != newer.ID || list[1].ID != older.ID || list[2].ID != undated.ID {
			t.Fatalf("expected newest first, undated last; got %+v", list)
		}
		if list[2].Date != "" || list[2].Month != "Sep/2025" {
			t.Fatalf("undated row round-trip: %+v", list[2])
		}
		if list[1].Amount.Cents != 10000 || list[1].Category != "Salary" || list[1].Type != core.TypeIncome {
			t.Fatalf("row round-trip: %+v", list[1])
		}

		got, err := s.GetTransaction(ctx, alice.ID, older.ID)
		if err != nil || got != older {
			t.Fatalf("get: %+v, %v", got, err)
		}
		if _, err := s.GetTransaction(ctx, bob.ID, older.ID); !errors.Is(err, ports.ErrNotFound) {
			t.Fatalf("cross-user get: expected ErrNotFound, got %v", err)
		}

		replaced := core.Transaction{ID: older.ID, UserID: alice.ID, Amount: core.Money{Cents: 999}, Type: core.TypeExpenses}
		updated, err := s.UpdateTransaction(ctx, replaced)
		if err != nil || updated != replaced {
			t.Fatalf("update: %+v, %v", updated, err)
		}
		got, _ = s.GetTransaction(ctx, alice.ID, older.ID)
		if got.Category != "" || got.Date != "" {
			t.Fatalf("update must replace every field, got %+v", got)
		}
		if _, err := s.UpdateTransaction(ctx, core.Transaction{ID: older.ID, UserID: bob.ID, Amount: core.Money{Cents: 1}, Type: core.TypeIncome}); !errors.Is(err, ports.ErrNotFound) {
			t.Fatalf("cross-user update: expected ErrNotFound, got %v", err)
		}

		if err := s.DeleteTransaction(ctx, bob.ID, newer.ID); !errors.Is(err, ports.ErrNotFound) {
			t.Fatalf("cross-user delete: expected ErrNotFound, got %v", err)
		}
		if err := s.DeleteTransaction(ctx, alice.ID, newer.ID); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if _, err := s.GetTransaction(ctx, alice.ID, newer.ID); !errors.Is(err, ports.ErrNotFound) {
			t.Fatalf("expected ErrNotFound after delete, got %v", err)
		}

		n, err := s.DeleteUserTransactions(ctx, alice.ID)
		if err != nil || n != 2 {
			t.Fatalf("delete user transactions: n=%d err=%v", n, err)
		}
		if list, _ := s.ListTransactions(ctx, alice.ID); len(list) != 0 {
			t.Fatalf("expected no rows left, got %d", len(list))
		}
		if list, _ := s.ListTransactions(ctx, bob.ID); len(list) != 1 {
			t.Fatalf("bob's rows must survive, got %d", len(list))
		}
	})

	t.Run("ping", func(t *testing.T) {
		if err := newStore(t).Ping(context.Background()); err != nil {
			t.Fatalf("ping: %v", err)
		}
	})
}

func mustUser(t *testing.T, s ports.Store, name string) core.User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), core.User{Username: name, Email: name + "@example.com", PasswordHash: "h"})
	if err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return u
}
