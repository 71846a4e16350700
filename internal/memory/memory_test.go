package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"fintrack/internal/ports"
	"fintrack/internal/ports/porttest"
)

func TestStoreContract(t *testing.T) {
	porttest.Run(t, func(t *testing.T) ports.Store { return New() })
}

func TestNewFromFile(t *testing.T) {
	dir := t.TempDir()

	s, err := NewFromFile(filepath.Join(dir, "missing.json"))
	if err != nil {
		t.Fatalf("missing file must yield empty store, got %v", err)
	}
	if _, err := s.GetUserByID(context.Background(), 1); err == nil {
		t.Fatalf("expected empty store")
	}

	mustWrite := func(name, content string) string {
		t.Helper()
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		return p
	}

	seed := mustWrite("seed.json", `{
		"users": [{"username": "demo", "email": "demo@example.com", "password_hash": "x"}],
		"transactions": [
			{"username": "demo", "amount": 150, "type": "income", "date": "2024-01-15", "category": "Salary"},
			{"username": "demo", "amount": "12.5", "type": "expenses", "month": "Sep/2025"}
		]
	}`)
	s, err = NewFromFile(seed)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	u, err := s.GetUserByUsername(context.Background(), "demo")
	if err != nil {
		t.Fatalf("seeded user: %v", err)
	}
	list, _ := s.ListTransactions(context.Background(), u.ID)
	if len(list) != 2 || list[0].Amount.Cents != 15000 || list[1].Amount.Cents != 1250 {
		t.Fatalf("unexpected seeded rows: %+v", list)
	}

	bad := mustWrite("bad.json", `{"transactions": [{"username": "ghost", "amount": 1, "type": "income"}]}`)
	if _, err := NewFromFile(bad); err == nil {
		t.Fatalf("expected error for unknown user")
	}

	broken := mustWrite("broken.json", `{`)
	if _, err := NewFromFile(broken); err == nil {
		t.Fatalf("expected parse error")
	}
}
