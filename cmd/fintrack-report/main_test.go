package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fintrack/internal/core"
	"fintrack/internal/export"
	"fintrack/internal/memory"
)

func seeded(t *testing.T) *memory.Store {
	t.Helper()
	ctx := context.Background()
	s := memory.New()
	u, err := s.CreateUser(ctx, core.User{Username: "ada", Email: "ada@example.com", PasswordHash: "x"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	for _, tx := range []core.Transaction{
		{UserID: u.ID, Amount: core.Money{Cents: 250000}, Type: core.TypeIncome, Date: "2025-01-05", Category: "Salary"},
		{UserID: u.ID, Amount: core.Money{Cents: 4550}, Type: core.TypeExpenses, Date: "2025-01-20", Category: "Food"},
		{UserID: u.ID, Amount: core.Money{Cents: 1200}, Type: core.TypeExpenses, Date: "2025-02-02", Category: "Transport"},
	} {
		if _, err := s.CreateTransaction(ctx, tx); err != nil {
			t.Fatalf("create transaction: %v", err)
		}
	}
	return s
}

func TestRun_TextToStdout(t *testing.T) {
	var out bytes.Buffer
	if err := run(context.Background(), seeded(t), options{username: "ada", format: "text", chart: "bar"}, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	got := out.String()
	for _, want := range []string{"Jan/2025", "Feb/2025", "2500.00", "57.50", "Transport"} {
		if !strings.Contains(got, want) {
			t.Errorf("report missing %q:\n%s", want, got)
		}
	}
}

func TestRun_FilteredCSV(t *testing.T) {
	var out bytes.Buffer
	opts := options{username: "ada", format: "csv", chart: "bar", criteria: core.Criteria{Type: "expenses", MonthKey: "Jan/2025"}}
	if err := run(context.Background(), seeded(t), opts, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	want := "Date,Month,Category,Type,Amount\n2025-01-20,Jan/2025,Food,expenses,45.5\n"
	if out.String() != want {
		t.Fatalf("csv = %q, want %q", out.String(), want)
	}
}

func TestRun_All(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	if err := run(context.Background(), seeded(t), options{username: "ada", format: "all", out: dir, chart: "line"}, nil); err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, name := range []string{"report.txt", "transactions.csv", "transactions.pdf", "chart.png"} {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil || info.Size() == 0 {
			t.Errorf("%s: %v", name, err)
		}
	}
}

func TestRun_Errors(t *testing.T) {
	store := seeded(t)
	ctx := context.Background()

	if err := run(ctx, store, options{username: "nobody", format: "text", chart: "bar"}, &bytes.Buffer{}); err == nil {
		t.Error("expected error for unknown user")
	}
	if err := run(ctx, store, options{username: "ada", format: "xml", chart: "bar"}, &bytes.Buffer{}); err == nil {
		t.Error("expected error for unknown format")
	}
	if err := run(ctx, store, options{username: "ada", format: "text", chart: "pie"}, &bytes.Buffer{}); !errors.Is(err, export.ErrUnknownChart) {
		t.Errorf("expected ErrUnknownChart, got %v", err)
	}

	path := filepath.Join(t.TempDir(), "empty.csv")
	opts := options{username: "ada", format: "csv", out: path, chart: "bar", criteria: core.Criteria{Category: "Rent"}}
	if err := run(ctx, store, opts, nil); !errors.Is(err, export.ErrNothingToExport) {
		t.Fatalf("expected ErrNothingToExport, got %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("partial file left behind: %v", err)
	}
}

func TestRun_AllRemovesEarlierFilesOnFailure(t *testing.T) {
	dir := t.TempDir()
	// A directory in place of the last file makes its create fail.
	if err := os.Mkdir(filepath.Join(dir, "chart.png"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := run(context.Background(), seeded(t), options{username: "ada", format: "all", out: dir, chart: "bar"}, nil); err == nil {
		t.Fatal("expected error when the chart file cannot be created")
	}
	for _, name := range []string{"report.txt", "transactions.csv", "transactions.pdf"} {
		if _, err := os.Stat(filepath.Join(dir, name)); !os.IsNotExist(err) {
			t.Errorf("%s left behind: %v", name, err)
		}
	}
}
