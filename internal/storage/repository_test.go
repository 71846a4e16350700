package storage

import (
	"context"
	"path/filepath"
	"testing"

	"fintrack/internal/ports"
	"fintrack/internal/ports/porttest"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "nested", "fintrack.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestSQLiteRepositoryContract(t *testing.T) {
	porttest.Run(t, func(t *testing.T) ports.Store { return newTestRepo(t) })
}

func TestRunMigrationsIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fintrack.db")
	repo, err := NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	_ = repo.Close()
	if err := RunMigrations(path); err != nil {
		t.Fatalf("second migration run: %v", err)
	}
}

func TestApplyRejectsMissingDirectory(t *testing.T) {
	_, err := Apply(migrationsFS, "absent", func(source.Driver) (*migrate.Migrate, error) {
		t.Fatal("open must not run without a migration source")
		return nil, nil
	})
	if err == nil {
		t.Fatal("expected error for a missing migration directory")
	}
}

func TestIsUniqueViolation(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	insert := `INSERT INTO users (username, email, password_hash, created_at) VALUES (?, ?, ?, 0)`

	if _, err := repo.db.ExecContext(ctx, insert, "ada", "ada@example.com", "h"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	_, err := repo.db.ExecContext(ctx, insert, "ada", "other@example.com", "h")
	if err == nil || !isUniqueViolation(err) {
		t.Fatalf("duplicate username: %v", err)
	}

	_, err = repo.db.ExecContext(ctx, insert, "bob", "bob@example.com", nil)
	if err == nil {
		t.Fatal("expected NOT NULL failure")
	}
	if isUniqueViolation(err) {
		t.Fatalf("NOT NULL failure reported as unique violation: %v", err)
	}

	_, err = repo.db.ExecContext(ctx, `INSERT INTO transactions (user_id, amount_cents, type, created_at, updated_at) VALUES (1, 0, 'income', 0, 0)`)
	if err == nil || isUniqueViolation(err) {
		t.Fatalf("CHECK failure: %v", err)
	}
}
