package backend

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"fintrack/internal/config"
	sheetmem "fintrack/internal/sheets/memory"
)

func TestFromAppConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.Config
		wantErr string
	}{
		{name: "nil", cfg: nil, wantErr: "app config is nil"},
		{name: "unknown", cfg: &config.Config{DataBackend: "sheets"}, wantErr: "invalid backend type"},
		{name: "postgres without url", cfg: &config.Config{DataBackend: "postgres"}, wantErr: "DATABASE_URL"},
		{name: "sqlite without path", cfg: &config.Config{DataBackend: "sqlite"}, wantErr: "SQLite database path"},
		{name: "memory", cfg: &config.Config{DataBackend: "memory", MemorySeedFile: "seed.json"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromAppConfig(tt.cfg)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Type != MemoryBackend || got.SeedFile != "seed.json" {
				t.Fatalf("unexpected config %+v", got)
			}
		})
	}
}

func TestCreateBackend_Memory(t *testing.T) {
	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: MemoryBackend})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := res.Store.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
	if err := res.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestCreateBackend_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "fintrack.db")
	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: SQLiteBackend, SQLiteDBPath: path})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer res.Close()
	if err := res.Store.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestCreateBackend_Invalid(t *testing.T) {
	if _, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: "sheets"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestCreateMirror_FallsBackToMemory(t *testing.T) {
	m, err := NewFactory(nil).CreateMirror(context.Background(), MirrorConfig{})
	if err != nil {
		t.Fatalf("create mirror: %v", err)
	}
	if _, ok := m.(*sheetmem.Store); !ok {
		t.Fatalf("expected in-memory mirror, got %T", m)
	}
}
