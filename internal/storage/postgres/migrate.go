package postgres

import (
	"embed"
	"log/slog"
	"strings"

	applog "fintrack/internal/log"
	"fintrack/internal/storage"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// RunMigrations brings the schema at databaseURL up to date.
func RunMigrations(databaseURL string) error {
	version, err := storage.Apply(migrationsFS, "migrations", func(src source.Driver) (*migrate.Migrate, error) {
		return migrate.NewWithSourceInstance("iofs", src, migrateURL(databaseURL))
	})
	if err != nil {
		return err
	}
	slog.Debug("Postgres schema ready", applog.FieldComponent, applog.ComponentStorage, "version", version)
	return nil
}

// migrateURL swaps the libpq scheme for the one the pgx/v5 driver registers.
func migrateURL(databaseURL string) string {
	for _, scheme := range []string{"postgresql://", "postgres://"} {
		if rest, ok := strings.CutPrefix(databaseURL, scheme); ok {
			return "pgx5://" + rest
		}
	}
	return databaseURL
}
