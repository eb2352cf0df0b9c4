package persist

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrations embed.FS

// migrationFS is the embedded migration directory rooted at its SQL files.
func migrationFS() (fs.FS, error) {
	return fs.Sub(migrations, "migrations")
}

// Migrate applies pending migrations through a goose provider, logging each
// applied version and the resulting schema version.
func (d *DB) Migrate(ctx context.Context, log *zap.Logger) error {
	fsys, err := migrationFS()
	if err != nil {
		return fmt.Errorf("migration fs: %w", err)
	}

	db := stdlib.OpenDBFromPool(d.Pool)
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, fsys)
	if err != nil {
		return fmt.Errorf("migration provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	for _, r := range results {
		log.Info("migration applied",
			zap.Int64("version", r.Source.Version),
			zap.Duration("took", r.Duration),
		)
	}

	version, err := provider.GetDBVersion(ctx)
	if err != nil {
		return fmt.Errorf("schema version: %w", err)
	}
	log.Info("schema up to date", zap.Int64("version", version), zap.Int("applied", len(results)))
	return nil
}
