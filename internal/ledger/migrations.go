package ledger

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/pressly/goose/v3"
)

//go:embed migrations
var schemaFiles embed.FS

// migrateSchema brings the sessions table up to the newest schema and
// returns the resulting schema version.
func migrateSchema(ctx context.Context, db *sql.DB, logger *slog.Logger) (int64, error) {
	files, err := fs.Sub(schemaFiles, "migrations")
	if err != nil {
		return 0, fmt.Errorf("ledger: schema files: %w", err)
	}

	schema, err := goose.NewProvider(goose.DialectSQLite3, db, files)
	if err != nil {
		return 0, fmt.Errorf("ledger: loading schema: %w", err)
	}

	applied, err := schema.Up(ctx)
	if err != nil {
		return 0, fmt.Errorf("ledger: upgrading schema: %w", err)
	}

	for _, step := range applied {
		logger.Debug("ledger schema upgraded",
			slog.Int64("version", step.Source.Version),
			slog.Duration("took", step.Duration),
		)
	}

	version, err := schema.GetDBVersion(ctx)
	if err != nil {
		return 0, fmt.Errorf("ledger: reading schema version: %w", err)
	}

	return version, nil
}
