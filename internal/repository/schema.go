package repository

import (
	"context"
	"log/slog"
)

// Schema statements are written in the SQL subset both backends accept.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS funerals (
		id            TEXT PRIMARY KEY,
		family_name   TEXT NOT NULL,
		deceased_name TEXT NOT NULL,
		relationship  TEXT,
		funeral_date  TIMESTAMP NOT NULL,
		venue         TEXT,
		notes         TEXT NOT NULL DEFAULT '',
		status        TEXT NOT NULL DEFAULT 'PLANNED',
		created_at    TIMESTAMP NOT NULL,
		updated_at    TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS donations (
		id                TEXT PRIMARY KEY,
		funeral_id        TEXT NOT NULL REFERENCES funerals(id) ON DELETE CASCADE,
		full_name         TEXT NOT NULL DEFAULT '',
		last_name         TEXT,
		first_name        TEXT,
		relationship      TEXT,
		address           TEXT NOT NULL DEFAULT '',
		amount            BIGINT NOT NULL DEFAULT 0,
		enclosed_amount   BIGINT NOT NULL DEFAULT 0,
		donation_type     TEXT NOT NULL DEFAULT '',
		donation_category TEXT NOT NULL DEFAULT '',
		company_name      TEXT NOT NULL DEFAULT '',
		position          TEXT NOT NULL DEFAULT '',
		co_names          TEXT NOT NULL DEFAULT '[]',
		notes             TEXT NOT NULL DEFAULT '',
		ocr_results       TEXT NOT NULL DEFAULT '{}',
		ocr_provider      TEXT NOT NULL DEFAULT '',
		created_at        TIMESTAMP NOT NULL,
		updated_at        TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_donations_funeral_id ON donations(funeral_id)`,
	`CREATE INDEX IF NOT EXISTS idx_donations_created_at ON donations(created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_funerals_funeral_date ON funerals(funeral_date)`,
}

// Migrate creates the schema if it does not exist yet.
func (d *DB) Migrate(ctx context.Context, logger *slog.Logger) error {
	logger.Info("running schema migration")
	for _, stmt := range schemaStatements {
		if _, err := d.SQL.ExecContext(ctx, stmt); err != nil {
			logger.Error("schema migration failed", "error", err)
			return err
		}
	}
	logger.Info("schema migration complete")
	return nil
}
