package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

const schemaVersion = 1

// schemaStatements are executed in order to create the database schema.
// All use IF NOT EXISTS for idempotent re-application.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS messages (
		id              INTEGER PRIMARY KEY AUTOINCREMENT,
		conversation_id TEXT    NOT NULL,
		sender_id       TEXT    NOT NULL DEFAULT '',
		sequence_id     TEXT    NOT NULL DEFAULT '',
		role            TEXT    NOT NULL,
		text            TEXT    NOT NULL DEFAULT '',
		created_at      INTEGER NOT NULL,
		reply_to        TEXT    NOT NULL DEFAULT '',
		raw             BLOB
	)`,

	// Serves "most recent N for a conversation" with the insertion-order
	// tie break baked into the key.
	`CREATE INDEX IF NOT EXISTS idx_messages_convo_time
		ON messages(conversation_id, created_at, id)`,

	// Serves reply lookups and enforces sequence-id uniqueness per
	// conversation. Partial: synthetic messages carry no sequence id.
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_messages_convo_seq
		ON messages(conversation_id, sequence_id)
		WHERE sequence_id <> ''`,
}

// migrate creates or updates the database schema to the latest version.
// All DDL uses IF NOT EXISTS, making migration idempotent.
func migrate(db *sql.DB) error {
	ctx := context.Background()

	if _, err := db.ExecContext(ctx, "CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY)"); err != nil {
		return fmt.Errorf("sqlite: create schema_version: %w", err)
	}

	var current int
	if err := db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&current); err != nil {
		return fmt.Errorf("sqlite: read schema version: %w", err)
	}

	if current >= schemaVersion {
		return nil
	}

	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sqlite: migrate: %w\nstatement: %s", err, stmt)
		}
	}

	if _, err := db.ExecContext(ctx, "INSERT OR REPLACE INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("sqlite: record schema version: %w", err)
	}

	return nil
}
