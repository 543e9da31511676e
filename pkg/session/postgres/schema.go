package postgres

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
)

//go:embed schema.sql
var schemaSQL string

// schemaStatements renders the table DDL for table. The index is created in
// the table's schema and named after the table.
func schemaStatements(table pgx.Identifier) string {
	index := pgx.Identifier{table[len(table)-1] + "_expires_at_idx"}
	return strings.NewReplacer(
		"{{table}}", table.Sanitize(),
		"{{index}}", index.Sanitize(),
	).Replace(schemaSQL)
}

// ensureSchema creates the sessions table and its expiry index when they
// do not exist yet. Safe to run repeatedly.
func (l *Lookup) ensureSchema(ctx context.Context) error {
	slog.Info("ensuring session table", "table", l.table.Sanitize())
	if _, err := l.pool.Exec(ctx, schemaStatements(l.table)); err != nil {
		return fmt.Errorf("creating session table %s: %w", l.table.Sanitize(), err)
	}
	return nil
}
