// Package postgres provides a read-only session.Lookup over a framework-owned
// PostgreSQL sessions table. It uses pgx/v5 for connection pooling; session
// attributes live in a JSONB column.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rhuss/actiongate/pkg/session"
)

// Lookup is a PostgreSQL-backed session.Lookup.
type Lookup struct {
	pool  *pgxpool.Pool
	table pgx.Identifier
	query string
}

// Ensure Lookup implements session.Lookup at compile time.
var _ session.Lookup = (*Lookup)(nil)

// New connects to PostgreSQL with the given configuration.
// If MigrateOnStart is true, the sessions table is created when missing.
func New(ctx context.Context, cfg Config) (*Lookup, error) {
	cfg.defaults()

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parsing DSN: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	l := &Lookup{
		pool:  pool,
		table: tableIdentifier(cfg.Table),
	}
	l.query = lookupQuery(l.table)

	if cfg.MigrateOnStart {
		if err := l.ensureSchema(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("creating schema: %w", err)
		}
	}

	return l, nil
}

// tableIdentifier splits an optionally schema-qualified table name.
func tableIdentifier(table string) pgx.Identifier {
	return pgx.Identifier(strings.Split(table, "."))
}

func lookupQuery(table pgx.Identifier) string {
	return fmt.Sprintf(
		"SELECT attributes FROM %s WHERE id = $1 AND (expires_at IS NULL OR expires_at > now())",
		table.Sanitize(),
	)
}

// Lookup loads the attributes of a live session. Returns session.ErrNotFound
// when the id is unknown or the session has expired.
func (l *Lookup) Lookup(ctx context.Context, id string) (session.Session, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, l.query, id).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, session.ErrNotFound
		}
		return nil, fmt.Errorf("querying session: %w", err)
	}

	attrs, err := decodeAttributes(raw)
	if err != nil {
		return nil, fmt.Errorf("decoding session %q: %w", id, err)
	}
	return attrs, nil
}

// Ping checks database connectivity.
func (l *Lookup) Ping(ctx context.Context) error {
	return l.pool.Ping(ctx)
}

// Close releases the connection pool.
func (l *Lookup) Close() {
	l.pool.Close()
}

// decodeAttributes unmarshals the JSONB attribute document. A staff
// attribute shaped like session.Staff is decoded into *session.Staff; any
// other non-null value is kept as plain JSON. A JSON null stays nil so the
// gate treats it as absent.
func decodeAttributes(raw []byte) (session.Map, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}

	attrs := make(session.Map, len(fields))
	for key, value := range fields {
		if key == session.StaffKey {
			var staff *session.Staff
			if err := json.Unmarshal(value, &staff); err == nil {
				if staff == nil {
					attrs[key] = nil
				} else {
					attrs[key] = staff
				}
				continue
			}
		}

		var v any
		if err := json.Unmarshal(value, &v); err != nil {
			return nil, fmt.Errorf("attribute %s: %w", key, err)
		}
		attrs[key] = v
	}
	return attrs, nil
}
