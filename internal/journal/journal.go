// Package journal persists exchange notifications to a relational database so
// operators can audit what the ledger did after the fact. The journal is a
// consumer of committed events only; nothing in the exchange reads it back.
package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"         // PostgreSQL driver
	_ "modernc.org/sqlite"        // SQLite driver

	"github.com/openexch/marketd/internal/events"
)

// Config selects the journal database.
type Config struct {
	// Driver is "sqlite" or "postgres".
	Driver string

	// DSN is the driver-specific data source name. For sqlite this is a file
	// path (or ":memory:").
	DSN string

	// DefaultTimeout bounds individual statements. Zero means 5s.
	DefaultTimeout time.Duration
}

func (c *Config) validate() error {
	switch c.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unknown journal driver %q", c.Driver)
	}
	if c.DSN == "" {
		return fmt.Errorf("journal DSN must not be empty")
	}
	return nil
}

func (c *Config) timeout() time.Duration {
	if c.DefaultTimeout > 0 {
		return c.DefaultTimeout
	}
	return 5 * time.Second
}

// Journal is an append-only event log over database/sql. Payloads are stored
// as lz4-compressed JSON.
type Journal struct {
	db  *sql.DB
	cfg Config
}

// Open opens the journal database and initializes the schema.
func Open(ctx context.Context, cfg Config) (*Journal, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("opening journal database: %w", err)
	}

	j := &Journal{db: db, cfg: cfg}

	ctx, cancel := context.WithTimeout(ctx, cfg.timeout())
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging journal database: %w", err)
	}
	if err := j.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing journal schema: %w", err)
	}
	return j, nil
}

func (j *Journal) initSchema(ctx context.Context) error {
	_, err := j.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS exchange_events (
  seq         BIGINT PRIMARY KEY,
  event_type  TEXT NOT NULL,
  asset       TEXT NOT NULL,
  asset_id    TEXT NOT NULL,
  occurred_at TIMESTAMP NOT NULL,
  encoding    INTEGER NOT NULL,
  orig_len    INTEGER NOT NULL,
  payload     BYTEA NOT NULL
)`)
	if err != nil && j.cfg.Driver == "sqlite" {
		// SQLite has no BYTEA; retry with its spelling.
		_, err = j.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS exchange_events (
  seq         INTEGER PRIMARY KEY,
  event_type  TEXT NOT NULL,
  asset       TEXT NOT NULL,
  asset_id    TEXT NOT NULL,
  occurred_at TIMESTAMP NOT NULL,
  encoding    INTEGER NOT NULL,
  orig_len    INTEGER NOT NULL,
  payload     BLOB NOT NULL
)`)
	}
	return err
}

// Append records one event. Appending the same sequence twice fails on the
// primary key, which catches accidental double-subscription.
func (j *Journal) Append(ctx context.Context, ev events.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encoding event %d: %w", ev.Seq, err)
	}
	stored, encoding := compressPayload(payload)

	ctx, cancel := context.WithTimeout(ctx, j.cfg.timeout())
	defer cancel()

	_, err = j.db.ExecContext(ctx, j.rebind(`
INSERT INTO exchange_events (seq, event_type, asset, asset_id, occurred_at, encoding, orig_len, payload)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		int64(ev.Seq), string(ev.Type), ev.Asset, ev.AssetID, ev.Timestamp,
		encoding, len(payload), stored)
	if err != nil {
		return fmt.Errorf("appending event %d: %w", ev.Seq, err)
	}
	return nil
}

// After returns up to limit events with sequence numbers greater than seq, in
// sequence order.
func (j *Journal) After(ctx context.Context, seq uint64, limit int) ([]events.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, j.cfg.timeout())
	defer cancel()

	rows, err := j.db.QueryContext(ctx, j.rebind(`
SELECT encoding, orig_len, payload FROM exchange_events
WHERE seq > ? ORDER BY seq ASC LIMIT ?`), int64(seq), limit)
	if err != nil {
		return nil, fmt.Errorf("querying journal: %w", err)
	}
	defer rows.Close()

	var out []events.Event
	for rows.Next() {
		var encoding, origLen int
		var stored []byte
		if err := rows.Scan(&encoding, &origLen, &stored); err != nil {
			return nil, fmt.Errorf("scanning journal row: %w", err)
		}
		payload, err := decompressPayload(stored, encoding, origLen)
		if err != nil {
			return nil, err
		}
		var ev events.Event
		if err := json.Unmarshal(payload, &ev); err != nil {
			return nil, fmt.Errorf("decoding journal payload: %w", err)
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

// Len returns the number of journaled events.
func (j *Journal) Len(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, j.cfg.timeout())
	defer cancel()

	var n int
	err := j.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM exchange_events`).Scan(&n)
	return n, err
}

// Close closes the database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// rebind rewrites ? placeholders to $n for postgres.
func (j *Journal) rebind(query string) string {
	if j.cfg.Driver != "postgres" {
		return query
	}
	out := make([]byte, 0, len(query)+8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] != '?' {
			out = append(out, query[i])
			continue
		}
		n++
		out = append(out, fmt.Sprintf("$%d", n)...)
	}
	return string(out)
}
