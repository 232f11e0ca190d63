package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps every received payload in a SQLite database, with
// intake metadata in queryable columns.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (and creates if needed) the database at path and
// ensures the payloads table exists.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := db.ExecContext(pctx, "PRAGMA busy_timeout = 5000;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy_timeout: %w", err)
	}
	if err := bootstrap(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func bootstrap(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS payloads (
  id              TEXT PRIMARY KEY,
  conversation_id TEXT NOT NULL DEFAULT '',
  type            TEXT NOT NULL DEFAULT '',
  event_timestamp INTEGER NOT NULL DEFAULT 0,
  digest          TEXT NOT NULL,
  received_at     INTEGER NOT NULL,
  body            JSON NOT NULL
);`,
		`CREATE INDEX IF NOT EXISTS payloads_received_at_idx ON payloads(received_at);`,
		`CREATE INDEX IF NOT EXISTS payloads_conversation_idx ON payloads(conversation_id);`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("bootstrap sqlite: %w", err)
		}
	}
	return nil
}

// Save inserts rec as a new row keyed by its delivery id. The receive
// time is stored as Unix nanoseconds so ORDER BY received_at is true
// time order, which RFC3339 text (variable-width fractions) is not.
func (s *SQLiteStore) Save(ctx context.Context, rec Record) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO payloads(id, conversation_id, type, event_timestamp, digest, received_at, body)
VALUES(?, ?, ?, ?, ?, ?, ?);
`, rec.ID, rec.ConversationID, rec.Type, rec.EventTimestamp, rec.Digest,
		rec.ReceivedAt.UnixNano(), string(rec.Body))
	if err != nil {
		return fmt.Errorf("insert payload: %w", err)
	}
	return nil
}

// Latest returns the most recently received payload, or nil if the
// table is empty.
func (s *SQLiteStore) Latest(ctx context.Context) (json.RawMessage, error) {
	var body string
	err := s.db.QueryRowContext(ctx,
		"SELECT body FROM payloads ORDER BY received_at DESC, rowid DESC LIMIT 1;").Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read latest payload: %w", err)
	}
	return json.RawMessage(body), nil
}

// List returns up to limit payloads, newest first.
func (s *SQLiteStore) List(ctx context.Context, limit int) ([]json.RawMessage, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT body FROM payloads ORDER BY received_at DESC, rowid DESC LIMIT ?;", limit)
	if err != nil {
		return nil, fmt.Errorf("list payloads: %w", err)
	}
	defer rows.Close()

	items := make([]json.RawMessage, 0, limit)
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan payload: %w", err)
		}
		items = append(items, json.RawMessage(body))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list payloads: %w", err)
	}
	return items, nil
}

// GetByConversation returns the newest payload for the conversation, or
// nil if none is stored.
func (s *SQLiteStore) GetByConversation(ctx context.Context, id string) (json.RawMessage, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `
SELECT body FROM payloads
WHERE conversation_id = ?
ORDER BY received_at DESC, rowid DESC LIMIT 1;
`, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}
	return json.RawMessage(body), nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
