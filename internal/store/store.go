// Package store persists webhook payloads and exposes them to the read
// API. Three backends implement the same interface: a single-slot file
// (last write wins), a per-event file archive, and a SQLite database.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Supported backend names, selected via storage.backend in config.
const (
	BackendLatest  = "latest"
	BackendArchive = "archive"
	BackendSQLite  = "sqlite"
)

// Record is one accepted webhook payload plus intake metadata. Body is
// the raw document as received; the metadata fields are derived from it
// at intake so backends never re-parse.
type Record struct {
	ID             string
	ConversationID string
	Type           string
	EventTimestamp int64
	Digest         string
	ReceivedAt     time.Time
	Body           json.RawMessage
}

// Store is the payload persistence interface. Read methods return nil
// (not an error) when the store holds nothing matching.
type Store interface {
	Save(ctx context.Context, rec Record) error
	Latest(ctx context.Context) (json.RawMessage, error)
	List(ctx context.Context, limit int) ([]json.RawMessage, error)
	GetByConversation(ctx context.Context, id string) (json.RawMessage, error)
	Close() error
}

// Open constructs the backend named by backend. dataDir is used by the
// file backends, sqlitePath by the SQLite backend.
func Open(ctx context.Context, backend, dataDir, sqlitePath string) (Store, error) {
	switch backend {
	case BackendLatest:
		return NewLatestStore(dataDir)
	case BackendArchive:
		return NewArchiveStore(dataDir)
	case BackendSQLite:
		return NewSQLiteStore(ctx, sqlitePath)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}

// sanitizeID maps a conversation id to a filesystem-safe token. Keeps
// alphanumerics, underscore and hyphen; everything else becomes '_'.
func sanitizeID(id string) string {
	var b strings.Builder
	b.Grow(len(id))
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

// writeFileAtomic writes data to path via a temp file and rename, so
// concurrent readers never observe a partially written file.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}
	return nil
}
