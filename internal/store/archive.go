package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ArchiveStore writes one file per received payload, named
// <event_ts>_<type>_<conversation>.json. The timestamp prefix makes a
// reverse lexical sort of filenames a newest-first ordering.
type ArchiveStore struct {
	dir string
}

var _ Store = (*ArchiveStore)(nil)

// NewArchiveStore creates a per-event store rooted at dir.
func NewArchiveStore(dir string) (*ArchiveStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("data directory is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &ArchiveStore{dir: filepath.Clean(dir)}, nil
}

// filename derives the archive filename for rec. Missing metadata falls
// back to placeholders so every payload lands somewhere.
func (s *ArchiveStore) filename(rec Record) string {
	ts := rec.EventTimestamp
	if ts == 0 {
		ts = rec.ReceivedAt.UnixMilli()
	}
	typ := rec.Type
	if typ == "" {
		typ = "unknown"
	}
	conv := sanitizeID(rec.ConversationID)
	if conv == "" {
		conv = "no_conversation"
	}
	return fmt.Sprintf("%d_%s_%s.json", ts, sanitizeID(typ), conv)
}

// Save appends rec as a new archive file.
func (s *ArchiveStore) Save(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := filepath.Join(s.dir, s.filename(rec))
	if err := writeFileAtomic(path, rec.Body); err != nil {
		return fmt.Errorf("save payload: %w", err)
	}
	return nil
}

// newestFirst returns archive filenames sorted newest first.
func (s *ArchiveStore) newestFirst() ([]string, error) {
	names, err := filepath.Glob(filepath.Join(s.dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("scan data directory: %w", err)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return names, nil
}

// Latest returns the newest archived payload, or nil if none exist.
func (s *ArchiveStore) Latest(ctx context.Context) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	names, err := s.newestFirst()
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, nil
	}
	return s.readPayload(names[0])
}

// List returns up to limit payloads, newest first. Files that fail to
// read are skipped rather than failing the whole listing.
func (s *ArchiveStore) List(ctx context.Context, limit int) ([]json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	names, err := s.newestFirst()
	if err != nil {
		return nil, err
	}

	items := make([]json.RawMessage, 0, limit)
	for _, name := range names {
		if len(items) >= limit {
			break
		}
		raw, err := s.readPayload(name)
		if err != nil {
			continue
		}
		items = append(items, raw)
	}
	return items, nil
}

// GetByConversation returns the newest payload whose filename carries
// the given conversation id, or nil if there is no match.
func (s *ArchiveStore) GetByConversation(ctx context.Context, id string) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	token := sanitizeID(id)
	if token == "" {
		return nil, nil
	}

	names, err := s.newestFirst()
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		if strings.Contains(filepath.Base(name), token) {
			return s.readPayload(name)
		}
	}
	return nil, nil
}

func (s *ArchiveStore) readPayload(path string) (json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("stored payload is not valid JSON")
	}
	return json.RawMessage(data), nil
}

func (s *ArchiveStore) Close() error { return nil }
