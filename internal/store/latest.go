package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const latestFilename = "payload.json"

// LatestStore keeps exactly one payload in a single file. Every save is
// a full-file atomic replace, so concurrent writers degrade to last
// write wins without locking.
type LatestStore struct {
	dir string
}

var _ Store = (*LatestStore)(nil)

// NewLatestStore creates a single-slot store rooted at dir.
func NewLatestStore(dir string) (*LatestStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("data directory is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &LatestStore{dir: filepath.Clean(dir)}, nil
}

func (s *LatestStore) path() string {
	return filepath.Join(s.dir, latestFilename)
}

// Save overwrites the slot with rec's body, unconditionally.
func (s *LatestStore) Save(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := writeFileAtomic(s.path(), rec.Body); err != nil {
		return fmt.Errorf("save payload: %w", err)
	}
	return nil
}

// Latest returns the stored payload, or nil if the slot is empty.
func (s *LatestStore) Latest(ctx context.Context) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("stored payload is not valid JSON")
	}
	return json.RawMessage(data), nil
}

// List returns the single stored payload, or an empty slice.
func (s *LatestStore) List(ctx context.Context, limit int) ([]json.RawMessage, error) {
	raw, err := s.Latest(ctx)
	if err != nil {
		return nil, err
	}
	if raw == nil || limit < 1 {
		return []json.RawMessage{}, nil
	}
	return []json.RawMessage{raw}, nil
}

// GetByConversation returns the stored payload if its conversation id
// matches, nil otherwise.
func (s *LatestStore) GetByConversation(ctx context.Context, id string) (json.RawMessage, error) {
	raw, err := s.Latest(ctx)
	if err != nil || raw == nil {
		return nil, err
	}

	var peek struct {
		Data struct {
			ConversationID string `json:"conversation_id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &peek); err != nil {
		return nil, fmt.Errorf("decode stored payload: %w", err)
	}
	if peek.Data.ConversationID != id {
		return nil, nil
	}
	return raw, nil
}

func (s *LatestStore) Close() error { return nil }
