package store

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteAudio writes decoded audio bytes as <dir>/<conversation_id>.mp3
// and returns the path written. An empty or fully unsafe conversation id
// falls back to "unknown".
func WriteAudio(dir, conversationID string, data []byte) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("audio directory is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create audio directory: %w", err)
	}

	name := sanitizeID(conversationID)
	if name == "" {
		name = "unknown"
	}

	path := filepath.Join(dir, name+".mp3")
	if err := writeFileAtomic(path, data); err != nil {
		return "", fmt.Errorf("save audio: %w", err)
	}
	return path, nil
}
