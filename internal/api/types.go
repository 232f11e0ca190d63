package api

import (
	"encoding/json"

	"github.com/voxgate/voxgate/internal/payload"
)

// LatestResponse is returned by GET /conversations/latest.
type LatestResponse struct {
	Transcript []payload.Turn `json:"transcript"`
	Summary    *string        `json:"summary"`
}

// ListResponse is returned by GET /conversations/.
type ListResponse struct {
	Items []json.RawMessage `json:"items"`
}

// ErrorResponse is returned on errors.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthzResponse is returned by GET /healthz.
type HealthzResponse struct {
	Status         string `json:"status"`
	UptimeSeconds  int64  `json:"uptime_seconds"`
	StorageBackend string `json:"storage_backend"`
}
