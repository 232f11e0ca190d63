package webhook

import "time"

// Provider header names on intake requests.
const (
	// SignatureHeader carries the combined "t=<ts>,v0=<hex>" signature.
	SignatureHeader = "ElevenLabs-Signature"
	// TimestampHeader is the legacy fallback when the combined header
	// has no t= token.
	TimestampHeader = "ElevenLabs-Timestamp"
)

// Config holds intake handler configuration.
type Config struct {
	// Secret is the shared HMAC secret. Empty means unconfigured; the
	// handler answers 500 without attempting verification.
	Secret string

	// MaxBodySize is the maximum allowed request body size in bytes.
	MaxBodySize int64

	// MaxSkew bounds the signed timestamp's drift from the server clock.
	MaxSkew time.Duration

	// AudioDir is where extracted audio artifacts are written.
	AudioDir string
}

// AckResponse acknowledges a stored webhook payload.
type AckResponse struct {
	OK bool `json:"ok"`
}

// ErrorResponse is the JSON body for webhook errors.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Default values
const (
	DefaultMaxBodySize = 10 * 1048576 // 10 MB; audio payloads are large
)
