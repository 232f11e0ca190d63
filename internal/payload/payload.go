// Package payload provides a minimal typed view over provider webhook
// payloads. Only the fields the service routes on are decoded; the full
// document is retained verbatim for persistence and read-back.
package payload

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/zeebo/blake3"
)

// Known webhook event types.
const (
	TypePostCallTranscription = "post_call_transcription"
	TypePostCallAudio         = "post_call_audio"
)

// Envelope is the decoded view of an inbound webhook payload.
type Envelope struct {
	Type           string
	EventTimestamp int64
	Data           Data

	// Raw is the original document, byte for byte.
	Raw json.RawMessage
}

// Data holds the inspected fields of the payload's data object.
type Data struct {
	ConversationID string
	FullAudio      string
	Transcript     []Turn
	Analysis       *Analysis
}

// Turn is a single transcript entry.
type Turn struct {
	Role    string `json:"role"`
	Message string `json:"message"`
}

// Analysis holds post-call analysis results.
type Analysis struct {
	TranscriptSummary *string `json:"transcript_summary"`
}

type wireEnvelope struct {
	Type           string   `json:"type"`
	EventTimestamp int64    `json:"event_timestamp"`
	Data           wireData `json:"data"`
}

type wireData struct {
	ConversationID string    `json:"conversation_id"`
	FullAudio      string    `json:"full_audio"`
	Transcript     []Turn    `json:"transcript"`
	Analysis       *Analysis `json:"analysis"`
}

// Parse decodes raw into an Envelope. Only invalid JSON is an error:
// fields with an unexpected type (a numeric conversation_id, a string
// event_timestamp, a non-object document) are left at their zero value
// and the payload is still accepted, since the full document is retained
// in Raw regardless. The raw bytes are copied so the Envelope stays
// valid after the caller reuses its buffer.
func Parse(raw []byte) (*Envelope, error) {
	if !json.Valid(raw) {
		return nil, fmt.Errorf("decode payload: invalid JSON")
	}

	// Unmarshal keeps decoding past type mismatches, so whatever fields
	// do have the expected shape are kept.
	var w wireEnvelope
	_ = json.Unmarshal(raw, &w)

	env := &Envelope{
		Type:           w.Type,
		EventTimestamp: w.EventTimestamp,
		Data: Data{
			ConversationID: w.Data.ConversationID,
			FullAudio:      w.Data.FullAudio,
			Transcript:     w.Data.Transcript,
			Analysis:       w.Data.Analysis,
		},
		Raw: json.RawMessage(append([]byte(nil), raw...)),
	}
	return env, nil
}

// Digest returns the BLAKE3 hash of the raw document as lowercase hex.
// Logged in place of payload bodies, which never go to the log stream.
func (e *Envelope) Digest() string {
	sum := blake3.Sum256(e.Raw)
	return hex.EncodeToString(sum[:])
}

// Summary returns the transcript summary, or nil if the payload has no
// analysis block or the summary is absent.
func (e *Envelope) Summary() *string {
	if e.Data.Analysis == nil {
		return nil
	}
	return e.Data.Analysis.TranscriptSummary
}
