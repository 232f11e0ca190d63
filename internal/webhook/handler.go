package webhook

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/voxgate/voxgate/internal/payload"
	"github.com/voxgate/voxgate/internal/store"
)

// Handler receives signed provider callbacks. Each request passes a
// sequence of hard gates: configured secret, signature verification,
// JSON parse, then persistence. Audio extraction afterwards is best
// effort and never fails the request.
type Handler struct {
	config Config
	store  store.Store
	logger *slog.Logger

	// now is swappable for skew tests.
	now func() time.Time
}

// NewHandler creates an intake handler. Zero-value limits get defaults.
func NewHandler(config Config, st store.Store, logger *slog.Logger) *Handler {
	if config.MaxBodySize == 0 {
		config.MaxBodySize = DefaultMaxBodySize
	}
	if config.MaxSkew == 0 {
		config.MaxSkew = DefaultMaxSkew
	}
	return &Handler{
		config: config,
		store:  st,
		logger: logger,
		now:    time.Now,
	}
}

// ServeHTTP handles an inbound webhook POST.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.config.Secret == "" {
		h.logger.Error("webhook secret not configured")
		h.respondError(w, http.StatusInternalServerError, "webhook secret not configured")
		return
	}

	// Enforce body size limit
	limitedReader := io.LimitReader(r.Body, h.config.MaxBodySize+1)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "failed to read request body")
		return
	}
	if int64(len(body)) > h.config.MaxBodySize {
		h.respondError(w, http.StatusRequestEntityTooLarge, "payload too large")
		return
	}

	sig := r.Header.Get(SignatureHeader)
	ts := r.Header.Get(TimestampHeader)
	if err := Verify(body, sig, ts, h.config.Secret, h.config.MaxSkew, h.now()); err != nil {
		h.logger.Warn("webhook signature verification failed", "path", r.URL.Path)
		h.respondError(w, http.StatusUnauthorized, "invalid signature")
		return
	}

	env, err := payload.Parse(body)
	if err != nil {
		h.logger.Warn("webhook payload is not valid JSON", "path", r.URL.Path)
		h.respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	rec := store.Record{
		ID:             uuid.NewString(),
		ConversationID: env.Data.ConversationID,
		Type:           env.Type,
		EventTimestamp: env.EventTimestamp,
		Digest:         env.Digest(),
		ReceivedAt:     h.now().UTC(),
		Body:           env.Raw,
	}
	if err := h.store.Save(ctx, rec); err != nil {
		h.logger.Error("failed to store webhook payload",
			"delivery_id", rec.ID,
			"conversation_id", rec.ConversationID,
			"error", err,
		)
		h.respondError(w, http.StatusInternalServerError, "failed to store payload")
		return
	}

	// Log the digest, never the body.
	h.logger.Info("webhook payload stored",
		"delivery_id", rec.ID,
		"type", rec.Type,
		"conversation_id", rec.ConversationID,
		"event_timestamp", rec.EventTimestamp,
		"digest", rec.Digest,
	)

	h.extractAudio(env)

	h.respondJSON(w, http.StatusOK, AckResponse{OK: true})
}

// extractAudio writes the embedded audio of a post_call_audio payload as
// a convenience artifact. Failures are logged and swallowed; the webhook
// was already acknowledged by persisting the payload itself.
func (h *Handler) extractAudio(env *payload.Envelope) {
	if env.Type != payload.TypePostCallAudio {
		return
	}
	if env.Data.FullAudio == "" {
		h.logger.Debug("audio payload carries no full_audio field",
			"conversation_id", env.Data.ConversationID)
		return
	}

	audio, err := base64.StdEncoding.DecodeString(env.Data.FullAudio)
	if err != nil {
		h.logger.Warn("failed to decode full_audio",
			"conversation_id", env.Data.ConversationID,
			"error", err,
		)
		return
	}

	path, err := store.WriteAudio(h.config.AudioDir, env.Data.ConversationID, audio)
	if err != nil {
		h.logger.Warn("failed to write audio artifact",
			"conversation_id", env.Data.ConversationID,
			"error", err,
		)
		return
	}

	h.logger.Info("saved audio artifact",
		"conversation_id", env.Data.ConversationID,
		"path", path,
		"bytes", len(audio),
	)
}

// respondJSON sends a JSON response.
func (h *Handler) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// respondError sends a JSON error response.
func (h *Handler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, ErrorResponse{Error: message})
}
