package main

import (
	"encoding/hex"
	"testing"
	"time"

	"github.com/voxgate/voxgate/internal/webhook"
)

func TestGenerateSecret(t *testing.T) {
	s1, err := generateSecret()
	if err != nil {
		t.Fatalf("generateSecret() error = %v", err)
	}
	if len(s1) != 64 {
		t.Errorf("secret length = %d, want 64 hex chars", len(s1))
	}
	if _, err := hex.DecodeString(s1); err != nil {
		t.Errorf("secret is not valid hex: %v", err)
	}

	s2, err := generateSecret()
	if err != nil {
		t.Fatalf("generateSecret() error = %v", err)
	}
	if s1 == s2 {
		t.Error("two generated secrets should differ")
	}
}

func TestSignedHeaderVerifies(t *testing.T) {
	secret := "cli-secret"
	body := []byte(`{"type":"post_call_transcription","data":{}}`)
	now := time.Unix(1700000000, 0)

	header := webhook.Sign(secret, now, body)
	if err := webhook.Verify(body, header, "", secret, webhook.DefaultMaxSkew, now); err != nil {
		t.Errorf("sign output should verify, got: %v", err)
	}
}
