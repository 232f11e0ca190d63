package webhook

import (
	"strings"
	"testing"
	"time"
)

func TestVerify(t *testing.T) {
	secret := "test-secret-key"
	body := []byte(`{"type":"post_call_transcription","data":{"conversation_id":"conv_1"}}`)
	now := time.Unix(1700000000, 0)
	digest := computeDigest(now.Unix(), body, secret)
	header := "t=1700000000,v0=" + digest

	// Flip the last hex character of the digest.
	flipped := digest[:len(digest)-1]
	if strings.HasSuffix(digest, "0") {
		flipped += "1"
	} else {
		flipped += "0"
	}

	tests := []struct {
		name      string
		body      []byte
		sigHeader string
		tsHeader  string
		secret    string
		now       time.Time
		wantErr   bool
	}{
		{
			name:      "valid combined header",
			body:      body,
			sigHeader: header,
			secret:    secret,
			now:       now,
		},
		{
			name:      "valid with whitespace between tokens",
			body:      body,
			sigHeader: " t=1700000000 , v0=" + digest + " ",
			secret:    secret,
			now:       now,
		},
		{
			name:      "unknown tokens ignored",
			body:      body,
			sigHeader: "a=b,t=1700000000,zz=9,v0=" + digest,
			secret:    secret,
			now:       now,
		},
		{
			name:      "legacy sha256 key with separate timestamp header",
			body:      body,
			sigHeader: "sha256=" + digest,
			tsHeader:  "1700000000",
			secret:    secret,
			now:       now,
		},
		{
			name:      "no digest under any key",
			body:      body,
			sigHeader: "t=1700000000",
			secret:    secret,
			now:       now,
			wantErr:   true,
		},
		{
			name:      "no timestamp anywhere",
			body:      body,
			sigHeader: "v0=" + digest,
			secret:    secret,
			now:       now,
			wantErr:   true,
		},
		{
			name:      "non-numeric timestamp",
			body:      body,
			sigHeader: "t=yesterday,v0=" + digest,
			secret:    secret,
			now:       now,
			wantErr:   true,
		},
		{
			name:      "exactly at skew limit passes",
			body:      body,
			sigHeader: header,
			secret:    secret,
			now:       now.Add(DefaultMaxSkew),
		},
		{
			name:      "one second past skew limit fails",
			body:      body,
			sigHeader: header,
			secret:    secret,
			now:       now.Add(DefaultMaxSkew + time.Second),
			wantErr:   true,
		},
		{
			name:      "timestamp too far in the future fails",
			body:      body,
			sigHeader: header,
			secret:    secret,
			now:       now.Add(-DefaultMaxSkew - time.Second),
			wantErr:   true,
		},
		{
			name:      "tampered body",
			body:      []byte(`{"type":"post_call_transcription","data":{"conversation_id":"conv_2"}}`),
			sigHeader: header,
			secret:    secret,
			now:       now,
			wantErr:   true,
		},
		{
			name:      "flipped digest byte",
			body:      body,
			sigHeader: "t=1700000000,v0=" + flipped,
			secret:    secret,
			now:       now,
			wantErr:   true,
		},
		{
			name:      "wrong secret",
			body:      body,
			sigHeader: header,
			secret:    "wrong-secret",
			now:       now,
			wantErr:   true,
		},
		{
			name:      "malformed hex digest",
			body:      body,
			sigHeader: "t=1700000000,v0=not-valid-hex",
			secret:    secret,
			now:       now,
			wantErr:   true,
		},
		{
			name:      "empty secret",
			body:      body,
			sigHeader: header,
			secret:    "",
			now:       now,
			wantErr:   true,
		},
		{
			name:    "empty signature header",
			body:    body,
			secret:  secret,
			now:     now,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Verify(tt.body, tt.sigHeader, tt.tsHeader, tt.secret, DefaultMaxSkew, tt.now)
			if (err != nil) != tt.wantErr {
				t.Errorf("Verify() error = %v, wantErr %v", err, tt.wantErr)
			}

			// All errors should be generic (no information leakage)
			if err != nil && err.Error() != "webhook verification failed" {
				t.Errorf("error should be generic, got: %v", err)
			}
		})
	}
}

func TestParseSignatureHeader(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		wantTS  string
		wantSig string
	}{
		{
			name:    "combined format",
			header:  "t=1700000000,v0=abc123",
			wantTS:  "1700000000",
			wantSig: "abc123",
		},
		{
			name:    "legacy sha256 key",
			header:  "sha256=def456",
			wantSig: "def456",
		},
		{
			name:    "v0 wins over sha256 when both present",
			header:  "sha256=aaa,v0=bbb",
			wantSig: "bbb",
		},
		{
			name:   "unknown tokens only",
			header: "foo=bar,baz=qux",
		},
		{
			name:   "empty header",
			header: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, sig := parseSignatureHeader(tt.header)
			if ts != tt.wantTS {
				t.Errorf("parseSignatureHeader() ts = %q, want %q", ts, tt.wantTS)
			}
			if sig != tt.wantSig {
				t.Errorf("parseSignatureHeader() sig = %q, want %q", sig, tt.wantSig)
			}
		})
	}
}

func TestSignRoundTrip(t *testing.T) {
	secret := "round-trip-secret"
	body := []byte(`{"type":"post_call_audio"}`)
	now := time.Unix(1700000000, 0)

	header := Sign(secret, now, body)
	if !strings.HasPrefix(header, "t=1700000000,v0=") {
		t.Fatalf("unexpected header format: %s", header)
	}

	if err := Verify(body, header, "", secret, DefaultMaxSkew, now); err != nil {
		t.Errorf("signed header should verify, got: %v", err)
	}
}

func TestComputeDigest(t *testing.T) {
	body := []byte("test payload")
	secret := "test-secret"

	sig := computeDigest(1700000000, body, secret)

	// Should return lowercase hex string
	if len(sig) != 64 { // SHA256 = 32 bytes = 64 hex chars
		t.Errorf("digest length = %d, want 64", len(sig))
	}

	// Should be deterministic
	if sig != computeDigest(1700000000, body, secret) {
		t.Error("digest should be deterministic")
	}

	// Timestamp participates in the digest
	if sig == computeDigest(1700000001, body, secret) {
		t.Error("different timestamp should produce different digest")
	}
}
