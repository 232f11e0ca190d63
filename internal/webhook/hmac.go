package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultMaxSkew bounds how far a signed timestamp may drift from the
// server clock, in either direction.
const DefaultMaxSkew = 30 * time.Minute

// errVerificationFailed is the only error Verify ever returns. Missing
// secrets, stale timestamps, malformed hex and digest mismatches all
// collapse to it so the endpoint cannot be probed for its internals.
var errVerificationFailed = errors.New("webhook verification failed")

// Verify validates an HMAC-SHA256 signed webhook request.
//
// The signature header is a comma-separated list of key=value tokens:
//   - "t"      signed timestamp, decimal seconds since epoch
//   - "v0"     signature digest, lowercase hex
//   - "sha256" legacy alias for the digest
//
// Unknown tokens are ignored. If the header carries no "t" token, the
// separate timestamp header is used instead. The digest is computed over
// "<timestamp>.<body>" and compared with crypto/subtle.
func Verify(body []byte, sigHeader, tsHeader, secret string, maxSkew time.Duration, now time.Time) error {
	if secret == "" {
		return errVerificationFailed
	}

	ts, sig := parseSignatureHeader(sigHeader)
	if ts == "" {
		ts = strings.TrimSpace(tsHeader)
	}
	if sig == "" {
		return errVerificationFailed
	}

	tsInt, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return errVerificationFailed
	}

	skew := now.Unix() - tsInt
	if skew < 0 {
		skew = -skew
	}
	if skew > int64(maxSkew/time.Second) {
		return errVerificationFailed
	}

	expectedMAC, err := hex.DecodeString(computeDigest(tsInt, body, secret))
	if err != nil {
		return errVerificationFailed
	}
	actualMAC, err := hex.DecodeString(sig)
	if err != nil {
		return errVerificationFailed
	}

	// Constant-time comparison to prevent timing attacks.
	if subtle.ConstantTimeCompare(expectedMAC, actualMAC) != 1 {
		return errVerificationFailed
	}

	return nil
}

// parseSignatureHeader extracts the timestamp and digest tokens from a
// combined "t=<ts>,v0=<hex>" header. Either value may be empty.
func parseSignatureHeader(header string) (ts, sig string) {
	for _, part := range strings.Split(header, ",") {
		part = strings.TrimSpace(part)
		switch {
		case strings.HasPrefix(part, "t="):
			ts = strings.TrimPrefix(part, "t=")
		case strings.HasPrefix(part, "v0="):
			sig = strings.TrimPrefix(part, "v0=")
		case strings.HasPrefix(part, "sha256="):
			// Legacy digest key, kept for providers that still send it.
			sig = strings.TrimPrefix(part, "sha256=")
		}
	}
	return ts, sig
}

// computeDigest returns the hex HMAC-SHA256 of "<ts>.<body>" keyed by secret.
func computeDigest(ts int64, body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", ts)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Sign produces a combined signature header for body at the given time.
// Used by the sign subcommand and by tests.
func Sign(secret string, ts time.Time, body []byte) string {
	return fmt.Sprintf("t=%d,v0=%s", ts.Unix(), computeDigest(ts.Unix(), body, secret))
}
