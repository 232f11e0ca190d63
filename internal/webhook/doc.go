// Package webhook implements signed webhook intake with HMAC-SHA256
// verification against a time-boxed signature.
//
// # Security Model
//
// - HMAC-SHA256 over "<timestamp>.<body>" verified with crypto/subtle
//   (constant-time comparison)
// - Signed timestamps rejected outside a configurable skew window, in
//   both directions, to defeat replay and clock manipulation
// - Every verification failure collapses to the same generic 401 so the
//   endpoint leaks nothing to a probing caller
// - Body size limits enforced to prevent DoS
// - Request logging records payload digests, never payload bodies
//
// # Request Flow
//
//  1. HTTP POST arrives at an intake path
//  2. Configured secret checked (500 if unset)
//  3. Body read under the size limit (413 if exceeded)
//  4. Signature header parsed ("t=<ts>,v0=<hex>", legacy "sha256=" key,
//     separate timestamp header fallback) and verified (401 on failure)
//  5. Body parsed as JSON (400 on failure)
//  6. Payload persisted through the configured store (500 on failure)
//  7. post_call_audio payloads get best-effort audio extraction
//  8. 200 returned with {"ok": true}
package webhook
