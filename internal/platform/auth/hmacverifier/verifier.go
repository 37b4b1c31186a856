// Package hmacverifier authenticates print requests via an HMAC-SHA256
// signature over the request timestamp and raw body.
//
// The signed message is the literal decimal timestamp string concatenated
// with the raw body bytes, no separator. The signature travels as lowercase
// hex in X-Signature, the timestamp as decimal Unix seconds in X-Timestamp.
package hmacverifier

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"
)

// Reason classifies a verification outcome.
type Reason string

const (
	ReasonOK                 Reason = "ok"
	ReasonNoSecretConfigured Reason = "no_secret_configured"
	ReasonMissingHeader      Reason = "missing_header"
	ReasonStaleTimestamp     Reason = "stale_timestamp"
	ReasonFutureTimestamp    Reason = "future_timestamp"
	ReasonBadSignature       Reason = "bad_signature"
)

// Result is the outcome of verifying one request. Recomputed per request,
// never cached.
type Result struct {
	Valid  bool
	Reason Reason

	// Detail is a human-readable explanation safe to log and to return to
	// the caller. It never contains the secret or the presented signature.
	Detail string
}

// Verifier checks request signatures against a shared secret.
// A Verifier with no secret accepts everything (operator opt-out).
type Verifier struct {
	secret []byte
	window time.Duration
}

// New constructs a Verifier. A nil or empty secret disables authentication;
// window bounds the allowed skew between the request timestamp and now.
func New(secret []byte, window time.Duration) *Verifier {
	return &Verifier{secret: secret, window: window}
}

// Enabled reports whether a secret is configured.
func (v *Verifier) Enabled() bool { return len(v.secret) > 0 }

// Verify checks the timestamp freshness and signature of one request.
// Pure: no side effects, no clock access (now is injected).
func (v *Verifier) Verify(timestampHeader, signatureHeader string, body []byte, now time.Time) Result {
	if !v.Enabled() {
		return Result{Valid: true, Reason: ReasonNoSecretConfigured, Detail: "authentication disabled"}
	}

	if timestampHeader == "" {
		return Result{Reason: ReasonMissingHeader, Detail: "missing X-Timestamp header"}
	}
	if signatureHeader == "" {
		return Result{Reason: ReasonMissingHeader, Detail: "missing X-Signature header"}
	}

	ts, err := strconv.ParseInt(timestampHeader, 10, 64)
	if err != nil {
		// Malformed timestamps are treated like forged signatures rather
		// than getting their own reason: the header is attacker-controlled.
		return Result{Reason: ReasonBadSignature, Detail: "invalid timestamp format"}
	}

	windowSec := int64(v.window / time.Second)
	delta := now.Unix() - ts
	if delta > windowSec {
		return Result{
			Reason: ReasonStaleTimestamp,
			Detail: fmt.Sprintf("timestamp too old: %ds > %ds", delta, windowSec),
		}
	}
	if -delta > windowSec {
		return Result{
			Reason: ReasonFutureTimestamp,
			Detail: fmt.Sprintf("timestamp too far ahead: %ds > %ds", -delta, windowSec),
		}
	}

	expected := Sign(v.secret, timestampHeader, body)
	if !hmac.Equal([]byte(signatureHeader), []byte(expected)) {
		return Result{Reason: ReasonBadSignature, Detail: "invalid signature"}
	}

	return Result{Valid: true, Reason: ReasonOK, Detail: "ok"}
}

// Sign computes the lowercase-hex HMAC-SHA256 signature for a timestamp
// string and body. Shared by the verifier, the dev signer tool, and tests.
func Sign(secret []byte, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(timestamp))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// SignAt is a convenience for callers holding a numeric timestamp.
func SignAt(secret []byte, ts int64, body []byte) string {
	return Sign(secret, strconv.FormatInt(ts, 10), body)
}
