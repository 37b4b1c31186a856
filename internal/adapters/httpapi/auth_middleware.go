package httpapi

import (
	"bytes"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/Lamplight-Studio/idea-print-agent/internal/platform/auth/hmacverifier"
	clockport "github.com/Lamplight-Studio/idea-print-agent/internal/ports/out/clock"
)

// Request headers carrying the authentication material.
const (
	HeaderTimestamp = "X-Timestamp"
	HeaderSignature = "X-Signature"
)

// maxBodyBytes bounds the body read during verification. Generous relative
// to the idea-text limit; the handler enforces field-level limits after.
const maxBodyBytes = 1 << 20

// NewAuthMiddleware verifies the HMAC signature and timestamp freshness of
// every request before it reaches a handler. The signature covers the raw
// body bytes, so the middleware reads the body and restores it for the
// handler.
//
// /health is deliberately unauthenticated (used for infra checks).
func NewAuthMiddleware(v *hmacverifier.Verifier, clk clockport.Clock, log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/health" {
				next.ServeHTTP(w, r)
				return
			}

			if !v.Enabled() {
				// Operator opted out of authentication; warn so the state
				// is visible in logs, then pass through.
				log.Warn().Msg("HMAC secret not configured; request accepted without authentication")
				next.ServeHTTP(w, r)
				return
			}

			body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
			if err != nil {
				writeError(w, r, http.StatusBadRequest, "MALFORMED_BODY", "unable to read request body", nil)
				return
			}
			if len(body) > maxBodyBytes {
				writeError(w, r, http.StatusBadRequest, "MALFORMED_BODY", "request body too large", nil)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			res := v.Verify(r.Header.Get(HeaderTimestamp), r.Header.Get(HeaderSignature), body, clk.Now())
			if !res.Valid {
				// The reason is safe to log and return; the presented
				// signature value is neither.
				log.Warn().Str("reason", string(res.Reason)).Str("detail", res.Detail).Msg("authentication failed")
				writeError(w, r, http.StatusUnauthorized, string(res.Reason), res.Detail, nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
