package domain

import (
	"fmt"
	"strings"
)

// RequestID is the caller-chosen idempotency key for a print request. Opaque:
// its format is controlled by the caller, we only bound its length.
type RequestID string

// Field length limits enforced before any side effect.
const (
	MaxIdeaTextLen  = 10000
	MaxIdeaIDLen    = 100
	MaxRequestIDLen = 100
)

// PrintRequest is a validated request to print one idea.
type PrintRequest struct {
	IdeaText  string
	IdeaID    string
	RequestID RequestID
}

// FieldError reports which request field failed validation.
type FieldError struct {
	Field string
	Msg   string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

// NewPrintRequest validates and normalizes raw request fields. Whitespace is
// trimmed before length checks; idea text must be non-empty after trimming.
// idea_id and request_id are optional.
func NewPrintRequest(ideaText, ideaID, requestID string) (PrintRequest, error) {
	ideaText = strings.TrimSpace(ideaText)
	ideaID = strings.TrimSpace(ideaID)
	requestID = strings.TrimSpace(requestID)

	if ideaText == "" {
		return PrintRequest{}, &FieldError{Field: "idea_text", Msg: "must not be empty"}
	}
	if len(ideaText) > MaxIdeaTextLen {
		return PrintRequest{}, &FieldError{Field: "idea_text", Msg: fmt.Sprintf("exceeds %d bytes", MaxIdeaTextLen)}
	}
	if len(ideaID) > MaxIdeaIDLen {
		return PrintRequest{}, &FieldError{Field: "idea_id", Msg: fmt.Sprintf("exceeds %d bytes", MaxIdeaIDLen)}
	}
	if len(requestID) > MaxRequestIDLen {
		return PrintRequest{}, &FieldError{Field: "request_id", Msg: fmt.Sprintf("exceeds %d bytes", MaxRequestIDLen)}
	}

	return PrintRequest{
		IdeaText:  ideaText,
		IdeaID:    ideaID,
		RequestID: RequestID(requestID),
	}, nil
}
