package printjob

import dedupeport "github.com/Lamplight-Studio/idea-print-agent/internal/ports/out/dedupe"

// Input carries the raw request fields into the orchestrator. Validation
// happens inside Print so every caller gets identical rules.
type Input struct {
	IdeaText  string
	IdeaID    string
	RequestID string
}

// Result describes a terminal outcome of one print request. Exactly one
// Result (or one error) is produced per request.
type Result struct {
	// JobID correlates log lines for this request.
	JobID string

	IdeaID  string
	Message string

	// Duplicate is true when the request id was seen before; Prior then
	// holds the state the earlier request reached. No render or transport
	// write happened for a duplicate.
	Duplicate bool
	Prior     dedupeport.Status
}
