package dedupe

import (
	"context"
	"time"

	"github.com/Lamplight-Studio/idea-print-agent/internal/domain"
)

// Status is the lifecycle state of a claimed request id.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusSucceeded  Status = "succeeded"
	StatusFailed     Status = "failed"
)

// Outcome is the result of attempting to claim a request id.
type Outcome struct {
	// Fresh is true when this caller inserted the record and owns the print.
	// Exactly one concurrent caller per request id observes Fresh.
	Fresh bool

	// Prior is the state of the existing record when Fresh is false:
	// StatusInProgress when the original request is still in flight,
	// StatusSucceeded when it already printed. StatusFailed never blocks
	// a caller; Begin re-claims failed records.
	Prior Status
}

// Record is the persisted claim for one request id.
type Record struct {
	RequestID domain.RequestID
	Status    Status
	CreatedAt time.Time
}

// Store persists request-id claims so a retried request cannot reach the
// printer twice.
//
// Begin must be atomic with respect to concurrent callers sharing a request
// id; the atomicity has to live in the storage layer (a primary-key insert),
// not in process-local locks, because the store may outlive the process and
// be shared between processes.
//
// A record left in_progress by a crash between Begin and Complete is not
// reclaimed automatically; see PruneBefore for the operator-driven cleanup.
type Store interface {
	// Begin claims id, inserting an in_progress record if none exists.
	// A record whose prior attempt failed is re-claimed: the retry
	// observes Fresh and may reach the printer, since the failed attempt
	// never produced a physical print.
	Begin(ctx context.Context, id domain.RequestID) (Outcome, error)

	// Complete moves an in_progress record to a terminal status. It is a
	// no-op when the record does not exist, so a crash/restart between
	// Begin and Complete cannot turn a later Complete into an error.
	Complete(ctx context.Context, id domain.RequestID, status Status) error

	// PruneBefore deletes records created before cutoff and reports how
	// many were removed. Never invoked automatically.
	PruneBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
