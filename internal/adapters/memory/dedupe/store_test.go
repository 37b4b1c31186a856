package dedupe

import (
	"context"
	"testing"
	"time"

	dedupeport "github.com/Lamplight-Studio/idea-print-agent/internal/ports/out/dedupe"
)

func TestStore_RecordTimestamps(t *testing.T) {
	t.Parallel()

	fixed := time.Unix(1700000000, 0).UTC()
	s := NewStoreWithClock(func() time.Time { return fixed })
	ctx := context.Background()

	if _, err := s.Begin(ctx, "r1"); err != nil {
		t.Fatalf("Begin: %v", err)
	}

	// Records created at the fixed instant are not before it.
	n, err := s.PruneBefore(ctx, fixed)
	if err != nil {
		t.Fatalf("PruneBefore: %v", err)
	}
	if n != 0 {
		t.Fatalf("pruned %d records at exact cutoff, want 0", n)
	}

	n, err = s.PruneBefore(ctx, fixed.Add(time.Second))
	if err != nil {
		t.Fatalf("PruneBefore: %v", err)
	}
	if n != 1 {
		t.Fatalf("pruned %d records, want 1", n)
	}
}

func TestStore_CompleteIsTerminalOnly(t *testing.T) {
	t.Parallel()

	s := NewStore()
	ctx := context.Background()

	if _, err := s.Begin(ctx, "r1"); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := s.Complete(ctx, "r1", dedupeport.StatusInProgress); err != dedupeport.ErrInvalidStatus {
		t.Fatalf("Complete(in_progress) err=%v", err)
	}
	if err := s.Complete(ctx, "r1", dedupeport.StatusSucceeded); err != nil {
		t.Fatalf("Complete(succeeded): %v", err)
	}

	out, err := s.Begin(ctx, "r1")
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if out.Fresh || out.Prior != dedupeport.StatusSucceeded {
		t.Fatalf("Begin = %+v, want Completed(succeeded)", out)
	}
}
