// Package contracttest holds behavioral suites that every adapter of a port
// must pass, so swapping the persistence backend cannot change semantics.
package contracttest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Lamplight-Studio/idea-print-agent/internal/domain"
	dedupeport "github.com/Lamplight-Studio/idea-print-agent/internal/ports/out/dedupe"
)

type CleanupFunc = func()

type DedupeStoreFactory func(t *testing.T) (dedupeport.Store, CleanupFunc)

// RunDedupeStore exercises the full dedupe.Store contract against one adapter.
func RunDedupeStore(t *testing.T, newStore DedupeStoreFactory) {
	t.Helper()
	ctx := context.Background()

	store, cleanup := newStore(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	// First sight of an id claims it.
	out, err := store.Begin(ctx, "req-1")
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if !out.Fresh {
		t.Fatalf("first Begin not Fresh: %+v", out)
	}

	// Second sight while in flight reports the in-progress claim.
	out, err = store.Begin(ctx, "req-1")
	if err != nil {
		t.Fatalf("Begin duplicate: %v", err)
	}
	if out.Fresh || out.Prior != dedupeport.StatusInProgress {
		t.Fatalf("duplicate Begin = %+v, want InProgress", out)
	}

	// Terminal transition is visible to later callers.
	if err := store.Complete(ctx, "req-1", dedupeport.StatusSucceeded); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	out, err = store.Begin(ctx, "req-1")
	if err != nil {
		t.Fatalf("Begin after Complete: %v", err)
	}
	if out.Fresh || out.Prior != dedupeport.StatusSucceeded {
		t.Fatalf("Begin after Complete = %+v, want Completed(succeeded)", out)
	}

	// A failed attempt never printed, so a retry re-claims the id.
	if out, err = store.Begin(ctx, "req-2"); err != nil || !out.Fresh {
		t.Fatalf("Begin req-2 = %+v err=%v", out, err)
	}
	if err := store.Complete(ctx, "req-2", dedupeport.StatusFailed); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	out, err = store.Begin(ctx, "req-2")
	if err != nil || !out.Fresh {
		t.Fatalf("Begin after failure = %+v err=%v, want re-claimed Fresh", out, err)
	}

	// The re-claim is exclusive: the id is back in flight.
	out, err = store.Begin(ctx, "req-2")
	if err != nil || out.Fresh || out.Prior != dedupeport.StatusInProgress {
		t.Fatalf("Begin during retry = %+v err=%v, want InProgress", out, err)
	}
	if err := store.Complete(ctx, "req-2", dedupeport.StatusSucceeded); err != nil {
		t.Fatalf("Complete retry: %v", err)
	}
	out, err = store.Begin(ctx, "req-2")
	if err != nil || out.Fresh || out.Prior != dedupeport.StatusSucceeded {
		t.Fatalf("Begin after retry success = %+v err=%v, want Completed(succeeded)", out, err)
	}

	// Completing an unknown id is a defensive no-op.
	if err := store.Complete(ctx, "never-begun", dedupeport.StatusSucceeded); err != nil {
		t.Fatalf("Complete unknown id: %v", err)
	}

	// Non-terminal Complete is rejected.
	if err := store.Complete(ctx, "req-1", dedupeport.StatusInProgress); err != dedupeport.ErrInvalidStatus {
		t.Fatalf("Complete(in_progress) err=%v, want ErrInvalidStatus", err)
	}

	// Empty ids never reach a record.
	if _, err := store.Begin(ctx, ""); err != dedupeport.ErrEmptyRequestID {
		t.Fatalf("Begin(\"\") err=%v, want ErrEmptyRequestID", err)
	}
}

// RunDedupeStoreConcurrency checks the single-Fresh-winner guarantee under
// racing callers sharing one request id.
func RunDedupeStoreConcurrency(t *testing.T, newStore DedupeStoreFactory) {
	t.Helper()
	ctx := context.Background()

	store, cleanup := newStore(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	const callers = 16
	id := domain.RequestID("race-1")

	var wg sync.WaitGroup
	fresh := make(chan struct{}, callers)
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := store.Begin(ctx, id)
			if err != nil {
				errs <- err
				return
			}
			if out.Fresh {
				fresh <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(fresh)
	close(errs)

	for err := range errs {
		t.Fatalf("concurrent Begin: %v", err)
	}
	if n := len(fresh); n != 1 {
		t.Fatalf("%d callers observed Fresh, want exactly 1", n)
	}
}

// RunDedupeStorePrune checks the operator-driven cleanup path.
func RunDedupeStorePrune(t *testing.T, newStore DedupeStoreFactory) {
	t.Helper()
	ctx := context.Background()

	store, cleanup := newStore(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	for i := 0; i < 3; i++ {
		id := domain.RequestID(fmt.Sprintf("prune-%d", i))
		if out, err := store.Begin(ctx, id); err != nil || !out.Fresh {
			t.Fatalf("Begin %s = %+v err=%v", id, out, err)
		}
		if err := store.Complete(ctx, id, dedupeport.StatusSucceeded); err != nil {
			t.Fatalf("Complete %s: %v", id, err)
		}
	}

	// A cutoff in the past removes nothing.
	n, err := store.PruneBefore(ctx, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("PruneBefore(past): %v", err)
	}
	if n != 0 {
		t.Fatalf("PruneBefore(past) removed %d records, want 0", n)
	}

	// A future cutoff removes everything, and the ids become claimable again.
	n, err = store.PruneBefore(ctx, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("PruneBefore(future): %v", err)
	}
	if n != 3 {
		t.Fatalf("PruneBefore(future) removed %d records, want 3", n)
	}
	if out, err := store.Begin(ctx, "prune-0"); err != nil || !out.Fresh {
		t.Fatalf("Begin after prune = %+v err=%v, want Fresh", out, err)
	}
}
