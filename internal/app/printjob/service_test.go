package printjob

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	memdedupe "github.com/Lamplight-Studio/idea-print-agent/internal/adapters/memory/dedupe"
	"github.com/Lamplight-Studio/idea-print-agent/internal/domain"
	"github.com/Lamplight-Studio/idea-print-agent/internal/escpos"
	dedupeport "github.com/Lamplight-Studio/idea-print-agent/internal/ports/out/dedupe"
	printerport "github.com/Lamplight-Studio/idea-print-agent/internal/ports/out/printer"
)

// fakeTransport records writes and can be told to fail or stall.
type fakeTransport struct {
	mu     sync.Mutex
	writes [][]byte

	failWith error
	stall    time.Duration
}

func (f *fakeTransport) Kind() printerport.Kind         { return printerport.KindFile }
func (f *fakeTransport) Open(ctx context.Context) error { return nil }
func (f *fakeTransport) Close() error                   { return nil }

func (f *fakeTransport) Write(ctx context.Context, data []byte) (int, error) {
	if f.stall > 0 {
		select {
		case <-time.After(f.stall):
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
	if f.failWith != nil {
		return 0, f.failWith
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = append(f.writes, append([]byte(nil), data...))
	return len(data), nil
}

func (f *fakeTransport) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.writes)
}

// failingStore simulates an unavailable persistence substrate.
type failingStore struct{}

func (failingStore) Begin(context.Context, domain.RequestID) (dedupeport.Outcome, error) {
	return dedupeport.Outcome{}, errors.New("store down")
}
func (failingStore) Complete(context.Context, domain.RequestID, dedupeport.Status) error {
	return errors.New("store down")
}
func (failingStore) PruneBefore(context.Context, time.Time) (int64, error) {
	return 0, errors.New("store down")
}

func newService(tr printerport.Transport, store dedupeport.Store) *Service {
	return NewService(tr, store, escpos.DefaultProfile(), time.Second, zerolog.Nop())
}

func TestPrint_Success(t *testing.T) {
	t.Parallel()

	tr := &fakeTransport{}
	svc := newService(tr, nil)

	res, err := svc.Print(context.Background(), Input{IdeaText: "hello", IdeaID: "idea-1"})
	if err != nil {
		t.Fatalf("Print: %v", err)
	}
	if res.Duplicate || res.IdeaID != "idea-1" || res.Message != "Receipt printed successfully" {
		t.Fatalf("Result = %+v", res)
	}
	if res.JobID == "" {
		t.Fatalf("missing job id")
	}
	if tr.writeCount() != 1 {
		t.Fatalf("transport written %d times, want 1", tr.writeCount())
	}

	got := tr.writes[0]
	if !bytes.HasPrefix(got, escpos.Init) || !bytes.HasSuffix(got, escpos.CutFull) {
		t.Fatalf("written stream not framed: % x ... % x", got[:2], got[len(got)-3:])
	}
}

func TestPrint_EmptyTextRejectedWithoutSideEffects(t *testing.T) {
	t.Parallel()

	tr := &fakeTransport{}
	store := memdedupe.NewStore()
	svc := newService(tr, store)

	_, err := svc.Print(context.Background(), Input{IdeaText: "   \n  ", RequestID: "req-1"})
	var ae *Error
	if !errors.As(err, &ae) || ae.Status != http.StatusBadRequest || ae.Code != "VALIDATION_ERROR" {
		t.Fatalf("err = %v, want 400 VALIDATION_ERROR", err)
	}
	if tr.writeCount() != 0 {
		t.Fatalf("transport touched on validation failure")
	}

	// The request id must not have been claimed.
	out, err := store.Begin(context.Background(), "req-1")
	if err != nil || !out.Fresh {
		t.Fatalf("request id was claimed despite rejection: %+v err=%v", out, err)
	}
}

func TestPrint_OversizedTextRejected(t *testing.T) {
	t.Parallel()

	svc := newService(&fakeTransport{}, nil)
	_, err := svc.Print(context.Background(), Input{IdeaText: strings.Repeat("a", domain.MaxIdeaTextLen+1)})
	var ae *Error
	if !errors.As(err, &ae) || ae.Status != http.StatusBadRequest {
		t.Fatalf("err = %v, want 400", err)
	}
}

func TestPrint_SequentialDuplicateSuppressed(t *testing.T) {
	t.Parallel()

	tr := &fakeTransport{}
	svc := newService(tr, memdedupe.NewStore())
	ctx := context.Background()
	in := Input{IdeaText: "hello", RequestID: "X"}

	first, err := svc.Print(ctx, in)
	if err != nil {
		t.Fatalf("first Print: %v", err)
	}
	if first.Duplicate {
		t.Fatalf("first Print reported duplicate")
	}

	second, err := svc.Print(ctx, in)
	if err != nil {
		t.Fatalf("second Print: %v", err)
	}
	if !second.Duplicate || second.Prior != dedupeport.StatusSucceeded {
		t.Fatalf("second Print = %+v, want duplicate of succeeded", second)
	}
	if tr.writeCount() != 1 {
		t.Fatalf("transport written %d times, want 1", tr.writeCount())
	}
}

func TestPrint_ConcurrentDuplicatesWriteOnce(t *testing.T) {
	t.Parallel()

	tr := &fakeTransport{}
	svc := newService(tr, memdedupe.NewStore())
	in := Input{IdeaText: "hello", RequestID: "race"}

	const callers = 8
	var wg sync.WaitGroup
	results := make(chan Result, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := svc.Print(context.Background(), in)
			if err != nil {
				t.Errorf("Print: %v", err)
				return
			}
			results <- res
		}()
	}
	wg.Wait()
	close(results)

	if tr.writeCount() != 1 {
		t.Fatalf("transport written %d times, want exactly 1", tr.writeCount())
	}
	originals := 0
	for res := range results {
		if !res.Duplicate {
			originals++
		}
	}
	if originals != 1 {
		t.Fatalf("%d callers got the original response, want exactly 1", originals)
	}
}

func TestPrint_NoRequestIDBypassesDedupe(t *testing.T) {
	t.Parallel()

	tr := &fakeTransport{}
	svc := newService(tr, memdedupe.NewStore())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		res, err := svc.Print(ctx, Input{IdeaText: "hello"})
		if err != nil {
			t.Fatalf("Print #%d: %v", i, err)
		}
		if res.Duplicate {
			t.Fatalf("Print #%d reported duplicate without a request id", i)
		}
	}
	if tr.writeCount() != 2 {
		t.Fatalf("transport written %d times, want 2", tr.writeCount())
	}
}

func TestPrint_StoreFailureFailsClosed(t *testing.T) {
	t.Parallel()

	tr := &fakeTransport{}
	svc := newService(tr, failingStore{})

	_, err := svc.Print(context.Background(), Input{IdeaText: "hello", RequestID: "r"})
	var ae *Error
	if !errors.As(err, &ae) || ae.Status != http.StatusInternalServerError || ae.Code != "DEDUPE_UNAVAILABLE" {
		t.Fatalf("err = %v, want 500 DEDUPE_UNAVAILABLE", err)
	}
	if tr.writeCount() != 0 {
		t.Fatalf("printed despite dedupe store failure")
	}
}

func TestPrint_WriteFailureMarksFailedAndAllowsRetry(t *testing.T) {
	t.Parallel()

	tr := &fakeTransport{failWith: errors.New("paper jam")}
	store := memdedupe.NewStore()
	svc := newService(tr, store)
	ctx := context.Background()
	in := Input{IdeaText: "hello", RequestID: "retry-me"}

	_, err := svc.Print(ctx, in)
	var ae *Error
	if !errors.As(err, &ae) || ae.Code != "TRANSPORT_FAILURE" {
		t.Fatalf("err = %v, want TRANSPORT_FAILURE", err)
	}

	// The claim must have reached a terminal status so the retry can run.
	tr.failWith = nil
	res, err := svc.Print(ctx, in)
	if err != nil {
		t.Fatalf("retry Print: %v", err)
	}
	if res.Duplicate {
		t.Fatalf("retry after failure was suppressed: %+v", res)
	}
	if tr.writeCount() != 1 {
		t.Fatalf("transport written %d times, want 1 (failed attempt wrote nothing)", tr.writeCount())
	}
}

func TestPrint_StuckWriteSurfacesAsFailure(t *testing.T) {
	t.Parallel()

	tr := &fakeTransport{stall: time.Minute}
	svc := NewService(tr, nil, escpos.DefaultProfile(), 50*time.Millisecond, zerolog.Nop())

	start := time.Now()
	_, err := svc.Print(context.Background(), Input{IdeaText: "hello"})
	var ae *Error
	if !errors.As(err, &ae) || ae.Code != "TRANSPORT_FAILURE" {
		t.Fatalf("err = %v, want TRANSPORT_FAILURE", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("stuck write blocked for %v", elapsed)
	}
}
