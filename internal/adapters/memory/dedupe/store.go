package dedupe

import (
	"context"
	"sync"
	"time"

	"github.com/Lamplight-Studio/idea-print-agent/internal/domain"
	dedupeport "github.com/Lamplight-Studio/idea-print-agent/internal/ports/out/dedupe"
)

// Store is an in-memory implementation of dedupe.Store.
// It is safe for concurrent use but does not survive restarts; use it for
// tests and dev, never when duplicate suppression actually matters.
type Store struct {
	mu  sync.Mutex
	m   map[domain.RequestID]dedupeport.Record
	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		m:   make(map[domain.RequestID]dedupeport.Record),
		now: func() time.Time { return time.Now().UTC() },
	}
}

// NewStoreWithClock fixes record timestamps for deterministic tests.
func NewStoreWithClock(now func() time.Time) *Store {
	s := NewStore()
	s.now = now
	return s
}

func (s *Store) Begin(ctx context.Context, id domain.RequestID) (dedupeport.Outcome, error) {
	_ = ctx
	if id == "" {
		return dedupeport.Outcome{}, dedupeport.ErrEmptyRequestID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if rec, ok := s.m[id]; ok {
		if rec.Status != dedupeport.StatusFailed {
			return dedupeport.Outcome{Prior: rec.Status}, nil
		}
		// Failed attempts never printed; the retry re-claims the id.
	}
	s.m[id] = dedupeport.Record{
		RequestID: id,
		Status:    dedupeport.StatusInProgress,
		CreatedAt: s.now(),
	}
	return dedupeport.Outcome{Fresh: true}, nil
}

func (s *Store) Complete(ctx context.Context, id domain.RequestID, status dedupeport.Status) error {
	_ = ctx
	if status != dedupeport.StatusSucceeded && status != dedupeport.StatusFailed {
		return dedupeport.ErrInvalidStatus
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.m[id]
	if !ok {
		// Tolerate a restart between Begin and Complete.
		return nil
	}
	rec.Status = status
	s.m[id] = rec
	return nil
}

func (s *Store) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	_ = ctx

	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, rec := range s.m {
		if rec.CreatedAt.Before(cutoff) {
			delete(s.m, id)
			n++
		}
	}
	return n, nil
}
