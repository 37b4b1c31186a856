// Package printjob orchestrates one print request end to end: validation,
// duplicate suppression, rendering, and the serialized transport write.
package printjob

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Lamplight-Studio/idea-print-agent/internal/domain"
	"github.com/Lamplight-Studio/idea-print-agent/internal/escpos"
	dedupeport "github.com/Lamplight-Studio/idea-print-agent/internal/ports/out/dedupe"
	printerport "github.com/Lamplight-Studio/idea-print-agent/internal/ports/out/printer"
)

type Service struct {
	transport printerport.Transport
	store     dedupeport.Store // nil disables deduplication
	profile   escpos.Profile
	log       zerolog.Logger

	// writeTimeout bounds the wait for the print permit plus the device
	// write, so stuck device I/O surfaces as a failure instead of a hang.
	writeTimeout time.Duration

	// permit serializes transport writes: the device has no notion of
	// concurrent sessions, so at most one command stream is in flight.
	permit chan struct{}

	newJobID func() string
}

// NewService wires the orchestrator. store may be nil, which disables
// deduplication entirely (every request is treated as never-seen).
func NewService(transport printerport.Transport, store dedupeport.Store, profile escpos.Profile, writeTimeout time.Duration, log zerolog.Logger) *Service {
	return &Service{
		transport:    transport,
		store:        store,
		profile:      profile,
		log:          log,
		writeTimeout: writeTimeout,
		permit:       make(chan struct{}, 1),
		newJobID:     uuid.NewString,
	}
}

// DedupeEnabled reports whether a dedupe store is wired (for /health).
func (s *Service) DedupeEnabled() bool { return s.store != nil }

// TransportKind names the active transport variant (for /health).
func (s *Service) TransportKind() printerport.Kind { return s.transport.Kind() }

// Print runs one request through the pipeline. Guarantees:
//   - validation failures have no side effects
//   - a duplicate request id never reaches the renderer or the transport
//   - the transport is written at most once per request
//   - a Fresh claim always reaches a terminal status when the process
//     survives, even on write failure
func (s *Service) Print(ctx context.Context, in Input) (Result, error) {
	jobID := s.newJobID()
	log := s.log.With().Str("job_id", jobID).Str("idea_id", in.IdeaID).Logger()

	req, err := domain.NewPrintRequest(in.IdeaText, in.IdeaID, in.RequestID)
	if err != nil {
		return Result{}, &Error{
			Status:  http.StatusBadRequest,
			Code:    "VALIDATION_ERROR",
			Message: err.Error(),
		}
	}

	// Requests without an id are independent by contract; dedupe engages
	// only when both the store and an id are present.
	claimed := false
	if s.store != nil && req.RequestID != "" {
		out, err := s.store.Begin(ctx, req.RequestID)
		if err != nil {
			// Fail closed: printing without duplicate safety could
			// double-print, which is the one thing this service exists
			// to prevent.
			log.Error().Err(err).Msg("dedupe store unavailable")
			return Result{}, &Error{
				Status:  http.StatusInternalServerError,
				Code:    "DEDUPE_UNAVAILABLE",
				Message: "duplicate-safety check failed",
			}
		}
		if !out.Fresh {
			log.Info().Str("request_id", string(req.RequestID)).Str("prior", string(out.Prior)).Msg("duplicate request suppressed")
			return Result{
				JobID:     jobID,
				IdeaID:    req.IdeaID,
				Message:   duplicateMessage(out.Prior),
				Duplicate: true,
				Prior:     out.Prior,
			}, nil
		}
		claimed = true
	}

	data := escpos.BuildReceipt(req.IdeaText, req.IdeaID, s.profile)

	if err := s.write(ctx, data); err != nil {
		log.Error().Err(err).Msg("print failed")
		if claimed {
			s.complete(req.RequestID, dedupeport.StatusFailed, log)
		}
		return Result{}, &Error{
			Status:  http.StatusInternalServerError,
			Code:    "TRANSPORT_FAILURE",
			Message: fmt.Sprintf("print failed: %v", err),
		}
	}

	if claimed {
		s.complete(req.RequestID, dedupeport.StatusSucceeded, log)
	}

	log.Info().Int("bytes", len(data)).Msg("receipt printed")
	return Result{
		JobID:   jobID,
		IdeaID:  req.IdeaID,
		Message: "Receipt printed successfully",
	}, nil
}

// write acquires the single print permit and performs the device write, both
// bounded by writeTimeout. A second request arriving mid-write waits here;
// byte streams are never interleaved.
func (s *Service) write(ctx context.Context, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, s.writeTimeout)
	defer cancel()

	select {
	case s.permit <- struct{}{}:
		defer func() { <-s.permit }()
	case <-ctx.Done():
		return fmt.Errorf("waiting for printer: %w", ctx.Err())
	}

	_, err := s.transport.Write(ctx, data)
	return err
}

// complete records the terminal status for a claimed request id. A failure
// here leaves the record in_progress permanently; that is the documented
// operational anomaly requiring manual intervention, so it is logged loudly
// but does not change the response.
func (s *Service) complete(id domain.RequestID, status dedupeport.Status, log zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.store.Complete(ctx, id, status); err != nil {
		log.Error().Err(err).
			Str("request_id", string(id)).
			Str("status", string(status)).
			Msg("dedupe record stuck in_progress; manual intervention required")
	}
}

func duplicateMessage(prior dedupeport.Status) string {
	switch prior {
	case dedupeport.StatusInProgress:
		return "Duplicate request (print in progress)"
	default:
		return "Duplicate request (already processed)"
	}
}
