package dedupe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Lamplight-Studio/idea-print-agent/internal/domain"
	dedupeport "github.com/Lamplight-Studio/idea-print-agent/internal/ports/out/dedupe"
)

// Store is a Postgres implementation of dedupe.Store.
type Store struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, now: func() time.Time { return time.Now().UTC() }}
}

// Migrate applies the dedupe schema. Idempotent.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS dedupe_records (
			request_id TEXT PRIMARY KEY,
			status     TEXT NOT NULL,
			created_at BIGINT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("apply dedupe schema: %w", err)
	}
	_, err = pool.Exec(ctx, `
		CREATE INDEX IF NOT EXISTS idx_dedupe_created_at
			ON dedupe_records(created_at)
	`)
	if err != nil {
		return fmt.Errorf("apply dedupe index: %w", err)
	}
	return nil
}

func (s *Store) Begin(ctx context.Context, id domain.RequestID) (dedupeport.Outcome, error) {
	if s.pool == nil {
		return dedupeport.Outcome{}, errors.New("nil postgres pool")
	}
	if id == "" {
		return dedupeport.Outcome{}, dedupeport.ErrEmptyRequestID
	}

	// ON CONFLICT DO NOTHING makes the primary key the claim; the command
	// tag tells us whether this caller won.
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO dedupe_records (request_id, status, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (request_id) DO NOTHING
	`, string(id), string(dedupeport.StatusInProgress), s.now().Unix())
	if err != nil {
		return dedupeport.Outcome{}, fmt.Errorf("claim request id: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return dedupeport.Outcome{Fresh: true}, nil
	}

	// Failed prior attempts never printed; the status-guarded UPDATE lets
	// exactly one retry re-claim the id.
	tag, err = s.pool.Exec(ctx, `
		UPDATE dedupe_records SET status = $1, created_at = $2
		WHERE request_id = $3 AND status = $4
	`, string(dedupeport.StatusInProgress), s.now().Unix(), string(id), string(dedupeport.StatusFailed))
	if err != nil {
		return dedupeport.Outcome{}, fmt.Errorf("reclaim request id: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return dedupeport.Outcome{Fresh: true}, nil
	}

	var status string
	row := s.pool.QueryRow(ctx, `
		SELECT status FROM dedupe_records WHERE request_id = $1
	`, string(id))
	if err := row.Scan(&status); err != nil {
		return dedupeport.Outcome{}, fmt.Errorf("read prior claim: %w", err)
	}
	return dedupeport.Outcome{Prior: dedupeport.Status(status)}, nil
}

func (s *Store) Complete(ctx context.Context, id domain.RequestID, status dedupeport.Status) error {
	if s.pool == nil {
		return errors.New("nil postgres pool")
	}
	if status != dedupeport.StatusSucceeded && status != dedupeport.StatusFailed {
		return dedupeport.ErrInvalidStatus
	}

	_, err := s.pool.Exec(ctx, `
		UPDATE dedupe_records SET status = $1
		WHERE request_id = $2 AND status = $3
	`, string(status), string(id), string(dedupeport.StatusInProgress))
	if err != nil {
		return fmt.Errorf("complete request id: %w", err)
	}
	return nil
}

func (s *Store) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if s.pool == nil {
		return 0, errors.New("nil postgres pool")
	}
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM dedupe_records WHERE created_at < $1
	`, cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("prune dedupe records: %w", err)
	}
	return tag.RowsAffected(), nil
}
