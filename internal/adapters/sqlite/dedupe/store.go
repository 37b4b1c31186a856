// Package dedupe implements the dedupe store on SQLite.
//
// This is the default persistence for a single-host print agent: one file
// next to the process, claims enforced by the primary key, correct across
// restarts and across multiple agent processes sharing the file.
package dedupe

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "embed"

	"github.com/mattn/go-sqlite3"

	"github.com/Lamplight-Studio/idea-print-agent/internal/domain"
	dedupeport "github.com/Lamplight-Studio/idea-print-agent/internal/ports/out/dedupe"
)

//go:embed schema.sql
var schemaSQL string

// Store is a SQLite implementation of dedupe.Store.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open creates or opens the dedupe database at path and applies the schema.
// Idempotent; safe to call on an existing database.
//
// The connection is configured with WAL mode, a busy timeout for lock
// contention, and a single writer connection (SQLite allows one writer at a
// time; a second connection would only turn waits into SQLITE_BUSY errors).
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open dedupe db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect dedupe db: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply dedupe schema: %w", err)
	}

	return &Store{db: db, now: func() time.Time { return time.Now().UTC() }}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Begin(ctx context.Context, id domain.RequestID) (dedupeport.Outcome, error) {
	if id == "" {
		return dedupeport.Outcome{}, dedupeport.ErrEmptyRequestID
	}

	// The primary key is the claim: the insert either wins or collides.
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO dedupe_records (request_id, status, created_at)
		VALUES (?, ?, ?)
	`, string(id), string(dedupeport.StatusInProgress), s.now().Unix())
	if err == nil {
		return dedupeport.Outcome{Fresh: true}, nil
	}
	if !isUniqueViolation(err) {
		return dedupeport.Outcome{}, fmt.Errorf("claim request id: %w", err)
	}

	// The id was seen before. A failed prior attempt never printed, so a
	// retry re-claims it; the UPDATE's status guard keeps the re-claim
	// atomic under concurrent retries.
	res, err := s.db.ExecContext(ctx, `
		UPDATE dedupe_records SET status = ?, created_at = ?
		WHERE request_id = ? AND status = ?
	`, string(dedupeport.StatusInProgress), s.now().Unix(), string(id), string(dedupeport.StatusFailed))
	if err != nil {
		return dedupeport.Outcome{}, fmt.Errorf("reclaim request id: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 1 {
		return dedupeport.Outcome{Fresh: true}, nil
	}

	// Still held or already succeeded; report the prior state. Records are
	// never deleted automatically, so the row is guaranteed to exist.
	var status string
	row := s.db.QueryRowContext(ctx, `
		SELECT status FROM dedupe_records WHERE request_id = ?
	`, string(id))
	if err := row.Scan(&status); err != nil {
		return dedupeport.Outcome{}, fmt.Errorf("read prior claim: %w", err)
	}
	return dedupeport.Outcome{Prior: dedupeport.Status(status)}, nil
}

func (s *Store) Complete(ctx context.Context, id domain.RequestID, status dedupeport.Status) error {
	if status != dedupeport.StatusSucceeded && status != dedupeport.StatusFailed {
		return dedupeport.ErrInvalidStatus
	}

	// Matching zero rows is fine: the record may predate a restart.
	_, err := s.db.ExecContext(ctx, `
		UPDATE dedupe_records SET status = ?
		WHERE request_id = ? AND status = ?
	`, string(status), string(id), string(dedupeport.StatusInProgress))
	if err != nil {
		return fmt.Errorf("complete request id: %w", err)
	}
	return nil
}

func (s *Store) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM dedupe_records WHERE created_at < ?
	`, cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("prune dedupe records: %w", err)
	}
	return res.RowsAffected()
}

func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
			se.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
