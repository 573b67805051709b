package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fenwick-labs/sessionmatch/internal/session"
)

// ErrRunNotFound is returned when a run id has no stored row.
var ErrRunNotFound = errors.New("run not found")

// RunRecord is the metadata row for one materialized reconciliation run.
type RunRecord struct {
	ID          string
	CreatedAt   time.Time
	Window      time.Duration
	RangeStart  time.Time
	RangeEnd    time.Time
	Strategy    string
	Fingerprint string
	BothCount   int
	AOnlyCount  int
	BOnlyCount  int
}

// CategoryRow is one session's derived label within a run.
// MatchedIdentifier is the other side's identifier for "both" rows and
// empty otherwise.
type CategoryRow struct {
	Source            session.Source
	Identifier        string
	Category          string
	MatchedIdentifier string
}

// SaveRun writes the run metadata plus every per-session category row
// in a single transaction: either the whole run materializes or none
// of it does.
func (s *Store) SaveRun(ctx context.Context, run RunRecord, rows []CategoryRow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save run: begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, created_at, window_usec, range_start, range_end, strategy,
		 fingerprint, both_count, a_only_count, b_only_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.CreatedAt.UTC().UnixMicro(),
		run.Window.Microseconds(),
		run.RangeStart.UTC().UnixMicro(),
		run.RangeEnd.UTC().UnixMicro(),
		run.Strategy,
		run.Fingerprint,
		run.BothCount,
		run.AOnlyCount,
		run.BOnlyCount,
	)
	if err != nil {
		return fmt.Errorf("save run %s: %w", run.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO run_categories
		(run_id, source, identifier, category, matched_identifier)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("save run %s: prepare: %w", run.ID, err)
	}
	defer stmt.Close()

	for _, row := range rows {
		_, err := stmt.ExecContext(ctx,
			run.ID, string(row.Source), row.Identifier, row.Category, row.MatchedIdentifier)
		if err != nil {
			return fmt.Errorf("save run %s: category %s/%s: %w", run.ID, row.Source, row.Identifier, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save run %s: commit: %w", run.ID, err)
	}
	return nil
}

// ReadRun returns a run's metadata row.
func (s *Store) ReadRun(ctx context.Context, id string) (RunRecord, error) {
	var (
		run                          RunRecord
		created, winUsec, rFrom, rTo int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, window_usec, range_start, range_end, strategy,
		       fingerprint, both_count, a_only_count, b_only_count
		FROM runs WHERE id = ?
	`, id).Scan(
		&run.ID, &created, &winUsec, &rFrom, &rTo, &run.Strategy,
		&run.Fingerprint, &run.BothCount, &run.AOnlyCount, &run.BOnlyCount,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return RunRecord{}, fmt.Errorf("read run %s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return RunRecord{}, fmt.Errorf("read run %s: %w", id, err)
	}
	run.CreatedAt = time.UnixMicro(created).UTC()
	run.Window = time.Duration(winUsec) * time.Microsecond
	run.RangeStart = time.UnixMicro(rFrom).UTC()
	run.RangeEnd = time.UnixMicro(rTo).UTC()
	return run, nil
}

// ReadRunCategories returns a run's per-session rows ordered by
// (source, identifier) for deterministic output.
func (s *Store) ReadRunCategories(ctx context.Context, runID string) ([]CategoryRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT source, identifier, category, matched_identifier
		FROM run_categories
		WHERE run_id = ?
		ORDER BY source ASC, identifier ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("read run categories: %w", err)
	}
	defer rows.Close()

	var out []CategoryRow
	for rows.Next() {
		var row CategoryRow
		var src string
		if err := rows.Scan(&src, &row.Identifier, &row.Category, &row.MatchedIdentifier); err != nil {
			return nil, fmt.Errorf("scan run category: %w", err)
		}
		row.Source = session.Source(src)
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run categories: %w", err)
	}

	if out == nil {
		out = []CategoryRow{}
	}
	return out, nil
}
