package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/fenwick-labs/sessionmatch/internal/session"
)

// WriteSessions upserts session records in a single transaction.
// Re-writing an (source, identifier) pair replaces the previous row, so
// repeated loads of the same export are idempotent.
func (s *Store) WriteSessions(ctx context.Context, sessions []session.Session) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write sessions: begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO sessions
		(source, identifier, start_time, end_time, device_category, country,
		 os, browser, user_key, purchase_count, purchase_value, engagement_usec)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(source, identifier) DO UPDATE SET
			start_time = excluded.start_time,
			end_time = excluded.end_time,
			device_category = excluded.device_category,
			country = excluded.country,
			os = excluded.os,
			browser = excluded.browser,
			user_key = excluded.user_key,
			purchase_count = excluded.purchase_count,
			purchase_value = excluded.purchase_value,
			engagement_usec = excluded.engagement_usec
	`)
	if err != nil {
		return fmt.Errorf("write sessions: prepare: %w", err)
	}
	defer stmt.Close()

	for _, rec := range sessions {
		if !rec.Source.Valid() {
			return fmt.Errorf("write sessions: %s: unknown source %q", rec.Identifier, rec.Source)
		}
		_, err := stmt.ExecContext(ctx,
			string(rec.Source),
			rec.Identifier,
			microsOrNil(rec.StartTime),
			microsOrNil(rec.EndTime),
			string(rec.Device),
			rec.Country,
			rec.OS,
			rec.Browser,
			rec.UserKey,
			rec.PurchaseCount,
			rec.PurchaseValue,
			rec.EngagementTime.Microseconds(),
		)
		if err != nil {
			return fmt.Errorf("write session %s/%s: %w", rec.Source, rec.Identifier, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write sessions: commit: %w", err)
	}
	return nil
}

// ReadSessions returns one source's sessions whose start time falls in
// [from, to], inclusive, ordered by (start_time, identifier) for
// deterministic downstream processing.
//
// Rows with a NULL start time are included regardless of the range:
// they cannot be bounded but must still reach the categorizer to land
// in their source's "-only" bucket.
func (s *Store) ReadSessions(ctx context.Context, src session.Source, from, to time.Time) ([]session.Session, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT identifier, start_time, end_time, device_category, country,
		       os, browser, user_key, purchase_count, purchase_value, engagement_usec
		FROM sessions
		WHERE source = ?
		  AND (start_time IS NULL OR (start_time >= ? AND start_time <= ?))
		ORDER BY start_time ASC, identifier ASC
	`, string(src), from.UTC().UnixMicro(), to.UTC().UnixMicro())
	if err != nil {
		return nil, fmt.Errorf("read sessions: %w", err)
	}
	defer rows.Close()

	var out []session.Session
	for rows.Next() {
		rec, err := scanSession(rows, src)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}

	// Return empty slice instead of nil
	if out == nil {
		out = []session.Session{}
	}
	return out, nil
}

// CountSessions returns the number of stored sessions for a source.
func (s *Store) CountSessions(ctx context.Context, src session.Source) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sessions WHERE source = ?`, string(src)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count sessions: %w", err)
	}
	return n, nil
}

func scanSession(rows *sql.Rows, src session.Source) (session.Session, error) {
	var (
		rec        session.Session
		start, end sql.NullInt64
		purchase   sql.NullInt64
		engagement int64
		device     string
	)
	err := rows.Scan(
		&rec.Identifier,
		&start,
		&end,
		&device,
		&rec.Country,
		&rec.OS,
		&rec.Browser,
		&rec.UserKey,
		&rec.PurchaseCount,
		&purchase,
		&engagement,
	)
	if err != nil {
		return session.Session{}, fmt.Errorf("scan session: %w", err)
	}
	rec.Source = src
	rec.Device = session.DeviceCategory(device)
	rec.StartTime = timeFromMicros(start)
	rec.EndTime = timeFromMicros(end)
	if purchase.Valid {
		v := purchase.Int64
		rec.PurchaseValue = &v
	}
	rec.EngagementTime = time.Duration(engagement) * time.Microsecond
	return rec, nil
}

// microsOrNil maps the zero time to NULL so absent timestamps survive a
// round trip instead of turning into the unix epoch.
func microsOrNil(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().UnixMicro()
}

func timeFromMicros(v sql.NullInt64) time.Time {
	if !v.Valid {
		return time.Time{}
	}
	return time.UnixMicro(v.Int64).UTC()
}
