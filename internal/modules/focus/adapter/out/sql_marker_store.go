package out

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"studytrack/internal/modules/focus/domain"
	focusout "studytrack/internal/modules/focus/port/out"
	"studytrack/internal/platform/database"
)

type SQLMarkerStore struct {
	db *database.DB
}

func NewSQLMarkerStore(db *database.DB) focusout.MarkerStore {
	return &SQLMarkerStore{db: db}
}

func (s *SQLMarkerStore) FindRunning(ctx context.Context, ownerID string) (domain.Marker, bool, error) {
	q, err := s.db.Querier(ctx)
	if err != nil {
		return domain.Marker{}, false, err
	}
	const query = `
SELECT id, owner_id, subject_id, start_time, status, updated_at
FROM active_sessions
WHERE owner_id = ? AND status = ?
ORDER BY start_time DESC
LIMIT 1`
	var (
		m                  domain.Marker
		status, start, upd string
	)
	err = q.QueryRowContext(ctx, s.db.Rebind(query), ownerID, string(domain.MarkerRunning)).
		Scan(&m.ID, &m.OwnerID, &m.SubjectID, &start, &status, &upd)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Marker{}, false, nil
	}
	if err != nil {
		return domain.Marker{}, false, database.Classify(fmt.Errorf("find running marker: %w", err))
	}
	if m.StartTime, err = database.ParseTime(start); err != nil {
		return domain.Marker{}, false, err
	}
	if m.UpdatedAt, err = database.ParseTime(upd); err != nil {
		return domain.Marker{}, false, err
	}
	m.Status = domain.MarkerStatus(status)
	return m, true, nil
}

func (s *SQLMarkerStore) DemoteRunning(ctx context.Context, ownerID string, at time.Time) (int64, error) {
	q, err := s.db.Querier(ctx)
	if err != nil {
		return 0, err
	}
	const stmt = `UPDATE active_sessions SET status = ?, updated_at = ? WHERE owner_id = ? AND status = ?`
	res, err := q.ExecContext(ctx, s.db.Rebind(stmt),
		string(domain.MarkerPaused), database.FormatTime(at), ownerID, string(domain.MarkerRunning))
	if err != nil {
		return 0, database.Classify(fmt.Errorf("demote running markers: %w", err))
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (s *SQLMarkerStore) Insert(ctx context.Context, marker domain.Marker) error {
	q, err := s.db.Querier(ctx)
	if err != nil {
		return err
	}
	const stmt = `INSERT INTO active_sessions (id, owner_id, subject_id, start_time, status, updated_at) VALUES (?, ?, ?, ?, ?, ?)`
	_, err = q.ExecContext(ctx, s.db.Rebind(stmt),
		marker.ID,
		marker.OwnerID,
		marker.SubjectID,
		database.FormatTime(marker.StartTime),
		string(marker.Status),
		database.FormatTime(marker.UpdatedAt),
	)
	if err != nil {
		return database.Classify(fmt.Errorf("insert marker: %w", err))
	}
	return nil
}

func (s *SQLMarkerStore) Delete(ctx context.Context, ownerID, markerID string) (int64, error) {
	q, err := s.db.Querier(ctx)
	if err != nil {
		return 0, err
	}
	res, err := q.ExecContext(ctx, s.db.Rebind(`DELETE FROM active_sessions WHERE owner_id = ? AND id = ?`), ownerID, markerID)
	if err != nil {
		return 0, database.Classify(fmt.Errorf("delete marker: %w", err))
	}
	n, _ := res.RowsAffected()
	return n, nil
}
