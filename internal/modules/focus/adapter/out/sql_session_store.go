package out

import (
	"context"
	"fmt"
	"strings"

	"studytrack/internal/modules/focus/domain"
	focusout "studytrack/internal/modules/focus/port/out"
	"studytrack/internal/platform/database"
)

type SQLSessionStore struct {
	db *database.DB
}

func NewSQLSessionStore(db *database.DB) focusout.SessionStore {
	return &SQLSessionStore{db: db}
}

func (s *SQLSessionStore) Insert(ctx context.Context, session domain.Session) error {
	if err := session.Validate(); err != nil {
		return err
	}
	q, err := s.db.Querier(ctx)
	if err != nil {
		return err
	}
	const stmt = `
INSERT INTO sessions (id, owner_id, subject_id, start_time, end_time, description, is_interrupted, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = q.ExecContext(ctx, s.db.Rebind(stmt),
		session.ID,
		session.OwnerID,
		session.SubjectID,
		database.FormatTime(session.StartTime),
		database.FormatTime(session.EndTime),
		session.Description,
		database.Bool(session.IsInterrupted),
		database.FormatTime(session.CreatedAt),
	)
	if err != nil {
		return database.Classify(fmt.Errorf("insert session: %w", err))
	}
	return nil
}

func (s *SQLSessionStore) List(ctx context.Context, filter domain.SessionFilter) ([]domain.Session, error) {
	q, err := s.db.Querier(ctx)
	if err != nil {
		return nil, err
	}
	var (
		where []string
		args  []any
	)
	if filter.OwnerID != "" {
		where = append(where, "owner_id = ?")
		args = append(args, filter.OwnerID)
	}
	if filter.SubjectID != "" {
		where = append(where, "subject_id = ?")
		args = append(args, filter.SubjectID)
	}
	if !filter.StartTime.IsZero() {
		where = append(where, "start_time = ?")
		args = append(args, database.FormatTime(filter.StartTime))
	}
	if !filter.From.IsZero() {
		where = append(where, "start_time >= ?")
		args = append(args, database.FormatTime(filter.From))
	}
	if !filter.To.IsZero() {
		where = append(where, "start_time < ?")
		args = append(args, database.FormatTime(filter.To))
	}

	query := `SELECT id, owner_id, subject_id, start_time, end_time, description, is_interrupted, created_at FROM sessions`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY start_time, id"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := q.QueryContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return nil, database.Classify(fmt.Errorf("list sessions: %w", err))
	}
	defer rows.Close()

	sessions := []domain.Session{}
	for rows.Next() {
		var (
			session             domain.Session
			start, end, created string
			interrupted         int
		)
		if err := rows.Scan(&session.ID, &session.OwnerID, &session.SubjectID, &start, &end, &session.Description, &interrupted, &created); err != nil {
			return nil, database.Classify(fmt.Errorf("scan session: %w", err))
		}
		if session.StartTime, err = database.ParseTime(start); err != nil {
			return nil, err
		}
		if session.EndTime, err = database.ParseTime(end); err != nil {
			return nil, err
		}
		if session.CreatedAt, err = database.ParseTime(created); err != nil {
			return nil, err
		}
		session.IsInterrupted = interrupted != 0
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, database.Classify(fmt.Errorf("iterate sessions: %w", err))
	}
	return sessions, nil
}
