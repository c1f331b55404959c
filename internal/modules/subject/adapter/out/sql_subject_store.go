package out

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"studytrack/internal/modules/subject/domain"
	subjectout "studytrack/internal/modules/subject/port/out"
	"studytrack/internal/platform/database"
	apperrors "studytrack/internal/platform/errors"
)

type SQLSubjectStore struct {
	db *database.DB
}

func NewSQLSubjectStore(db *database.DB) subjectout.SubjectStore {
	return &SQLSubjectStore{db: db}
}

func (s *SQLSubjectStore) Insert(ctx context.Context, subject domain.Subject) error {
	q, err := s.db.Querier(ctx)
	if err != nil {
		return err
	}
	const stmt = `INSERT INTO subjects (id, owner_id, name, color, image, created_at) VALUES (?, ?, ?, ?, ?, ?)`
	_, err = q.ExecContext(ctx, s.db.Rebind(stmt),
		subject.ID, subject.OwnerID, subject.Name, subject.Color, subject.Image, database.FormatTime(subject.CreatedAt))
	if err != nil {
		return database.Classify(fmt.Errorf("insert subject: %w", err))
	}
	return nil
}

func (s *SQLSubjectStore) Update(ctx context.Context, subject domain.Subject) error {
	q, err := s.db.Querier(ctx)
	if err != nil {
		return err
	}
	const stmt = `UPDATE subjects SET name = ?, color = ?, image = ? WHERE owner_id = ? AND id = ?`
	res, err := q.ExecContext(ctx, s.db.Rebind(stmt), subject.Name, subject.Color, subject.Image, subject.OwnerID, subject.ID)
	if err != nil {
		return database.Classify(fmt.Errorf("update subject: %w", err))
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// mysql reports zero affected rows for an unchanged row, so confirm existence.
		if _, found, getErr := s.Get(ctx, subject.OwnerID, subject.ID); getErr != nil {
			return getErr
		} else if !found {
			return fmt.Errorf("%w: subject %s", apperrors.ErrNotFound, subject.ID)
		}
	}
	return nil
}

func (s *SQLSubjectStore) Delete(ctx context.Context, ownerID, id string) error {
	q, err := s.db.Querier(ctx)
	if err != nil {
		return err
	}
	if _, err := q.ExecContext(ctx, s.db.Rebind(`DELETE FROM subjects WHERE owner_id = ? AND id = ?`), ownerID, id); err != nil {
		return database.Classify(fmt.Errorf("delete subject: %w", err))
	}
	return nil
}

func (s *SQLSubjectStore) List(ctx context.Context, ownerID string) ([]domain.Subject, error) {
	q, err := s.db.Querier(ctx)
	if err != nil {
		return nil, err
	}
	const query = `SELECT id, owner_id, name, color, image, created_at FROM subjects WHERE owner_id = ? ORDER BY created_at, id`
	rows, err := q.QueryContext(ctx, s.db.Rebind(query), ownerID)
	if err != nil {
		return nil, database.Classify(fmt.Errorf("list subjects: %w", err))
	}
	defer rows.Close()

	subjects := []domain.Subject{}
	for rows.Next() {
		subject, err := scanSubject(rows)
		if err != nil {
			return nil, err
		}
		subjects = append(subjects, subject)
	}
	if err := rows.Err(); err != nil {
		return nil, database.Classify(fmt.Errorf("iterate subjects: %w", err))
	}
	return subjects, nil
}

func (s *SQLSubjectStore) Get(ctx context.Context, ownerID, id string) (domain.Subject, bool, error) {
	q, err := s.db.Querier(ctx)
	if err != nil {
		return domain.Subject{}, false, err
	}
	const query = `SELECT id, owner_id, name, color, image, created_at FROM subjects WHERE owner_id = ? AND id = ?`
	subject, err := scanSubject(q.QueryRowContext(ctx, s.db.Rebind(query), ownerID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Subject{}, false, nil
	}
	if err != nil {
		return domain.Subject{}, false, err
	}
	return subject, true, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSubject(row scanner) (domain.Subject, error) {
	var (
		subject   domain.Subject
		createdAt string
	)
	if err := row.Scan(&subject.ID, &subject.OwnerID, &subject.Name, &subject.Color, &subject.Image, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Subject{}, err
		}
		return domain.Subject{}, database.Classify(fmt.Errorf("scan subject: %w", err))
	}
	t, err := database.ParseTime(createdAt)
	if err != nil {
		return domain.Subject{}, err
	}
	subject.CreatedAt = t
	return subject, nil
}
