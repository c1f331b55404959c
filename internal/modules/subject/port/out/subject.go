package out

import (
	"context"

	"studytrack/internal/modules/subject/domain"
)

// SubjectStore is the durable subjects table. Get reports a missing row as
// found=false with a nil error.
type SubjectStore interface {
	Insert(ctx context.Context, subject domain.Subject) error
	Update(ctx context.Context, subject domain.Subject) error
	Delete(ctx context.Context, ownerID, id string) error
	List(ctx context.Context, ownerID string) ([]domain.Subject, error)
	Get(ctx context.Context, ownerID, id string) (domain.Subject, bool, error)
}

// Mirror is the local cache copy of the subject list.
type Mirror interface {
	Load(key string, dst any) bool
	Save(key string, value any) error
}
