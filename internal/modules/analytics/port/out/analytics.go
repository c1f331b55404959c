package out

import (
	"context"

	"studytrack/internal/modules/analytics/domain"
)

type SessionSource interface {
	Snapshot(ctx context.Context) (domain.Snapshot, error)
}

type SubjectCatalog interface {
	Subjects(ctx context.Context) ([]domain.SubjectInfo, error)
}

// JournalStore holds one markdown note per local day.
type JournalStore interface {
	Read(ctx context.Context, day string) (string, bool, error)
	Write(ctx context.Context, day, content string) (string, error)
}
