package out

import (
	"context"
	"time"

	"studytrack/internal/modules/focus/domain"
)

// MarkerStore is the durable active_sessions table.
type MarkerStore interface {
	// FindRunning reports a missing marker as found=false with a nil error.
	FindRunning(ctx context.Context, ownerID string) (domain.Marker, bool, error)
	// DemoteRunning marks every running marker of ownerID paused and
	// returns how many rows changed.
	DemoteRunning(ctx context.Context, ownerID string, at time.Time) (int64, error)
	Insert(ctx context.Context, marker domain.Marker) error
	Delete(ctx context.Context, ownerID, markerID string) (int64, error)
}

// SessionStore is the durable sessions table.
type SessionStore interface {
	Insert(ctx context.Context, session domain.Session) error
	List(ctx context.Context, filter domain.SessionFilter) ([]domain.Session, error)
}

// Cache is the on-device key/value store.
type Cache interface {
	Load(key string, dst any) bool
	Save(key string, value any) error
	Remove(key string) error
}
