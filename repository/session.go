package repository

import (
	"context"
	"time"

	"github.com/tasknest/backend/domain"
)

// SessionStore binds opaque session ids to authenticated identities. All
// implementations are safe for concurrent use from multiple requests.
type SessionStore interface {
	Save(ctx context.Context, session *domain.Session) error

	// Get returns domain.ErrSessionNotFound for unknown, expired or revoked
	// ids. Any other error is a store failure, which callers must not
	// conflate with "not logged in".
	Get(ctx context.Context, id string) (*domain.Session, error)

	// Delete is idempotent; deleting an absent session is a no-op.
	Delete(ctx context.Context, id string) error

	// PurgeExpired removes sessions that expired before now and reports how
	// many were dropped. Backends that expire entries natively return 0.
	PurgeExpired(ctx context.Context, now time.Time) (int, error)
}
