package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tasknest/backend/domain"
	"github.com/tasknest/backend/repository"
)

// UseCase implements login, logout and session resolution on top of the
// user repository and the session store.
type UseCase struct {
	users    repository.UserRepository
	sessions repository.SessionStore
	ttl      time.Duration
	logger   *zap.Logger
}

func New(users repository.UserRepository, sessions repository.SessionStore, ttl time.Duration, logger *zap.Logger) *UseCase {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:    users,
		sessions: sessions,
		ttl:      ttl,
		logger:   logger,
	}
}

// Login matches the credentials against exactly one user and establishes a
// session for them. Zero matches is a business outcome, not an error state.
// More than one match means username uniqueness is broken in storage; it is
// surfaced, never silently resolved by picking a row.
func (uc *UseCase) Login(ctx context.Context, username, password string) (*domain.Session, error) {
	users, err := uc.users.GetByCredentials(ctx, username, password)
	if err != nil {
		return nil, err
	}

	switch len(users) {
	case 0:
		return nil, domain.ErrBadCredentials
	case 1:
	default:
		uc.logger.Error("credential lookup matched multiple users",
			zap.String("username", username),
			zap.Int("matches", len(users)))
		return nil, domain.ErrAmbiguousUser
	}

	now := time.Now()
	session := &domain.Session{
		ID: uuid.NewString(),
		Identity: domain.Identity{
			UserID:   users[0].ID,
			Username: users[0].Username,
		},
		CreatedAt: now,
		ExpiresAt: now.Add(uc.ttl),
	}

	if err := uc.sessions.Save(ctx, session); err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "failed to establish session", err)
	}
	return session, nil
}

// Resolve turns a session id into the bound session. Absence surfaces as
// domain.ErrSessionNotFound; anything else is a store failure.
func (uc *UseCase) Resolve(ctx context.Context, sessionID string) (*domain.Session, error) {
	return uc.sessions.Get(ctx, sessionID)
}

// Logout revokes the session. Revoking an absent session is a no-op.
func (uc *UseCase) Logout(ctx context.Context, sessionID string) error {
	return uc.sessions.Delete(ctx, sessionID)
}
