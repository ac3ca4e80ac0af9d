package domain

import "time"

// Sentinel identity reported to clients that do not hold a valid session.
const (
	AnonUserID   int64 = -1
	AnonUsername       = "Anon"
)

// Identity is the authenticated principal bound to a session. The session
// binding is the sole source of truth for who the caller is.
type Identity struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
}

// Session binds an opaque server-side id to an authenticated identity. Its
// lifetime is independent of users and tasks; revoking it never cascades.
type Session struct {
	ID        string    `json:"id"`
	Identity  Identity  `json:"identity"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *Session) IsExpired(reference time.Time) bool {
	if s == nil {
		return true
	}
	if reference.IsZero() {
		reference = time.Now()
	}
	return !s.ExpiresAt.After(reference)
}
