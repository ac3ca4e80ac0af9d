package bolt

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasknest/backend/domain"
)

func openTestStore(t *testing.T) *SessionStore {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func storedSession(id string, ttl time.Duration) *domain.Session {
	now := time.Now()
	return &domain.Session{
		ID: id,
		Identity: domain.Identity{
			UserID:   2,
			Username: "user2",
		},
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

func TestBoltSessionStoreRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	session := storedSession("sid-1", time.Hour)
	require.NoError(t, store.Save(ctx, session))

	got, err := store.Get(ctx, "sid-1")
	require.NoError(t, err)
	assert.Equal(t, session.ID, got.ID)
	assert.Equal(t, session.Identity, got.Identity)
}

func TestBoltSessionStoreGetUnknown(t *testing.T) {
	store := openTestStore(t)

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestBoltSessionStoreExpiredResolvesToAbsence(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, storedSession("sid-1", -time.Minute)))

	_, err := store.Get(ctx, "sid-1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestBoltSessionStoreDeleteIdempotent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, storedSession("sid-1", time.Hour)))
	require.NoError(t, store.Delete(ctx, "sid-1"))
	require.NoError(t, store.Delete(ctx, "sid-1"))

	_, err := store.Get(ctx, "sid-1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestBoltSessionStorePurgeExpired(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, storedSession("stale", -time.Minute)))
	require.NoError(t, store.Save(ctx, storedSession("live", time.Hour)))

	purged, err := store.PurgeExpired(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, purged)

	_, err = store.Get(ctx, "live")
	assert.NoError(t, err)
}
