// Package bolt persists session bindings in a local BoltDB file so logins
// survive process restarts on single-node deployments.
package bolt

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	bboltlib "go.etcd.io/bbolt"

	"github.com/tasknest/backend/domain"
	"github.com/tasknest/backend/repository"
)

var bucketName = []byte("sessions")

// SessionStore is a BoltDB-backed session store. Bolt serializes writers
// internally, so no additional locking is needed.
type SessionStore struct {
	db *bboltlib.DB
}

// Open initializes the BoltDB file and ensures the sessions bucket exists.
func Open(path string) (*SessionStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bboltlib.Open(path, 0o600, &bboltlib.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bboltlib.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &SessionStore{db: db}, nil
}

func (s *SessionStore) Save(ctx context.Context, session *domain.Session) error {
	if session == nil || session.ID == "" {
		return domain.ErrInvalidPayload
	}
	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bboltlib.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(session.ID), payload)
	})
}

func (s *SessionStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	var session domain.Session
	err := s.db.View(func(tx *bboltlib.Tx) error {
		raw := tx.Bucket(bucketName).Get([]byte(id))
		if raw == nil {
			return domain.ErrSessionNotFound
		}
		return json.Unmarshal(raw, &session)
	})
	if err != nil {
		return nil, err
	}
	// Expired entries resolve to absence; the janitor reclaims them.
	if session.IsExpired(time.Now()) {
		return nil, domain.ErrSessionNotFound
	}
	return &session, nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	return s.db.Update(func(tx *bboltlib.Tx) error {
		return tx.Bucket(bucketName).Delete([]byte(id))
	})
}

func (s *SessionStore) PurgeExpired(ctx context.Context, now time.Time) (int, error) {
	if now.IsZero() {
		now = time.Now()
	}
	var purged int
	err := s.db.Update(func(tx *bboltlib.Tx) error {
		c := tx.Bucket(bucketName).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var session domain.Session
			if err := json.Unmarshal(v, &session); err != nil {
				// Unreadable entries are dead weight; drop them too.
				if err := c.Delete(); err != nil {
					return err
				}
				purged++
				continue
			}
			if session.IsExpired(now) {
				if err := c.Delete(); err != nil {
					return err
				}
				purged++
			}
		}
		return nil
	})
	return purged, err
}

// Close closes the Bolt database.
func (s *SessionStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

var _ repository.SessionStore = (*SessionStore)(nil)
