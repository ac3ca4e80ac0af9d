// Package sqlite opens the embedded database used in the self-contained
// deployment mode.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/tasknest/backend/internal/config"
)

// Open creates the SQLite database, applies the schema bootstrap and returns
// a handle restricted to a single connection so all writes serialize through
// the engine without application-level locks.
func Open(ctx context.Context, cfg config.SQLiteConfig, logger *zap.Logger) (*sql.DB, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if cfg.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, err
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", cfg.Path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, err
	}

	if err := Bootstrap(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("connected to sqlite", zap.String("path", cfg.Path))
	return db, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	user_id INTEGER PRIMARY KEY AUTOINCREMENT,
	username TEXT NOT NULL UNIQUE,
	password TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS tasks (
	task_id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL REFERENCES users (user_id),
	title TEXT NOT NULL UNIQUE,
	description TEXT
);
`

const seed = `
INSERT INTO users (user_id, username, password) VALUES (0, 'user0', 'password0');
INSERT INTO users (username, password) VALUES ('user1', 'password1');
INSERT INTO users (username, password) VALUES ('user2', 'password2');

INSERT INTO tasks (user_id, title, description) VALUES (1, 'title 11', 'description 11');
INSERT INTO tasks (user_id, title, description) VALUES (2, 'title 21', 'description 21');
INSERT INTO tasks (user_id, title, description) VALUES (2, 'title 31', 'description 31');
`

// Bootstrap applies the schema and, on an empty database, the provisioning
// fixtures. Accounts are seeded here because the service itself never
// creates users.
func Bootstrap(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return err
	}

	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	_, err := db.ExecContext(ctx, seed)
	return err
}
