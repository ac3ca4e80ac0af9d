// Package sqlite implements the repository interfaces on a single serialized
// database/sql connection backed by the pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sqlitelib "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/tasknest/backend/domain"
	"github.com/tasknest/backend/repository"
)

type taskRepository struct {
	db *sql.DB
}

// NewTaskRepository returns a SQLite-backed implementation of TaskRepository.
func NewTaskRepository(db *sql.DB) repository.TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) ListByOwner(ctx context.Context, ownerID int64) ([]domain.Task, error) {
	const query = `
	SELECT task_id, user_id, title, COALESCE(description, '')
	FROM tasks
	WHERE user_id = ?
	ORDER BY task_id ASC
	`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		var task domain.Task
		if err := rows.Scan(&task.ID, &task.OwnerID, &task.Title, &task.Description); err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}

	const query = `INSERT INTO tasks (user_id, title, description) VALUES (?, ?, ?)`
	result, err := r.db.ExecContext(ctx, query, task.OwnerID, task.Title, task.Description)
	if err != nil {
		return translateConstraint(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	task.ID = id
	return nil
}

func (r *taskRepository) Update(ctx context.Context, id, ownerID int64, title, description string) (bool, error) {
	const query = `
	UPDATE tasks
	SET title = ?, description = ?
	WHERE task_id = ? AND user_id = ?
	`
	result, err := r.db.ExecContext(ctx, query, title, description, id, ownerID)
	if err != nil {
		return false, translateConstraint(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *taskRepository) Delete(ctx context.Context, id, ownerID int64) (bool, error) {
	const query = `DELETE FROM tasks WHERE task_id = ? AND user_id = ?`
	result, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// translateConstraint maps SQLite constraint violations onto domain errors.
func translateConstraint(err error) error {
	var liteErr *sqlitelib.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE:
			return fmt.Errorf("%w: %v", domain.ErrDuplicateTitle, err)
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return fmt.Errorf("%w: %v", domain.ErrUnknownOwner, err)
		}
	}
	return err
}
