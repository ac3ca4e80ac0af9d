package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tasknest/backend/domain"
	"github.com/tasknest/backend/repository"
)

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository returns a Postgres-backed implementation of TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) repository.TaskRepository {
	return &taskRepository{pool: pool}
}

func (r *taskRepository) ListByOwner(ctx context.Context, ownerID int64) ([]domain.Task, error) {
	const query = `
	SELECT task_id, user_id, title, description
	FROM tasks
	WHERE user_id = $1
	ORDER BY task_id ASC
	`
	rows, err := r.pool.Query(ctx, query, ownerID)
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

	const query = `
	INSERT INTO tasks (user_id, title, description)
	VALUES ($1, $2, $3)
	RETURNING task_id
	`
	if err := r.pool.QueryRow(ctx, query, task.OwnerID, task.Title, task.Description).Scan(&task.ID); err != nil {
		return translateConstraint(err)
	}
	return nil
}

func (r *taskRepository) Update(ctx context.Context, id, ownerID int64, title, description string) (bool, error) {
	const query = `
	UPDATE tasks
	SET title = $3, description = $4
	WHERE task_id = $1 AND user_id = $2
	`
	tag, err := r.pool.Exec(ctx, query, id, ownerID, title, description)
	if err != nil {
		return false, translateConstraint(err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *taskRepository) Delete(ctx context.Context, id, ownerID int64) (bool, error) {
	const query = `DELETE FROM tasks WHERE task_id = $1 AND user_id = $2`
	tag, err := r.pool.Exec(ctx, query, id, ownerID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// translateConstraint maps Postgres constraint violations onto domain errors.
func translateConstraint(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fmt.Errorf("%w: %s", domain.ErrDuplicateTitle, pgErr.ConstraintName)
		case "23503":
			return fmt.Errorf("%w: %s", domain.ErrUnknownOwner, pgErr.ConstraintName)
		}
	}
	return err
}
