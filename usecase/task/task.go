package task

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/tasknest/backend/domain"
	"github.com/tasknest/backend/repository"
)

// UseCase performs owner-scoped task operations. Every method takes the
// caller's user id as resolved from their session; no task id or payload
// field ever establishes identity.
type UseCase struct {
	tasks  repository.TaskRepository
	logger *zap.Logger
}

func New(tasks repository.TaskRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:  tasks,
		logger: logger,
	}
}

func (uc *UseCase) List(ctx context.Context, ownerID int64) ([]domain.Task, error) {
	return uc.tasks.ListByOwner(ctx, ownerID)
}

// Create stores a new task for the owner and returns the refreshed full task
// list, so responses always carry current state rather than a delta.
func (uc *UseCase) Create(ctx context.Context, ownerID int64, title, description string) ([]domain.Task, error) {
	if strings.TrimSpace(title) == "" {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "task title must not be empty", nil)
	}

	task := &domain.Task{
		OwnerID:     ownerID,
		Title:       title,
		Description: description,
	}
	if err := uc.tasks.Create(ctx, task); err != nil {
		return nil, err
	}
	return uc.tasks.ListByOwner(ctx, ownerID)
}

// Update rewrites a task the owner holds. matched reports whether a row
// belonged to the caller; a cross-owner or unknown id is a silent no-op.
func (uc *UseCase) Update(ctx context.Context, ownerID, taskID int64, title, description string) (bool, []domain.Task, error) {
	if strings.TrimSpace(title) == "" {
		return false, nil, domain.WrapError(domain.ErrCodeInvalid, "task title must not be empty", nil)
	}

	matched, err := uc.tasks.Update(ctx, taskID, ownerID, title, description)
	if err != nil {
		return false, nil, err
	}

	tasks, err := uc.tasks.ListByOwner(ctx, ownerID)
	if err != nil {
		return matched, nil, err
	}
	return matched, tasks, nil
}

// Delete removes a task the owner holds, with the same no-op semantics as
// Update for ids the caller does not own.
func (uc *UseCase) Delete(ctx context.Context, ownerID, taskID int64) (bool, []domain.Task, error) {
	matched, err := uc.tasks.Delete(ctx, taskID, ownerID)
	if err != nil {
		return false, nil, err
	}

	tasks, err := uc.tasks.ListByOwner(ctx, ownerID)
	if err != nil {
		return matched, nil, err
	}
	return matched, tasks, nil
}
