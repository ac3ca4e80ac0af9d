package repository

import (
	"context"

	"github.com/tasknest/backend/domain"
)

// TaskRepository is durable storage for tasks. Ownership matching happens at
// the storage boundary as well as in the service layer, so a mutation aimed
// at another owner's task dies here even if a service-level check is missed.
type TaskRepository interface {
	// ListByOwner returns the owner's tasks ordered by task id ascending.
	ListByOwner(ctx context.Context, ownerID int64) ([]domain.Task, error)

	// Create stores the task and assigns its id. A title collision with any
	// existing task or an unknown owner surfaces as a domain error.
	Create(ctx context.Context, task *domain.Task) error

	// Update rewrites title and description when a task with this id and
	// owner exists. A false return means no row matched; that is a valid
	// no-op outcome, not an error.
	Update(ctx context.Context, id, ownerID int64, title, description string) (bool, error)

	// Delete removes the task when id and owner match, reporting whether a
	// row was removed.
	Delete(ctx context.Context, id, ownerID int64) (bool, error)
}
