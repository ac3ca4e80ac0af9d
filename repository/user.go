package repository

import (
	"context"

	"github.com/tasknest/backend/domain"
)

// UserRepository reads provisioned accounts. The credential lookup returns
// every matching row so callers can detect storage-integrity violations
// instead of silently picking one.
type UserRepository interface {
	GetByCredentials(ctx context.Context, username, password string) ([]domain.User, error)
}
