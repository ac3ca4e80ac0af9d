package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tasknest/backend/domain"
	"github.com/tasknest/backend/repository"
)

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository instantiates a Postgres-backed user repository.
func NewUserRepository(pool *pgxpool.Pool) repository.UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) GetByCredentials(ctx context.Context, username, password string) ([]domain.User, error) {
	const query = `
	SELECT user_id, username, password
	FROM users
	WHERE username = $1 AND password = $2
	`
	rows, err := r.pool.Query(ctx, query, username, password)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(&user.ID, &user.Username, &user.Password); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}
