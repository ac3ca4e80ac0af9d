package sqlite

import (
	"context"
	"database/sql"

	"github.com/tasknest/backend/domain"
	"github.com/tasknest/backend/repository"
)

type userRepository struct {
	db *sql.DB
}

// NewUserRepository instantiates a SQLite-backed user repository.
func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByCredentials(ctx context.Context, username, password string) ([]domain.User, error) {
	const query = `
	SELECT user_id, username, password
	FROM users
	WHERE username = ? AND password = ?
	`
	rows, err := r.db.QueryContext(ctx, query, username, password)
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
