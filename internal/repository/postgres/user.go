package postgres

import (
	"context"
	"time"

	"campground-backend/internal/domain"
	"campground-backend/internal/repository"
)

type userRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, u *domain.StaffUser) error {
	query := `INSERT INTO staff_users (username, name, password_hash, role, created_on)
	          VALUES ($1, $2, $3, $4, $5) RETURNING id`
	return r.db.QueryRowContext(ctx, query, u.Username, u.Name, u.PasswordHash, u.Role, time.Now()).Scan(&u.ID)
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.StaffUser, error) {
	u := &domain.StaffUser{}
	query := `SELECT id, username, name, password_hash, role, created_on FROM staff_users WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&u.ID, &u.Username, &u.Name, &u.PasswordHash, &u.Role, &u.CreatedOn)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.StaffUser, error) {
	u := &domain.StaffUser{}
	query := `SELECT id, username, name, password_hash, role, created_on FROM staff_users WHERE username = $1`
	err := r.db.QueryRowContext(ctx, query, username).Scan(&u.ID, &u.Username, &u.Name, &u.PasswordHash, &u.Role, &u.CreatedOn)
	if err != nil {
		return nil, err
	}
	return u, nil
}
