package repository

import (
	"context"
	"errors"
	"fmt"

	"promptforge/models"
	"promptforge/observability"

	"github.com/jackc/pgx/v5"
)

// CreateUser inserts a new user and returns the stored record.
// Returns ErrDuplicateEmail when the email is already registered.
func (r *Repository) CreateUser(ctx context.Context, email, hashedPassword string, name *string) (*models.User, error) {
	if err := r.checkDB(); err != nil {
		return nil, err
	}

	timer := observability.GetMetrics().NewTimer()
	defer timer.ObserveDB("insert", "users")

	query := `
		INSERT INTO users (email, hashed_password, name)
		VALUES ($1, $2, $3)
		RETURNING id, email, hashed_password, name, created_at, updated_at
	`

	var user models.User
	err := r.db.QueryRow(ctx, query, email, hashedPassword, name).Scan(
		&user.ID,
		&user.Email,
		&user.HashedPassword,
		&user.Name,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		observability.GetMetrics().RecordDBError("insert", "users")
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &user, nil
}

// GetUserByEmail looks up a user by exact email match (case-sensitive)
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if err := r.checkDB(); err != nil {
		return nil, err
	}

	query := `
		SELECT id, email, hashed_password, name, created_at, updated_at
		FROM users
		WHERE email = $1
	`

	var user models.User
	err := r.db.QueryRow(ctx, query, email).Scan(
		&user.ID,
		&user.Email,
		&user.HashedPassword,
		&user.Name,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		observability.GetMetrics().RecordDBError("select", "users")
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return &user, nil
}

// GetUserByID looks up a user by id
func (r *Repository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	if err := r.checkDB(); err != nil {
		return nil, err
	}

	query := `
		SELECT id, email, hashed_password, name, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	var user models.User
	err := r.db.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.Email,
		&user.HashedPassword,
		&user.Name,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		observability.GetMetrics().RecordDBError("select", "users")
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return &user, nil
}
