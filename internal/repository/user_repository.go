package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Proton-105/lovemenu-bot/internal/domain"
)

type userRepository struct {
	db  *sql.DB
	log *slog.Logger
}

// NewUserRepository creates a new SQL-backed user repository.
func NewUserRepository(db *sql.DB, log *slog.Logger) UserRepository {
	return &userRepository{
		db:  db,
		log: log,
	}
}

// FindByID retrieves a user by their Telegram identifier.
func (r *userRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	const query = `
		SELECT user_id, username, first_name, is_first_time, created_at
		FROM users
		WHERE user_id = $1
	`

	row := r.db.QueryRowContext(ctx, query, id)

	var user domain.User
	if err := row.Scan(
		&user.UserID,
		&user.Username,
		&user.FirstName,
		&user.IsFirstTime,
		&user.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}

		if r.log != nil {
			r.log.Error("failed to fetch user by telegram id", slog.Int64("telegram_id", id), slog.Any("error", err))
		}
		return nil, fmt.Errorf("select user by telegram id: %w", err)
	}

	return &user, nil
}

// Create persists a new user record. Concurrent first contacts collapse into one row.
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
		INSERT INTO users (user_id, username, first_name, is_first_time)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO NOTHING
		RETURNING created_at
	`

	err := r.db.QueryRowContext(ctx, query, user.UserID, user.Username, user.FirstName, user.IsFirstTime).
		Scan(&user.CreatedAt)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		if r.log != nil {
			r.log.Error("failed to create user", slog.Int64("telegram_id", user.UserID), slog.Any("error", err))
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

// UpdateProfile refreshes username and first name.
func (r *userRepository) UpdateProfile(ctx context.Context, user *domain.User) error {
	const query = `UPDATE users SET username = $2, first_name = $3 WHERE user_id = $1`

	if _, err := r.db.ExecContext(ctx, query, user.UserID, user.Username, user.FirstName); err != nil {
		if r.log != nil {
			r.log.Error("failed to update user profile", slog.Int64("telegram_id", user.UserID), slog.Any("error", err))
		}
		return fmt.Errorf("update user profile: %w", err)
	}

	return nil
}

// MarkReturning clears the first-contact flag.
func (r *userRepository) MarkReturning(ctx context.Context, id int64) error {
	const query = `UPDATE users SET is_first_time = FALSE WHERE user_id = $1 AND is_first_time`

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		if r.log != nil {
			r.log.Error("failed to mark user as returning", slog.Int64("telegram_id", id), slog.Any("error", err))
		}
		return fmt.Errorf("update user first time flag: %w", err)
	}

	return nil
}

// List returns every known user.
func (r *userRepository) List(ctx context.Context) ([]domain.User, error) {
	const query = `
		SELECT user_id, username, first_name, is_first_time, created_at
		FROM users
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		if r.log != nil {
			r.log.Error("failed to list users", slog.Any("error", err))
		}
		return nil, fmt.Errorf("select users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.UserID, &u.Username, &u.FirstName, &u.IsFirstTime, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}

	return users, rows.Err()
}
