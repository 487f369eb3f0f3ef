package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"focusflow/internal/models"
)

// UserRepository is the SQL side of the credential store.
type UserRepository struct {
	db      *sql.DB
	dialect Dialect
}

func NewUserRepository(db *sql.DB, dialect Dialect) *UserRepository {
	return &UserRepository{db: db, dialect: dialect}
}

// CreateWithWelcomeTask inserts the user and its first task in one
// transaction. A taken username yields models.ErrDuplicateUsername.
func (r *UserRepository) CreateWithWelcomeTask(ctx context.Context, username, passwordHash, welcomeText string) (models.User, error) {
	user := models.User{
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}

	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx,
			r.dialect.Rebind("INSERT INTO users (username, password_hash, created_at) VALUES (?, ?, ?) RETURNING id"),
			user.Username, user.PasswordHash, user.CreatedAt,
		).Scan(&user.ID)
		if err != nil {
			if isUniqueViolation(err) {
				err = errors.Join(models.ErrDuplicateUsername, err)
			}
			return fmt.Errorf("insert user: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			r.dialect.Rebind("INSERT INTO tasks (user_id, text, completed, created_at) VALUES (?, ?, ?, ?)"),
			user.ID, welcomeText, false, user.CreatedAt,
		); err != nil {
			return fmt.Errorf("insert welcome task: %w", err)
		}

		return nil
	})
	if err != nil {
		return models.User{}, err
	}

	return user, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (models.User, error) {
	var user models.User

	err := r.db.QueryRowContext(ctx,
		r.dialect.Rebind("SELECT id, username, password_hash, created_at FROM users WHERE username = ?"),
		username,
	).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = errors.Join(models.ErrUserNotFound, err)
		}
		return models.User{}, fmt.Errorf("query user: %w", err)
	}

	return user, nil
}

func (r *UserRepository) UpdatePasswordHash(ctx context.Context, userID int, passwordHash string) error {
	_, err := r.db.ExecContext(ctx,
		r.dialect.Rebind("UPDATE users SET password_hash = ? WHERE id = ?"),
		passwordHash, userID,
	)
	if err != nil {
		return fmt.Errorf("update password hash: %w", err)
	}
	return nil
}
