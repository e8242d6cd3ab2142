package repository

import (
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"expenseflow/internal/models"
)

// UserRepository handles user account database operations
type UserRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB, logger *zap.Logger) *UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new user account
func (r *UserRepository) Create(user *models.User) error {
	query := `
		INSERT INTO users (id, name, email, password_hash, role, department, avatar_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.Department,
		user.AvatarURL,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create user", zap.String("email", user.Email), zap.Error(err))
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by id. Returns (nil, nil) if no user exists.
func (r *UserRepository) GetByID(id string) (*models.User, error) {
	return r.getOne("SELECT id, name, email, password_hash, role, department, avatar_url, created_at, updated_at FROM users WHERE id = ?", id)
}

// GetByEmail retrieves a user by exact email match. Returns (nil, nil) if no user exists.
func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	// Exact case-sensitive match; SQLite compares BLOB-style on TEXT by default
	return r.getOne("SELECT id, name, email, password_hash, role, department, avatar_url, created_at, updated_at FROM users WHERE email = ?", email)
}

func (r *UserRepository) getOne(query string, arg interface{}) (*models.User, error) {
	var user models.User

	err := r.db.QueryRow(query, arg).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.Department,
		&user.AvatarURL,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get user", zap.Error(err))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

// UpdateRole changes a user's role. Reserved for administrative actions.
func (r *UserRepository) UpdateRole(id string, role models.Role) error {
	result, err := r.db.Exec(
		"UPDATE users SET role = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		role, id,
	)
	if err != nil {
		r.logger.Error("Failed to update user role", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("failed to update user role: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}
