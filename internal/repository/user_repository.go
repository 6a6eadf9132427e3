package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/booking-api/internal/models"
)

const selectUser = `SELECT id, email, password_hash, full_name, role, active, last_login, created_at, updated_at FROM users`

// UserRepository stores accounts. Emails are kept lower-cased.
type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByEmail looks an account up by email. Unknown emails yield sql.ErrNoRows.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getBy(ctx, "email", strings.ToLower(strings.TrimSpace(email)))
}

// FindByID looks an account up by id. Unknown ids yield sql.ErrNoRows.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	return r.getBy(ctx, "id", id)
}

func (r *UserRepository) getBy(ctx context.Context, column, value string) (*models.User, error) {
	var u models.User
	query := r.db.Rebind(selectUser + ` WHERE ` + column + ` = ? LIMIT 1`)
	if err := r.db.GetContext(ctx, &u, query, value); err != nil {
		return nil, notFoundOr(err, "find user by "+column)
	}
	return &u, nil
}

// Create inserts an account, assigning id and timestamps. A taken email yields ErrDuplicate.
func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.UpdatedAt = time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = u.UpdatedAt
	}

	_, err := r.db.NamedExecContext(ctx, `INSERT INTO users (id, email, password_hash, full_name, role, active, created_at, updated_at)
		VALUES (:id, :email, :password_hash, :full_name, :role, :active, :created_at, :updated_at)`, u)
	switch {
	case isUniqueViolation(err):
		return ErrDuplicate
	case err != nil:
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// ListByRole returns the public summary of every active account holding role, by name.
func (r *UserRepository) ListByRole(ctx context.Context, role models.UserRole) ([]models.UserSummary, error) {
	query := r.db.Rebind(`SELECT id, email, full_name FROM users WHERE role = ? AND active = ? ORDER BY full_name ASC, id ASC`)
	out := []models.UserSummary{}
	if err := r.db.SelectContext(ctx, &out, query, role, true); err != nil {
		return nil, fmt.Errorf("list users by role: %w", err)
	}
	return out, nil
}

// UpdateLastLogin stamps a successful login.
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	query := r.db.Rebind(`UPDATE users SET last_login = ? WHERE id = ?`)
	if _, err := r.db.ExecContext(ctx, query, at, id); err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}
