package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/booking-api/internal/models"
)

const businessColumns = `id, owner_id, name, description, address, timezone, appointment_mode, status, created_at, updated_at`

// BusinessRepository persists business listings.
type BusinessRepository struct {
	db *sqlx.DB
}

// NewBusinessRepository constructs the repository.
func NewBusinessRepository(db *sqlx.DB) *BusinessRepository {
	return &BusinessRepository{db: db}
}

// Create inserts a business.
func (r *BusinessRepository) Create(ctx context.Context, b *models.Business) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	b.CreatedAt, b.UpdatedAt = now, now

	const query = `INSERT INTO businesses (` + businessColumns + `) VALUES (:id, :owner_id, :name, :description, :address, :timezone, :appointment_mode, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, b); err != nil {
		return fmt.Errorf("create business: %w", err)
	}
	return nil
}

// Update stores the mutable columns of b.
func (r *BusinessRepository) Update(ctx context.Context, b *models.Business) error {
	b.UpdatedAt = time.Now().UTC()
	const query = `UPDATE businesses SET name = :name, description = :description, address = :address, timezone = :timezone, appointment_mode = :appointment_mode, status = :status, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, b); err != nil {
		return fmt.Errorf("update business: %w", err)
	}
	return nil
}

// FindByID returns a business or sql.ErrNoRows.
func (r *BusinessRepository) FindByID(ctx context.Context, id string) (*models.Business, error) {
	query := r.db.Rebind(`SELECT ` + businessColumns + ` FROM businesses WHERE id = ?`)
	var b models.Business
	if err := r.db.GetContext(ctx, &b, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find business: %w", err)
	}
	return &b, nil
}

// ListByOwner returns the businesses of one owner, newest first.
func (r *BusinessRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Business, error) {
	query := r.db.Rebind(`SELECT ` + businessColumns + ` FROM businesses WHERE owner_id = ? ORDER BY created_at DESC`)
	out := []models.Business{}
	if err := r.db.SelectContext(ctx, &out, query, ownerID); err != nil {
		return nil, fmt.Errorf("list businesses by owner: %w", err)
	}
	return out, nil
}

// ListPublished returns every bookable business ordered by name.
func (r *BusinessRepository) ListPublished(ctx context.Context) ([]models.Business, error) {
	query := r.db.Rebind(`SELECT ` + businessColumns + ` FROM businesses WHERE status = ? ORDER BY name ASC, id ASC`)
	out := []models.Business{}
	if err := r.db.SelectContext(ctx, &out, query, models.BusinessPublished); err != nil {
		return nil, fmt.Errorf("list published businesses: %w", err)
	}
	return out, nil
}
