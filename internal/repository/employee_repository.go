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

const employeeColumns = `id, business_id, name, active, allowed_slots, created_at, updated_at`

// EmployeeRepository persists employees and their slot grants.
type EmployeeRepository struct {
	db *sqlx.DB
}

// NewEmployeeRepository constructs the repository.
func NewEmployeeRepository(db *sqlx.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// Create inserts an active employee.
func (r *EmployeeRepository) Create(ctx context.Context, e *models.Employee) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.AllowedSlots == nil {
		e.AllowedSlots = models.AllowedSlots{}
	}
	now := time.Now().UTC()
	e.CreatedAt, e.UpdatedAt = now, now

	const query = `INSERT INTO employees (` + employeeColumns + `) VALUES (:id, :business_id, :name, :active, :allowed_slots, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, e); err != nil {
		return fmt.Errorf("create employee: %w", err)
	}
	return nil
}

// FindByID returns an employee, active or not, or sql.ErrNoRows.
func (r *EmployeeRepository) FindByID(ctx context.Context, id string) (*models.Employee, error) {
	query := r.db.Rebind(`SELECT ` + employeeColumns + ` FROM employees WHERE id = ?`)
	var e models.Employee
	if err := r.db.GetContext(ctx, &e, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find employee: %w", err)
	}
	return &e, nil
}

// ListActiveByBusiness returns active employees ordered by name.
func (r *EmployeeRepository) ListActiveByBusiness(ctx context.Context, businessID string) ([]models.Employee, error) {
	query := r.db.Rebind(`SELECT ` + employeeColumns + ` FROM employees WHERE business_id = ? AND active = ? ORDER BY name ASC, id ASC`)
	out := []models.Employee{}
	if err := r.db.SelectContext(ctx, &out, query, businessID, true); err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	return out, nil
}

// UpdateAllowedSlots replaces the slot grants of an employee.
func (r *EmployeeRepository) UpdateAllowedSlots(ctx context.Context, id string, allowed models.AllowedSlots) error {
	query := r.db.Rebind(`UPDATE employees SET allowed_slots = ?, updated_at = ? WHERE id = ?`)
	if _, err := r.db.ExecContext(ctx, query, allowed, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("update allowed slots: %w", err)
	}
	return nil
}

// Deactivate soft-deletes an employee. Existing appointments keep referencing it.
func (r *EmployeeRepository) Deactivate(ctx context.Context, id string) error {
	query := r.db.Rebind(`UPDATE employees SET active = ?, updated_at = ? WHERE id = ?`)
	if _, err := r.db.ExecContext(ctx, query, false, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("deactivate employee: %w", err)
	}
	return nil
}
