package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/booking-api/internal/models"
)

const ownerRequestColumns = `user_id, business_name, business_description, address, logo_url, status, created_at, decided_at`

// OwnerRequestRepository stores applications for the OWNER role, one row per user.
type OwnerRequestRepository struct {
	db *sqlx.DB
}

func NewOwnerRequestRepository(db *sqlx.DB) *OwnerRequestRepository {
	return &OwnerRequestRepository{db: db}
}

// Submit stores a pending request. A user whose previous request was rejected may apply
// again; a pending or approved request yields ErrDuplicate.
func (r *OwnerRequestRepository) Submit(ctx context.Context, req *models.OwnerRequest) error {
	req.Status = models.OwnerRequestPending
	req.CreatedAt = time.Now().UTC()
	req.DecidedAt = nil

	query, args, err := r.db.BindNamed(`INSERT INTO owner_requests (`+ownerRequestColumns+`)
		VALUES (:user_id, :business_name, :business_description, :address, :logo_url, :status, :created_at, :decided_at)
		ON CONFLICT (user_id) DO UPDATE SET
			business_name = excluded.business_name,
			business_description = excluded.business_description,
			address = excluded.address,
			logo_url = excluded.logo_url,
			status = excluded.status,
			created_at = excluded.created_at,
			decided_at = NULL
		WHERE owner_requests.status = 'rejected'`, req)
	if err != nil {
		return fmt.Errorf("bind owner request: %w", err)
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("submit owner request: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("submit owner request: %w", err)
	}
	if n == 0 {
		return ErrDuplicate
	}
	return nil
}

// FindByUser returns the user's request or sql.ErrNoRows.
func (r *OwnerRequestRepository) FindByUser(ctx context.Context, userID string) (*models.OwnerRequest, error) {
	var req models.OwnerRequest
	query := r.db.Rebind(`SELECT ` + ownerRequestColumns + ` FROM owner_requests WHERE user_id = ?`)
	if err := r.db.GetContext(ctx, &req, query, userID); err != nil {
		return nil, notFoundOr(err, "find owner request")
	}
	return &req, nil
}

// List returns requests with their applicant, oldest first. An empty status lists all.
func (r *OwnerRequestRepository) List(ctx context.Context, status models.OwnerRequestStatus) ([]models.OwnerRequestWithUser, error) {
	query := `SELECT o.user_id, o.business_name, o.business_description, o.address, o.logo_url, o.status, o.created_at, o.decided_at,
		u.id AS "user.id", u.email AS "user.email", u.full_name AS "user.full_name"
		FROM owner_requests o JOIN users u ON u.id = o.user_id`
	var args []interface{}
	if status != "" {
		query += ` WHERE o.status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY o.created_at ASC, o.user_id ASC`

	out := []models.OwnerRequestWithUser{}
	if err := r.db.SelectContext(ctx, &out, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list owner requests: %w", err)
	}
	return out, nil
}

// Approve moves a pending request to approved and promotes its USER to OWNER in one
// transaction. It reports false when there is no pending request.
func (r *OwnerRequestRepository) Approve(ctx context.Context, userID string, at time.Time) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin approve tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ok, err := decide(ctx, tx, userID, models.OwnerRequestApproved, at)
	if err != nil || !ok {
		return false, err
	}
	promote := tx.Rebind(`UPDATE users SET role = ?, updated_at = ? WHERE id = ? AND role = ?`)
	if _, err := tx.ExecContext(ctx, promote, models.RoleOwner, at.UTC(), userID, models.RoleUser); err != nil {
		return false, fmt.Errorf("promote owner: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit approve: %w", err)
	}
	return true, nil
}

// Reject closes a pending request. It reports false when there is no pending request.
func (r *OwnerRequestRepository) Reject(ctx context.Context, userID string, at time.Time) (bool, error) {
	return decide(ctx, r.db, userID, models.OwnerRequestRejected, at)
}

func decide(ctx context.Context, q sqlx.ExtContext, userID string, to models.OwnerRequestStatus, at time.Time) (bool, error) {
	query := q.Rebind(`UPDATE owner_requests SET status = ?, decided_at = ? WHERE user_id = ? AND status = ?`)
	res, err := q.ExecContext(ctx, query, to, at.UTC(), userID, models.OwnerRequestPending)
	if err != nil {
		return false, fmt.Errorf("decide owner request: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("decide owner request: %w", err)
	}
	return n == 1, nil
}
