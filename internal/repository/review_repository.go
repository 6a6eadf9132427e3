package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/booking-api/internal/models"
)

const reviewColumns = `id, business_id, user_id, appointment_id, rating, comment, reply_text, reply_role, replied_at, created_at`

type reviewRow struct {
	ID            string     `db:"id"`
	BusinessID    string     `db:"business_id"`
	UserID        string     `db:"user_id"`
	AppointmentID string     `db:"appointment_id"`
	Rating        int        `db:"rating"`
	Comment       string     `db:"comment"`
	ReplyText     *string    `db:"reply_text"`
	ReplyRole     *string    `db:"reply_role"`
	RepliedAt     *time.Time `db:"replied_at"`
	CreatedAt     time.Time  `db:"created_at"`
}

func (r reviewRow) review() models.Review {
	out := models.Review{
		ID:            r.ID,
		BusinessID:    r.BusinessID,
		UserID:        r.UserID,
		AppointmentID: r.AppointmentID,
		Rating:        r.Rating,
		Comment:       r.Comment,
		CreatedAt:     r.CreatedAt,
	}
	if r.ReplyText != nil {
		reply := &models.ReviewReply{Text: *r.ReplyText}
		if r.ReplyRole != nil {
			reply.Role = models.ReplyRole(*r.ReplyRole)
		}
		if r.RepliedAt != nil {
			reply.CreatedAt = *r.RepliedAt
		}
		out.Reply = reply
	}
	return out
}

// ReviewRepository stores customer reviews. appointment_id is unique, so an appointment
// is reviewed at most once.
type ReviewRepository struct {
	db *sqlx.DB
}

func NewReviewRepository(db *sqlx.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create inserts a review. A second review of the same appointment yields ErrDuplicate.
func (r *ReviewRepository) Create(ctx context.Context, review *models.Review) error {
	if review.ID == "" {
		review.ID = uuid.NewString()
	}
	review.CreatedAt = time.Now().UTC()
	review.Reply = nil

	query := r.db.Rebind(`INSERT INTO reviews (id, business_id, user_id, appointment_id, rating, comment, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	_, err := r.db.ExecContext(ctx, query, review.ID, review.BusinessID, review.UserID, review.AppointmentID, review.Rating, review.Comment, review.CreatedAt)
	switch {
	case isUniqueViolation(err):
		return ErrDuplicate
	case err != nil:
		return fmt.Errorf("create review: %w", err)
	}
	return nil
}

// FindByID returns a review or sql.ErrNoRows.
func (r *ReviewRepository) FindByID(ctx context.Context, id string) (*models.Review, error) {
	var row reviewRow
	query := r.db.Rebind(`SELECT ` + reviewColumns + ` FROM reviews WHERE id = ?`)
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, notFoundOr(err, "find review")
	}
	review := row.review()
	return &review, nil
}

// ListByBusiness returns a business's reviews, newest first.
func (r *ReviewRepository) ListByBusiness(ctx context.Context, businessID string) ([]models.Review, error) {
	var rows []reviewRow
	query := r.db.Rebind(`SELECT ` + reviewColumns + ` FROM reviews WHERE business_id = ? ORDER BY created_at DESC, id ASC`)
	if err := r.db.SelectContext(ctx, &rows, query, businessID); err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	out := make([]models.Review, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.review())
	}
	return out, nil
}

// ReviewedAppointments returns the ids of the user's appointments at businessID that
// already carry a review.
func (r *ReviewRepository) ReviewedAppointments(ctx context.Context, userID, businessID string) (map[string]bool, error) {
	var ids []string
	query := r.db.Rebind(`SELECT appointment_id FROM reviews WHERE user_id = ? AND business_id = ?`)
	if err := r.db.SelectContext(ctx, &ids, query, userID, businessID); err != nil {
		return nil, fmt.Errorf("list reviewed appointments: %w", err)
	}
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

// SetReply stores or replaces the reply of a review. Unknown ids yield sql.ErrNoRows.
func (r *ReviewRepository) SetReply(ctx context.Context, id string, reply models.ReviewReply) error {
	query := r.db.Rebind(`UPDATE reviews SET reply_text = ?, reply_role = ?, replied_at = ? WHERE id = ?`)
	res, err := r.db.ExecContext(ctx, query, reply.Text, string(reply.Role), reply.CreatedAt.UTC(), id)
	if err != nil {
		return fmt.Errorf("reply to review: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reply to review: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
