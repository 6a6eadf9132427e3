package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/booking-api/internal/models"
	"github.com/noah-isme/booking-api/internal/repository"
	appErrors "github.com/noah-isme/booking-api/pkg/errors"
)

type reviewStore interface {
	Create(ctx context.Context, review *models.Review) error
	FindByID(ctx context.Context, id string) (*models.Review, error)
	ListByBusiness(ctx context.Context, businessID string) ([]models.Review, error)
	ReviewedAppointments(ctx context.Context, userID, businessID string) (map[string]bool, error)
	SetReply(ctx context.Context, id string, reply models.ReviewReply) error
}

type customerAppointments interface {
	FindByID(ctx context.Context, id string) (*models.Appointment, error)
	ListByUser(ctx context.Context, userID string) ([]models.Appointment, error)
}

// ReviewService lets customers rate finished appointments and owners answer them.
type ReviewService struct {
	reviews      reviewStore
	appointments customerAppointments
	businesses   businessFinder
	validator    *validator.Validate
	logger       *zap.Logger
	now          func() time.Time
}

func NewReviewService(reviews reviewStore, appointments customerAppointments, businesses businessFinder, validate *validator.Validate, logger *zap.Logger) *ReviewService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ReviewService{reviews: reviews, appointments: appointments, businesses: businesses, validator: validate, logger: logger, now: time.Now}
}

// Create reviews one of the caller's finished appointments at req.BusinessID.
func (s *ReviewService) Create(ctx context.Context, claims *models.JWTClaims, req models.CreateReviewRequest) (*models.Review, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Invalid(err, "invalid review payload")
	}

	appt, err := s.appointments.FindByID(ctx, req.AppointmentID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, appErrors.Clone(appErrors.ErrNotFound, "appointment not found")
	case err != nil:
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to load appointment")
	}
	if appt.UserID != claims.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "appointment belongs to another customer")
	}
	if appt.BusinessID != req.BusinessID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "appointment belongs to another business")
	}
	if appt.DisplayStatusAt(s.now()) != models.DisplayFinished {
		return nil, appErrors.Clone(appErrors.ErrConflict, "only finished appointments can be reviewed")
	}

	review := &models.Review{
		BusinessID:    appt.BusinessID,
		UserID:        claims.UserID,
		AppointmentID: appt.ID,
		Rating:        req.Rating,
		Comment:       strings.TrimSpace(req.Comment),
	}
	switch err := s.reviews.Create(ctx, review); {
	case errors.Is(err, repository.ErrDuplicate):
		return nil, appErrors.Clone(appErrors.ErrConflict, "appointment already reviewed")
	case err != nil:
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to save review")
	}
	s.logger.Info("review created", zap.String("review_id", review.ID), zap.String("business_id", review.BusinessID))
	return review, nil
}

// ListByBusiness returns the public reviews of a business, newest first.
func (s *ReviewService) ListByBusiness(ctx context.Context, businessID string) ([]models.Review, error) {
	b, err := findBusiness(ctx, s.businesses, businessID)
	if err != nil {
		return nil, err
	}
	items, err := s.reviews.ListByBusiness(ctx, b.ID)
	if err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to list reviews")
	}
	return items, nil
}

// Eligibility reports the caller's most recent finished, unreviewed appointment at businessID.
func (s *ReviewService) Eligibility(ctx context.Context, userID, businessID string) (*models.ReviewEligibility, error) {
	b, err := findBusiness(ctx, s.businesses, businessID)
	if err != nil {
		return nil, err
	}
	appts, err := s.appointments.ListByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to list appointments")
	}
	reviewed, err := s.reviews.ReviewedAppointments(ctx, userID, b.ID)
	if err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to list reviews")
	}

	now := s.now()
	var latest *models.Appointment
	for i := range appts {
		a := &appts[i]
		if a.BusinessID != b.ID || reviewed[a.ID] || a.DisplayStatusAt(now) != models.DisplayFinished {
			continue
		}
		if latest == nil || a.AppointmentTime.After(latest.AppointmentTime) {
			latest = a
		}
	}
	if latest == nil {
		return &models.ReviewEligibility{}, nil
	}
	id := latest.ID
	return &models.ReviewEligibility{Eligible: true, AppointmentID: &id}, nil
}

// Reply answers a review as the business owner or an admin. A later reply replaces the earlier one.
func (s *ReviewService) Reply(ctx context.Context, id string, claims *models.JWTClaims, req models.ReplyReviewRequest) (*models.Review, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Invalid(err, "invalid reply payload")
	}
	review, err := s.reviews.FindByID(ctx, id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, appErrors.Clone(appErrors.ErrNotFound, "review not found")
	case err != nil:
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to load review")
	}
	if _, err := ownedBusiness(ctx, s.businesses, review.BusinessID, claims); err != nil {
		return nil, err
	}

	reply := models.ReviewReply{Text: strings.TrimSpace(req.Text), Role: models.ReplyByOwner, CreatedAt: s.now().UTC()}
	if claims.IsAdmin() {
		reply.Role = models.ReplyByAdmin
	}
	if err := s.reviews.SetReply(ctx, review.ID, reply); err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to save reply")
	}
	review.Reply = &reply
	return review, nil
}
