package models

import "time"

// ReplyRole names who answered a review.
type ReplyRole string

const (
	ReplyByOwner ReplyRole = "owner"
	ReplyByAdmin ReplyRole = "admin"
)

// ReviewReply is the single public answer to a review.
type ReviewReply struct {
	Text      string    `json:"text"`
	Role      ReplyRole `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Review rates one finished appointment. An appointment is reviewed at most once.
type Review struct {
	ID            string       `json:"id"`
	BusinessID    string       `json:"business_id"`
	UserID        string       `json:"user_id"`
	AppointmentID string       `json:"appointment_id"`
	Rating        int          `json:"rating"`
	Comment       string       `json:"comment"`
	CreatedAt     time.Time    `json:"created_at"`
	Reply         *ReviewReply `json:"reply,omitempty"`
}

// CreateReviewRequest is the review payload.
type CreateReviewRequest struct {
	BusinessID    string `json:"business_id" validate:"required"`
	AppointmentID string `json:"appointment_id" validate:"required"`
	Rating        int    `json:"rating" validate:"required,min=1,max=5"`
	Comment       string `json:"comment" validate:"required,max=2000"`
}

// ReplyReviewRequest answers a review.
type ReplyReviewRequest struct {
	Text string `json:"text" validate:"required,max=2000"`
}

// ReviewEligibility tells a customer whether they can review a business, and for which appointment.
type ReviewEligibility struct {
	Eligible      bool    `json:"eligible"`
	AppointmentID *string `json:"appointment_id"`
}
