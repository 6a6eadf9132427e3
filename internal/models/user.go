package models

import "time"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleUser  UserRole = "USER"
	RoleOwner UserRole = "OWNER"
	RoleAdmin UserRole = "ADMIN"
)

// User represents an application user stored in the users table.
type User struct {
	ID           string     `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	FullName     string     `db:"full_name" json:"full_name"`
	Role         UserRole   `db:"role" json:"role"`
	Active       bool       `db:"active" json:"active"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// RegisterRequest is the self sign-up payload. New accounts always start as USER.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	FullName string `json:"full_name" validate:"required,max=120"`
}

// UserSummary is the public slice of a user shown to business owners.
type UserSummary struct {
	ID       string `db:"id" json:"id"`
	Email    string `db:"email" json:"email"`
	FullName string `db:"full_name" json:"full_name"`
}

// OwnerRequestStatus tracks an application to become a business owner.
type OwnerRequestStatus string

const (
	OwnerRequestPending  OwnerRequestStatus = "pending"
	OwnerRequestApproved OwnerRequestStatus = "approved"
	OwnerRequestRejected OwnerRequestStatus = "rejected"
)

// OwnerRequest is a user's application for the OWNER role. Each user has at most one;
// a rejected request may be resubmitted.
type OwnerRequest struct {
	UserID              string             `db:"user_id" json:"user_id"`
	BusinessName        string             `db:"business_name" json:"business_name"`
	BusinessDescription string             `db:"business_description" json:"business_description"`
	Address             string             `db:"address" json:"address"`
	LogoURL             string             `db:"logo_url" json:"logo_url"`
	Status              OwnerRequestStatus `db:"status" json:"status"`
	CreatedAt           time.Time          `db:"created_at" json:"created_at"`
	DecidedAt           *time.Time         `db:"decided_at" json:"decided_at,omitempty"`
}

// OwnerRequestWithUser is the admin listing row.
type OwnerRequestWithUser struct {
	OwnerRequest
	User UserSummary `db:"user" json:"user"`
}

// OwnerRequestPayload is submitted by a USER applying for the OWNER role.
type OwnerRequestPayload struct {
	BusinessName        string `json:"business_name" validate:"required,max=120"`
	BusinessDescription string `json:"business_description" validate:"max=2000"`
	Address             string `json:"address" validate:"max=255"`
	LogoURL             string `json:"logo_url" validate:"omitempty,url,max=500"`
}

// PublicProfile is what anyone may see about an account, e.g. next to a review.
type PublicProfile struct {
	ID       string `db:"id" json:"id"`
	FullName string `db:"full_name" json:"full_name"`
}
