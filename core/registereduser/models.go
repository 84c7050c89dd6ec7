package registereduser

import (
	"time"

	"github.com/coursebox/backend/core/store"
)

// statuses
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// SystemActor is recorded as the creator of self-service registrations.
const SystemActor = "system"

// RegisteredUser is one access request for an email. Several may exist for the same email; the
// latest one by created_date is authoritative.
type RegisteredUser struct {
	store.Record
	Email        string     `json:"email" validate:"required,email"`
	FullName     string     `json:"full_name"`
	Status       string     `json:"status" validate:"oneof=pending approved rejected"`
	RequestDate  time.Time  `json:"request_date"`
	ApprovalDate *time.Time `json:"approval_date"`
	Notes        string     `json:"notes"`
}
