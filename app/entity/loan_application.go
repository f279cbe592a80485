package entity

import "time"

const (
	LoanStatusSubmitted   = "submitted"
	LoanStatusUnderReview = "under_review"
	LoanStatusApproved    = "approved"
	LoanStatusRejected    = "rejected"
)

type LoanApplication struct {
	ID     string
	UserID string

	FullName    string
	PhoneNumber string
	Amount      int64
	Purpose     string

	Status          string
	PaymentVerified bool

	CreatedAt time.Time
	UpdatedAt time.Time
}
