package entity

import "time"

const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
)

// ProviderMpesa is the only supported mobile-money channel.
const ProviderMpesa = "m-pesa"

type Payment struct {
	ID uint64

	ExternalReference string
	UserID            string
	LoanApplicationID *string

	Amount      int64
	PhoneNumber string
	Provider    string

	CheckoutRequestID *string

	Status string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TerminalStatus reports whether a payment status can no longer change.
func TerminalStatus(status string) bool {
	return status == PaymentStatusCompleted || status == PaymentStatusFailed
}
