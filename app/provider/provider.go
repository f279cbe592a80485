package provider

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned when gateway credentials are missing from the
// environment. Callers translate it to an operator-facing configuration error.
var ErrNotConfigured = errors.New("payment gateway is not configured")

// GatewayError carries the gateway's own rejection message so it can be
// surfaced to the payer.
type GatewayError struct {
	StatusCode int
	Message    string
}

func (e *GatewayError) Error() string {
	if e.Message != "" {
		return "gateway rejected payment: " + e.Message
	}
	return "gateway rejected payment"
}

type STKPushInput struct {
	ExternalReference string
	Amount            int64
	PhoneNumber       string
	CustomerName      string
	CallbackURL       string
}

type STKPushOutput struct {
	CheckoutRequestID *string
}

// CallbackEvent is the normalized form of a gateway webhook payload.
type CallbackEvent struct {
	ExternalReference string
	ResultCode        string
	Status            string
	CheckoutRequestID *string
}

type Provider interface {
	Name() string
	InitiateSTKPush(ctx context.Context, input *STKPushInput) (*STKPushOutput, error)
	ParseCallback(payload []byte) (*CallbackEvent, error)
	QueryTransactionStatus(ctx context.Context, externalReference string) (string, error)
}
