package service

import (
	"context"
	"errors"
	"time"

	"github.com/nyota-loans/ms-go-payments/app/entity"
	"github.com/nyota-loans/ms-go-payments/app/provider"
	"github.com/nyota-loans/ms-go-payments/app/repository"
	"github.com/nyota-loans/ms-go-payments/app/stream"
)

// HandleGatewayCallback applies a gateway webhook to exactly one payment
// record and, for a completed payment tied to a loan application, cascades
// the payment-verified flag onto that application. Returns the payment's
// resulting status.
//
// A payload without an extractable reference, or with a reference we never
// issued, yields ErrCallbackUnmatched; the controller answers those with
// HTTP 200 so the gateway stops retrying a callback it will never send
// correctly. A payment that already holds a terminal status is left as-is.
func (s *PaymentService) HandleGatewayCallback(ctx context.Context, payload []byte) (string, error) {
	event, err := s.gateway.ParseCallback(payload)
	if err != nil {
		if errors.Is(err, provider.ErrNoExternalReference) {
			s.logger.Warn("Gateway callback carried no external reference")
			return "", ErrCallbackUnmatched
		}
		return "", err
	}

	now := time.Now().UTC()
	err = s.paymentRepo.Finalize(ctx, event.ExternalReference, event.Status, event.CheckoutRequestID, now)
	switch {
	case errors.Is(err, repository.ErrPaymentNotFound):
		s.logger.WithField("external_reference", event.ExternalReference).
			Warn("Gateway callback for unknown payment")
		return "", ErrCallbackUnmatched
	case errors.Is(err, repository.ErrPaymentFinalized):
		// Duplicate or out-of-order delivery; report the settled status.
		payment, findErr := s.paymentRepo.FindByExternalReference(ctx, event.ExternalReference)
		if findErr != nil {
			return "", findErr
		}
		if payment == nil {
			return "", ErrCallbackUnmatched
		}
		return payment.Status, nil
	case err != nil:
		return "", err
	}

	payment, err := s.paymentRepo.FindByExternalReference(ctx, event.ExternalReference)
	if err != nil {
		return "", err
	}
	if payment == nil {
		return "", ErrCallbackUnmatched
	}

	oldStatus := entity.PaymentStatusPending
	payloadJSON := string(payload)
	_ = s.eventRepo.Create(ctx, &entity.PaymentEvent{
		PaymentID:   payment.ID,
		EventType:   "gateway_callback",
		OldStatus:   &oldStatus,
		NewStatus:   event.Status,
		PayloadJSON: &payloadJSON,
		CreatedAt:   now,
	})

	if event.Status == entity.PaymentStatusCompleted && payment.LoanApplicationID != nil {
		// Best effort: the payment is settled either way.
		if err := s.loanRepo.MarkPaymentVerified(ctx, *payment.LoanApplicationID, now); err != nil {
			s.logger.WithError(err).
				WithField("loan_application_id", *payment.LoanApplicationID).
				Error("Failed to mark loan application payment-verified")
		}
	}

	s.hub.Publish(stream.StatusUpdate{
		ExternalReference: event.ExternalReference,
		Status:            event.Status,
	})

	return event.Status, nil
}
