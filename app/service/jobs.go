package service

import (
	"context"
	"time"

	"github.com/nyota-loans/ms-go-payments/app/entity"
	"github.com/nyota-loans/ms-go-payments/app/repository"
	"github.com/nyota-loans/ms-go-payments/app/stream"
)

// RunReconcileBatch sweeps stale pending payments and applies the gateway's
// authoritative transaction status through the same guarded finalization the
// callback path uses. It covers callbacks the gateway dropped or that we
// failed to process.
func (s *PaymentService) RunReconcileBatch(ctx context.Context) error {
	now := time.Now().UTC()
	cutoff := now.Add(-s.paymentsCfg.ReconcileStaleAfter)
	items, err := s.paymentRepo.ListStalePending(ctx, cutoff, s.batchSize())
	if err != nil {
		return err
	}

	var firstErr error
	for _, payment := range items {
		if payment == nil {
			continue
		}

		status, err := s.gateway.QueryTransactionStatus(ctx, payment.ExternalReference)
		if err != nil {
			firstErr = keepFirstErr(firstErr, err)
			continue
		}
		if !entity.TerminalStatus(status) {
			continue
		}

		err = s.paymentRepo.Finalize(ctx, payment.ExternalReference, status, nil, now)
		if err != nil {
			// A callback may have landed since the list query.
			if err == repository.ErrPaymentFinalized {
				continue
			}
			firstErr = keepFirstErr(firstErr, err)
			continue
		}

		oldStatus := entity.PaymentStatusPending
		_ = s.eventRepo.Create(ctx, &entity.PaymentEvent{
			PaymentID: payment.ID,
			EventType: "payment_reconciled",
			OldStatus: &oldStatus,
			NewStatus: status,
			CreatedAt: now,
		})

		if status == entity.PaymentStatusCompleted && payment.LoanApplicationID != nil {
			if err := s.loanRepo.MarkPaymentVerified(ctx, *payment.LoanApplicationID, now); err != nil {
				s.logger.WithError(err).
					WithField("loan_application_id", *payment.LoanApplicationID).
					Error("Failed to mark loan application payment-verified")
			}
		}

		s.hub.Publish(stream.StatusUpdate{
			ExternalReference: payment.ExternalReference,
			Status:            status,
		})
	}

	return firstErr
}

func keepFirstErr(current, candidate error) error {
	if current != nil {
		return current
	}
	return candidate
}
