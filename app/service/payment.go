package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/nyota-loans/ms-go-payments/app/entity"
	"github.com/nyota-loans/ms-go-payments/app/factory"
	"github.com/nyota-loans/ms-go-payments/app/provider"
	"github.com/nyota-loans/ms-go-payments/app/stream"
	"github.com/nyota-loans/ms-go-payments/config"
)

const (
	defaultBatchSize = int32(100)

	referencePrefix = "NYOTA"
)

type initiatePaymentRequest interface {
	GetAmount() int64
	GetPhoneNumber() string
	GetLoanApplicationId() string
	GetUserId() string
}

type paymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) error
	FindByExternalReference(ctx context.Context, externalReference string) (*entity.Payment, error)
	Finalize(ctx context.Context, externalReference, newStatus string, checkoutRequestID *string, now time.Time) error
	ListStalePending(ctx context.Context, cutoff time.Time, limit int32) ([]*entity.Payment, error)
}

type paymentEventRepository interface {
	Create(ctx context.Context, event *entity.PaymentEvent) error
}

type loanApplicationRepository interface {
	Create(ctx context.Context, application *entity.LoanApplication) error
	FindByID(ctx context.Context, id string) (*entity.LoanApplication, error)
	ListByUser(ctx context.Context, userID string, limit int32) ([]*entity.LoanApplication, error)
	MarkPaymentVerified(ctx context.Context, id string, now time.Time) error
}

type statusPublisher interface {
	Publish(update stream.StatusUpdate)
}

type PaymentService struct {
	paymentRepo paymentRepository
	eventRepo   paymentEventRepository
	loanRepo    loanApplicationRepository
	gateway     provider.Provider
	hub         statusPublisher
	paymentsCfg config.PaymentsConfig
	logger      logrus.FieldLogger
}

func NewPaymentService(
	paymentRepo paymentRepository,
	eventRepo paymentEventRepository,
	loanRepo loanApplicationRepository,
	gateway provider.Provider,
	hub statusPublisher,
	paymentsCfg config.PaymentsConfig,
) *PaymentService {
	return &PaymentService{
		paymentRepo: paymentRepo,
		eventRepo:   eventRepo,
		loanRepo:    loanRepo,
		gateway:     gateway,
		hub:         hub,
		paymentsCfg: paymentsCfg,
		logger:      factory.NewModuleLogger("payments-service"),
	}
}

// InitiatePayment triggers an on-device STK push and records the attempt.
// The external reference is generated before the gateway call so the record
// can be correlated even when the gateway response is slow. A persistence
// failure after gateway acceptance is logged but does not fail the response:
// the push is already on its way to the payer's phone.
func (s *PaymentService) InitiatePayment(ctx context.Context, req initiatePaymentRequest) (*entity.Payment, error) {
	userID := strings.TrimSpace(req.GetUserId())
	if req.GetAmount() <= 0 || strings.TrimSpace(req.GetPhoneNumber()) == "" || userID == "" {
		return nil, ErrInvalidRequest
	}

	phoneNumber, err := NormalizePhoneNumber(req.GetPhoneNumber())
	if err != nil {
		return nil, err
	}

	externalReference := newExternalReference()
	callbackURL := joinCallbackURL(s.paymentsCfg.CallbackBaseURL)

	output, err := s.gateway.InitiateSTKPush(ctx, &provider.STKPushInput{
		ExternalReference: externalReference,
		Amount:            req.GetAmount(),
		PhoneNumber:       phoneNumber,
		CustomerName:      userID,
		CallbackURL:       callbackURL,
	})
	if err != nil {
		if errors.Is(err, provider.ErrNotConfigured) {
			return nil, ErrNotConfigured
		}
		return nil, err
	}

	now := time.Now().UTC()
	payment := &entity.Payment{
		ExternalReference: externalReference,
		UserID:            userID,
		LoanApplicationID: normalizeOptionalString(req.GetLoanApplicationId()),
		Amount:            req.GetAmount(),
		PhoneNumber:       phoneNumber,
		Provider:          entity.ProviderMpesa,
		CheckoutRequestID: output.CheckoutRequestID,
		Status:            entity.PaymentStatusPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		s.logger.WithError(err).
			WithField("external_reference", externalReference).
			Error("Failed to store payment record after gateway acceptance")
		return payment, nil
	}

	_ = s.eventRepo.Create(ctx, &entity.PaymentEvent{
		PaymentID: payment.ID,
		EventType: "stk_push_initiated",
		NewStatus: payment.Status,
		CreatedAt: now,
	})

	return payment, nil
}

func (s *PaymentService) GetPayment(ctx context.Context, externalReference string) (*entity.Payment, error) {
	payment, err := s.paymentRepo.FindByExternalReference(ctx, strings.TrimSpace(externalReference))
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, ErrPaymentNotFound
	}
	return payment, nil
}

func (s *PaymentService) batchSize() int32 {
	if s.paymentsCfg.JobBatchSize > 0 {
		return s.paymentsCfg.JobBatchSize
	}
	return defaultBatchSize
}

// newExternalReference builds the correlation handle for the whole flow:
// prefix + millisecond timestamp + random suffix. Unguessable and
// collision-resistant, not required to be sortable.
func newExternalReference() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
	return fmt.Sprintf("%s-%d-%s", referencePrefix, time.Now().UnixMilli(), suffix)
}

func joinCallbackURL(baseURL string) string {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return ""
	}
	return baseURL + "/payments/callback"
}

func normalizeOptionalString(v string) *string {
	trimmed := strings.TrimSpace(v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
