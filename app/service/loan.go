package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nyota-loans/ms-go-payments/app/entity"
)

const defaultLoanListLimit = int32(50)

type createLoanApplicationRequest interface {
	GetUserId() string
	GetFullName() string
	GetPhoneNumber() string
	GetAmount() int64
	GetPurpose() string
}

type LoanService struct {
	loanRepo loanApplicationRepository
}

func NewLoanService(loanRepo loanApplicationRepository) *LoanService {
	return &LoanService{loanRepo: loanRepo}
}

func (s *LoanService) CreateLoanApplication(ctx context.Context, req createLoanApplicationRequest) (*entity.LoanApplication, error) {
	userID := strings.TrimSpace(req.GetUserId())
	fullName := strings.TrimSpace(req.GetFullName())
	purpose := strings.TrimSpace(req.GetPurpose())
	if userID == "" || fullName == "" || purpose == "" || req.GetAmount() <= 0 {
		return nil, ErrInvalidRequest
	}

	phoneNumber, err := NormalizePhoneNumber(req.GetPhoneNumber())
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	application := &entity.LoanApplication{
		ID:              uuid.NewString(),
		UserID:          userID,
		FullName:        fullName,
		PhoneNumber:     phoneNumber,
		Amount:          req.GetAmount(),
		Purpose:         purpose,
		Status:          entity.LoanStatusSubmitted,
		PaymentVerified: false,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.loanRepo.Create(ctx, application); err != nil {
		return nil, err
	}

	return application, nil
}

func (s *LoanService) GetLoanApplication(ctx context.Context, id string) (*entity.LoanApplication, error) {
	application, err := s.loanRepo.FindByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}
	if application == nil {
		return nil, ErrLoanNotFound
	}
	return application, nil
}

func (s *LoanService) ListLoanApplications(ctx context.Context, userID string, limit int32) ([]*entity.LoanApplication, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrInvalidRequest
	}
	if limit <= 0 {
		limit = defaultLoanListLimit
	}
	return s.loanRepo.ListByUser(ctx, userID, limit)
}
