package types

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"
)

type CreateLoanApplicationRequest struct {
	UserId      string `json:"user_id"`
	FullName    string `json:"full_name"`
	PhoneNumber string `json:"phone_number"`
	Amount      int64  `json:"amount"`
	Purpose     string `json:"purpose"`
}

func NewCreateLoanApplicationRequestFromContext(ctx echo.Context) (*CreateLoanApplicationRequest, error) {
	var body CreateLoanApplicationRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	body.UserId = strings.TrimSpace(body.UserId)
	body.FullName = strings.TrimSpace(body.FullName)
	body.PhoneNumber = strings.TrimSpace(body.PhoneNumber)
	body.Purpose = strings.TrimSpace(body.Purpose)

	return &body, nil
}

func (r *CreateLoanApplicationRequest) GetUserId() string {
	if r == nil {
		return ""
	}
	return r.UserId
}

func (r *CreateLoanApplicationRequest) GetFullName() string {
	if r == nil {
		return ""
	}
	return r.FullName
}

func (r *CreateLoanApplicationRequest) GetPhoneNumber() string {
	if r == nil {
		return ""
	}
	return r.PhoneNumber
}

func (r *CreateLoanApplicationRequest) GetAmount() int64 {
	if r == nil {
		return 0
	}
	return r.Amount
}

func (r *CreateLoanApplicationRequest) GetPurpose() string {
	if r == nil {
		return ""
	}
	return r.Purpose
}

func (r *CreateLoanApplicationRequest) Validate() error {
	if strings.TrimSpace(r.GetUserId()) == "" {
		return errors.New("user_id is required")
	}
	if strings.TrimSpace(r.GetFullName()) == "" {
		return errors.New("full_name is required")
	}
	if strings.TrimSpace(r.GetPhoneNumber()) == "" {
		return errors.New("phone_number is required")
	}
	if r.GetAmount() <= 0 {
		return errors.New("amount must be > 0")
	}
	if strings.TrimSpace(r.GetPurpose()) == "" {
		return errors.New("purpose is required")
	}
	return nil
}

type LoanApplication struct {
	Id              string `json:"id"`
	UserId          string `json:"user_id"`
	FullName        string `json:"full_name"`
	PhoneNumber     string `json:"phone_number"`
	Amount          int64  `json:"amount"`
	Purpose         string `json:"purpose"`
	Status          string `json:"status"`
	PaymentVerified bool   `json:"payment_verified"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at"`
}

type LoanApplicationEnvelopeResponse struct {
	LoanApplication *LoanApplication `json:"loan_application"`
}

type ListLoanApplicationsResponse struct {
	LoanApplications []*LoanApplication `json:"loan_applications"`
}
