package types

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"
)

type InitiateStkPushRequest struct {
	Amount            int64  `json:"amount"`
	PhoneNumber       string `json:"phone_number"`
	LoanApplicationId string `json:"loan_application_id,omitempty"`
	UserId            string `json:"user_id"`
}

func NewInitiateStkPushRequestFromContext(ctx echo.Context) (*InitiateStkPushRequest, error) {
	var body InitiateStkPushRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	body.PhoneNumber = strings.TrimSpace(body.PhoneNumber)
	body.LoanApplicationId = strings.TrimSpace(body.LoanApplicationId)
	body.UserId = strings.TrimSpace(body.UserId)

	return &body, nil
}

func (r *InitiateStkPushRequest) GetAmount() int64 {
	if r == nil {
		return 0
	}
	return r.Amount
}

func (r *InitiateStkPushRequest) GetPhoneNumber() string {
	if r == nil {
		return ""
	}
	return r.PhoneNumber
}

func (r *InitiateStkPushRequest) GetLoanApplicationId() string {
	if r == nil {
		return ""
	}
	return r.LoanApplicationId
}

func (r *InitiateStkPushRequest) GetUserId() string {
	if r == nil {
		return ""
	}
	return r.UserId
}

func (r *InitiateStkPushRequest) Validate() error {
	if r.GetAmount() <= 0 {
		return errors.New("amount is required")
	}
	if strings.TrimSpace(r.GetPhoneNumber()) == "" {
		return errors.New("phone_number is required")
	}
	if strings.TrimSpace(r.GetUserId()) == "" {
		return errors.New("user_id is required")
	}
	return nil
}

type GetPaymentRequest struct {
	ExternalReference string
}

func NewGetPaymentRequestFromContext(ctx echo.Context) (*GetPaymentRequest, error) {
	return &GetPaymentRequest{ExternalReference: strings.TrimSpace(ctx.Param("reference"))}, nil
}

func (r *GetPaymentRequest) Validate() error {
	if r.ExternalReference == "" {
		return errors.New("external reference is required")
	}
	return nil
}

type Payment struct {
	ExternalReference string `json:"external_reference"`
	UserId            string `json:"user_id"`
	LoanApplicationId string `json:"loan_application_id,omitempty"`
	Amount            int64  `json:"amount"`
	PhoneNumber       string `json:"phone_number"`
	Provider          string `json:"provider"`
	CheckoutRequestId string `json:"checkout_request_id,omitempty"`
	Status            string `json:"status"`
	CreatedAt         string `json:"created_at"`
	UpdatedAt         string `json:"updated_at"`
}

type StkPushResponse struct {
	Success           bool   `json:"success"`
	Message           string `json:"message"`
	ExternalReference string `json:"external_reference"`
	CheckoutRequestId string `json:"checkout_request_id,omitempty"`
}

type CallbackResponse struct {
	Success bool   `json:"success"`
	Status  string `json:"status,omitempty"`
	Message string `json:"message,omitempty"`
}

type PaymentEnvelopeResponse struct {
	Payment *Payment `json:"payment"`
}

type FeeTier struct {
	Amount int64 `json:"amount"`
	Fee    int64 `json:"fee"`
}

type FeeScheduleResponse struct {
	Fees []FeeTier `json:"fees"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
