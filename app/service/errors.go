package service

import "errors"

var (
	ErrInvalidRequest     = errors.New("invalid request")
	ErrInvalidPhoneNumber = errors.New("invalid phone number")
	ErrNotConfigured      = errors.New("payment service not configured")
	ErrPaymentNotFound    = errors.New("payment not found")
	ErrLoanNotFound       = errors.New("loan application not found")
	ErrCallbackUnmatched  = errors.New("callback could not be matched to a payment")
)
