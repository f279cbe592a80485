package service

import (
	"context"
	"errors"
	"testing"

	"github.com/nyota-loans/ms-go-payments/app/entity"
	"github.com/nyota-loans/ms-go-payments/app/types"
)

func TestCreateLoanApplicationStoresSubmittedRecord(t *testing.T) {
	loanRepo := newServiceLoanRepo()
	svc := NewLoanService(loanRepo)

	application, err := svc.CreateLoanApplication(context.Background(), &types.CreateLoanApplicationRequest{
		UserId:      "user-1",
		FullName:    "Wanjiku Kamau",
		PhoneNumber: "0712345678",
		Amount:      10000,
		Purpose:     "stock for kiosk",
	})
	if err != nil {
		t.Fatalf("create loan application failed: %v", err)
	}

	if application.ID == "" {
		t.Fatal("expected generated application id")
	}
	if application.Status != entity.LoanStatusSubmitted {
		t.Fatalf("expected submitted status, got %q", application.Status)
	}
	if application.PaymentVerified {
		t.Fatal("new application must not be payment-verified")
	}
	if application.PhoneNumber != "254712345678" {
		t.Fatalf("expected normalized phone, got %q", application.PhoneNumber)
	}
	if _, ok := loanRepo.applications[application.ID]; !ok {
		t.Fatal("expected stored application record")
	}
}

func TestCreateLoanApplicationValidatesInput(t *testing.T) {
	svc := NewLoanService(newServiceLoanRepo())

	cases := []*types.CreateLoanApplicationRequest{
		{FullName: "Wanjiku Kamau", PhoneNumber: "0712345678", Amount: 10000, Purpose: "stock"},
		{UserId: "user-1", PhoneNumber: "0712345678", Amount: 10000, Purpose: "stock"},
		{UserId: "user-1", FullName: "Wanjiku Kamau", PhoneNumber: "0712345678", Purpose: "stock"},
		{UserId: "user-1", FullName: "Wanjiku Kamau", PhoneNumber: "0712345678", Amount: 10000},
	}
	for _, req := range cases {
		if _, err := svc.CreateLoanApplication(context.Background(), req); !errors.Is(err, ErrInvalidRequest) {
			t.Fatalf("request %+v: expected ErrInvalidRequest, got %v", req, err)
		}
	}
}

func TestGetLoanApplicationNotFound(t *testing.T) {
	svc := NewLoanService(newServiceLoanRepo())

	_, err := svc.GetLoanApplication(context.Background(), "missing")
	if !errors.Is(err, ErrLoanNotFound) {
		t.Fatalf("expected ErrLoanNotFound, got %v", err)
	}
}

func TestListLoanApplicationsRequiresUser(t *testing.T) {
	loanRepo := newServiceLoanRepo()
	loanRepo.applications["loan-1"] = &entity.LoanApplication{ID: "loan-1", UserID: "user-1"}
	loanRepo.applications["loan-2"] = &entity.LoanApplication{ID: "loan-2", UserID: "user-2"}
	svc := NewLoanService(loanRepo)

	if _, err := svc.ListLoanApplications(context.Background(), "", 0); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for empty user, got %v", err)
	}

	items, err := svc.ListLoanApplications(context.Background(), "user-1", 0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(items) != 1 || items[0].ID != "loan-1" {
		t.Fatalf("expected only user-1 applications, got %+v", items)
	}
}
