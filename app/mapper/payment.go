package mapper

import (
	"time"

	"github.com/nyota-loans/ms-go-payments/app/entity"
	"github.com/nyota-loans/ms-go-payments/app/service"
	"github.com/nyota-loans/ms-go-payments/app/types"
)

func PaymentToResponse(item *entity.Payment) *types.Payment {
	if item == nil {
		return nil
	}

	return &types.Payment{
		ExternalReference: item.ExternalReference,
		UserId:            item.UserID,
		LoanApplicationId: derefString(item.LoanApplicationID),
		Amount:            item.Amount,
		PhoneNumber:       item.PhoneNumber,
		Provider:          item.Provider,
		CheckoutRequestId: derefString(item.CheckoutRequestID),
		Status:            item.Status,
		CreatedAt:         item.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:         item.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func LoanApplicationToResponse(item *entity.LoanApplication) *types.LoanApplication {
	if item == nil {
		return nil
	}

	return &types.LoanApplication{
		Id:              item.ID,
		UserId:          item.UserID,
		FullName:        item.FullName,
		PhoneNumber:     item.PhoneNumber,
		Amount:          item.Amount,
		Purpose:         item.Purpose,
		Status:          item.Status,
		PaymentVerified: item.PaymentVerified,
		CreatedAt:       item.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:       item.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func LoanApplicationsToResponse(items []*entity.LoanApplication) []*types.LoanApplication {
	result := make([]*types.LoanApplication, 0, len(items))
	for _, item := range items {
		result = append(result, LoanApplicationToResponse(item))
	}
	return result
}

func FeeScheduleToResponse(tiers []service.FeeTier) *types.FeeScheduleResponse {
	fees := make([]types.FeeTier, 0, len(tiers))
	for _, tier := range tiers {
		fees = append(fees, types.FeeTier{Amount: tier.Amount, Fee: tier.Fee})
	}
	return &types.FeeScheduleResponse{Fees: fees}
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
