package service

import "sort"

// savingFees maps a loan amount to the savings/activation fee collected
// before an application proceeds to review.
var savingFees = map[int64]int64{
	2000:  100,
	3500:  150,
	5000:  200,
	6500:  300,
	8000:  400,
	10000: 500,
	12500: 600,
	14000: 800,
	16000: 960,
	20000: 1200,
	25000: 1400,
	30000: 1800,
	35000: 2000,
	50000: 2400,
}

// ActivationFeeFor returns the fee for a loan amount, or 0 when the amount
// is not a known tier.
func ActivationFeeFor(amount int64) int64 {
	return savingFees[amount]
}

// FeeTier is one row of the published fee schedule.
type FeeTier struct {
	Amount int64 `json:"amount"`
	Fee    int64 `json:"fee"`
}

// FeeSchedule lists all tiers in ascending amount order.
func FeeSchedule() []FeeTier {
	tiers := make([]FeeTier, 0, len(savingFees))
	for amount, fee := range savingFees {
		tiers = append(tiers, FeeTier{Amount: amount, Fee: fee})
	}
	sort.Slice(tiers, func(i, j int) bool { return tiers[i].Amount < tiers[j].Amount })
	return tiers
}
