package domain

import "github.com/shopspring/decimal"

// Tier classifies an affiliate by cumulative paid earnings. It is derived on
// every dashboard read and only lazily synced to the stored user row.
type Tier string

const (
	TierBronze   Tier = "bronze"
	TierSilver   Tier = "silver"
	TierGold     Tier = "gold"
	TierPlatinum Tier = "platinum"
)

// tierBands holds the lower bound of each tier, ascending. Lower bounds are
// inclusive: exactly 500.00 of paid earnings is Silver, 499.99 is Bronze.
var tierBands = []struct {
	tier  Tier
	floor decimal.Decimal
}{
	{TierBronze, decimal.Zero},
	{TierSilver, decimal.NewFromInt(500)},
	{TierGold, decimal.NewFromInt(2000)},
	{TierPlatinum, decimal.NewFromInt(5000)},
}

// TierStatus describes the current tier and linear progress toward the next.
type TierStatus struct {
	Tier          Tier            `json:"tier"`
	NextTier      *Tier           `json:"nextTier,omitempty"`
	TotalEarnings decimal.Decimal `json:"totalEarnings"`
	Progress      float64         `json:"progress"` // percent toward the next tier
}

// ClassifyTier maps total paid earnings to a tier.
func ClassifyTier(totalEarnings decimal.Decimal) Tier {
	current := TierBronze
	for _, band := range tierBands {
		if totalEarnings.GreaterThanOrEqual(band.floor) {
			current = band.tier
		}
	}
	return current
}

// ClassifyTierStatus computes the tier plus progress toward the next band.
// Progress is a linear interpolation within the current band; Platinum has no
// next tier and reports 100%.
func ClassifyTierStatus(totalEarnings decimal.Decimal) TierStatus {
	if totalEarnings.IsNegative() {
		totalEarnings = decimal.Zero
	}
	status := TierStatus{TotalEarnings: totalEarnings}
	for i, band := range tierBands {
		if !totalEarnings.GreaterThanOrEqual(band.floor) {
			continue
		}
		status.Tier = band.tier
		if i == len(tierBands)-1 {
			status.NextTier = nil
			status.Progress = 100
			continue
		}
		next := tierBands[i+1]
		status.NextTier = &next.tier
		span := next.floor.Sub(band.floor)
		done := totalEarnings.Sub(band.floor)
		progress, _ := done.Div(span).Mul(decimal.NewFromInt(100)).Float64()
		status.Progress = progress
	}
	return status
}
