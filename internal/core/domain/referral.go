package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReferralTreeNode is one account in a downline, enriched with its own
// earnings and referral rollups for dashboard display.
type ReferralTreeNode struct {
	UserID          string          `json:"userID"`
	Name            string          `json:"name"`
	Email           string          `json:"email"`
	IsActive        bool            `json:"isActive"`
	CreatedAt       time.Time       `json:"createdAt"`
	TotalEarnings   decimal.Decimal `json:"totalEarnings"`   // sum of the node's own paid commissions
	DirectReferrals int             `json:"directReferrals"` // the node's own level-1 count
	ConversionRate  float64         `json:"conversionRate"`
}

// ReferralTreeTotals summarises node counts per level.
type ReferralTreeTotals struct {
	Level1Count int `json:"level1Count"`
	Level2Count int `json:"level2Count"`
	Level3Count int `json:"level3Count"`
	TotalCount  int `json:"totalCount"`
}

// ReferralTree is a bounded-depth downline expansion (levels 1-3).
type ReferralTree struct {
	Level1 []ReferralTreeNode `json:"level1"`
	Level2 []ReferralTreeNode `json:"level2"`
	Level3 []ReferralTreeNode `json:"level3"`
	Totals ReferralTreeTotals `json:"totals"`
}

// EmptyReferralTree returns a tree with empty (non-nil) levels and zero
// totals, used when downline lookups fail and the display must degrade.
func EmptyReferralTree() ReferralTree {
	return ReferralTree{
		Level1: []ReferralTreeNode{},
		Level2: []ReferralTreeNode{},
		Level3: []ReferralTreeNode{},
	}
}

// PerLevelEarnings breaks paid earnings down by upline level.
type PerLevelEarnings struct {
	Level1 decimal.Decimal `json:"level1"`
	Level2 decimal.Decimal `json:"level2"`
	Level3 decimal.Decimal `json:"level3"`
}

// CommissionStats are an affiliate's earnings rollups. All sums default to
// zero, never null.
type CommissionStats struct {
	TotalEarnings     decimal.Decimal  `json:"totalEarnings"`     // status = paid
	PendingEarnings   decimal.Decimal  `json:"pendingEarnings"`   // status in {pending, approved}
	ThisMonthEarnings decimal.Decimal  `json:"thisMonthEarnings"` // paid, current calendar month
	PerLevelEarnings  PerLevelEarnings `json:"perLevelEarnings"`
}
