package dto

import (
	"github.com/SscSPs/affiliate_commission_app/internal/core/domain"
)

// ReferralTreeResponse is the bounded-depth downline of an affiliate.
type ReferralTreeResponse struct {
	Level1 []domain.ReferralTreeNode `json:"level1"`
	Level2 []domain.ReferralTreeNode `json:"level2"`
	Level3 []domain.ReferralTreeNode `json:"level3"`
	Totals domain.ReferralTreeTotals `json:"totals"`
}

// CommissionStatsResponse carries an affiliate's earnings rollups.
type CommissionStatsResponse struct {
	Stats domain.CommissionStats `json:"stats"`
}

// DashboardResponse combines tree, stats and tier for one dashboard read.
type DashboardResponse struct {
	Tree  ReferralTreeResponse   `json:"tree"`
	Stats domain.CommissionStats `json:"stats"`
	Tier  domain.TierStatus      `json:"tier"`
}

// ToReferralTreeResponse converts a domain.ReferralTree to its DTO.
func ToReferralTreeResponse(tree domain.ReferralTree) ReferralTreeResponse {
	return ReferralTreeResponse{
		Level1: tree.Level1,
		Level2: tree.Level2,
		Level3: tree.Level3,
		Totals: tree.Totals,
	}
}
