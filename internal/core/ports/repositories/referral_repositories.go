package repositories

import (
	"context"

	"github.com/SscSPs/affiliate_commission_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ReferralReader defines the aggregate read operations used to reconstruct a
// downline and enrich its nodes. All methods are read-only.
type ReferralReader interface {
	// FindActiveUsersByReferrerIDs returns active users whose referrer_id is
	// in the given set, ordered by creation time.
	FindActiveUsersByReferrerIDs(ctx context.Context, referrerIDs []string) ([]domain.User, error)

	// CountDirectReferralsByUsers counts active direct referrals per user.
	// Users without referrals are absent from the map.
	CountDirectReferralsByUsers(ctx context.Context, userIDs []string) (map[string]int, error)

	// CountCompletedSalesByReferrers counts completed transactions attributed
	// to each referrer. Referrers without sales are absent from the map.
	CountCompletedSalesByReferrers(ctx context.Context, userIDs []string) (map[string]int, error)

	// SumPaidCommissionsByUsers sums paid commission amounts per beneficiary.
	// Users without paid commissions are absent from the map.
	SumPaidCommissionsByUsers(ctx context.Context, userIDs []string) (map[string]decimal.Decimal, error)
}

// ReferralRepositoryFacade is the aggregator's read-only repository surface.
type ReferralRepositoryFacade interface {
	ReferralReader
}
