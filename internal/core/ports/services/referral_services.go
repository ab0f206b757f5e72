package services

import (
	"context"

	"github.com/SscSPs/affiliate_commission_app/internal/core/domain"
)

// ReferralDirectorySvcFacade resolves referral codes and upline hops.
// Resolution failures are silent: an inactive or unknown code yields a nil
// attribution with a nil error, exactly like no code at all.
type ReferralDirectorySvcFacade interface {
	// ResolveReferrer maps a referral code to an active link owned by an
	// active account. Returns (nil, nil) when no attribution is possible.
	ResolveReferrer(ctx context.Context, code string) (*domain.ReferralAttribution, error)

	// GetUpline returns the direct referrer of an account if it exists and
	// is active, otherwise (nil, nil), which terminates upline traversal.
	GetUpline(ctx context.Context, userID string) (*domain.User, error)

	// TrackClick increments the click counter of an active link. Unknown or
	// inactive codes are a silent no-op.
	TrackClick(ctx context.Context, code string) error
}

// ReferralTreeSvcFacade reconstructs downlines and computes rollups.
type ReferralTreeSvcFacade interface {
	// GetReferralTree expands the downline breadth-first up to maxLevels
	// (capped at 3). Lookup errors degrade to an empty tree, never an error.
	GetReferralTree(ctx context.Context, userID string, maxLevels int) domain.ReferralTree

	// GetCommissionStats computes a user's earnings rollups.
	GetCommissionStats(ctx context.Context, userID string) (domain.CommissionStats, error)

	// GetTierStatus classifies the user's tier from total paid earnings and
	// lazily syncs the stored tier when it differs.
	GetTierStatus(ctx context.Context, userID string) (domain.TierStatus, error)
}
