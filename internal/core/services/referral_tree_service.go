package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/SscSPs/affiliate_commission_app/internal/apperrors"
	"github.com/SscSPs/affiliate_commission_app/internal/core/domain"
	portsrepo "github.com/SscSPs/affiliate_commission_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/affiliate_commission_app/internal/core/ports/services"
	"github.com/SscSPs/affiliate_commission_app/internal/middleware"
)

const maxTreeDepth = 3

// referralTreeService reconstructs bounded-depth downlines and computes
// earnings rollups for dashboards and tier classification.
type referralTreeService struct {
	referralRepo   portsrepo.ReferralRepositoryFacade
	commissionRepo portsrepo.CommissionRepositoryFacade
	userRepo       portsrepo.UserRepositoryFacade
}

// NewReferralTreeService creates a new ReferralTreeService.
func NewReferralTreeService(
	referralRepo portsrepo.ReferralRepositoryFacade,
	commissionRepo portsrepo.CommissionRepositoryFacade,
	userRepo portsrepo.UserRepositoryFacade,
) portssvc.ReferralTreeSvcFacade {
	return &referralTreeService{
		referralRepo:   referralRepo,
		commissionRepo: commissionRepo,
		userRepo:       userRepo,
	}
}

var _ portssvc.ReferralTreeSvcFacade = (*referralTreeService)(nil)

// GetReferralTree expands the downline breadth-first: level 1 is everyone
// referred directly by the user, level 2 everyone referred by level 1, and
// so on up to maxLevels (capped at 3). Any lookup error degrades to an
// all-empty tree with zero totals; tree display must never fail a page.
func (s *referralTreeService) GetReferralTree(ctx context.Context, userID string, maxLevels int) domain.ReferralTree {
	logger := middleware.GetLoggerFromCtx(ctx)
	if maxLevels <= 0 || maxLevels > maxTreeDepth {
		maxLevels = maxTreeDepth
	}

	levels := make([][]domain.User, 0, maxLevels)
	frontier := []string{userID}
	allIDs := make([]string, 0)
	for depth := 1; depth <= maxLevels; depth++ {
		if len(frontier) == 0 {
			levels = append(levels, nil)
			continue
		}
		users, err := s.referralRepo.FindActiveUsersByReferrerIDs(ctx, frontier)
		if err != nil {
			logger.Warn("Referral tree lookup failed, degrading to empty tree", slog.String("user_id", userID), slog.Int("depth", depth), slog.String("error", err.Error()))
			return domain.EmptyReferralTree()
		}
		levels = append(levels, users)
		frontier = frontier[:0]
		for _, u := range users {
			frontier = append(frontier, u.UserID)
			allIDs = append(allIDs, u.UserID)
		}
	}

	earnings, referralCounts, saleCounts, err := s.loadNodeRollups(ctx, allIDs)
	if err != nil {
		logger.Warn("Referral tree rollup lookup failed, degrading to empty tree", slog.String("user_id", userID), slog.String("error", err.Error()))
		return domain.EmptyReferralTree()
	}

	tree := domain.EmptyReferralTree()
	for depth, users := range levels {
		nodes := make([]domain.ReferralTreeNode, len(users))
		for i, u := range users {
			nodes[i] = buildTreeNode(u, earnings, referralCounts, saleCounts)
		}
		switch depth + 1 {
		case 1:
			tree.Level1 = nodes
		case 2:
			tree.Level2 = nodes
		case 3:
			tree.Level3 = nodes
		}
	}
	tree.Totals = domain.ReferralTreeTotals{
		Level1Count: len(tree.Level1),
		Level2Count: len(tree.Level2),
		Level3Count: len(tree.Level3),
		TotalCount:  len(tree.Level1) + len(tree.Level2) + len(tree.Level3),
	}
	return tree
}

// loadNodeRollups batch-loads the per-node enrichment maps.
func (s *referralTreeService) loadNodeRollups(ctx context.Context, userIDs []string) (map[string]decimal.Decimal, map[string]int, map[string]int, error) {
	if len(userIDs) == 0 {
		return nil, nil, nil, nil
	}
	earnings, err := s.referralRepo.SumPaidCommissionsByUsers(ctx, userIDs)
	if err != nil {
		return nil, nil, nil, err
	}
	referralCounts, err := s.referralRepo.CountDirectReferralsByUsers(ctx, userIDs)
	if err != nil {
		return nil, nil, nil, err
	}
	saleCounts, err := s.referralRepo.CountCompletedSalesByReferrers(ctx, userIDs)
	if err != nil {
		return nil, nil, nil, err
	}
	return earnings, referralCounts, saleCounts, nil
}

func buildTreeNode(u domain.User, earnings map[string]decimal.Decimal, referralCounts map[string]int, saleCounts map[string]int) domain.ReferralTreeNode {
	node := domain.ReferralTreeNode{
		UserID:          u.UserID,
		Name:            u.Name,
		Email:           u.Email,
		IsActive:        u.IsActive,
		CreatedAt:       u.CreatedAt,
		TotalEarnings:   decimal.Zero,
		DirectReferrals: referralCounts[u.UserID],
	}
	if total, ok := earnings[u.UserID]; ok {
		node.TotalEarnings = total
	}
	// conversion_rate is completed sales over direct referrals, kept as-is
	// from the original system for compatibility. The name suggests
	// clicks-to-conversions but the formula never was that.
	if node.DirectReferrals > 0 {
		node.ConversionRate = float64(saleCounts[u.UserID]) / float64(node.DirectReferrals) * 100
	}
	return node
}

// GetCommissionStats computes a user's earnings rollups. All sums default
// to zero, never null.
func (s *referralTreeService) GetCommissionStats(ctx context.Context, userID string) (domain.CommissionStats, error) {
	stats := domain.CommissionStats{
		TotalEarnings:     decimal.Zero,
		PendingEarnings:   decimal.Zero,
		ThisMonthEarnings: decimal.Zero,
		PerLevelEarnings: domain.PerLevelEarnings{
			Level1: decimal.Zero,
			Level2: decimal.Zero,
			Level3: decimal.Zero,
		},
	}

	total, err := s.commissionRepo.SumAmountByUserAndStatuses(ctx, userID, []domain.CommissionStatus{domain.CommissionPaid})
	if err != nil {
		return stats, fmt.Errorf("failed to sum paid earnings: %w", err)
	}
	stats.TotalEarnings = total

	pending, err := s.commissionRepo.SumAmountByUserAndStatuses(ctx, userID, []domain.CommissionStatus{domain.CommissionPending, domain.CommissionApproved})
	if err != nil {
		return stats, fmt.Errorf("failed to sum pending earnings: %w", err)
	}
	stats.PendingEarnings = pending

	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	thisMonth, err := s.commissionRepo.SumPaidByUserSince(ctx, userID, monthStart)
	if err != nil {
		return stats, fmt.Errorf("failed to sum current month earnings: %w", err)
	}
	stats.ThisMonthEarnings = thisMonth

	perLevel, err := s.commissionRepo.SumPaidByUserPerLevel(ctx, userID)
	if err != nil {
		return stats, fmt.Errorf("failed to sum per-level earnings: %w", err)
	}
	if v, ok := perLevel[1]; ok {
		stats.PerLevelEarnings.Level1 = v
	}
	if v, ok := perLevel[2]; ok {
		stats.PerLevelEarnings.Level2 = v
	}
	if v, ok := perLevel[3]; ok {
		stats.PerLevelEarnings.Level3 = v
	}

	return stats, nil
}

// GetTierStatus classifies the user from total paid earnings. The derived
// tier is authoritative; the stored user.tier is only a lazily synced copy,
// updated as a side effect when it differs.
func (s *referralTreeService) GetTierStatus(ctx context.Context, userID string) (domain.TierStatus, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	total, err := s.commissionRepo.SumAmountByUserAndStatuses(ctx, userID, []domain.CommissionStatus{domain.CommissionPaid})
	if err != nil {
		return domain.TierStatus{}, fmt.Errorf("failed to sum paid earnings for tier: %w", err)
	}

	status := domain.ClassifyTierStatus(total)

	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return domain.TierStatus{}, fmt.Errorf("failed to classify tier: %w", err)
		}
		// Classification still stands; only the lazy sync is skipped.
		logger.Warn("Failed to load user for tier sync", slog.String("user_id", userID), slog.String("error", err.Error()))
		return status, nil
	}

	if user.Tier != status.Tier {
		if err := s.userRepo.UpdateUserTier(ctx, userID, status.Tier, time.Now().UTC()); err != nil {
			// The sync is best-effort; the derived value is returned anyway.
			logger.Warn("Failed to sync user tier", slog.String("user_id", userID), slog.String("error", err.Error()))
		} else {
			logger.Info("User tier synced", slog.String("user_id", userID), slog.String("tier", string(status.Tier)))
		}
	}

	return status, nil
}
