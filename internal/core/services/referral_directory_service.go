package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/affiliate_commission_app/internal/apperrors"
	"github.com/SscSPs/affiliate_commission_app/internal/core/domain"
	portsrepo "github.com/SscSPs/affiliate_commission_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/affiliate_commission_app/internal/core/ports/services"
	"github.com/SscSPs/affiliate_commission_app/internal/middleware"
)

// referralDirectoryService resolves referral codes to eligible referrers and
// walks single upline hops. It never writes beyond click tracking.
type referralDirectoryService struct {
	linkRepo portsrepo.AffiliateLinkRepositoryFacade
	userRepo portsrepo.UserRepositoryFacade
}

// NewReferralDirectoryService creates a new ReferralDirectoryService.
func NewReferralDirectoryService(linkRepo portsrepo.AffiliateLinkRepositoryFacade, userRepo portsrepo.UserRepositoryFacade) portssvc.ReferralDirectorySvcFacade {
	return &referralDirectoryService{
		linkRepo: linkRepo,
		userRepo: userRepo,
	}
}

var _ portssvc.ReferralDirectorySvcFacade = (*referralDirectoryService)(nil)

// ResolveReferrer looks up an active affiliate link by code joined to an
// active owning account. An unknown code, an inactive link or an inactive
// owner all resolve to (nil, nil): the sale proceeds unattributed, which is
// a normal outcome and not a fault.
func (s *referralDirectoryService) ResolveReferrer(ctx context.Context, code string) (*domain.ReferralAttribution, error) {
	if code == "" {
		return nil, nil
	}
	logger := middleware.GetLoggerFromCtx(ctx)

	link, err := s.linkRepo.FindLinkByCode(ctx, code)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Debug("Referral code not found, proceeding unattributed", slog.String("code", code))
			return nil, nil
		}
		return nil, fmt.Errorf("failed to resolve referral code: %w", err)
	}
	if !link.IsActive {
		logger.Debug("Referral link inactive, proceeding unattributed", slog.String("code", code))
		return nil, nil
	}

	owner, err := s.userRepo.FindUserByID(ctx, link.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Referral link owner missing, proceeding unattributed", slog.String("link_id", link.LinkID))
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load referral link owner: %w", err)
	}
	if !owner.IsActive {
		logger.Debug("Referral link owner inactive, proceeding unattributed", slog.String("code", code))
		return nil, nil
	}

	return &domain.ReferralAttribution{
		LinkID:     link.LinkID,
		ReferrerID: owner.UserID,
	}, nil
}

// GetUpline returns the direct referrer of a user if it exists and is
// active; otherwise (nil, nil), which terminates upline traversal.
func (s *referralDirectoryService) GetUpline(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load user %s for upline lookup: %w", userID, err)
	}
	if user.ReferrerID == nil {
		return nil, nil
	}

	upline, err := s.userRepo.FindUserByID(ctx, *user.ReferrerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load upline of user %s: %w", userID, err)
	}
	if !upline.IsActive {
		return nil, nil
	}
	return upline, nil
}

// TrackClick increments the click counter of an active link. Unknown or
// inactive codes are a silent no-op: referral visits must never error.
func (s *referralDirectoryService) TrackClick(ctx context.Context, code string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	link, err := s.linkRepo.FindLinkByCode(ctx, code)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to look up link for click tracking: %w", err)
	}
	if !link.IsActive {
		return nil
	}

	if err := s.linkRepo.IncrementClicks(ctx, link.LinkID); err != nil {
		return fmt.Errorf("failed to increment clicks for link %s: %w", link.LinkID, err)
	}
	logger.Debug("Referral click tracked", slog.String("link_id", link.LinkID))
	return nil
}
