package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/SscSPs/affiliate_commission_app/internal/apperrors"
	"github.com/SscSPs/affiliate_commission_app/internal/core/domain"
	portsrepo "github.com/SscSPs/affiliate_commission_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/affiliate_commission_app/internal/core/ports/services"
	"github.com/SscSPs/affiliate_commission_app/internal/dto"
	"github.com/SscSPs/affiliate_commission_app/internal/middleware"
	"github.com/SscSPs/affiliate_commission_app/internal/utils"
)

const (
	referralCodeLength   = 8
	referralCodeAttempts = 5
)

// userService manages user registration and lifecycle plus affiliate links.
type userService struct {
	userRepo portsrepo.UserRepositoryFacade
	linkRepo portsrepo.AffiliateLinkRepositoryFacade
}

// NewUserService creates a new UserService.
func NewUserService(userRepo portsrepo.UserRepositoryFacade, linkRepo portsrepo.AffiliateLinkRepositoryFacade) portssvc.UserSvcFacade {
	return &userService{
		userRepo: userRepo,
		linkRepo: linkRepo,
	}
}

var _ portssvc.UserSvcFacade = (*userService)(nil)

// RegisterUser creates a new user. The referral code is generated
// random-retry-until-unique and immutable afterwards; the upline reference
// is bound once here from the supplied code and never changed.
func (s *userService) RegisterUser(ctx context.Context, req dto.RegisterUserRequest) (*domain.User, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if existing, err := s.userRepo.FindUserByEmail(ctx, req.Email); err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email uniqueness: %w", err)
	} else if existing != nil {
		return nil, fmt.Errorf("%w: email already registered", apperrors.ErrDuplicate)
	}

	role := domain.RoleAffiliate
	if req.Role != "" {
		role = domain.UserRole(req.Role)
	}

	var referrerID *string
	if req.ReferralCode != nil && *req.ReferralCode != "" {
		referrer, err := s.userRepo.FindUserByReferralCode(ctx, *req.ReferralCode)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("failed to resolve registration referral code: %w", err)
		}
		// An unknown or inactive code registers the user without an upline,
		// mirroring how unattributed sales are a normal outcome.
		if referrer != nil && referrer.IsActive {
			referrerID = &referrer.UserID
		} else {
			logger.Debug("Registration referral code did not resolve", slog.String("code", *req.ReferralCode))
		}
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	code, err := s.generateUniqueReferralCode(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	userID := uuid.NewString()
	user := domain.User{
		UserID:       userID,
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: passwordHash,
		Role:         role,
		ReferralCode: code,
		ReferrerID:   referrerID,
		Tier:         domain.TierBronze,
		IsActive:     true,
		IsVerified:   false,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	// Affiliates get a default link carrying their referral code, created
	// in the same database transaction as the user row.
	var defaultLink *domain.AffiliateLink
	if role == domain.RoleAffiliate {
		defaultLink = &domain.AffiliateLink{
			LinkID:   uuid.NewString(),
			UserID:   userID,
			LinkCode: code,
			IsActive: true,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     userID,
				LastUpdatedAt: now,
				LastUpdatedBy: userID,
			},
		}
	}

	if err := s.userRepo.SaveUserWithLink(ctx, user, defaultLink); err != nil {
		logger.Error("Failed to save new user", slog.String("error", err.Error()))
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, fmt.Errorf("%w: email already registered", apperrors.ErrDuplicate)
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	logger.Info("User registered", slog.String("user_id", userID), slog.String("role", string(role)), slog.Bool("has_upline", referrerID != nil))
	return &user, nil
}

// generateUniqueReferralCode draws random codes and retries until one is
// unused, up to a small bounded number of attempts.
func (s *userService) generateUniqueReferralCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < referralCodeAttempts; attempt++ {
		code, err := utils.GenerateReferralCode(referralCodeLength)
		if err != nil {
			return "", fmt.Errorf("failed to generate referral code: %w", err)
		}
		_, err = s.userRepo.FindUserByReferralCode(ctx, code)
		if errors.Is(err, apperrors.ErrNotFound) {
			return code, nil
		}
		if err != nil {
			return "", fmt.Errorf("failed to check referral code uniqueness: %w", err)
		}
		// Collision; draw again.
	}
	return "", fmt.Errorf("%w: could not allocate a unique referral code", apperrors.ErrInternal)
}

// GetUserByID retrieves a user by ID.
func (s *userService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", userID, err)
	}
	return user, nil
}

// ListUsers retrieves a paginated list of users.
func (s *userService) ListUsers(ctx context.Context, limit int, offset int) ([]domain.User, error) {
	if limit <= 0 {
		limit = 20
	}
	users, err := s.userRepo.FindUsers(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// UpdateUser applies the mutable fields of the update request. The referral
// code and upline reference are immutable and not part of the request type.
func (s *userService) UpdateUser(ctx context.Context, userID string, req dto.UpdateUserRequest, updaterUserID string) (*domain.User, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user %s for update: %w", userID, err)
	}

	updated := false
	if req.Name != nil {
		user.Name = *req.Name
		updated = true
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
		updated = true
	}
	if req.IsVerified != nil {
		user.IsVerified = *req.IsVerified
		updated = true
	}
	if !updated {
		return user, nil
	}

	user.LastUpdatedAt = time.Now().UTC()
	user.LastUpdatedBy = updaterUserID

	if err := s.userRepo.UpdateUser(ctx, *user); err != nil {
		logger.Error("Failed to update user", slog.String("user_id", userID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

// DeactivateUser soft-disables a user. The account stays referencable from
// historic transactions and commissions.
func (s *userService) DeactivateUser(ctx context.Context, userID string, deleterUserID string) error {
	if err := s.userRepo.MarkUserDeleted(ctx, userID, time.Now().UTC(), deleterUserID); err != nil {
		return fmt.Errorf("failed to deactivate user %s: %w", userID, err)
	}
	middleware.GetLoggerFromCtx(ctx).Info("User deactivated", slog.String("user_id", userID))
	return nil
}

// DeleteUser hard-deletes a user; dependent links and commissions go with
// it via the storage layer's cascade rules. Admin action only.
func (s *userService) DeleteUser(ctx context.Context, userID string) error {
	if err := s.userRepo.DeleteUser(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete user %s: %w", userID, err)
	}
	middleware.GetLoggerFromCtx(ctx).Info("User deleted", slog.String("user_id", userID))
	return nil
}

// CreateAffiliateLink creates a custom-code link for a user. A colliding
// code surfaces as a duplicate error for the handler to map to 409.
func (s *userService) CreateAffiliateLink(ctx context.Context, userID string, req dto.CreateAffiliateLinkRequest) (*domain.AffiliateLink, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user %s for link creation: %w", userID, err)
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: user is inactive", apperrors.ErrValidation)
	}

	code := ""
	if req.LinkCode != nil && *req.LinkCode != "" {
		code = *req.LinkCode
	} else {
		code, err = utils.GenerateReferralCode(referralCodeLength)
		if err != nil {
			return nil, fmt.Errorf("failed to generate link code: %w", err)
		}
	}

	now := time.Now().UTC()
	link := domain.AffiliateLink{
		LinkID:   uuid.NewString(),
		UserID:   userID,
		LinkCode: code,
		IsActive: true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.linkRepo.SaveLink(ctx, link); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, fmt.Errorf("%w: link code already in use", apperrors.ErrDuplicate)
		}
		logger.Error("Failed to save affiliate link", slog.String("user_id", userID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to create affiliate link: %w", err)
	}

	logger.Info("Affiliate link created", slog.String("user_id", userID), slog.String("link_id", link.LinkID))
	return &link, nil
}

// ListAffiliateLinks lists a user's links with their counters.
func (s *userService) ListAffiliateLinks(ctx context.Context, userID string) ([]domain.AffiliateLink, error) {
	links, err := s.linkRepo.FindLinksByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list affiliate links for user %s: %w", userID, err)
	}
	return links, nil
}
