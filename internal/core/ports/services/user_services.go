package services

import (
	"context"

	"github.com/SscSPs/affiliate_commission_app/internal/core/domain"
	"github.com/SscSPs/affiliate_commission_app/internal/dto"
)

// UserSvcFacade defines user management operations used by handlers.
type UserSvcFacade interface {
	// RegisterUser creates a new user, generating a unique referral code and
	// binding the upline from the supplied referral code, if any.
	RegisterUser(ctx context.Context, req dto.RegisterUserRequest) (*domain.User, error)

	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)

	// ListUsers retrieves a paginated list of users.
	ListUsers(ctx context.Context, limit int, offset int) ([]domain.User, error)

	// UpdateUser applies the mutable fields of the update request.
	UpdateUser(ctx context.Context, userID string, req dto.UpdateUserRequest, updaterUserID string) (*domain.User, error)

	// DeactivateUser soft-disables a user.
	DeactivateUser(ctx context.Context, userID string, deleterUserID string) error

	// DeleteUser hard-deletes a user and cascades to dependent rows. Admin
	// action only; the role check happens in the handler layer.
	DeleteUser(ctx context.Context, userID string) error

	// CreateAffiliateLink creates a custom-code link for a user.
	CreateAffiliateLink(ctx context.Context, userID string, req dto.CreateAffiliateLinkRequest) (*domain.AffiliateLink, error)

	// ListAffiliateLinks lists a user's links with their counters.
	ListAffiliateLinks(ctx context.Context, userID string) ([]domain.AffiliateLink, error)
}
