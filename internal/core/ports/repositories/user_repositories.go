package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/affiliate_commission_app/internal/core/domain"
)

// UserReader defines read operations for user data.
type UserReader interface {
	// FindUserByID retrieves a specific user by their ID.
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)

	// FindUserByEmail retrieves a user by their unique email.
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)

	// FindUserByReferralCode retrieves a user by their unique referral code.
	FindUserByReferralCode(ctx context.Context, code string) (*domain.User, error)

	// FindUsers retrieves a paginated list of users.
	FindUsers(ctx context.Context, limit int, offset int) ([]domain.User, error)
}

// UserWriter defines write operations for user data.
type UserWriter interface {
	// SaveUserWithLink persists a new user and, when link is non-nil, the
	// user's default affiliate link in the same database transaction.
	SaveUserWithLink(ctx context.Context, user domain.User, link *domain.AffiliateLink) error

	// UpdateUser updates an existing user's mutable details.
	UpdateUser(ctx context.Context, user domain.User) error

	// UpdateUserTier syncs the stored tier classification for a user.
	UpdateUserTier(ctx context.Context, userID string, tier domain.Tier, updatedAt time.Time) error
}

// UserLifecycleManager defines operations for managing user lifecycle.
type UserLifecycleManager interface {
	// MarkUserDeleted marks a user as deleted (soft delete) and clears the
	// active flag.
	MarkUserDeleted(ctx context.Context, userID string, deletedAt time.Time, deletedBy string) error

	// DeleteUser hard-deletes a user; dependent links and commissions are
	// removed by the storage layer's cascade rules.
	DeleteUser(ctx context.Context, userID string) error
}

// UserRepositoryFacade combines all user-related repository interfaces.
type UserRepositoryFacade interface {
	UserReader
	UserWriter
	UserLifecycleManager
}
