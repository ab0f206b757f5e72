package repositories

import (
	"context"

	"github.com/SscSPs/affiliate_commission_app/internal/core/domain"
)

// AffiliateLinkReader defines read operations for affiliate links.
type AffiliateLinkReader interface {
	// FindLinkByID retrieves a link by its ID.
	FindLinkByID(ctx context.Context, linkID string) (*domain.AffiliateLink, error)

	// FindLinkByCode retrieves a link by its unique code.
	FindLinkByCode(ctx context.Context, code string) (*domain.AffiliateLink, error)

	// FindLinksByUserID retrieves all links owned by a user.
	FindLinksByUserID(ctx context.Context, userID string) ([]domain.AffiliateLink, error)
}

// AffiliateLinkWriter defines write operations for affiliate links.
type AffiliateLinkWriter interface {
	// SaveLink persists a new affiliate link.
	SaveLink(ctx context.Context, link domain.AffiliateLink) error

	// IncrementClicks adds one to a link's click counter as an atomic SQL add.
	IncrementClicks(ctx context.Context, linkID string) error
}

// AffiliateLinkRepositoryFacade combines link repository interfaces.
type AffiliateLinkRepositoryFacade interface {
	AffiliateLinkReader
	AffiliateLinkWriter
}
