package dto

import (
	"time"

	"github.com/SscSPs/affiliate_commission_app/internal/core/domain"
)

// CreateAffiliateLinkRequest defines the payload to create a custom link.
// An empty code requests a generated one.
type CreateAffiliateLinkRequest struct {
	LinkCode *string `json:"linkCode,omitempty" binding:"omitempty,min=4,max=32,alphanum"`
}

// AffiliateLinkResponse defines the data returned for an affiliate link.
type AffiliateLinkResponse struct {
	LinkID      string    `json:"linkID"`
	LinkCode    string    `json:"linkCode"`
	Clicks      int64     `json:"clicks"`
	Conversions int64     `json:"conversions"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ListAffiliateLinksResponse wraps a list of links.
type ListAffiliateLinksResponse struct {
	Links []AffiliateLinkResponse `json:"links"`
}

// ToAffiliateLinkResponse converts a domain.AffiliateLink to its DTO.
func ToAffiliateLinkResponse(l *domain.AffiliateLink) AffiliateLinkResponse {
	return AffiliateLinkResponse{
		LinkID:      l.LinkID,
		LinkCode:    l.LinkCode,
		Clicks:      l.Clicks,
		Conversions: l.Conversions,
		IsActive:    l.IsActive,
		CreatedAt:   l.CreatedAt,
	}
}

// ToAffiliateLinkResponses converts a slice of links to DTOs.
func ToAffiliateLinkResponses(links []domain.AffiliateLink) []AffiliateLinkResponse {
	responses := make([]AffiliateLinkResponse, len(links))
	for i := range links {
		responses[i] = ToAffiliateLinkResponse(&links[i])
	}
	return responses
}
