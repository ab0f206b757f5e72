package dto

import (
	"time"

	"github.com/SscSPs/affiliate_commission_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// UpdateCommissionLevelRequest defines the partial fields accepted when
// editing a per-level percentage row.
type UpdateCommissionLevelRequest struct {
	Percentage   *decimal.Decimal `json:"percentage,omitempty"`
	IsActive     *bool            `json:"isActive,omitempty"`
	MinReferrals *int             `json:"minReferrals,omitempty"`
	MaxReferrals *int             `json:"maxReferrals,omitempty"`
}

// UpdateCommissionSettingsRequest defines the partial fields accepted when
// editing the singleton settings row.
type UpdateCommissionSettingsRequest struct {
	Enabled           *bool            `json:"enabled,omitempty"`
	DefaultRateLevel1 *decimal.Decimal `json:"defaultRateLevel1,omitempty"`
	DefaultRateLevel2 *decimal.Decimal `json:"defaultRateLevel2,omitempty"`
	DefaultRateLevel3 *decimal.Decimal `json:"defaultRateLevel3,omitempty"`
	MaxLevels         *int             `json:"maxLevels,omitempty"`
	MinCommission     *decimal.Decimal `json:"minCommission,omitempty"`
	MaxCommission     *decimal.Decimal `json:"maxCommission,omitempty"`
	AutoAdjust        *bool            `json:"autoAdjust,omitempty"`
}

// CommissionLevelResponse defines the data returned for a level row.
type CommissionLevelResponse struct {
	LevelID      string          `json:"levelID"`
	Level        int             `json:"level"`
	Percentage   decimal.Decimal `json:"percentage"`
	IsActive     bool            `json:"isActive"`
	MinReferrals *int            `json:"minReferrals,omitempty"`
	MaxReferrals *int            `json:"maxReferrals,omitempty"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// CommissionSettingsResponse defines the data returned for the settings row.
type CommissionSettingsResponse struct {
	Enabled           bool            `json:"enabled"`
	DefaultRateLevel1 decimal.Decimal `json:"defaultRateLevel1"`
	DefaultRateLevel2 decimal.Decimal `json:"defaultRateLevel2"`
	DefaultRateLevel3 decimal.Decimal `json:"defaultRateLevel3"`
	MaxLevels         int             `json:"maxLevels"`
	MinCommission     decimal.Decimal `json:"minCommission"`
	MaxCommission     decimal.Decimal `json:"maxCommission"`
	AutoAdjust        bool            `json:"autoAdjust"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// ToCommissionLevelResponse converts a domain.CommissionLevel to its DTO.
func ToCommissionLevelResponse(l *domain.CommissionLevel) CommissionLevelResponse {
	return CommissionLevelResponse{
		LevelID:      l.LevelID,
		Level:        l.Level,
		Percentage:   l.Percentage,
		IsActive:     l.IsActive,
		MinReferrals: l.MinReferrals,
		MaxReferrals: l.MaxReferrals,
		UpdatedAt:    l.LastUpdatedAt,
	}
}

// ToCommissionLevelResponses converts a slice of levels to DTOs.
func ToCommissionLevelResponses(levels []domain.CommissionLevel) []CommissionLevelResponse {
	responses := make([]CommissionLevelResponse, len(levels))
	for i := range levels {
		responses[i] = ToCommissionLevelResponse(&levels[i])
	}
	return responses
}

// ToCommissionSettingsResponse converts domain.CommissionSettings to its DTO.
func ToCommissionSettingsResponse(s *domain.CommissionSettings) CommissionSettingsResponse {
	return CommissionSettingsResponse{
		Enabled:           s.Enabled,
		DefaultRateLevel1: s.DefaultRateLevel1,
		DefaultRateLevel2: s.DefaultRateLevel2,
		DefaultRateLevel3: s.DefaultRateLevel3,
		MaxLevels:         s.MaxLevels,
		MinCommission:     s.MinCommission,
		MaxCommission:     s.MaxCommission,
		AutoAdjust:        s.AutoAdjust,
		UpdatedAt:         s.LastUpdatedAt,
	}
}
