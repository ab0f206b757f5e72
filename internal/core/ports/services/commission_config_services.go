package services

import (
	"context"

	"github.com/SscSPs/affiliate_commission_app/internal/core/domain"
	"github.com/SscSPs/affiliate_commission_app/internal/dto"
)

// CommissionConfigSvcFacade serves and validates rate configuration.
type CommissionConfigSvcFacade interface {
	// GetLevels returns all level rows ordered by level.
	GetLevels(ctx context.Context) ([]domain.CommissionLevel, error)

	// GetSettings returns the singleton settings row.
	GetSettings(ctx context.Context) (*domain.CommissionSettings, error)

	// UpdateLevel applies a partial edit to a level row after validating
	// percentages to [0,100].
	UpdateLevel(ctx context.Context, levelID string, req dto.UpdateCommissionLevelRequest, updaterUserID string) (*domain.CommissionLevel, error)

	// UpdateSettings applies a partial edit to the settings row after
	// validating percentages to [0,100] and max levels to [1,3].
	UpdateSettings(ctx context.Context, req dto.UpdateCommissionSettingsRequest, updaterUserID string) (*domain.CommissionSettings, error)

	// ResetToDefaults restores levels and settings to their documented
	// defaults in one atomic unit.
	ResetToDefaults(ctx context.Context, updaterUserID string) error
}
