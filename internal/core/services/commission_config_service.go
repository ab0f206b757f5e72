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
	"github.com/SscSPs/affiliate_commission_app/internal/dto"
	"github.com/SscSPs/affiliate_commission_app/internal/middleware"
)

var (
	ErrPercentageOutOfRange = errors.New("percentage must be between 0 and 100")
	ErrLevelOutOfRange      = errors.New("level must be between 1 and 3")
)

// commissionConfigService serves current percentages and bounds and
// validates admin edits. No caching sits in front of the store: the admin
// UI requires read-after-write consistency and the table is read-light.
type commissionConfigService struct {
	configRepo portsrepo.CommissionConfigRepositoryFacade
}

// NewCommissionConfigService creates a new CommissionConfigService.
func NewCommissionConfigService(configRepo portsrepo.CommissionConfigRepositoryFacade) portssvc.CommissionConfigSvcFacade {
	return &commissionConfigService{configRepo: configRepo}
}

var _ portssvc.CommissionConfigSvcFacade = (*commissionConfigService)(nil)

func validatePercentage(p decimal.Decimal) error {
	if p.IsNegative() || p.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrPercentageOutOfRange)
	}
	return nil
}

// GetLevels returns all configured level rows ordered by level.
func (s *commissionConfigService) GetLevels(ctx context.Context) ([]domain.CommissionLevel, error) {
	levels, err := s.configRepo.FindLevels(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list commission levels: %w", err)
	}
	return levels, nil
}

// GetSettings returns the singleton settings row.
func (s *commissionConfigService) GetSettings(ctx context.Context) (*domain.CommissionSettings, error) {
	settings, err := s.configRepo.FindSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load commission settings: %w", err)
	}
	return settings, nil
}

// UpdateLevel applies a partial edit to one level row. Violations fail with
// a validation error and leave the store unchanged.
func (s *commissionConfigService) UpdateLevel(ctx context.Context, levelID string, req dto.UpdateCommissionLevelRequest, updaterUserID string) (*domain.CommissionLevel, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	level, err := s.configRepo.FindLevelByID(ctx, levelID)
	if err != nil {
		return nil, fmt.Errorf("failed to find commission level %s: %w", levelID, err)
	}

	if req.Percentage != nil {
		if err := validatePercentage(*req.Percentage); err != nil {
			return nil, err
		}
		level.Percentage = *req.Percentage
	}
	if req.IsActive != nil {
		level.IsActive = *req.IsActive
	}
	if req.MinReferrals != nil {
		if *req.MinReferrals < 0 {
			return nil, fmt.Errorf("%w: min referrals must not be negative", apperrors.ErrValidation)
		}
		level.MinReferrals = req.MinReferrals
	}
	if req.MaxReferrals != nil {
		if *req.MaxReferrals < 0 {
			return nil, fmt.Errorf("%w: max referrals must not be negative", apperrors.ErrValidation)
		}
		level.MaxReferrals = req.MaxReferrals
	}
	if level.MinReferrals != nil && level.MaxReferrals != nil && *level.MinReferrals > *level.MaxReferrals {
		return nil, fmt.Errorf("%w: min referrals must not exceed max referrals", apperrors.ErrValidation)
	}

	level.LastUpdatedAt = time.Now().UTC()
	level.LastUpdatedBy = updaterUserID

	if err := s.configRepo.UpdateLevel(ctx, *level); err != nil {
		logger.Error("Failed to update commission level", slog.String("level_id", levelID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to update commission level: %w", err)
	}

	logger.Info("Commission level updated", slog.String("level_id", levelID), slog.Int("level", level.Level))
	return level, nil
}

// UpdateSettings applies a partial edit to the singleton settings row.
func (s *commissionConfigService) UpdateSettings(ctx context.Context, req dto.UpdateCommissionSettingsRequest, updaterUserID string) (*domain.CommissionSettings, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	settings, err := s.configRepo.FindSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load commission settings: %w", err)
	}

	for _, rate := range []*decimal.Decimal{req.DefaultRateLevel1, req.DefaultRateLevel2, req.DefaultRateLevel3, req.MinCommission, req.MaxCommission} {
		if rate == nil {
			continue
		}
		if err := validatePercentage(*rate); err != nil {
			return nil, err
		}
	}
	if req.MaxLevels != nil && (*req.MaxLevels < 1 || *req.MaxLevels > 3) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrLevelOutOfRange)
	}

	if req.Enabled != nil {
		settings.Enabled = *req.Enabled
	}
	if req.DefaultRateLevel1 != nil {
		settings.DefaultRateLevel1 = *req.DefaultRateLevel1
	}
	if req.DefaultRateLevel2 != nil {
		settings.DefaultRateLevel2 = *req.DefaultRateLevel2
	}
	if req.DefaultRateLevel3 != nil {
		settings.DefaultRateLevel3 = *req.DefaultRateLevel3
	}
	if req.MaxLevels != nil {
		settings.MaxLevels = *req.MaxLevels
	}
	if req.MinCommission != nil {
		settings.MinCommission = *req.MinCommission
	}
	if req.MaxCommission != nil {
		settings.MaxCommission = *req.MaxCommission
	}
	if req.AutoAdjust != nil {
		settings.AutoAdjust = *req.AutoAdjust
	}
	if settings.MinCommission.GreaterThan(settings.MaxCommission) {
		return nil, fmt.Errorf("%w: min commission must not exceed max commission", apperrors.ErrValidation)
	}

	settings.LastUpdatedAt = time.Now().UTC()
	settings.LastUpdatedBy = updaterUserID

	if err := s.configRepo.UpdateSettings(ctx, *settings); err != nil {
		logger.Error("Failed to update commission settings", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to update commission settings: %w", err)
	}

	logger.Info("Commission settings updated", slog.String("updated_by", updaterUserID))
	return settings, nil
}

// ResetToDefaults restores level rows to 15 / 5 / 2.5 and the settings row
// to its documented defaults in one atomic unit.
func (s *commissionConfigService) ResetToDefaults(ctx context.Context, updaterUserID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)
	now := time.Now().UTC()

	levels := DefaultCommissionLevels(updaterUserID, now)
	settings := DefaultCommissionSettings(updaterUserID, now)

	if err := s.configRepo.ResetDefaults(ctx, levels, settings); err != nil {
		logger.Error("Failed to reset commission configuration", slog.String("error", err.Error()))
		return fmt.Errorf("failed to reset commission configuration: %w", err)
	}

	logger.Info("Commission configuration reset to defaults", slog.String("updated_by", updaterUserID))
	return nil
}

// DefaultCommissionLevels builds the documented default level rows. Used by
// ResetToDefaults and by the bootstrap seeding in migrations.
func DefaultCommissionLevels(updaterUserID string, now time.Time) []domain.CommissionLevel {
	rates := []string{"15", "5", "2.5"}
	levels := make([]domain.CommissionLevel, len(rates))
	for i, raw := range rates {
		levels[i] = domain.CommissionLevel{
			LevelID:    fmt.Sprintf("level-%d", i+1),
			Level:      i + 1,
			Percentage: decimal.RequireFromString(raw),
			IsActive:   true,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     updaterUserID,
				LastUpdatedAt: now,
				LastUpdatedBy: updaterUserID,
			},
		}
	}
	return levels
}

// DefaultCommissionSettings builds the documented default settings row.
func DefaultCommissionSettings(updaterUserID string, now time.Time) domain.CommissionSettings {
	return domain.CommissionSettings{
		SettingID:         domain.CommissionSettingsID,
		Enabled:           true,
		DefaultRateLevel1: decimal.NewFromInt(15),
		DefaultRateLevel2: decimal.NewFromInt(5),
		DefaultRateLevel3: decimal.RequireFromString("2.5"),
		MaxLevels:         3,
		MinCommission:     decimal.Zero,
		MaxCommission:     decimal.NewFromInt(100),
		AutoAdjust:        false,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     updaterUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: updaterUserID,
		},
	}
}
