package repositories

import (
	"context"

	"github.com/SscSPs/affiliate_commission_app/internal/core/domain"
)

// CommissionConfigReader defines read operations for rate configuration.
// The engine takes a fresh read on every invocation; no caching sits in
// front of these methods.
type CommissionConfigReader interface {
	// FindLevels retrieves all configured level rows ordered by level.
	FindLevels(ctx context.Context) ([]domain.CommissionLevel, error)

	// FindLevelByID retrieves a single level row.
	FindLevelByID(ctx context.Context, levelID string) (*domain.CommissionLevel, error)

	// FindSettings retrieves the singleton settings row.
	FindSettings(ctx context.Context) (*domain.CommissionSettings, error)
}

// CommissionConfigWriter defines admin mutation operations.
type CommissionConfigWriter interface {
	// UpdateLevel persists an edited level row.
	UpdateLevel(ctx context.Context, level domain.CommissionLevel) error

	// UpdateSettings persists the edited singleton settings row.
	UpdateSettings(ctx context.Context, settings domain.CommissionSettings) error

	// ResetDefaults restores level rows and settings to the given defaults
	// in one atomic unit.
	ResetDefaults(ctx context.Context, levels []domain.CommissionLevel, settings domain.CommissionSettings) error
}

// CommissionConfigRepositoryFacade combines config repository interfaces.
type CommissionConfigRepositoryFacade interface {
	CommissionConfigReader
	CommissionConfigWriter
}
