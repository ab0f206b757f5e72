package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SscSPs/affiliate_commission_app/internal/apperrors"
	"github.com/SscSPs/affiliate_commission_app/internal/core/domain"
	portsrepo "github.com/SscSPs/affiliate_commission_app/internal/core/ports/repositories"
)

const levelColumns = `level_id, level, percentage, is_active, min_referrals, max_referrals, created_at, created_by, last_updated_at, last_updated_by`

const settingsColumns = `setting_id, enabled, default_rate_level_1, default_rate_level_2, default_rate_level_3, max_levels, min_commission, max_commission, auto_adjust, created_at, created_by, last_updated_at, last_updated_by`

type PgxCommissionConfigRepository struct {
	pool *pgxpool.Pool
}

// NewPgxCommissionConfigRepository creates a new repository for rate
// configuration.
func NewPgxCommissionConfigRepository(pool *pgxpool.Pool) portsrepo.CommissionConfigRepositoryFacade {
	return &PgxCommissionConfigRepository{pool: pool}
}

func scanLevel(row pgx.Row) (*domain.CommissionLevel, error) {
	var level domain.CommissionLevel
	err := row.Scan(
		&level.LevelID,
		&level.Level,
		&level.Percentage,
		&level.IsActive,
		&level.MinReferrals,
		&level.MaxReferrals,
		&level.CreatedAt,
		&level.CreatedBy,
		&level.LastUpdatedAt,
		&level.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &level, nil
}

// FindLevels retrieves all configured level rows ordered by level.
func (r *PgxCommissionConfigRepository) FindLevels(ctx context.Context) ([]domain.CommissionLevel, error) {
	query := `SELECT ` + levelColumns + ` FROM commission_levels ORDER BY level ASC;`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query commission levels: %w", err)
	}
	defer rows.Close()

	levels := []domain.CommissionLevel{}
	for rows.Next() {
		level, err := scanLevel(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan commission level: %w", err)
		}
		levels = append(levels, *level)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating commission levels: %w", err)
	}
	return levels, nil
}

// FindLevelByID retrieves a single level row.
func (r *PgxCommissionConfigRepository) FindLevelByID(ctx context.Context, levelID string) (*domain.CommissionLevel, error) {
	query := `SELECT ` + levelColumns + ` FROM commission_levels WHERE level_id = $1;`
	level, err := scanLevel(r.pool.QueryRow(ctx, query, levelID))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find commission level %s: %w", levelID, err)
	}
	return level, nil
}

// FindSettings retrieves the singleton settings row.
func (r *PgxCommissionConfigRepository) FindSettings(ctx context.Context) (*domain.CommissionSettings, error) {
	query := `SELECT ` + settingsColumns + ` FROM commission_settings WHERE setting_id = $1;`
	var s domain.CommissionSettings
	err := r.pool.QueryRow(ctx, query, domain.CommissionSettingsID).Scan(
		&s.SettingID,
		&s.Enabled,
		&s.DefaultRateLevel1,
		&s.DefaultRateLevel2,
		&s.DefaultRateLevel3,
		&s.MaxLevels,
		&s.MinCommission,
		&s.MaxCommission,
		&s.AutoAdjust,
		&s.CreatedAt,
		&s.CreatedBy,
		&s.LastUpdatedAt,
		&s.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find commission settings: %w", err)
	}
	return &s, nil
}

// UpdateLevel persists an edited level row.
func (r *PgxCommissionConfigRepository) UpdateLevel(ctx context.Context, level domain.CommissionLevel) error {
	query := `
		UPDATE commission_levels
		SET percentage = $2, is_active = $3, min_referrals = $4, max_referrals = $5, last_updated_at = $6, last_updated_by = $7
		WHERE level_id = $1;
	`
	tag, err := r.pool.Exec(ctx, query,
		level.LevelID,
		level.Percentage,
		level.IsActive,
		level.MinReferrals,
		level.MaxReferrals,
		level.LastUpdatedAt,
		level.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update commission level %s: %w", level.LevelID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// UpdateSettings persists the edited singleton settings row.
func (r *PgxCommissionConfigRepository) UpdateSettings(ctx context.Context, settings domain.CommissionSettings) error {
	query := `
		UPDATE commission_settings
		SET enabled = $2, default_rate_level_1 = $3, default_rate_level_2 = $4, default_rate_level_3 = $5,
		    max_levels = $6, min_commission = $7, max_commission = $8, auto_adjust = $9,
		    last_updated_at = $10, last_updated_by = $11
		WHERE setting_id = $1;
	`
	tag, err := r.pool.Exec(ctx, query,
		domain.CommissionSettingsID,
		settings.Enabled,
		settings.DefaultRateLevel1,
		settings.DefaultRateLevel2,
		settings.DefaultRateLevel3,
		settings.MaxLevels,
		settings.MinCommission,
		settings.MaxCommission,
		settings.AutoAdjust,
		settings.LastUpdatedAt,
		settings.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update commission settings: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// ResetDefaults replaces all level rows and the settings row with the given
// defaults in one DB transaction.
func (r *PgxCommissionConfigRepository) ResetDefaults(ctx context.Context, levels []domain.CommissionLevel, settings domain.CommissionSettings) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx) // Ignore rollback error
	}()

	if _, err := tx.Exec(ctx, `DELETE FROM commission_levels;`); err != nil {
		return fmt.Errorf("failed to clear commission levels: %w", err)
	}

	batch := &pgx.Batch{}
	levelQuery := `
		INSERT INTO commission_levels (` + levelColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	for _, level := range levels {
		batch.Queue(levelQuery,
			level.LevelID,
			level.Level,
			level.Percentage,
			level.IsActive,
			level.MinReferrals,
			level.MaxReferrals,
			level.CreatedAt,
			level.CreatedBy,
			level.LastUpdatedAt,
			level.LastUpdatedBy,
		)
	}
	br := tx.SendBatch(ctx, batch)
	for range levels {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return fmt.Errorf("failed to insert default level: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to close level batch: %w", err)
	}

	settingsQuery := `
		INSERT INTO commission_settings (` + settingsColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (setting_id) DO UPDATE SET
			enabled = EXCLUDED.enabled,
			default_rate_level_1 = EXCLUDED.default_rate_level_1,
			default_rate_level_2 = EXCLUDED.default_rate_level_2,
			default_rate_level_3 = EXCLUDED.default_rate_level_3,
			max_levels = EXCLUDED.max_levels,
			min_commission = EXCLUDED.min_commission,
			max_commission = EXCLUDED.max_commission,
			auto_adjust = EXCLUDED.auto_adjust,
			last_updated_at = EXCLUDED.last_updated_at,
			last_updated_by = EXCLUDED.last_updated_by;
	`
	_, err = tx.Exec(ctx, settingsQuery,
		settings.SettingID,
		settings.Enabled,
		settings.DefaultRateLevel1,
		settings.DefaultRateLevel2,
		settings.DefaultRateLevel3,
		settings.MaxLevels,
		settings.MinCommission,
		settings.MaxCommission,
		settings.AutoAdjust,
		settings.CreatedAt,
		settings.CreatedBy,
		settings.LastUpdatedAt,
		settings.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to reset commission settings: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit configuration reset: %w", err)
	}
	return nil
}
