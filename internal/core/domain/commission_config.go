package domain

import "github.com/shopspring/decimal"

// CommissionSettingsID is the fixed identifier of the singleton settings row.
// The singleton is enforced by convention: every read and write targets this ID.
const CommissionSettingsID = "default"

// CommissionLevel holds the configured percentage for one upline level.
// Level is unique in [1,3]; Percentage is bounded to [0,100].
type CommissionLevel struct {
	LevelID      string          `json:"levelID"`
	Level        int             `json:"level"`
	Percentage   decimal.Decimal `json:"percentage"`
	IsActive     bool            `json:"isActive" db:"is_active"`
	MinReferrals *int            `json:"minReferrals,omitempty" db:"min_referrals"`
	MaxReferrals *int            `json:"maxReferrals,omitempty" db:"max_referrals"`
	AuditFields
}

// CommissionSettings is the singleton row of global engine settings.
type CommissionSettings struct {
	SettingID         string          `json:"settingID"`
	Enabled           bool            `json:"enabled"`
	DefaultRateLevel1 decimal.Decimal `json:"defaultRateLevel1" db:"default_rate_level_1"`
	DefaultRateLevel2 decimal.Decimal `json:"defaultRateLevel2" db:"default_rate_level_2"`
	DefaultRateLevel3 decimal.Decimal `json:"defaultRateLevel3" db:"default_rate_level_3"`
	MaxLevels         int             `json:"maxLevels" db:"max_levels"`
	MinCommission     decimal.Decimal `json:"minCommission" db:"min_commission"`
	MaxCommission     decimal.Decimal `json:"maxCommission" db:"max_commission"`
	AutoAdjust        bool            `json:"autoAdjust" db:"auto_adjust"`
	AuditFields
}

// DefaultRateForLevel returns the settings-level fallback percentage for a
// given upline level, or zero if the level is outside the supported range.
func (s CommissionSettings) DefaultRateForLevel(level int) decimal.Decimal {
	switch level {
	case 1:
		return s.DefaultRateLevel1
	case 2:
		return s.DefaultRateLevel2
	case 3:
		return s.DefaultRateLevel3
	}
	return decimal.Zero
}
