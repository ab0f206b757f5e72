package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL       string
	Port              string
	IsProduction      bool
	JWTSecret         string
	JWTExpiryDuration time.Duration
	JWTIssuer         string

	// Rate limit applied to the public transaction-recording endpoint,
	// in ulule/limiter format (e.g. "30-M" for 30 requests per minute).
	PublicRateLimit string

	// Fallback per-level commission rates, used by the engine when no
	// commission_levels row is configured for a level. Defaults are
	// 15 / 5 / 2.5 for levels 1 / 2 / 3; override via
	// DEFAULT_COMMISSION_RATE_L1..L3. This fallback is deliberate and
	// load-bearing, not a silent safety net.
	DefaultCommissionRates [3]decimal.Decimal

	// Upper bound on upline traversal depth when no settings row exists.
	CommissionMaxLevels int
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("JWT_EXPIRY_DURATION", "1h")
	viper.SetDefault("JWT_ISSUER", "affiliate-commission-app")
	viper.SetDefault("PUBLIC_RATE_LIMIT", "30-M")
	viper.SetDefault("DEFAULT_COMMISSION_RATE_L1", "15")
	viper.SetDefault("DEFAULT_COMMISSION_RATE_L2", "5")
	viper.SetDefault("DEFAULT_COMMISSION_RATE_L3", "2.5")
	viper.SetDefault("COMMISSION_MAX_LEVELS", 3)

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	jwtExpiryStr := viper.GetString("JWT_EXPIRY_DURATION")
	jwtExpiryDuration, err := time.ParseDuration(jwtExpiryStr)
	if err != nil {
		jwtExpiryDuration = time.Hour
		log.Printf("Warning: Invalid value for JWT_EXPIRY_DURATION ('%s'). Defaulting to %s.\n", jwtExpiryStr, jwtExpiryDuration.String())
	}
	cfg.JWTExpiryDuration = jwtExpiryDuration
	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")

	cfg.PublicRateLimit = viper.GetString("PUBLIC_RATE_LIMIT")

	for i, key := range []string{"DEFAULT_COMMISSION_RATE_L1", "DEFAULT_COMMISSION_RATE_L2", "DEFAULT_COMMISSION_RATE_L3"} {
		raw := viper.GetString(key)
		rate, err := decimal.NewFromString(raw)
		if err != nil || rate.IsNegative() {
			log.Printf("Warning: Invalid value for %s ('%s'). Falling back to built-in default.\n", key, raw)
			rate = builtinDefaultRates[i]
		}
		cfg.DefaultCommissionRates[i] = rate
	}

	cfg.CommissionMaxLevels = viper.GetInt("COMMISSION_MAX_LEVELS")
	if cfg.CommissionMaxLevels < 1 || cfg.CommissionMaxLevels > 3 {
		log.Printf("Warning: COMMISSION_MAX_LEVELS out of range (%d). Defaulting to 3.\n", cfg.CommissionMaxLevels)
		cfg.CommissionMaxLevels = 3
	}

	return cfg, nil
}

// builtinDefaultRates are the documented 15 / 5 / 2.5 level percentages.
var builtinDefaultRates = [3]decimal.Decimal{
	decimal.NewFromInt(15),
	decimal.NewFromInt(5),
	decimal.RequireFromString("2.5"),
}
