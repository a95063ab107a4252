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
	EnableDBCheck     bool
	JWTSecret         string
	JWTExpiryDuration time.Duration
	JWTIssuer         string

	// Exception detection thresholds
	ExceptionLargeVarianceAmount decimal.Decimal
	ExceptionNetSwingThreshold   decimal.Decimal

	FrontendBaseURL string `mapstructure:"FRONTEND_BASE_URL"`
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("JWT_EXPIRY_DURATION", "1h")
	viper.SetDefault("JWT_ISSUER", "depot-backend")
	viper.SetDefault("EXCEPTION_LARGE_VARIANCE_AMOUNT", "1000")
	viper.SetDefault("EXCEPTION_NET_SWING_THRESHOLD", "0.3")
	viper.SetDefault("FRONTEND_BASE_URL", "http://localhost:3000")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	jwtSecret := viper.GetString("JWT_SECRET")
	if jwtSecret == "a-very-secret-key-should-be-longer-and-random" {
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	jwtExpiryStr := viper.GetString("JWT_EXPIRY_DURATION")
	jwtExpiryDuration, err := time.ParseDuration(jwtExpiryStr)
	if err != nil {
		jwtExpiryDuration = time.Hour * 1
		if jwtExpiryStr != "" {
			log.Printf("Warning: Invalid value for JWT_EXPIRY_DURATION ('%s'). Defaulting to %s.\n", jwtExpiryStr, jwtExpiryDuration.String())
		}
	}

	jwtIssuer := viper.GetString("JWT_ISSUER")
	if jwtIssuer == "" {
		jwtIssuer = "depot-backend"
		log.Printf("Warning: JWT_ISSUER not set. Defaulting to %s.\n", jwtIssuer)
	}

	largeVarianceStr := viper.GetString("EXCEPTION_LARGE_VARIANCE_AMOUNT")
	largeVariance, err := decimal.NewFromString(largeVarianceStr)
	if err != nil || largeVariance.IsNegative() {
		largeVariance = decimal.NewFromInt(1000)
		log.Printf("Warning: Invalid value for EXCEPTION_LARGE_VARIANCE_AMOUNT ('%s'). Defaulting to %s.\n", largeVarianceStr, largeVariance.String())
	}

	netSwingStr := viper.GetString("EXCEPTION_NET_SWING_THRESHOLD")
	netSwing, err := decimal.NewFromString(netSwingStr)
	if err != nil || netSwing.IsNegative() {
		netSwing = decimal.RequireFromString("0.3")
		log.Printf("Warning: Invalid value for EXCEPTION_NET_SWING_THRESHOLD ('%s'). Defaulting to %s.\n", netSwingStr, netSwing.String())
	}

	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")
	cfg.JWTSecret = jwtSecret
	cfg.JWTExpiryDuration = jwtExpiryDuration
	cfg.JWTIssuer = jwtIssuer
	cfg.ExceptionLargeVarianceAmount = largeVariance
	cfg.ExceptionNetSwingThreshold = netSwing
	cfg.FrontendBaseURL = viper.GetString("FRONTEND_BASE_URL")

	return cfg, nil
}
