package config

import (
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool
	JWTSecret     string
	JWTIssuer     string

	// Transaction rules
	MaxTransactionAmount             decimal.Decimal
	DefaultReceiptThreshold          decimal.Decimal
	DefaultLargeTransactionThreshold decimal.Decimal
	DefaultApprovalThreshold         decimal.Decimal
	DuplicateWindowDays              int
	MinJustificationLength           int
	SuggestionMinConfidence          float64

	// Feed ingestion
	RateLimit     string // ulule limiter format, e.g. "100-M"
	FeedTokenHash string // bcrypt hash of the shared feed token

	PosthogAPIKey      string
	CORSAllowedOrigins []string

	SMTP SMTPConfig
}

// SMTPConfig configures outgoing notification mail.
type SMTPConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Username string
	Password string
	From     string
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
	viper.SetDefault("JWT_ISSUER", "team-finance-engine")
	viper.SetDefault("MAX_TRANSACTION_AMOUNT", "100000")
	viper.SetDefault("DEFAULT_RECEIPT_THRESHOLD", "100")
	viper.SetDefault("DEFAULT_LARGE_TRANSACTION_THRESHOLD", "500")
	viper.SetDefault("DEFAULT_APPROVAL_THRESHOLD", "200")
	viper.SetDefault("DUPLICATE_WINDOW_DAYS", 3)
	viper.SetDefault("MIN_JUSTIFICATION_LENGTH", 10)
	viper.SetDefault("SUGGESTION_MIN_CONFIDENCE", 0.8)
	viper.SetDefault("RATE_LIMIT", "100-M")
	viper.SetDefault("FEED_TOKEN_HASH", "")
	viper.SetDefault("POSTHOG_API_KEY", "")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("SMTP_ENABLED", false)
	viper.SetDefault("SMTP_HOST", "")
	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("SMTP_USERNAME", "")
	viper.SetDefault("SMTP_PASSWORD", "")
	viper.SetDefault("SMTP_FROM", "")

	// This allows overriding defaults with .env file values, which can then be overridden by actual environment variables.
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

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "a-very-secret-key-should-be-longer-and-random" // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")
	if cfg.JWTIssuer == "" {
		cfg.JWTIssuer = "team-finance-engine"
		log.Printf("Warning: JWT_ISSUER not set. Defaulting to %s.\n", cfg.JWTIssuer)
	}

	cfg.MaxTransactionAmount = decimalSetting("MAX_TRANSACTION_AMOUNT", "100000")
	cfg.DefaultReceiptThreshold = decimalSetting("DEFAULT_RECEIPT_THRESHOLD", "100")
	cfg.DefaultLargeTransactionThreshold = decimalSetting("DEFAULT_LARGE_TRANSACTION_THRESHOLD", "500")
	cfg.DefaultApprovalThreshold = decimalSetting("DEFAULT_APPROVAL_THRESHOLD", "200")

	cfg.DuplicateWindowDays = viper.GetInt("DUPLICATE_WINDOW_DAYS")
	if cfg.DuplicateWindowDays <= 0 {
		cfg.DuplicateWindowDays = 3
		log.Printf("Warning: Invalid DUPLICATE_WINDOW_DAYS. Defaulting to %d.\n", cfg.DuplicateWindowDays)
	}

	cfg.MinJustificationLength = viper.GetInt("MIN_JUSTIFICATION_LENGTH")
	if cfg.MinJustificationLength <= 0 {
		cfg.MinJustificationLength = 10
		log.Printf("Warning: Invalid MIN_JUSTIFICATION_LENGTH. Defaulting to %d.\n", cfg.MinJustificationLength)
	}

	cfg.SuggestionMinConfidence = viper.GetFloat64("SUGGESTION_MIN_CONFIDENCE")

	cfg.RateLimit = viper.GetString("RATE_LIMIT")
	cfg.FeedTokenHash = viper.GetString("FEED_TOKEN_HASH")
	if cfg.FeedTokenHash == "" {
		log.Println("Warning: FEED_TOKEN_HASH not set. Bank feed ingestion is disabled.")
	}

	cfg.PosthogAPIKey = viper.GetString("POSTHOG_API_KEY")
	for _, origin := range strings.Split(viper.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if o := strings.TrimSpace(origin); o != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
		}
	}

	cfg.SMTP = SMTPConfig{
		Enabled:  viper.GetBool("SMTP_ENABLED"),
		Host:     viper.GetString("SMTP_HOST"),
		Port:     viper.GetInt("SMTP_PORT"),
		Username: viper.GetString("SMTP_USERNAME"),
		Password: viper.GetString("SMTP_PASSWORD"),
		From:     viper.GetString("SMTP_FROM"),
	}
	if cfg.SMTP.Enabled && cfg.SMTP.Host == "" {
		log.Println("Warning: SMTP_ENABLED is set but SMTP_HOST is empty. Notifications will not be sent.")
		cfg.SMTP.Enabled = false
	}

	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")

	return cfg, nil
}

func decimalSetting(key, fallback string) decimal.Decimal {
	raw := viper.GetString(key)
	d, err := decimal.NewFromString(raw)
	if err != nil {
		log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, fallback)
		return decimal.RequireFromString(fallback)
	}
	return d
}
