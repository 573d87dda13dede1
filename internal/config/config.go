package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	DatabaseURL string
	Port        string
	LogLevel    string
	Environment string

	// eBay application credentials (client-credentials grant)
	EbayAppID    string
	EbayCertID   string
	EbayTokenURL string
	EbayAPIURL   string

	// Comp search behavior
	IncludeShipping bool          // add shipping cost to each observed sale price
	CompCacheTTL    time.Duration // how long a comp result stays valid
	MaxRetries      int           // total attempts per search, including the first
	RetryBaseDelay  time.Duration // exponential backoff base
	RequestDelay    time.Duration // fixed pause between external searches

	// Estimation and routing policy
	MarketplaceFeeRate    float64 // channel fee as a fraction of revenue
	RecoveryThreshold     float64 // minimum recovery rate for marketplace routing
	DefaultRecoveryRate   float64 // assumed recovery for products skipped by the budget
	WholesaleRecoveryRate float64 // fixed recovery for the all-wholesale counterfactual
	QueryLimit            int     // per-run ceiling on external searches, 0 = unlimited
}

func Load() *Config {
	return &Config{
		DatabaseURL: getEnv("DATABASE_URL", "root:password@tcp(localhost:3306)/liquidation?charset=utf8mb4&parseTime=True&loc=Local"),
		Port:        getEnv("PORT", "8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Environment: getEnv("ENVIRONMENT", "development"),

		EbayAppID:    getEnv("EBAY_APP_ID", ""),
		EbayCertID:   getEnv("EBAY_CERT_ID", ""),
		EbayTokenURL: getEnv("EBAY_TOKEN_URL", "https://api.ebay.com/identity/v1/oauth2/token"),
		EbayAPIURL:   getEnv("EBAY_API_URL", "https://api.ebay.com"),

		IncludeShipping: getEnv("COMP_INCLUDE_SHIPPING", "false") == "true",
		CompCacheTTL:    getEnvDuration("COMP_CACHE_TTL", 4*time.Hour),
		MaxRetries:      getEnvInt("COMP_MAX_RETRIES", 3),
		RetryBaseDelay:  getEnvDuration("COMP_RETRY_BASE_DELAY", 2*time.Second),
		RequestDelay:    getEnvDuration("COMP_REQUEST_DELAY", 350*time.Millisecond),

		MarketplaceFeeRate:    getEnvFloat("MARKETPLACE_FEE_RATE", 0.13),
		RecoveryThreshold:     getEnvFloat("RECOVERY_THRESHOLD", 0.60),
		DefaultRecoveryRate:   getEnvFloat("DEFAULT_RECOVERY_RATE", 0.30),
		WholesaleRecoveryRate: getEnvFloat("WHOLESALE_RECOVERY_RATE", 0.30),
		QueryLimit:            getEnvInt("COMP_QUERY_LIMIT", 0),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
