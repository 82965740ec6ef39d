package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/jafarshop/storefront/internal/pricing"
)

type Config struct {
	Port        string
	Environment string
	Database    DatabaseConfig
	Redis       RedisConfig
	Kafka       KafkaConfig
	Pricing     PricingConfig
	LogLevel    string
}

type DatabaseConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	DBName       string
	SSLMode      string
	MaxOpenConns int
}

// DSN returns the lib/pq connection string
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Addr             string
	Password         string
	DB               int
	SettingsCacheTTL time.Duration
	IdempotencyTTL   time.Duration
}

// Enabled reports whether a Redis address is configured
func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

type KafkaConfig struct {
	Brokers     []string
	OrdersTopic string
}

// Enabled reports whether any broker is configured
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

// PricingConfig holds the GST policy and the shipping defaults seeded into a fresh settings record
type PricingConfig struct {
	GST             pricing.GSTPolicy
	DefaultShipping pricing.ShippingSettings
}

func Load() (*Config, error) {
	viper.SetConfigType("env")
	viper.SetConfigName(".env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_MAX_OPEN_CONNS", 25)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("SETTINGS_CACHE_TTL", "30s")
	viper.SetDefault("IDEMPOTENCY_TTL", "24h")
	viper.SetDefault("KAFKA_ORDERS_TOPIC", "storefront.orders")

	// Read from environment variables
	viper.AutomaticEnv()

	// Try to read .env file (optional)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	gst, err := loadGSTPolicy()
	if err != nil {
		return nil, err
	}
	defaultShipping, err := loadDefaultShipping()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:        getEnvOrViper("PORT", "8080"),
		Environment: getEnvOrViper("ENVIRONMENT", "development"),
		Database: DatabaseConfig{
			Host:         getEnvOrViper("DB_HOST", "localhost"),
			Port:         getEnvOrViper("DB_PORT", "5432"),
			User:         getEnvOrViper("DB_USER", "postgres"),
			Password:     getEnvOrViper("DB_PASSWORD", "postgres"),
			DBName:       getEnvOrViper("DB_NAME", "storefront"),
			SSLMode:      getEnvOrViper("DB_SSLMODE", "disable"),
			MaxOpenConns: viper.GetInt("DB_MAX_OPEN_CONNS"),
		},
		Redis: RedisConfig{
			Addr:             getEnvOrViper("REDIS_ADDR", ""),
			Password:         getEnvOrViper("REDIS_PASSWORD", ""),
			DB:               viper.GetInt("REDIS_DB"),
			SettingsCacheTTL: viper.GetDuration("SETTINGS_CACHE_TTL"),
			IdempotencyTTL:   viper.GetDuration("IDEMPOTENCY_TTL"),
		},
		Kafka: KafkaConfig{
			Brokers:     splitList(getEnvOrViper("KAFKA_BROKERS", "")),
			OrdersTopic: getEnvOrViper("KAFKA_ORDERS_TOPIC", "storefront.orders"),
		},
		Pricing: PricingConfig{
			GST:             gst,
			DefaultShipping: defaultShipping,
		},
		LogLevel: getEnvOrViper("LOG_LEVEL", "info"),
	}

	return cfg, nil
}

func loadGSTPolicy() (pricing.GSTPolicy, error) {
	policy := pricing.DefaultGSTPolicy

	var err error
	if policy.Threshold, err = getDecimal("GST_THRESHOLD", policy.Threshold); err != nil {
		return policy, err
	}
	if policy.LowRate, err = getDecimal("GST_LOW_RATE", policy.LowRate); err != nil {
		return policy, err
	}
	if policy.HighRate, err = getDecimal("GST_HIGH_RATE", policy.HighRate); err != nil {
		return policy, err
	}

	if err := ValidateGSTPolicy(policy); err != nil {
		return policy, err
	}
	return policy, nil
}

// ValidateGSTPolicy rejects rates outside [0,1] and a low rate above the high rate
func ValidateGSTPolicy(p pricing.GSTPolicy) error {
	for name, rate := range map[string]decimal.Decimal{"GST_LOW_RATE": p.LowRate, "GST_HIGH_RATE": p.HighRate} {
		if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
			return fmt.Errorf("%s must be between 0 and 1, got %s", name, rate)
		}
	}
	if p.LowRate.GreaterThan(p.HighRate) {
		return fmt.Errorf("GST_LOW_RATE %s exceeds GST_HIGH_RATE %s", p.LowRate, p.HighRate)
	}
	if p.Threshold.IsNegative() {
		return fmt.Errorf("GST_THRESHOLD must not be negative, got %s", p.Threshold)
	}
	return nil
}

func loadDefaultShipping() (pricing.ShippingSettings, error) {
	settings := pricing.DefaultShippingSettings

	var err error
	if settings.FreeShippingThreshold, err = getDecimal("DEFAULT_FREE_SHIPPING_THRESHOLD", settings.FreeShippingThreshold); err != nil {
		return settings, err
	}
	if settings.DefaultShippingCost, err = getDecimal("DEFAULT_SHIPPING_COST", settings.DefaultShippingCost); err != nil {
		return settings, err
	}
	return settings, nil
}

func getDecimal(key string, defaultValue decimal.Decimal) (decimal.Decimal, error) {
	raw := getEnvOrViper(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return defaultValue, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return value, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvOrViper(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return defaultValue
}
