package config

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jafarshop/storefront/internal/pricing"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("REDIS_ADDR", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.False(t, cfg.Kafka.Enabled())
	assert.False(t, cfg.Redis.Enabled())
	assert.True(t, cfg.Pricing.GST.Threshold.Equal(decimal.NewFromInt(999)))
	assert.True(t, cfg.Pricing.DefaultShipping.DefaultShippingCost.IsZero())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("GST_HIGH_RATE", "0.18")
	t.Setenv("DEFAULT_SHIPPING_COST", "49.5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Pricing.GST.HighRate.Equal(decimal.RequireFromString("0.18")))
	assert.True(t, cfg.Pricing.DefaultShipping.DefaultShippingCost.Equal(decimal.RequireFromString("49.5")))
}

func TestLoad_InvalidDecimal(t *testing.T) {
	t.Setenv("GST_THRESHOLD", "lots")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidateGSTPolicy(t *testing.T) {
	assert.NoError(t, ValidateGSTPolicy(pricing.DefaultGSTPolicy))

	inverted := pricing.DefaultGSTPolicy
	inverted.LowRate, inverted.HighRate = inverted.HighRate, inverted.LowRate
	assert.Error(t, ValidateGSTPolicy(inverted))

	tooHigh := pricing.DefaultGSTPolicy
	tooHigh.HighRate = decimal.NewFromInt(2)
	assert.Error(t, ValidateGSTPolicy(tooHigh))
}

func TestDatabaseConfig_DSN(t *testing.T) {
	db := DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", DBName: "shop", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=shop sslmode=disable", db.DSN())
}
