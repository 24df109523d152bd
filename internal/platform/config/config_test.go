package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	id "vanity/pkg/domain"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg := FromEnv()

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, id.Amount(100), cfg.BasePrice)
	assert.Equal(t, id.Amount(500), cfg.Advance)
	assert.Equal(t, 72*time.Hour, cfg.LockingPeriod)
	assert.Equal(t, 24*time.Hour, cfg.RenewPeriod)
	assert.Empty(t, cfg.PostgresURL)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "vanity.audit", cfg.KafkaTopic)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("VANITY_ADDR", ":9999")
	t.Setenv("VANITY_BASE_PRICE", "250")
	t.Setenv("VANITY_ADVANCE", "1000")
	t.Setenv("VANITY_LOCKING_PERIOD", "48h")
	t.Setenv("VANITY_RENEW_PERIOD", "12h")
	t.Setenv("VANITY_KAFKA_BROKERS", "broker-1:9092, broker-2:9092")

	cfg := FromEnv()

	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, id.Amount(250), cfg.BasePrice)
	assert.Equal(t, id.Amount(1000), cfg.Advance)
	assert.Equal(t, 48*time.Hour, cfg.LockingPeriod)
	assert.Equal(t, 12*time.Hour, cfg.RenewPeriod)
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.KafkaBrokers)
}

func TestFromEnvIgnoresMalformedValues(t *testing.T) {
	t.Setenv("VANITY_BASE_PRICE", "not-a-number")
	t.Setenv("VANITY_LOCKING_PERIOD", "soon")

	cfg := FromEnv()

	assert.Equal(t, id.Amount(100), cfg.BasePrice)
	assert.Equal(t, 72*time.Hour, cfg.LockingPeriod)
}
