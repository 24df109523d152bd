package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	id "vanity/pkg/domain"
)

// Server captures process-level configuration: listen address, the
// registry's economic and temporal constants, and backing-service URLs.
// Empty URLs select the in-memory implementations.
type Server struct {
	Addr string

	BasePrice     id.Amount
	Advance       id.Amount
	LockingPeriod time.Duration
	RenewPeriod   time.Duration

	PostgresURL  string
	Redis        RedisConfig
	KafkaBrokers []string
	KafkaTopic   string

	JWTSigningKey string
}

// RedisConfig tunes the optional redis-backed reservation store.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Server config from environment variables so main stays
// lean. Development defaults are deliberately small so the temporal windows
// are observable by hand.
func FromEnv() Server {
	return Server{
		Addr: envString("VANITY_ADDR", ":8080"),

		BasePrice:     envAmount("VANITY_BASE_PRICE", 100),
		Advance:       envAmount("VANITY_ADVANCE", 500),
		LockingPeriod: envDuration("VANITY_LOCKING_PERIOD", 72*time.Hour),
		RenewPeriod:   envDuration("VANITY_RENEW_PERIOD", 24*time.Hour),

		PostgresURL: os.Getenv("VANITY_POSTGRES_URL"),
		Redis: RedisConfig{
			URL:          os.Getenv("VANITY_REDIS_URL"),
			PoolSize:     envInt("VANITY_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("VANITY_REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("VANITY_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("VANITY_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("VANITY_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		KafkaBrokers: envList("VANITY_KAFKA_BROKERS"),
		KafkaTopic:   envString("VANITY_KAFKA_TOPIC", "vanity.audit"),

		// Development default - must be overridden in production.
		JWTSigningKey: envString("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func envAmount(key string, fallback id.Amount) id.Amount {
	if v := os.Getenv(key); v != "" {
		if parsed, err := id.ParseAmount(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
