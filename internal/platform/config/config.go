// Package config builds the process configuration from environment variables
// so main stays lean. Unset optional backends (Postgres, Redis, Kafka) fall
// back to in-memory implementations.
package config

import (
	"os"
	"strings"
	"time"
)

// Config captures everything the server process needs at startup.
type Config struct {
	Addr        string
	ProfilePath string

	PostgresURL string
	RedisURL    string

	// ConsentDataTTL bounds how long adapter blobs survive in Redis.
	ConsentDataTTL time.Duration

	KafkaBrokers []string
	KafkaTopic   string

	// AdapterTimeout caps every authentication-backend call.
	AdapterTimeout time.Duration

	OAuthSigningKey string
	OAuthIssuer     string
}

// FromEnv reads the configuration from the environment.
func FromEnv() Config {
	return Config{
		Addr:            envOr("XS2GATE_ADDR", ":8080"),
		ProfilePath:     os.Getenv("XS2GATE_PROFILE_PATH"),
		PostgresURL:     os.Getenv("XS2GATE_POSTGRES_URL"),
		RedisURL:        os.Getenv("XS2GATE_REDIS_URL"),
		ConsentDataTTL:  durationOr("XS2GATE_CONSENT_DATA_TTL", 24*time.Hour),
		KafkaBrokers:    splitList(os.Getenv("XS2GATE_KAFKA_BROKERS")),
		KafkaTopic:      envOr("XS2GATE_KAFKA_TOPIC", "xs2gate.sca-status-changes"),
		AdapterTimeout:  durationOr("XS2GATE_ADAPTER_TIMEOUT", 10*time.Second),
		OAuthSigningKey: os.Getenv("XS2GATE_OAUTH_SIGNING_KEY"),
		OAuthIssuer:     os.Getenv("XS2GATE_OAUTH_ISSUER"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationOr(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
