package config

import (
	"os"
	"strconv"
	"time"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr          string
	JWTSigningKey string

	Redis      RedisConfig
	Downstream DownstreamConfig
	Audit      AuditConfig
}

// RedisConfig controls the optional Redis session backend. An empty URL means
// sessions stay in process memory.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DownstreamConfig holds base URLs for the external APIs the step controllers
// consult while rendering and completing journeys.
type DownstreamConfig struct {
	ContactsAPIURL    string
	PrisonerSearchURL string
	ReferenceDataURL  string
	Timeout           time.Duration
}

// AuditConfig controls the audit event publisher. Empty brokers disable the
// Kafka sink and events are kept in memory.
type AuditConfig struct {
	Brokers []string
	Topic   string
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("CONTACTS_ADMIN_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	return Server{
		Addr:          addr,
		JWTSigningKey: jwtSigningKey,
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Downstream: DownstreamConfig{
			ContactsAPIURL:    envDefault("CONTACTS_API_URL", "http://localhost:8081"),
			PrisonerSearchURL: envDefault("PRISONER_SEARCH_URL", "http://localhost:8082"),
			ReferenceDataURL:  envDefault("REFERENCE_DATA_URL", "http://localhost:8083"),
			Timeout:           10 * time.Second,
		},
		Audit: AuditConfig{
			Brokers: splitNonEmpty(os.Getenv("AUDIT_KAFKA_BROKERS")),
			Topic:   envDefault("AUDIT_KAFKA_TOPIC", "contacts-admin-audit"),
		},
	}
}

func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func splitNonEmpty(csv string) []string {
	var out []string
	start := 0
	for i := 0; i <= len(csv); i++ {
		if i == len(csv) || csv[i] == ',' {
			if i > start {
				out = append(out, csv[start:i])
			}
			start = i + 1
		}
	}
	return out
}
