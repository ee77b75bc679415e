package config

import (
	"os"
	"strconv"
	"time"
)

// Server captures process level configuration so main stays lean.
type Server struct {
	Addr            string
	DatabaseURL     string
	PolicyFile      string
	GrantTTL        time.Duration
	AuditBufferSize int
	Redis           RedisConfig
}

// RedisConfig holds the connection settings for the revoked-grant cache.
// An empty URL disables Redis entirely.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	addr := os.Getenv("MEMSCOPE_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	grantTTL := durationEnv("MEMSCOPE_GRANT_TTL", 24*time.Hour)
	auditBuffer := intEnv("MEMSCOPE_AUDIT_BUFFER", 1024)

	return Server{
		Addr:            addr,
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		PolicyFile:      os.Getenv("MEMSCOPE_POLICY_FILE"),
		GrantTTL:        grantTTL,
		AuditBufferSize: auditBuffer,
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     intEnv("REDIS_POOL_SIZE", 10),
			MinIdleConns: intEnv("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  durationEnv("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  durationEnv("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: durationEnv("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
	}
}

func intEnv(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return v
}
