package config

import (
	"os"
	"strconv"
	"time"
)

const (
	// Cache
	KeyPrefix       = "chat:"
	RecentCacheSize = 50
	DefaultCacheTTL = 24 * time.Hour

	// Reads
	DefaultRecentLimit = 20
	MaxRecentLimit     = 100

	// Auth
	TokenLifetime = 72 * time.Hour
	TokenIssuer   = "chatterbox-service"
)

// CacheTTL returns the message cache TTL, honouring REDIS_CHAT_TTL (seconds).
func CacheTTL() time.Duration {
	raw := os.Getenv("REDIS_CHAT_TTL")
	if raw == "" {
		return DefaultCacheTTL
	}
	secs, err := strconv.Atoi(raw)
	if err != nil || secs <= 0 {
		return DefaultCacheTTL
	}
	return time.Duration(secs) * time.Second
}

// Getenv reads an environment variable with a fallback default.
func Getenv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
