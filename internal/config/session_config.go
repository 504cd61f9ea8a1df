package config

import (
	"os"
	"path/filepath"
	"time"
)

const (
	SessionBackendFile   = "file"
	SessionBackendRedis  = "redis"
	SessionBackendMemory = "memory"
)

type Sessions struct{}

var _ SessionConfig = Sessions{}

func (Sessions) GetSessionBackend() string {
	return GetEnv("SESSION_BACKEND", SessionBackendFile)
}

// GetSessionFile defaults to the user's config directory, falling back to the
// working directory when that cannot be determined.
func (Sessions) GetSessionFile() string {
	if file := os.Getenv("SESSION_FILE"); file != "" {
		return file
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "session.json"
	}
	return filepath.Join(dir, "identity-dashboard", "session.json")
}

func (Sessions) GetRedisURL() string {
	return GetEnv("REDIS_URL", "redis://localhost:6379/0")
}

func (Sessions) GetSessionKeyPrefix() string {
	return GetEnv("SESSION_KEY_PREFIX", "dashboard")
}

// GetSessionTTL is applied by stores that support expiry. Zero keeps keys forever.
func (Sessions) GetSessionTTL() time.Duration {
	return GetDurationEnv("SESSION_TTL", 0)
}
