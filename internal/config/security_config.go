package config

import "time"

type SecurityConfig interface {
	GetTokenSecret() string
	GetTokenExpiry() time.Duration
	GetClientTokenExpiry() time.Duration
	GetAdminEmail() string
	GetAdminPassword() string
	GetPartnerBaseURL() string
	GetRevokedTokenStore() string
}

// Revoked token stores
const (
	RevokedTokenStoreMemory = "memory"
	RevokedTokenStoreRedis  = "redis" // shares REDIS_URL with the session store
)

type Security struct{}

var _ SecurityConfig = Security{}

func (Security) GetTokenSecret() string {
	return GetEnv("TOKEN_SECRET", "")
}

func (Security) GetTokenExpiry() time.Duration {
	return GetDurationEnv("TOKEN_EXPIRY", 24*time.Hour)
}

func (Security) GetClientTokenExpiry() time.Duration {
	return GetDurationEnv("CLIENT_TOKEN_EXPIRY", time.Hour)
}

func (Security) GetAdminEmail() string {
	return GetEnv("ADMIN_EMAIL", "")
}

func (Security) GetAdminPassword() string {
	return GetEnv("ADMIN_PASSWORD", "")
}

// GetPartnerBaseURL is the base URL handed to partners in credential bundles.
func (Security) GetPartnerBaseURL() string {
	return GetEnv("PARTNER_BASE_URL", "https://api.pixelpirates.dev/v1")
}

// GetRevokedTokenStore selects where signed-out session token IDs are kept.
func (Security) GetRevokedTokenStore() string {
	return GetEnv("REVOKED_TOKEN_STORE", RevokedTokenStoreMemory)
}
