package config

import (
	"time"

	"github.com/rs/zerolog/log"
)

type Config interface {
	EnvConfig
	APIConfig
	SessionConfig
	CorsConfig
	SecurityConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	IsDevelopment() bool
	IsProduction() bool
	GetLogLevel() string
}

// APIConfig selects and parameterises the credential issuer.
type APIConfig interface {
	GetAPIBaseURL() string
	GetAPITimeout() time.Duration
	GetEnableMockAPI() bool
}

// SessionConfig selects the persisted session store backend.
type SessionConfig interface {
	GetSessionBackend() string
	GetSessionFile() string
	GetRedisURL() string
	GetSessionKeyPrefix() string
	GetSessionTTL() time.Duration
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	API
	Sessions
	Cors
	Security
}

func New() Config {
	return mainConfig{}
}

// Validate returns the names of required settings that are empty and logs a
// warning for them. Missing settings are not fatal.
func Validate(c Config) []string {
	required := map[string]string{
		apiBaseURLVar: c.GetAPIBaseURL(),
	}

	var missing []string
	for key, value := range required {
		if value == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		log.Warn().Strs("missing", missing).Msg("missing environment variables")
	}
	return missing
}
