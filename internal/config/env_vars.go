package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	portEnvVar     = "PORT"
	appNameVar     = "APP_NAME"
	appEnvVar      = "APP_ENV"
	logLevelVar    = "LOG_LEVEL"
	apiBaseURLVar  = "API_BASE_URL"
	apiTimeoutVar  = "API_TIMEOUT"
	enableMockVar  = "ENABLE_MOCK_API"
	environmentDev = "development"
	environmentPrd = "production"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, "3000")
	if !strings.HasPrefix(port, ":") {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Pixel Pirates Identity Network")
}

// GetEnv returns one of development, production or test.
func (EnvVars) GetEnv() string {
	return GetEnv(appEnvVar, environmentDev)
}

func (e EnvVars) IsDevelopment() bool {
	return e.GetEnv() == environmentDev
}

func (e EnvVars) IsProduction() bool {
	return e.GetEnv() == environmentPrd
}

func (EnvVars) GetLogLevel() string {
	return GetEnv(logLevelVar, "info")
}

type API struct{}

var _ APIConfig = API{}

func (API) GetAPIBaseURL() string {
	return GetEnv(apiBaseURLVar, "http://localhost:3000/api")
}

// GetAPITimeout reads API_TIMEOUT in milliseconds.
func (API) GetAPITimeout() time.Duration {
	return time.Duration(GetNumberEnv(apiTimeoutVar, 10000)) * time.Millisecond
}

func (API) GetEnableMockAPI() bool {
	return GetBoolEnv(enableMockVar, true)
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

// GetBoolEnv treats "true" and "1" as true. Unset or empty returns the default.
func GetBoolEnv(envVar string, defaultValue bool) bool {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1"
}

// GetNumberEnv returns the default when the variable is unset or not a number.
func GetNumberEnv(envVar string, defaultValue int) int {
	value, ok := os.LookupEnv(envVar)
	if !ok {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func GetDurationEnv(envVar string, defaultValue time.Duration) time.Duration {
	value, ok := os.LookupEnv(envVar)
	if !ok {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}
