package logging_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-identity-dashboard/internal/config"
	"github.com/jrsteele09/go-identity-dashboard/internal/logging"
)

func TestSetup(t *testing.T) {
	saved := log.Logger
	t.Cleanup(func() { log.Logger = saved })

	t.Setenv("APP_ENV", "production")
	t.Setenv("LOG_LEVEL", "warn")

	var buf bytes.Buffer
	require.NoError(t, logging.Setup(config.EnvVars{}, &buf))

	log.Info().Msg("hidden")
	require.Zero(t, buf.Len())

	log.Warn().Str("email", "a@b.com").Msg("shown")
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "shown", entry["message"])
	require.Equal(t, "warn", entry["level"])
}

func TestSetup_BadLevel(t *testing.T) {
	saved := log.Logger
	t.Cleanup(func() { log.Logger = saved })

	t.Setenv("APP_ENV", "development")
	t.Setenv("LOG_LEVEL", "loud")

	var buf bytes.Buffer
	require.Error(t, logging.Setup(config.EnvVars{}, &buf))

	log.Info().Msg("still logged")
	require.Contains(t, buf.String(), "still logged")
}
