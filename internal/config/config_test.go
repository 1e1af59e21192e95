package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"SV2_BRIDGE_PORT", "SV2_BRIDGE_LOG", "SV2_BRIDGE_DB", "LOG_LEVEL", "SV2_BOTTLE_NAME", "SV2_OAUTH_RESPONSE_TYPE"} {
		t.Setenv(key, "")
	}
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultLogPath, cfg.LogPath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "code", cfg.ResponseType)
	assert.Empty(t, cfg.Bottle)
	assert.NotEmpty(t, cfg.DBPath)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SV2_BRIDGE_PORT", "9999")
	t.Setenv("SV2_BRIDGE_LOG", "/tmp/other.log")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SV2_BOTTLE_NAME", "SV2")
	t.Setenv("SV2_OAUTH_RESPONSE_TYPE", "id_token")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.Port)
	assert.Equal(t, "/tmp/other.log", cfg.LogPath)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "SV2", cfg.Bottle)
	assert.Equal(t, "id_token", cfg.ResponseType)
}

func TestLoad_IgnoresBadPort(t *testing.T) {
	t.Setenv("SV2_BRIDGE_PORT", "not-a-port")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultPort, cfg.Port)
}
