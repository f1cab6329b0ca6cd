package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"store-auditor/internal/types"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	t.Setenv(EnvUserAgent, "")

	config, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, types.DefaultConfig(), config)
	assert.Equal(t, 8*time.Second, config.AttemptTimeout(0))
	assert.Equal(t, 11*time.Second, config.AttemptTimeout(1))
	assert.Equal(t, 14*time.Second, config.AttemptTimeout(2))
}

func TestLoad_MergesFile(t *testing.T) {
	t.Setenv(EnvUserAgent, "")
	path := filepath.Join(t.TempDir(), "auditor.yaml")
	content := `
base_timeout: 5s
transports:
  - name: mirror
    endpoint: "https://mirror.example.net/fetch?target={url}"
    envelope: json
  - name: plain
    endpoint: "{raw}"
    timeout: 2s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	config, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, config.BaseTimeout)
	assert.Equal(t, 3*time.Second, config.TimeoutStep)
	assert.Equal(t, types.DefaultConfig().UserAgent, config.UserAgent)
	require.Len(t, config.Transports, 2)
	assert.Equal(t, "mirror", config.Transports[0].Name)
	assert.Equal(t, types.EnvelopeJSON, config.Transports[0].Envelope)
	assert.Equal(t, types.EnvelopeAuto, config.Transports[1].Envelope)
	assert.Equal(t, 5*time.Second, config.AttemptTimeout(0))
	assert.Equal(t, 2*time.Second, config.AttemptTimeout(1))
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	t.Setenv(EnvUserAgent, "audit-bot/1.0")

	config, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, "audit-bot/1.0", config.UserAgent)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))

	assert.Error(t, err)
}

func TestMerge_RejectsTransportWithoutEndpoint(t *testing.T) {
	config := types.DefaultConfig()

	err := Merge(config, []byte("transports:\n  - name: broken\n"))

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "has no endpoint")
}
