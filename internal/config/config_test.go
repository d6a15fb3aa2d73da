// ABOUTME: Tests for config loading, env expansion, durations, and validation
// ABOUTME: Writes temporary YAML files via t.TempDir

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bonte.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const validConfig = `
server:
  http_addr: ":8080"
database:
  path: "/tmp/bonte.db"
auth:
  jwt_secret: "secret"
ai:
  api_key: "test-key"
`

func TestLoad_Valid(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.HTTPAddr)
	assert.Equal(t, "/tmp/bonte.db", cfg.Database.Path)
	assert.Equal(t, "secret", cfg.Auth.JWTSecret)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)

	assert.Equal(t, DefaultModel, cfg.AI.Model)
	assert.Equal(t, 120*time.Second, cfg.Chat.PollTimeout)
	assert.Equal(t, 30*time.Minute, cfg.Chat.SessionTTL)
	assert.Equal(t, 512, cfg.Chat.SessionMax)
	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTokenTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.RefreshTokenTTL)
}

func TestLoad_Durations(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig+`
chat:
  poll_timeout: "90s"
  session_ttl: "1h"
  session_max: 64
`))
	require.NoError(t, err)

	assert.Equal(t, 90*time.Second, cfg.Chat.PollTimeout)
	assert.Equal(t, time.Hour, cfg.Chat.SessionTTL)
	assert.Equal(t, 64, cfg.Chat.SessionMax)
}

func TestLoad_InvalidDuration(t *testing.T) {
	_, err := Load(writeConfig(t, validConfig+`
chat:
  poll_timeout: "ninety seconds"
`))
	assert.Error(t, err)
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("BONTE_TEST_SECRET", "from-env")

	cfg, err := Load(writeConfig(t, `
server:
  http_addr: ":8080"
database:
  path: "/tmp/bonte.db"
auth:
  jwt_secret: "${BONTE_TEST_SECRET}"
ai:
  api_key: "test-key"
`))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
}

func TestLoad_MissingRequiredFields(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing http_addr", `
database:
  path: "/tmp/bonte.db"
auth:
  jwt_secret: "secret"
ai:
  api_key: "key"
`},
		{"missing database path", `
server:
  http_addr: ":8080"
auth:
  jwt_secret: "secret"
ai:
  api_key: "key"
`},
		{"missing jwt secret", `
server:
  http_addr: ":8080"
database:
  path: "/tmp/bonte.db"
ai:
  api_key: "key"
`},
		{"missing api key", `
server:
  http_addr: ":8080"
database:
  path: "/tmp/bonte.db"
auth:
  jwt_secret: "secret"
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/bonte.yaml")
	assert.Error(t, err)
}
