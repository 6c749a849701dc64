package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"APP_MODE", "USER_SERVICE_URL", "API_GATEWAY_URL", "HTTP_TIMEOUT",
	"SESSION_DRIVER", "SESSION_PATH", "SESSION_DB_HOST", "SESSION_DB_PORT",
	"SESSION_DB_USER", "SESSION_DB_PASS", "SESSION_DB_NAME",
	"SANDBOX_DIRECT_PORT", "SANDBOX_GATEWAY_PORT", "PENDING_TTL", "SANDBOX_SEED",
	"JWT_SECRET", "ACCESS_TOKEN_MINUTES",
}

func clearEnv(t *testing.T) {
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoadFile_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadFile("")
	require.NoError(t, err)

	assert.True(t, cfg.IsDev())
	assert.Equal(t, "http://localhost:8084", cfg.API.DirectURL)
	assert.Equal(t, "http://localhost:8090", cfg.API.GatewayURL)
	assert.Equal(t, SessionDriverBolt, cfg.Session.Driver)
	assert.Equal(t, "cinefund-session.db", cfg.Session.Path)
	assert.Equal(t, 30*time.Minute, cfg.Sandbox.PendingTTL)
	assert.True(t, cfg.Sandbox.Seed)
}

func TestLoadFile_EnvOverridesFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "cinefund.yaml")
	yml := `
app_mode: prod
api:
  direct_url: http://users.internal:9000
  gateway_url: http://gateway.internal:9001
  timeout: 5s
session:
  driver: memory
sandbox:
  pending_ttl: 10m
  seed: false
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))
	t.Setenv("API_GATEWAY_URL", "http://override:8090/")
	t.Setenv("ACCESS_TOKEN_MINUTES", "5")

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.True(t, cfg.IsProd())
	assert.Equal(t, "http://users.internal:9000", cfg.API.DirectURL)
	assert.Equal(t, "http://override:8090", cfg.API.GatewayURL)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.Equal(t, SessionDriverMemory, cfg.Session.Driver)
	assert.Equal(t, 10*time.Minute, cfg.Sandbox.PendingTTL)
	assert.False(t, cfg.Sandbox.Seed)
	assert.Equal(t, 5, cfg.JWT.AccessTokenMins)
}

func TestLoadFile_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"app mode", "APP_MODE", "staging"},
		{"session driver", "SESSION_DRIVER", "redis"},
		{"timeout", "HTTP_TIMEOUT", "soon"},
		{"seed", "SANDBOX_SEED", "maybe"},
		{"token minutes", "ACCESS_TOKEN_MINUTES", "ten"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.val)

			_, err := LoadFile("")
			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestLoadFile_MissingFile(t *testing.T) {
	clearEnv(t)
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestBuildDSN(t *testing.T) {
	dsn := buildDSN(DatabaseConfig{Host: "db", Port: "3306", User: "u", Password: "p", DBName: "cinefund"})
	assert.Equal(t, "u:p@tcp(db:3306)/cinefund?charset=utf8mb4&parseTime=True&loc=Local", dsn)
}
