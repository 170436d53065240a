package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFrom(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, time.Hour, cfg.JWT.TTL)
	assert.Equal(t, "MetaStor", cfg.Auth.AppName)
	assert.False(t, cfg.Auth.NonceGuard)
	assert.Equal(t, 2*time.Second, cfg.Solana.PollInterval)
	assert.Equal(t, 60*time.Second, cfg.Solana.ConfirmTimeout)
	assert.Equal(t, 20.0, cfg.Oracle.StaticPrice)
	assert.Equal(t, int64(50<<20), cfg.Storage.MaxUploadBytes)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yml := []byte(`
jwt:
  secret: from-file
solana:
  platform_wallet: FILEWALLET
  poll_interval: 500ms
storage:
  kind: ipfs
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "settings.yml"), yml, 0o600))

	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("AUTH_NONCE_GUARD", "true")
	t.Setenv("HTTP_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := LoadFrom(dir)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, "FILEWALLET", cfg.Solana.PlatformWallet)
	assert.Equal(t, 500*time.Millisecond, cfg.Solana.PollInterval)
	assert.Equal(t, "ipfs", cfg.Storage.Kind)
	assert.True(t, cfg.Auth.NonceGuard)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.AllowedOrigins)
}

func TestValidate(t *testing.T) {
	cfg, err := LoadFrom(t.TempDir())
	require.NoError(t, err)

	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt.secret")
	assert.Contains(t, err.Error(), "solana.platform_wallet")

	cfg.JWT.Secret = "s"
	cfg.Solana.PlatformWallet = "w"
	require.NoError(t, cfg.Validate())

	cfg.Oracle.Kind = "magic"
	require.Error(t, cfg.Validate())
}
