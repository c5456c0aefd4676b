package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("Should require a session secret", func(t *testing.T) {
		t.Setenv("SESSION_SECRET", "")
		_, err := LoadConfig()
		assert.Error(t, err)
	})

	t.Run("Should apply env overrides on top of defaults", func(t *testing.T) {
		t.Setenv("SESSION_SECRET", "secret")
		t.Setenv("PORT", "9090")
		t.Setenv("SESSION_TTL", "30m")
		t.Setenv("BCRYPT_COST", "not-a-number")
		t.Setenv("ALLOWED_ORIGINS", "https://a.example.com/, https://b.example.com")

		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, "9090", cfg.Port)
		assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
		assert.Equal(t, 12, cfg.BcryptCost) // invalid value falls back
		assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.AllowedOrigins)
	})

	t.Run("Should read YAML file before env", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("port: \"7070\"\nsession_secret: from-file\nsession_ttl: 2h\ns3_bucket: certs\n"), 0o600))
		t.Setenv("CONFIG_FILE", path)
		t.Setenv("SESSION_SECRET", "from-env")

		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, "7070", cfg.Port)
		assert.Equal(t, "from-env", cfg.SessionSecret)
		assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
		assert.False(t, cfg.S3Configured())
	})
}
