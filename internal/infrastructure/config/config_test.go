package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Save original env vars and restore after tests
	originalEnv := map[string]string{
		"CF1_APP_NAME":                os.Getenv("CF1_APP_NAME"),
		"CF1_APP_ENV":                 os.Getenv("CF1_APP_ENV"),
		"CF1_APP_PORT":                os.Getenv("CF1_APP_PORT"),
		"CF1_DATABASE_HOST":           os.Getenv("CF1_DATABASE_HOST"),
		"CF1_DATABASE_PORT":           os.Getenv("CF1_DATABASE_PORT"),
		"CF1_DATABASE_USER":           os.Getenv("CF1_DATABASE_USER"),
		"CF1_DATABASE_PASSWORD":       os.Getenv("CF1_DATABASE_PASSWORD"),
		"CF1_DATABASE_DBNAME":         os.Getenv("CF1_DATABASE_DBNAME"),
		"CF1_DATABASE_SSLMODE":        os.Getenv("CF1_DATABASE_SSLMODE"),
		"CF1_DATABASE_MAX_OPEN_CONNS": os.Getenv("CF1_DATABASE_MAX_OPEN_CONNS"),
		"CF1_DATABASE_MAX_IDLE_CONNS": os.Getenv("CF1_DATABASE_MAX_IDLE_CONNS"),
		"CF1_JWT_SECRET":              os.Getenv("CF1_JWT_SECRET"),
		"CF1_NOTIFIER_CHECK_INTERVAL": os.Getenv("CF1_NOTIFIER_CHECK_INTERVAL"),
		"CF1_NOTIFIER_ENABLED":        os.Getenv("CF1_NOTIFIER_ENABLED"),
		"CF1_SMTP_HOST":               os.Getenv("CF1_SMTP_HOST"),
		"CF1_SMS_BASE_URL":            os.Getenv("CF1_SMS_BASE_URL"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv()

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "cf1-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "postgres", cfg.Database.User)
		assert.Equal(t, "cf1", cfg.Database.DBName)
		assert.Equal(t, "disable", cfg.Database.SSLMode)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 30*time.Second, cfg.Notifier.CheckInterval)
		assert.Equal(t, 10*time.Second, cfg.Notifier.SendTimeout)
		assert.False(t, cfg.Notifier.DurableLedger)
		assert.Equal(t, "465", cfg.SMTP.Port)
		assert.Equal(t, 10*time.Second, cfg.SMS.Timeout)
	})

	t.Run("loads values from environment variables with CF1 prefix", func(t *testing.T) {
		clearEnv()
		os.Setenv("CF1_APP_NAME", "cf1-test")
		os.Setenv("CF1_APP_PORT", "9000")
		os.Setenv("CF1_DATABASE_HOST", "testdb.local")
		os.Setenv("CF1_DATABASE_PORT", "5433")
		os.Setenv("CF1_NOTIFIER_CHECK_INTERVAL", "5s")
		os.Setenv("CF1_NOTIFIER_ENABLED", "true")
		os.Setenv("CF1_SMTP_HOST", "smtp.example.com")
		os.Setenv("CF1_SMS_BASE_URL", "https://gateway.example.com/api")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "cf1-test", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, 5*time.Second, cfg.Notifier.CheckInterval)
		assert.True(t, cfg.Notifier.Enabled)
		assert.Equal(t, "smtp.example.com", cfg.SMTP.Host)
		assert.Equal(t, "https://gateway.example.com/api", cfg.SMS.BaseURL)
	})

	t.Run("rejects sub-second check interval", func(t *testing.T) {
		clearEnv()
		os.Setenv("CF1_NOTIFIER_CHECK_INTERVAL", "200ms")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("production requires jwt secret", func(t *testing.T) {
		clearEnv()
		os.Setenv("CF1_APP_ENV", "production")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt.secret")
	})
}

func TestDatabaseConfigDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db.internal",
		Port:     5432,
		User:     "cf1",
		Password: "p@ss/word",
		DBName:   "cf1",
		SSLMode:  "require",
	}

	dsn := cfg.DSN()
	assert.Contains(t, dsn, "postgres://")
	assert.Contains(t, dsn, "db.internal:5432")
	assert.Contains(t, dsn, "sslmode=require")
	// Special characters in the password must be escaped
	assert.NotContains(t, dsn, "p@ss/word")
}

func TestRedisConfigAddr(t *testing.T) {
	cfg := RedisConfig{Host: "cache.internal", Port: 6380}
	assert.Equal(t, "cache.internal:6380", cfg.Addr())
}
