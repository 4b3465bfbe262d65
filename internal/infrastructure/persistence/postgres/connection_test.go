package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigDSN_FromComponents(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Host = "db.example.com"
	cfg.User = "gradehub"
	cfg.Password = "secret"

	dsn := cfg.DSN()
	assert.Contains(t, dsn, "host=db.example.com")
	assert.Contains(t, dsn, "dbname=gradehub")
	assert.Contains(t, dsn, "sslmode=require")
}

func TestConfigDSN_URLTakesPrecedence(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Host = "ignored"
	cfg.URL = "postgres://u:p@db.example.com:5432/gradehub?sslmode=disable"

	assert.Equal(t, cfg.URL, cfg.DSN())
}

func TestBuildPoolConfig_AppliesSettings(t *testing.T) {
	cfg := Config{
		URL:             "postgres://u:p@db.example.com:5432/gradehub",
		MaxConns:        25,
		MinConns:        5,
		MaxConnLifetime: 2 * time.Hour,
		MaxConnIdleTime: 10 * time.Minute,
	}

	poolConfig, err := buildPoolConfig(cfg)
	require.NoError(t, err)

	assert.Equal(t, int32(25), poolConfig.MaxConns)
	assert.Equal(t, int32(5), poolConfig.MinConns)
	assert.Equal(t, 2*time.Hour, poolConfig.MaxConnLifetime)
	assert.Equal(t, 10*time.Minute, poolConfig.MaxConnIdleTime)
}

func TestBuildPoolConfig_ZeroSettingsKeepParsedDefaults(t *testing.T) {
	cfg := Config{URL: "postgres://u:p@db.example.com:5432/gradehub?pool_max_conns=7"}

	poolConfig, err := buildPoolConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, int32(7), poolConfig.MaxConns)
}

func TestBuildPoolConfig_BadURL(t *testing.T) {
	_, err := buildPoolConfig(Config{URL: "not a connection string at all ="})
	assert.Error(t, err)
}
