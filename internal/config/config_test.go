package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("REDIS_ADDR", "cache:6379")

	cfg := Load()
	require.NotNil(t, cfg)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "test-secret", cfg.JWT.Secret)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
	assert.Equal(t, "Asia/Riyadh", cfg.Business.Timezone)
	assert.Equal(t, "0 2 * * *", cfg.Scheduler.ReconcileSpec)
	assert.False(t, cfg.Storage.Enabled)
}

func TestDSN(t *testing.T) {
	var cfg Config
	cfg.Database.User = "fleet"
	cfg.Database.Password = "pw"
	cfg.Database.Host = "localhost"
	cfg.Database.Port = 5432
	cfg.Database.Name = "fleet_db"
	assert.Equal(t, "postgres://fleet:pw@localhost:5432/fleet_db", cfg.DSN())

	cfg.Database.SSLMode = "disable"
	cfg.Database.MaxConns = 5
	assert.Equal(t, "postgres://fleet:pw@localhost:5432/fleet_db?sslmode=disable&pool_max_conns=5", cfg.DSN())
}
