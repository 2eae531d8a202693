package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/crm-portal-api/pkg/config"
)

func TestLoad_ValoresPorDefecto(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "crm-portal", cfg.App.Name)
	assert.Equal(t, 4, cfg.Registration.Concurrency)
	assert.Equal(t, 30*time.Second, cfg.Registration.ItemTimeout)
	assert.Equal(t, 60*time.Minute, cfg.Registration.SessionTTL)
	assert.Empty(t, cfg.Redis.Addr, "redis deshabilitado por defecto")
}

func TestLoad_EnvTienePrioridad(t *testing.T) {
	t.Setenv("REGISTRATION_CONCURRENCY", "8")
	t.Setenv("APP_DEBUG", "true")
	t.Setenv("EXTERNAL_RATE_PER_SECOND", "2.5")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Registration.Concurrency)
	assert.True(t, cfg.App.Debug)
	assert.InDelta(t, 2.5, cfg.Registration.RatePerSecond, 0.0001)
}

func TestDBConfig_DSNEscapaPassword(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss/w:rd", DBName: "crm", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%2Fw%3Ard@db:5432/crm?sslmode=disable", c.DSN())

	c.DatabaseURL = "postgres://otro"
	assert.Equal(t, "postgres://otro", c.ConnectionString())
}
