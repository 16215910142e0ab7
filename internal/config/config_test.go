package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "America/New_York", cfg.Engine.Timezone)
	assert.Equal(t, 1, cfg.Engine.OpeningRangeMinutes)
	assert.Equal(t, []float64{1, 5, 10, 25, 75, 90, 95, 99}, cfg.Engine.PercentileBands)
	assert.Equal(t, 8090, cfg.API.Port)
	assert.Equal(t, "session_analytics", cfg.Database.Database)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ENGINE_TIMEZONE", "Europe/London")
	t.Setenv("ENGINE_OPENING_RANGE_MINUTES", "30")
	t.Setenv("ENGINE_PERCENTILE_BANDS", "2.5, 50, 97.5")
	t.Setenv("DATA_TICKER_ALIASES", "spx=es, ndx=nq")
	t.Setenv("DB_CONN_MAX_LIFETIME", "90s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "Europe/London", cfg.Engine.Timezone)
	assert.Equal(t, 30, cfg.Engine.OpeningRangeMinutes)
	assert.Equal(t, []float64{2.5, 50, 97.5}, cfg.Engine.PercentileBands)
	assert.Equal(t, map[string]string{"SPX": "ES", "NDX": "NQ"}, cfg.Data.Aliases)
	assert.Equal(t, 90*time.Second, cfg.Database.ConnMaxLifetime)
}

func TestLoad_InvalidFallsBackToDefaults(t *testing.T) {
	t.Setenv("API_PORT", "not-a-number")
	t.Setenv("ENGINE_PERCENTILE_BANDS", "not,floats")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8090, cfg.API.Port)
	assert.Equal(t, []float64{1, 5, 10, 25, 75, 90, 95, 99}, cfg.Engine.PercentileBands)
}

func TestValidate(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	cfg.Engine.PercentileBands = []float64{0}
	assert.Error(t, cfg.Validate())

	cfg.Engine.PercentileBands = []float64{50}
	cfg.Engine.OpeningRangeMinutes = 0
	assert.Error(t, cfg.Validate())

	cfg.Engine.OpeningRangeMinutes = 15
	cfg.Data.Dir = ""
	assert.Error(t, cfg.Validate())
}
