package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "worldindex.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[level]
path = "levels/test.yaml"

[index]
max_trace_steps = 64
legacy_map_things = false

[simulation]
tick_rate = "50ms"
ticks = 200
hunt_radius = 6

[logging]
format = "json"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "levels/test.yaml", cfg.Level.Path)
	assert.Equal(t, 64, cfg.Index.MaxTraceSteps)
	assert.False(t, cfg.Index.LegacyMapThings)
	assert.Equal(t, 50*time.Millisecond, cfg.Simulation.TickRate)
	assert.Equal(t, 200, cfg.Simulation.Ticks)
	assert.Equal(t, 6, cfg.Simulation.HuntRadius)
	assert.Equal(t, "json", cfg.Logging.Format)

	// Untouched keys keep their defaults.
	assert.Equal(t, 8, cfg.Simulation.SightInterval)
	assert.Equal(t, 35, cfg.Telemetry.Window)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Empty(t, cfg.Database.DSN)
	assert.NotZero(t, cfg.Simulation.StartedAt)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorContains(t, err, "read config")

	_, err = Load(writeConfig(t, "[level\npath ="))
	assert.ErrorContains(t, err, "parse config")

	_, err = Load(writeConfig(t, "[simulation]\ntick_rate = \"0s\"\n"))
	assert.ErrorContains(t, err, "tick_rate")

	_, err = Load(writeConfig(t, "[telemetry]\nwindow = 0\n"))
	assert.ErrorContains(t, err, "telemetry.window")
}
