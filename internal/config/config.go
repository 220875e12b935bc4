package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Level      LevelConfig      `toml:"level"`
	Index      IndexConfig      `toml:"index"`
	Simulation SimulationConfig `toml:"simulation"`
	Scripting  ScriptingConfig  `toml:"scripting"`
	Telemetry  TelemetryConfig  `toml:"telemetry"`
	Database   DatabaseConfig   `toml:"database"`
	Logging    LoggingConfig    `toml:"logging"`
}

type LevelConfig struct {
	Path string `toml:"path"` // YAML level file
}

type IndexConfig struct {
	MaxTraceSteps   int  `toml:"max_trace_steps"`
	LegacyMapThings bool `toml:"legacy_map_things"` // legacy sector lookup + wall push for map things
}

type SimulationConfig struct {
	TickRate      time.Duration `toml:"tick_rate"`
	Ticks         int           `toml:"ticks"` // 0 = run until signalled
	Seed          int64         `toml:"seed"`
	HuntRadius    int           `toml:"hunt_radius"`    // ring search distance in cells
	SightInterval int           `toml:"sight_interval"` // ticks between sight checks per hunter
	StartedAt     int64         // set at boot, not from config
}

type ScriptingConfig struct {
	Dir string `toml:"dir"`
}

type TelemetryConfig struct {
	Dir          string `toml:"dir"`    // CSV output directory; empty disables
	Window       int    `toml:"window"` // ticks per stats window
	SnapshotPath string `toml:"snapshot_path"`
}

type DatabaseConfig struct {
	DSN             string        `toml:"dsn"` // empty disables persistence
	MaxOpenConns    int           `toml:"max_open_conns"`
	MaxIdleConns    int           `toml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `toml:"conn_max_lifetime"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	cfg.Simulation.StartedAt = time.Now().Unix()
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Level.Path == "" {
		return errors.New("level.path is required")
	}
	if c.Simulation.TickRate <= 0 {
		return fmt.Errorf("simulation.tick_rate must be positive, got %s", c.Simulation.TickRate)
	}
	if c.Simulation.Ticks < 0 {
		return errors.New("simulation.ticks must not be negative")
	}
	if c.Index.MaxTraceSteps < 0 {
		return errors.New("index.max_trace_steps must not be negative")
	}
	if c.Telemetry.Window <= 0 {
		return errors.New("telemetry.window must be positive")
	}
	return nil
}

func defaults() *Config {
	return &Config{
		Level: LevelConfig{
			Path: "data/yaml/levels/courtyard.yaml",
		},
		Index: IndexConfig{
			MaxTraceSteps:   100,
			LegacyMapThings: true,
		},
		Simulation: SimulationConfig{
			TickRate:      28 * time.Millisecond, // ~35Hz
			Ticks:         0,
			Seed:          1,
			HuntRadius:    4,
			SightInterval: 8,
		},
		Scripting: ScriptingConfig{
			Dir: "scripts",
		},
		Telemetry: TelemetryConfig{
			Dir:          "",
			Window:       35,
			SnapshotPath: "",
		},
		Database: DatabaseConfig{
			DSN:             "",
			MaxOpenConns:    4,
			MaxIdleConns:    2,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
