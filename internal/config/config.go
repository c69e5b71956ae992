package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// EnvPath names the environment variable that overrides DefaultPath.
const (
	EnvPath     = "NPCSYNC_CONFIG"
	DefaultPath = "config/server.toml"
)

type Config struct {
	Server    ServerConfig    `toml:"server"`
	Network   NetworkConfig   `toml:"network"`
	World     WorldConfig     `toml:"world"`
	Scripting ScriptingConfig `toml:"scripting"`
	Metrics   MetricsConfig   `toml:"metrics"`
	Logging   LoggingConfig   `toml:"logging"`
}

type ServerConfig struct {
	Name      string `toml:"name"`
	ID        int    `toml:"id"`
	StartTime int64  // set at boot, not from config
}

type NetworkConfig struct {
	BindAddress         string        `toml:"bind_address"`
	TickRate            time.Duration `toml:"tick_rate"`
	InQueueSize         int           `toml:"in_queue_size"`
	OutQueueSize        int           `toml:"out_queue_size"`
	MaxPacketsPerTick   int           `toml:"max_packets_per_tick"`
	MaxPacketsPerSecond int           `toml:"max_packets_per_second"` // 0 = unlimited
}

type WorldConfig struct {
	SpawnFile       string `toml:"spawn_file"`
	DefaultInstance string `toml:"default_instance"`
	SpawnX          int32  `toml:"spawn_x"`
	SpawnY          int32  `toml:"spawn_y"`
	ViewDistance    int32  `toml:"view_distance"` // Chebyshev, in tiles
}

type ScriptingConfig struct {
	Enabled   bool   `toml:"enabled"`
	ScriptDir string `toml:"script_dir"`
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	BindAddress string `toml:"bind_address"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

// Path returns the config file location from the environment, or DefaultPath.
func Path() string {
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	return DefaultPath
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse decodes TOML over the defaults and validates the result.
func Parse(data []byte, name string) (*Config, error) {
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", name, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", name, err)
	}
	cfg.Server.StartTime = time.Now().Unix()
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Network.TickRate <= 0 {
		errs = append(errs, errors.New("network.tick_rate must be positive"))
	}
	if c.Network.InQueueSize <= 0 || c.Network.OutQueueSize <= 0 {
		errs = append(errs, errors.New("network queue sizes must be positive"))
	}
	if c.Network.MaxPacketsPerTick <= 0 {
		errs = append(errs, errors.New("network.max_packets_per_tick must be positive"))
	}
	if c.World.DefaultInstance == "" {
		errs = append(errs, errors.New("world.default_instance is required"))
	}
	if c.World.ViewDistance <= 0 {
		errs = append(errs, errors.New("world.view_distance must be positive"))
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("logging.format %q: want json or console", c.Logging.Format))
	}
	return errors.Join(errs...)
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Name: "npcsync",
			ID:   1,
		},
		Network: NetworkConfig{
			BindAddress:         "0.0.0.0:7001",
			TickRate:            50 * time.Millisecond,
			InQueueSize:         128,
			OutQueueSize:        256,
			MaxPacketsPerTick:   32,
			MaxPacketsPerSecond: 60,
		},
		World: WorldConfig{
			SpawnFile:       "data/spawns.yaml",
			DefaultInstance: "lobby",
			ViewDistance:    32,
		},
		Scripting: ScriptingConfig{
			Enabled:   true,
			ScriptDir: "scripts",
		},
		Metrics: MetricsConfig{
			Enabled:     true,
			BindAddress: "127.0.0.1:9101",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
