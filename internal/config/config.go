package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config holds all lifeclock configuration. Values come from Default, then
// the YAML file, then LIFECLOCK_* environment variables.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Countdown CountdownConfig `yaml:"countdown"`
	Display   DisplayConfig   `yaml:"display"`
}

type ServerConfig struct {
	Bind string `yaml:"bind" env:"LIFECLOCK_BIND"`
	Port int    `yaml:"port" env:"LIFECLOCK_PORT"`
}

type DatabaseConfig struct {
	Path string `yaml:"path" env:"LIFECLOCK_DB"` // empty means store.DefaultDBPath()
}

type CountdownConfig struct {
	Tick time.Duration `yaml:"tick" env:"LIFECLOCK_TICK"`
}

// DisplayConfig toggles parts of the countdown display. Presentation only.
type DisplayConfig struct {
	ShowTotalClock     bool `yaml:"show_total_clock" json:"showTotalClock" env:"LIFECLOCK_SHOW_TOTAL_CLOCK"`
	ShowMinuteBoxes    bool `yaml:"show_minute_boxes" json:"showMinuteBoxes" env:"LIFECLOCK_SHOW_MINUTE_BOXES"`
	ShowSecondBoxes    bool `yaml:"show_second_boxes" json:"showSecondBoxes" env:"LIFECLOCK_SHOW_SECOND_BOXES"`
	ShowScenarioClocks bool `yaml:"show_scenario_clocks" json:"showScenarioClocks" env:"LIFECLOCK_SHOW_SCENARIO_CLOCKS"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Bind: "127.0.0.1",
			Port: 37778,
		},
		Countdown: CountdownConfig{
			Tick: time.Second,
		},
		Display: DisplayConfig{
			ShowTotalClock:     true,
			ShowMinuteBoxes:    true,
			ShowSecondBoxes:    true,
			ShowScenarioClocks: true,
		},
	}
}

// DefaultPath returns ~/.lifeclock/config.yaml, or $LIFECLOCK_CONFIG if set.
func DefaultPath() (string, error) {
	if p := os.Getenv("LIFECLOCK_CONFIG"); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home dir: %w", err)
	}
	return filepath.Join(home, ".lifeclock", "config.yaml"), nil
}

// Load reads the YAML file at path over the defaults and applies environment
// overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Countdown.Tick <= 0 {
		return Config{}, fmt.Errorf("countdown tick must be positive, got %s", cfg.Countdown.Tick)
	}
	return cfg, nil
}

// ListenAddr returns the bind:port address string.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}
