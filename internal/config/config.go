// Package config loads the daemon settings from a YAML file, with working
// defaults when the file is absent.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"
)

// Duration wraps time.Duration so YAML values like "5m" parse directly.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return d.String(), nil
}

// Config is the full daemon configuration.
type Config struct {
	DatabasePath string `yaml:"database_path"`
	Log          Log    `yaml:"log"`
	Jobs         Jobs   `yaml:"jobs"`
}

// Log controls the zerolog output.
type Log struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// Jobs schedules the reconciliation passes.
type Jobs struct {
	RefreshEvery Duration `yaml:"refresh_every"`
	FixAt        string   `yaml:"fix_at"` // cron spec, local time
}

// Default returns the built-in configuration: refresh every five minutes,
// consistency fix nightly at 02:30.
func Default() Config {
	return Config{
		Log: Log{Level: "info", Pretty: true},
		Jobs: Jobs{
			RefreshEvery: Duration{5 * time.Minute},
			FixAt:        "30 2 * * *",
		},
	}
}

// DefaultPath is ~/.crewplan/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".crewplan", "config.yaml"), nil
}

// Load reads the config at path, or the default path when empty. A missing
// file is not an error: the defaults apply.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return cfg, err
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Jobs.RefreshEvery.Duration <= 0 {
		cfg.Jobs.RefreshEvery = Default().Jobs.RefreshEvery
	}
	if cfg.Jobs.FixAt == "" {
		cfg.Jobs.FixAt = Default().Jobs.FixAt
	}
	return cfg, nil
}
