// Package config handles runtime configuration for the management daemon:
// the option record produced by CLI parsing and the optional config.yaml
// stored inside the state directory.
package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	vdmerrors "github.com/voltgrid/vdm/internal/errors"
)

// Options is the configuration record produced by the option resolver.
// Nil fields mean the flag was absent; default substitution is the
// bootstrap controller's job, not the parser's.
type Options struct {
	// Path overrides the state directory.
	Path *string

	// Server is the listener bind address, forwarded verbatim to the
	// service entry point. Nil means "use the listener's own default".
	Server *string
}

// ConfigFileName is the optional runtime configuration file inside the
// state directory.
const ConfigFileName = "config.yaml"

// Duration wraps time.Duration with YAML string parsing ("5m", "90s").
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	// Bind is the host:port the listener binds when no --server flag is
	// given.
	Bind string `yaml:"bind"`
}

// SchedulerConfig configures the periodic state snapshot job.
type SchedulerConfig struct {
	SnapshotInterval Duration `yaml:"snapshot_interval"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Config is the daemon's runtime configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// Default returns the built-in configuration used when config.yaml is
// absent.
func Default() *Config {
	return &Config{
		Server:    ServerConfig{Bind: ":8000"},
		Scheduler: SchedulerConfig{SnapshotInterval: Duration(5 * time.Minute)},
		Logging:   LoggingConfig{Level: "info"},
	}
}

// Load reads config.yaml from the state directory, falling back to defaults
// when the file does not exist. Environment variables override file values.
func Load(stateDir string) (*Config, error) {
	cfg := Default()

	path := filepath.Join(stateDir, ConfigFileName)
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if uerr := yaml.Unmarshal(data, cfg); uerr != nil {
			return nil, vdmerrors.ConfigParseFailed(path, uerr)
		}
	case os.IsNotExist(err):
		// No file is a valid state; the daemon runs on defaults.
	default:
		return nil, vdmerrors.ConfigReadFailed(path, err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides lets the process environment win over file values.
// Populated by godotenv in main when a .env file is present.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("VDM_SERVER_BIND"); v != "" {
		cfg.Server.Bind = v
	}
	if v := os.Getenv("VDM_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("VDM_SNAPSHOT_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Scheduler.SnapshotInterval = Duration(d)
		}
	}
}

// Validate checks the configuration for values the daemon cannot run with.
func (c *Config) Validate() error {
	if c.Server.Bind == "" {
		return vdmerrors.ValidationFailed("server.bind", "must not be empty")
	}
	if time.Duration(c.Scheduler.SnapshotInterval) <= 0 {
		return vdmerrors.ValidationFailed("scheduler.snapshot_interval", "must be positive")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return vdmerrors.ValidationFailed("logging.level", "must be one of debug, info, warn, error")
	}
	return nil
}

// SnapshotInterval returns the snapshot interval as a time.Duration.
func (c *Config) SnapshotInterval() time.Duration {
	return time.Duration(c.Scheduler.SnapshotInterval)
}
