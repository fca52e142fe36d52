// Package config loads the partition-level configuration the spec calls
// out as captured once at partition Init and never mutated afterward:
// which DC this node belongs to, which transactional protocol it runs, the
// data directory for the commit log, and whether to replay the log on
// startup.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cuemby/materializer/pkg/matlog"
	"github.com/cuemby/materializer/pkg/types"
)

// Config is the immutable configuration for one partition process.
type Config struct {
	// LocalDC is this node's data center id.
	LocalDC types.DcId `yaml:"local_dc"`

	// Protocol is the transactional protocol this partition runs under.
	Protocol types.Protocol `yaml:"protocol"`

	// DataDir is the directory pkg/commitlog stores its bbolt file in.
	DataDir string `yaml:"data_dir"`

	// RecoverFromLog is loaded, defaulted and carried with the rest of
	// Config. pkg/rehydrate does not consult it: Rehydrator.Start always
	// loads the commit log.
	RecoverFromLog bool `yaml:"recover_from_log"`

	// LogLevel and LogJSON configure pkg/matlog; see LogConfig.
	LogLevel matlog.Level `yaml:"log_level"`
	LogJSON  bool         `yaml:"log_json"`
}

// Default returns a Config with safe defaults for local development.
func Default() Config {
	return Config{
		LocalDC:        "dc1",
		Protocol:       types.ClockSI,
		DataDir:        "./data",
		RecoverFromLog: true,
		LogLevel:       matlog.InfoLevel,
		LogJSON:        false,
	}
}

// Load reads and validates a YAML config file at path, falling back to
// Default()'s values for anything the file doesn't set.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports whether cfg is well-formed.
func (c Config) Validate() error {
	if c.LocalDC == "" {
		return fmt.Errorf("config: local_dc is required")
	}
	if !c.Protocol.Valid() {
		return fmt.Errorf("config: unknown protocol %q", c.Protocol)
	}
	if c.DataDir == "" {
		return fmt.Errorf("config: data_dir is required")
	}
	return nil
}

// LogConfig builds the matlog.Config this partition's logger should be
// initialized with.
func (c Config) LogConfig() matlog.Config {
	return matlog.Config{Level: c.LogLevel, JSONOutput: c.LogJSON}
}
