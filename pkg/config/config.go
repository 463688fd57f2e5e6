// Package config loads the calculator configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/rpnkit/rpnkit/pkg/rpn"
)

// DefaultHistoryFile is where the interactive calculator persists its line
// history unless configured otherwise.
const DefaultHistoryFile = "~/.rpnkit_history"

// defaultConfigName is the implicit config file probed in the home directory.
const defaultConfigName = ".rpnkit.yaml"

// Config holds every tunable of the calculator and its server.
type Config struct {
	Prompt      string             `yaml:"prompt"`
	HistoryFile string             `yaml:"history_file"`
	LogLevel    string             `yaml:"log_level"`
	Limits      LimitsConfig       `yaml:"limits"`
	Variables   map[string]float64 `yaml:"variables"`
	Server      ServerConfig       `yaml:"server"`
}

// LimitsConfig bounds the work a single expression may demand. A zero field
// disables the corresponding bound.
type LimitsConfig struct {
	MaxExpressionLength int   `yaml:"max_expression_length"`
	MaxFactorial        int64 `yaml:"max_factorial"`
	MaxExponent         int64 `yaml:"max_exponent"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Host       string   `yaml:"host"`
	Port       int      `yaml:"port"`
	SessionTTL Duration `yaml:"session_ttl"`
}

// Duration wraps time.Duration so YAML values like "30m" parse naturally.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("invalid duration: %w", err)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Default returns the built-in configuration.
func Default() Config {
	limits := rpn.DefaultLimits()
	return Config{
		Prompt:      "> ",
		HistoryFile: DefaultHistoryFile,
		LogLevel:    "info",
		Limits: LimitsConfig{
			MaxExpressionLength: limits.MaxExpressionLength,
			MaxFactorial:        limits.MaxFactorial,
			MaxExponent:         limits.MaxExponent,
		},
		Server: ServerConfig{
			Host:       "127.0.0.1",
			Port:       8787,
			SessionTTL: Duration(30 * time.Minute),
		},
	}
}

// Load reads and validates the config file at path, which must exist.
// Settings absent from the file keep their defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	expanded, err := ExpandHome(path)
	if err != nil {
		return cfg, err
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadDefault probes for the implicit config file in the home directory and
// falls back to Default when it is absent.
func LoadDefault() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Default(), nil
	}
	path := filepath.Join(home, defaultConfigName)
	if _, err := os.Stat(path); err != nil {
		return Default(), nil
	}
	return Load(path)
}

// ExpandHome resolves a leading ~ in path against the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !hasHomePrefix(path) {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	return filepath.Join(home, path[2:]), nil
}

func hasHomePrefix(path string) bool {
	return len(path) >= 2 && path[0] == '~' && (path[1] == '/' || path[1] == os.PathSeparator)
}

// RPNLimits converts the configured limits to the engine's form.
func (c Config) RPNLimits() rpn.Limits {
	return rpn.Limits{
		MaxExpressionLength: c.Limits.MaxExpressionLength,
		MaxFactorial:        c.Limits.MaxFactorial,
		MaxExponent:         c.Limits.MaxExponent,
	}
}

// Level parses the configured log level, defaulting to info.
func (c Config) Level() logrus.Level {
	if c.LogLevel == "" {
		return logrus.InfoLevel
	}
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

func (c Config) validate() error {
	if c.LogLevel != "" {
		if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
			return fmt.Errorf("unknown log_level %q", c.LogLevel)
		}
	}
	if c.Limits.MaxExpressionLength < 0 {
		return fmt.Errorf("limits.max_expression_length must not be negative")
	}
	if c.Limits.MaxFactorial < 0 {
		return fmt.Errorf("limits.max_factorial must not be negative")
	}
	if c.Limits.MaxExponent < 0 {
		return fmt.Errorf("limits.max_exponent must not be negative")
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Server.SessionTTL < 0 {
		return fmt.Errorf("server.session_ttl must not be negative")
	}
	return nil
}
