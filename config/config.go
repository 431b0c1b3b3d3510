// Package config loads the calculator server settings from defaults, an
// optional YAML file, an optional .env file and CALCULATOR_* environment
// variables, in that order of precedence (later wins).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables consulted by Load.
const (
	EnvName        = "CALCULATOR_NAME"
	EnvLogLevel    = "CALCULATOR_LOG_LEVEL"
	EnvLogFormat   = "CALCULATOR_LOG_FORMAT"
	EnvParentWatch = "CALCULATOR_PARENT_WATCH"
)

// DefaultEnvFile is loaded when present and no other env file is given.
const DefaultEnvFile = ".env"

// Config is the top-level server configuration.
type Config struct {
	Name         string        `yaml:"name"`
	Instructions string        `yaml:"instructions"`
	ParentWatch  time.Duration `yaml:"parent_watch"`
	Log          LogConfig     `yaml:"log"`
}

// LogConfig controls the stderr logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Name: "calculator",
		Instructions: "Calculator tools: add, subtract, multiply and divide " +
			"take numbers a and b; is_prime takes an integer n.",
		ParentWatch: 2 * time.Second,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load builds a Config. path is an optional YAML file; envFile is an optional
// dotenv file. An empty envFile means DefaultEnvFile, which may be absent.
// Variables already set in the process environment are not overridden by the
// dotenv file.
func Load(path, envFile string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	if envFile == "" {
		if err := godotenv.Load(DefaultEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("loading %s: %w", DefaultEnvFile, err)
		}
	} else if err := godotenv.Load(envFile); err != nil {
		return Config{}, fmt.Errorf("loading %s: %w", envFile, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v, ok := os.LookupEnv(EnvName); ok {
		c.Name = v
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok {
		c.Log.Level = v
	}
	if v, ok := os.LookupEnv(EnvLogFormat); ok {
		c.Log.Format = v
	}
	if v, ok := os.LookupEnv(EnvParentWatch); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvParentWatch, err)
		}
		c.ParentWatch = d
	}
	return nil
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	if c.Name == "" {
		return errors.New("name must not be empty")
	}
	if c.ParentWatch < 0 {
		return fmt.Errorf("parent_watch must not be negative, got %s", c.ParentWatch)
	}
	return nil
}
