// Package config loads CLI settings from a YAML or TOML file, a .env file and
// BIFORMS_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-biforms/pkg/debounce"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "BIFORMS_"

// ErrUnsupportedFormat is returned for config files that are neither YAML nor
// TOML.
var ErrUnsupportedFormat = errors.New("config: unsupported file format")

// Service locates the language service. Exactly one of Address, Command or
// URL is used, checked in that order by the CLI.
type Service struct {
	Network string   `yaml:"network" toml:"network"`
	Address string   `yaml:"address" toml:"address"`
	Command string   `yaml:"command" toml:"command"`
	Args    []string `yaml:"args" toml:"args"`
	URL     string   `yaml:"url" toml:"url"`
	Timeout Duration `yaml:"timeout" toml:"timeout"`
}

// Log configures the logger.
type Log struct {
	Level string `yaml:"level" toml:"level"`
	JSON  bool   `yaml:"json" toml:"json"`
}

// Config is the full CLI configuration.
type Config struct {
	Service        Service  `yaml:"service" toml:"service"`
	FilePath       string   `yaml:"filePath" toml:"filePath"`
	Delay          Duration `yaml:"delay" toml:"delay"`
	TypesCacheSize int      `yaml:"typesCacheSize" toml:"typesCacheSize"`
	DataMapper     bool     `yaml:"dataMapper" toml:"dataMapper"`
	Log            Log      `yaml:"log" toml:"log"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Service: Service{
			Network: "tcp",
			Timeout: Duration(10 * time.Second),
		},
		Delay:          Duration(debounce.DefaultDelay),
		TypesCacheSize: 64,
		Log:            Log{Level: "info"},
	}
}

// Load reads path (optional), then envFile (optional; missing files are
// ignored), then applies BIFORMS_* variables from the process environment.
func Load(path, envFile string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.readFile(path); err != nil {
			return Config{}, err
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("config: load %s: %w", envFile, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	case ".toml":
		err = toml.Unmarshal(data, c)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

// applyEnv overlays variables found by lookup.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	str("SERVICE_NETWORK", &c.Service.Network)
	str("SERVICE_ADDRESS", &c.Service.Address)
	str("SERVICE_COMMAND", &c.Service.Command)
	str("SERVICE_URL", &c.Service.URL)
	str("FILE_PATH", &c.FilePath)
	str("LOG_LEVEL", &c.Log.Level)

	if v, ok := lookup(EnvPrefix + "SERVICE_ARGS"); ok {
		c.Service.Args = strings.Fields(v)
	}
	for name, dst := range map[string]*Duration{
		"SERVICE_TIMEOUT": &c.Service.Timeout,
		"DELAY":           &c.Delay,
	} {
		if v, ok := lookup(EnvPrefix + name); ok {
			d, err := time.ParseDuration(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("config: %s%s: %w", EnvPrefix, name, err)
			}
			*dst = Duration(d)
		}
	}
	for name, dst := range map[string]*bool{
		"DATA_MAPPER": &c.DataMapper,
		"LOG_JSON":    &c.Log.JSON,
	} {
		if v, ok := lookup(EnvPrefix + name); ok {
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("config: %s%s: %w", EnvPrefix, name, err)
			}
			*dst = b
		}
	}
	if v, ok := lookup(EnvPrefix + "TYPES_CACHE_SIZE"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("config: %sTYPES_CACHE_SIZE: %w", EnvPrefix, err)
		}
		c.TypesCacheSize = n
	}
	return nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.Delay < 0 {
		return errors.New("config: delay must not be negative")
	}
	if c.TypesCacheSize <= 0 {
		return errors.New("config: typesCacheSize must be positive")
	}
	switch c.Service.Network {
	case "", "tcp", "tcp4", "tcp6", "unix":
	default:
		return fmt.Errorf("config: unsupported service network %q", c.Service.Network)
	}
	return nil
}

// HasService reports whether any service location is configured.
func (c Config) HasService() bool {
	return c.Service.Address != "" || c.Service.Command != "" || c.Service.URL != ""
}
