// Package config loads matcore settings from built-in defaults, an optional
// YAML file and MATCORE_ environment variables, in that order of priority.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/samcharles93/matcore/internal/logger"
	"github.com/samcharles93/matcore/pkg/csvio"
)

// EnvPrefix prefixes every environment override. A double underscore
// separates nesting levels: MATCORE_CSV__FILL_VALUE sets csv.fill_value.
const EnvPrefix = "MATCORE_"

type Config struct {
	Log    LogConfig    `koanf:"log" yaml:"log"`
	CSV    CSVConfig    `koanf:"csv" yaml:"csv"`
	Exec   ExecConfig   `koanf:"exec" yaml:"exec"`
	Server ServerConfig `koanf:"server" yaml:"server"`

	// File is the config file that was loaded, if any.
	File string `koanf:"-" yaml:"-"`
}

type LogConfig struct {
	Level  string `koanf:"level" yaml:"level"`
	Format string `koanf:"format" yaml:"format"`
}

type CSVConfig struct {
	Header    bool    `koanf:"header" yaml:"header"`
	Delimiter string  `koanf:"delimiter" yaml:"delimiter"`
	Fill      bool    `koanf:"fill" yaml:"fill"`
	FillValue float64 `koanf:"fill_value" yaml:"fill_value"`
}

// ExecConfig holds engine defaults. Zero block sizes mean one block for the
// whole matrix; zero parallelism means GOMAXPROCS.
type ExecConfig struct {
	BlockRows   int `koanf:"block_rows" yaml:"block_rows"`
	BlockCols   int `koanf:"block_cols" yaml:"block_cols"`
	Parallelism int `koanf:"parallelism" yaml:"parallelism"`
}

type ServerConfig struct {
	Address     string        `koanf:"address" yaml:"address"`
	DataDir     string        `koanf:"data_dir" yaml:"data_dir"`
	ReadTimeout time.Duration `koanf:"read_timeout" yaml:"read_timeout"`
}

func defaults() map[string]any {
	return map[string]any{
		"log.level":           "info",
		"log.format":          string(logger.FormatAuto),
		"csv.header":          false,
		"csv.delimiter":       ",",
		"csv.fill":            false,
		"csv.fill_value":      0.0,
		"exec.block_rows":     1000,
		"exec.block_cols":     1000,
		"exec.parallelism":    0,
		"server.address":      "127.0.0.1:8080",
		"server.data_dir":     ".",
		"server.read_timeout": "30s",
	}
}

// DefaultPath is $XDG_CONFIG_HOME/matcore/config.yaml, or "" when no user
// config directory is known.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "matcore", "config.yaml")
}

// Load builds the effective configuration. An explicit path must exist; when
// path is empty DefaultPath is used if present.
func Load(path string) (*Config, error) {
	return load(path, EnvPrefix)
}

func load(path, prefix string) (*Config, error) {
	k, err := withDefaults()
	if err != nil {
		return nil, err
	}

	used := path
	if used == "" {
		used = DefaultPath()
		if used != "" {
			if _, err := os.Stat(used); errors.Is(err, fs.ErrNotExist) {
				used = ""
			}
		}
	}
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", used, err)
		}
	}

	if err := k.Load(env.Provider(prefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, prefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	cfg, err := decode(k)
	if err != nil {
		return nil, err
	}
	cfg.File = used
	return cfg, nil
}

func withDefaults() (*koanf.Koanf, error) {
	k := koanf.New(".")
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}
	return k, nil
}

func decode(k *koanf.Koanf) (*Config, error) {
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	return &cfg, nil
}

// Default returns the built-in configuration without consulting files or
// the environment.
func Default() *Config {
	k, err := withDefaults()
	if err == nil {
		var cfg *Config
		if cfg, err = decode(k); err == nil {
			return cfg
		}
	}
	panic(err)
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if _, err := logger.ParseFormat(c.Log.Format); err != nil {
		errs = append(errs, err)
	}
	if err := c.CSVProperties().Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Exec.BlockRows < 0 || c.Exec.BlockCols < 0 {
		errs = append(errs, fmt.Errorf("block size %dx%d must not be negative", c.Exec.BlockRows, c.Exec.BlockCols))
	}
	if c.Exec.Parallelism < 0 {
		errs = append(errs, fmt.Errorf("parallelism %d must not be negative", c.Exec.Parallelism))
	}
	if c.Server.Address == "" {
		errs = append(errs, errors.New("server address is empty"))
	}
	if c.Server.ReadTimeout < 0 {
		errs = append(errs, fmt.Errorf("read timeout %s must not be negative", c.Server.ReadTimeout))
	}
	return errors.Join(errs...)
}

func (c *Config) CSVProperties() csvio.Properties {
	return csvio.Properties{
		HasHeader: c.CSV.Header,
		Delimiter: c.CSV.Delimiter,
		Fill:      c.CSV.Fill,
		FillValue: c.CSV.FillValue,
	}
}

// Marshal renders the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yamlv3.Marshal(c)
}
