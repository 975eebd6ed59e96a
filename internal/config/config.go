package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable the tool reads.
const EnvPrefix = "UNPEEL_"

// Output formats for the report.
const (
	FormatText = "text"
	FormatYAML = "yaml"
)

var ErrInvalid = errors.New("invalid configuration")

// Config holds the settings of one run. Later sources override earlier ones:
// defaults, the YAML file, the environment, then command-line flags.
type Config struct {
	LogLevel         string `yaml:"log_level"`
	LogFile          string `yaml:"log_file"`
	Format           string `yaml:"format"`
	Noise            bool   `yaml:"noise"`
	Seed             uint64 `yaml:"seed"`
	Inflate          bool   `yaml:"inflate"`
	CompressionLevel int    `yaml:"compression_level"`
	Color            bool   `yaml:"color"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		LogLevel:         "warn",
		Format:           FormatText,
		Noise:            true,
		CompressionLevel: -1,
		Color:            true,
	}
}

// Load builds a Config from the defaults, the YAML file at path (or the one
// named by UNPEEL_CONFIG when path is empty) and UNPEEL_* variables.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv(EnvPrefix + "CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("reading config: %w", err)
		}
		if err := cfg.decodeYAML(data); err != nil {
			return cfg, fmt.Errorf("parsing %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// LoadDotEnv loads KEY=value pairs from the given files (".env" when none
// are named) into the environment without overriding variables already set.
// Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}

func (c *Config) decodeYAML(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// Validate rejects settings the tool cannot act on.
func (c Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: log_level %q", ErrInvalid, c.LogLevel)
	}
	if c.Format != FormatText && c.Format != FormatYAML {
		return fmt.Errorf("%w: format %q (want %s or %s)", ErrInvalid, c.Format, FormatText, FormatYAML)
	}
	if c.CompressionLevel < -2 || c.CompressionLevel > 9 {
		return fmt.Errorf("%w: compression_level %d outside -2..9", ErrInvalid, c.CompressionLevel)
	}
	return nil
}
