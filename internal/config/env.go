package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

func (c *Config) applyEnv() error {
	if v, ok := lookup("LOG_LEVEL"); ok {
		c.LogLevel = strings.ToLower(v)
	}
	if v, ok := lookup("LOG_FILE"); ok {
		c.LogFile = v
	}
	if v, ok := lookup("FORMAT"); ok {
		c.Format = strings.ToLower(v)
	}
	if err := parseBool("NOISE", &c.Noise); err != nil {
		return err
	}
	if err := parseBool("INFLATE", &c.Inflate); err != nil {
		return err
	}
	if err := parseBool("COLOR", &c.Color); err != nil {
		return err
	}
	if v, ok := lookup("SEED"); ok {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %sSEED=%q", ErrInvalid, EnvPrefix, v)
		}
		c.Seed = n
	}
	if v, ok := lookup("COMPRESSION_LEVEL"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %sCOMPRESSION_LEVEL=%q", ErrInvalid, EnvPrefix, v)
		}
		c.CompressionLevel = n
	}
	return nil
}

// lookup returns a trimmed UNPEEL_ variable; empty values count as unset.
func lookup(key string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(EnvPrefix + key))
	return v, v != ""
}

func parseBool(key string, dst *bool) error {
	v, ok := lookup(key)
	if !ok {
		return nil
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		*dst = true
	case "0", "false", "no", "off":
		*dst = false
	default:
		return fmt.Errorf("%w: %s%s=%q is not a boolean", ErrInvalid, EnvPrefix, key, v)
	}
	return nil
}
