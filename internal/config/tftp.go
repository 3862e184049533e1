package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	EnvTFTPEnabled = "ROUTER_TFTP_ENABLED"
	EnvTFTPAddr    = "ROUTER_TFTP_ADDR"
)

// TFTPConfig controls the read-only TFTP mirror of the site.
type TFTPConfig struct {
	// Enabled is a pointer so an overlay can switch it off again.
	Enabled *bool  `toml:"enabled"`
	Addr    string `toml:"addr"`
	Timeout string `toml:"timeout"`

	timeout time.Duration
}

func (c *TFTPConfig) IsEnabled() bool {
	return c.Enabled != nil && *c.Enabled
}

func (c *TFTPConfig) TimeoutDuration() time.Duration {
	return c.timeout
}

func (c *TFTPConfig) Finalize() error {
	c.loadDefaults()
	if err := c.loadEnv(); err != nil {
		return err
	}
	return c.validate()
}

func (c *TFTPConfig) Merge(overlay *TFTPConfig) {
	if overlay.Enabled != nil {
		enabled := *overlay.Enabled
		c.Enabled = &enabled
	}
	if overlay.Addr != "" {
		c.Addr = overlay.Addr
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
}

func (c *TFTPConfig) loadDefaults() {
	if c.Addr == "" {
		c.Addr = ":6969"
	}
	if c.Timeout == "" {
		c.Timeout = "5s"
	}
}

func (c *TFTPConfig) loadEnv() error {
	if v := os.Getenv(EnvTFTPEnabled); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvTFTPEnabled, err)
		}
		c.Enabled = &enabled
	}
	if v := os.Getenv(EnvTFTPAddr); v != "" {
		c.Addr = v
	}
	return nil
}

func (c *TFTPConfig) validate() error {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	c.timeout = d
	return nil
}
