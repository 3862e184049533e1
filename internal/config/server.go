package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/docker/go-units"
)

const (
	EnvServerHost           = "ROUTER_SERVER_HOST"
	EnvServerPort           = "ROUTER_SERVER_PORT"
	EnvServerReadTimeout    = "ROUTER_SERVER_READ_TIMEOUT"
	EnvServerMaxRequestSize = "ROUTER_SERVER_MAX_REQUEST_SIZE"
)

type ServerConfig struct {
	Host        string `toml:"host"`
	Port        int    `toml:"port"`
	ReadTimeout string `toml:"read_timeout"`

	// MaxRequestSize bounds the request line plus headers, e.g. "8KB".
	MaxRequestSize string `toml:"max_request_size"`

	readTimeout    time.Duration
	maxRequestSize int64
}

func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c *ServerConfig) ReadTimeoutDuration() time.Duration {
	return c.readTimeout
}

func (c *ServerConfig) MaxRequestSizeBytes() int64 {
	return c.maxRequestSize
}

func (c *ServerConfig) Finalize() error {
	c.loadDefaults()
	if err := c.loadEnv(); err != nil {
		return err
	}
	return c.validate()
}

func (c *ServerConfig) Merge(overlay *ServerConfig) {
	if overlay.Host != "" {
		c.Host = overlay.Host
	}
	if overlay.Port != 0 {
		c.Port = overlay.Port
	}
	if overlay.ReadTimeout != "" {
		c.ReadTimeout = overlay.ReadTimeout
	}
	if overlay.MaxRequestSize != "" {
		c.MaxRequestSize = overlay.MaxRequestSize
	}
}

func (c *ServerConfig) loadDefaults() {
	if c.Port == 0 {
		c.Port = 2137
	}
	if c.ReadTimeout == "" {
		c.ReadTimeout = "10s"
	}
	if c.MaxRequestSize == "" {
		c.MaxRequestSize = "8KB"
	}
}

func (c *ServerConfig) loadEnv() error {
	if v := os.Getenv(EnvServerHost); v != "" {
		c.Host = v
	}
	if v := os.Getenv(EnvServerPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvServerPort, err)
		}
		c.Port = port
	}
	if v := os.Getenv(EnvServerReadTimeout); v != "" {
		c.ReadTimeout = v
	}
	if v := os.Getenv(EnvServerMaxRequestSize); v != "" {
		c.MaxRequestSize = v
	}
	return nil
}

func (c *ServerConfig) validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}

	d, err := time.ParseDuration(c.ReadTimeout)
	if err != nil {
		return fmt.Errorf("invalid read_timeout: %w", err)
	}
	if d < 0 {
		return fmt.Errorf("read_timeout must not be negative")
	}
	c.readTimeout = d

	size, err := units.FromHumanSize(c.MaxRequestSize)
	if err != nil {
		return fmt.Errorf("invalid max_request_size: %w", err)
	}
	if size <= 0 {
		return fmt.Errorf("max_request_size must be positive")
	}
	c.maxRequestSize = size

	return nil
}
