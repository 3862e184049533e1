// Package config loads the server configuration from TOML with support for
// an environment-specific overlay file and environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/nhdewitt/route-server/internal/routes"
	"github.com/nhdewitt/route-server/pkg/logging"
	"github.com/pelletier/go-toml/v2"
)

const (
	// DefaultConfigFile is used when no path is given on the command line.
	DefaultConfigFile = "config.toml"

	// EnvRouterEnv selects the overlay file config.<env>.toml.
	EnvRouterEnv = "ROUTER_ENV"
)

var loggingEnv = &logging.Env{
	Level:  "ROUTER_LOG_LEVEL",
	Format: "ROUTER_LOG_FORMAT",
}

type Config struct {
	Server  ServerConfig   `toml:"server"`
	Logging logging.Config `toml:"logging"`
	Site    SiteConfig     `toml:"site"`
	TFTP    TFTPConfig     `toml:"tftp"`
	Routes  []RouteConfig  `toml:"routes"`
}

// RouteConfig binds a request path to a resource under the site root.
type RouteConfig struct {
	Path     string `toml:"path"`
	Resource string `toml:"resource"`
}

// Load reads path and merges the overlay selected by ROUTER_ENV, if present.
func Load(path string) (*Config, error) {
	cfg, err := load(path)
	if err != nil {
		return nil, err
	}

	if overlay := overlayPath(path); overlay != "" {
		o, err := load(overlay)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", overlay, err)
		}
		cfg.Merge(o)
	}
	return cfg, nil
}

// Finalize applies defaults, loads environment overrides, and validates the configuration.
func (c *Config) Finalize() error {
	c.loadDefaults()

	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Logging.Finalize(loggingEnv); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if err := c.Site.Finalize(); err != nil {
		return fmt.Errorf("site: %w", err)
	}
	if err := c.TFTP.Finalize(); err != nil {
		return fmt.Errorf("tftp: %w", err)
	}
	return c.validate()
}

// Merge applies values from overlay that differ from zero values. A
// non-empty route list in the overlay replaces the base list.
func (c *Config) Merge(overlay *Config) {
	c.Server.Merge(&overlay.Server)
	c.Logging.Merge(&overlay.Logging)
	c.Site.Merge(&overlay.Site)
	c.TFTP.Merge(&overlay.TFTP)
	if len(overlay.Routes) > 0 {
		c.Routes = overlay.Routes
	}
}

// RouteTable returns the configured routes in declaration order.
func (c *Config) RouteTable() []routes.Route {
	table := make([]routes.Route, 0, len(c.Routes))
	for _, r := range c.Routes {
		table = append(table, routes.Route{Key: r.Path, Value: r.Resource})
	}
	return table
}

// Resources returns every distinct resource the server has to load,
// including the fallback.
func (c *Config) Resources() []string {
	seen := map[string]bool{}
	var names []string
	add := func(name string) {
		if name != "" && !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	for _, r := range c.Routes {
		add(r.Resource)
	}
	add(c.Site.Fallback)
	return names
}

func (c *Config) loadDefaults() {
	if len(c.Routes) == 0 {
		c.Routes = []RouteConfig{{Path: "/", Resource: "index.html"}}
	}
}

func (c *Config) validate() error {
	for i, r := range c.Routes {
		if r.Resource == "" {
			return fmt.Errorf("routes[%d] (%q): resource required", i, r.Path)
		}
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath(base string) string {
	env := os.Getenv(EnvRouterEnv)
	if env == "" {
		return ""
	}
	path := fmt.Sprintf("%s.%s.toml", strings.TrimSuffix(base, ".toml"), env)
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}
