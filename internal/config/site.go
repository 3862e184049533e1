package config

import (
	"fmt"
	"os"
)

const (
	EnvSiteRoot     = "ROUTER_SITE_ROOT"
	EnvSiteFallback = "ROUTER_SITE_FALLBACK"
)

type SiteConfig struct {
	// Root is the directory resources are read from. Default: "site"
	Root     string `toml:"root"`
	// Fallback is served for paths with no route. Empty means 404.
	Fallback string `toml:"fallback"`
}

func (c *SiteConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

func (c *SiteConfig) Merge(overlay *SiteConfig) {
	if overlay.Root != "" {
		c.Root = overlay.Root
	}
	if overlay.Fallback != "" {
		c.Fallback = overlay.Fallback
	}
}

func (c *SiteConfig) loadDefaults() {
	if c.Root == "" {
		c.Root = "site"
	}
}

func (c *SiteConfig) loadEnv() {
	if v := os.Getenv(EnvSiteRoot); v != "" {
		c.Root = v
	}
	if v := os.Getenv(EnvSiteFallback); v != "" {
		c.Fallback = v
	}
}

func (c *SiteConfig) validate() error {
	if c.Root == "" {
		return fmt.Errorf("root required")
	}
	return nil
}
