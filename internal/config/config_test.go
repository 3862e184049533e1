package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nhdewitt/route-server/internal/routes"
	"github.com/nhdewitt/route-server/pkg/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
[server]
host = "127.0.0.1"
port = 8080
read_timeout = "2s"
max_request_size = "16KB"

[logging]
level = "debug"

[site]
root = "www"
fallback = "index.html"

[tftp]
enabled = true
addr = ":1069"

[[routes]]
path = "/"
resource = "index.html"

[[routes]]
path = "/yoo"
resource = "yoo.html"
`

func writeFile(t *testing.T, dir, name, data string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.toml", sample)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Finalize())

	assert.Equal(t, "127.0.0.1:8080", cfg.Server.Addr())
	assert.Equal(t, 2*time.Second, cfg.Server.ReadTimeoutDuration())
	assert.Equal(t, int64(16000), cfg.Server.MaxRequestSizeBytes())
	assert.Equal(t, logging.LevelDebug, cfg.Logging.Level)
	assert.Equal(t, logging.FormatText, cfg.Logging.Format)
	assert.Equal(t, "www", cfg.Site.Root)
	assert.True(t, cfg.TFTP.IsEnabled())
	assert.Equal(t, ":1069", cfg.TFTP.Addr)
	assert.Equal(t, 5*time.Second, cfg.TFTP.TimeoutDuration())

	assert.Equal(t, []routes.Route{
		{Key: "/", Value: "index.html"},
		{Key: "/yoo", Value: "yoo.html"},
	}, cfg.RouteTable())
	assert.Equal(t, []string{"index.html", "yoo.html"}, cfg.Resources())
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.toml"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, dir, "bad.toml", "[server\nport = 1"))
	assert.Error(t, err)
}

func TestLoadOverlay(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.toml", sample)
	writeFile(t, dir, "config.dev.toml", `
[server]
port = 9090

[[routes]]
path = "/dev"
resource = "dev.html"
`)

	t.Setenv(EnvRouterEnv, "dev")
	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Finalize())

	assert.Equal(t, "127.0.0.1:9090", cfg.Server.Addr())
	assert.Equal(t, []routes.Route{{Key: "/dev", Value: "dev.html"}}, cfg.RouteTable())
	assert.Equal(t, []string{"dev.html", "index.html"}, cfg.Resources())

	// unknown environment has no overlay
	t.Setenv(EnvRouterEnv, "prod")
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestFinalizeDefaults(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, cfg.Finalize())

	assert.Equal(t, ":2137", cfg.Server.Addr())
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeoutDuration())
	assert.Equal(t, int64(8000), cfg.Server.MaxRequestSizeBytes())
	assert.Equal(t, "site", cfg.Site.Root)
	assert.Empty(t, cfg.Site.Fallback)
	assert.False(t, cfg.TFTP.IsEnabled())
	assert.Equal(t, ":6969", cfg.TFTP.Addr)
	assert.Equal(t, []routes.Route{{Key: "/", Value: "index.html"}}, cfg.RouteTable())
}

func TestFinalizeEnv(t *testing.T) {
	t.Setenv(EnvServerPort, "3000")
	t.Setenv(EnvServerMaxRequestSize, "1MB")
	t.Setenv(EnvSiteRoot, "/srv/site")
	t.Setenv(EnvSiteFallback, "404.html")
	t.Setenv(EnvTFTPEnabled, "true")
	t.Setenv("ROUTER_LOG_FORMAT", "json")

	cfg := &Config{}
	require.NoError(t, cfg.Finalize())

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, int64(1000000), cfg.Server.MaxRequestSizeBytes())
	assert.Equal(t, "/srv/site", cfg.Site.Root)
	assert.Equal(t, "404.html", cfg.Site.Fallback)
	assert.True(t, cfg.TFTP.IsEnabled())
	assert.Equal(t, logging.FormatJSON, cfg.Logging.Format)
	assert.Equal(t, []string{"index.html", "404.html"}, cfg.Resources())
}

func TestFinalizeInvalid(t *testing.T) {
	cases := map[string]*Config{
		"port":             {Server: ServerConfig{Port: 70000}},
		"read_timeout":     {Server: ServerConfig{ReadTimeout: "soon"}},
		"max_request_size": {Server: ServerConfig{MaxRequestSize: "lots"}},
		"log level":        {Logging: logging.Config{Level: "loud"}},
		"tftp timeout":     {TFTP: TFTPConfig{Timeout: "0s"}},
		"route resource":   {Routes: []RouteConfig{{Path: "/"}}},
	}
	for name, cfg := range cases {
		assert.Error(t, cfg.Finalize(), name)
	}

	t.Setenv(EnvServerPort, "http")
	assert.Error(t, (&Config{}).Finalize())
}

func TestFinalizeKeepsDuplicateRoutes(t *testing.T) {
	cfg := &Config{Routes: []RouteConfig{
		{Path: "/a", Resource: "a.html"},
		{Path: "/a", Resource: "b.html"},
	}}
	require.NoError(t, cfg.Finalize())

	var dups []routes.Route
	r := routes.Load(cfg.RouteTable(), func(route routes.Route) {
		dups = append(dups, route)
	})
	assert.Equal(t, 1, r.Len())
	assert.Equal(t, []routes.Route{{Key: "/a", Value: "b.html"}}, dups)
}

func TestMerge(t *testing.T) {
	enabled := true
	base := &Config{
		Server: ServerConfig{Host: "localhost", Port: 8080},
		Site:   SiteConfig{Root: "www"},
		Routes: []RouteConfig{{Path: "/", Resource: "index.html"}},
	}
	base.Merge(&Config{
		Server: ServerConfig{Port: 9090},
		TFTP:   TFTPConfig{Enabled: &enabled},
	})

	assert.Equal(t, "localhost", base.Server.Host)
	assert.Equal(t, 9090, base.Server.Port)
	assert.Equal(t, "www", base.Site.Root)
	assert.True(t, base.TFTP.IsEnabled())
	assert.Len(t, base.Routes, 1)
}

func TestOverlayDisablesTFTP(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.toml", sample)
	writeFile(t, dir, "config.quiet.toml", `
[tftp]
enabled = false
`)

	t.Setenv(EnvRouterEnv, "quiet")
	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Finalize())
	assert.False(t, cfg.TFTP.IsEnabled())
	assert.Equal(t, ":1069", cfg.TFTP.Addr)

	// an overlay without the key keeps the base value
	base := &TFTPConfig{}
	on := true
	base.Merge(&TFTPConfig{Enabled: &on})
	base.Merge(&TFTPConfig{})
	assert.True(t, base.IsEnabled())
}

func TestReadTimeoutZeroDisables(t *testing.T) {
	cfg := &Config{Server: ServerConfig{ReadTimeout: "0s"}}
	require.NoError(t, cfg.Finalize())
	assert.Equal(t, time.Duration(0), cfg.Server.ReadTimeoutDuration())
}
