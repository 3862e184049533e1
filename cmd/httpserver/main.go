package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/nhdewitt/route-server/internal/config"
	"github.com/nhdewitt/route-server/internal/dispatch"
	"github.com/nhdewitt/route-server/internal/server"
	"github.com/nhdewitt/route-server/internal/site"
	"github.com/nhdewitt/route-server/internal/tftp"
	"github.com/nhdewitt/route-server/pkg/logging"
)

func main() {
	configPath := flag.String("config", config.DefaultConfigFile, "path to the TOML configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		log.Fatal(err)
	}
}

// run returns only after a signal or a startup failure, so every listener
// opened before the failure is closed on the way out.
func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Finalize(); err != nil {
		return fmt.Errorf("finalizing config: %w", err)
	}

	logger := logging.New(&cfg.Logging)

	registry := buildRegistry(cfg.RouteTable(), logger)
	logRouteTable(registry, logger)

	s, err := site.Load(osfs.New(cfg.Site.Root), cfg.Resources())
	if err != nil {
		return fmt.Errorf("loading site: %w", err)
	}

	handler := dispatch.New(registry, s, cfg.Site.Fallback, logger)
	srv, err := server.Serve(server.Options{
		Addr:           cfg.Server.Addr(),
		ReadTimeout:    cfg.Server.ReadTimeoutDuration(),
		MaxRequestSize: cfg.Server.MaxRequestSizeBytes(),
	}, handler, logger)
	if err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	defer srv.Close()
	logger.Info("server started", "addr", srv.Addr().String(), "site", cfg.Site.Root)

	if cfg.TFTP.IsEnabled() {
		t, err := tftp.Serve(cfg.TFTP.Addr, cfg.TFTP.TimeoutDuration(), registry, s, logger)
		if err != nil {
			return fmt.Errorf("starting tftp server: %w", err)
		}
		defer t.Close()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.Info("server stopping", "signal", sig.String())
	return nil
}
