package main

import (
	"log/slog"

	"github.com/nhdewitt/route-server/internal/routes"
)

// buildRegistry inserts table in order. Duplicates keep the first binding
// and are reported as warnings.
func buildRegistry(table []routes.Route, logger *slog.Logger) *routes.Registry {
	return routes.Load(table, func(r routes.Route) {
		logger.Warn("route already exists", "path", r.Key, "ignored", r.Value)
	})
}

func logRouteTable(registry *routes.Registry, logger *slog.Logger) {
	logger.Info("route table", "routes", registry.Len())
	for path, resource := range registry.All() {
		logger.Info("route", "path", path, "resource", resource)
	}
}
