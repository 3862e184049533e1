// Package dispatch answers requests by looking the request path up in the
// route registry and writing the precomputed response of the bound resource.
package dispatch

import (
	"log/slog"

	"github.com/nhdewitt/route-server/internal/headers"
	"github.com/nhdewitt/route-server/internal/request"
	"github.com/nhdewitt/route-server/internal/response"
	"github.com/nhdewitt/route-server/internal/routes"
	"github.com/nhdewitt/route-server/internal/server"
	"github.com/nhdewitt/route-server/internal/site"
)

const allowedMethods = "GET, HEAD"

type dispatcher struct {
	registry *routes.Registry
	site     *site.Site
	fallback string
	logger   *slog.Logger

	notFound         []byte
	methodNotAllowed []byte
	internalError    []byte
}

// New returns a handler serving registry bindings from s. Paths with no
// binding are answered with the fallback resource, or 404 when fallback
// is empty.
func New(registry *routes.Registry, s *site.Site, fallback string, logger *slog.Logger) server.Handler {
	d := &dispatcher{
		registry:         registry,
		site:             s,
		fallback:         fallback,
		logger:           logger,
		notFound:         response.Status(response.StatusNotFound),
		methodNotAllowed: response.StatusWith(response.StatusMethodNotAllowed, headers.Headers{"allow": allowedMethods}),
		internalError:    response.Status(response.StatusInternalServerError),
	}
	return d.serve
}

func (d *dispatcher) serve(w *response.Writer, req *request.Request) {
	method := req.RequestLine.Method
	headOnly := method == "HEAD"
	if method != "GET" && !headOnly {
		d.write(w, response.StatusMethodNotAllowed, d.methodNotAllowed, false)
		return
	}

	status, rendered := d.resolve(req.Path())
	d.write(w, status, rendered, headOnly)
}

func (d *dispatcher) resolve(path string) (response.StatusCode, []byte) {
	name, ok := d.registry.Find(path)
	if !ok {
		if d.fallback == "" {
			return response.StatusNotFound, d.notFound
		}
		name = d.fallback
	}

	rendered, ok := d.site.Response(name)
	if !ok {
		d.logger.Error("resource not loaded", "path", path, "resource", name)
		return response.StatusInternalServerError, d.internalError
	}
	return response.StatusOK, rendered
}

func (d *dispatcher) write(w *response.Writer, status response.StatusCode, rendered []byte, headOnly bool) {
	if err := w.WriteRendered(status, rendered, headOnly); err != nil {
		d.logger.Debug("write failed", "error", err)
	}
}
