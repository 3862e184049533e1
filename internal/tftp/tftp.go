// Package tftp mirrors the routed resources over read-only TFTP.
package tftp

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/nhdewitt/route-server/internal/routes"
	"github.com/nhdewitt/route-server/internal/site"
	tftp "github.com/pin/tftp/v3"
)

var (
	ErrNoRoute  = errors.New("no route")
	ErrReadOnly = errors.New("read-only server")
)

type Server struct {
	srv    *tftp.Server
	conn   *net.UDPConn
	logger *slog.Logger
	done   chan struct{}
}

// RouteKey maps a TFTP filename onto a registry key.
func RouteKey(filename string) string {
	filename = strings.TrimSpace(filename)
	if !strings.HasPrefix(filename, "/") {
		return "/" + filename
	}
	return filename
}

func readHandler(registry *routes.Registry, s *site.Site, logger *slog.Logger) func(string, io.ReaderFrom) error {
	return func(filename string, rf io.ReaderFrom) error {
		key := RouteKey(filename)
		name, ok := registry.Find(key)
		if !ok {
			logger.Warn("tftp read refused", "filename", filename, "key", key)
			return fmt.Errorf("%w: %s", ErrNoRoute, key)
		}

		body, ok := s.Body(name)
		if !ok {
			logger.Error("resource not loaded", "key", key, "resource", name)
			return fmt.Errorf("resource %q not loaded", name)
		}

		if t, ok := rf.(tftp.OutgoingTransfer); ok {
			t.SetSize(int64(len(body)))
		}
		n, err := rf.ReadFrom(bytes.NewReader(body))
		if err != nil {
			return err
		}
		logger.Info("tftp read", "filename", filename, "resource", name, "bytes", n)
		return nil
	}
}

func writeHandler(filename string, wt io.WriterTo) error {
	return ErrReadOnly
}

// Serve starts serving on addr in the background.
func Serve(addr string, timeout time.Duration, registry *routes.Registry, s *site.Site, logger *slog.Logger) (*Server, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, err
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return nil, err
	}

	srv := tftp.NewServer(readHandler(registry, s, logger), writeHandler)
	srv.SetTimeout(timeout)

	t := &Server{
		srv:    srv,
		conn:   conn,
		logger: logger,
		done:   make(chan struct{}),
	}
	go func() {
		defer close(t.done)
		logger.Info("tftp server listening", "addr", conn.LocalAddr().String())
		if err := srv.Serve(conn); err != nil {
			logger.Error("tftp server error", "error", err)
		}
	}()
	return t, nil
}

func (t *Server) Addr() net.Addr {
	return t.conn.LocalAddr()
}

// Close waits for running transfers to finish.
func (t *Server) Close() {
	t.srv.Shutdown()
	<-t.done
}
