package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/nhdewitt/route-server/internal/request"
	"github.com/nhdewitt/route-server/internal/response"
	"github.com/nhdewitt/route-server/internal/server"
	"github.com/nhdewitt/route-server/pkg/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startServer(t *testing.T) *server.Server {
	t.Helper()
	handler := func(w *response.Writer, req *request.Request) {
		body := []byte(req.RequestLine.Method + " " + req.RequestLine.RequestTarget + " " + req.Headers.Get("host"))
		_ = w.WriteRendered(response.StatusOK, response.Render(response.StatusOK, "text/plain", body), false)
	}
	s, err := server.Serve(server.Options{Addr: "127.0.0.1:0", ReadTimeout: time.Second}, handler, logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestFetch(t *testing.T) {
	s := startServer(t)
	addr := s.Addr().String()

	var buf bytes.Buffer
	require.NoError(t, fetch(addr, "/yoo", time.Second, &buf))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "HTTP/1.1 200 OK\r\n"), out)
	assert.True(t, strings.HasSuffix(out, "\r\n\r\nGET /yoo "+addr), out)

	// a bare path gets its leading slash
	buf.Reset()
	require.NoError(t, fetch(addr, "yoo", time.Second, &buf))
	assert.Contains(t, buf.String(), "GET /yoo ")
}

func TestFetchDialError(t *testing.T) {
	s := startServer(t)
	addr := s.Addr().String()
	require.NoError(t, s.Close())

	var buf bytes.Buffer
	assert.Error(t, fetch(addr, "/", time.Second, &buf))
	assert.Empty(t, buf.String())
}
