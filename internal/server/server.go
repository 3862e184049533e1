// Package server accepts TCP connections and answers one HTTP request per
// connection.
package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/nhdewitt/route-server/internal/request"
	"github.com/nhdewitt/route-server/internal/response"
)

const (
	lingerTimeout = 500 * time.Millisecond
	lingerLimit   = 64 << 10
)

type Options struct {
	Addr string

	// ReadTimeout bounds reading the request; zero disables it.
	ReadTimeout    time.Duration
	// MaxRequestSize bounds the request line plus headers; zero disables it.
	MaxRequestSize int64
}

type Server struct {
	listener    net.Listener
	isListening atomic.Bool
	handler     Handler
	opts        Options
	logger      *slog.Logger
	conns       sync.WaitGroup

	mu   sync.Mutex
	live map[net.Conn]struct{}
}

func Serve(opts Options, handler Handler, logger *slog.Logger) (*Server, error) {
	lc := net.ListenConfig{Control: controlReuseAddr}
	listener, err := lc.Listen(context.Background(), "tcp", opts.Addr)
	if err != nil {
		return nil, err
	}
	s := &Server{
		listener: listener,
		handler:  handler,
		opts:     opts,
		logger:   logger,
		live:     make(map[net.Conn]struct{}),
	}
	s.isListening.Store(true)
	s.conns.Add(1)
	go s.listen()

	return s, nil
}

func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Close stops accepting, expires the read deadline of every open
// connection, and waits for their handlers to return.
func (s *Server) Close() error {
	if !s.isListening.CompareAndSwap(true, false) {
		return nil
	}

	err := s.listener.Close()

	s.mu.Lock()
	for conn := range s.live {
		_ = conn.SetReadDeadline(time.Now())
	}
	s.mu.Unlock()

	s.conns.Wait()
	return err
}

// track registers conn unless the server is already closing.
func (s *Server) track(conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isListening.Load() {
		return false
	}
	s.live[conn] = struct{}{}
	return true
}

func (s *Server) untrack(conn net.Conn) {
	s.mu.Lock()
	delete(s.live, conn)
	s.mu.Unlock()
}

func (s *Server) listen() {
	defer s.conns.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if !s.isListening.Load() {
				return
			}
			s.logger.Error("accept failed", "error", err)
			continue
		}

		if !s.track(conn) {
			conn.Close()
			return
		}

		s.conns.Add(1)
		go func() {
			defer s.conns.Done()
			defer s.untrack(conn)
			s.handle(conn)
		}()
	}
}

func (s *Server) handle(conn net.Conn) {
	defer lingeringClose(conn)

	logger := s.logger.With("conn", uuid.NewString(), "remote", conn.RemoteAddr().String())
	start := time.Now()

	if s.opts.ReadTimeout > 0 {
		s.mu.Lock()
		if s.isListening.Load() {
			_ = conn.SetReadDeadline(start.Add(s.opts.ReadTimeout))
		}
		s.mu.Unlock()
	}

	resp := response.NewWriter(conn)

	req, err := request.RequestFromReader(conn, s.opts.MaxRequestSize)
	if err != nil {
		status := response.StatusBadRequest
		if errors.Is(err, request.ErrRequestTooLarge) {
			status = response.StatusRequestEntityTooLarge
		}
		logger.Warn("bad request", "error", err, "status", int(status))
		if werr := resp.WriteRendered(status, response.Status(status), false); werr != nil {
			logger.Debug("write failed", "error", werr)
		}
		return
	}

	s.handler(resp, req)

	logger.Info("request",
		"method", req.RequestLine.Method,
		"target", req.RequestLine.RequestTarget,
		"status", int(resp.Status()),
		"duration", time.Since(start))
}

// lingeringClose half-closes and drains pending input before closing, so
// unread request bytes do not turn the close into a reset that drops the
// response.
func lingeringClose(conn net.Conn) {
	if tc, ok := conn.(*net.TCPConn); ok {
		_ = tc.CloseWrite()
		_ = tc.SetReadDeadline(time.Now().Add(lingerTimeout))
		_, _ = io.Copy(io.Discard, io.LimitReader(tc, lingerLimit))
	}
	conn.Close()
}
