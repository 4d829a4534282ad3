package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dtroode/dailyphrase/internal/model"
)

var _ model.Server = (*HTTPServer)(nil)

// HTTPServer serves a handler on a listener from a model.SecurityLayer.
type HTTPServer struct {
	server *http.Server
	addr   string
}

func NewHTTPServer(handler http.Handler, addr string) *HTTPServer {
	return &HTTPServer{
		server: &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		addr: addr,
	}
}

// Start blocks until the server is stopped. A graceful stop is not an error.
func (s *HTTPServer) Start(securityLayer model.SecurityLayer) error {
	listener, err := securityLayer.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPServer) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) Address() string {
	return s.addr
}
