package server

import (
	"context"
	"fmt"

	"google.golang.org/grpc"

	"github.com/dtroode/dailyphrase/internal/model"
)

var _ model.Server = (*GRPCServer)(nil)

// GRPCServer binds a grpc.Server to an address.
type GRPCServer struct {
	server *grpc.Server
	addr   string
}

func NewGRPCServer(server *grpc.Server, addr string) *GRPCServer {
	return &GRPCServer{server: server, addr: addr}
}

// Start blocks serving on a listener from securityLayer.
func (s *GRPCServer) Start(securityLayer model.SecurityLayer) error {
	listener, err := securityLayer.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	return s.server.Serve(listener)
}

// Stop waits for in-flight calls unless ctx ends first.
func (s *GRPCServer) Stop(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		s.server.Stop()
		return ctx.Err()
	}
}

func (s *GRPCServer) Address() string {
	return s.addr
}
