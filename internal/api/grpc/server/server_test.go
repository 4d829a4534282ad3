package server

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"

	"github.com/dtroode/dailyphrase/internal/mocks"
)

func TestGRPCServer_Address(t *testing.T) {
	s := NewGRPCServer(grpc.NewServer(), ":50051")
	assert.Equal(t, ":50051", s.Address())
}

func TestGRPCServer_StartAndStop(t *testing.T) {
	srv := NewGRPCServer(grpc.NewServer(), ":0")
	sec := mocks.NewSecurityLayer(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	listening := make(chan struct{})
	sec.On("Listen", "tcp", ":0").Return(ln, nil).Run(func(mock.Arguments) { close(listening) }).Once()

	served := make(chan error, 1)
	go func() { served <- srv.Start(sec) }()
	<-listening

	require.NoError(t, srv.Stop(context.Background()))
	if err := <-served; err != nil {
		assert.ErrorIs(t, err, grpc.ErrServerStopped)
	}
}

func TestGRPCServer_StartListenError(t *testing.T) {
	srv := NewGRPCServer(grpc.NewServer(), ":0")
	sec := mocks.NewSecurityLayer(t)
	sec.On("Listen", "tcp", ":0").Return(nil, errors.New("address in use")).Once()

	err := srv.Start(sec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "address in use")
}
