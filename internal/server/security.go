// Package server provides the listeners shared by the HTTP and gRPC edges.
package server

import (
	"crypto/tls"
	"fmt"
	"net"

	"github.com/dtroode/dailyphrase/internal/model"
)

// NewSecurityLayer returns a TLS listener when enableTLS is set, otherwise a
// plain TCP one.
func NewSecurityLayer(enableTLS bool, certFile, keyFile string) model.SecurityLayer {
	if enableTLS {
		return NewTLSListener(certFile, keyFile)
	}
	return NewPlainListener()
}

// TLSListener serves TLS with a certificate loaded on every Listen.
type TLSListener struct {
	certFile string
	keyFile  string
}

func NewTLSListener(certFile, keyFile string) *TLSListener {
	return &TLSListener{certFile: certFile, keyFile: keyFile}
}

func (l *TLSListener) Listen(protocol, addr string) (net.Listener, error) {
	cert, err := tls.LoadX509KeyPair(l.certFile, l.keyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load TLS certificate: %w", err)
	}
	return tls.Listen(protocol, addr, &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	})
}

// PlainListener serves unencrypted TCP.
type PlainListener struct{}

func NewPlainListener() *PlainListener {
	return &PlainListener{}
}

func (l *PlainListener) Listen(protocol, addr string) (net.Listener, error) {
	return net.Listen(protocol, addr)
}
