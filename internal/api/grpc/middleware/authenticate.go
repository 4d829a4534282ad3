package middleware

import (
	"context"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/dtroode/dailyphrase/internal/logger"
	"github.com/dtroode/dailyphrase/internal/model"
)

// Authenticate admits calls carrying a valid operator bearer token.
type Authenticate struct {
	tokens         model.OperatorTokenManager
	contextManager model.ContextManager
	logger         *logger.Logger
}

func NewAuthenticate(tokens model.OperatorTokenManager, contextManager model.ContextManager, logger *logger.Logger) *Authenticate {
	return &Authenticate{tokens: tokens, contextManager: contextManager, logger: logger}
}

// AuthFunc is an auth.AuthFunc for the go-grpc-middleware auth interceptors.
func (m *Authenticate) AuthFunc(ctx context.Context) (context.Context, error) {
	var token string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get("authorization"); len(values) > 0 {
			token = strings.TrimPrefix(values[0], "Bearer ")
		}
	}
	if token == "" {
		return nil, status.Error(codes.Unauthenticated, "missing authorization token")
	}

	op, err := m.tokens.ParseOperatorToken(token)
	if err != nil {
		m.logger.Info("gRPC auth: rejected operator token", "error", err.Error())
		return nil, status.Error(codes.Unauthenticated, "invalid authorization token")
	}

	return m.contextManager.SetOperatorToContext(ctx, op), nil
}
