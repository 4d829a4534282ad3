// Package context carries the authenticated operator through request contexts
// of both the HTTP and gRPC edges.
package context

import (
	"context"

	"github.com/dtroode/dailyphrase/internal/model"
)

type operatorKey struct{}

// Manager implements model.ContextManager with context values.
type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

var _ model.ContextManager = (*Manager)(nil)

func (m *Manager) SetOperatorToContext(ctx context.Context, op model.Operator) context.Context {
	return context.WithValue(ctx, operatorKey{}, op)
}

// GetOperatorFromContext reports false when no operator with a subject is set.
func (m *Manager) GetOperatorFromContext(ctx context.Context) (model.Operator, bool) {
	op, ok := ctx.Value(operatorKey{}).(model.Operator)
	if !ok || op.Subject == "" {
		return model.Operator{}, false
	}
	return op, true
}
