package model

import "context"

// Operator is the authenticated caller of the operator endpoints.
type Operator struct {
	Subject string
	Role    Role
}

// OperatorTokenManager issues and parses operator bearer tokens.
type OperatorTokenManager interface {
	GenerateOperatorToken(subject string, role Role) (string, error)
	ParseOperatorToken(token string) (Operator, error)
}

// ContextManager carries the operator through request contexts.
type ContextManager interface {
	SetOperatorToContext(ctx context.Context, op Operator) context.Context
	GetOperatorFromContext(ctx context.Context) (Operator, bool)
}
