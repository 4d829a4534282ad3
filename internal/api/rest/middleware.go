package rest

import (
	"net/http"
	"strings"

	"github.com/dtroode/dailyphrase/internal/logger"
	"github.com/dtroode/dailyphrase/internal/model"
)

// RequireOperator admits requests with a valid operator bearer token and
// stores the operator in the request context.
func RequireOperator(tokens model.OperatorTokenManager, contextManager model.ContextManager, logger *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				writeError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			op, err := tokens.ParseOperatorToken(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				logger.Info("HTTP: rejected operator token", "error", err.Error())
				writeError(w, http.StatusUnauthorized, "invalid bearer token")
				return
			}

			ctx := contextManager.SetOperatorToContext(r.Context(), op)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
