package rest

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dtroode/dailyphrase/internal/logger"
	"github.com/dtroode/dailyphrase/internal/model"
)

const requestTimeout = 30 * time.Second

// NewRouter wires the handler into a chi router.
func NewRouter(h *Handler, tokens model.OperatorTokenManager, contextManager model.ContextManager, logger *logger.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.Health)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(requestTimeout))
		r.Get("/confirm", h.ConfirmPage)
		r.Post("/confirm", h.Confirm)
		r.Post("/password-reset", h.RequestPasswordReset)
		r.Post("/password-reset/confirm", h.ConsumePasswordReset)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(RequireOperator(tokens, contextManager, logger))

		// Runs take as long as the recipient pool needs.
		r.Post("/runs", h.TriggerRun)
		r.Post("/runs/{runID}/retry", h.RetryRun)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(requestTimeout))
			r.Get("/stats", h.Stats)
			r.Post("/confirmations", h.RequestConfirmation)
			r.Get("/runs/{runID}", h.GetRun)
			r.Get("/runs/{runID}/archive", h.GetArchivedRun)
			r.Get("/runs/{runID}/users/{userID}/attempts", h.GetAttempts)
		})
	})

	return r
}
