/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. logging:    Request-scoped slog logger tagged with the request ID
  5. CORS:       Cross-origin requests for frontend
  6. Owner:      X-User-ID header -> owner in context (401 when missing)

ROUTE GROUPS:
  /api/debts/*       Debt CRUD, payments, payoff projection, summary
  /api/statements    Parsed statement feed
  /api/scenarios/*   Demo portfolios

IDENTITY:
  Sessions live in front of this service. The session layer forwards the
  authenticated user as X-User-ID; everything under /api requires it.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/warp/debt-engine/logging"
)

// OwnerHeader carries the authenticated user's ID.
const OwnerHeader = "X-User-ID"

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(logging.Middleware(h.logger().WithComponent(logging.ComponentHTTP)))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", OwnerHeader},
		AllowCredentials: true,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Use(requireOwner)

		// Debt routes. Static paths are registered before /{id}.
		r.Route("/debts", func(r chi.Router) {
			r.Get("/", h.ListDebts)
			r.Post("/", h.CreateDebt)
			r.Get("/list-simple", h.ListSimpleDebts)
			r.Get("/due-soon", h.GetDueSoon)
			r.Get("/payoff", h.GetPayoff)
			r.Get("/summary", h.GetSummary)
			r.Get("/assistant-context", h.GetAssistantContext)
			r.Post("/auto-update-from-statement", h.AutoUpdateFromStatement)
			r.Get("/{id}", h.GetDebt)
			r.Put("/{id}", h.UpdateDebt)
			r.Delete("/{id}", h.DeleteDebt)
			r.Post("/{id}/payment", h.RecordPayment)
		})

		// Statement feed
		r.Post("/statements", h.SaveStatement)

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
		})
	})

	return r
}

// =============================================================================
// OWNER IDENTITY
// =============================================================================

type ownerKey struct{}

func requireOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(OwnerHeader)
		if raw == "" {
			writeError(w, http.StatusUnauthorized, "Not authenticated", nil)
			return
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			writeError(w, http.StatusUnauthorized, "Not authenticated", nil)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ownerKey{}, id)))
	})
}

// ownerFrom returns the owner set by requireOwner.
func ownerFrom(ctx context.Context) int64 {
	id, _ := ctx.Value(ownerKey{}).(int64)
	return id
}
