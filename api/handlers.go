/*
handlers.go - HTTP API handlers for the debt engine

PURPOSE:
  Exposes debt tracking and payoff projection via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to debt.Service and
  the payoff package.

ENDPOINTS:
  Debts:
    GET    /api/debts                          List the caller's debts
    POST   /api/debts                          Create debt (201)
    GET    /api/debts/list-simple              id + name only
    GET    /api/debts/{id}                     Get debt
    PUT    /api/debts/{id}                     Partial update
    DELETE /api/debts/{id}                     Delete (204)
    POST   /api/debts/{id}/payment             Record a manual payment

  Projection:
    GET    /api/debts/payoff                   ?strategy=avalanche|snowball&extra_payment=
    GET    /api/debts/summary                  Totals + both strategies (cached)
    GET    /api/debts/assistant-context        Debt block for the assistant

  Statements:
    POST   /api/statements                     Register a parsed statement
    POST   /api/debts/auto-update-from-statement

  Reminders:
    GET    /api/debts/due-soon                 Due in 3 days or up to 7 overdue

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Service:   Debt CRUD with ownership checks
  - Summaries: Summary cache (LRU or Redis), dropped on every write
  - Logger:    Structured logger

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input
  3. Call domain logic (service, simulator, aggregator)
  4. Serialize response
  5. Handle errors

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 401: Missing X-User-ID (see server.go)
  - 403: Debt owned by someone else
  - 404: Debt not found
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo portfolio loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/warp/debt-engine/assistant"
	"github.com/warp/debt-engine/cache"
	"github.com/warp/debt-engine/debt"
	"github.com/warp/debt-engine/logging"
	"github.com/warp/debt-engine/payoff"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Service   *debt.Service
	Summaries cache.Cache[payoff.Summary]
	Logger    *logging.Logger

	// Track the scenario each owner last loaded
	mu              sync.Mutex
	currentScenario map[int64]string
}

// NewHandler creates a handler over svc. Every write the service performs
// drops the owner's cached summary.
func NewHandler(svc *debt.Service, summaries cache.Cache[payoff.Summary], logger *logging.Logger) *Handler {
	h := &Handler{
		Service:         svc,
		Summaries:       summaries,
		Logger:          logger,
		currentScenario: make(map[int64]string),
	}
	svc.OnChange = h.invalidateSummary
	return h
}

func (h *Handler) logger() *logging.Logger {
	if h.Logger == nil {
		return logging.Discard()
	}
	return h.Logger
}

func (h *Handler) now() time.Time {
	if h.Service.Now != nil {
		return h.Service.Now().UTC()
	}
	return time.Now().UTC()
}

func (h *Handler) invalidateSummary(ctx context.Context, ownerID int64) {
	if h.Summaries == nil {
		return
	}
	key := cache.SummaryKey(ownerID, h.now())
	if err := h.Summaries.Delete(ctx, key); err != nil {
		h.logger().WithComponent(logging.ComponentCache).WarnContext(ctx, "failed to drop cached summary",
			logging.FieldCacheKey, key,
			logging.FieldError, err,
		)
	}
}

// =============================================================================
// DEBT HANDLERS
// =============================================================================

// ListDebts returns the caller's debts in creation order.
func (h *Handler) ListDebts(w http.ResponseWriter, r *http.Request) {
	debts, err := h.Service.List(r.Context(), ownerFrom(r.Context()))
	if err != nil {
		h.writeServiceError(w, r, "Failed to list debts", err)
		return
	}

	dtos := make([]DebtDTO, len(debts))
	for i, d := range debts {
		dtos[i] = toDebtDTO(d)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ListSimpleDebts returns id/name pairs for pickers.
func (h *Handler) ListSimpleDebts(w http.ResponseWriter, r *http.Request) {
	debts, err := h.Service.ListSimple(r.Context(), ownerFrom(r.Context()))
	if err != nil {
		h.writeServiceError(w, r, "Failed to list debts", err)
		return
	}

	dtos := make([]SimpleDebtDTO, len(debts))
	for i, d := range debts {
		dtos[i] = SimpleDebtDTO{ID: d.ID, Name: d.Name}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetDebt returns a single debt.
func (h *Handler) GetDebt(w http.ResponseWriter, r *http.Request) {
	id, ok := debtID(w, r)
	if !ok {
		return
	}

	d, err := h.Service.Get(r.Context(), ownerFrom(r.Context()), id)
	if err != nil {
		h.writeServiceError(w, r, "Failed to get debt", err)
		return
	}
	writeJSON(w, http.StatusOK, toDebtDTO(d))
}

// CreateDebt creates a debt for the caller.
func (h *Handler) CreateDebt(w http.ResponseWriter, r *http.Request) {
	var req CreateDebtRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	in, err := req.toNewDebt()
	if err != nil {
		h.writeServiceError(w, r, "Invalid debt", err)
		return
	}

	owner := ownerFrom(r.Context())
	d, err := h.Service.Create(r.Context(), owner, in)
	if err != nil {
		h.writeServiceError(w, r, "Failed to create debt", err)
		return
	}

	logging.FromContext(r.Context()).InfoContext(r.Context(), "debt created",
		logging.FieldOperation, logging.OpCreate,
		logging.FieldOwnerID, owner,
		logging.FieldDebtID, d.ID,
	)
	writeJSON(w, http.StatusCreated, toDebtDTO(d))
}

// UpdateDebt applies a partial update.
func (h *Handler) UpdateDebt(w http.ResponseWriter, r *http.Request) {
	id, ok := debtID(w, r)
	if !ok {
		return
	}

	var req UpdateDebtRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	d, err := h.Service.Update(r.Context(), ownerFrom(r.Context()), id, req.toPatch())
	if err != nil {
		h.writeServiceError(w, r, "Failed to update debt", err)
		return
	}
	writeJSON(w, http.StatusOK, toDebtDTO(d))
}

// DeleteDebt removes a debt. Linked ledger entries stay.
func (h *Handler) DeleteDebt(w http.ResponseWriter, r *http.Request) {
	id, ok := debtID(w, r)
	if !ok {
		return
	}

	owner := ownerFrom(r.Context())
	if err := h.Service.Delete(r.Context(), owner, id); err != nil {
		h.writeServiceError(w, r, "Failed to delete debt", err)
		return
	}

	logging.FromContext(r.Context()).InfoContext(r.Context(), "debt deleted",
		logging.FieldOperation, logging.OpDelete,
		logging.FieldOwnerID, owner,
		logging.FieldDebtID, id,
	)
	w.WriteHeader(http.StatusNoContent)
}

// RecordPayment subtracts a manual payment and logs it to the ledger.
func (h *Handler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := debtID(w, r)
	if !ok {
		return
	}

	var req PaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Amount == nil {
		h.writeServiceError(w, r, "Invalid payment", debt.Invalid("amount", "is required"))
		return
	}

	owner := ownerFrom(r.Context())
	d, err := h.Service.RecordPayment(r.Context(), owner, id, *req.Amount)
	if err != nil {
		h.writeServiceError(w, r, "Failed to record payment", err)
		return
	}

	logging.FromContext(r.Context()).InfoContext(r.Context(), "payment recorded",
		logging.FieldOperation, logging.OpPayment,
		logging.FieldOwnerID, owner,
		logging.FieldDebtID, id,
	)
	writeJSON(w, http.StatusOK, toDebtDTO(d))
}

// GetDueSoon lists debts needing a payment reminder.
func (h *Handler) GetDueSoon(w http.ResponseWriter, r *http.Request) {
	due, err := h.Service.DueSoon(r.Context(), ownerFrom(r.Context()))
	if err != nil {
		h.writeServiceError(w, r, "Failed to check due dates", err)
		return
	}

	dtos := make([]DueSoonDTO, len(due))
	for i, d := range due {
		dtos[i] = toDueSoonDTO(d)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// PROJECTION HANDLERS
// =============================================================================

// GetPayoff runs the simulator over the caller's debts.
func (h *Handler) GetPayoff(w http.ResponseWriter, r *http.Request) {
	strategy := payoff.DefaultStrategy
	if s := r.URL.Query().Get("strategy"); s != "" {
		strategy = payoff.Strategy(s)
	}

	extra := decimal.Zero
	if s := r.URL.Query().Get("extra_payment"); s != "" {
		v, err := decimal.NewFromString(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid extra_payment", err)
			return
		}
		extra = v
	}

	// Reject bad parameters before touching the store
	if err := payoff.Validate(nil, strategy, extra); err != nil {
		h.writeServiceError(w, r, "Invalid payoff parameters", err)
		return
	}

	owner := ownerFrom(r.Context())
	debts, err := h.Service.List(r.Context(), owner)
	if err != nil {
		h.writeServiceError(w, r, "Failed to list debts", err)
		return
	}

	start := time.Now()
	plan, err := payoff.Plan(debts, strategy, extra, h.now())
	if err != nil {
		h.writeServiceError(w, r, "Invalid payoff parameters", err)
		return
	}

	logging.FromContext(r.Context()).DebugContext(r.Context(), "payoff simulated",
		logging.FieldOperation, logging.OpSimulate,
		logging.FieldOwnerID, owner,
		logging.FieldStrategy, string(strategy),
		logging.FieldCount, len(debts),
		logging.FieldDuration, time.Since(start).Milliseconds(),
	)
	writeJSON(w, http.StatusOK, ToPayoffDTO(plan))
}

// GetSummary returns portfolio totals and both strategy horizons.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.summary(r.Context(), ownerFrom(r.Context()))
	if err != nil {
		h.writeServiceError(w, r, "Failed to summarize debts", err)
		return
	}
	writeJSON(w, http.StatusOK, ToSummaryDTO(summary))
}

// summary serves from the cache when possible. Cache failures degrade to a
// fresh computation.
func (h *Handler) summary(ctx context.Context, owner int64) (payoff.Summary, error) {
	now := h.now()
	key := cache.SummaryKey(owner, now)
	log := logging.FromContext(ctx)

	if h.Summaries != nil {
		cached, ok, err := h.Summaries.Get(ctx, key)
		if err != nil {
			log.WarnContext(ctx, "summary cache read failed",
				logging.FieldCacheKey, key,
				logging.FieldError, err,
			)
		} else if ok {
			return cached, nil
		}
	}

	debts, err := h.Service.List(ctx, owner)
	if err != nil {
		return payoff.Summary{}, err
	}
	summary, err := payoff.Summarize(ctx, debts, now)
	if err != nil {
		return payoff.Summary{}, err
	}

	if h.Summaries != nil {
		if err := h.Summaries.Set(ctx, key, summary); err != nil {
			log.WarnContext(ctx, "summary cache write failed",
				logging.FieldCacheKey, key,
				logging.FieldError, err,
			)
		}
	}
	return summary, nil
}

// GetAssistantContext returns the debt block fed to the finance assistant.
func (h *Handler) GetAssistantContext(w http.ResponseWriter, r *http.Request) {
	owner := ownerFrom(r.Context())
	debts, err := h.Service.List(r.Context(), owner)
	if err != nil {
		h.writeServiceError(w, r, "Failed to list debts", err)
		return
	}

	summary, err := h.summary(r.Context(), owner)
	if err != nil {
		h.writeServiceError(w, r, "Failed to summarize debts", err)
		return
	}

	var plan *payoff.Response
	if len(debts) > 0 {
		p := payoff.Simulate(debts, payoff.Avalanche, decimal.Zero, h.now())
		plan = &p
	}

	block := assistant.BuildDebtContext(debts, summary, plan)
	writeJSON(w, http.StatusOK, AssistantContextDTO{
		Summary: ToSummaryDTO(summary),
		Text:    block.Render(),
	})
}

// =============================================================================
// STATEMENT HANDLERS
// =============================================================================

// SaveStatement registers a statement parsed upstream.
func (h *Handler) SaveStatement(w http.ResponseWriter, r *http.Request) {
	var req StatementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	switch req.StatementType {
	case "", debt.StatementTypeChequing, debt.StatementTypeCreditCard:
	default:
		h.writeServiceError(w, r, "Invalid statement",
			debt.Invalid("statement_type", "must be %q or %q", debt.StatementTypeChequing, debt.StatementTypeCreditCard))
		return
	}

	st, err := h.Service.Statements.SaveStatement(r.Context(), debt.Statement{
		OwnerID:        ownerFrom(r.Context()),
		Filename:       req.Filename,
		FileHash:       req.FileHash,
		StatementType:  req.StatementType,
		ClosingBalance: req.ClosingBalance,
		DetectedBank:   req.DetectedBank,
		UploadedAt:     h.now(),
	})
	if err != nil {
		h.writeServiceError(w, r, "Failed to save statement", err)
		return
	}
	writeJSON(w, http.StatusCreated, toStatementDTO(st))
}

// AutoUpdateFromStatement reconciles a credit-card statement into its
// linked debt. "Not updated" outcomes are 200 with a reason.
func (h *Handler) AutoUpdateFromStatement(w http.ResponseWriter, r *http.Request) {
	var req AutoUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.StatementID == nil {
		h.writeServiceError(w, r, "Invalid request", debt.Invalid("statement_id", "is required"))
		return
	}

	owner := ownerFrom(r.Context())
	result, err := h.Service.AutoUpdateFromStatement(r.Context(), owner, *req.StatementID)
	if err != nil {
		h.writeServiceError(w, r, "Failed to apply statement", err)
		return
	}

	logging.FromContext(r.Context()).InfoContext(r.Context(), "statement reconciled",
		logging.FieldOperation, logging.OpAutoUpdate,
		logging.FieldOwnerID, owner,
		"updated", result.Updated,
		"reason", string(result.Reason),
	)
	writeJSON(w, http.StatusOK, toAutoUpdateDTO(result))
}

// =============================================================================
// HELPERS
// =============================================================================

func debtID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid debt id", err)
		return 0, false
	}
	return id, true
}

// writeServiceError maps domain errors onto HTTP statuses.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, message string, err error) {
	switch {
	case debt.IsClientError(err):
		resp := ErrorResponse{Error: message, Code: "invalid_input", Details: err.Error()}
		var verr *debt.ValidationError
		if errors.As(err, &verr) {
			resp.Details = map[string]string{"field": verr.Field, "message": verr.Message}
		}
		writeJSON(w, http.StatusBadRequest, resp)
	case debt.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Debt not found", nil)
	case errors.Is(err, debt.ErrNotAuthorized):
		writeError(w, http.StatusForbidden, "Not authorized", nil)
	default:
		logging.FromContext(r.Context()).ErrorContext(r.Context(), message,
			logging.FieldMethod, r.Method,
			logging.FieldPath, r.URL.Path,
			logging.FieldError, err,
		)
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
