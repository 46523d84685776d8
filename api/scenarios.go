/*
scenarios.go - Demo debt portfolios for testing and demonstrations

PURPOSE:

	Provides pre-built portfolios that populate the caller's debts with
	realistic data for demos of the payoff projection. Each scenario shows
	one behavior of the simulator.

AVAILABLE SCENARIOS:

	single-card:    One card at 24%, paid off on minimums alone
	rate-vs-size:   Small high-rate card vs large low-rate loan
	interest-trap:  Zero minimum payment, balance grows for 50 years
	household:      Card, car loan, student loan and line of credit with
	                due dates and a bank link for statement reconciliation

HOW SCENARIOS WORK:
 1. Delete the caller's existing debts
 2. Create the scenario's debts through debt.Service
 3. Remember the scenario as the caller's current one

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "household"}

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' slice with ID, name, description
 2. Create a portfolio function: xxxPortfolio() []debt.NewDebt
 3. Add case to scenarioDebts

NOTE:

	Loading replaces only the caller's debts. Ledger entries are kept with
	their debt link cleared.

SEE ALSO:
  - handlers.go: Debt handlers
  - payoff/: The simulator these portfolios exercise
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/warp/debt-engine/debt"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "single-card",
		Name:        "Single Card",
		Description: "$1,200 at 24% with a $100 minimum",
		DebtCount:   1,
	},
	{
		ID:          "rate-vs-size",
		Name:        "Rate vs Size",
		Description: "Small 20% card against a large 10% loan; avalanche and snowball pick differently",
		DebtCount:   2,
	},
	{
		ID:          "interest-trap",
		Name:        "Interest Trap",
		Description: "A card with no minimum payment never gets paid off",
		DebtCount:   1,
	},
	{
		ID:          "household",
		Name:        "Household",
		Description: "Card, car loan, student loan and line of credit with due dates",
		DebtCount:   4,
	},
}

func singleCardPortfolio() []debt.NewDebt {
	return []debt.NewDebt{
		{Name: "Visa", Type: debt.TypeCreditCard, Balance: debt.MustParse("1200.00"),
			InterestRate: debt.MustParse("24.00"), MinimumPayment: debt.MustParse("100.00")},
	}
}

func rateVsSizePortfolio() []debt.NewDebt {
	return []debt.NewDebt{
		{Name: "Store Card", Type: debt.TypeCreditCard, Balance: debt.MustParse("500.00"),
			InterestRate: debt.MustParse("20.00"), MinimumPayment: debt.MustParse("50.00")},
		{Name: "Personal Loan", Type: debt.TypeLoan, Balance: debt.MustParse("2000.00"),
			InterestRate: debt.MustParse("10.00"), MinimumPayment: debt.MustParse("40.00")},
	}
}

func interestTrapPortfolio() []debt.NewDebt {
	return []debt.NewDebt{
		{Name: "Dormant Card", Type: debt.TypeCreditCard, Balance: debt.MustParse("500.00"),
			InterestRate: debt.MustParse("10.00"), MinimumPayment: debt.MustParse("0.00")},
	}
}

func householdPortfolio() []debt.NewDebt {
	day := func(d int) *int { return &d }
	bank := "TD"
	return []debt.NewDebt{
		{Name: "TD Visa", Type: debt.TypeCreditCard, Balance: debt.MustParse("3450.00"),
			InterestRate: debt.MustParse("19.99"), MinimumPayment: debt.MustParse("105.00"),
			DueDay: day(21), LinkedStatementBank: &bank},
		{Name: "Car Loan", Type: debt.TypeLoan, Balance: debt.MustParse("14200.00"),
			InterestRate: debt.MustParse("6.49"), MinimumPayment: debt.MustParse("385.00"),
			DueDay: day(1)},
		{Name: "Student Loan", Type: debt.TypeStudentLoan, Balance: debt.MustParse("22800.00"),
			InterestRate: debt.MustParse("5.25"), MinimumPayment: debt.MustParse("260.00"),
			DueDay: day(15)},
		{Name: "Line of Credit", Type: debt.TypeLineOfCredit, Balance: debt.MustParse("1800.00"),
			InterestRate: debt.MustParse("9.45"), MinimumPayment: debt.MustParse("50.00"),
			DueDay: day(31)},
	}
}

func scenarioDebts(id string) ([]debt.NewDebt, bool) {
	switch id {
	case "single-card":
		return singleCardPortfolio(), true
	case "rate-vs-size":
		return rateVsSizePortfolio(), true
	case "interest-trap":
		return interestTrapPortfolio(), true
	case "household":
		return householdPortfolio(), true
	}
	return nil, false
}

// =============================================================================
// SCENARIO HANDLERS
// =============================================================================

// ListScenarios returns available demo scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the caller's last loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario[ownerFrom(r.Context())]
	h.mu.Unlock()

	if current == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenario replaces the caller's debts with a predefined portfolio.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	portfolio, ok := scenarioDebts(req.ScenarioID)
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	owner := ownerFrom(r.Context())
	if err := h.loadPortfolio(r.Context(), owner, portfolio); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}

	h.mu.Lock()
	h.currentScenario[owner] = req.ScenarioID
	h.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "loaded",
		"scenario": req.ScenarioID,
		"debts":    len(portfolio),
	})
}

func (h *Handler) loadPortfolio(ctx context.Context, owner int64, portfolio []debt.NewDebt) error {
	existing, err := h.Service.List(ctx, owner)
	if err != nil {
		return err
	}
	for _, d := range existing {
		if err := h.Service.Delete(ctx, owner, d.ID); err != nil {
			return fmt.Errorf("failed to clear debt %d: %w", d.ID, err)
		}
	}
	for _, in := range portfolio {
		if _, err := h.Service.Create(ctx, owner, in); err != nil {
			return fmt.Errorf("failed to create %s: %w", in.Name, err)
		}
	}
	return nil
}
