/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the domain records in debt/ and payoff/ from the external contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY ON THE WIRE:
  Responses carry currency and rates as Money, which marshals to a JSON
  number with exactly two decimals (1234.5 is written as 1234.50).
  Requests accept decimal.Decimal, which parses both numbers and quoted
  strings without going through float64.

PARTIAL UPDATES:
  UpdateDebtRequest uses pointer fields. A field that is absent (or null)
  is left alone, with two exceptions: "due_date": null clears the due day
  and "linked_statement_bank": "" clears the link.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/debt-engine/debt"
	"github.com/warp/debt-engine/payoff"
)

// =============================================================================
// MONEY
// =============================================================================

// Money is a decimal rendered as a two-decimal JSON number.
type Money struct {
	decimal.Decimal
}

func money(d decimal.Decimal) Money { return Money{debt.Round2(d)} }

func moneyPtr(d *decimal.Decimal) *Money {
	if d == nil {
		return nil
	}
	m := money(*d)
	return &m
}

// MarshalJSON writes the value unquoted with exactly two decimals.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.StringFixed(debt.Cents)), nil
}

// UnmarshalJSON accepts a number or a quoted number.
func (m *Money) UnmarshalJSON(data []byte) error {
	return m.Decimal.UnmarshalJSON(data)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

// =============================================================================
// DEBTS
// =============================================================================

// DebtDTO represents a debt in API responses.
type DebtDTO struct {
	ID                   int64   `json:"id"`
	UserID               int64   `json:"user_id"`
	Name                 string  `json:"name"`
	DebtType             string  `json:"debt_type"`
	Balance              Money   `json:"balance"`
	InterestRate         Money   `json:"interest_rate"`
	MinimumPayment       Money   `json:"minimum_payment"`
	DueDate              *int    `json:"due_date"`
	CreatedAt            string  `json:"created_at"`
	UpdatedAt            string  `json:"updated_at"`
	LastStatementBalance *Money  `json:"last_statement_balance"`
	LastVerifiedAt       *string `json:"last_verified_at"`
	LastManualUpdateAt   *string `json:"last_manual_update_at"`
	LinkedStatementBank  *string `json:"linked_statement_bank"`
}

func toDebtDTO(d debt.Debt) DebtDTO {
	return DebtDTO{
		ID:                   d.ID,
		UserID:               d.OwnerID,
		Name:                 d.Name,
		DebtType:             string(d.Type),
		Balance:              money(d.Balance),
		InterestRate:         money(d.InterestRate),
		MinimumPayment:       money(d.MinimumPayment),
		DueDate:              d.DueDay,
		CreatedAt:            d.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:            d.UpdatedAt.UTC().Format(time.RFC3339),
		LastStatementBalance: moneyPtr(d.LastStatementBalance),
		LastVerifiedAt:       formatTimePtr(d.LastVerifiedAt),
		LastManualUpdateAt:   formatTimePtr(d.LastManualUpdateAt),
		LinkedStatementBank:  d.LinkedStatementBank,
	}
}

// CreateDebtRequest is the body for POST /api/debts.
type CreateDebtRequest struct {
	Name                string           `json:"name"`
	DebtType            string           `json:"debt_type"`
	Balance             *decimal.Decimal `json:"balance"`
	InterestRate        *decimal.Decimal `json:"interest_rate"`
	MinimumPayment      *decimal.Decimal `json:"minimum_payment"`
	DueDate             *int             `json:"due_date"`
	LinkedStatementBank *string          `json:"linked_statement_bank"`
}

// toNewDebt checks required fields; range checks happen in debt.NewDebt.
func (r CreateDebtRequest) toNewDebt() (debt.NewDebt, error) {
	required := []struct {
		field string
		value *decimal.Decimal
	}{
		{"balance", r.Balance},
		{"interest_rate", r.InterestRate},
		{"minimum_payment", r.MinimumPayment},
	}
	for _, req := range required {
		if req.value == nil {
			return debt.NewDebt{}, debt.Invalid(req.field, "is required")
		}
	}
	return debt.NewDebt{
		Name:                r.Name,
		Type:                debt.DebtType(r.DebtType),
		Balance:             *r.Balance,
		InterestRate:        *r.InterestRate,
		MinimumPayment:      *r.MinimumPayment,
		DueDay:              r.DueDate,
		LinkedStatementBank: r.LinkedStatementBank,
	}, nil
}

// UpdateDebtRequest is the body for PUT /api/debts/{id}.
type UpdateDebtRequest struct {
	Name                *string          `json:"name"`
	DebtType            *string          `json:"debt_type"`
	Balance             *decimal.Decimal `json:"balance"`
	InterestRate        *decimal.Decimal `json:"interest_rate"`
	MinimumPayment      *decimal.Decimal `json:"minimum_payment"`
	DueDate             optionalInt      `json:"due_date"`
	LinkedStatementBank *string          `json:"linked_statement_bank"`
}

func (r UpdateDebtRequest) toPatch() debt.Patch {
	p := debt.Patch{
		Name:                r.Name,
		Balance:             r.Balance,
		InterestRate:        r.InterestRate,
		MinimumPayment:      r.MinimumPayment,
		DueDay:              r.DueDate.Value,
		ClearDueDay:         r.DueDate.Set && r.DueDate.Value == nil,
		LinkedStatementBank: r.LinkedStatementBank,
	}
	if r.DebtType != nil {
		t := debt.DebtType(*r.DebtType)
		p.Type = &t
	}
	return p
}

// optionalInt tells an absent field (Set false) apart from an explicit null
// (Set true, Value nil). encoding/json only calls UnmarshalJSON for keys
// present in the body.
type optionalInt struct {
	Set   bool
	Value *int
}

func (o *optionalInt) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Value = nil
		return nil
	}
	var v int
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// SimpleDebtDTO is the id+name shape for pickers.
type SimpleDebtDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// PaymentRequest is the body for POST /api/debts/{id}/payment.
type PaymentRequest struct {
	Amount *decimal.Decimal `json:"amount"`
}

// DueSoonDTO is one entry of GET /api/debts/due-soon.
type DueSoonDTO struct {
	ID                 int64   `json:"id"`
	Name               string  `json:"name"`
	DebtType           string  `json:"debt_type"`
	Balance            Money   `json:"balance"`
	MinimumPayment     Money   `json:"minimum_payment"`
	DueDate            int     `json:"due_date"`
	DaysUntilDue       int     `json:"days_until_due"`
	LastManualUpdateAt *string `json:"last_manual_update_at"`
}

func toDueSoonDTO(d debt.DueSoonDebt) DueSoonDTO {
	return DueSoonDTO{
		ID:                 d.ID,
		Name:               d.Name,
		DebtType:           string(d.Type),
		Balance:            money(d.Balance),
		MinimumPayment:     money(d.MinimumPayment),
		DueDate:            d.DueDay,
		DaysUntilDue:       d.DaysUntilDue,
		LastManualUpdateAt: formatTimePtr(d.LastManualUpdateAt),
	}
}

// =============================================================================
// STATEMENTS
// =============================================================================

// AutoUpdateRequest is the body for POST /api/debts/auto-update-from-statement.
type AutoUpdateRequest struct {
	StatementID *int64 `json:"statement_id"`
}

// AutoUpdateDTO reports whether a statement updated a debt, and if not, why.
type AutoUpdateDTO struct {
	Updated    bool   `json:"updated"`
	DebtID     *int64 `json:"debt_id,omitempty"`
	DebtName   string `json:"debt_name,omitempty"`
	NewBalance *Money `json:"new_balance,omitempty"`
	Reason     string `json:"reason,omitempty"`
	Message    string `json:"message,omitempty"`
}

func toAutoUpdateDTO(r debt.AutoUpdateResult) AutoUpdateDTO {
	if !r.Updated {
		return AutoUpdateDTO{Reason: string(r.Reason), Message: r.Message}
	}
	id := r.DebtID
	bal := money(r.NewBalance)
	return AutoUpdateDTO{Updated: true, DebtID: &id, DebtName: r.DebtName, NewBalance: &bal}
}

// StatementRequest registers a parsed bank statement (POST /api/statements).
type StatementRequest struct {
	Filename       string           `json:"filename"`
	FileHash       string           `json:"file_hash"`
	StatementType  string           `json:"statement_type"`
	ClosingBalance *decimal.Decimal `json:"closing_balance"`
	DetectedBank   *string          `json:"detected_bank"`
}

// StatementDTO represents a stored statement.
type StatementDTO struct {
	ID             int64   `json:"id"`
	Filename       string  `json:"filename"`
	FileHash       string  `json:"file_hash"`
	StatementType  string  `json:"statement_type"`
	ClosingBalance *Money  `json:"closing_balance"`
	DetectedBank   *string `json:"detected_bank"`
	UploadedAt     string  `json:"uploaded_at"`
}

func toStatementDTO(s debt.Statement) StatementDTO {
	return StatementDTO{
		ID:             s.ID,
		Filename:       s.Filename,
		FileHash:       s.FileHash,
		StatementType:  s.StatementType,
		ClosingBalance: moneyPtr(s.ClosingBalance),
		DetectedBank:   s.DetectedBank,
		UploadedAt:     s.UploadedAt.UTC().Format(time.RFC3339),
	}
}

// =============================================================================
// PAYOFF
// =============================================================================

type MonthlyBalanceDTO struct {
	Month   int    `json:"month"`
	Date    string `json:"date"`
	Balance Money  `json:"balance"`
}

type DebtPayoffDetailDTO struct {
	DebtID          int64               `json:"debt_id"`
	Name            string              `json:"name"`
	OriginalBalance Money               `json:"original_balance"`
	InterestRate    Money               `json:"interest_rate"`
	MonthsToPayoff  *int                `json:"months_to_payoff"`
	PayoffDate      *string             `json:"payoff_date"`
	TotalInterest   Money               `json:"total_interest"`
	Order           int                 `json:"order"`
	MonthlyBalances []MonthlyBalanceDTO `json:"monthly_balances"`
}

type BreakdownDTO struct {
	DebtID  int64  `json:"debt_id"`
	Name    string `json:"name"`
	Balance Money  `json:"balance"`
}

type MonthlyProjectionDTO struct {
	Month        int            `json:"month"`
	Date         string         `json:"date"`
	TotalBalance Money          `json:"total_balance"`
	Breakdown    []BreakdownDTO `json:"breakdown"`
}

// PayoffDTO is the response of GET /api/debts/payoff.
type PayoffDTO struct {
	Strategy          string                 `json:"strategy"`
	ExtraPayment      Money                  `json:"extra_payment"`
	TotalMonths       *int                   `json:"total_months"`
	DebtFreeDate      *string                `json:"debt_free_date"`
	TotalInterestPaid Money                  `json:"total_interest_paid"`
	PayoffOrder       []DebtPayoffDetailDTO  `json:"payoff_order"`
	MonthlyProjection []MonthlyProjectionDTO `json:"monthly_projection"`
}

func ToPayoffDTO(r payoff.Response) PayoffDTO {
	dto := PayoffDTO{
		Strategy:          string(r.Strategy),
		ExtraPayment:      money(r.ExtraPayment),
		TotalMonths:       r.TotalMonths,
		DebtFreeDate:      r.DebtFreeDate,
		TotalInterestPaid: money(r.TotalInterestPaid),
		PayoffOrder:       make([]DebtPayoffDetailDTO, len(r.PayoffOrder)),
		MonthlyProjection: make([]MonthlyProjectionDTO, len(r.MonthlyProjection)),
	}

	for i, d := range r.PayoffOrder {
		balances := make([]MonthlyBalanceDTO, len(d.MonthlyBalances))
		for j, mb := range d.MonthlyBalances {
			balances[j] = MonthlyBalanceDTO{Month: mb.Month, Date: mb.Date, Balance: money(mb.Balance)}
		}
		dto.PayoffOrder[i] = DebtPayoffDetailDTO{
			DebtID:          d.DebtID,
			Name:            d.Name,
			OriginalBalance: money(d.OriginalBalance),
			InterestRate:    money(d.InterestRate),
			MonthsToPayoff:  d.MonthsToPayoff,
			PayoffDate:      d.PayoffDate,
			TotalInterest:   money(d.TotalInterest),
			Order:           d.Order,
			MonthlyBalances: balances,
		}
	}

	for i, m := range r.MonthlyProjection {
		breakdown := make([]BreakdownDTO, len(m.Breakdown))
		for j, b := range m.Breakdown {
			breakdown[j] = BreakdownDTO{DebtID: b.DebtID, Name: b.Name, Balance: money(b.Balance)}
		}
		dto.MonthlyProjection[i] = MonthlyProjectionDTO{
			Month:        m.Month,
			Date:         m.Date,
			TotalBalance: money(m.TotalBalance),
			Breakdown:    breakdown,
		}
	}
	return dto
}

// SummaryDTO is the response of GET /api/debts/summary.
type SummaryDTO struct {
	TotalDebt                   Money   `json:"total_debt"`
	DebtCount                   int     `json:"debt_count"`
	TotalMinimumPayments        Money   `json:"total_minimum_payments"`
	WeightedAverageInterestRate *Money  `json:"weighted_average_interest_rate"`
	AvalancheMonths             *int    `json:"avalanche_months"`
	SnowballMonths              *int    `json:"snowball_months"`
	DebtFreeDateAvalanche       *string `json:"debt_free_date_avalanche"`
	DebtFreeDateSnowball        *string `json:"debt_free_date_snowball"`
}

func ToSummaryDTO(s payoff.Summary) SummaryDTO {
	return SummaryDTO{
		TotalDebt:                   money(s.TotalDebt),
		DebtCount:                   s.DebtCount,
		TotalMinimumPayments:        money(s.TotalMinimumPayments),
		WeightedAverageInterestRate: moneyPtr(s.WeightedAverageInterestRate),
		AvalancheMonths:             s.AvalancheMonths,
		SnowballMonths:              s.SnowballMonths,
		DebtFreeDateAvalanche:       s.DebtFreeDateAvalanche,
		DebtFreeDateSnowball:        s.DebtFreeDateSnowball,
	}
}

// AssistantContextDTO carries the structured block and its rendered text.
type AssistantContextDTO struct {
	Summary SummaryDTO `json:"summary"`
	Text    string     `json:"text"`
}

// =============================================================================
// SCENARIOS + ERRORS
// =============================================================================

// ScenarioDTO describes a demo portfolio.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	DebtCount   int    `json:"debt_count"`
}

// LoadScenarioRequest is the body for POST /api/scenarios/load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}
