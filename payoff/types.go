/*
Package payoff projects how a set of debts amortises month by month.

PURPOSE:
  Given a snapshot of debts, a prioritisation strategy and an optional
  extra monthly payment, the simulator produces the full schedule: when
  each debt hits zero, how much interest it costs, and the aggregate
  balance curve. The summary aggregator runs the simulator once per
  strategy and adds portfolio statistics.

KEY CONCEPTS:
  - Strategy:  avalanche (highest rate first) or snowball (lowest balance first)
  - Slot:      Working copy of one debt for the length of one simulation
  - Pool:      extra_payment plus every minimum freed by an eliminated debt
  - Response:  Schedule, per-debt details, monthly projection

PURITY:
  Simulate performs no I/O and reads no clock. The start date is passed in
  once and only labels months. Identical inputs give identical outputs.

SEE ALSO:
  - simulator.go: Monthly step and output assembly
  - summary.go:   Portfolio statistics over both strategies
  - debt/:        The Debt record consumed here
*/
package payoff

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// STRATEGY
// =============================================================================

type Strategy string

const (
	Avalanche Strategy = "avalanche"
	Snowball  Strategy = "snowball"
)

// DefaultStrategy is used when the caller doesn't pick one.
const DefaultStrategy = Avalanche

// Valid reports whether s is a known strategy.
func (s Strategy) Valid() bool {
	return s == Avalanche || s == Snowball
}

// =============================================================================
// OUTPUT TYPES
// =============================================================================

// MonthBalance is one month of a single debt's balance history.
type MonthBalance struct {
	Month   int             // 1-based month number from the start date
	Date    string          // "YYYY-MM"
	Balance decimal.Decimal // end-of-month, rounded to cents
}

// DebtDetail is the per-debt outcome of a simulation.
type DebtDetail struct {
	DebtID          int64
	Name            string
	OriginalBalance decimal.Decimal
	InterestRate    decimal.Decimal
	MonthsToPayoff  *int    // nil if not paid within the cap
	PayoffDate      *string // "YYYY-MM"
	TotalInterest   decimal.Decimal
	Order           int // 1 = paid off first
	MonthlyBalances []MonthBalance
}

// BreakdownEntry is one debt's balance inside a MonthlyProjection.
type BreakdownEntry struct {
	DebtID  int64
	Name    string
	Balance decimal.Decimal
}

// MonthlyProjection is the aggregate state at the end of one month.
type MonthlyProjection struct {
	Month        int
	Date         string
	TotalBalance decimal.Decimal
	Breakdown    []BreakdownEntry // input order
}

// Response is the full result of one simulation run.
type Response struct {
	Strategy          Strategy
	ExtraPayment      decimal.Decimal
	TotalMonths       *int    // nil if the cap was hit with balances left
	DebtFreeDate      *string // "YYYY-MM", same condition
	TotalInterestPaid decimal.Decimal
	PayoffOrder       []DebtDetail // rank order
	MonthlyProjection []MonthlyProjection
}

// Summary is the portfolio view over both strategies with no extra payment.
type Summary struct {
	TotalDebt                   decimal.Decimal
	DebtCount                   int
	TotalMinimumPayments        decimal.Decimal
	WeightedAverageInterestRate *decimal.Decimal // nil when TotalDebt is zero
	AvalancheMonths             *int
	SnowballMonths              *int
	DebtFreeDateAvalanche       *string
	DebtFreeDateSnowball        *string
}
