/*
Package assistant builds the debt section of the finance assistant's prompt.

PURPOSE:
  The assistant answers questions about a user's money. For debts it needs
  a compact picture: totals, weighted rate, when the user becomes debt
  free under avalanche, and the order debts fall away. BuildDebtContext
  gathers that into a structured block; Render turns it into the plain
  text "DEBTS:" section that is pasted into the prompt.

INPUTS:
  debts:   The owner's current debt records
  summary: payoff.Summarize over the same debts
  plan:    payoff.Simulate(avalanche, extra 0), nil when there are no debts

Read-only: nothing here writes or simulates.
*/
package assistant

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
	"github.com/warp/debt-engine/debt"
	"github.com/warp/debt-engine/payoff"
)

// DebtContext is the structured debt block handed to the assistant.
type DebtContext struct {
	Count                int
	TotalDebt            decimal.Decimal
	TotalMinimumPayments decimal.Decimal
	WeightedAverageRate  *decimal.Decimal
	DebtFreeDate         *string // avalanche, no extra payment
	AvalancheMonths      *int
	TotalInterestPaid    decimal.Decimal // avalanche, zero without a plan
	Debts                []DebtLine
	PayoffOrder          []PayoffLine
}

type DebtLine struct {
	Name           string
	Type           debt.DebtType
	Balance        decimal.Decimal
	InterestRate   decimal.Decimal
	MinimumPayment decimal.Decimal
}

type PayoffLine struct {
	Order          int
	Name           string
	PayoffDate     *string
	MonthsToPayoff *int
	TotalInterest  decimal.Decimal
}

// BuildDebtContext assembles the block. plan may be nil.
func BuildDebtContext(debts []debt.Debt, summary payoff.Summary, plan *payoff.Response) DebtContext {
	ctx := DebtContext{
		Count:                len(debts),
		TotalDebt:            summary.TotalDebt,
		TotalMinimumPayments: summary.TotalMinimumPayments,
		WeightedAverageRate:  summary.WeightedAverageInterestRate,
		DebtFreeDate:         summary.DebtFreeDateAvalanche,
		AvalancheMonths:      summary.AvalancheMonths,
		TotalInterestPaid:    decimal.Zero,
		Debts:                make([]DebtLine, 0, len(debts)),
		PayoffOrder:          []PayoffLine{},
	}

	for _, d := range debts {
		ctx.Debts = append(ctx.Debts, DebtLine{
			Name:           d.Name,
			Type:           d.Type,
			Balance:        d.Balance,
			InterestRate:   d.InterestRate,
			MinimumPayment: d.MinimumPayment,
		})
	}

	if plan != nil {
		ctx.TotalInterestPaid = plan.TotalInterestPaid
		for _, p := range plan.PayoffOrder {
			ctx.PayoffOrder = append(ctx.PayoffOrder, PayoffLine{
				Order:          p.Order,
				Name:           p.Name,
				PayoffDate:     p.PayoffDate,
				MonthsToPayoff: p.MonthsToPayoff,
				TotalInterest:  p.TotalInterest,
			})
		}
	}
	return ctx
}

// Render produces the prompt text. An empty portfolio renders a single
// "DEBTS: None tracked" line.
func (c DebtContext) Render() string {
	if c.Count == 0 {
		return "DEBTS: None tracked"
	}

	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format, args...)
		b.WriteByte('\n')
	}

	line("DEBTS:")
	line("  Count:               %d debt(s)", c.Count)
	line("  Total debt:          %s", Dollars(c.TotalDebt))
	line("  Monthly minimums:    %s", Dollars(c.TotalMinimumPayments))
	if c.WeightedAverageRate != nil {
		line("  Avg interest rate:   %s%%", c.WeightedAverageRate.StringFixed(2))
	}
	if c.DebtFreeDate != nil && c.AvalancheMonths != nil {
		line("  Debt-free date (av.): %s (%d months)", *c.DebtFreeDate, *c.AvalancheMonths)
	}
	if c.TotalInterestPaid.IsPositive() {
		line("  Total interest (av.): %s", Dollars(c.TotalInterestPaid))
	}

	line("")
	line("  Individual debts:")
	for _, d := range c.Debts {
		line("    • %s (%s): %s @ %s%% APR, min %s/mo",
			d.Name, d.Type, Dollars(d.Balance), d.InterestRate.StringFixed(2), Dollars(d.MinimumPayment))
	}

	if len(c.PayoffOrder) > 0 {
		line("")
		line("  Avalanche payoff order:")
		for _, p := range c.PayoffOrder {
			entry := fmt.Sprintf("    #%d: %s", p.Order, p.Name)
			if p.PayoffDate != nil && p.MonthsToPayoff != nil {
				entry += fmt.Sprintf(" - %s (%d mo, %s interest)", *p.PayoffDate, *p.MonthsToPayoff, Dollars(p.TotalInterest))
			}
			line("%s", entry)
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

// Dollars formats an amount as "$1,234.56" (negative as "-$1,234.56").
// The cents come from the decimal's own fixed-point string, so no float
// rounding is involved.
func Dollars(d decimal.Decimal) string {
	d = debt.Round2(d)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	_, cents, _ := strings.Cut(d.StringFixed(debt.Cents), ".")
	return sign + "$" + humanize.Comma(d.IntPart()) + "." + cents
}
