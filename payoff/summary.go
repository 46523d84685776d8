package payoff

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/debt-engine/debt"
	"golang.org/x/sync/errgroup"
)

// =============================================================================
// SUMMARY AGGREGATOR
// =============================================================================

// Summarize computes portfolio totals and the no-extra-payment debt-free
// horizon under each strategy. The two simulations share no state and run
// concurrently.
func Summarize(ctx context.Context, debts []debt.Debt, start time.Time) (Summary, error) {
	if err := Validate(debts, DefaultStrategy, decimal.Zero); err != nil {
		return Summary{}, err
	}
	if len(debts) == 0 {
		return Summary{TotalDebt: decimal.Zero, TotalMinimumPayments: decimal.Zero}, nil
	}

	totalDebt := decimal.Zero
	totalMinimum := decimal.Zero
	weighted := decimal.Zero
	for _, d := range debts {
		totalDebt = totalDebt.Add(d.Balance)
		totalMinimum = totalMinimum.Add(d.MinimumPayment)
		weighted = weighted.Add(d.Balance.Mul(d.InterestRate))
	}

	summary := Summary{
		TotalDebt:            debt.Round2(totalDebt),
		DebtCount:            len(debts),
		TotalMinimumPayments: debt.Round2(totalMinimum),
	}
	if totalDebt.IsPositive() {
		rate := debt.Round2(weighted.Div(totalDebt))
		summary.WeightedAverageInterestRate = &rate
	}

	var avalanche, snowball Response
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		avalanche = Simulate(debts, Avalanche, decimal.Zero, start)
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		snowball = Simulate(debts, Snowball, decimal.Zero, start)
		return nil
	})
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}

	summary.AvalancheMonths = avalanche.TotalMonths
	summary.DebtFreeDateAvalanche = avalanche.DebtFreeDate
	summary.SnowballMonths = snowball.TotalMonths
	summary.DebtFreeDateSnowball = snowball.DebtFreeDate
	return summary, nil
}
