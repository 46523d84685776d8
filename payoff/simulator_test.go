package payoff_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/debt-engine/debt"
	"github.com/warp/debt-engine/payoff"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

var start = time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return debt.MustParse(s) }

func card(id int64, name, balance, rate, minimum string) debt.Debt {
	return debt.Debt{
		ID:             id,
		OwnerID:        1,
		Name:           name,
		Type:           debt.TypeCreditCard,
		Balance:        dec(balance),
		InterestRate:   dec(rate),
		MinimumPayment: dec(minimum),
	}
}

func assertMoney(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.Equal(t, want, got.StringFixed(2), msgAndArgs...)
}

func detailByID(t *testing.T, resp payoff.Response, id int64) payoff.DebtDetail {
	t.Helper()
	for _, d := range resp.PayoffOrder {
		if d.DebtID == id {
			return d
		}
	}
	t.Fatalf("debt %d missing from payoff order", id)
	return payoff.DebtDetail{}
}

// =============================================================================
// SCENARIOS
// =============================================================================

func TestSimulate_SingleDebt_PaysOffExactly(t *testing.T) {
	// GIVEN: $1200.00 at 24% with a $100.00 minimum, no extra
	debts := []debt.Debt{card(1, "Visa", "1200.00", "24.00", "100.00")}

	// WHEN: Simulating avalanche
	resp := payoff.Simulate(debts, payoff.Avalanche, decimal.Zero, start)

	// THEN: Month 1 accrues $24.00 and pays $100.00
	require.NotEmpty(t, resp.MonthlyProjection)
	first := resp.MonthlyProjection[0]
	assert.Equal(t, 1, first.Month)
	assert.Equal(t, "2026-04", first.Date)
	assertMoney(t, "1124.00", first.TotalBalance)

	// AND: The balance reaches exactly zero in a finite number of months
	require.NotNil(t, resp.TotalMonths)
	assert.Equal(t, 14, *resp.TotalMonths)
	require.NotNil(t, resp.DebtFreeDate)
	assert.Equal(t, "2027-05", *resp.DebtFreeDate)
	assert.Len(t, resp.MonthlyProjection, 14)
	assertMoney(t, "0.00", resp.MonthlyProjection[13].TotalBalance)
	assertMoney(t, "185.98", resp.TotalInterestPaid)

	d := resp.PayoffOrder[0]
	assert.Equal(t, 1, d.Order)
	require.NotNil(t, d.MonthsToPayoff)
	assert.Equal(t, 14, *d.MonthsToPayoff)
	assertMoney(t, "1124.00", d.MonthlyBalances[0].Balance)
	assertMoney(t, "1046.48", d.MonthlyBalances[1].Balance)
	assertMoney(t, "967.41", d.MonthlyBalances[2].Balance)
}

func TestSimulate_Avalanche_HigherRatePaidFirst(t *testing.T) {
	// GIVEN: A at 20% and B at 10%, no extra payment
	debts := []debt.Debt{
		card(1, "A", "500.00", "20.00", "50.00"),
		card(2, "B", "2000.00", "10.00", "40.00"),
	}

	// WHEN: Simulating avalanche
	resp := payoff.Simulate(debts, payoff.Avalanche, decimal.Zero, start)

	// THEN: A is rank 1 and paid off at month 12
	a := detailByID(t, resp, 1)
	b := detailByID(t, resp, 2)
	assert.Equal(t, 1, a.Order)
	assert.Equal(t, 2, b.Order)
	require.NotNil(t, a.MonthsToPayoff)
	assert.Equal(t, 12, *a.MonthsToPayoff)

	// AND: Until A is gone, B only ever receives its own minimum
	bal := dec("2000.00")
	for m := 0; m < *a.MonthsToPayoff; m++ {
		bal = bal.Add(bal.Mul(dec("10")).Div(decimal.NewFromInt(1200)).Round(2)).Sub(dec("40.00"))
		assertMoney(t, bal.StringFixed(2), b.MonthlyBalances[m].Balance, "month %d", m+1)
	}

	require.NotNil(t, resp.TotalMonths)
	assert.Equal(t, 33, *resp.TotalMonths)
	assertMoney(t, "51.51", a.TotalInterest)
	assertMoney(t, "345.64", b.TotalInterest)
	assertMoney(t, "397.15", resp.TotalInterestPaid)
}

func TestSimulate_MinimumBelowInterest_HitsCap(t *testing.T) {
	// GIVEN: A balance with no minimum payment at all
	debts := []debt.Debt{card(1, "Store card", "500.00", "10.00", "0.00")}

	// WHEN: Simulating
	resp := payoff.Simulate(debts, payoff.Avalanche, decimal.Zero, start)

	// THEN: The cap stops the run, reported as absent months and date
	assert.Nil(t, resp.TotalMonths)
	assert.Nil(t, resp.DebtFreeDate)
	require.Len(t, resp.MonthlyProjection, payoff.MaxMonths)

	// AND: The incomplete progress is still reported
	last := resp.MonthlyProjection[payoff.MaxMonths-1]
	assert.True(t, last.TotalBalance.GreaterThan(dec("500.00")))
	assertMoney(t, "72687.93", last.TotalBalance)

	d := resp.PayoffOrder[0]
	assert.Nil(t, d.MonthsToPayoff)
	assert.Nil(t, d.PayoffDate)
	assert.Equal(t, 1, d.Order)
	assert.Len(t, d.MonthlyBalances, payoff.MaxMonths)
	assertMoney(t, "72187.93", resp.TotalInterestPaid)
}

func TestSimulate_ExtraPayment_StrategiesDiverge(t *testing.T) {
	// GIVEN: A large expensive card and a small cheap loan, $100 extra
	debts := []debt.Debt{
		card(1, "Card", "3000.00", "24.00", "90.00"),
		card(2, "Loan", "800.00", "6.00", "40.00"),
	}
	extra := dec("100.00")

	// WHEN: Simulating both strategies
	av := payoff.Simulate(debts, payoff.Avalanche, extra, start)
	sn := payoff.Simulate(debts, payoff.Snowball, extra, start)

	// THEN: Snowball clears the small loan first
	loan := detailByID(t, sn, 2)
	assert.Equal(t, 1, loan.Order)
	require.NotNil(t, loan.MonthsToPayoff)
	assert.Equal(t, 6, *loan.MonthsToPayoff)

	// AND: Avalanche pays less interest and finishes sooner
	require.NotNil(t, av.TotalMonths)
	require.NotNil(t, sn.TotalMonths)
	assert.Equal(t, 20, *av.TotalMonths)
	assert.Equal(t, 21, *sn.TotalMonths)
	assertMoney(t, "686.09", av.TotalInterestPaid)
	assertMoney(t, "800.08", sn.TotalInterestPaid)
	assert.True(t, av.TotalInterestPaid.LessThanOrEqual(sn.TotalInterestPaid))

	// AND: Ties in payoff month rank in input order
	assert.Equal(t, int64(1), av.PayoffOrder[0].DebtID)
	assert.Equal(t, int64(2), av.PayoffOrder[1].DebtID)
}

// =============================================================================
// PROPERTIES
// =============================================================================

func TestSimulate_Properties(t *testing.T) {
	portfolios := map[string][]debt.Debt{
		"mixed": {
			card(1, "Visa", "4200.00", "19.99", "126.00"),
			card(2, "Car", "11250.00", "6.49", "310.00"),
			card(3, "LOC", "900.00", "9.50", "25.00"),
		},
		"zero rate": {
			card(1, "Promo", "1000.00", "0.00", "50.00"),
			card(2, "Family", "300.00", "0.00", "0.00"),
		},
		"underwater": {
			card(1, "Payday", "2000.00", "60.00", "20.00"),
			card(2, "Visa", "500.00", "20.00", "50.00"),
		},
	}
	extras := []string{"0", "75.50", "500"}

	for name, debts := range portfolios {
		for _, strategy := range []payoff.Strategy{payoff.Avalanche, payoff.Snowball} {
			for _, e := range extras {
				resp := payoff.Simulate(debts, strategy, dec(e), start)

				assert.LessOrEqual(t, len(resp.MonthlyProjection), payoff.MaxMonths, name)
				assert.Len(t, resp.PayoffOrder, len(debts), name)

				sum := decimal.Zero
				for _, d := range resp.PayoffOrder {
					sum = sum.Add(d.TotalInterest)
					assert.False(t, d.TotalInterest.IsNegative(), name)

					reachedZero := false
					for _, mb := range d.MonthlyBalances {
						if reachedZero {
							assert.True(t, mb.Balance.IsZero(), "%s/%s: %s rose after payoff", name, strategy, d.Name)
						}
						if mb.Balance.IsZero() {
							reachedZero = true
						}
					}
				}
				assert.True(t, sum.Equal(resp.TotalInterestPaid), "%s/%s/%s interest sum", name, strategy, e)
			}
		}
	}
}

func TestSimulate_AvalancheNeverCostsMoreInterest(t *testing.T) {
	debts := []debt.Debt{
		card(1, "Visa", "4200.00", "19.99", "126.00"),
		card(2, "Car", "11250.00", "6.49", "310.00"),
		card(3, "LOC", "900.00", "9.50", "25.00"),
	}
	for _, e := range []string{"50", "250"} {
		av := payoff.Simulate(debts, payoff.Avalanche, dec(e), start)
		sn := payoff.Simulate(debts, payoff.Snowball, dec(e), start)
		require.NotNil(t, av.TotalMonths)
		require.NotNil(t, sn.TotalMonths)
		assert.True(t, av.TotalInterestPaid.LessThanOrEqual(sn.TotalInterestPaid), "extra %s", e)
	}

	// With no extra the pool only holds freed minimums, and cent rounding of
	// the discrete minimums lets snowball come out 7 cents ahead here.
	av := payoff.Simulate(debts, payoff.Avalanche, decimal.Zero, start)
	sn := payoff.Simulate(debts, payoff.Snowball, decimal.Zero, start)
	assertMoney(t, "3404.93", av.TotalInterestPaid)
	assertMoney(t, "3404.86", sn.TotalInterestPaid)
}

func TestSimulate_Deterministic(t *testing.T) {
	debts := []debt.Debt{
		card(1, "Visa", "4200.00", "19.99", "126.00"),
		card(2, "LOC", "900.00", "9.50", "25.00"),
	}
	first := payoff.Simulate(debts, payoff.Snowball, dec("40"), start)
	second := payoff.Simulate(debts, payoff.Snowball, dec("40"), start)
	assert.Equal(t, first, second)
}

func TestSimulate_DoesNotMutateInput(t *testing.T) {
	debts := []debt.Debt{card(1, "Visa", "1200.00", "24.00", "100.00")}
	payoff.Simulate(debts, payoff.Avalanche, dec("50"), start)
	assertMoney(t, "1200.00", debts[0].Balance)
}

// =============================================================================
// EDGE CASES
// =============================================================================

func TestSimulate_EmptyInput(t *testing.T) {
	resp := payoff.Simulate(nil, payoff.Avalanche, decimal.Zero, start)

	require.NotNil(t, resp.TotalMonths)
	assert.Equal(t, 0, *resp.TotalMonths)
	assert.Nil(t, resp.DebtFreeDate)
	assert.True(t, resp.TotalInterestPaid.IsZero())
	assert.Empty(t, resp.PayoffOrder)
	assert.Empty(t, resp.MonthlyProjection)
}

func TestSimulate_ZeroOpeningBalance_RanksFirst(t *testing.T) {
	// GIVEN: One debt already at zero and one still owing
	debts := []debt.Debt{
		card(1, "Owing", "100.00", "12.00", "60.00"),
		card(2, "Cleared", "0.00", "20.00", "30.00"),
	}

	resp := payoff.Simulate(debts, payoff.Avalanche, decimal.Zero, start)

	// THEN: The cleared debt counts as paid at month 0
	cleared := resp.PayoffOrder[0]
	assert.Equal(t, int64(2), cleared.DebtID)
	require.NotNil(t, cleared.MonthsToPayoff)
	assert.Equal(t, 0, *cleared.MonthsToPayoff)
	assert.Equal(t, "2026-03", *cleared.PayoffDate)

	// AND: Its minimum is not freed into the pool, so Owing takes two months
	require.NotNil(t, resp.TotalMonths)
	assert.Equal(t, 2, *resp.TotalMonths)
}

func TestSimulate_BreakdownInInputOrder(t *testing.T) {
	debts := []debt.Debt{
		card(7, "Low rate", "800.00", "6.00", "40.00"),
		card(3, "High rate", "3000.00", "24.00", "90.00"),
	}
	resp := payoff.Simulate(debts, payoff.Avalanche, decimal.Zero, start)

	m1 := resp.MonthlyProjection[0]
	require.Len(t, m1.Breakdown, 2)
	assert.Equal(t, int64(7), m1.Breakdown[0].DebtID)
	assertMoney(t, "764.00", m1.Breakdown[0].Balance)
	assert.Equal(t, int64(3), m1.Breakdown[1].DebtID)
	assertMoney(t, "2970.00", m1.Breakdown[1].Balance)
	assertMoney(t, "3734.00", m1.TotalBalance)
}

// =============================================================================
// VALIDATION
// =============================================================================

func TestPlan_RejectsInvalidInput(t *testing.T) {
	good := []debt.Debt{card(1, "Visa", "100.00", "10.00", "10.00")}

	tests := []struct {
		name     string
		debts    []debt.Debt
		strategy payoff.Strategy
		extra    string
		field    string
	}{
		{"unknown strategy", good, "hybrid", "0", "strategy"},
		{"negative extra", good, payoff.Avalanche, "-1", "extra_payment"},
		{"negative balance", []debt.Debt{card(1, "X", "-5", "10", "10")}, payoff.Snowball, "0", "balance"},
		{"rate over 100", []debt.Debt{card(1, "X", "5", "100.01", "1")}, payoff.Snowball, "0", "interest_rate"},
		{"negative minimum", []debt.Debt{card(1, "X", "5", "1", "-1")}, payoff.Snowball, "0", "minimum_payment"},
		{"huge extra", good, payoff.Avalanche, "1e5000000", "extra_payment"},
		{"extra over one trillion", good, payoff.Avalanche, "1000000000000.01", "extra_payment"},
		{"extra with tiny exponent", good, payoff.Avalanche, "1e-5000000", "extra_payment"},
		{"huge balance", []debt.Debt{card(1, "X", "1e5000000", "1", "1")}, payoff.Snowball, "0", "balance"},
		{"huge minimum", []debt.Debt{card(1, "X", "5", "1", "1e5000000")}, payoff.Snowball, "0", "minimum_payment"},
		{"huge rate exponent", []debt.Debt{card(1, "X", "5", "1e5000000", "1")}, payoff.Snowball, "0", "interest_rate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := payoff.Plan(tt.debts, tt.strategy, dec(tt.extra), start)
			require.Error(t, err)
			assert.True(t, debt.IsClientError(err))

			var verr *debt.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestPlan_ExtraPaymentRoundedToCents(t *testing.T) {
	// GIVEN: 100.03 at 0% with a 10.00 minimum takes 11 months
	debts := []debt.Debt{card(1, "IOU", "100.03", "0", "10.00")}
	base, err := payoff.Plan(debts, payoff.Avalanche, decimal.Zero, start)
	require.NoError(t, err)
	require.NotNil(t, base.TotalMonths)
	require.Equal(t, 11, *base.TotalMonths)

	// WHEN: The extra payment is below half a cent
	resp, err := payoff.Plan(debts, payoff.Avalanche, dec("0.004"), start)
	require.NoError(t, err)

	// THEN: It rounds to 0.00 and the projection matches no extra at all
	assertMoney(t, "0.00", resp.ExtraPayment)
	assert.Equal(t, base.TotalMonths, resp.TotalMonths)
	assertMoney(t, "90.03", resp.MonthlyProjection[0].TotalBalance)
	assert.Equal(t, "90.03", resp.MonthlyProjection[0].TotalBalance.String())

	// AND: A sub-cent amount that rounds up is spent as a whole cent
	up := payoff.Simulate(debts, payoff.Avalanche, dec("0.005"), start)
	assertMoney(t, "0.01", up.ExtraPayment)
	assertMoney(t, "90.02", up.MonthlyProjection[0].TotalBalance)
}

func TestPlan_UnknownStrategySentinel(t *testing.T) {
	_, err := payoff.Plan(nil, "hybrid", decimal.Zero, start)
	assert.ErrorIs(t, err, payoff.ErrInvalidStrategy)
	assert.ErrorIs(t, err, debt.ErrInvalidInput)
}

func TestPlan_ValidInput(t *testing.T) {
	resp, err := payoff.Plan([]debt.Debt{card(1, "Visa", "1200.00", "24.00", "100.00")}, payoff.Snowball, decimal.Zero, start)
	require.NoError(t, err)
	assert.Equal(t, payoff.Snowball, resp.Strategy)
	require.NotNil(t, resp.TotalMonths)
	assert.Equal(t, 14, *resp.TotalMonths)
}

// =============================================================================
// SUMMARY
// =============================================================================

func TestSummarize_Portfolio(t *testing.T) {
	debts := []debt.Debt{
		card(1, "A", "500.00", "20.00", "50.00"),
		card(2, "B", "2000.00", "10.00", "40.00"),
	}

	s, err := payoff.Summarize(context.Background(), debts, start)
	require.NoError(t, err)

	assertMoney(t, "2500.00", s.TotalDebt)
	assert.Equal(t, 2, s.DebtCount)
	assertMoney(t, "90.00", s.TotalMinimumPayments)
	require.NotNil(t, s.WeightedAverageInterestRate)
	assertMoney(t, "12.00", *s.WeightedAverageInterestRate)

	require.NotNil(t, s.AvalancheMonths)
	require.NotNil(t, s.SnowballMonths)
	assert.Equal(t, 33, *s.AvalancheMonths)
	assert.Equal(t, 33, *s.SnowballMonths)
	assert.Equal(t, "2028-12", *s.DebtFreeDateAvalanche)
	assert.Equal(t, "2028-12", *s.DebtFreeDateSnowball)
}

func TestSummarize_ZeroTotal_NoWeightedRate(t *testing.T) {
	debts := []debt.Debt{card(1, "Cleared", "0.00", "19.99", "25.00")}

	s, err := payoff.Summarize(context.Background(), debts, start)
	require.NoError(t, err)

	assert.Nil(t, s.WeightedAverageInterestRate)
	assert.Equal(t, 1, s.DebtCount)
	require.NotNil(t, s.AvalancheMonths)
	assert.Equal(t, 0, *s.AvalancheMonths)
}

func TestSummarize_Empty(t *testing.T) {
	s, err := payoff.Summarize(context.Background(), nil, start)
	require.NoError(t, err)

	assert.Equal(t, 0, s.DebtCount)
	assert.True(t, s.TotalDebt.IsZero())
	assert.Nil(t, s.WeightedAverageInterestRate)
	assert.Nil(t, s.AvalancheMonths)
	assert.Nil(t, s.SnowballMonths)
}

func TestSummarize_CapHit_NoDates(t *testing.T) {
	debts := []debt.Debt{card(1, "Store card", "500.00", "10.00", "0.00")}

	s, err := payoff.Summarize(context.Background(), debts, start)
	require.NoError(t, err)
	assert.Nil(t, s.AvalancheMonths)
	assert.Nil(t, s.DebtFreeDateSnowball)
}
