package assistant_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/debt-engine/assistant"
	"github.com/warp/debt-engine/debt"
	"github.com/warp/debt-engine/payoff"
)

func TestRender_Portfolio(t *testing.T) {
	// GIVEN: Two debts, their summary and the avalanche plan
	start := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	debts := []debt.Debt{
		{ID: 1, Name: "A", Type: debt.TypeCreditCard, Balance: debt.MustParse("500"), InterestRate: debt.MustParse("20"), MinimumPayment: debt.MustParse("50")},
		{ID: 2, Name: "B", Type: debt.TypeLoan, Balance: debt.MustParse("2000"), InterestRate: debt.MustParse("10"), MinimumPayment: debt.MustParse("40")},
	}
	summary, err := payoff.Summarize(context.Background(), debts, start)
	require.NoError(t, err)
	plan := payoff.Simulate(debts, payoff.Avalanche, decimal.Zero, start)

	// WHEN: Rendering
	text := assistant.BuildDebtContext(debts, summary, &plan).Render()

	// THEN: The prompt section matches line for line
	want := strings.Join([]string{
		"DEBTS:",
		"  Count:               2 debt(s)",
		"  Total debt:          $2,500.00",
		"  Monthly minimums:    $90.00",
		"  Avg interest rate:   12.00%",
		"  Debt-free date (av.): 2028-12 (33 months)",
		"  Total interest (av.): $397.15",
		"",
		"  Individual debts:",
		"    • A (credit_card): $500.00 @ 20.00% APR, min $50.00/mo",
		"    • B (loan): $2,000.00 @ 10.00% APR, min $40.00/mo",
		"",
		"  Avalanche payoff order:",
		"    #1: A - 2027-03 (12 mo, $51.51 interest)",
		"    #2: B - 2028-12 (33 mo, $345.64 interest)",
	}, "\n")
	assert.Equal(t, want, text)
}

func TestRender_NoDebts(t *testing.T) {
	ctx := assistant.BuildDebtContext(nil, payoff.Summary{}, nil)
	assert.Equal(t, "DEBTS: None tracked", ctx.Render())
	assert.Empty(t, ctx.PayoffOrder)
}

func TestRender_CapHitOmitsDates(t *testing.T) {
	start := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	debts := []debt.Debt{
		{ID: 1, Name: "Store card", Type: debt.TypeCreditCard, Balance: debt.MustParse("500"), InterestRate: debt.MustParse("10")},
	}
	summary, err := payoff.Summarize(context.Background(), debts, start)
	require.NoError(t, err)
	plan := payoff.Simulate(debts, payoff.Avalanche, decimal.Zero, start)

	text := assistant.BuildDebtContext(debts, summary, &plan).Render()

	assert.NotContains(t, text, "Debt-free date")
	assert.True(t, strings.HasSuffix(text, "#1: Store card"))
}

func TestDollars(t *testing.T) {
	assert.Equal(t, "$0.00", assistant.Dollars(decimal.Zero))
	assert.Equal(t, "$999.99", assistant.Dollars(debt.MustParse("999.99")))
	assert.Equal(t, "$1,234.56", assistant.Dollars(debt.MustParse("1234.555")))
	assert.Equal(t, "$72,687.93", assistant.Dollars(debt.MustParse("72687.93")))
	assert.Equal(t, "$1,000,000.00", assistant.Dollars(debt.MustParse("1000000")))
	assert.Equal(t, "-$42.10", assistant.Dollars(debt.MustParse("-42.1")))
}
