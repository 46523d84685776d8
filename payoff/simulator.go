package payoff

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/debt-engine/debt"
)

// MaxMonths caps every simulation at 50 years. A minimum payment below the
// monthly interest never shrinks the balance, so the cap is what guarantees
// termination.
const MaxMonths = 600

var monthsTimesPercent = decimal.NewFromInt(1200) // 12 months * 100%

// ErrInvalidStrategy is returned (alongside debt.ErrInvalidInput) for an
// unknown strategy tag.
var ErrInvalidStrategy = errors.New("invalid strategy")

// =============================================================================
// VALIDATION
// =============================================================================

// Validate rejects inputs the simulator must never see: an unknown strategy,
// an extra payment that is negative or out of range, or a debt breaking the
// record invariants. Simulate rounds the extra payment to cents.
func Validate(debts []debt.Debt, strategy Strategy, extra decimal.Decimal) error {
	if !strategy.Valid() {
		return fmt.Errorf("%w: %w", ErrInvalidStrategy,
			debt.Invalid("strategy", "must be %q or %q, got %q", Avalanche, Snowball, strategy))
	}
	if err := debt.ValidateAmount("extra_payment", extra); err != nil {
		return err
	}
	for _, d := range debts {
		if err := d.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Plan validates the inputs and, only if they are valid, simulates.
func Plan(debts []debt.Debt, strategy Strategy, extra decimal.Decimal, start time.Time) (Response, error) {
	if err := Validate(debts, strategy, extra); err != nil {
		return Response{}, err
	}
	return Simulate(debts, strategy, extra, start), nil
}

// =============================================================================
// SLOTS - Per-call working state
// =============================================================================

// slot is the working copy of one debt. Slots live in a slice owned by a
// single Simulate call and are referenced by index.
type slot struct {
	debtID     int64
	name       string
	original   decimal.Decimal
	annualRate decimal.Decimal
	balance    decimal.Decimal
	minimum    decimal.Decimal
	interest   decimal.Decimal
	paidOff    bool
	paidMonth  int
	history    []MonthBalance
}

func newSlots(debts []debt.Debt) []slot {
	slots := make([]slot, len(debts))
	for i, d := range debts {
		slots[i] = slot{
			debtID:     d.ID,
			name:       d.Name,
			original:   debt.Round2(d.Balance),
			annualRate: d.InterestRate,
			balance:    debt.Round2(d.Balance),
			minimum:    debt.Round2(d.MinimumPayment),
			interest:   decimal.Zero,
		}
		// Nothing owed at the start: already paid off, at month 0.
		if !slots[i].balance.IsPositive() {
			slots[i].paidOff = true
		}
	}
	return slots
}

// monthlyInterest is balance * annual% / 100 / 12, rounded half-up to cents.
// Dividing last keeps the product exact before the single rounding step.
func monthlyInterest(balance, annualRate decimal.Decimal) decimal.Decimal {
	return debt.Round2(balance.Mul(annualRate).Div(monthsTimesPercent))
}

// priority returns slot indices in strategy order. The order is fixed for the
// whole run; it is not recomputed as balances change.
func priority(slots []slot, strategy Strategy) []int {
	order := make([]int, len(slots))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		sa, sb := slots[order[a]], slots[order[b]]
		switch strategy {
		case Snowball:
			if !sa.balance.Equal(sb.balance) {
				return sa.balance.LessThan(sb.balance)
			}
			return sa.annualRate.GreaterThan(sb.annualRate)
		default:
			if !sa.annualRate.Equal(sb.annualRate) {
				return sa.annualRate.GreaterThan(sb.annualRate)
			}
			return sa.balance.LessThan(sb.balance)
		}
	})
	return order
}

func outstanding(slots []slot) bool {
	for i := range slots {
		if slots[i].balance.IsPositive() {
			return true
		}
	}
	return false
}

// =============================================================================
// SIMULATION
// =============================================================================

// Simulate runs the month-by-month projection. Inputs must already be valid
// (see Plan); given valid inputs it always terminates and never fails.
//
// Each month:
//  1. Accrue interest on every positive balance.
//  2. Pay each minimum (or the whole balance if smaller).
//  3. Spend the pool (extra + minimums freed in earlier months) down the
//     fixed priority order.
//  4. Record every balance and the aggregate.
func Simulate(debts []debt.Debt, strategy Strategy, extra decimal.Decimal, start time.Time) Response {
	extra = debt.Round2(extra)
	slots := newSlots(debts)
	order := priority(slots, strategy)
	freed := decimal.Zero
	projection := make([]MonthlyProjection, 0)

	markPaid := func(s *slot, month int) {
		if s.balance.IsZero() && !s.paidOff {
			s.paidOff = true
			s.paidMonth = month
			freed = freed.Add(s.minimum)
		}
	}

	month := 0
	for outstanding(slots) && month < MaxMonths {
		month++
		label := debt.MonthLabel(start, month)

		// 1. Accrual
		for i := range slots {
			s := &slots[i]
			if s.balance.IsPositive() {
				interest := monthlyInterest(s.balance, s.annualRate)
				s.balance = s.balance.Add(interest)
				s.interest = s.interest.Add(interest)
			}
		}

		// Minimums freed during this month join the pool next month.
		pool := extra.Add(freed)

		// 2. Minimum payments
		for i := range slots {
			s := &slots[i]
			if !s.balance.IsPositive() {
				continue
			}
			s.balance = debt.FloorZero(s.balance.Sub(debt.MinDecimal(s.minimum, s.balance)))
			markPaid(s, month)
		}

		// 3. Extra pool, fixed priority order
		for _, i := range order {
			if !pool.IsPositive() {
				break
			}
			s := &slots[i]
			if !s.balance.IsPositive() {
				continue
			}
			pay := debt.MinDecimal(pool, s.balance)
			s.balance = s.balance.Sub(pay)
			pool = pool.Sub(pay)
			markPaid(s, month)
		}

		// 4. Snapshot
		total := decimal.Zero
		breakdown := make([]BreakdownEntry, len(slots))
		for i := range slots {
			s := &slots[i]
			bal := debt.Round2(debt.FloorZero(s.balance))
			s.history = append(s.history, MonthBalance{Month: month, Date: label, Balance: bal})
			breakdown[i] = BreakdownEntry{DebtID: s.debtID, Name: s.name, Balance: bal}
			total = total.Add(bal)
		}
		projection = append(projection, MonthlyProjection{
			Month:        month,
			Date:         label,
			TotalBalance: debt.Round2(total),
			Breakdown:    breakdown,
		})
	}

	resp := Response{
		Strategy:          strategy,
		ExtraPayment:      extra,
		PayoffOrder:       details(slots, start),
		MonthlyProjection: projection,
	}

	totalInterest := decimal.Zero
	for _, d := range resp.PayoffOrder {
		totalInterest = totalInterest.Add(d.TotalInterest)
	}
	resp.TotalInterestPaid = debt.Round2(totalInterest)

	if !outstanding(slots) {
		months := month
		resp.TotalMonths = &months
		if len(slots) > 0 {
			label := debt.MonthLabel(start, month)
			resp.DebtFreeDate = &label
		}
	}
	return resp
}

// details ranks slots (paid off by month, then unpaid in input order) and
// converts them to output records in rank order.
func details(slots []slot, start time.Time) []DebtDetail {
	ranked := make([]int, 0, len(slots))
	var unpaid []int
	for i := range slots {
		if slots[i].paidOff {
			ranked = append(ranked, i)
		} else {
			unpaid = append(unpaid, i)
		}
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		return slots[ranked[a]].paidMonth < slots[ranked[b]].paidMonth
	})
	ranked = append(ranked, unpaid...)

	out := make([]DebtDetail, len(ranked))
	for rank, i := range ranked {
		s := slots[i]
		d := DebtDetail{
			DebtID:          s.debtID,
			Name:            s.name,
			OriginalBalance: s.original,
			InterestRate:    debt.Round2(s.annualRate),
			TotalInterest:   debt.Round2(s.interest),
			Order:           rank + 1,
			MonthlyBalances: s.history,
		}
		if d.MonthlyBalances == nil {
			d.MonthlyBalances = []MonthBalance{}
		}
		if s.paidOff {
			months := s.paidMonth
			label := debt.MonthLabel(start, months)
			d.MonthsToPayoff = &months
			d.PayoffDate = &label
		}
		out[rank] = d
	}
	return out
}
