package debt

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// DUE-SOON SCANNER
// =============================================================================

// Window bounds, in days relative to today.
const (
	DueSoonAheadDays   = 3
	DueSoonOverdueDays = 7
)

// DueSoonDebt is a debt whose due date is imminent or recently passed with
// no payment recorded this month.
type DueSoonDebt struct {
	ID                 int64
	Name               string
	Type               DebtType
	Balance            decimal.Decimal
	MinimumPayment     decimal.Decimal
	DueDay             int
	DaysUntilDue       int
	LastManualUpdateAt *time.Time
}

// DueSoon returns the owner's debts due within the next three days or up to
// seven days overdue that have no linked ledger entry in the current month.
func (s *Service) DueSoon(ctx context.Context, ownerID int64) ([]DueSoonDebt, error) {
	debts, err := s.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	today := DateOnly(s.now())
	var out []DueSoonDebt
	for _, d := range debts {
		if d.DueDay == nil {
			continue
		}
		due := DueDateIn(today.Year(), today.Month(), *d.DueDay)
		days := DaysBetween(today, due)
		if days < -DueSoonOverdueDays || days > DueSoonAheadDays {
			continue
		}

		paid, err := s.Ledger.EntriesForDebt(ctx, d.ID, today.Year(), today.Month())
		if err != nil {
			return nil, fmt.Errorf("check payments for debt %d: %w", d.ID, err)
		}
		if len(paid) > 0 {
			continue
		}

		out = append(out, DueSoonDebt{
			ID:                 d.ID,
			Name:               d.Name,
			Type:               d.Type,
			Balance:            d.Balance,
			MinimumPayment:     d.MinimumPayment,
			DueDay:             *d.DueDay,
			DaysUntilDue:       days,
			LastManualUpdateAt: d.LastManualUpdateAt,
		})
	}
	return out, nil
}

// DaysBetween returns the whole calendar days from -> to.
func DaysBetween(from, to time.Time) int {
	return int(DateOnly(to).Sub(DateOnly(from)).Hours() / 24)
}
