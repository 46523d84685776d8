package debt

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// PAYMENT RECORDER
// =============================================================================

// RecordPayment subtracts amount from one of the owner's debts (floored at
// zero), stamps LastManualUpdateAt, and appends a linked debt-payment entry
// to the ledger so DueSoon sees the obligation as met for this month.
func (s *Service) RecordPayment(ctx context.Context, ownerID, id int64, amount decimal.Decimal) (Debt, error) {
	if err := CheckAmount("amount", amount); err != nil {
		return Debt{}, err
	}
	if !amount.IsPositive() {
		return Debt{}, invalid("amount", "must be greater than zero")
	}
	amount = Round2(amount)
	if _, err := s.Get(ctx, ownerID, id); err != nil {
		return Debt{}, err
	}

	now := s.now()
	updated, err := s.Debts.Modify(ctx, id, func(d *Debt) error {
		d.Balance = FloorZero(d.Balance.Sub(amount))
		d.LastManualUpdateAt = &now
		d.UpdatedAt = now
		return nil
	})
	if err != nil {
		return Debt{}, fmt.Errorf("apply payment to debt %d: %w", id, err)
	}
	s.changed(ctx, ownerID)

	link := updated.ID
	entry := LedgerEntry{
		ID:             uuid.NewString(),
		OwnerID:        ownerID,
		Date:           DateOnly(now),
		Description:    fmt.Sprintf("Payment – %s", updated.Name),
		Amount:         amount.Neg(),
		Category:       CategoryDebtPayment,
		CategorySource: CategorySourceAuto,
		Source:         SourceChequing,
		Type:           EntryTypeDebtPayment,
		DebtLink:       &link,
		CreatedAt:      now,
	}
	if _, err := s.Ledger.Append(ctx, entry); err != nil {
		return updated, fmt.Errorf("record payment entry for debt %d: %w", id, err)
	}
	return updated, nil
}
