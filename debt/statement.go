package debt

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// STATEMENT AUTO-UPDATER - Tagged result, never a swallowed error
// =============================================================================

// SkipReason explains why a statement did not update a debt.
type SkipReason string

// Reasons are listed in the order they are checked.
const (
	ReasonStatementNotFound     SkipReason = "statement_not_found"
	ReasonNotCreditCard         SkipReason = "not_credit_card"
	ReasonClosingBalanceMissing SkipReason = "closing_balance_missing"
	ReasonBankNotDetected       SkipReason = "bank_not_detected"
	ReasonNoLinkedDebt          SkipReason = "no_linked_debt"
)

// AutoUpdateResult is either Updated (DebtID, DebtName, NewBalance set) or
// skipped with a Reason.
type AutoUpdateResult struct {
	Updated    bool
	DebtID     int64
	DebtName   string
	NewBalance decimal.Decimal
	Reason     SkipReason
	Message    string
}

func skipped(reason SkipReason, format string, args ...any) AutoUpdateResult {
	return AutoUpdateResult{Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// AutoUpdateFromStatement copies a parsed credit-card statement's closing
// balance into the owner's debt linked to the statement's bank.
//
// Store failures are returned as errors. Every "cannot proceed" condition is
// a non-error result with a Reason.
func (s *Service) AutoUpdateFromStatement(ctx context.Context, ownerID, statementID int64) (AutoUpdateResult, error) {
	stmt, err := s.Statements.GetStatement(ctx, statementID, ownerID)
	if err != nil {
		return AutoUpdateResult{}, fmt.Errorf("get statement %d: %w", statementID, err)
	}
	if stmt == nil {
		return skipped(ReasonStatementNotFound, "Statement not found"), nil
	}
	if stmt.StatementType != StatementTypeCreditCard {
		return skipped(ReasonNotCreditCard, "Not a credit card statement"), nil
	}
	if stmt.ClosingBalance == nil {
		return skipped(ReasonClosingBalanceMissing, "Closing balance not detected in statement"), nil
	}
	if stmt.DetectedBank == nil || *stmt.DetectedBank == "" {
		return skipped(ReasonBankNotDetected, "Bank not detected in statement"), nil
	}

	bank := *stmt.DetectedBank
	linked, err := s.Debts.FindByLinkedBank(ctx, ownerID, bank)
	if err != nil {
		return AutoUpdateResult{}, fmt.Errorf("find debt linked to %q: %w", bank, err)
	}
	if linked == nil {
		return skipped(ReasonNoLinkedDebt, "No debt linked to bank '%s'", bank), nil
	}

	// A negative closing balance is a credit on the card; the debt is zero.
	balance := FloorZero(Round2(*stmt.ClosingBalance))
	now := s.now()
	updated, err := s.Debts.Modify(ctx, linked.ID, func(d *Debt) error {
		d.Balance = balance
		d.LastStatementBalance = &balance
		d.LastVerifiedAt = &now
		d.UpdatedAt = now
		return nil
	})
	if err != nil {
		return AutoUpdateResult{}, fmt.Errorf("apply statement to debt %d: %w", linked.ID, err)
	}
	s.changed(ctx, ownerID)

	return AutoUpdateResult{
		Updated:    true,
		DebtID:     updated.ID,
		DebtName:   updated.Name,
		NewBalance: updated.Balance,
	}, nil
}
