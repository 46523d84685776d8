/*
store.go - Collaborator interfaces for debts, the transaction ledger, and
bank statements

PURPOSE:
  Defines the boundary between the debt services and persistence. The
  services never talk to a database directly; they hold these interfaces.

KEY INTERFACES:
  Store:          Debt records (CRUD, patch, atomic read-modify-write)
  Ledger:         Transaction entries, queried by debt link + month
  StatementStore: Parsed bank statements (read by id and owner)

ATOMIC READ-MODIFY-WRITE:
  Modify() loads a debt, hands it to fn, and persists whatever fn leaves
  behind, all under one store-level transaction. Payments and statement
  reconciliation use it so a concurrent edit cannot be lost between the
  read and the write.

DUPLICATE LEDGER ENTRIES:
  Append() reports (false, nil) when an identical entry already exists
  (same owner, date, description and amount). Suppression is the ledger's
  job; callers do not check first.

IMPLEMENTATIONS:
  - store/sqlite: SQLite
  - debt/store:   In-memory for testing and dev
*/
package debt

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// DEBT STORE
// =============================================================================

type Store interface {
	// Create persists a new debt and returns it with its assigned ID.
	Create(ctx context.Context, d Debt) (Debt, error)

	// Get returns the debt with the given ID, or nil if none exists.
	Get(ctx context.Context, id int64) (*Debt, error)

	// ListByOwner returns an owner's debts ordered by creation time.
	ListByOwner(ctx context.Context, ownerID int64) ([]Debt, error)

	// Update applies a field-level patch. Returns ErrDebtNotFound if absent.
	Update(ctx context.Context, id int64, p Patch, now time.Time) (Debt, error)

	// Modify performs an atomic read-modify-write of one debt.
	Modify(ctx context.Context, id int64, fn func(d *Debt) error) (Debt, error)

	// Delete removes a debt. Ledger entries linked to it keep existing.
	Delete(ctx context.Context, id int64) error

	// FindByLinkedBank returns the owner's first debt linked to bank, or nil.
	FindByLinkedBank(ctx context.Context, ownerID int64, bank string) (*Debt, error)

	// ListOwners returns every owner with at least one debt.
	ListOwners(ctx context.Context) ([]int64, error)
}

// =============================================================================
// LEDGER
// =============================================================================

const (
	EntryTypeDebtPayment    = "debt_payment"
	CategoryDebtPayment     = "Debt Payment"
	CategorySourceAuto      = "auto"
	SourceChequing          = "chequing"
	StatementTypeCreditCard = "credit_card"
	StatementTypeChequing   = "chequing"
)

// LedgerEntry is one row of the user's transaction history. Negative amounts
// are money out.
type LedgerEntry struct {
	ID             string
	OwnerID        int64
	Date           time.Time
	Description    string
	Amount         decimal.Decimal
	Category       string
	CategorySource string
	Source         string
	Type           string
	DebtLink       *int64
	CreatedAt      time.Time
}

type Ledger interface {
	// Append records an entry. Returns false, nil if it was a duplicate.
	Append(ctx context.Context, e LedgerEntry) (bool, error)

	// EntriesForDebt returns entries linked to debtID dated in year/month.
	EntriesForDebt(ctx context.Context, debtID int64, year int, month time.Month) ([]LedgerEntry, error)
}

// =============================================================================
// BANK STATEMENTS
// =============================================================================

// Statement is a bank statement whose text has already been parsed by the
// external statement pipeline.
type Statement struct {
	ID             int64
	OwnerID        int64
	Filename       string
	FileHash       string
	StatementType  string
	ClosingBalance *decimal.Decimal
	DetectedBank   *string
	UploadedAt     time.Time
}

type StatementStore interface {
	// GetStatement returns the owner's statement, or nil if none matches.
	GetStatement(ctx context.Context, id, ownerID int64) (*Statement, error)

	// SaveStatement persists a parsed statement and returns it with its ID.
	SaveStatement(ctx context.Context, s Statement) (Statement, error)
}
