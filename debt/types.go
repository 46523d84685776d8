/*
Package debt provides the debt records, their collaborators, and the
operations that mutate them.

PURPOSE:
  A Debt is one interest-bearing balance owned by a user: a credit card,
  a car loan, a mortgage. This package owns the record shape, its
  validation rules, the explicit patch type used for partial updates, and
  the services that read-modify-write debts (payments, statement
  reconciliation, due-date scanning).

KEY CONCEPTS IN THIS FILE (types.go):
  - Debt:    The persisted record
  - DebtType: Closed set of debt categories
  - NewDebt: Input for creating a debt
  - Patch:   Field-by-field partial update (no reflective assignment)

MONEY:
  All currency and rate values are decimal.Decimal, stored and reported at
  two decimal places. Floats never touch money. See money.go.

INVARIANTS:
  - Balance, InterestRate and MinimumPayment are never negative
  - InterestRate is an annual percentage in [0, 100]
  - DueDay, when set, is a day of month in [1, 31]

SEE ALSO:
  - store.go: Collaborator interfaces (debt storage, ledger, statements)
  - service.go: CRUD with ownership checks
  - payoff/: The projection engine that consumes Debt snapshots
*/
package debt

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// DEBT TYPE
// =============================================================================

type DebtType string

const (
	TypeCreditCard   DebtType = "credit_card"
	TypeLoan         DebtType = "loan"
	TypeLineOfCredit DebtType = "line_of_credit"
	TypeMortgage     DebtType = "mortgage"
	TypeStudentLoan  DebtType = "student_loan"
	TypeOther        DebtType = "other"
)

// Valid reports whether t is one of the known debt types.
func (t DebtType) Valid() bool {
	switch t {
	case TypeCreditCard, TypeLoan, TypeLineOfCredit, TypeMortgage, TypeStudentLoan, TypeOther:
		return true
	}
	return false
}

// =============================================================================
// DEBT - Persisted record
// =============================================================================

type Debt struct {
	ID             int64
	OwnerID        int64
	Name           string
	Type           DebtType
	Balance        decimal.Decimal
	InterestRate   decimal.Decimal // annual percentage
	MinimumPayment decimal.Decimal
	DueDay         *int // day of month, 1-31
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// Statement auto-update fields
	LastStatementBalance *decimal.Decimal
	LastVerifiedAt       *time.Time
	LastManualUpdateAt   *time.Time
	LinkedStatementBank  *string // e.g. "TD", "RBC"
}

// Validate checks the numeric invariants of a debt snapshot.
func (d Debt) Validate() error {
	if err := validateMoney("balance", d.Balance); err != nil {
		return err
	}
	if err := validateRate(d.InterestRate); err != nil {
		return err
	}
	if err := validateMoney("minimum_payment", d.MinimumPayment); err != nil {
		return err
	}
	if d.DueDay != nil {
		return validateDueDay(*d.DueDay)
	}
	return nil
}

// =============================================================================
// NEW DEBT - Create input
// =============================================================================

type NewDebt struct {
	Name                string
	Type                DebtType
	Balance             decimal.Decimal
	InterestRate        decimal.Decimal
	MinimumPayment      decimal.Decimal
	DueDay              *int
	LinkedStatementBank *string
}

// Normalize trims the name and the linked bank, and rounds money to cents.
func (n NewDebt) Normalize() NewDebt {
	n.Name = strings.TrimSpace(n.Name)
	n.Balance = Round2(n.Balance)
	n.InterestRate = Round2(n.InterestRate)
	n.MinimumPayment = Round2(n.MinimumPayment)
	n.LinkedStatementBank = trimOptional(n.LinkedStatementBank)
	return n
}

// Validate rejects malformed create input.
func (n NewDebt) Validate() error {
	if strings.TrimSpace(n.Name) == "" {
		return invalid("name", "must not be empty")
	}
	if !n.Type.Valid() {
		return invalid("debt_type", "unknown debt type %q", n.Type)
	}
	return Debt{
		Balance:        n.Balance,
		InterestRate:   n.InterestRate,
		MinimumPayment: n.MinimumPayment,
		DueDay:         n.DueDay,
	}.Validate()
}

// Build turns create input into a record owned by ownerID.
func (n NewDebt) Build(ownerID int64, now time.Time) Debt {
	n = n.Normalize()
	return Debt{
		OwnerID:             ownerID,
		Name:                n.Name,
		Type:                n.Type,
		Balance:             n.Balance,
		InterestRate:        n.InterestRate,
		MinimumPayment:      n.MinimumPayment,
		DueDay:              n.DueDay,
		LinkedStatementBank: n.LinkedStatementBank,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

// =============================================================================
// PATCH - Explicit partial update
// =============================================================================

// Patch enumerates every user-mutable field of a Debt. A nil field is left
// untouched. Timestamps and statement fields are not user-mutable.
type Patch struct {
	Name                *string
	Type                *DebtType
	Balance             *decimal.Decimal
	InterestRate        *decimal.Decimal
	MinimumPayment      *decimal.Decimal
	DueDay              *int
	ClearDueDay         bool // unset the due day; ignored when DueDay is set
	LinkedStatementBank *string
}

// DueDayChanged reports whether the patch sets or clears the due day.
func (p Patch) DueDayChanged() bool {
	return p.DueDay != nil || p.ClearDueDay
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Name == nil && p.Type == nil && p.Balance == nil &&
		p.InterestRate == nil && p.MinimumPayment == nil &&
		!p.DueDayChanged() && p.LinkedStatementBank == nil
}

// Validate checks each provided field independently.
func (p Patch) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return invalid("name", "must not be empty")
	}
	if p.Type != nil && !p.Type.Valid() {
		return invalid("debt_type", "unknown debt type %q", *p.Type)
	}
	if p.Balance != nil {
		if err := validateMoney("balance", *p.Balance); err != nil {
			return err
		}
	}
	if p.InterestRate != nil {
		if err := validateRate(*p.InterestRate); err != nil {
			return err
		}
	}
	if p.MinimumPayment != nil {
		if err := validateMoney("minimum_payment", *p.MinimumPayment); err != nil {
			return err
		}
	}
	if p.DueDay != nil {
		if err := validateDueDay(*p.DueDay); err != nil {
			return err
		}
	}
	return nil
}

// Apply writes the provided fields onto d and stamps UpdatedAt.
func (p Patch) Apply(d *Debt, now time.Time) {
	if p.Name != nil {
		d.Name = strings.TrimSpace(*p.Name)
	}
	if p.Type != nil {
		d.Type = *p.Type
	}
	if p.Balance != nil {
		d.Balance = Round2(*p.Balance)
	}
	if p.InterestRate != nil {
		d.InterestRate = Round2(*p.InterestRate)
	}
	if p.MinimumPayment != nil {
		d.MinimumPayment = Round2(*p.MinimumPayment)
	}
	if p.DueDay != nil {
		day := *p.DueDay
		d.DueDay = &day
	} else if p.ClearDueDay {
		d.DueDay = nil
	}
	if p.LinkedStatementBank != nil {
		d.LinkedStatementBank = trimOptional(p.LinkedStatementBank)
	}
	d.UpdatedAt = now
}

// =============================================================================
// VALIDATION HELPERS
// =============================================================================

var maxInterestRate = decimal.NewFromInt(100)

// MaxAmount bounds every currency input at one trillion.
var MaxAmount = decimal.New(1, maxAmountDigits)

const (
	maxAmountDigits = 12
	maxInputScale   = 10 // decimal places accepted before rounding to cents
)

// CheckAmount rejects a currency value whose scale or magnitude is out of
// range. Exponents are checked before any comparison, since comparing
// rescales both operands.
func CheckAmount(field string, v decimal.Decimal) error {
	if v.Exponent() < -maxInputScale {
		return invalid(field, "must have at most %d decimal places", maxInputScale)
	}
	if v.Exponent() > maxAmountDigits || v.Abs().GreaterThan(MaxAmount) {
		return invalid(field, "must not exceed %s", MaxAmount.StringFixed(0))
	}
	return nil
}

// ValidateAmount is CheckAmount for values that must also be non-negative.
func ValidateAmount(field string, v decimal.Decimal) error {
	if err := CheckAmount(field, v); err != nil {
		return err
	}
	if v.IsNegative() {
		return invalid(field, "must not be negative")
	}
	return nil
}

func validateMoney(field string, v decimal.Decimal) error {
	return ValidateAmount(field, v)
}

func validateRate(v decimal.Decimal) error {
	if v.Exponent() < -maxInputScale || v.Exponent() > 3 {
		return invalid("interest_rate", "must be between 0 and 100")
	}
	if v.IsNegative() || v.GreaterThan(maxInterestRate) {
		return invalid("interest_rate", "must be between 0 and 100")
	}
	return nil
}

func validateDueDay(day int) error {
	if day < 1 || day > 31 {
		return invalid("due_date", "must be a day of month between 1 and 31")
	}
	return nil
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
