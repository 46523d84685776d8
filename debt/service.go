/*
service.go - Debt CRUD with ownership checks

PURPOSE:
  Service is the single entry point the HTTP layer (and the scheduler)
  uses to read and mutate debts. It enforces ownership, validates input
  before touching the store, and notifies listeners after every write so
  derived views (the cached summary) can be dropped.

OWNERSHIP:
  Every method takes the requesting owner. A debt that exists but belongs
  to someone else yields ErrNotAuthorized; a missing one ErrDebtNotFound.

CLOCK:
  Now is injectable so tests can pin "today" (due-soon windows, payment
  dates, ledger months).

SEE ALSO:
  - payment.go:   RecordPayment
  - statement.go: AutoUpdateFromStatement
  - duesoon.go:   DueSoon
*/
package debt

import (
	"context"
	"fmt"
	"time"
)

// Service holds the debt collaborators.
type Service struct {
	Debts      Store
	Ledger     Ledger
	Statements StatementStore

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time

	// OnChange, when set, is called after any write to an owner's debts.
	OnChange func(ctx context.Context, ownerID int64)
}

// NewService creates a service over the given collaborators.
func NewService(debts Store, ledger Ledger, statements StatementStore) *Service {
	return &Service{
		Debts:      debts,
		Ledger:     ledger,
		Statements: statements,
		Now:        time.Now,
	}
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

func (s *Service) changed(ctx context.Context, ownerID int64) {
	if s.OnChange != nil {
		s.OnChange(ctx, ownerID)
	}
}

// =============================================================================
// CRUD
// =============================================================================

// Create validates and persists a new debt for ownerID.
func (s *Service) Create(ctx context.Context, ownerID int64, in NewDebt) (Debt, error) {
	if err := in.Validate(); err != nil {
		return Debt{}, err
	}
	d, err := s.Debts.Create(ctx, in.Build(ownerID, s.now()))
	if err != nil {
		return Debt{}, fmt.Errorf("create debt: %w", err)
	}
	s.changed(ctx, ownerID)
	return d, nil
}

// Get returns one of the owner's debts.
func (s *Service) Get(ctx context.Context, ownerID, id int64) (Debt, error) {
	d, err := s.Debts.Get(ctx, id)
	if err != nil {
		return Debt{}, fmt.Errorf("get debt %d: %w", id, err)
	}
	if d == nil {
		return Debt{}, ErrDebtNotFound
	}
	if d.OwnerID != ownerID {
		return Debt{}, ErrNotAuthorized
	}
	return *d, nil
}

// List returns the owner's debts in creation order.
func (s *Service) List(ctx context.Context, ownerID int64) ([]Debt, error) {
	debts, err := s.Debts.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list debts: %w", err)
	}
	return debts, nil
}

// SimpleDebt is the id/name pair used by dropdowns.
type SimpleDebt struct {
	ID   int64
	Name string
}

// ListSimple returns id and name of each of the owner's debts.
func (s *Service) ListSimple(ctx context.Context, ownerID int64) ([]SimpleDebt, error) {
	debts, err := s.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	out := make([]SimpleDebt, len(debts))
	for i, d := range debts {
		out[i] = SimpleDebt{ID: d.ID, Name: d.Name}
	}
	return out, nil
}

// Update applies a validated patch to one of the owner's debts.
func (s *Service) Update(ctx context.Context, ownerID, id int64, p Patch) (Debt, error) {
	if err := p.Validate(); err != nil {
		return Debt{}, err
	}
	if _, err := s.Get(ctx, ownerID, id); err != nil {
		return Debt{}, err
	}
	d, err := s.Debts.Update(ctx, id, p, s.now())
	if err != nil {
		return Debt{}, fmt.Errorf("update debt %d: %w", id, err)
	}
	s.changed(ctx, ownerID)
	return d, nil
}

// Delete removes one of the owner's debts.
func (s *Service) Delete(ctx context.Context, ownerID, id int64) error {
	if _, err := s.Get(ctx, ownerID, id); err != nil {
		return err
	}
	if err := s.Debts.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete debt %d: %w", id, err)
	}
	s.changed(ctx, ownerID)
	return nil
}
