// Package store provides in-memory implementations of the debt collaborators.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/warp/debt-engine/debt"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory implements debt.Store, debt.Ledger and debt.StatementStore.
type Memory struct {
	mu         sync.RWMutex
	nextDebt   int64
	nextStmt   int64
	debts      map[int64]debt.Debt
	entries    []debt.LedgerEntry
	entryKeys  map[entryKey]bool
	statements map[int64]debt.Statement
}

type entryKey struct {
	OwnerID     int64
	Date        string
	Description string
	Amount      string
}

func NewMemory() *Memory {
	return &Memory{
		debts:      make(map[int64]debt.Debt),
		entryKeys:  make(map[entryKey]bool),
		statements: make(map[int64]debt.Statement),
	}
}

// =============================================================================
// DEBTS
// =============================================================================

func (m *Memory) Create(_ context.Context, d debt.Debt) (debt.Debt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextDebt++
	d.ID = m.nextDebt
	m.debts[d.ID] = d
	return d, nil
}

func (m *Memory) Get(_ context.Context, id int64) (*debt.Debt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	d, ok := m.debts[id]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (m *Memory) ListByOwner(_ context.Context, ownerID int64) ([]debt.Debt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []debt.Debt
	for _, d := range m.debts {
		if d.OwnerID == ownerID {
			out = append(out, d)
		}
	}
	sortByCreation(out)
	return out, nil
}

func (m *Memory) Update(ctx context.Context, id int64, p debt.Patch, now time.Time) (debt.Debt, error) {
	return m.Modify(ctx, id, func(d *debt.Debt) error {
		p.Apply(d, now)
		return nil
	})
}

func (m *Memory) Modify(_ context.Context, id int64, fn func(d *debt.Debt) error) (debt.Debt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.debts[id]
	if !ok {
		return debt.Debt{}, debt.ErrDebtNotFound
	}
	if err := fn(&d); err != nil {
		return debt.Debt{}, err
	}
	d.ID = id
	m.debts[id] = d
	return d, nil
}

func (m *Memory) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.debts[id]; !ok {
		return debt.ErrDebtNotFound
	}
	delete(m.debts, id)
	for i := range m.entries {
		if link := m.entries[i].DebtLink; link != nil && *link == id {
			m.entries[i].DebtLink = nil
		}
	}
	return nil
}

func (m *Memory) FindByLinkedBank(ctx context.Context, ownerID int64, bank string) (*debt.Debt, error) {
	debts, _ := m.ListByOwner(ctx, ownerID)
	for _, d := range debts {
		if d.LinkedStatementBank != nil && *d.LinkedStatementBank == bank {
			return &d, nil
		}
	}
	return nil, nil
}

func (m *Memory) ListOwners(_ context.Context) ([]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[int64]bool)
	var owners []int64
	for _, d := range m.debts {
		if !seen[d.OwnerID] {
			seen[d.OwnerID] = true
			owners = append(owners, d.OwnerID)
		}
	}
	sort.Slice(owners, func(i, j int) bool { return owners[i] < owners[j] })
	return owners, nil
}

func sortByCreation(debts []debt.Debt) {
	sort.SliceStable(debts, func(i, j int) bool {
		if !debts[i].CreatedAt.Equal(debts[j].CreatedAt) {
			return debts[i].CreatedAt.Before(debts[j].CreatedAt)
		}
		return debts[i].ID < debts[j].ID
	})
}

// =============================================================================
// LEDGER
// =============================================================================

func (m *Memory) Append(_ context.Context, e debt.LedgerEntry) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := entryKey{
		OwnerID:     e.OwnerID,
		Date:        e.Date.Format("2006-01-02"),
		Description: e.Description,
		Amount:      e.Amount.StringFixed(debt.Cents),
	}
	if m.entryKeys[k] {
		return false, nil
	}
	m.entryKeys[k] = true
	m.entries = append(m.entries, e)
	return true, nil
}

func (m *Memory) EntriesForDebt(_ context.Context, debtID int64, year int, month time.Month) ([]debt.LedgerEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []debt.LedgerEntry
	for _, e := range m.entries {
		if e.DebtLink == nil || *e.DebtLink != debtID {
			continue
		}
		if e.Date.Year() == year && e.Date.Month() == month {
			out = append(out, e)
		}
	}
	return out, nil
}

// Entries returns a copy of every recorded ledger entry.
func (m *Memory) Entries() []debt.LedgerEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]debt.LedgerEntry, len(m.entries))
	copy(out, m.entries)
	return out
}

// =============================================================================
// STATEMENTS
// =============================================================================

func (m *Memory) GetStatement(_ context.Context, id, ownerID int64) (*debt.Statement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.statements[id]
	if !ok || s.OwnerID != ownerID {
		return nil, nil
	}
	return &s, nil
}

func (m *Memory) SaveStatement(_ context.Context, s debt.Statement) (debt.Statement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s.StatementType == "" {
		s.StatementType = debt.StatementTypeChequing
	}
	if s.FileHash != "" {
		for id, existing := range m.statements {
			if existing.OwnerID == s.OwnerID && existing.FileHash == s.FileHash {
				s.ID = id
				m.statements[id] = s
				return s, nil
			}
		}
	}

	m.nextStmt++
	s.ID = m.nextStmt
	m.statements[s.ID] = s
	return s, nil
}
