package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/warp/debt-engine/debt"
)

// =============================================================================
// DEBT STORE (debt.Store interface)
// =============================================================================

const debtColumns = `
	id, owner_id, name, debt_type, balance, interest_rate, minimum_payment,
	due_day, created_at, updated_at, last_statement_balance, last_verified_at,
	last_manual_update_at, linked_statement_bank`

// Create inserts a debt and returns it with its assigned ID.
func (s *Store) Create(ctx context.Context, d debt.Debt) (debt.Debt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO debts (owner_id, name, debt_type, balance, interest_rate, minimum_payment,
		                   due_day, created_at, updated_at, last_statement_balance, last_verified_at,
		                   last_manual_update_at, linked_statement_bank)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	res, err := s.db.ExecContext(ctx, query,
		d.OwnerID, d.Name, string(d.Type),
		formatMoney(d.Balance), formatMoney(d.InterestRate), formatMoney(d.MinimumPayment),
		nullInt(d.DueDay), formatTime(d.CreatedAt), formatTime(d.UpdatedAt),
		nullMoney(d.LastStatementBalance), nullTime(d.LastVerifiedAt),
		nullTime(d.LastManualUpdateAt), nullString(d.LinkedStatementBank),
	)
	if err != nil {
		return debt.Debt{}, fmt.Errorf("failed to insert debt: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return debt.Debt{}, fmt.Errorf("failed to read debt id: %w", err)
	}
	d.ID = id
	return d, nil
}

// Get retrieves a debt by ID. Returns nil, nil when absent.
func (s *Store) Get(ctx context.Context, id int64) (*debt.Debt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return getDebt(ctx, s.db, id)
}

func getDebt(ctx context.Context, q querier, id int64) (*debt.Debt, error) {
	row := q.QueryRowContext(ctx, "SELECT "+debtColumns+" FROM debts WHERE id = ?", id)
	d, err := scanDebt(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// ListByOwner returns an owner's debts in creation order.
func (s *Store) ListByOwner(ctx context.Context, ownerID int64) ([]debt.Debt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT " + debtColumns + `
		FROM debts
		WHERE owner_id = ?
		ORDER BY created_at ASC, id ASC
	`
	return s.queryDebts(ctx, query, ownerID)
}

// FindByLinkedBank returns the owner's debt linked to bank, or nil.
// If several debts carry the same link the oldest wins.
func (s *Store) FindByLinkedBank(ctx context.Context, ownerID int64, bank string) (*debt.Debt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT " + debtColumns + `
		FROM debts
		WHERE owner_id = ? AND linked_statement_bank = ?
		ORDER BY created_at ASC, id ASC
		LIMIT 1
	`
	d, err := scanDebt(s.db.QueryRowContext(ctx, query, ownerID, bank))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// ListOwners returns every owner with at least one debt, ascending.
func (s *Store) ListOwners(ctx context.Context) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT owner_id FROM debts ORDER BY owner_id")
	if err != nil {
		return nil, fmt.Errorf("failed to query owners: %w", err)
	}
	defer rows.Close()

	var owners []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan owner: %w", err)
		}
		owners = append(owners, id)
	}
	return owners, rows.Err()
}

// Update applies a patch with an explicit SET clause per present field.
func (s *Store) Update(ctx context.Context, id int64, p debt.Patch, now time.Time) (debt.Debt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Patch.Apply owns normalisation (rounding, trimming, clearing), so the
	// values are taken from a patched scratch record.
	var scratch debt.Debt
	p.Apply(&scratch, now)

	var (
		sets []string
		args []any
	)
	if p.Name != nil {
		sets, args = append(sets, "name = ?"), append(args, scratch.Name)
	}
	if p.Type != nil {
		sets, args = append(sets, "debt_type = ?"), append(args, string(scratch.Type))
	}
	if p.Balance != nil {
		sets, args = append(sets, "balance = ?"), append(args, formatMoney(scratch.Balance))
	}
	if p.InterestRate != nil {
		sets, args = append(sets, "interest_rate = ?"), append(args, formatMoney(scratch.InterestRate))
	}
	if p.MinimumPayment != nil {
		sets, args = append(sets, "minimum_payment = ?"), append(args, formatMoney(scratch.MinimumPayment))
	}
	if p.DueDayChanged() {
		sets, args = append(sets, "due_day = ?"), append(args, nullInt(scratch.DueDay))
	}
	if p.LinkedStatementBank != nil {
		sets, args = append(sets, "linked_statement_bank = ?"), append(args, nullString(scratch.LinkedStatementBank))
	}
	sets, args = append(sets, "updated_at = ?"), append(args, formatTime(now))
	args = append(args, id)

	query := "UPDATE debts SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return debt.Debt{}, fmt.Errorf("failed to update debt: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return debt.Debt{}, debt.ErrDebtNotFound
	}

	d, err := getDebt(ctx, s.db, id)
	if err != nil {
		return debt.Debt{}, err
	}
	if d == nil {
		return debt.Debt{}, debt.ErrDebtNotFound
	}
	return *d, nil
}

// Modify loads a debt, hands it to fn and writes back the result inside a
// single SQL transaction.
func (s *Store) Modify(ctx context.Context, id int64, fn func(d *debt.Debt) error) (debt.Debt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return debt.Debt{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	d, err := getDebt(ctx, sqlTx, id)
	if err != nil {
		return debt.Debt{}, err
	}
	if d == nil {
		return debt.Debt{}, debt.ErrDebtNotFound
	}
	if err := fn(d); err != nil {
		return debt.Debt{}, err
	}
	d.ID = id

	query := `
		UPDATE debts SET
			name = ?, debt_type = ?, balance = ?, interest_rate = ?, minimum_payment = ?,
			due_day = ?, updated_at = ?, last_statement_balance = ?, last_verified_at = ?,
			last_manual_update_at = ?, linked_statement_bank = ?
		WHERE id = ?
	`
	_, err = sqlTx.ExecContext(ctx, query,
		d.Name, string(d.Type),
		formatMoney(d.Balance), formatMoney(d.InterestRate), formatMoney(d.MinimumPayment),
		nullInt(d.DueDay), formatTime(d.UpdatedAt),
		nullMoney(d.LastStatementBalance), nullTime(d.LastVerifiedAt),
		nullTime(d.LastManualUpdateAt), nullString(d.LinkedStatementBank),
		id,
	)
	if err != nil {
		return debt.Debt{}, fmt.Errorf("failed to write debt: %w", err)
	}

	if err := sqlTx.Commit(); err != nil {
		return debt.Debt{}, fmt.Errorf("failed to commit: %w", err)
	}
	return *d, nil
}

// Delete removes a debt. Linked ledger entries keep their row with
// debt_link set to NULL.
func (s *Store) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM debts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete debt: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return debt.ErrDebtNotFound
	}
	return nil
}

func (s *Store) queryDebts(ctx context.Context, query string, args ...any) ([]debt.Debt, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query debts: %w", err)
	}
	defer rows.Close()

	var debts []debt.Debt
	for rows.Next() {
		d, err := scanDebt(rows)
		if err != nil {
			return nil, err
		}
		debts = append(debts, d)
	}

	return debts, rows.Err()
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanDebt(row scanner) (debt.Debt, error) {
	var (
		d                    debt.Debt
		debtType             string
		balance              string
		rate                 string
		minimum              string
		dueDay               sql.NullInt64
		createdAt            string
		updatedAt            string
		lastStatementBalance sql.NullString
		lastVerifiedAt       sql.NullString
		lastManualUpdateAt   sql.NullString
		linkedBank           sql.NullString
	)

	err := row.Scan(
		&d.ID, &d.OwnerID, &d.Name, &debtType, &balance, &rate, &minimum,
		&dueDay, &createdAt, &updatedAt, &lastStatementBalance, &lastVerifiedAt,
		&lastManualUpdateAt, &linkedBank,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return d, err
	}
	if err != nil {
		return d, fmt.Errorf("failed to scan debt: %w", err)
	}

	d.Type = debt.DebtType(debtType)
	if d.Balance, err = parseMoney(balance); err != nil {
		return d, err
	}
	if d.InterestRate, err = parseMoney(rate); err != nil {
		return d, err
	}
	if d.MinimumPayment, err = parseMoney(minimum); err != nil {
		return d, err
	}
	if dueDay.Valid {
		day := int(dueDay.Int64)
		d.DueDay = &day
	}
	d.CreatedAt = parseTime(createdAt)
	d.UpdatedAt = parseTime(updatedAt)
	if d.LastStatementBalance, err = moneyPtr(lastStatementBalance); err != nil {
		return d, err
	}
	d.LastVerifiedAt = timePtr(lastVerifiedAt)
	d.LastManualUpdateAt = timePtr(lastManualUpdateAt)
	d.LinkedStatementBank = stringPtr(linkedBank)

	return d, nil
}
