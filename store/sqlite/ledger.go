package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/warp/debt-engine/debt"
)

// =============================================================================
// LEDGER (debt.Ledger interface)
// =============================================================================

// Append inserts a ledger entry. An entry with the same owner, date,
// description and amount as an existing one is ignored; the bool reports
// whether a row was written.
func (s *Store) Append(ctx context.Context, e debt.LedgerEntry) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT OR IGNORE INTO ledger_entries (id, owner_id, entry_date, description, amount,
		                                     category, category_source, source, entry_type,
		                                     debt_link, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var link sql.NullInt64
	if e.DebtLink != nil {
		link = sql.NullInt64{Int64: *e.DebtLink, Valid: true}
	}

	res, err := s.db.ExecContext(ctx, query,
		e.ID, e.OwnerID, e.Date.Format(dateLayout), e.Description, formatMoney(e.Amount),
		e.Category, e.CategorySource, e.Source, e.Type,
		link, formatTime(e.CreatedAt),
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert ledger entry: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n > 0, nil
}

// EntriesForDebt returns the entries linked to a debt within one calendar month.
func (s *Store) EntriesForDebt(ctx context.Context, debtID int64, year int, month time.Month) ([]debt.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	query := `
		SELECT id, owner_id, entry_date, description, amount, category,
		       category_source, source, entry_type, debt_link, created_at
		FROM ledger_entries
		WHERE debt_link = ? AND entry_date >= ? AND entry_date < ?
		ORDER BY entry_date ASC, created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, debtID, from.Format(dateLayout), to.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []debt.LedgerEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

func scanEntry(rows *sql.Rows) (debt.LedgerEntry, error) {
	var (
		e         debt.LedgerEntry
		entryDate string
		amount    string
		link      sql.NullInt64
		createdAt string
	)

	err := rows.Scan(
		&e.ID, &e.OwnerID, &entryDate, &e.Description, &amount, &e.Category,
		&e.CategorySource, &e.Source, &e.Type, &link, &createdAt,
	)
	if err != nil {
		return e, fmt.Errorf("failed to scan ledger entry: %w", err)
	}

	e.Date, _ = time.Parse(dateLayout, entryDate)
	if e.Amount, err = parseMoney(amount); err != nil {
		return e, err
	}
	if link.Valid {
		id := link.Int64
		e.DebtLink = &id
	}
	e.CreatedAt = parseTime(createdAt)
	return e, nil
}
