package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/warp/debt-engine/debt"
)

// =============================================================================
// STATEMENTS (debt.StatementStore interface)
// =============================================================================

// SaveStatement stores a parsed statement. Re-uploading a file with the same
// hash for the same owner replaces the earlier parse and keeps its ID.
func (s *Store) SaveStatement(ctx context.Context, st debt.Statement) (debt.Statement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st.StatementType == "" {
		st.StatementType = debt.StatementTypeChequing
	}
	if st.FileHash == "" {
		st.FileHash = uuid.NewString()
	}

	query := `
		INSERT INTO bank_statements (owner_id, filename, file_hash, statement_type,
		                             closing_balance, detected_bank, uploaded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(owner_id, file_hash) DO UPDATE SET
			filename = excluded.filename,
			statement_type = excluded.statement_type,
			closing_balance = excluded.closing_balance,
			detected_bank = excluded.detected_bank,
			uploaded_at = excluded.uploaded_at
		RETURNING id
	`

	err := s.db.QueryRowContext(ctx, query,
		st.OwnerID, st.Filename, st.FileHash, st.StatementType,
		nullMoney(st.ClosingBalance), nullString(st.DetectedBank), formatTime(st.UploadedAt),
	).Scan(&st.ID)
	if err != nil {
		return debt.Statement{}, fmt.Errorf("failed to save statement: %w", err)
	}
	return st, nil
}

// GetStatement retrieves a statement by ID scoped to its owner.
// Returns nil, nil when absent or owned by someone else.
func (s *Store) GetStatement(ctx context.Context, id, ownerID int64) (*debt.Statement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		st         debt.Statement
		closing    sql.NullString
		bank       sql.NullString
		uploadedAt string
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT id, owner_id, filename, file_hash, statement_type,
		       closing_balance, detected_bank, uploaded_at
		FROM bank_statements
		WHERE id = ? AND owner_id = ?
	`, id, ownerID).Scan(
		&st.ID, &st.OwnerID, &st.Filename, &st.FileHash, &st.StatementType,
		&closing, &bank, &uploadedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get statement: %w", err)
	}

	if st.ClosingBalance, err = moneyPtr(closing); err != nil {
		return nil, err
	}
	st.DetectedBank = stringPtr(bank)
	st.UploadedAt = parseTime(uploadedAt)
	return &st, nil
}
