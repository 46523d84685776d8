package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/debt-engine/debt"
)

// debtInput is one entry of the debts file. Money may be a number or a
// quoted string.
type debtInput struct {
	ID             int64           `json:"id"`
	Name           string          `json:"name"`
	DebtType       string          `json:"debt_type"`
	Balance        decimal.Decimal `json:"balance"`
	InterestRate   decimal.Decimal `json:"interest_rate"`
	MinimumPayment decimal.Decimal `json:"minimum_payment"`
	DueDate        *int            `json:"due_date"`
}

func loadDebtsFile(path string) ([]debt.Debt, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open debts file: %w", err)
	}
	defer f.Close()
	return readDebts(f)
}

// readDebts decodes and validates a debts file. Entries without an id are
// numbered by position; a missing debt_type defaults to "other".
func readDebts(r io.Reader) ([]debt.Debt, error) {
	var inputs []debtInput
	if err := json.NewDecoder(r).Decode(&inputs); err != nil {
		return nil, fmt.Errorf("failed to parse debts file: %w", err)
	}

	debts := make([]debt.Debt, 0, len(inputs))
	seen := make(map[int64]bool)
	for i, in := range inputs {
		if in.ID == 0 {
			in.ID = int64(i + 1)
		}
		if seen[in.ID] {
			return nil, fmt.Errorf("debt #%d: duplicate id %d", i+1, in.ID)
		}
		seen[in.ID] = true

		if in.DebtType == "" {
			in.DebtType = string(debt.TypeOther)
		}
		nd := debt.NewDebt{
			Name:           in.Name,
			Type:           debt.DebtType(in.DebtType),
			Balance:        in.Balance,
			InterestRate:   in.InterestRate,
			MinimumPayment: in.MinimumPayment,
			DueDay:         in.DueDate,
		}
		if err := nd.Validate(); err != nil {
			return nil, fmt.Errorf("debt #%d (%s): %w", i+1, in.Name, err)
		}

		d := nd.Build(0, time.Time{})
		d.ID = in.ID
		debts = append(debts, d)
	}
	return debts, nil
}
