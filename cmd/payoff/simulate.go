package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/warp/debt-engine/api"
	"github.com/warp/debt-engine/assistant"
	"github.com/warp/debt-engine/logging"
	"github.com/warp/debt-engine/payoff"
)

func simulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate <debts.json>",
		Short: "Project a payoff schedule",
		Long: `Simulate month by month until every debt is paid or 600 months pass.

The extra payment and every freed minimum go to the first unpaid debt in
strategy order. The order is fixed from the opening balances.`,
		Args: cobra.ExactArgs(1),
		RunE: runSimulate,
	}

	cmd.Flags().StringP("strategy", "s", string(payoff.DefaultStrategy), "payoff strategy (avalanche, snowball)")
	cmd.Flags().StringP("extra", "e", "0", "extra monthly payment")
	cmd.Flags().String("start", "", "first projected month, YYYY-MM (default: current month)")
	cmd.Flags().Int("months", 12, "projection rows to print in table format (0 for all)")

	_ = viper.BindPFlag("simulate.strategy", cmd.Flags().Lookup("strategy"))
	_ = viper.BindPFlag("simulate.extra", cmd.Flags().Lookup("extra"))
	_ = viper.BindPFlag("simulate.start", cmd.Flags().Lookup("start"))
	_ = viper.BindPFlag("simulate.months", cmd.Flags().Lookup("months"))

	return cmd
}

func runSimulate(cmd *cobra.Command, args []string) error {
	debts, err := loadDebtsFile(args[0])
	if err != nil {
		return err
	}

	strategy := payoff.Strategy(viper.GetString("simulate.strategy"))
	extra, err := decimal.NewFromString(viper.GetString("simulate.extra"))
	if err != nil {
		return fmt.Errorf("invalid extra payment %q: %w", viper.GetString("simulate.extra"), err)
	}
	start, err := parseStart(viper.GetString("simulate.start"))
	if err != nil {
		return err
	}

	began := time.Now()
	plan, err := payoff.Plan(debts, strategy, extra, start)
	if err != nil {
		return err
	}
	logger.Debug("simulation finished",
		logging.FieldOperation, logging.OpSimulate,
		logging.FieldStrategy, string(strategy),
		logging.FieldCount, len(debts),
		logging.FieldDuration, time.Since(began).Milliseconds(),
	)

	if viper.GetString("output.format") == "json" {
		return writeJSON(cmd.OutOrStdout(), api.ToPayoffDTO(plan))
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderPlan(plan, viper.GetInt("simulate.months")))
	return nil
}

// parseStart reads "YYYY-MM"; empty means the current month.
func parseStart(s string) (time.Time, error) {
	if s == "" {
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC), nil
	}
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid start month %q: use YYYY-MM", s)
	}
	return t, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// =============================================================================
// TABLE OUTPUT
// =============================================================================

func renderPlan(plan payoff.Response, months int) string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render(fmt.Sprintf("%s payoff, extra %s/mo",
		strings.ToUpper(string(plan.Strategy[:1]))+string(plan.Strategy[1:]),
		assistant.Dollars(plan.ExtraPayment))))
	b.WriteString("\n")

	if plan.TotalMonths != nil && plan.DebtFreeDate != nil {
		b.WriteString(BoxStyle.Render(fmt.Sprintf("Debt free %s after %d months\nTotal interest %s",
			*plan.DebtFreeDate, *plan.TotalMonths, assistant.Dollars(plan.TotalInterestPaid))))
	} else if plan.TotalMonths != nil {
		b.WriteString(SubtleStyle.Render("No debts to pay off"))
	} else {
		b.WriteString(WarningStyle.Render(fmt.Sprintf("Not paid off within %d months. Interest so far %s",
			payoff.MaxMonths, assistant.Dollars(plan.TotalInterestPaid))))
	}
	b.WriteString("\n\n")

	if len(plan.PayoffOrder) > 0 {
		order := newTable("#", "Debt", "Balance", "Rate", "Paid off", "Months", "Interest")
		for _, d := range plan.PayoffOrder {
			paidOff, monthsTo := "never", "-"
			if d.PayoffDate != nil && d.MonthsToPayoff != nil {
				paidOff, monthsTo = *d.PayoffDate, strconv.Itoa(*d.MonthsToPayoff)
			}
			order.Row(
				strconv.Itoa(d.Order),
				d.Name,
				assistant.Dollars(d.OriginalBalance),
				d.InterestRate.StringFixed(2)+"%",
				paidOff,
				monthsTo,
				assistant.Dollars(d.TotalInterest),
			)
		}
		b.WriteString(order.String())
		b.WriteString("\n")
	}

	rows := plan.MonthlyProjection
	if months > 0 && len(rows) > months {
		rows = rows[:months]
	}
	if len(rows) > 0 {
		projection := newTable("Month", "Date", "Remaining")
		for _, m := range rows {
			projection.Row(strconv.Itoa(m.Month), m.Date, assistant.Dollars(m.TotalBalance))
		}
		b.WriteString(projection.String())
		if len(rows) < len(plan.MonthlyProjection) {
			b.WriteString("\n")
			b.WriteString(SubtleStyle.Render(fmt.Sprintf("... %d more months (use --months 0 for all)",
				len(plan.MonthlyProjection)-len(rows))))
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(SubtleStyle).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return TableHeaderStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers(headers...)
}
