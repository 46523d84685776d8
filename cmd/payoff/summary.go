package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/warp/debt-engine/api"
	"github.com/warp/debt-engine/assistant"
	"github.com/warp/debt-engine/payoff"
)

func summaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary <debts.json>",
		Short: "Portfolio totals and both strategies side by side",
		Args:  cobra.ExactArgs(1),
		RunE:  runSummary,
	}

	cmd.Flags().String("start", "", "first projected month, YYYY-MM (default: current month)")
	_ = viper.BindPFlag("summary.start", cmd.Flags().Lookup("start"))

	return cmd
}

func runSummary(cmd *cobra.Command, args []string) error {
	debts, err := loadDebtsFile(args[0])
	if err != nil {
		return err
	}
	start, err := parseStart(viper.GetString("summary.start"))
	if err != nil {
		return err
	}

	summary, err := payoff.Summarize(cmd.Context(), debts, start)
	if err != nil {
		return err
	}

	if viper.GetString("output.format") == "json" {
		return writeJSON(cmd.OutOrStdout(), api.ToSummaryDTO(summary))
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderSummary(summary))
	return nil
}

func renderSummary(s payoff.Summary) string {
	if s.DebtCount == 0 {
		return SubtleStyle.Render("No debts tracked")
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render(fmt.Sprintf("%d debt(s), %s total", s.DebtCount, assistant.Dollars(s.TotalDebt))))
	b.WriteString("\n")

	rate := "-"
	if s.WeightedAverageInterestRate != nil {
		rate = s.WeightedAverageInterestRate.StringFixed(2) + "%"
	}
	fmt.Fprintf(&b, "Monthly minimums:  %s\n", assistant.Dollars(s.TotalMinimumPayments))
	fmt.Fprintf(&b, "Weighted rate:     %s\n\n", rate)

	t := newTable("Strategy", "Months", "Debt free")
	t.Row(horizon("Avalanche", s.AvalancheMonths, s.DebtFreeDateAvalanche)...)
	t.Row(horizon("Snowball", s.SnowballMonths, s.DebtFreeDateSnowball)...)
	b.WriteString(t.String())
	return b.String()
}

func horizon(name string, months *int, date *string) []string {
	if months == nil || date == nil {
		return []string{name, "-", "never"}
	}
	return []string{name, strconv.Itoa(*months), *date}
}
