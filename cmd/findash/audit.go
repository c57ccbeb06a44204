package main

import (
	"fmt"

	"github.com/danielvsantos/finance-dashboard/internal/analytics"
	"github.com/danielvsantos/finance-dashboard/internal/rates"
	"github.com/spf13/cobra"
)

func auditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Report missing currency rates required by existing transactions",
		Long: `Enumerate the (year, month, currency) combinations present in
transaction data, cross them with the target currencies, and list every
pair with no stored conversion rate. Read-only: no provider calls, no
writes.`,
		RunE: runAudit,
	}

	cmd.Flags().StringSlice("currencies", nil, "target currencies (default: configured set)")

	return cmd
}

func runAudit(cmd *cobra.Command, _ []string) error {
	currencies, _ := cmd.Flags().GetStringSlice("currencies")

	store, err := openStorage()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	targets := targetCurrencies(currencies)
	if len(targets) == 0 {
		targets = analytics.DefaultTargetCurrencies
	}

	gaps, err := rates.FindGaps(cmd.Context(), store, targets)
	if err != nil {
		return fmt.Errorf("audit failed: %w", err)
	}

	if len(gaps) == 0 {
		fmt.Println(formatSuccess("All required currency rate combinations are present."))
		return nil
	}

	fmt.Println(formatTitle("Missing currency rates"))
	fmt.Println(tableHeaderStyle.Render(fmt.Sprintf("%-6s %-6s %-6s %-6s", "Year", "Month", "From", "To")))
	for _, gap := range gaps {
		fmt.Printf("%-6d %-6d %-6s %-6s\n", gap.Year, gap.Month, gap.From, gap.To)
	}
	fmt.Println(subtleStyle.Render(fmt.Sprintf("%d gaps", len(gaps))))

	return nil
}
