package main

import (
	"fmt"
	"log/slog"

	"github.com/danielvsantos/finance-dashboard/internal/analytics"
	"github.com/danielvsantos/finance-dashboard/internal/sheets"
	"github.com/spf13/cobra"
)

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export an analytics report to Google Sheets",
		Long: `Run an analytics query and write the result to a Google Sheets
spreadsheet as a P&L report. Takes the same selection flags as "query".
Authentication comes from FINDASH_SHEETS_* environment variables: either
a service account JSON path or OAuth2 client credentials.`,
		RunE: runExport,
	}

	cmd.Flags().String("view", "year", "period granularity: year, quarter, or month")
	cmd.Flags().String("currency", "USD", "target currency of the cached figures")
	cmd.Flags().StringSlice("countries", nil, "restrict to these countries")
	cmd.Flags().StringSlice("macros", nil, "restrict to these macro categories")
	cmd.Flags().IntSlice("years", nil, "years to include (view=year)")
	cmd.Flags().String("start-month", "", "first month, YYYY-MM (view=month)")
	cmd.Flags().String("end-month", "", "last month, YYYY-MM (view=month)")
	cmd.Flags().String("start-quarter", "", "first quarter, YYYY-Qn (view=quarter)")
	cmd.Flags().String("end-quarter", "", "last quarter, YYYY-Qn (view=quarter)")

	return cmd
}

func runExport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	req := queryRequest(cmd)

	store, err := openStorage()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	report, err := analytics.NewService(store).Report(ctx, req)
	if err != nil {
		return err
	}
	if len(report.Rows) == 0 {
		fmt.Println(subtleStyle.Render("Nothing to export: no cached data matched the query."))
		return nil
	}

	config := sheets.DefaultConfig()
	if err := config.LoadFromEnv(); err != nil {
		return fmt.Errorf("sheets configuration: %w", err)
	}

	writer, err := sheets.NewWriter(ctx, config, slog.Default())
	if err != nil {
		return fmt.Errorf("failed to create sheets writer: %w", err)
	}

	if err := writer.Write(ctx, report); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	fmt.Println(formatSuccess(fmt.Sprintf("Exported %d periods to Google Sheets.", len(report.Rows))))
	return nil
}
