package main

import (
	"fmt"
	"strings"

	"github.com/danielvsantos/finance-dashboard/internal/analytics"
	"github.com/danielvsantos/finance-dashboard/internal/model"
	"github.com/spf13/cobra"
)

func queryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Query aggregated analytics from the cache",
		Long: `Read precomputed cache buckets and print them grouped by period.
The period granularity follows --view: year takes a --years list, month
takes a --start-month/--end-month span, quarter takes a
--start-quarter/--end-quarter span.`,
		RunE: runQuery,
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
	cmd.Flags().String("shape", "summary", "output shape: summary or rows")

	return cmd
}

func queryRequest(cmd *cobra.Command) analytics.Request {
	view, _ := cmd.Flags().GetString("view")
	currency, _ := cmd.Flags().GetString("currency")
	countries, _ := cmd.Flags().GetStringSlice("countries")
	macros, _ := cmd.Flags().GetStringSlice("macros")
	years, _ := cmd.Flags().GetIntSlice("years")
	startMonth, _ := cmd.Flags().GetString("start-month")
	endMonth, _ := cmd.Flags().GetString("end-month")
	startQuarter, _ := cmd.Flags().GetString("start-quarter")
	endQuarter, _ := cmd.Flags().GetString("end-quarter")

	return analytics.Request{
		View:         model.View(view),
		Currency:     strings.ToUpper(currency),
		Countries:    countries,
		Macros:       macros,
		Years:        years,
		StartMonth:   startMonth,
		EndMonth:     endMonth,
		StartQuarter: startQuarter,
		EndQuarter:   endQuarter,
	}
}

func runQuery(cmd *cobra.Command, _ []string) error {
	shape, _ := cmd.Flags().GetString("shape")
	req := queryRequest(cmd)

	store, err := openStorage()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	queries := analytics.NewService(store)

	switch shape {
	case "rows":
		grouped, err := queries.Rows(cmd.Context(), req)
		if err != nil {
			return err
		}
		printRows(req, grouped)
	case "summary":
		grouped, err := queries.Summary(cmd.Context(), req)
		if err != nil {
			return err
		}
		printSummary(req, grouped)
	default:
		return fmt.Errorf("unknown shape %q (want summary or rows)", shape)
	}

	return nil
}

func printSummary(req analytics.Request, grouped map[string]*analytics.PeriodSummary) {
	if len(grouped) == 0 {
		fmt.Println(subtleStyle.Render("No cached data matched the query."))
		return
	}

	fmt.Println(formatTitle(fmt.Sprintf("Analytics (%s, %s view)", req.Currency, req.View)))
	fmt.Println(tableHeaderStyle.Render(fmt.Sprintf("%-10s %14s %14s %14s", "Period", "Revenue", "Expenses", "Net")))
	for _, label := range analytics.SortedLabels(grouped) {
		summary := grouped[label]
		net := summary.Revenue - summary.Expenses
		fmt.Printf("%-10s %14.2f %14.2f %14.2f\n", label, summary.Revenue, summary.Expenses, net)
	}
}

func printRows(req analytics.Request, grouped map[string][]analytics.RowDetail) {
	if len(grouped) == 0 {
		fmt.Println(subtleStyle.Render("No cached data matched the query."))
		return
	}

	fmt.Println(formatTitle(fmt.Sprintf("Analytics rows (%s, %s view)", req.Currency, req.View)))
	for _, label := range analytics.SortedLabels(grouped) {
		fmt.Println(tableHeaderStyle.Render(label))
		for _, row := range grouped[label] {
			fmt.Printf("  %-16s %-24s %14.2f %14.2f\n", row.Country, row.Macro, row.Revenue, row.Expenses)
		}
	}
}
