package main

import (
	"fmt"
	"time"

	"github.com/danielvsantos/finance-dashboard/internal/analytics"
	"github.com/danielvsantos/finance-dashboard/internal/rates"
	"github.com/spf13/cobra"
)

func aggregateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Recompute the analytics cache from transactions and rates",
		Long: `Walk every transaction, resolve a historical conversion rate for each
(year, month, currency pair), fetching and persisting missing rates from
the external provider, then aggregate converted amounts into the
precomputed analytics cache.

The cache is only as fresh as the last run: transaction edits do not
invalidate it. Use --rebuild after editing historical data.`,
		RunE: runAggregate,
	}

	cmd.Flags().IntSlice("years", nil, "years to aggregate (default: every year with transactions)")
	cmd.Flags().StringSlice("currencies", nil, "target currencies (default: configured set)")
	cmd.Flags().Bool("rebuild", false, "clear the whole cache before aggregating")

	return cmd
}

func runAggregate(cmd *cobra.Command, _ []string) error {
	years, _ := cmd.Flags().GetIntSlice("years")
	currencies, _ := cmd.Flags().GetStringSlice("currencies")
	rebuild, _ := cmd.Flags().GetBool("rebuild")

	store, err := openStorage()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	ctx := cmd.Context()
	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	client, err := rateClient()
	if err != nil {
		return err
	}

	resolver := rates.NewResolver(store, client, resolverConfig())
	engine := analytics.NewEngine(store, resolver, analytics.Config{ShowProgress: true})

	start := time.Now()
	stats, err := engine.Run(ctx, analytics.RunOptions{
		Years:            years,
		TargetCurrencies: targetCurrencies(currencies),
		Rebuild:          rebuild,
	})
	if err != nil {
		return fmt.Errorf("aggregation failed: %w", err)
	}

	fmt.Println()
	fmt.Println(formatSuccess(fmt.Sprintf(
		"Aggregated %d transactions into %d buckets in %s",
		stats.Transactions, stats.Buckets, formatDuration(time.Since(start)))))

	if stats.SkippedNoRate > 0 {
		fmt.Println(formatWarning(fmt.Sprintf(
			"%d conversions skipped for %d missing rate pairs; run 'findash audit' for details",
			stats.SkippedNoRate, len(stats.Gaps))))
	}

	return nil
}
