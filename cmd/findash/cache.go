package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func cacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the aggregated analytics cache",
	}

	cmd.AddCommand(cacheClearCmd())

	return cmd
}

func cacheClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all aggregated cache buckets",
		Long: `Remove every row from the analytics cache. Source transactions
and stored currency rates are untouched; run "findash aggregate" to
rebuild.`,
		RunE: runCacheClear,
	}
}

func runCacheClear(cmd *cobra.Command, _ []string) error {
	store, err := openStorage()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	removed, err := store.ClearCache(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}

	if removed == 0 {
		fmt.Println(subtleStyle.Render("Cache was already empty."))
		return nil
	}

	fmt.Println(formatSuccess(fmt.Sprintf("Cleared %d cache buckets.", removed)))
	return nil
}
