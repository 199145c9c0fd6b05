package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/teklab/tekladoc/internal/config"
	"github.com/teklab/tekladoc/internal/model"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print dataset statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	engine, err := buildEngine(cfg)
	if err != nil {
		return err
	}

	stats := engine.GetStatistics()
	fmt.Fprintf(cmd.OutOrStdout(), "records:  %d\n", stats.Total)

	kinds := make([]string, 0, len(stats.ByKind))
	for kind := range stats.ByKind {
		kinds = append(kinds, string(kind))
	}
	sort.Strings(kinds)
	for _, kind := range kinds {
		fmt.Fprintf(cmd.OutOrStdout(), "  %-12s %d\n", kind, stats.ByKind[model.Kind(kind)])
	}

	fmt.Fprintf(cmd.OutOrStdout(), "examples: %d\n", stats.Examples)
	fmt.Fprintf(cmd.OutOrStdout(), "snippets: %d\n", stats.CodeSnippets)
	return nil
}
