package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teklab/tekladoc/internal/config"
	"github.com/teklab/tekladoc/internal/model"
)

var (
	searchKind  string
	searchLimit int
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the indexed API reference",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&searchKind, "kind", model.KindAll, "restrict results to one kind")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 0, "maximum number of results")
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	engine, err := buildEngine(cfg)
	if err != nil {
		return err
	}

	results := engine.Search(cmd.Context(), args[0], searchKind, searchLimit)
	if len(results) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no results")
		return nil
	}

	for _, r := range results {
		source := ""
		if r.Source == model.SourceRemote {
			source = " (online)"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%-10s %-50s %s%s\n", r.Kind, r.Title, r.Namespace, source)
		if r.Summary != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "           %s\n", r.Summary)
		}
	}
	return nil
}
