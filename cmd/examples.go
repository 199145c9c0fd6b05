package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teklab/tekladoc/internal/config"
	"github.com/teklab/tekladoc/internal/examples"
	"github.com/teklab/tekladoc/internal/store"
)

var examplesDataDir string

var examplesCmd = &cobra.Command{
	Use:   "examples",
	Short: "Work with the code example corpus",
}

var examplesBuildCmd = &cobra.Command{
	Use:   "build <corpus-dir>",
	Short: "Scan an example corpus and add it to the dataset",
	Args:  cobra.ExactArgs(1),
	RunE:  runExamplesBuild,
}

var examplesCategoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List the categories of the indexed example corpus",
	Args:  cobra.NoArgs,
	RunE:  runExamplesCategories,
}

func init() {
	examplesBuildCmd.Flags().StringVar(&examplesDataDir, "data", "", "output directory (default: configured data dir)")
	examplesCmd.AddCommand(examplesBuildCmd)
	examplesCmd.AddCommand(examplesCategoriesCmd)
}

func runExamplesBuild(cmd *cobra.Command, args []string) error {
	dataDir := examplesDataDir
	if dataDir == "" {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		dataDir = cfg.DataDir
	}

	built, err := examples.Build(args[0])
	if err != nil {
		return err
	}
	if err := store.SaveExamples(dataDir, built); err != nil {
		return fmt.Errorf("writing examples: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "indexed %d examples into %s\n", len(built), dataDir)
	return nil
}

func runExamplesCategories(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	engine, err := buildEngine(cfg)
	if err != nil {
		return err
	}

	for _, category := range engine.GetExampleCategories() {
		fmt.Fprintln(cmd.OutOrStdout(), category)
	}
	return nil
}
