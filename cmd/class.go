package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teklab/tekladoc/internal/config"
)

var classMembers bool

var classCmd = &cobra.Command{
	Use:   "class <name>",
	Short: "Resolve a class by name and print its record",
	Args:  cobra.ExactArgs(1),
	RunE:  runClass,
}

func init() {
	classCmd.Flags().BoolVar(&classMembers, "members", false, "include constructors, properties and methods")
}

func runClass(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	engine, err := buildEngine(cfg)
	if err != nil {
		return err
	}

	rec := engine.GetClassDetails(cmd.Context(), args[0], classMembers)
	if rec == nil {
		return fmt.Errorf("no class found matching %q", args[0])
	}

	out, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
