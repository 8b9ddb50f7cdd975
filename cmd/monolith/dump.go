package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newDumpCmd())
}

func newDumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump",
		Short: "Print the block list of a region",
		Long: `The dump command opens the region and prints its block list. Combined
with --file and --recover it shows the list persisted in a backing file.

Example:
  monolith dump --file heap.dat --recover
  monolith dump --capacity 65536 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openAllocator()
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.Validate(); err != nil {
				return fmt.Errorf("validate: %w", err)
			}
			return printReport(cmd.OutOrStdout(), newReport(a))
		},
	}
}
