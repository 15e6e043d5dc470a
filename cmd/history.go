package cmd

import (
	"fmt"

	"github.com/curatorlab/gallerize/internal/history"
	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Work with recorded prediction rounds",
	}

	cmd.AddCommand(newHistoryExportCmd())

	return cmd
}

func newHistoryExportCmd() *cobra.Command {
	var input string
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Convert a JSONL round log to Parquet",
		Long: `Converts a round log recorded with 'gallerize browse --history' into a
Parquet file suitable for offline analysis or model training pipelines.`,
		Example: `  gallerize history export --input rounds.jsonl --output rounds.parquet`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rounds, err := history.Load(input)
			if err != nil {
				return err
			}
			if len(rounds) == 0 {
				return fmt.Errorf("no rounds found in %s", input)
			}

			if err := history.ExportParquet(rounds, output); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d rounds to %s\n", len(rounds), output)
			return nil
		},
	}

	cmd.Flags().StringVar(&input, "input", "rounds.jsonl", "Path to the JSONL round log")
	cmd.Flags().StringVar(&output, "output", "rounds.parquet", "Path to the Parquet output file")

	return cmd
}
